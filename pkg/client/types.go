package client

// Page is one page of a paginated people listing.
//
// Previous and Next are opaque page tokens (full URLs) supplied by the
// upstream resource. JSON null decodes to the empty string, which means
// "no such page".
type Page struct {
	Count    int      `json:"count"`
	Previous string   `json:"previous"`
	Next     string   `json:"next"`
	Results  []Person `json:"results"`
}

// Person is a single character record as returned by the people resource.
// URL is the unique stable identifier; the remaining fields are carried
// through for display.
type Person struct {
	URL       string `json:"url"`
	Name      string `json:"name"`
	Height    string `json:"height"`
	Mass      string `json:"mass"`
	HairColor string `json:"hair_color"`
	SkinColor string `json:"skin_color"`
	EyeColor  string `json:"eye_color"`
	BirthYear string `json:"birth_year"`
	Gender    string `json:"gender"`
}
