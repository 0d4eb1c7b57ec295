package cache

import "strings"

// Key identifies a cached page by its request URL.
//
// Page tokens are full URLs supplied by the upstream itself, so the URL is
// the natural identity of a page. Trailing slashes are stripped so the
// resource root caches under one key regardless of how it was written.
type Key struct {
	// URL is the full request URL of the page.
	URL string
}

// String generates a deterministic cache key string.
//
// Example:
//
//	swapi:page:https://swapi.dev/api/people/?page=2
func (k Key) String() string {
	url := k.URL
	if i := strings.IndexByte(url, '?'); i < 0 {
		url = strings.TrimRight(url, "/")
	}
	return "swapi:page:" + url
}
