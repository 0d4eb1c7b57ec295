package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/swapi-client/pkg/client"
)

// chainFetcher serves a fixed token -> page map; "" is the first page.
type chainFetcher struct {
	pages map[string]*client.Page
	errs  map[string]error
	calls []string
}

func (f *chainFetcher) FetchPage(ctx context.Context, pageURL string) (*client.Page, error) {
	f.calls = append(f.calls, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return nil, err
	}
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Class: client.ErrorClassClient, Message: "404: Not Found"}
	}
	return page, nil
}

func personPage(next string, names ...string) *client.Page {
	results := make([]client.Person, 0, len(names))
	for _, name := range names {
		results = append(results, client.Person{URL: "https://example.test/" + name, Name: name})
	}
	return &client.Page{Next: next, Count: 5, Results: results}
}

func TestWalker_FetchAll(t *testing.T) {
	fetcher := &chainFetcher{pages: map[string]*client.Page{
		"":   personPage("p2", "Luke", "Leia"),
		"p2": personPage("p3", "Han", "Chewbacca"),
		"p3": personPage("", "Obi-Wan"),
	}}

	walker := NewWalker(fetcher, DefaultConfig())

	people, err := walker.FetchAll(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	want := []string{"Luke", "Leia", "Han", "Chewbacca", "Obi-Wan"}
	if len(people) != len(want) {
		t.Fatalf("Got %d people, want %d", len(people), len(want))
	}
	for i, name := range want {
		if people[i].Name != name {
			t.Errorf("people[%d].Name = %q, want %q (page order must be preserved)", i, people[i].Name, name)
		}
	}

	wantCalls := []string{"", "p2", "p3"}
	if len(fetcher.calls) != len(wantCalls) {
		t.Fatalf("Fetch calls = %v, want %v", fetcher.calls, wantCalls)
	}
	for i, url := range wantCalls {
		if fetcher.calls[i] != url {
			t.Errorf("calls[%d] = %q, want %q", i, fetcher.calls[i], url)
		}
	}
}

func TestWalker_FetchAll_SinglePage(t *testing.T) {
	fetcher := &chainFetcher{pages: map[string]*client.Page{
		"": personPage("", "Luke"),
	}}

	walker := NewWalker(fetcher, DefaultConfig())

	people, err := walker.FetchAll(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(people) != 1 {
		t.Errorf("Got %d people, want 1", len(people))
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("Fetch calls = %d, want 1", len(fetcher.calls))
	}
}

func TestWalker_FetchAll_PartialOnError(t *testing.T) {
	fetchErr := errors.New("boom")
	fetcher := &chainFetcher{
		pages: map[string]*client.Page{
			"": personPage("p2", "Luke"),
		},
		errs: map[string]error{"p2": fetchErr},
	}

	walker := NewWalker(fetcher, DefaultConfig())

	people, err := walker.FetchAll(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, fetchErr) {
		t.Errorf("err = %v, want wrapped fetch error", err)
	}
	// Partial results from pages fetched before the failure.
	if len(people) != 1 || people[0].Name != "Luke" {
		t.Errorf("people = %+v, want partial results from page 1", people)
	}
}

func TestWalker_FetchAll_PageLimitBreaksCycles(t *testing.T) {
	// p2 points back at itself.
	fetcher := &chainFetcher{pages: map[string]*client.Page{
		"":   personPage("p2", "Luke"),
		"p2": personPage("p2", "Leia"),
	}}

	cfg := DefaultConfig()
	cfg.MaxPages = 5
	cfg.ProgressEvery = 0
	walker := NewWalker(fetcher, cfg)

	_, err := walker.FetchAll(context.Background(), "")
	if err == nil {
		t.Fatal("Expected page limit error, got nil")
	}
	if len(fetcher.calls) != 5 {
		t.Errorf("Fetch calls = %d, want exactly MaxPages", len(fetcher.calls))
	}
}

func TestNewWalker_Defaults(t *testing.T) {
	walker := NewWalker(&chainFetcher{}, Config{})

	if walker.config.Timeout <= 0 {
		t.Error("Timeout not defaulted")
	}
	if walker.config.MaxPages <= 0 {
		t.Error("MaxPages not defaulted")
	}
}
