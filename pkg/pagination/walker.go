package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/rs/zerolog/log"
)

// Config holds walker configuration
type Config struct {
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages bounds the walk; a next-token cycle would otherwise loop forever
	MaxPages int
	// ProgressEvery logs progress after this many pages (0 disables)
	ProgressEvery int
}

// DefaultConfig returns safe default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       15 * time.Second,
		MaxPages:      1000,
		ProgressEvery: 10,
	}
}

// PageFetcher is the single-page fetch interface the walker consumes.
// *client.Client implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*client.Page, error)
}

// Walker traverses every page of the collection by following next tokens.
type Walker struct {
	fetcher PageFetcher
	config  Config
}

// NewWalker creates a new walker
func NewWalker(fetcher PageFetcher, config Config) *Walker {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxPages <= 0 {
		config.MaxPages = 1000
	}

	return &Walker{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll walks the collection starting at startURL ("" for the first
// page) and returns every item in page order. A failed page aborts the
// walk; partial results are returned alongside the error.
func (w *Walker) FetchAll(ctx context.Context, startURL string) ([]client.Person, error) {
	start := time.Now()

	var people []client.Person
	token := startURL

	for page := 1; ; page++ {
		if page > w.config.MaxPages {
			return people, fmt.Errorf("page limit reached after %d pages (next token cycle?)", w.config.MaxPages)
		}

		pageCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
		result, err := w.fetcher.FetchPage(pageCtx, token)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Str("page_url", token).
				Int("page", page).
				Msg("Page fetch failed - returning partial results")
			return people, fmt.Errorf("fetch page %d (partial data: %d items): %w", page, len(people), err)
		}

		people = append(people, result.Results...)

		if w.config.ProgressEvery > 0 && page%w.config.ProgressEvery == 0 {
			log.Info().
				Int("pages", page).
				Int("items", len(people)).
				Int("expected_total", result.Count).
				Msg("Walk progress")
		}

		if result.Next == "" {
			log.Info().
				Int("pages", page).
				Int("items", len(people)).
				Dur("duration", time.Since(start)).
				Msg("Walk complete")
			return people, nil
		}

		token = result.Next
	}
}
