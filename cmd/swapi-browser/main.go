// Command swapi-browser is a small terminal pager over the people resource.
// It owns one fetch controller and maps n/p commands to page navigation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/controller"
	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configuration from environment
	baseURL := getEnv("SWAPI_BASE_URL", "https://swapi.dev/api/people/")
	userAgent := getEnv("USER_AGENT", "swapi-browser/0.1.0")
	redisURL := os.Getenv("REDIS_URL")       // empty disables page caching
	metricsAddr := os.Getenv("METRICS_ADDR") // empty disables the metrics endpoint

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "warn")),
		Pretty: true,
		Output: os.Stderr,
	})

	cfg := client.DefaultConfig(userAgent)
	cfg.BaseURL = baseURL

	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		cfg.Redis = redisClient
		log.Info().Str("addr", redisURL).Msg("Page caching enabled")
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	ctrl := controller.New(apiClient, controller.DefaultConfig())
	defer ctrl.Close()

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	go func() {
		for st := range updates {
			render(os.Stdout, st)
		}
	}()

	fmt.Println("Commands: n (next page), p (previous page), q (quit)")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		pages := ctrl.State().Pages
		switch strings.TrimSpace(scanner.Text()) {
		case "n":
			// On the last page Next is empty and navigation is a no-op.
			ctrl.GoToPage(pages.Next)
		case "p":
			ctrl.GoToPage(pages.Previous)
		case "q":
			return
		case "":
		default:
			fmt.Println("Commands: n (next page), p (previous page), q (quit)")
		}
	}
}

// render prints one state snapshot. Loading states are announced briefly;
// settled states list the page contents and navigation availability.
func render(w io.Writer, st controller.State) {
	if st.Loading {
		fmt.Fprintln(w, "loading…")
		return
	}

	if st.Error != "" {
		fmt.Fprintf(w, "error: %s\n", st.Error)
	}

	for _, person := range st.Items {
		fmt.Fprintln(w, personLine(person))
	}
	fmt.Fprintf(w, "[%s]\n", navLine(st.Pages))
}

// personLine formats one character for display.
func personLine(p client.Person) string {
	return fmt.Sprintf("%-24s height=%-6s born=%-8s eyes=%s", p.Name, p.Height, p.BirthYear, p.EyeColor)
}

// navLine summarizes which directions are available from the current page.
func navLine(pages controller.Pages) string {
	var parts []string
	if pages.Previous != "" {
		parts = append(parts, "p: previous")
	}
	if pages.Next != "" {
		parts = append(parts, "n: next")
	}
	parts = append(parts, "q: quit")
	return strings.Join(parts, " | ")
}

// serveMetrics exposes Prometheus metrics and a health probe.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
