package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/swapi-client/internal/testutil"
	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/controller"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newTestClient wires a client to the mock upstream, optionally with caching.
func newTestClient(t *testing.T, mock *testutil.MockSWAPI, redisClient *redis.Client) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("swapi-client-integration/1.0.0")
	cfg.BaseURL = mock.PageURL("/api/people/")
	cfg.Timeout = 5 * time.Second
	cfg.Redis = redisClient
	cfg.CacheTTL = 60 * time.Second

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// fastControllerConfig keeps retry and dismiss waits short for tests.
func fastControllerConfig() controller.Config {
	return controller.Config{
		MaxAttempts:       3,
		InitialBackoff:    50 * time.Millisecond,
		BackoffMultiplier: 2.0,
		ErrorDismissAfter: 300 * time.Millisecond,
	}
}

// waitSettled polls until the controller leaves the loading state.
func waitSettled(t *testing.T, ctrl *controller.Controller) controller.State {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := ctrl.State()
		if !st.Loading {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("controller did not settle in time")
	return controller.State{}
}

// TestBrowseFlow covers mount -> first page -> navigate forward -> navigate back.
func TestBrowseFlow(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	page2 := mock.PageURL("/api/people/?page=2")
	mock.SetResponse("/api/people/", testutil.NewPageResponse("", page2, "Luke", "Leia"))
	mock.SetResponse("/api/people/?page=2", testutil.NewPageResponse(mock.PageURL("/api/people/"), "", "Han"))

	apiClient := newTestClient(t, mock, nil)
	ctrl := controller.New(apiClient, fastControllerConfig())
	defer ctrl.Close()

	st := waitSettled(t, ctrl)
	if st.Error != "" {
		t.Fatalf("Error = %q after mount, want empty", st.Error)
	}
	if len(st.Items) != 2 || st.Items[0].Name != "Luke" {
		t.Fatalf("Items = %+v, want first page", st.Items)
	}
	if st.Pages.Next != page2 {
		t.Fatalf("Pages.Next = %q, want %q", st.Pages.Next, page2)
	}

	ctrl.GoToPage(st.Pages.Next)
	st = waitSettled(t, ctrl)
	if len(st.Items) != 1 || st.Items[0].Name != "Han" {
		t.Fatalf("Items = %+v after forward navigation, want second page", st.Items)
	}
	if st.Pages.Current != page2 {
		t.Errorf("Pages.Current = %q, want %q", st.Pages.Current, page2)
	}

	ctrl.GoToPage(st.Pages.Previous)
	st = waitSettled(t, ctrl)
	if len(st.Items) != 2 || st.Items[0].Name != "Luke" {
		t.Errorf("Items = %+v after backward navigation, want first page again", st.Items)
	}
}

// TestCachedPageSkipsNetwork verifies the Redis cache answers repeated
// fetches of the same page without an upstream request.
func TestCachedPageSkipsNetwork(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetResponse("/api/people/", testutil.NewPageResponse("", "", "Luke"))

	apiClient := newTestClient(t, mock, redisClient)
	ctx := context.Background()

	first, err := apiClient.FetchPage(ctx, "")
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Fatalf("Request count = %d after first fetch, want 1", mock.GetRequestCount())
	}

	second, err := apiClient.FetchPage(ctx, "")
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("Request count = %d after cached fetch, want still 1", mock.GetRequestCount())
	}
	if len(second.Results) != len(first.Results) {
		t.Errorf("Cached page differs: %+v vs %+v", second.Results, first.Results)
	}
}

// TestRetryFlow verifies the controller rides out transient upstream
// failures and settles with data.
func TestRetryFlow(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetScript("/api/people/",
		testutil.NewServerErrorResponse(),
		testutil.NewServerErrorResponse(),
		testutil.NewPageResponse("", "", "Luke"),
	)

	apiClient := newTestClient(t, mock, nil)
	ctrl := controller.New(apiClient, fastControllerConfig())
	defer ctrl.Close()

	st := waitSettled(t, ctrl)
	if st.Error != "" {
		t.Errorf("Error = %q, want empty after successful retry", st.Error)
	}
	if len(st.Items) != 1 || st.Items[0].Name != "Luke" {
		t.Errorf("Items = %+v, want page from third attempt", st.Items)
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("Request count = %d, want 3 (two failures, one success)", mock.GetRequestCount())
	}
}

// TestRetryExhaustion verifies a persistently failing upstream surfaces an
// error after exactly MaxAttempts requests.
func TestRetryExhaustion(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetResponse("/api/people/", testutil.NewServerErrorResponse())

	apiClient := newTestClient(t, mock, nil)
	ctrl := controller.New(apiClient, fastControllerConfig())
	defer ctrl.Close()

	st := waitSettled(t, ctrl)
	if st.Error != "503: Service Unavailable" {
		t.Errorf("Error = %q, want %q", st.Error, "503: Service Unavailable")
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("Request count = %d, want exactly 3 attempts", mock.GetRequestCount())
	}

	times := mock.GetRequestTimes()
	if len(times) == 3 {
		if wait := times[1].Sub(times[0]); wait < 50*time.Millisecond {
			t.Errorf("First backoff = %v, want >= 50ms", wait)
		}
		if wait := times[2].Sub(times[1]); wait < 100*time.Millisecond {
			t.Errorf("Second backoff = %v, want >= 100ms", wait)
		}
	}
}

// TestClientErrorNoRetry verifies 4xx responses fail fast.
func TestClientErrorNoRetry(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetResponse("/api/people/", testutil.NewNotFoundResponse())

	apiClient := newTestClient(t, mock, nil)
	ctrl := controller.New(apiClient, fastControllerConfig())
	defer ctrl.Close()

	st := waitSettled(t, ctrl)
	if st.Error != "404: Not Found" {
		t.Errorf("Error = %q, want %q", st.Error, "404: Not Found")
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("Request count = %d, want 1 (no retry)", mock.GetRequestCount())
	}
}

// TestWalkerWithCache walks the whole collection twice; the second walk is
// served entirely from Redis.
func TestWalkerWithCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	page2 := mock.PageURL("/api/people/?page=2")
	mock.SetResponse("/api/people/", testutil.NewPageResponse("", page2, "Luke", "Leia"))
	mock.SetResponse("/api/people/?page=2", testutil.NewPageResponse(mock.PageURL("/api/people/"), "", "Han"))

	apiClient := newTestClient(t, mock, redisClient)
	walker := pagination.NewWalker(apiClient, pagination.DefaultConfig())

	people, err := walker.FetchAll(context.Background(), "")
	if err != nil {
		t.Fatalf("First walk failed: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("Got %d people, want 3", len(people))
	}
	if mock.GetRequestCount() != 2 {
		t.Fatalf("Request count = %d after first walk, want 2", mock.GetRequestCount())
	}

	people, err = walker.FetchAll(context.Background(), "")
	if err != nil {
		t.Fatalf("Second walk failed: %v", err)
	}
	if len(people) != 3 {
		t.Errorf("Got %d people on cached walk, want 3", len(people))
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Request count = %d after cached walk, want still 2", mock.GetRequestCount())
	}
}
