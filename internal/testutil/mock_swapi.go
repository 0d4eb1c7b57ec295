// Package testutil provides testing utilities for the swapi client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSWAPI is a configurable mock people-resource server for testing.
type MockSWAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	scripts  map[string][]MockResponse

	// Tracking
	RequestCount      int
	RequestTimes      []time.Time
	LastRequestHeader http.Header
}

// NewMockSWAPI creates a new mock server.
func NewMockSWAPI() *MockSWAPI {
	mock := &MockSWAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		scripts:  make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestTimes = append(mock.RequestTimes, time.Now())
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		key := r.URL.RequestURI()

		// Scripted responses take precedence: each request consumes the
		// next response, the last one repeats.
		if resp, ok := mock.nextScripted(key); ok {
			writeMockResponse(w, resp)
			return
		}

		mock.mu.RLock()
		handler, exists := mock.handlers[key]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSWAPI) URL() string {
	return m.server.URL
}

// PageURL returns the full URL for a path like "/api/people/?page=2".
func (m *MockSWAPI) PageURL(path string) string {
	return m.server.URL + path
}

// Close shuts down the mock server.
func (m *MockSWAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSWAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestTimes = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific request URI.
func (m *MockSWAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a request URI.
func (m *MockSWAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeMockResponse(w, resp)
	})
}

// SetScript configures a response sequence for a request URI: request N
// gets the Nth response, further requests repeat the last one.
func (m *MockSWAPI) SetScript(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[path] = responses
}

// nextScripted consumes the next scripted response for a request URI.
func (m *MockSWAPI) nextScripted(path string) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	script, ok := m.scripts[path]
	if !ok || len(script) == 0 {
		return MockResponse{}, false
	}

	resp := script[0]
	if len(script) > 1 {
		m.scripts[path] = script[1:]
	}
	return resp, true
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSWAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestTimes returns the arrival time of every request seen so far.
func (m *MockSWAPI) GetRequestTimes() []time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]time.Time(nil), m.RequestTimes...)
}

// writeMockResponse renders a MockResponse.
func writeMockResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// defaultHandler serves an empty first page.
func (m *MockSWAPI) defaultHandler(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(PeoplePageBody("", "", 0)))
}

// PeoplePageBody builds a people page JSON body with one result per name.
func PeoplePageBody(previous, next string, count int, names ...string) string {
	type person struct {
		URL       string `json:"url"`
		Name      string `json:"name"`
		Height    string `json:"height"`
		BirthYear string `json:"birth_year"`
		EyeColor  string `json:"eye_color"`
	}

	results := make([]person, 0, len(names))
	for i, name := range names {
		results = append(results, person{
			URL:       fmt.Sprintf("https://example.test/api/people/%d/", i+1),
			Name:      name,
			Height:    "172",
			BirthYear: "19BBY",
			EyeColor:  "blue",
		})
	}

	page := map[string]any{
		"count":    count,
		"previous": nullable(previous),
		"next":     nullable(next),
		"results":  results,
	}

	body, err := json.Marshal(page)
	if err != nil {
		panic(err)
	}
	return string(body)
}

// nullable maps "" to JSON null, matching the upstream page shape.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NewPageResponse creates a 200 OK response carrying a people page.
func NewPageResponse(previous, next string, names ...string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       PeoplePageBody(previous, next, len(names), names...),
	}
}

// NewServerErrorResponse creates a 503 Service Unavailable response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       `{"detail": "service unavailable"}`,
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "Not found"}`,
	}
}
