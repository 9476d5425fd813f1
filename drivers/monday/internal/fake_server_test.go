package driver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	graphQLRequest
	header http.Header
}

// fakeMonday serves GraphQL requests from a handler and records them
type fakeMonday struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, req graphQLRequest, attempt int)
}

func newFakeMonday(t *testing.T, handler func(w http.ResponseWriter, req graphQLRequest, attempt int)) *fakeMonday {
	t.Helper()
	fake := &fakeMonday{handler: handler}
	fake.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req graphQLRequest
		require.NoError(t, json.Unmarshal(body, &req))

		fake.mu.Lock()
		fake.requests = append(fake.requests, recordedRequest{graphQLRequest: req, header: r.Header.Clone()})
		attempt := len(fake.requests)
		fake.mu.Unlock()

		fake.handler(w, req, attempt)
	}))
	t.Cleanup(fake.Close)
	return fake
}

func (f *fakeMonday) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeMonday) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest{}, f.requests...)
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	payload, _ := json.Marshal(map[string]any{"data": data})
	_, _ = w.Write(payload)
}

func writeErrors(w http.ResponseWriter, code, message string, extensions map[string]any) {
	if extensions == nil {
		extensions = map[string]any{}
	}
	extensions["code"] = code
	w.Header().Set("Content-Type", "application/json")
	payload, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"message": message, "extensions": extensions}},
	})
	_, _ = w.Write(payload)
}

func testConfig(url string) *Config {
	config := &Config{
		APIToken:          "secret-token",
		StartDate:         "2024-01-01T00:00:00Z",
		APIURL:            url,
		BackoffInitialMS:  1,
		RequestsPerSecond: 1000,
		RequestTimeout:    5,
	}
	config.setDefaults()
	return config
}
