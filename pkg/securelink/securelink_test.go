package securelink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/gogerrors"
)

func newTestResolver(srv *httptest.Server, maxAttempts int) *Resolver {
	api := gogapi.NewClient("test-token")
	api.ContentSystemURL = srv.URL
	return &Resolver{
		API:         api,
		MaxAttempts: maxAttempts,
		Backoff:     time.Millisecond,
		cache:       make(map[cacheKey]*cacheEntry),
	}
}

func linksBody(urls ...string) []byte {
	type direct struct {
		URL string `json:"url"`
	}
	descriptors := make([]direct, len(urls))
	for i, u := range urls {
		descriptors[i] = direct{URL: u}
	}
	body, _ := json.Marshal(map[string]any{"urls": descriptors})
	return body
}

func TestResolveRetriesTransientFailures(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(linksBody("https://cdn-a", "https://cdn-b"))
	}))
	defer srv.Close()

	resolver := newTestResolver(srv, 5)
	endpoints, err := resolver.Resolve("1001", 2)
	require.NoError(t, err)

	require.Len(t, endpoints, 2)
	assert.Equal(t, "https://cdn-a", endpoints[0].URL)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestResolveBoundedRetryExhaustion(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resolver := newTestResolver(srv, 3)
	_, err := resolver.Resolve("1001", 2)

	// Never recurses forever: exactly MaxAttempts requests, then a typed
	// failure.
	require.ErrorIs(t, err, gogerrors.ErrSecureLinkUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestResolveCachesPerProductAndGeneration(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write(linksBody("https://cdn"))
	}))
	defer srv.Close()

	resolver := newTestResolver(srv, 3)

	for i := 0; i < 5; i++ {
		_, err := resolver.Resolve("1001", 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	// A different generation is a different cache key.
	_, err := resolver.Resolve("1001", 1)
	require.NoError(t, err)
	_, err = resolver.Resolve("2002", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestResolveQueryShapePerGeneration(t *testing.T) {
	queries := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		w.Write(linksBody("https://cdn"))
	}))
	defer srv.Close()

	resolver := newTestResolver(srv, 3)

	_, err := resolver.Resolve("1001", 2)
	require.NoError(t, err)
	assert.Contains(t, <-queries, "generation=2")

	_, err = resolver.Resolve("1001", 1)
	require.NoError(t, err)
	assert.Contains(t, <-queries, "type=depot")
}
