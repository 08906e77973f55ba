package downloader

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GalaxyClientv2/internal/constants"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/content"
	"GalaxyClientv2/pkg/decompressor"
	"GalaxyClientv2/pkg/gogerrors"
)

func directEndpoint(base string) models.EndpointDescriptor {
	return models.EndpointDescriptor{Kind: models.EndpointDirect, URL: base}
}

// chunkServer serves one deflated chunk at its galaxy path and 404s
// everything else.
func chunkServer(t *testing.T, plain []byte) (*httptest.Server, string, *int32) {
	t.Helper()

	compressed := decompressor.Deflate(plain)
	sum := md5.Sum(compressed)
	hash := hex.EncodeToString(sum[:])

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/"+content.GalaxyPath(hash) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(compressed)
	}))
	t.Cleanup(srv.Close)
	return srv, hash, &requests
}

func TestFetchInflatesChunk(t *testing.T) {
	plain := []byte("chunk payload with some repetition repetition")
	srv, hash, _ := chunkServer(t, plain)

	fetcher := NewChunkFetcher()
	result, err := fetcher.Fetch(hash, []models.EndpointDescriptor{directEndpoint(srv.URL)}, nil)
	require.NoError(t, err)

	assert.Equal(t, plain, result.Data)
	assert.Equal(t, 2, result.Generation)
	assert.True(t, result.WasCompressed)
}

func TestFetchFallsBackToNextEndpoint(t *testing.T) {
	plain := []byte("chunk payload")
	srv, hash, requests := chunkServer(t, plain)

	var deadRequests int32
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deadRequests, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer dead.Close()

	gen2 := []models.EndpointDescriptor{directEndpoint(dead.URL), directEndpoint(srv.URL)}

	fetcher := NewChunkFetcher()
	result, err := fetcher.Fetch(hash, gen2, nil)
	require.NoError(t, err)

	assert.Equal(t, plain, result.Data)
	// One attempt per endpoint, no retries on the dead one.
	assert.Equal(t, int32(1), atomic.LoadInt32(&deadRequests))
	assert.Equal(t, int32(1), atomic.LoadInt32(requests))
}

func TestFetchFallsBackToGenerationOne(t *testing.T) {
	plain := []byte("legacy chunk")
	srv, hash, _ := chunkServer(t, plain)

	fetcher := NewChunkFetcher()
	result, err := fetcher.Fetch(hash, nil, []models.EndpointDescriptor{directEndpoint(srv.URL)})
	require.NoError(t, err)

	assert.Equal(t, plain, result.Data)
	assert.Equal(t, 1, result.Generation)
}

func TestFetchRejectsCorruptedPayload(t *testing.T) {
	plain := []byte("chunk payload")
	compressed := decompressor.Deflate(plain)
	sum := md5.Sum(compressed)
	hash := hex.EncodeToString(sum[:])

	corrupt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wrong bytes entirely"))
	}))
	defer corrupt.Close()

	good, _, _ := chunkServer(t, plain)

	fetcher := NewChunkFetcher()
	result, err := fetcher.Fetch(hash, []models.EndpointDescriptor{directEndpoint(corrupt.URL), directEndpoint(good.URL)}, nil)
	require.NoError(t, err)

	// The corrupted endpoint fails verification and the next one serves.
	assert.Equal(t, plain, result.Data)
}

func TestFetchUncompressedChunk(t *testing.T) {
	plain := []byte("stored raw, not zlib-framed")
	sum := md5.Sum(plain)
	hash := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(plain)
	}))
	defer srv.Close()

	fetcher := NewChunkFetcher()
	result, err := fetcher.Fetch(hash, []models.EndpointDescriptor{directEndpoint(srv.URL)}, nil)
	require.NoError(t, err)

	assert.Equal(t, plain, result.Data)
	assert.False(t, result.WasCompressed)
}

func TestFetchExhaustionIsChunkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewChunkFetcher()
	_, err := fetcher.Fetch("deadbeefdeadbeefdeadbeefdeadbeef",
		[]models.EndpointDescriptor{directEndpoint(srv.URL)},
		[]models.EndpointDescriptor{directEndpoint(srv.URL)})

	assert.ErrorIs(t, err, gogerrors.ErrChunkUnavailable)
}

func TestFetchSendsGalaxyUserAgentAndNoToken(t *testing.T) {
	plain := []byte("chunk")
	compressed := decompressor.Deflate(plain)
	sum := md5.Sum(compressed)
	hash := hex.EncodeToString(sum[:])

	var gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Write(compressed)
	}))
	defer srv.Close()

	fetcher := NewChunkFetcher()
	_, err := fetcher.Fetch(hash, []models.EndpointDescriptor{directEndpoint(srv.URL)}, nil)
	require.NoError(t, err)

	assert.Equal(t, constants.GalaxyUserAgent, gotUA)
	assert.Empty(t, gotAuth)
}
