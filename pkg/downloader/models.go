package downloader

import "net/http"

// ChunkFetcher downloads content-addressed chunks from the CDN. Its client
// carries no authorization header: secure-link descriptors are the
// authorization, and some CDNs reject requests with unexpected bearer
// tokens.
type ChunkFetcher struct {
	HttpClient *http.Client
	UserAgent  string
}

// FetchResult reports how a chunk was obtained, mostly for logs and tests.
type FetchResult struct {
	Data          []byte
	Endpoint      string
	Generation    int
	WasCompressed bool
}
