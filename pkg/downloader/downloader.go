package downloader

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"GalaxyClientv2/internal/config"
	"GalaxyClientv2/internal/constants"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/content"
	"GalaxyClientv2/pkg/decompressor"
	"GalaxyClientv2/pkg/gogerrors"
	"GalaxyClientv2/pkg/verifier"
)

func NewChunkFetcher() *ChunkFetcher {
	workerCount := config.Config.WorkerCount

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: workerCount * 2,
		MaxConnsPerHost:     workerCount * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &ChunkFetcher{
		HttpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.Config.DownloadTimeoutMin) * time.Minute,
		},
		UserAgent: constants.GalaxyUserAgent,
	}
}

// Fetch downloads one chunk, walking the generation-2 endpoints in priority
// order and falling back to the generation-1 list. Each endpoint gets a
// single attempt. Exhausting both tiers is ErrChunkUnavailable; retrying at
// a coarser granularity is the coordinator's call.
func (f *ChunkFetcher) Fetch(contentHash string, gen2, gen1 []models.EndpointDescriptor) (*FetchResult, error) {
	if result := f.tryEndpoints(contentHash, gen2, 2); result != nil {
		return result, nil
	}
	if result := f.tryEndpoints(contentHash, gen1, 1); result != nil {
		return result, nil
	}
	return nil, gogerrors.Wrapf(gogerrors.ErrChunkUnavailable,
		"chunk %s failed on all %d generation-2 and %d generation-1 endpoints", contentHash, len(gen2), len(gen1))
}

func (f *ChunkFetcher) tryEndpoints(contentHash string, endpoints []models.EndpointDescriptor, generation int) *FetchResult {
	for _, endpoint := range endpoints {
		chunkURL := content.BuildChunkURL(endpoint, contentHash)

		payload, ok := f.get(chunkURL)
		if !ok {
			continue
		}

		// The content hash is the hash of the compressed payload. Checking
		// it before inflating turns a wrong or corrupted CDN object into a
		// clean endpoint failure instead of an opaque zlib error.
		if !verifier.VerifyPayload(payload, contentHash) {
			logging.GlobalLogger.Warn(fmt.Sprintf("Chunk %s from %s failed hash verification, trying next endpoint", contentHash, chunkURL))
			continue
		}

		data, wasCompressed := decompressor.InflateOrRaw(payload)
		if !wasCompressed {
			logging.GlobalLogger.Warn(fmt.Sprintf("Chunk %s from %s was not zlib-framed, using raw payload", contentHash, chunkURL))
		}

		logging.GlobalLogger.Debug(fmt.Sprintf("Fetched chunk %s via generation-%d endpoint (%d -> %d bytes)", contentHash, generation, len(payload), len(data)))
		return &FetchResult{
			Data:          data,
			Endpoint:      chunkURL,
			Generation:    generation,
			WasCompressed: wasCompressed,
		}
	}
	return nil
}

func (f *ChunkFetcher) get(url string) ([]byte, bool) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		logging.GlobalLogger.Error("Failed to build chunk request for " + url + ": " + err.Error())
		return nil, false
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.HttpClient.Do(req)
	if err != nil {
		logging.GlobalLogger.Warn("Chunk request failed for " + url + ": " + err.Error())
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		logging.GlobalLogger.Warn(fmt.Sprintf("Chunk request for %s returned %s, trying next endpoint", url, resp.Status))
		return nil, false
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.GlobalLogger.Warn("Failed to read chunk body from " + url + ": " + err.Error())
		return nil, false
	}
	return payload, true
}
