// Package gogapi is the authenticated client for the GOG catalog and
// content-system endpoints. Chunk payloads never go through this client,
// CDN requests must not carry the bearer token.
package gogapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"GalaxyClientv2/internal/config"
	"GalaxyClientv2/internal/constants"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/pkg/decompressor"
)

type Client struct {
	HttpClient *http.Client
	Token      string
	UserAgent  string

	ContentSystemURL string
	APIURL           string
	EmbedURL         string
	CdnURL           string
}

func NewClient(token string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: config.Config.WorkerCount * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		HttpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.Config.ConnectionTimeoutSec) * time.Second,
		},
		Token:     token,
		UserAgent: constants.ClientUserAgent,

		ContentSystemURL: constants.GogContentSystem,
		APIURL:           constants.GogApi,
		EmbedURL:         constants.GogEmbed,
		CdnURL:           constants.GogCdn,
	}
}

// Get issues an authenticated GET. The caller owns the response body.
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HttpClient.Do(req)
}

func (c *Client) getJSON(url string, out any) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("request failed with status %s for %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetZlibEncoded fetches a zlib-compressed body, inflates it and returns the
// raw JSON bytes plus the response headers.
func (c *Client) GetZlibEncoded(url string) ([]byte, http.Header, error) {
	resp, err := c.Get(url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, nil, fmt.Errorf("request failed with status %s for %s", resp.Status, url)
	}

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	data, err := decompressor.Inflate(compressed)
	if err != nil {
		logging.GlobalLogger.Error("Failed to inflate response from " + url + ": " + err.Error())
		return nil, nil, err
	}
	return data, resp.Header, nil
}
