package gogapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
)

// GetBuilds lists the catalog's builds for a product and platform. Catalog
// ordering is preserved, build selection relies on it.
func (c *Client) GetBuilds(productID, platform string) (*models.GetBuildsResponse, error) {
	reqURL := fmt.Sprintf("%s/products/%s/os/%s/builds?generation=2", c.ContentSystemURL, productID, platform)

	var builds models.GetBuildsResponse
	if err := c.getJSON(reqURL, &builds); err != nil {
		logging.GlobalLogger.Error("Failed to fetch builds for product " + productID + ": " + err.Error())
		return nil, err
	}
	logging.GlobalLogger.Info(fmt.Sprintf("Fetched %d builds for product %s", len(builds.Items), productID))
	return &builds, nil
}

// SecureLinkURL builds the link-issuance URL. The query shape differs per
// protocol generation.
func (c *Client) SecureLinkURL(productID, path string, generation int, root string) string {
	var reqURL string
	switch generation {
	case 2:
		reqURL = fmt.Sprintf("%s/products/%s/secure_link?_version=2&generation=2&path=%s",
			c.ContentSystemURL, productID, url.QueryEscape(path))
	default:
		reqURL = fmt.Sprintf("%s/products/%s/secure_link?_version=2&type=depot&path=%s",
			c.ContentSystemURL, productID, url.QueryEscape(path))
	}
	if root != "" {
		reqURL += "&root=" + url.QueryEscape(root)
	}
	return reqURL
}

// GetSecureLink issues one secure_link request. Retry policy lives in the
// securelink resolver, not here.
func (c *Client) GetSecureLink(productID, path string, generation int, root string) ([]models.EndpointDescriptor, error) {
	resp, err := c.Get(c.SecureLinkURL(productID, path, generation, root))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("secure link request for product %s (generation %d) returned %s", productID, generation, resp.Status)
	}

	var body models.SecureLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.URLs, nil
}

// DepotManifestURL derives the meta URL of a depot's file-item manifest.
// Depot manifests are fetched as meta objects, only chunk payloads go
// through secure links.
func (c *Client) DepotManifestURL(galaxyPath string) string {
	return c.CdnURL + "/content-system/v2/meta/" + galaxyPath
}
