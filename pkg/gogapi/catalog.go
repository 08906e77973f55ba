package gogapi

import (
	"fmt"

	"GalaxyClientv2/internal/logging"
)

// Catalog lookups outside the chunk-delivery path. Used by the info surface
// only.

func (c *Client) GetUserData() (map[string]any, error) {
	var data map[string]any
	if err := c.getJSON(c.APIURL+"/user/data/games", &data); err != nil {
		logging.GlobalLogger.Error("Failed to fetch user data: " + err.Error())
		return nil, err
	}
	return data, nil
}

func (c *Client) GetGameDetails(productID string) (map[string]any, error) {
	url := fmt.Sprintf("%s/account/gameDetails/%s.json", c.EmbedURL, productID)

	var details map[string]any
	if err := c.getJSON(url, &details); err != nil {
		logging.GlobalLogger.Error("Failed to fetch game details for " + productID + ": " + err.Error())
		return nil, err
	}
	return details, nil
}
