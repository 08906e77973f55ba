package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GalaxyClientv2/internal/models"
)

func TestGalaxyPath(t *testing.T) {
	assert.Equal(t, "ab/cd/abcdef12", GalaxyPath("abcdef12"))
	assert.Equal(t, "0f/1e/0f1e2d3c4b5a69788796a5b4c3d2e1f0", GalaxyPath("0f1e2d3c4b5a69788796a5b4c3d2e1f0"))
}

func TestGalaxyPathPreSharded(t *testing.T) {
	// Manifest hashes that already contain a separator pass through.
	assert.Equal(t, "ab/cd/abcdef12", GalaxyPath("ab/cd/abcdef12"))
	assert.Equal(t, "store/thing", GalaxyPath("store/thing"))
}

func TestMergeURLParams(t *testing.T) {
	url := MergeURLParams("https://{host}/{path}?token={token}", map[string]any{
		"host":  "cdn.example.com",
		"path":  "a/b/c",
		"token": 12345,
	})
	assert.Equal(t, "https://cdn.example.com/a/b/c?token=12345", url)
}

func TestBuildChunkURLTemplateEndpoint(t *testing.T) {
	endpoint := models.EndpointDescriptor{
		Kind:         models.EndpointTemplate,
		EndpointName: "fastly",
		URLFormat:    "https://cdn/{path}",
		Parameters:   map[string]any{"path": "/base"},
	}

	// The shard path is appended to the existing path parameter verbatim;
	// the resulting double slash is what these CDNs actually serve.
	url := BuildChunkURL(endpoint, "abcdef12")
	assert.Equal(t, "https://cdn//base/ab/cd/abcdef12", url)
}

func TestBuildChunkURLEdgecastEndpoint(t *testing.T) {
	endpoint := models.EndpointDescriptor{
		Kind:         models.EndpointTemplate,
		EndpointName: "akamai_edgecast_proxy",
		URLFormat:    "https://edge/{path}",
		Parameters:   map[string]any{"path": "/base/"},
	}

	// The edgecast family wants exactly one separator before the shard.
	url := BuildChunkURL(endpoint, "abcdef12")
	assert.Equal(t, "https://edge//base/ab/cd/abcdef12", url)
}

func TestBuildChunkURLDirectEndpoint(t *testing.T) {
	endpoint := models.EndpointDescriptor{
		Kind: models.EndpointDirect,
		URL:  "https://cdn.example.com/token",
	}

	url := BuildChunkURL(endpoint, "abcdef12")
	assert.Equal(t, "https://cdn.example.com/token/ab/cd/abcdef12", url)
}

func TestBuildChunkURLDoesNotMutateEndpoint(t *testing.T) {
	endpoint := models.EndpointDescriptor{
		Kind:       models.EndpointTemplate,
		URLFormat:  "https://cdn/{path}",
		Parameters: map[string]any{"path": "/base"},
	}

	first := BuildChunkURL(endpoint, "abcdef12")
	second := BuildChunkURL(endpoint, "abcdef12")

	// The descriptor is shared session state; deriving a URL twice must be
	// deterministic.
	require.Equal(t, first, second)
	assert.Equal(t, "/base", endpoint.Parameters["path"])
}
