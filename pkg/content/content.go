// Package content maps content hashes to sharded storage paths and chunk
// URLs. Pure functions, no I/O.
package content

import (
	"fmt"
	"strings"

	"GalaxyClientv2/internal/models"
)

// CDN family whose path template already accounts for the joining separator.
const akamaiEdgecastProxy = "akamai_edgecast_proxy"

// GalaxyPath shards a content hash into the two-level hex-prefix layout the
// CDN stores chunks under. Hashes that already contain a separator are
// pre-sharded by the manifest and pass through unchanged.
func GalaxyPath(hash string) string {
	if strings.Contains(hash, "/") {
		return hash
	}
	return hash[0:2] + "/" + hash[2:4] + "/" + hash
}

// MergeURLParams substitutes {key} placeholders in a URL template.
func MergeURLParams(template string, parameters map[string]any) string {
	result := template
	for key, value := range parameters {
		result = strings.ReplaceAll(result, "{"+key+"}", fmt.Sprint(value))
	}
	return result
}

// BuildChunkURL derives the CDN URL for a chunk from an endpoint descriptor.
// The joining rules differ per CDN vendor: the edgecast/akamai family wants
// exactly one separator between its path parameter and the shard path, every
// other template endpoint gets "/"+shard appended verbatim (double slashes
// included, that is what those CDNs serve), and direct endpoints are plain
// base+"/"+shard. The descriptor is never mutated, it is shared session
// state.
func BuildChunkURL(endpoint models.EndpointDescriptor, contentHash string) string {
	galaxyPath := GalaxyPath(contentHash)

	switch endpoint.Kind {
	case models.EndpointTemplate:
		parameters := make(map[string]any, len(endpoint.Parameters))
		for k, v := range endpoint.Parameters {
			parameters[k] = v
		}

		basePath := fmt.Sprint(parameters["path"])
		if endpoint.EndpointName == akamaiEdgecastProxy {
			parameters["path"] = strings.TrimSuffix(basePath, "/") + "/" + galaxyPath
		} else {
			parameters["path"] = basePath + "/" + galaxyPath
		}
		return MergeURLParams(endpoint.URLFormat, parameters)
	default:
		return endpoint.URL + "/" + galaxyPath
	}
}
