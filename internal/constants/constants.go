package constants

import "os"

// GOG API endpoints
const (
	GogCdn           = "https://gog-cdn-fastly.gog.com"
	GogContentSystem = "https://content-system.gog.com"
	GogEmbed         = "https://embed.gog.com"
	GogApi           = "https://api.gog.com"
)

// CDN requests must look like the Galaxy client, not like us.
const (
	GalaxyUserAgent = "GOGGalaxyClient/2.0.45.61 (Windows_x86_64)"
	ClientUserAgent = "GalaxyClientv2/1.0"
)

// Manifest paths use the separator of the platform the depot targets,
// which is usually not the separator of the machine we run on.
var NonNativeSep = func() string {
	if os.PathSeparator == '/' {
		return "\\"
	}
	return "/"
}()
