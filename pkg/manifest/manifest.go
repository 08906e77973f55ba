// Package manifest selects the build to install and loads the build and
// depot manifests.
package manifest

import (
	"encoding/json"
	"fmt"

	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/content"
	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/gogerrors"
)

type Resolver struct {
	API *gogapi.Client
}

func NewResolver(api *gogapi.Client) *Resolver {
	return &Resolver{API: api}
}

// SelectBuild picks the first build whose branch matches the request (an
// unset branch matches an empty request). Catalog ordering is the only
// ordering applied; if nothing matches, the first listed build wins.
func SelectBuild(builds *models.GetBuildsResponse, requestedBranch string) (*models.Build, error) {
	if builds == nil || len(builds.Items) == 0 {
		return nil, gogerrors.Wrap(gogerrors.ErrManifestUnavailable, "no builds found")
	}

	for i := range builds.Items {
		if builds.Items[i].Branch == requestedBranch {
			return &builds.Items[i], nil
		}
	}
	return &builds.Items[0], nil
}

// LoadManifest fetches and inflates the build manifest. Any failure here is
// fatal to the whole download, there is no partial-manifest mode.
func (r *Resolver) LoadManifest(build *models.Build) (*models.Manifest, error) {
	data, _, err := r.API.GetZlibEncoded(build.Link)
	if err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrManifestUnavailable, "fetch manifest for build %s: %v", build.BuildID, err)
	}

	var manifest models.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrManifestUnavailable, "parse manifest for build %s: %v", build.BuildID, err)
	}

	logging.GlobalLogger.Info(fmt.Sprintf("Loaded manifest for build %s: %d depots, install directory %q",
		build.BuildID, len(manifest.Depots), manifest.InstallDirectory))
	return &manifest, nil
}

// LoadDepotFiles fetches and inflates a depot's file-item manifest from the
// CDN meta endpoint.
func (r *Resolver) LoadDepotFiles(depot *models.Depot) (*models.DepotFileManifest, error) {
	url := r.API.DepotManifestURL(content.GalaxyPath(depot.Manifest))

	data, _, err := r.API.GetZlibEncoded(url)
	if err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrDepotUnavailable, "fetch depot manifest %s: %v", depot.Manifest, err)
	}

	var depotManifest models.DepotFileManifest
	if err := json.Unmarshal(data, &depotManifest); err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrDepotUnavailable, "parse depot manifest %s: %v", depot.Manifest, err)
	}
	if depotManifest.Depot.Items == nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrDepotUnavailable, "unexpected depot manifest structure for %s", depot.Manifest)
	}

	logging.GlobalLogger.Info(fmt.Sprintf("Loaded depot manifest %s with %d items", depot.Manifest, len(depotManifest.Depot.Items)))
	return &depotManifest, nil
}
