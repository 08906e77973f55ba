package manifest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"GalaxyClientv2/internal/constants"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
)

// DepotLanguageCompatible reports whether a depot serves the target
// language. "*" is the wildcard the catalog uses for language-neutral
// depots.
func DepotLanguageCompatible(depot *models.Depot, targetLanguage string) bool {
	for _, lang := range depot.Languages {
		if lang == "*" || lang == targetLanguage {
			return true
		}
	}
	return false
}

// DepotBitnessCompatible reports whether a depot fits the requested bitness.
// An unset constraint matches everything.
func DepotBitnessCompatible(depot *models.Depot, bitness int) bool {
	if len(depot.OsBitness) == 0 {
		return true
	}
	want := strconv.Itoa(bitness)
	for _, b := range depot.OsBitness {
		if b == want {
			return true
		}
	}
	return false
}

// FilterDepots drops depots incompatible with the target language or
// bitness. Incompatible depots are silently skipped, not errored.
func FilterDepots(depots []models.Depot, targetLanguage string, bitness int) []models.Depot {
	compatible := make([]models.Depot, 0, len(depots))
	for i := range depots {
		depot := &depots[i]
		if !DepotLanguageCompatible(depot, targetLanguage) {
			logging.GlobalLogger.Debug(fmt.Sprintf("Skipping depot %s: languages %v do not include %s", depot.Manifest, depot.Languages, targetLanguage))
			continue
		}
		if !DepotBitnessCompatible(depot, bitness) {
			logging.GlobalLogger.Debug(fmt.Sprintf("Skipping depot %s: bitness %v does not include %d", depot.Manifest, depot.OsBitness, bitness))
			continue
		}
		compatible = append(compatible, *depot)
	}
	return compatible
}

// NormalizePath rewrites a manifest path to the host separator and strips a
// leading separator.
func NormalizePath(path string) string {
	native := strings.ReplaceAll(path, constants.NonNativeSep, string(filepath.Separator))
	return strings.TrimPrefix(native, string(filepath.Separator))
}

// ClassifyItems splits a depot's raw items into typed files, directories and
// links. File paths are normalized here, and support-flagged files are
// rooted under the owning product id so they cannot collide across depots.
func ClassifyItems(depotManifest *models.DepotFileManifest, productID string) ([]models.FileItem, []models.DirectoryItem, []models.LinkItem) {
	var files []models.FileItem
	var dirs []models.DirectoryItem
	var links []models.LinkItem

	for _, item := range depotManifest.Depot.Items {
		switch item.Type {
		case models.DepotItemDirectory:
			dirs = append(dirs, models.DirectoryItem{Path: NormalizePath(item.Path)})
		case models.DepotItemLink:
			links = append(links, models.LinkItem{Path: NormalizePath(item.Path), Target: item.Target})
		default:
			file := models.FileItem{
				Path:      NormalizePath(item.Path),
				ProductID: productID,
				Chunks:    item.Chunks,
				Flags:     item.Flags,
				Md5:       item.Md5,
				Sha256:    item.Sha256,
			}
			if file.IsSupport() {
				file.Path = filepath.Join(productID, file.Path)
			}
			files = append(files, file)
		}
	}
	return files, dirs, links
}
