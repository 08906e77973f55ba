package models

// getBuilds API response model
type Build struct {
	BuildID       string   `json:"build_id"`
	ProductID     string   `json:"product_id"`
	OS            string   `json:"os"`
	Branch        string   `json:"branch"`
	VersionName   string   `json:"version_name"`
	Tags          []string `json:"tags"`
	Public        bool     `json:"public"`
	DatePublished string   `json:"date_published"`
	Generation    int      `json:"generation"`
	// Meta URL of the zlib-compressed build manifest.
	Link          string `json:"link"`
	LegacyBuildID string `json:"legacy_build_id"`
}

type GetBuildsResponse struct {
	TotalCount int     `json:"total_count"`
	Items      []Build `json:"items"`
}

// build manifest model (decompressed)
type GameExecutable struct {
	Path string `json:"path"`
}

type Depot struct {
	// DLC and redistributables carry their own product id.
	ProductID      string   `json:"productId"`
	Languages      []string `json:"languages"`
	OsBitness      []string `json:"osBitness"`
	CompressedSize int64    `json:"compressedSize"`
	Size           int64    `json:"size"`
	// Content hash of the depot's own file-item manifest.
	Manifest string `json:"manifest"`
}

type Manifest struct {
	BaseProductID    string           `json:"baseProductId"`
	InstallDirectory string           `json:"installDirectory"`
	Platform         string           `json:"platform"`
	Depots           []Depot          `json:"depots"`
	Executables      []GameExecutable `json:"gameExecutables"`
	Version          int              `json:"version"`
}

// TotalSize is the declared size of the given depots, not of the whole catalog entry.
func (m *Manifest) TotalSize(depots []Depot) int64 {
	var total int64
	for _, d := range depots {
		total += d.Size
	}
	return total
}

func (m *Manifest) PrimaryExecutable() string {
	if len(m.Executables) == 0 {
		return ""
	}
	return m.Executables[0].Path
}
