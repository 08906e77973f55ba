package models

// per-depot file-item manifest model (decompressed)

type ChunkRef struct {
	// Hash of the compressed payload. Chunks are addressed and verified
	// by their compressed form.
	CompressedMd5  string `json:"compressedMd5"`
	Md5            string `json:"md5"`
	CompressedSize int64  `json:"compressedSize"`
	Size           int64  `json:"size"`
}

// DepotItem is the raw wire shape. Items are classified by type once at
// parse time; see manifest.ClassifyItems.
type DepotItem struct {
	Type   string     `json:"type"`
	Path   string     `json:"path"`
	Chunks []ChunkRef `json:"chunks"`
	Flags  []string   `json:"flags"`
	Md5    string     `json:"md5"`
	Sha256 string     `json:"sha256"`
	Target string     `json:"target"`
}

const (
	DepotItemFile      = "DepotFile"
	DepotItemDirectory = "DepotDirectory"
	DepotItemLink      = "DepotLink"
)

type DepotFileManifest struct {
	Depot struct {
		Items []DepotItem `json:"items"`
	} `json:"depot"`
}

// FileItem is one file to materialize, with its path already normalized to
// the host separator (and rooted under the owning product id for support
// files).
type FileItem struct {
	Path      string
	ProductID string
	Chunks    []ChunkRef
	Flags     []string
	Md5       string
	Sha256    string
}

func (f *FileItem) IsExecutable() bool {
	return f.hasFlag("executable")
}

func (f *FileItem) IsSupport() bool {
	return f.hasFlag("support")
}

func (f *FileItem) hasFlag(flag string) bool {
	for _, fl := range f.Flags {
		if fl == flag {
			return true
		}
	}
	return false
}

func (f *FileItem) DeclaredSize() int64 {
	var total int64
	for _, c := range f.Chunks {
		total += c.Size
	}
	return total
}

type DirectoryItem struct {
	Path string
}

type LinkItem struct {
	Path   string
	Target string
}
