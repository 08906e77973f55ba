package assembler

import (
	"os"

	"GalaxyClientv2/internal/models"
)

// Assembler materializes depot items under the install directory. Files are
// staged and renamed into place only once every chunk landed, so an aborted
// run never leaves truncated files behind.
type Assembler struct {
	InstallDir string
	StagingDir string
}

// FileWriter is an in-progress file assembly. Chunks must be written in
// manifest order.
type FileWriter struct {
	item        models.FileItem
	file        *os.File
	stagingPath string
	finalPath   string
	written     int64
}
