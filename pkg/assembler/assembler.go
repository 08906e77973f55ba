package assembler

import (
	"fmt"
	"os"
	"path/filepath"

	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/gogerrors"
)

func NewAssembler(installDir, stagingDir string) (*Assembler, error) {
	// Clear leftovers from a previous failed run.
	os.RemoveAll(stagingDir)

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating staging dir: %v", err)
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating install dir: %v", err)
	}

	return &Assembler{
		InstallDir: installDir,
		StagingDir: stagingDir,
	}, nil
}

// Begin opens a staging file for one depot file item. Parent-directory
// creation is idempotent, concurrent workers share parents.
func (a *Assembler) Begin(item models.FileItem) (*FileWriter, error) {
	stagingPath := filepath.Join(a.StagingDir, item.Path)
	finalPath := filepath.Join(a.InstallDir, item.Path)

	if err := os.MkdirAll(filepath.Dir(stagingPath), 0o755); err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating staging parent for %s: %v", item.Path, err)
	}

	f, err := os.OpenFile(stagingPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, gogerrors.Wrapf(gogerrors.ErrFileWrite, "opening staging file %s: %v", stagingPath, err)
	}

	return &FileWriter{
		item:        item,
		file:        f,
		stagingPath: stagingPath,
		finalPath:   finalPath,
	}, nil
}

// WriteChunk appends one decompressed chunk. Call order is byte order.
func (w *FileWriter) WriteChunk(data []byte) error {
	n, err := w.file.Write(data)
	w.written += int64(n)
	if err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "writing %s: %v", w.item.Path, err)
	}
	return nil
}

// Commit closes the staging file and moves it into place. The executable
// flag is applied after the rename.
func (w *FileWriter) Commit() error {
	if err := w.file.Close(); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "closing %s: %v", w.item.Path, err)
	}

	if err := os.MkdirAll(filepath.Dir(w.finalPath), 0o755); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating parent for %s: %v", w.finalPath, err)
	}
	if err := os.Rename(w.stagingPath, w.finalPath); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "moving %s into place: %v", w.item.Path, err)
	}

	if w.item.IsExecutable() {
		if err := os.Chmod(w.finalPath, 0o755); err != nil {
			return gogerrors.Wrapf(gogerrors.ErrFileWrite, "marking %s executable: %v", w.item.Path, err)
		}
	}

	logging.GlobalLogger.Debug(fmt.Sprintf("Assembled %s (%d bytes from %d chunks)", w.item.Path, w.written, len(w.item.Chunks)))
	return nil
}

// Abort discards the staging file. Safe to call after a failed Commit.
func (w *FileWriter) Abort() {
	_ = w.file.Close()
	_ = os.Remove(w.stagingPath)
}

func (w *FileWriter) BytesWritten() int64 {
	return w.written
}

// MakeDirectory materializes a DepotDirectory item. No chunks involved.
func (a *Assembler) MakeDirectory(item models.DirectoryItem) error {
	if err := os.MkdirAll(filepath.Join(a.InstallDir, item.Path), 0o755); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating directory %s: %v", item.Path, err)
	}
	return nil
}

// MakeLink materializes a DepotLink item. An existing link at the path is
// replaced so reruns stay idempotent.
func (a *Assembler) MakeLink(item models.LinkItem) error {
	linkPath := filepath.Join(a.InstallDir, item.Path)
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating parent for link %s: %v", item.Path, err)
	}

	if _, err := os.Lstat(linkPath); err == nil {
		_ = os.Remove(linkPath)
	}
	if err := os.Symlink(item.Target, linkPath); err != nil {
		return gogerrors.Wrapf(gogerrors.ErrFileWrite, "creating link %s -> %s: %v", item.Path, item.Target, err)
	}
	return nil
}

// Cleanup removes the staging directory after a completed run.
func (a *Assembler) Cleanup() {
	if err := os.RemoveAll(a.StagingDir); err != nil {
		logging.GlobalLogger.Warn("Failed to remove staging directory: " + err.Error())
	}
}
