// Package verifier checks payloads and on-disk files against their
// manifest-declared digests.
package verifier

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"GalaxyClientv2/internal/models"
)

func MD5Sum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// VerifyPayload checks a compressed chunk payload against its content hash.
// Pre-sharded hashes (manifest already split the path) cannot be compared
// and pass through unverified.
func VerifyPayload(data []byte, contentHash string) bool {
	if strings.Contains(contentHash, "/") {
		return true
	}
	return MD5Sum(data) == contentHash
}

// VerifyFile streams a file through the digest declared for it. Files
// declaring neither md5 nor sha256 report false, the caller re-downloads.
func VerifyFile(path string, item *models.FileItem) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	switch {
	case item.Md5 != "":
		hash := md5.New()
		if _, err := io.Copy(hash, f); err != nil {
			return false, err
		}
		return hex.EncodeToString(hash.Sum(nil)) == item.Md5, nil
	case item.Sha256 != "":
		hash := sha256.New()
		if _, err := io.Copy(hash, f); err != nil {
			return false, err
		}
		return hex.EncodeToString(hash.Sum(nil)) == item.Sha256, nil
	default:
		return false, nil
	}
}

// ScanExisting splits files into those still needing download and those
// already present and valid. Invalid files are deleted so the download can
// recreate them.
func ScanExisting(installDir string, files []models.FileItem, log func(string)) (remaining []models.FileItem, skipped int, err error) {
	remaining = make([]models.FileItem, 0, len(files))

	for i := range files {
		item := &files[i]
		absPath := filepath.Join(installDir, item.Path)

		info, statErr := os.Stat(absPath)
		if statErr != nil {
			if os.IsNotExist(statErr) {
				remaining = append(remaining, *item)
				continue
			}
			return nil, 0, fmt.Errorf("stat existing file %s: %w", absPath, statErr)
		}
		if info.IsDir() {
			remaining = append(remaining, *item)
			continue
		}

		ok, verifyErr := VerifyFile(absPath, item)
		if verifyErr != nil {
			return nil, 0, fmt.Errorf("hashing existing file %s: %w", absPath, verifyErr)
		}
		if ok {
			log("Existing file verified, skipping download: " + absPath)
			skipped++
			continue
		}

		log("File failed verification, deleting: " + absPath)
		if removeErr := os.Remove(absPath); removeErr != nil {
			return nil, 0, fmt.Errorf("removing invalid file %s: %w", absPath, removeErr)
		}
		remaining = append(remaining, *item)
	}
	return remaining, skipped, nil
}
