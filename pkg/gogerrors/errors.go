package gogerrors

import "fmt"

// Error taxonomy of a download run. Manifest and depot failures are fatal to
// the whole run, the rest are absorbed at product or file granularity.
var (
	// Fatal: build list empty, or manifest fetch/decompress/parse failed.
	ErrManifestUnavailable = fmt.Errorf("manifest unavailable")

	// Fatal: a depot file-item manifest could not be fetched or parsed.
	ErrDepotUnavailable = fmt.Errorf("depot unavailable")

	// Per product: both generations returned no usable endpoints.
	ErrSecureLinkUnavailable = fmt.Errorf("secure link unavailable")

	// Per file: every candidate endpoint across both generations failed.
	ErrChunkUnavailable = fmt.Errorf("chunk unavailable")

	// Per file: local filesystem error during assembly.
	ErrFileWrite = fmt.Errorf("file write failed")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
