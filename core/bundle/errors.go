package bundle

import (
	"errors"
	"fmt"
)

// Codes of fatal build errors.
const (
	ErrCodeOutputDir   = "output_dir"
	ErrCodeSiteAsset   = "site_asset"
	ErrCodeLibraryRoot = "library_root"
	ErrCodeManifest    = "manifest"
	ErrCodeArchive     = "archive"
	ErrCodeCanceled    = "canceled"
)

// Error is a fatal build error naming the offending path.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
