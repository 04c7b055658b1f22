package bundle

import (
	"errors"
	"io/fs"
	"path/filepath"

	"SiteFM/core/utils"
)

// Front-end files copied verbatim into the output root.
var (
	RequiredAssets = []string{"index.html", "style.css", "app.js"}
	// OptionalAssets are skipped silently when absent (e.g. a site-level
	// theme override).
	OptionalAssets = []string{"config.json"}
)

// CopySiteAssets copies the front-end files and returns the names copied.
func CopySiteAssets(siteDir, outDir string) ([]string, error) {
	var copied []string
	for _, name := range RequiredAssets {
		src := filepath.Join(siteDir, name)
		if err := utils.CopyFile(src, filepath.Join(outDir, name)); err != nil {
			return copied, &Error{Code: ErrCodeSiteAsset, Path: src, Err: err}
		}
		copied = append(copied, name)
	}
	for _, name := range OptionalAssets {
		src := filepath.Join(siteDir, name)
		if err := utils.CopyFile(src, filepath.Join(outDir, name)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return copied, &Error{Code: ErrCodeSiteAsset, Path: src, Err: err}
		}
		copied = append(copied, name)
	}
	return copied, nil
}
