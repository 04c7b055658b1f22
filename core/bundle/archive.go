package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"SiteFM/core/utils"

	"github.com/mholt/archives"
)

// archiveFormat picks the archive format from the output file name.
func archiveFormat(name string) (archives.Archiver, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return archives.Zip{}, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return archives.CompressedArchive{
			Archival:    archives.Tar{},
			Compression: archives.Gz{},
		}, nil
	case strings.HasSuffix(lower, ".tar.zst"):
		return archives.CompressedArchive{
			Archival:    archives.Tar{},
			Compression: archives.Zstd{},
		}, nil
	case strings.HasSuffix(lower, ".tar"):
		return archives.Tar{}, nil
	default:
		return nil, fmt.Errorf("unsupported archive extension %q (use .zip, .tar, .tar.gz, .tgz or .tar.zst)", filepath.Base(name))
	}
}

// ArchiveDir packs dir into archivePath with dir's base name as the
// top-level folder. The archive must live outside dir.
func ArchiveDir(ctx context.Context, dir, archivePath string) error {
	format, err := archiveFormat(archivePath)
	if err != nil {
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	inside, err := utils.IsWithin(dir, archivePath)
	if err != nil {
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	if inside {
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: fmt.Errorf("archive must be outside %s", dir)}
	}

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		dir: filepath.Base(filepath.Clean(dir)),
	})
	if err != nil {
		return &Error{Code: ErrCodeArchive, Path: dir, Err: fmt.Errorf("collect files: %w", err)}
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	out, err := os.Create(archivePath)
	if err != nil {
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	if err := format.Archive(ctx, out, files); err != nil {
		_ = out.Close()
		_ = os.Remove(archivePath)
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(archivePath)
		return &Error{Code: ErrCodeArchive, Path: archivePath, Err: err}
	}
	return nil
}
