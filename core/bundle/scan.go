package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"SiteFM/core/audio"
	"SiteFM/logger"
)

// SourceFile is one audio file found under the library root.
type SourceFile struct {
	Path    string // on-disk path
	RelPath string // relative to the library root, '/'-separated
	Format  audio.Format
	// EncodeBase is the '/'-separated name (without extension) of the
	// encoded variants below audio/enc.
	EncodeBase string
}

// GroupPath is the parent directory relative to the library root, or "".
func (f SourceFile) GroupPath() string {
	dir := path.Dir(f.RelPath)
	if dir == "." {
		return ""
	}
	return dir
}

// Stem is the base name without extension.
func (f SourceFile) Stem() string {
	base := path.Base(f.RelPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Scan walks root in lexical order and returns the supported audio files.
// An unreadable root is fatal; unreadable subdirectories are skipped.
func Scan(root string) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &Error{Code: ErrCodeLibraryRoot, Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &Error{Code: ErrCodeLibraryRoot, Path: root, Err: errors.New("not a directory")}
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			logger.Warn("跳过无法读取的路径", logger.String("path", p), logger.ErrorField(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		format, ok := audio.FormatOf(d.Name())
		if !ok {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// 跟随指向文件的符号链接；目录链接不展开
			target, err := os.Stat(p)
			if err != nil {
				logger.Warn("跳过失效的符号链接", logger.String("path", p), logger.ErrorField(err))
				return nil
			}
			if !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", p, err)
		}
		files = append(files, SourceFile{
			Path:    p,
			RelPath: filepath.ToSlash(rel),
			Format:  format,
		})
		return nil
	})
	if err != nil {
		return nil, &Error{Code: ErrCodeLibraryRoot, Path: root, Err: err}
	}

	assignEncodeBases(files)
	return files, nil
}

// assignEncodeBases gives every file a distinct encoded-output name.
// Lossless files sharing a path minus extension (a.wav, a.flac) keep their
// extension in the name. Any name still taken after that gets a numeric
// suffix (a.flac-2), so concurrent encodes never write the same file.
func assignEncodeBases(files []SourceFile) {
	seen := make(map[string]int)
	for _, f := range files {
		if f.Format.Lossless {
			seen[strings.TrimSuffix(f.RelPath, path.Ext(f.RelPath))]++
		}
	}
	for i := range files {
		base := strings.TrimSuffix(files[i].RelPath, path.Ext(files[i].RelPath))
		if files[i].Format.Lossless && seen[base] > 1 {
			base = files[i].RelPath
		}
		files[i].EncodeBase = base
	}

	// 只有无损文件会被转码，只需在它们之间去重
	used := make(map[string]bool)
	for i := range files {
		if !files[i].Format.Lossless {
			continue
		}
		base := files[i].EncodeBase
		for n := 2; used[base]; n++ {
			base = fmt.Sprintf("%s-%d", files[i].EncodeBase, n)
		}
		used[base] = true
		files[i].EncodeBase = base
	}
}
