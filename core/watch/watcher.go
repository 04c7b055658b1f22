package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"SiteFM/logger"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of events (a copy of a whole album) into
// one rebuild.
const DefaultDebounce = time.Second

// Watcher triggers a callback when anything below its roots changes.
type Watcher struct {
	roots    []string
	debounce time.Duration
	onChange func(ctx context.Context) error
}

// New creates a Watcher over roots. onChange runs once per quiet period.
func New(roots []string, debounce time.Duration, onChange func(ctx context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{roots: roots, debounce: debounce, onChange: onChange}
}

// addTree registers dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			logger.Warn("无法监听目录", logger.String("path", p), logger.ErrorField(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil {
			logger.Warn("无法监听目录", logger.String("path", p), logger.ErrorField(err))
		}
		return nil
	})
}

// Run blocks until ctx is done. Errors from onChange are logged; the
// watcher keeps running.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := addTree(fw, root); err != nil {
			return err
		}
		logger.Info("开始监听", logger.String("path", root))
	}

	// Reset never delivers a stale tick (Go 1.23 timer semantics).
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Debug("fs event", logger.String("path", ev.Name), logger.String("op", ev.Op.String()))
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(fw, ev.Name); err != nil {
						logger.Warn("无法监听新目录", logger.String("path", ev.Name), logger.ErrorField(err))
					}
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Warn("监听错误", logger.ErrorField(err))

		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				logger.Error("重新构建失败", logger.ErrorField(err))
			}
		}
	}
}
