// Package watcher turns bursts of file system events under a set of roots
// into single reload triggers.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 100 * time.Millisecond

var skipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
}

// Trigger is called once per debounced burst with the last changed path.
type Trigger func(path string)

type Watcher struct {
	roots    []string
	debounce time.Duration
	trigger  Trigger
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

func New(roots []string, debounce time.Duration, trigger Trigger, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		roots:    roots,
		debounce: debounce,
		trigger:  trigger,
		logger:   logger,
		fsw:      fsw,
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run delivers triggers until ctx ends, then releases the watches.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending string

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if Ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchIfDir(event.Name)
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			pending = event.Name
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.logger.Info("change detected", zap.String("path", pending))
			w.trigger(pending)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching", zap.String("dir", path))
		return nil
	})
}

func (w *Watcher) watchIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("watch new dir", zap.String("dir", path), zap.Error(err))
	}
}

// Ignored reports whether changes to path should never cause a reload:
// VCS and dependency directories, hidden files, and editor temp files.
func Ignored(path string) bool {
	base := filepath.Base(path)
	if skipDirs[base] {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if skipDirs[part] {
			return true
		}
	}
	if base != "." && base != ".." && strings.HasPrefix(base, ".") {
		return true
	}
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp")
}
