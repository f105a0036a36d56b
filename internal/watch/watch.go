// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs extraction and cross-reference checking whenever
// files under a root change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/tagtrace/internal/check"
	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/internal/walk"
	"github.com/pdiddy/tagtrace/pkg/types"
)

// Handler receives the result of each completed re-check.
type Handler func(cat types.Catalogue, findings []check.Finding)

// debounceDelay coalesces bursts of filesystem events into one re-check.
const debounceDelay = 200 * time.Millisecond

// Run performs an initial scan and check, then watches cfg.Root recursively
// and repeats after each burst of changes. New directories created at
// runtime are added to the watch list. Warnings go to w, results to h.
// Run blocks until ctx is cancelled.
func Run(ctx context.Context, cfg types.ScanConfig, p label.Patterns, w io.Writer, h Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := cfg.Root
	if root == "" {
		root = "."
	}

	if err := addDirsRecursive(watcher, root); err != nil {
		return err
	}

	rescan := func() {
		res, err := walk.Scan(cfg, p, w)
		if err != nil {
			fmt.Fprintf(w, "warning: rescan failed: %v\n", err)
			return
		}
		h(res.Catalogue, check.Run(res.Catalogue, root))
	}
	rescan()

	// timer debounces event bursts into a single rescan.
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceDelay)
			timerCh = timer.C
		} else {
			timer.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerCh:
			rescan()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(watcher, ev.Name); addErr != nil {
						fmt.Fprintf(w, "warning: could not watch new directory %s: %v\n", ev.Name, addErr)
					}
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "warning: watcher error: %v\n", werr)
		}
	}
}

// addDirsRecursive adds dir and every non-excluded subdirectory to the
// watch list.
func addDirsRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && walk.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
