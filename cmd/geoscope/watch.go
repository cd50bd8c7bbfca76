// cmd/geoscope/watch.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"os"
	"path/filepath"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/log"

	"github.com/fsnotify/fsnotify"
)

// LayerWatcher reports when the GeoJSON files of the layers are rewritten.
// Changed carries the index of the layer's path; it is closed when the
// watcher stops.
type LayerWatcher struct {
	Changed chan int

	w     *fsnotify.Watcher
	paths map[string]int
	done  chan struct{}
	lg    *log.Logger
}

func NewLayerWatcher(paths []string, lg *log.Logger) (*LayerWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	lw := &LayerWatcher{
		Changed: make(chan int, len(paths)),
		w:       w,
		paths:   make(map[string]int),
		done:    make(chan struct{}),
		lg:      lg,
	}

	// Directories are watched rather than the files themselves, since
	// editors often save by writing a new file and renaming it.
	dirs := make(map[string]bool)
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		lw.paths[abs] = i
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, err
		}
	}

	go lw.run()
	return lw, nil
}

func (lw *LayerWatcher) run() {
	defer close(lw.Changed)
	for {
		select {
		case <-lw.done:
			return
		case ev, ok := <-lw.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if i, ok := lw.paths[abs]; ok {
				lw.lg.Debug("layer file changed", "path", ev.Name, "op", ev.Op.String())
				select {
				case lw.Changed <- i:
				case <-lw.done:
					return
				}
			}
		case err, ok := <-lw.w.Errors:
			if !ok {
				return
			}
			lw.lg.Warnf("watch: %v", err)
		}
	}
}

func (lw *LayerWatcher) Close() error {
	close(lw.done)
	return lw.w.Close()
}

// reloadLayer rereads path and merges its features into l. A file that
// can't be read, e.g. because it is only partially written, leaves l
// unchanged.
func reloadLayer(path string, l *feature.Layer, lg *log.Logger) {
	nl, err := feature.LoadGeoJSON(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if nl == nil {
		lg.Warnf("%s: %v", path, err)
		return
	}
	if err != nil {
		lg.Warnf("%s: %v", path, err)
	}
	l.Merge(nl)
	lg.Infof("%s: reloaded %d features", path, l.Len())
}
