// cmd/geoscope/main.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// geoscope loads GeoJSON layers, synchronizes them into a headless globe
// and animates it for a number of frames, reporting what was drawn.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/log"
	"github.com/geoscope/geoscope/pkg/proj"
	"github.com/geoscope/geoscope/pkg/renderer"
	"github.com/geoscope/geoscope/pkg/scene"
	"github.com/geoscope/geoscope/pkg/util"

	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"
)

var (
	cpuprofile   = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile   = flag.String("memprofile", "", "write memory profile to this file")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	configFile   = flag.String("config", "", "filename of JSON configuration file")
	projection   = flag.String("projection", "", "projection of the layers' coordinates (e.g., EPSG:3857)")
	frames       = flag.Int("frames", 1, "number of frames to animate")
	dumpFile     = flag.String("dump", "", "write a snapshot of the final scene to this file")
	showRegistry = flag.Bool("registry", false, "print the primitive registry of each layer")
	jitter       = flag.Float64("jitter", 0, "move a random vertex of each line by up to this many meters every frame")
	seed         = flag.Uint64("seed", 1, "random seed for -jitter")
	watch        = flag.Bool("watch", false, "keep animating until interrupted, reloading layers when their files change")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: geoscope [flags] layer.geojson...\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func setupSignalHandler(profiler *util.Profiler) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Caught signal, cleaning up...")
		profiler.Cleanup()
		os.Exit(0)
	}()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	lg := log.New(*logLevel, *logDir)

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	defer profiler.Cleanup()
	ctx := context.Background()
	if *watch {
		// Stop cleanly so that the snapshot and profiles are written.
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	} else if *cpuprofile != "" || *memprofile != "" {
		setupSignalHandler(profiler)
	}

	config, err := LoadConfig(*configFile, lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *projection != "" {
		config.Projection = *projection
		var e util.ErrorLogger
		config.Validate(&e)
		if e.HaveErrors() {
			e.PrintErrors(lg)
			os.Exit(1)
		}
	}

	paths := flag.Args()
	layers, err := loadLayers(paths, lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(ctx, config, paths, layers, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadLayers reads the GeoJSON files concurrently. Problems with
// individual features are reported but do not prevent the rest of a
// layer from loading.
func loadLayers(paths []string, lg *log.Logger) ([]*feature.Layer, error) {
	layers := make([]*feature.Layer, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		eg.Go(func() error {
			l, err := feature.LoadGeoJSON(os.DirFS(filepath.Dir(path)), filepath.Base(path))
			if l == nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err != nil {
				lg.Warnf("%s: %v", path, err)
			}
			lg.Infof("%s: loaded %d features", path, l.Len())
			layers[i] = l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return layers, nil
}

// run synchronizes the layers into a globe and draws the requested number
// of frames, or with -watch, draws until ctx is done.
func run(ctx context.Context, config Config, paths []string, layers []*feature.Layer, lg *log.Logger) error {
	globe := renderer.NewGlobe(lg)
	globe.LookAt(config.Camera.Longitude, config.Camera.Latitude, config.Camera.Altitude)
	provider := proj.NewStaticProvider(proj.Code(config.Projection))

	var contexts []*scene.Context
	defer func() {
		for _, c := range contexts {
			c.Dispose()
		}
	}()
	for _, l := range layers {
		c, err := scene.NewContext(l, globe, provider, config.Scene, lg)
		if err != nil {
			return err
		}
		contexts = append(contexts, c)
		c.Sync()
	}

	var jit *Jitter
	if *jitter > 0 {
		p, err := proj.Lookup(proj.Code(config.Projection))
		if err != nil {
			return err
		}
		jit = NewJitter(*jitter, p.Geographic(), *seed)
	}

	dt := time.Second / time.Duration(config.FrameRate)
	var watcher *LayerWatcher
	var tick <-chan time.Time
	if *watch {
		w, err := NewLayerWatcher(paths, lg)
		if err != nil {
			return err
		}
		defer w.Close()
		watcher = w

		t := time.NewTicker(dt)
		defer t.Stop()
		tick = t.C
	}

	start := time.Now()
	var total renderer.RendererStats
	frame := 0
	for ; frame < *frames || watcher != nil; frame++ {
		if watcher != nil && !nextFrame(ctx, tick, watcher, paths, layers, lg) {
			break
		}
		now := start.Add(time.Duration(frame) * dt)
		globe.SetCurrentTime(now)
		if jit != nil && frame > 0 {
			jit.Step(layers)
		}
		for _, c := range contexts {
			c.Tick(now)
		}

		cb := renderer.GetCommandBuffer()
		globe.Draw(cb)
		stats, err := globe.Execute(cb)
		renderer.ReturnCommandBuffer(cb)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		lg.Debug("frame", "frame", frame, "stats", stats)
		total.Merge(stats)
	}
	lg.Info("rendered", "frames", frame, "stats", total)
	fmt.Println(total.String())

	for i, c := range contexts {
		if err := c.CheckConsistency(); err != nil {
			lg.Errorf("%s: %v", layers[i].Name, err)
		}
		lg.Info("synchronized", "layer", layers[i].Name, "stats", c.Stats())
		if *showRegistry {
			fmt.Printf("Layer %s:\n", layers[i].Name)
			godump.Dump(registrySummary(c))
		}
	}

	if *dumpFile != "" {
		return writeSnapshot(*dumpFile, globe.Snapshot())
	}
	return nil
}

// nextFrame reloads changed layers until it is time to draw the next
// frame. It returns false when ctx is done or the watcher has stopped.
func nextFrame(ctx context.Context, tick <-chan time.Time, w *LayerWatcher, paths []string,
	layers []*feature.Layer, lg *log.Logger) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-tick:
			return true
		case i, ok := <-w.Changed:
			if !ok {
				return false
			}
			reloadLayer(paths[i], layers[i], lg)
		}
	}
}

type entrySummary struct {
	Kind       string
	Dynamic    bool
	Primitives []string
}

func registrySummary(c *scene.Context) map[string]entrySummary {
	m := make(map[string]entrySummary)
	reg := c.Registry()
	for _, k := range reg.Keys() {
		e := reg.Get(k)
		s := entrySummary{Kind: e.Kind.String(), Dynamic: e.Dynamic}
		for _, h := range e.Handles {
			s.Primitives = append(s.Primitives,
				fmt.Sprintf("%s (%s, rev %d)", h.Primitive().Header().Tag, h.Pool(), h.Primitive().Header().Revision))
		}
		m[k.String()] = s
	}
	return m
}

func writeSnapshot(path string, s renderer.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
