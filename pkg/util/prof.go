// pkg/util/prof.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/geoscope/geoscope/pkg/log"
)

// Profiler manages optional CPU and heap profiles; either filename may be
// empty to skip that profile.
type Profiler struct {
	cpu, mem *os.File
	lg       *log.Logger
}

func CreateProfiler(cpu, mem string, lg *log.Logger) (*Profiler, error) {
	p := &Profiler{lg: lg}

	var err error
	if cpu != "" {
		if p.cpu, err = os.Create(cpu); err != nil {
			return nil, fmt.Errorf("%s: unable to create CPU profile file: %w", cpu, err)
		} else if err = pprof.StartCPUProfile(p.cpu); err != nil {
			p.cpu.Close()
			return nil, fmt.Errorf("unable to start CPU profile: %w", err)
		}
		lg.Infof("%s: writing CPU profile", cpu)
	}

	if mem != "" {
		if p.mem, err = os.Create(mem); err != nil {
			p.Cleanup()
			return nil, fmt.Errorf("%s: unable to create memory profile file: %w", mem, err)
		}
	}

	return p, nil
}

// Cleanup stops the CPU profile and writes the heap profile. It may be
// called more than once.
func (p *Profiler) Cleanup() {
	if p.cpu != nil {
		pprof.StopCPUProfile()
		p.cpu.Close()
		p.cpu = nil
	}
	if p.mem != nil {
		if err := pprof.WriteHeapProfile(p.mem); err != nil {
			p.lg.Errorf("unable to write memory profile file: %v", err)
		}
		p.mem.Close()
		p.mem = nil
	}
}
