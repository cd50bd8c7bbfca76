// cmd/geoscope/config.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"os"

	"github.com/geoscope/geoscope/pkg/log"
	"github.com/geoscope/geoscope/pkg/proj"
	"github.com/geoscope/geoscope/pkg/scene"
	"github.com/geoscope/geoscope/pkg/util"
)

type Camera struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Config is the contents of the optional JSON configuration file. Fields
// that are not given keep their default values.
type Config struct {
	Projection string       `json:"projection"`
	FrameRate  int          `json:"frame_rate"`
	Camera     Camera       `json:"camera"`
	Scene      scene.Config `json:"scene"`
}

func DefaultConfig() Config {
	return Config{
		Projection: string(proj.EPSG4326),
		FrameRate:  30,
		Camera:     Camera{Altitude: 20000000},
		Scene:      scene.DefaultConfig(),
	}
}

func (c Config) Validate(e *util.ErrorLogger) {
	if _, err := proj.Lookup(proj.Code(c.Projection)); err != nil {
		e.ErrorString("projection: %v", err)
	}
	if c.FrameRate <= 0 {
		e.ErrorString("frame_rate: must be positive, got %d", c.FrameRate)
	}
	if c.Camera.Altitude <= 0 {
		e.ErrorString("camera: altitude must be positive, got %g", c.Camera.Altitude)
	}
	if c.Camera.Latitude < -90 || c.Camera.Latitude > 90 {
		e.ErrorString("camera: latitude %g out of range", c.Camera.Latitude)
	}

	e.Push("scene")
	c.Scene.Validate(e)
	e.Pop()
}

// ParseConfig type-checks and decodes the configuration in contents,
// starting from the defaults.
func ParseConfig(contents []byte) (Config, error) {
	var e util.ErrorLogger
	util.CheckJSON[Config](contents, &e)
	if e.HaveErrors() {
		return Config{}, e.Err()
	}

	config := DefaultConfig()
	if err := util.UnmarshalJSON(contents, &config); err != nil {
		return Config{}, err
	}

	config.Validate(&e)
	if e.HaveErrors() {
		return Config{}, e.Err()
	}
	return config, nil
}

// LoadConfig reads the configuration file at path; with no path, it
// returns the defaults.
func LoadConfig(path string, lg *log.Logger) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	config, err := ParseConfig(contents)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	lg.Infof("%s: loaded configuration", path)
	return config, nil
}
