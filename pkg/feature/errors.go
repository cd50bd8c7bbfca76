// pkg/feature/errors.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import "errors"

var (
	ErrDuplicateFeature    = errors.New("Feature with the same ID is already in the layer")
	ErrFeatureInLayer      = errors.New("Feature already belongs to a layer")
	ErrNoGeometry          = errors.New("Feature has no geometry")
	ErrUnsupportedGeometry = errors.New("Unsupported geometry type")
)
