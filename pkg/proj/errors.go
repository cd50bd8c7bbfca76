// pkg/proj/errors.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proj

import "errors"

var (
	ErrUnknownProjection = errors.New("Unknown projection")
	ErrInvalidStride     = errors.New("Coordinate stride must be at least 2")
)
