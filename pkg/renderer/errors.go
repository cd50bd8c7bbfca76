// pkg/renderer/errors.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import "errors"

var (
	ErrInvalidColor      = errors.New("Invalid color")
	ErrMalformedCommands = errors.New("Malformed command buffer")
)
