// pkg/scene/errors.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import "errors"

var (
	ErrKindMismatch  = errors.New("Converter invoked with a geometry kind it cannot handle")
	ErrInconsistent  = errors.New("Primitive registry and scene pools disagree")
	ErrDisposed      = errors.New("Context has been disposed")
	ErrInvalidConfig = errors.New("Invalid scene configuration")
)
