// pkg/scene/assert_debug.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build scenedebug

package scene

const debugBuild = true

func assert(err error) {
	panic(err)
}
