// pkg/scene/handle.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"github.com/geoscope/geoscope/pkg/renderer"
)

// Handle is a Context's ownership record for one primitive attached to one
// of its pools. Only the owning Context can attach or detach it.
type Handle struct {
	prim     renderer.Primitive
	pool     renderer.PoolKind
	attached bool
}

// Primitive returns the primitive; callers may inspect it but must not
// add it to or remove it from any collection.
func (h *Handle) Primitive() renderer.Primitive { return h.prim }

func (h *Handle) Pool() renderer.PoolKind { return h.pool }

func (h *Handle) Attached() bool { return h.attached }
