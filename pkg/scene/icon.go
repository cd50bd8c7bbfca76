// pkg/scene/icon.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"bytes"
	"image"
	_ "image/png"

	"github.com/geoscope/geoscope/pkg/feature"
)

// resolveIcon returns the image for the icon, decoding its data if
// necessary. Decoded images are cached by Src. It returns nil if the icon
// is absent or its image cannot be decoded.
func (c *Context) resolveIcon(icon *feature.Icon) image.Image {
	if icon == nil {
		return nil
	}
	if icon.Image != nil {
		return icon.Image
	}
	if len(icon.Data) == 0 {
		return nil
	}

	if icon.Src != "" {
		if img, ok := c.icons.Get(icon.Src); ok {
			return img
		}
	}

	img, format, err := image.Decode(bytes.NewReader(icon.Data))
	if err != nil {
		c.lg.Debugf("%s: unable to decode icon: %v", icon.Src, err)
		return nil
	}
	c.lg.Debugf("%s: decoded %s icon %dx%d", icon.Src, format, img.Bounds().Dx(), img.Bounds().Dy())
	if icon.Src != "" {
		c.icons.Add(icon.Src, img)
	}
	return img
}
