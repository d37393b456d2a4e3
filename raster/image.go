// seehuhn.de/go/roto - animated rotoscoping masks
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raster

import (
	"image"
	"image/color"
	"slices"
)

// Image is a float32 pixel buffer with premultiplied alpha.
//
// An Image has either one channel, holding alpha only, or four channels,
// holding premultiplied red, green, blue and alpha. The pixel at (x, y)
// starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*Channels].
type Image struct {
	Pix      []float32
	Stride   int
	Channels int
	Rect     image.Rectangle
}

// NewImage allocates a transparent image.
// Channels must be 1 or 4; other values are treated as 4.
func NewImage(r image.Rectangle, channels int) *Image {
	if channels != 1 {
		channels = 4
	}
	stride := r.Dx() * channels
	return &Image{
		Pix:      make([]float32, stride*r.Dy()),
		Stride:   stride,
		Channels: channels,
		Rect:     r,
	}
}

// Bounds implements the image.Image interface.
func (m *Image) Bounds() image.Rectangle { return m.Rect }

// ColorModel implements the image.Image interface.
func (m *Image) ColorModel() color.Model { return color.RGBA64Model }

// At implements the image.Image interface. Values are clamped to [0, 1].
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return color.RGBA64{}
	}
	i := m.PixOffset(x, y)
	if m.Channels == 1 {
		a := to16(m.Pix[i])
		return color.RGBA64{R: a, G: a, B: a, A: a}
	}
	a := to16(m.Pix[i+3])
	return color.RGBA64{
		R: min(to16(m.Pix[i]), a),
		G: min(to16(m.Pix[i+1]), a),
		B: min(to16(m.Pix[i+2]), a),
		A: a,
	}
}

func to16(v float32) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xffff
	default:
		return uint16(v*0xffff + 0.5)
	}
}

// PixOffset returns the index of the first element of Pix for the pixel
// at (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*m.Channels
}

// Alpha returns the alpha value of the pixel at (x, y), or 0 outside the
// image.
func (m *Image) Alpha(x, y int) float32 {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return 0
	}
	return m.Pix[m.PixOffset(x, y)+m.Channels-1]
}

// Clear sets every pixel to transparent.
func (m *Image) Clear() {
	clear(m.Pix)
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	res := *m
	res.Pix = slices.Clone(m.Pix)
	return &res
}

// ToGray converts the alpha channel to an 8-bit grayscale image.
func (m *Image) ToGray() *image.Gray {
	res := image.NewGray(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			res.Pix[res.PixOffset(x, y)] = uint8(to16(m.Alpha(x, y)) >> 8)
		}
	}
	return res
}

// ToRGBA converts m to an 8-bit premultiplied RGBA image.
func (m *Image) ToRGBA() *image.RGBA {
	res := image.NewRGBA(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			c := m.At(x, y).(color.RGBA64)
			i := res.PixOffset(x, y)
			res.Pix[i] = uint8(c.R >> 8)
			res.Pix[i+1] = uint8(c.G >> 8)
			res.Pix[i+2] = uint8(c.B >> 8)
			res.Pix[i+3] = uint8(c.A >> 8)
		}
	}
	return res
}
