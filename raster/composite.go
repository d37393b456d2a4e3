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
	"fmt"
	"image"
	"math"
)

// Operator is a compositing operator. The Porter-Duff operators come
// first, followed by the separable blend modes of the W3C compositing
// specification.
type Operator uint8

// These are the supported compositing operators.
const (
	OpClear Operator = iota
	OpSource
	OpOver
	OpIn
	OpOut
	OpAtop
	OpDest
	OpDestOver
	OpDestIn
	OpDestOut
	OpDestAtop
	OpXor
	OpPlus
	OpMultiply
	OpScreen
	OpOverlay
	OpDarken
	OpLighten
	OpDifference
	OpExclusion

	numOperators
)

var operatorNames = [numOperators]string{
	"clear", "source", "over", "in", "out", "atop",
	"dest", "dest_over", "dest_in", "dest_out", "dest_atop",
	"xor", "plus", "multiply", "screen", "overlay",
	"darken", "lighten", "difference", "exclusion",
}

func (op Operator) String() string {
	if op < numOperators {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", uint8(op))
}

// Valid reports whether op is one of the defined operators.
func (op Operator) Valid() bool {
	return op < numOperators
}

// ParseOperator is the inverse of Operator.String.
func ParseOperator(s string) (Operator, error) {
	for i, name := range operatorNames {
		if name == s {
			return Operator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compositing operator %q", s)
}

// Unbounded reports whether the operator changes destination pixels
// where the source is transparent. Such operators must be applied over
// the whole destination, not only where the source has coverage.
func (op Operator) Unbounded() bool {
	switch op {
	case OpClear, OpSource, OpIn, OpOut, OpDestIn, OpDestAtop:
		return true
	}
	return false
}

// factors returns the Porter-Duff weights of source and destination.
// The boolean is false for the blend modes.
func (op Operator) factors(sa, da float32) (fa, fb float32, ok bool) {
	switch op {
	case OpClear:
		return 0, 0, true
	case OpSource:
		return 1, 0, true
	case OpOver:
		return 1, 1 - sa, true
	case OpIn:
		return da, 0, true
	case OpOut:
		return 1 - da, 0, true
	case OpAtop:
		return da, 1 - sa, true
	case OpDest:
		return 0, 1, true
	case OpDestOver:
		return 1 - da, 1, true
	case OpDestIn:
		return 0, sa, true
	case OpDestOut:
		return 0, 1 - sa, true
	case OpDestAtop:
		return 1 - da, sa, true
	case OpXor:
		return 1 - da, 1 - sa, true
	case OpPlus:
		return 1, 1, true
	}
	return 0, 0, false
}

// blendChannel is the separable blend function B(cs, cd) on
// non-premultiplied channel values.
func (op Operator) blendChannel(cs, cd float32) float32 {
	switch op {
	case OpMultiply:
		return cs * cd
	case OpScreen:
		return cs + cd - cs*cd
	case OpOverlay:
		if cd <= 0.5 {
			return 2 * cs * cd
		}
		c := 2*cd - 1
		return cs + c - cs*c
	case OpDarken:
		return min(cs, cd)
	case OpLighten:
		return max(cs, cd)
	case OpDifference:
		return float32(math.Abs(float64(cs - cd)))
	case OpExclusion:
		return cs + cd - 2*cs*cd
	default:
		return cs
	}
}

// BlendAlpha composites a source alpha value onto a destination alpha
// value.
func BlendAlpha(op Operator, sa, da float32) float32 {
	if fa, fb, ok := op.factors(sa, da); ok {
		return min(sa*fa+da*fb, 1)
	}
	return sa + da - sa*da
}

// BlendPixel composites the premultiplied source color s onto the
// premultiplied destination color d. Both are in RGBA order.
func BlendPixel(op Operator, s, d [4]float32) [4]float32 {
	sa, da := s[3], d[3]
	if fa, fb, ok := op.factors(sa, da); ok {
		var res [4]float32
		for i := range res {
			res[i] = min(s[i]*fa+d[i]*fb, 1)
		}
		return res
	}

	// co = cs·(1-da) + cd·(1-sa) + sa·da·B(Cs, Cd)
	var res [4]float32
	for i := range 3 {
		var cs, cd float32
		if sa > 0 {
			cs = s[i] / sa
		}
		if da > 0 {
			cd = d[i] / da
		}
		res[i] = s[i]*(1-da) + d[i]*(1-sa) + sa*da*op.blendChannel(cs, cd)
	}
	res[3] = sa + da - sa*da
	return res
}

// Blend composites a premultiplied color onto the pixel at (x, y).
// Pixels outside the image are ignored. For single-channel images only
// the alpha component is used.
func (m *Image) Blend(x, y int, src [4]float32, op Operator) {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return
	}
	i := m.PixOffset(x, y)
	if m.Channels == 1 {
		m.Pix[i] = BlendAlpha(op, src[3], m.Pix[i])
		return
	}
	d := [4]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
	res := BlendPixel(op, src, d)
	copy(m.Pix[i:i+4], res[:])
}

// compositeMask composites a solid color through a coverage mask.
// The mask has one value per pixel of dst, in row-major order, and only
// the rectangle touched may be non-zero. The color is not premultiplied;
// every mask value is multiplied by alpha.
func compositeMask(dst *Image, mask []float32, touched image.Rectangle, color [3]float32, alpha float32, op Operator) {
	area := touched.Intersect(dst.Rect)
	if op.Unbounded() {
		area = dst.Rect
	}
	w := dst.Rect.Dx()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := mask[(y-dst.Rect.Min.Y)*w:]
		for x := area.Min.X; x < area.Max.X; x++ {
			a := row[x-dst.Rect.Min.X] * alpha
			if a == 0 && !op.Unbounded() {
				continue
			}
			src := [4]float32{color[0] * a, color[1] * a, color[2] * a, a}
			dst.Blend(x, y, src, op)
		}
	}
}

// BlendCoverage composites one row of coverage values, as produced by
// the fill and stroke methods, onto dst. Use it as the body of an EmitFunc.
// Unbounded operators are only applied where coverage is delivered.
func (m *Image) BlendCoverage(y, xMin int, coverage []float32, color [4]float32, op Operator) {
	for i, c := range coverage {
		if c == 0 {
			continue
		}
		a := color[3] * c
		src := [4]float32{color[0] * a, color[1] * a, color[2] * a, a}
		m.Blend(xMin+i, y, src, op)
	}
}
