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
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roto/bezier"
)

// SoftShape is a closed polygon with a soft edge, in device coordinates.
type SoftShape struct {
	// Interior is the flattened shape outline.
	Interior []vec.Vec2

	// Feather is the flattened feather outline. It must have the same
	// number of vertices as Interior; vertex i of one corresponds to
	// vertex i of the other.
	Feather []vec.Vec2

	// FeatherDistance moves the feather outline along its outward normal.
	// Negative values move it inwards.
	FeatherDistance float64

	// FallOff shapes the opacity ramp across the feather: 1 is linear,
	// larger values make the edge fade out sooner.
	FallOff float64

	// Opacity of the solid part of the shape, in [0, 1].
	Opacity float64

	// Color is the non-premultiplied RGB color. It is ignored for
	// alpha-only destinations.
	Color [3]float64

	// Operator combines the shape with the existing image contents.
	Operator Operator
}

// maxFeatherBands bounds the number of constant-alpha bands used to
// approximate the feather gradient.
const maxFeatherBands = 64

// coverageThreshold is the coverage above which a pixel belongs to a
// soft-shape band. Soft shapes are not anti-aliased: the feather
// gradient provides the smooth edge, and hard band edges cannot leave
// seams between neighbouring bands.
const coverageThreshold = 0.5

// DrawSoftShape renders s into dst.
//
// The solid part of the shape and every feather band are rendered into a
// per-shape mask, combined by taking the maximum. The mask is then
// composited onto dst with the shape's operator, color and opacity.
// DrawSoftShape overwrites r.CTM and r.Clip.
func (r *Rasterizer) DrawSoftShape(dst *Image, s *SoftShape) {
	n := len(s.Interior)
	if n < 2 || len(s.Feather) != n || dst.Rect.Empty() {
		return
	}

	r.CTM = matrix.Identity
	r.Clip = rect.Rect{
		LLx: float64(dst.Rect.Min.X),
		LLy: float64(dst.Rect.Min.Y),
		URx: float64(dst.Rect.Max.X),
		URy: float64(dst.Rect.Max.Y),
	}

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	r.mask = slices.Grow(r.mask[:0], w*h)[:w*h]
	clear(r.mask)
	touched := image.Rectangle{}

	alpha := math.Sqrt(max(0, min(1, s.Opacity)))
	paint := func(a float32) EmitFunc {
		return func(y, xMin int, coverage []float32) {
			row := r.mask[(y-dst.Rect.Min.Y)*w:]
			for i, c := range coverage {
				if c < coverageThreshold {
					continue
				}
				k := xMin + i - dst.Rect.Min.X
				row[k] = max(row[k], a)
			}
			touched = touched.Union(image.Rect(xMin, y, xMin+len(coverage), y+1))
		}
	}

	outer := featherOutline(s.Interior, s.Feather, s.FeatherDistance)

	// The ramp runs from the solid core (s=0) to the transparent edge (s=1).
	core, edge := s.Interior, outer
	if s.FeatherDistance < 0 {
		core, edge = outer, s.Interior
	}

	r.FillPolygon(core, NonZero, paint(float32(alpha)))

	width := 0.0
	for i := range n {
		width = max(width, edge[i].Sub(core[i]).Length())
	}
	if width > 0 {
		bands := max(1, min(maxFeatherBands, int(math.Ceil(width))))
		ramp := newFeatherRamp(s.FallOff)
		for k := range bands {
			s0 := float64(k) / float64(bands)
			s1 := float64(k+1) / float64(bands)
			a := alpha * ramp.alpha((s0+s1)/2)
			r.buildBand(core, edge, s0, s1)
			r.fillPolygons(r.poly, r.polyOffsets, NonZero, paint(float32(a)))
		}
	}

	color := [3]float32{float32(s.Color[0]), float32(s.Color[1]), float32(s.Color[2])}
	compositeMask(dst, r.mask, touched, color, float32(alpha), s.Operator)
}

// buildBand stores one quadrilateral per polygon edge in r.poly, covering
// the part of the feather between the fractions s0 and s1.
func (r *Rasterizer) buildBand(core, edge []vec.Vec2, s0, s1 float64) {
	r.poly = r.poly[:0]
	r.polyOffsets = r.polyOffsets[:0]
	n := len(core)
	for i := range n {
		j := (i + 1) % n
		r.addPolygon(
			lerp(core[i], edge[i], s0),
			lerp(core[j], edge[j], s0),
			lerp(core[j], edge[j], s1),
			lerp(core[i], edge[i], s1),
		)
	}
}

func lerp(a, b vec.Vec2, t float64) vec.Vec2 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// featherOutline offsets every feather vertex by dist along the outward
// normal. The normal is perpendicular to the chord between the two
// neighbouring vertices; its sign is chosen so that a small step along
// it leaves the interior polygon.
func featherOutline(interior, feather []vec.Vec2, dist float64) []vec.Vec2 {
	n := len(feather)
	out := make([]vec.Vec2, n)
	if dist == 0 {
		copy(out, feather)
		return out
	}

	bbox, _ := bezier.PolygonBounds(interior)
	for i := range n {
		prev := feather[(i+n-1)%n]
		next := feather[(i+1)%n]
		nrm, ok := bezier.UnitNormal(next.Sub(prev))
		if !ok {
			// coincident neighbours: push away from the interior point
			nrm, ok = bezier.Unit(feather[i].Sub(interior[i]))
		}
		if !ok {
			out[i] = feather[i]
			continue
		}
		if bezier.PointInPolygon(feather[i].Add(nrm.Mul(0.5)), interior, bbox, bezier.EvenOdd) {
			nrm = nrm.Mul(-1)
		}
		out[i] = feather[i].Add(nrm.Mul(dist))
	}
	return out
}

// featherRamp maps a position across the feather to an opacity factor.
//
// The position s is a cubic Bézier function of a parameter v with
// control values 0, c1, c2, 1; the opacity is 1-v. For fallOff = 1 the
// control values are evenly spaced and the ramp is linear.
type featherRamp struct {
	s [rampSize + 1]float64 // s(v) at v = j/rampSize, increasing
}

const rampSize = 256

func newFeatherRamp(fallOff float64) *featherRamp {
	if !(fallOff > 0) || math.IsInf(fallOff, 0) {
		fallOff = 1
	}
	// blend of fallOff and 1/fallOff
	w := (1 / fallOff) / (fallOff + 1/fallOff)
	c1 := 2.0 / 3.0 * w
	c2 := 1 - 2.0/3.0*(1-w)

	res := &featherRamp{}
	for j := range res.s {
		v := float64(j) / rampSize
		u := 1 - v
		res.s[j] = 3*u*u*v*c1 + 3*u*v*v*c2 + v*v*v
	}
	return res
}

// alpha returns the opacity factor at position s ∈ [0, 1].
func (fr *featherRamp) alpha(s float64) float64 {
	if s <= 0 {
		return 1
	}
	if s >= 1 {
		return 0
	}
	j, _ := slices.BinarySearch(fr.s[:], s)
	// fr.s[j-1] < s <= fr.s[j]
	j = max(j, 1)
	lo, hi := fr.s[j-1], fr.s[j]
	v := float64(j-1) / rampSize
	if hi > lo {
		v += (s - lo) / (hi - lo) / rampSize
	}
	return 1 - v
}
