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

package bezier

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Bounds returns the exact axis-aligned bounding box of a cubic segment.
// The extrema are found at the roots of the derivative in (0,1).
func Bounds(p0, p1, p2, p3 vec.Vec2) rect.Rect {
	xMin, xMax := axisRange(p0.X, p1.X, p2.X, p3.X)
	yMin, yMax := axisRange(p0.Y, p1.Y, p2.Y, p3.Y)
	return rect.Rect{LLx: xMin, LLy: yMin, URx: xMax, URy: yMax}
}

// axisRange returns the range of one coordinate of a cubic segment.
func axisRange(p0, p1, p2, p3 float64) (lo, hi float64) {
	lo, hi = min(p0, p3), max(p0, p3)

	// B'(t)/3 = a t² + b t + c
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2 * (p0 - 2*p1 + p2)
	c := p1 - p0

	var roots [2]float64
	for _, t := range solveQuadratic(a, b, c, roots[:0]) {
		if t <= 0 || t >= 1 {
			continue
		}
		mt := 1 - t
		v := mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// solveQuadratic appends the real roots of a t² + b t + c = 0 to dst.
// A vanishing leading coefficient degrades to the linear case.
func solveQuadratic(a, b, c float64, dst []float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return dst
		}
		return append(dst, -c/b)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return dst
	}
	if disc == 0 {
		return append(dst, -b/(2*a))
	}
	// numerically stable form
	sq := math.Sqrt(disc)
	q := -0.5 * (b + math.Copysign(sq, b))
	dst = append(dst, q/a)
	if q != 0 {
		dst = append(dst, c/q)
	}
	return dst
}

// PolygonBounds returns the bounding box of a set of points.
// The second return value is false if pts is empty.
func PolygonBounds(pts []vec.Vec2) (rect.Rect, bool) {
	if len(pts) == 0 {
		return rect.Rect{}, false
	}
	r := rect.Rect{LLx: pts[0].X, LLy: pts[0].Y, URx: pts[0].X, URy: pts[0].Y}
	for _, p := range pts[1:] {
		r.LLx = min(r.LLx, p.X)
		r.LLy = min(r.LLy, p.Y)
		r.URx = max(r.URx, p.X)
		r.URy = max(r.URy, p.Y)
	}
	return r, true
}

// Union returns the smallest rectangle containing a and b.
func Union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: min(a.LLx, b.LLx),
		LLy: min(a.LLy, b.LLy),
		URx: max(a.URx, b.URx),
		URy: max(a.URy, b.URy),
	}
}

// Pad grows r by d in all four directions.
func Pad(r rect.Rect, d float64) rect.Rect {
	return rect.Rect{LLx: r.LLx - d, LLy: r.LLy - d, URx: r.URx + d, URy: r.URy + d}
}
