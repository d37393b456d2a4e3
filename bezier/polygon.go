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
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// FillRule selects how the winding number of a point is interpreted.
type FillRule int

const (
	// EvenOdd treats a point as inside if its winding number is odd.
	EvenOdd FillRule = iota

	// Winding treats a point as inside if its winding number is non-zero.
	Winding
)

// PointInPolygon reports whether p lies inside the closed polygon poly.
// The bbox must contain all polygon vertices; points outside it are
// rejected without looking at the edges.
func PointInPolygon(p vec.Vec2, poly []vec.Vec2, bbox rect.Rect, rule FillRule) bool {
	if len(poly) < 3 {
		return false
	}
	if p.X < bbox.LLx || p.X > bbox.URx || p.Y < bbox.LLy || p.Y > bbox.URy {
		return false
	}

	wn := WindingNumber(p, poly)
	if rule == EvenOdd {
		return wn%2 != 0
	}
	return wn != 0
}

// WindingNumber returns the winding number of the closed polygon poly
// around p. A horizontal ray from p to +∞ is intersected with every edge;
// horizontal edges never contribute.
func WindingNumber(p vec.Vec2, poly []vec.Vec2) int {
	wn := 0
	n := len(poly)
	for i := range n {
		a := poly[i]
		b := poly[(i+1)%n]
		if a.Y == b.Y {
			continue
		}

		// > 0 if p is left of the directed edge a→b
		side := (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
		if a.Y <= p.Y {
			if b.Y > p.Y && side > 0 {
				wn++
			}
		} else if b.Y <= p.Y && side < 0 {
			wn--
		}
	}
	return wn
}
