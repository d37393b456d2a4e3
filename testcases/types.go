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

// Package testcases provides mask scenes shared by tests, benchmarks and
// the reference image generator.
//
// Scenes are plain data and do not depend on the roto package.
package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roto/raster"
)

// MotionDuration is the time over which [Shape.Motion] is applied.
const MotionDuration = 10

// Scene is a set of closed shapes rendered into one mask.
type Scene struct {
	Name   string  // lowercase a-z, 0-9 and _ only
	Width  int     // canvas width in pixels
	Height int     // canvas height in pixels
	Time   float64 // frame to render
	Shapes []Shape // in render order
}

// Shape is a closed Bézier curve with its render parameters.
type Shape struct {
	Points []Point

	Feather float64 // feather distance in pixels
	FallOff float64 // zero means linear
	Opacity float64 // zero means fully opaque

	Operator raster.Operator // zero value is OpClear; use OpOver for plain painting

	// Motion is added to every point between time 0 and MotionDuration.
	Motion vec.Vec2
}

// Point is a control point. Handles are absolute positions.
type Point struct {
	Pos, Left, Right vec.Vec2
}

// At returns the control points of s at time t.
func (s Shape) At(t float64) []Point {
	k := min(max(t/MotionDuration, 0), 1)
	d := s.Motion.Mul(k)
	res := make([]Point, len(s.Points))
	for i, p := range s.Points {
		res[i] = Point{Pos: p.Pos.Add(d), Left: p.Left.Add(d), Right: p.Right.Add(d)}
	}
	return res
}

// EffectiveFallOff returns the feather fall-off, with zero mapped to 1.
func (s Shape) EffectiveFallOff() float64 {
	if s.FallOff == 0 {
		return 1
	}
	return s.FallOff
}

// EffectiveOpacity returns the opacity, with zero mapped to 1.
func (s Shape) EffectiveOpacity() float64 {
	if s.Opacity == 0 {
		return 1
	}
	return s.Opacity
}

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// corner returns a point without handles.
func corner(x, y float64) Point {
	p := pt(x, y)
	return Point{Pos: p, Left: p, Right: p}
}

// smooth returns a point with symmetric handles along d.
func smooth(x, y, dx, dy float64) Point {
	p := pt(x, y)
	d := pt(dx, dy)
	return Point{Pos: p, Left: p.Sub(d), Right: p.Add(d)}
}

func polygon(xy ...float64) []Point {
	res := make([]Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		res = append(res, corner(xy[i], xy[i+1]))
	}
	return res
}

func rectangle(x0, y0, x1, y1 float64) []Point {
	return polygon(x0, y0, x1, y0, x1, y1, x0, y1)
}

const kappa = 0.5522847498

// ellipse returns the usual four-point approximation of an ellipse.
func ellipse(cx, cy, rx, ry float64) []Point {
	kx, ky := kappa*rx, kappa*ry
	return []Point{
		smooth(cx+rx, cy, 0, ky),
		smooth(cx, cy+ry, -kx, 0),
		smooth(cx-rx, cy, 0, -ky),
		smooth(cx, cy-ry, kx, 0),
	}
}

func over(pts []Point) Shape {
	return Shape{Points: pts, Operator: raster.OpOver}
}
