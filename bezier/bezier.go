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

// Package bezier contains the geometry kernel for cubic Bézier segments:
// de Casteljau evaluation and subdivision, exact bounding boxes,
// degree-aware end derivatives, hit testing and point-in-polygon tests.
//
// All functions are pure and safe for concurrent use.
package bezier

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// lerp interpolates between a and b.
// The weighted form returns a exactly for t=0 and b exactly for t=1.
func lerp(a, b vec.Vec2, t float64) vec.Vec2 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Point evaluates the cubic Bézier curve with control points p0, p1, p2, p3
// at parameter t, using de Casteljau's algorithm.
func Point(p0, p1, p2, p3 vec.Vec2, t float64) vec.Vec2 {
	p01 := lerp(p0, p1, t)
	p12 := lerp(p1, p2, t)
	p23 := lerp(p2, p3, t)
	p012 := lerp(p01, p12, t)
	p123 := lerp(p12, p23, t)
	return lerp(p012, p123, t)
}

// Split subdivides the curve at parameter t. The returned control points
// describe the parts [0,t] and [t,1]; left[3] == right[0] is the point on
// the curve.
func Split(p0, p1, p2, p3 vec.Vec2, t float64) (left, right [4]vec.Vec2) {
	p01 := lerp(p0, p1, t)
	p12 := lerp(p1, p2, t)
	p23 := lerp(p2, p3, t)
	p012 := lerp(p01, p12, t)
	p123 := lerp(p12, p23, t)
	m := lerp(p012, p123, t)

	left = [4]vec.Vec2{p0, p01, p012, m}
	right = [4]vec.Vec2{m, p123, p23, p3}
	return left, right
}

// AppendSamples appends n samples of the curve to dst, taken at
// t = j/n for j = 0, ..., n-1. The end point p3 is not included.
// Every sample is multiplied by scale.
func AppendSamples(dst []vec.Vec2, p0, p1, p2, p3 vec.Vec2, n int, scale float64) []vec.Vec2 {
	n = max(n, 1)
	for j := range n {
		t := float64(j) / float64(n)
		dst = append(dst, Point(p0, p1, p2, p3, t).Mul(scale))
	}
	return dst
}

// ControlPolygonLength returns |p1-p0| + |p2-p1| + |p3-p2|, an upper bound
// for the arc length of the curve.
func ControlPolygonLength(p0, p1, p2, p3 vec.Vec2) float64 {
	return p1.Sub(p0).Length() + p2.Sub(p1).Length() + p3.Sub(p2).Length()
}

// HitTest walks along the curve in parameter steps of roughly the given
// distance and returns the first parameter whose curve point lies within
// distance of q. This is the first acceptable sample, not the closest one.
func HitTest(p0, p1, p2, p3, q vec.Vec2, distance float64) (float64, bool) {
	if !(distance > 0) {
		return 0, false
	}
	length := ControlPolygonLength(p0, p1, p2, p3)
	incr := 1.0
	if length > 0 {
		incr = min(distance/length, 1)
	}
	dist2 := distance * distance

	for t := 0.0; ; t += incr {
		if t > 1 {
			t = 1
		}
		d := Point(p0, p1, p2, p3, t).Sub(q)
		if d.X*d.X+d.Y*d.Y < dist2 {
			return t, true
		}
		if t >= 1 {
			return 0, false
		}
	}
}

// RightDerivative returns the derivative at t=0 of the segment which starts
// at cur, with handles curRight and nextLeft and end point next.
// If handles coincide with the start point the degree is reduced
// (cubic, then quadratic, then linear), so that a usable direction is
// returned whenever the segment is not a single point.
func RightDerivative(cur, curRight, nextLeft, next vec.Vec2) vec.Vec2 {
	switch {
	case curRight != cur:
		return curRight.Sub(cur).Mul(3)
	case nextLeft != cur:
		return nextLeft.Sub(cur).Mul(2)
	default:
		return next.Sub(cur)
	}
}

// LeftDerivative returns the derivative at cur of the segment which ends
// at cur, taken with respect to the reversed parameter. The result points
// from cur back towards the previous point. Degenerate handles are treated
// as in RightDerivative.
func LeftDerivative(prev, prevRight, curLeft, cur vec.Vec2) vec.Vec2 {
	switch {
	case curLeft != cur:
		return curLeft.Sub(cur).Mul(3)
	case prevRight != cur:
		return prevRight.Sub(cur).Mul(2)
	default:
		return prev.Sub(cur)
	}
}

// UnitNormal returns d rotated by 90° and scaled to unit length.
// The second return value is false if d is the zero vector.
func UnitNormal(d vec.Vec2) (vec.Vec2, bool) {
	l := d.Length()
	if l == 0 || math.IsNaN(l) {
		return vec.Vec2{}, false
	}
	return vec.Vec2{X: -d.Y / l, Y: d.X / l}, true
}

// Unit returns d scaled to unit length.
// The second return value is false if d is the zero vector.
func Unit(d vec.Vec2) (vec.Vec2, bool) {
	l := d.Length()
	if l == 0 || math.IsNaN(l) {
		return vec.Vec2{}, false
	}
	return d.Mul(1 / l), true
}
