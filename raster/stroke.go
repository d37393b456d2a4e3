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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// The stroker decomposes a stroke into simple convex pieces: one
// rectangle per segment, plus join, cap and dot polygons. All pieces are
// oriented the same way and filled together with the nonzero rule, so
// overlaps are painted once.

// span is a range of points in Rasterizer.lines.
type span struct {
	start, end int
	closed     bool
	dir        vec.Vec2 // direction at the start, used for dots
}

// Stroke strokes the path using Width, Cap, Join, MiterLimit, Dash and
// DashPhase. Coverage is delivered row by row through emit.
func (r *Rasterizer) Stroke(p *path.Data, emit EmitFunc) {
	r.poly = r.poly[:0]
	r.polyOffsets = r.polyOffsets[:0]
	r.lines = r.lines[:0]
	r.spans = r.spans[:0]

	r.flattenForStroke(p)
	for _, s := range r.spans {
		pts := r.lines[s.start:s.end]
		if len(r.Dash) > 0 {
			r.strokeDashed(pts, s.closed, s.dir)
		} else {
			r.strokePiece(pts, s.closed, s.dir)
		}
	}
	r.fillPolygons(r.poly, r.polyOffsets, NonZero, emit)
}

// StrokePolyline strokes a polyline given directly by its vertices.
func (r *Rasterizer) StrokePolyline(pts []vec.Vec2, closed bool, emit EmitFunc) {
	if len(pts) == 0 {
		return
	}
	p := (&path.Data{}).MoveTo(pts[0])
	for _, q := range pts[1:] {
		p = p.LineTo(q)
	}
	if closed {
		p = p.Close()
	}
	r.Stroke(p, emit)
}

// flattenForStroke converts every subpath of p into a polyline in
// r.lines, recorded in r.spans. Consecutive duplicate points are removed.
func (r *Rasterizer) flattenForStroke(p *path.Data) {
	if p == nil {
		return
	}
	start := -1
	var first vec.Vec2

	add := func(_, to vec.Vec2) {
		if start < 0 || r.lines[len(r.lines)-1] == to {
			return
		}
		r.lines = append(r.lines, to)
	}
	finish := func(closed bool) {
		if start < 0 {
			return
		}
		pts := r.lines[start:]
		if closed && len(pts) > 1 && pts[len(pts)-1] == pts[0] {
			r.lines = r.lines[:len(r.lines)-1]
		}
		r.spans = append(r.spans, span{start: start, end: len(r.lines), closed: closed})
		start = -1
	}

	var cur vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			finish(false)
			cur = p.Coords[k]
			first = cur
			start = len(r.lines)
			r.lines = append(r.lines, cur)
			k++
		case path.CmdLineTo:
			add(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(cur, p.Coords[k], p.Coords[k+1], add)
			cur = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2], add)
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			finish(true)
			cur = first
		}
	}
	finish(false)
}

// strokeDashed splits a polyline according to the dash pattern and strokes
// every dash.
func (r *Rasterizer) strokeDashed(line []vec.Vec2, closed bool, dir vec.Vec2) {
	pattern := r.Dash
	n := len(pattern)
	total := 0.0
	for _, d := range pattern {
		total += d
	}
	if n%2 == 1 {
		total *= 2
	}
	if total <= 0 || len(line) < 2 {
		r.strokePiece(line, closed, dir)
		return
	}

	r.ring = append(r.ring[:0], line...)
	if closed {
		r.ring = append(r.ring, line[0])
	}
	pts := r.ring

	phase := math.Mod(r.DashPhase, total)
	if phase < 0 {
		phase += total
	}
	idx := 0
	for phase >= pattern[idx%n] {
		phase -= pattern[idx%n]
		idx++
	}
	remaining := pattern[idx%n] - phase
	on := idx%2 == 0

	r.pieces = r.pieces[:0]
	var piece []vec.Vec2
	var pieceDir vec.Vec2
	startsOn := on
	if on {
		piece = append(piece, pts[0])
		pieceDir, _ = unit(pts[1].Sub(pts[0]))
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := b.Sub(a).Length()
		if segLen < zeroLengthThreshold {
			continue
		}
		t, _ := unit(b.Sub(a))
		pos := 0.0
		for segLen-pos > remaining {
			pos += remaining
			q := a.Add(b.Sub(a).Mul(pos / segLen))
			if on {
				piece = append(piece, q)
				r.pieces = append(r.pieces, dashPiece{pts: piece, dir: pieceDir})
				piece = nil
			} else {
				piece = append(piece, q)
				pieceDir = t
			}
			on = !on
			idx++
			remaining = pattern[idx%n]
		}
		remaining -= segLen - pos
		if on {
			piece = append(piece, b)
		}
	}
	if on && startsOn && len(r.pieces) == 0 {
		// a single dash covers the whole polyline
		r.strokePiece(line, closed, dir)
		return
	}
	if on && len(piece) > 0 {
		r.pieces = append(r.pieces, dashPiece{pts: piece, dir: pieceDir})
		if closed && startsOn && len(r.pieces) > 1 {
			// the dash running through the start point is one piece
			last := &r.pieces[len(r.pieces)-1]
			last.pts = append(last.pts, r.pieces[0].pts[1:]...)
			r.pieces = r.pieces[1:]
		}
	}

	for _, pc := range r.pieces {
		r.strokePiece(dedup(pc.pts), false, pc.dir)
	}
}

type dashPiece struct {
	pts []vec.Vec2
	dir vec.Vec2
}

// dedup removes consecutive duplicate points in place.
func dedup(pts []vec.Vec2) []vec.Vec2 {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p.Sub(out[len(out)-1]).Length() >= zeroLengthThreshold {
			out = append(out, p)
		}
	}
	return out
}

// strokePiece adds the outline polygons for one polyline.
func (r *Rasterizer) strokePiece(pts []vec.Vec2, closed bool, dir vec.Vec2) {
	d := r.Width / 2
	if len(pts) == 0 || d <= 0 {
		return
	}
	if len(pts) == 1 {
		switch r.Cap {
		case graphics.LineCapRound:
			r.addDisc(pts[0], d)
		case graphics.LineCapSquare:
			if u, ok := unit(dir); ok {
				r.addSquareCap(pts[0].Sub(u.Mul(d)), u, 2*d)
			}
		}
		return
	}

	n := len(pts)
	segEnd := n - 1
	if closed {
		segEnd = n
	}
	for i := range segEnd {
		a, b := pts[i], pts[(i+1)%n]
		t, ok := unit(b.Sub(a))
		if !ok {
			continue
		}
		off := normal(t).Mul(d)
		r.addPolygon(a.Add(off), b.Add(off), b.Sub(off), a.Sub(off))
	}

	for i := range n {
		if !closed && (i == 0 || i == n-1) {
			continue
		}
		prev, cur, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
		t1, ok1 := unit(cur.Sub(prev))
		t2, ok2 := unit(next.Sub(cur))
		if ok1 && ok2 {
			r.addJoin(cur, t1, t2, d)
		}
	}

	if !closed {
		if u, ok := unit(pts[0].Sub(pts[1])); ok {
			r.addCap(pts[0], u, d)
		}
		if u, ok := unit(pts[n-1].Sub(pts[n-2])); ok {
			r.addCap(pts[n-1], u, d)
		}
	}
}

// addCap adds the cap at the end point p, where u points away from the
// line.
func (r *Rasterizer) addCap(p, u vec.Vec2, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.addDisc(p, d)
	case graphics.LineCapSquare:
		r.addSquareCap(p, u, d)
	}
}

// addSquareCap adds a rectangle of length l along u, starting at p,
// with the stroke width.
func (r *Rasterizer) addSquareCap(p, u vec.Vec2, l float64) {
	n := normal(u).Mul(r.Width / 2)
	e := p.Add(u.Mul(l))
	r.addPolygon(p.Add(n), e.Add(n), e.Sub(n), p.Sub(n))
}

// addJoin fills the gap on the outer side of the corner at p, where the
// direction changes from t1 to t2.
func (r *Rasterizer) addJoin(p, t1, t2 vec.Vec2, d float64) {
	cross := t1.X*t2.Y - t1.Y*t2.X
	cos := t1.Dot(t2)
	if math.Abs(cross) < collinearityThreshold && cos > 0 {
		return
	}

	if r.Join == graphics.LineJoinRound {
		r.addDisc(p, d)
		return
	}

	side := 1.0
	if cross > 0 {
		side = -1
	}
	n1 := normal(t1).Mul(side * d)
	n2 := normal(t2).Mul(side * d)
	a, b := p.Add(n1), p.Add(n2)

	if r.Join == graphics.LineJoinMiter {
		sinHalf := math.Sqrt((1 + cos) / 2)
		if sinHalf > 0 && 1/sinHalf <= r.MiterLimit+1e-10 {
			if bis, ok := unit(n1.Add(n2)); ok {
				m := p.Add(bis.Mul(d / sinHalf))
				r.addPolygon(p, a, m, b)
				return
			}
		}
	}
	r.addPolygon(p, a, b)
}

// addDisc adds a circle of radius rad around c.
func (r *Rasterizer) addDisc(c vec.Vec2, rad float64) {
	devRad := max(r.transformLinear(vec.Vec2{X: rad}).Length(),
		r.transformLinear(vec.Vec2{Y: rad}).Length())

	n := 8
	if devRad > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devRad)
		if step > 0 && !math.IsNaN(step) {
			n = max(n, int(math.Ceil(2*math.Pi/step)))
		}
	}

	start := len(r.poly)
	for i := range n {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r.poly = append(r.poly, vec.Vec2{X: c.X + rad*math.Cos(phi), Y: c.Y + rad*math.Sin(phi)})
	}
	r.closePolygon(start)
}

func (r *Rasterizer) addPolygon(pts ...vec.Vec2) {
	start := len(r.poly)
	r.poly = append(r.poly, pts...)
	r.closePolygon(start)
}

// closePolygon finishes the polygon starting at r.poly[start]. Polygons
// are oriented with positive signed area; degenerate ones are dropped.
func (r *Rasterizer) closePolygon(start int) {
	pts := r.poly[start:]
	a := signedArea(pts)
	if len(pts) < 3 || a == 0 {
		r.poly = r.poly[:start]
		return
	}
	if a < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	r.polyOffsets = append(r.polyOffsets, start)
}

func signedArea(pts []vec.Vec2) float64 {
	var a float64
	n := len(pts)
	for i := range n {
		p, q := pts[i], pts[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func unit(v vec.Vec2) (vec.Vec2, bool) {
	l := v.Length()
	if l < zeroLengthThreshold {
		return vec.Vec2{}, false
	}
	return v.Mul(1 / l), true
}

// normal returns t rotated by 90° counter-clockwise.
func normal(t vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -t.Y, Y: t.X}
}

// collinearityThreshold is the largest |sin| between two segment
// directions which are treated as collinear.
const collinearityThreshold = 1e-6
