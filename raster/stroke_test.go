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
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

func TestStrokeButt(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 10})
	r.Width = 2
	g := newGrid(20, 10)
	r.StrokePolyline([]vec.Vec2{{X: 2, Y: 5}, {X: 18, Y: 5}}, false, g.emit)

	for x := range 20 {
		want := float32(0)
		if x >= 2 && x < 18 {
			want = 1
		}
		for _, y := range []int{4, 5} {
			if got := g.at(x, y); !near(got, want) {
				t.Errorf("pixel (%d,%d): got %g, want %g", x, y, got, want)
			}
		}
		if !near(g.at(x, 3), 0) || !near(g.at(x, 6), 0) {
			t.Errorf("column %d: coverage outside the stroke", x)
		}
	}
}

func TestStrokeCaps(t *testing.T) {
	line := []vec.Vec2{{X: 5, Y: 5}, {X: 15, Y: 5}}
	cases := []struct {
		name      string
		cap       graphics.LineCapStyle
		wantLeft  bool // pixel (3,5) covered
		wantRight bool // pixel (16,4) covered
	}{
		{"butt", graphics.LineCapButt, false, false},
		{"square", graphics.LineCapSquare, true, true},
		{"round", graphics.LineCapRound, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 20, URy: 10})
			r.Width = 6
			r.Cap = tc.cap
			g := newGrid(20, 10)
			r.StrokePolyline(line, false, g.emit)
			if got := g.at(3, 5) > 0.5; got != tc.wantLeft {
				t.Errorf("left cap coverage %g", g.at(3, 5))
			}
			if got := g.at(16, 4) > 0.5; got != tc.wantRight {
				t.Errorf("right cap coverage %g", g.at(16, 4))
			}
		})
	}
}

func TestStrokeDashed(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 10})
	r.Width = 2
	r.Dash = []float64{4, 4}
	g := newGrid(20, 10)
	r.StrokePolyline([]vec.Vec2{{X: 2, Y: 5}, {X: 18, Y: 5}}, false, g.emit)

	cases := []struct {
		x    int
		want float32
	}{
		{3, 1}, {5, 1}, // [2,6) on
		{7, 0}, {9, 0}, // [6,10) off
		{11, 1}, {13, 1}, // [10,14) on
		{15, 0}, {17, 0}, // [14,18) off
	}
	for _, tc := range cases {
		if got := g.at(tc.x, 4); !near(got, tc.want) {
			t.Errorf("pixel %d: got %g, want %g", tc.x, got, tc.want)
		}
	}
}

func TestStrokeDashPhase(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 10})
	r.Width = 2
	r.Dash = []float64{4, 4}
	r.DashPhase = 4
	g := newGrid(20, 10)
	r.StrokePolyline([]vec.Vec2{{X: 2, Y: 5}, {X: 18, Y: 5}}, false, g.emit)
	if !near(g.at(3, 4), 0) || !near(g.at(7, 4), 1) {
		t.Errorf("phase 4 should start with a gap: %g %g", g.at(3, 4), g.at(7, 4))
	}
}

func TestStrokeClosedJoins(t *testing.T) {
	square := []vec.Vec2{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}
	joins := map[string]graphics.LineJoinStyle{
		"miter": graphics.LineJoinMiter,
		"round": graphics.LineJoinRound,
		"bevel": graphics.LineJoinBevel,
	}
	for name, join := range joins {
		t.Run(name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
			r.Width = 4
			r.Join = join
			g := newGrid(20, 20)
			r.StrokePolyline(square, true, g.emit)

			// the middle of each side is covered, the inside is not
			for _, p := range [][2]int{{10, 4}, {10, 15}, {4, 10}, {15, 10}} {
				if !near(g.at(p[0], p[1]), 1) {
					t.Errorf("side pixel %v: %g", p, g.at(p[0], p[1]))
				}
			}
			if !near(g.at(10, 10), 0) {
				t.Errorf("inside pixel covered: %g", g.at(10, 10))
			}
			// the outer corner pixel is only filled by a miter join
			corner := g.at(3, 3)
			if join == graphics.LineJoinMiter && !near(corner, 1) {
				t.Errorf("miter corner coverage %g, want 1", corner)
			}
			if join != graphics.LineJoinMiter && corner > 0.99 {
				t.Errorf("%s corner coverage %g, want < 1", name, corner)
			}
		})
	}
}

func TestStrokeOverlapPaintedOnce(t *testing.T) {
	// a path crossing itself must not produce coverage above 1 or holes
	r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
	r.Width = 4
	g := newGrid(20, 20)
	r.StrokePolyline([]vec.Vec2{{X: 2, Y: 10}, {X: 18, Y: 10}, {X: 10, Y: 2}, {X: 10, Y: 18}}, false, g.emit)
	if !near(g.at(10, 10), 1) {
		t.Errorf("crossing pixel coverage %g, want 1", g.at(10, 10))
	}
	for i, v := range g.v {
		if v > 1+1e-5 {
			t.Fatalf("pixel %d has coverage %g", i, v)
		}
	}
}
