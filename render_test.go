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

package roto

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"testing"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/roto/raster"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func renderAlpha(t *testing.T, c *Context, opts RenderOptions) *raster.Image {
	t.Helper()
	img, err := c.RenderMask(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestRenderRectangle(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{LLx: 2, LLy: 2, URx: 8, URy: 8}, 1)
	opts := RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 10, 10), Channels: 1}

	img := renderAlpha(t, c, opts)
	cases := []struct {
		x, y int
		want float32
	}{
		{5, 5, 1}, {2, 2, 1}, {7, 7, 1}, {1, 1, 0}, {8, 8, 0}, {0, 5, 0},
	}
	for _, tc := range cases {
		if got := img.Alpha(tc.x, tc.y); !near(got, tc.want) {
			t.Errorf("pixel (%d,%d): %g, want %g", tc.x, tc.y, got, tc.want)
		}
	}

	s.SetParam(ParamOpacity, 1, 0.25)
	img = renderAlpha(t, c, opts)
	if got := img.Alpha(5, 5); !near(got, 0.25) {
		t.Errorf("opacity 0.25 gave alpha %g", got)
	}
}

func TestRenderBounds(t *testing.T) {
	c := NewContext()
	c.MakeRectangle(rect.Rect{LLx: 2, LLy: 2, URx: 8, URy: 8}, 1)
	img := renderAlpha(t, c, RenderOptions{Time: 1, Channels: 1})
	if img.Rect != image.Rect(2, 2, 8, 8) {
		t.Errorf("bounds %v", img.Rect)
	}

	c = NewContext()
	c.MakeRectangle(rect.Rect{URx: 20, URy: 20}, 1)
	img = renderAlpha(t, c, RenderOptions{Time: 1, Level: 1, Channels: 1})
	if img.Rect != image.Rect(0, 0, 10, 10) {
		t.Errorf("level 1 bounds %v", img.Rect)
	}
	if got := img.Alpha(5, 5); !near(got, 1) {
		t.Errorf("level 1 alpha %g", got)
	}

	// nothing to draw
	img = renderAlpha(t, NewContext(), RenderOptions{Time: 1, Channels: 1})
	if !img.Rect.Empty() {
		t.Errorf("empty context gave %v", img.Rect)
	}
}

func TestRenderColor(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{URx: 10, URy: 10}, 1)
	s.SetParam(ParamColorG, 1, 0)
	s.SetParam(ParamColorB, 1, 0)

	img := renderAlpha(t, c, RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 10, 10), Channels: 4})
	i := img.PixOffset(5, 5)
	want := []float32{1, 0, 0, 1}
	for k, w := range want {
		if got := img.Pix[i+k]; !near(got, w) {
			t.Errorf("channel %d: %g, want %g", k, got, w)
		}
	}
}

func TestRenderOrderAndOperators(t *testing.T) {
	c := NewContext()
	c.MakeRectangle(rect.Rect{URx: 10, URy: 10}, 1)
	cut := c.MakeRectangle(rect.Rect{LLx: 5, URx: 10, URy: 10}, 1)
	cut.SetParam(ParamOperator, 1, float64(raster.OpDestOut))
	c.MakeShape(v(0, 0), "", 1) // unfinished shapes are not drawn

	img := renderAlpha(t, c, RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 10, 10), Channels: 1})
	if got := img.Alpha(2, 5); !near(got, 1) {
		t.Errorf("left half: %g", got)
	}
	if got := img.Alpha(7, 5); got != 0 {
		t.Errorf("cut out half: %g", got)
	}

	cut.SetGloballyActivated(false, false)
	img = renderAlpha(t, c, RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 10, 10), Channels: 1})
	if got := img.Alpha(7, 5); !near(got, 1) {
		t.Errorf("deactivated cut still applied: %g", got)
	}
}

func TestRenderFeather(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{LLx: 10, LLy: 10, URx: 30, URy: 30}, 1)
	s.SetParam(ParamFeatherDistance, 1, 8)

	img := renderAlpha(t, c, RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 40, 40), Channels: 1})
	if got := img.Alpha(20, 20); !near(got, 1) {
		t.Errorf("centre %g", got)
	}
	prev := float32(1)
	for x := 30; x < 38; x++ {
		a := img.Alpha(x, 20)
		if a <= 0 || a >= prev {
			t.Errorf("x=%d: alpha %g after %g", x, a, prev)
		}
		prev = a
	}
	if got := img.Alpha(39, 20); got != 0 {
		t.Errorf("beyond the feather: %g", got)
	}
}

func TestRenderCache(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{URx: 10, URy: 10}, 1)
	opts := RenderOptions{Time: 1, Channels: 1}

	a := renderAlpha(t, c, opts)
	stamp := c.LastRender()
	b := renderAlpha(t, c, opts)
	if c.LastRender() != stamp {
		t.Error("same options gave a different stamp")
	}
	if a == b || a.Alpha(5, 5) != b.Alpha(5, 5) {
		t.Error("cached image shared or different")
	}
	b.Clear()
	if got := renderAlpha(t, c, opts).Alpha(5, 5); !near(got, 1) {
		t.Error("cache entry modified through a returned image")
	}

	opts.Time = 2
	renderAlpha(t, c, opts)
	if c.LastRender().Hash == stamp.Hash {
		t.Error("different options gave the same hash")
	}

	_ = s.MovePointByIndex(0, 1, v(1, 1))
	opts.Time = 1
	renderAlpha(t, c, opts)
	if got := c.LastRender(); got.Hash != stamp.Hash || got.Age == stamp.Age {
		t.Errorf("stamp after a change: %+v, before: %+v", got, stamp)
	}
}

func TestRenderCancel(t *testing.T) {
	c := NewContext()
	c.MakeRectangle(rect.Rect{URx: 10, URy: 10}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.RenderMask(ctx, RenderOptions{Time: 1, Channels: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestRenderFrames(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{URx: 10, URy: 10}, 1)
	for i := range 4 {
		_ = s.MovePointByIndex(i, 11, v(10, 0))
	}

	times := []float64{1, 6, 11}
	opts := RenderOptions{Bounds: image.Rect(0, 0, 30, 10), Channels: 1}
	frames, err := c.RenderFrames(context.Background(), times, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames", len(frames))
	}
	cases := []struct {
		frame, x int
		want     float32
	}{
		{0, 2, 1}, {0, 15, 0},
		{1, 2, 0}, {1, 12, 1},
		{2, 2, 0}, {2, 15, 1},
	}
	for _, tc := range cases {
		if got := frames[tc.frame].Alpha(tc.x, 5); !near(got, tc.want) {
			t.Errorf("frame %d, x=%d: %g, want %g", tc.frame, tc.x, got, tc.want)
		}
	}
}

func TestRenderOverlay(t *testing.T) {
	c := NewContext()
	c.MakeRectangle(rect.Rect{LLx: 5, LLy: 5, URx: 15, URy: 15}, 1)
	dst := raster.NewImage(image.Rect(0, 0, 20, 20), 4)
	if err := c.RenderOverlay(context.Background(), dst, RenderOptions{Time: 1}); err != nil {
		t.Fatal(err)
	}
	if got := dst.Alpha(10, 4); got <= 0 {
		t.Error("outline not drawn")
	}
	if got := dst.Alpha(10, 10); got != 0 {
		t.Errorf("inside the outline: %g", got)
	}
	if got := dst.Alpha(0, 0); got != 0 {
		t.Errorf("far from the outline: %g", got)
	}
}

func TestRenderWhileEditing(t *testing.T) {
	c := NewContext()
	s := c.MakeRectangle(rect.Rect{LLx: 2, LLy: 2, URx: 30, URy: 30}, 1)
	opts := RenderOptions{Time: 1, Bounds: image.Rect(0, 0, 32, 32), Channels: 1}

	done := make(chan struct{})
	var wg sync.WaitGroup
	readers := []func(){
		func() {
			if _, err := c.RenderMask(context.Background(), opts); err != nil {
				t.Error(err)
			}
		},
		func() {
			poly, _ := s.EvaluateDeCasteljau(1, 0, 8)
			if len(poly) == 0 {
				t.Error("empty polygon")
			}
		},
		func() {
			c.IsNearbyBezier(v(2, 16), 1, 1)
			c.CurvesByRenderOrder()
			c.GoToNextKeyframe(0)
		},
	}
	for _, read := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					read()
				}
			}
		}()
	}

	names := []string{"Matte", "Garbage"}
	for i := range 20 {
		if err := s.MovePointByIndex(0, 1, v(0.1, 0)); err != nil {
			t.Error(err)
		}
		s.SetName(names[i%2])
		_ = c.Select(s)
		if _, err := s.AddControlPointAfterIndex(0, 0.5); err != nil {
			t.Error(err)
		}
		c.ClearSelection()
	}
	close(done)
	wg.Wait()

	if n := len(s.ControlPoints()); n != 24 {
		t.Errorf("%d control points, want 24", n)
	}
	img := renderAlpha(t, c, opts)
	if got := img.Alpha(16, 16); !near(got, 1) {
		t.Errorf("centre alpha %g after edits", got)
	}
}

func BenchmarkRenderMask(b *testing.B) {
	c := NewContext()
	s := c.MakeEllipse(v(256, 256), 200, 150, 1)
	s.SetParam(ParamFeatherDistance, 1, 20)
	dst := raster.NewImage(image.Rect(0, 0, 512, 512), 1)
	opts := RenderOptions{Time: 1}

	b.ReportAllocs()
	for b.Loop() {
		dst.Clear()
		if err := c.RenderMaskInto(context.Background(), dst, opts); err != nil {
			b.Fatal(err)
		}
	}
}
