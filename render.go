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
	"encoding/binary"
	"hash/fnv"
	"image"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/roto/raster"
)

// DefaultPointsPerSegment is the number of polyline samples per Bézier
// segment used for rendering.
const DefaultPointsPerSegment = 50

// RenderOptions describes a mask render.
type RenderOptions struct {
	// Time is the frame to render.
	Time float64

	// Level is the detail level: shape coordinates are divided by
	// 2^Level.
	Level uint

	// Bounds is the output area, in the pixel coordinates of the detail
	// level. If empty, the region of definition of the mask is used.
	Bounds image.Rectangle

	// Channels is 1 for an alpha mask or 4 for a color image.
	Channels int

	// PointsPerSegment sets the sampling density. Zero selects
	// DefaultPointsPerSegment.
	PointsPerSegment int

	// Overlay adds the shape outlines on top of the mask.
	Overlay bool
}

func (o *RenderOptions) pointsPerSegment() int {
	if o.PointsPerSegment <= 0 {
		return DefaultPointsPerSegment
	}
	return o.PointsPerSegment
}

// hash returns the FNV-1a hash of the options.
func (o *RenderOptions) hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []uint64{
		math.Float64bits(o.Time),
		uint64(o.Level),
		uint64(int64(o.Bounds.Min.X)), uint64(int64(o.Bounds.Min.Y)),
		uint64(int64(o.Bounds.Max.X)), uint64(int64(o.Bounds.Max.Y)),
		uint64(o.Channels),
		uint64(o.pointsPerSegment()),
	} {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	if o.Overlay {
		h.Write([]byte{1})
	}
	return h.Sum64()
}

// RenderStamp identifies a rendered mask: the hash of the render options
// and the age of the context at the time of rendering.
type RenderStamp struct {
	Hash uint64
	Age  uint64
}

// maskCache keeps the masks rendered since the last change of the
// context.
type maskCache struct {
	mu      sync.Mutex
	age     uint64
	entries map[uint64]*raster.Image
}

func (m *maskCache) get(stamp RenderStamp) (*raster.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stamp.Age != m.age {
		clear(m.entries)
		m.age = stamp.Age
		return nil, false
	}
	img, ok := m.entries[stamp.Hash]
	return img, ok
}

func (m *maskCache) put(stamp RenderStamp, img *raster.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stamp.Age != m.age {
		clear(m.entries)
		m.age = stamp.Age
	}
	if m.entries == nil {
		m.entries = make(map[uint64]*raster.Image)
	}
	m.entries[stamp.Hash] = img
}

var rasterizers = sync.Pool{
	New: func() any { return raster.NewRasterizer(rect.Rect{}) },
}

// LastRender returns the stamp of the most recent RenderMask call.
func (c *Context) LastRender() RenderStamp {
	return c.lastRender.Load()
}

// renderBounds returns the output rectangle for opts.
func (c *Context) renderBounds(opts *RenderOptions) image.Rectangle {
	if !opts.Bounds.Empty() {
		return opts.Bounds
	}
	rod, ok := c.MaskRegionOfDefinition(opts.Time)
	if !ok {
		return image.Rectangle{}
	}
	s := levelScale(opts.Level)
	return image.Rect(
		int(math.Floor(rod.LLx*s)), int(math.Floor(rod.LLy*s)),
		int(math.Ceil(rod.URx*s)), int(math.Ceil(rod.URy*s)),
	)
}

// RenderMask renders all shapes at opts.Time into a new image.
// Results are cached until the next change of the context; the returned
// image is owned by the caller.
func (c *Context) RenderMask(ctx context.Context, opts RenderOptions) (*raster.Image, error) {
	stamp := RenderStamp{Hash: opts.hash(), Age: c.Age()}
	c.lastRender.Store(stamp)
	if img, ok := c.cache.get(stamp); ok {
		Logger().Debug("mask cache hit", "time", opts.Time, "hash", stamp.Hash)
		return img.Clone(), nil
	}

	dst := raster.NewImage(c.renderBounds(&opts), opts.Channels)
	if err := c.RenderMaskInto(ctx, dst, opts); err != nil {
		return nil, err
	}
	c.cache.put(stamp, dst.Clone())
	return dst, nil
}

// RenderMaskInto paints all shapes at opts.Time into dst, in render
// order. opts.Bounds and opts.Channels are ignored; the area and the
// format of dst are used instead. The context is checked between shapes.
// If it is cancelled, the error is returned and dst holds a partial
// result.
func (c *Context) RenderMaskInto(ctx context.Context, dst *raster.Image, opts RenderOptions) error {
	t := opts.Time
	pps := opts.pointsPerSegment()
	scale := levelScale(opts.Level)

	r := rasterizers.Get().(*raster.Rasterizer)
	defer rasterizers.Put(r)

	shapes := c.CurvesByRenderOrder()
	drawn := 0
	for _, s := range shapes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.isRenderable(t) {
			continue
		}
		interior, _ := s.EvaluateDeCasteljau(t, opts.Level, pps)
		feather, _ := s.EvaluateFeatherDeCasteljau(t, opts.Level, pps, true)
		r.DrawSoftShape(dst, &raster.SoftShape{
			Interior:        interior,
			Feather:         feather,
			FeatherDistance: s.FeatherDistance(t) * scale,
			FallOff:         s.FeatherFallOff(t),
			Opacity:         s.Opacity(t),
			Color:           s.Color(t),
			Operator:        s.Operator(t),
		})
		drawn++
	}

	if opts.Overlay {
		if err := c.drawOverlay(ctx, r, dst, opts); err != nil {
			return err
		}
	}

	Logger().Debug("mask rendered",
		"time", t, "level", opts.Level, "shapes", drawn, "bounds", dst.Rect)
	return nil
}

// RenderFrames renders the mask at each of the given times. Frames are
// rendered in parallel; the first error cancels the remaining work.
func (c *Context) RenderFrames(ctx context.Context, times []float64, opts RenderOptions) ([]*raster.Image, error) {
	res := make([]*raster.Image, len(times))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range times {
		g.Go(func() error {
			o := opts
			o.Time = t
			img, err := c.RenderMask(ctx, o)
			if err != nil {
				return err
			}
			res[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// RenderOverlay draws the outline of every activated shape into dst.
// Interior curves are drawn solid in the shape's overlay color, feather
// curves dashed.
func (c *Context) RenderOverlay(ctx context.Context, dst *raster.Image, opts RenderOptions) error {
	r := rasterizers.Get().(*raster.Rasterizer)
	defer rasterizers.Put(r)
	return c.drawOverlay(ctx, r, dst, opts)
}

const overlayDash = 4

func (c *Context) drawOverlay(ctx context.Context, r *raster.Rasterizer, dst *raster.Image, opts RenderOptions) error {
	t := opts.Time
	scale := levelScale(opts.Level)
	clip := rect.Rect{
		LLx: float64(dst.Rect.Min.X),
		LLy: float64(dst.Rect.Min.Y),
		URx: float64(dst.Rect.Max.X),
		URy: float64(dst.Rect.Max.Y),
	}

	for _, s := range c.CurvesByRenderOrder() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Len() < 2 || !s.IsActivated(t) {
			continue
		}
		closed := s.IsFinished()
		rgba := s.OverlayColor()
		col := [4]float32{float32(rgba[0]), float32(rgba[1]), float32(rgba[2]), float32(rgba[3])}
		emit := func(y, xMin int, coverage []float32) {
			dst.BlendCoverage(y, xMin, coverage, col, raster.OpOver)
		}

		// strokes are built in shape coordinates, widths in device pixels
		r.Reset(clip)
		r.CTM = matrix.Matrix{scale, 0, 0, scale, 0, 0}
		r.Width = 1 / scale
		r.Join = graphics.LineJoinRound
		r.Cap = graphics.LineCapRound
		r.Stroke(curvePath(statesAt(s.ControlPoints(), t), closed), emit)

		r.Dash = []float64{overlayDash / scale, overlayDash / scale}
		r.Cap = graphics.LineCapButt
		r.Stroke(curvePath(s.FeatherPointsAt(t), closed), emit)
	}
	return nil
}

// curvePath converts evaluated control points to a path of cubic Bézier
// segments.
func curvePath(pts []PointState, closed bool) *path.Data {
	p := &path.Data{}
	n := len(pts)
	if n == 0 {
		return p
	}
	p = p.MoveTo(pts[0].Pos)
	for seg := range segmentCount(n, closed) {
		a, b := pts[seg], pts[(seg+1)%n]
		p = p.CubeTo(a.Right, b.Left, b.Pos)
	}
	if closed {
		p = p.Close()
	}
	return p
}
