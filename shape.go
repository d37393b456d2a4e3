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
	"fmt"
	"math"
	"slices"
	"sync"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roto/bezier"
	"seehuhn.de/go/roto/curve"
	"seehuhn.de/go/roto/raster"
)

// Param selects one of the animated shape parameters.
type Param uint8

// These are the animated shape parameters.
const (
	ParamActivated Param = iota // active where >= 0.5
	ParamOpacity
	ParamFeatherDistance
	ParamFeatherFallOff
	ParamColorR
	ParamColorG
	ParamColorB
	ParamOperator // a raster.Operator value

	numParams
)

var paramNames = [numParams]string{
	"activated", "opacity", "feather_distance", "feather_falloff",
	"color_r", "color_g", "color_b", "operator",
}

var paramDefaults = [numParams]float64{1, 1, 0, 1, 1, 1, 1, float64(raster.OpOver)}

func (p Param) String() string {
	if p < numParams {
		return paramNames[p]
	}
	return fmt.Sprintf("Param(%d)", uint8(p))
}

// ParseParam is the inverse of Param.String.
func ParseParam(s string) (Param, error) {
	for i, name := range paramNames {
		if name == s {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape parameter %q", s)
}

// interp returns the interpolation used for keyframes of p.
func (p Param) interp() curve.Interpolation {
	if p == ParamActivated || p == ParamOperator {
		return curve.Constant
	}
	return curve.Linear
}

// Shape is an animated cubic Bézier curve with a feather curve.
//
// A shape starts out open: points can be appended with AddControlPoint.
// Once SetCurveFinished(true) has been called, the curve is closed and
// only accepts point insertions on existing segments.
type Shape struct {
	itemBase

	mu       sync.RWMutex
	points   []*ControlPoint
	feathers []*ControlPoint // same length as points
	finished bool

	params  [numParams]*curve.Curve
	overlay guarded[[4]float64]
}

func newShape(name string) *Shape {
	s := &Shape{}
	s.init(name)
	for i := range s.params {
		s.params[i] = curve.New(paramDefaults[i])
	}
	s.overlay.Store([4]float64{0.85, 0.67, 0.66, 1})
	return s
}

// Kind returns KindShape.
func (s *Shape) Kind() ItemKind { return KindShape }

// SetGloballyActivated changes the activation flag of the shape.
func (s *Shape) SetGloballyActivated(active, _ bool) {
	s.activated.Store(active)
	s.touch()
}

// SetLocked changes the lock flag of the shape.
func (s *Shape) SetLocked(locked, _ bool) {
	s.locked.Store(locked)
	s.touch()
}

func (s *Shape) changed() { s.touch() }

// flags returns the editing modes of the owning context.
func (s *Shape) flags() (autoKey, featherLink, ripple bool) {
	ctx := s.Context()
	if ctx == nil {
		return true, true, false
	}
	return ctx.AutoKeying(), ctx.FeatherLink(), ctx.RippleEdit()
}

// snapshot returns the current point lists.
func (s *Shape) snapshot() (points, feathers []*ControlPoint, closed bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.points), slices.Clone(s.feathers), s.finished
}

// ControlPoints returns the interior control points.
func (s *Shape) ControlPoints() []*ControlPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.points)
}

// FeatherPoints returns the feather control points. Feather point i is
// paired with interior point i.
func (s *Shape) FeatherPoints() []*ControlPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.feathers)
}

// Len returns the number of control points.
func (s *Shape) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// IsFinished reports whether the curve has been closed.
func (s *Shape) IsFinished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finished
}

// SetCurveFinished closes the curve. A finished curve cannot be opened
// again; SetCurveFinished(false) has no effect on it.
func (s *Shape) SetCurveFinished(finished bool) {
	s.mu.Lock()
	if !finished || s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.mu.Unlock()
	s.changed()
}

// segmentCount returns the number of Bézier segments of a curve with n
// points.
func segmentCount(n int, closed bool) int {
	switch {
	case n < 2:
		return 0
	case closed:
		return n
	default:
		return n - 1
	}
}

func (s *Shape) keyframeTimesLocked() []float64 {
	var res []float64
	for _, list := range [][]*ControlPoint{s.points, s.feathers} {
		for _, c := range list {
			res = append(res, c.KeyframeTimes()...)
		}
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// keyCurves returns one curve per point, which carries the keyframe
// times of that point, followed by the parameter curves.
func (s *Shape) keyCurves() []*curve.Curve {
	s.mu.RLock()
	res := make([]*curve.Curve, 0, 2*len(s.points)+int(numParams))
	for _, list := range [][]*ControlPoint{s.points, s.feathers} {
		for _, c := range list {
			res = append(res, c.ch[chX])
		}
	}
	s.mu.RUnlock()
	for p := range numParams {
		res = append(res, s.ParamCurve(p))
	}
	return res
}

// KeyframeTimes returns the union of the keyframe times of all interior
// and feather points, in increasing order.
func (s *Shape) KeyframeTimes() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyframeTimesLocked()
}

// AddControlPoint appends a point at p to an open curve. The feather
// point starts at the same position.
func (s *Shape) AddControlPoint(p vec.Vec2, t float64) (*ControlPoint, error) {
	autoKey, _, _ := s.flags()
	st := PointState{Pos: p, Left: p, Right: p}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return nil, ErrShapeFinished
	}
	cp := newControlPoint(s, st)
	fp := newControlPoint(s, st)
	// keep the keyframe times of all points aligned
	times := s.keyframeTimesLocked()
	if autoKey && len(s.points) == 0 {
		times = append(times, t)
	}
	for _, k := range times {
		cp.setKey(k, st)
		fp.setKey(k, st)
	}
	s.points = append(s.points, cp)
	s.feathers = append(s.feathers, fp)
	s.mu.Unlock()

	s.changed()
	return cp, nil
}

// AddControlPointAfterIndex splits the segment starting at point i at
// parameter u and inserts the new point after i. Index -1 splits the
// closing segment and inserts the new point at the front.
// The split is done separately at every keyframe time.
func (s *Shape) AddControlPointAfterIndex(i int, u float64) (*ControlPoint, error) {
	s.mu.Lock()
	n := len(s.points)
	last := n - 2
	if s.finished {
		last = n - 1
	}
	if n < 2 || i < -1 || i > last || (i == -1 && !s.finished) {
		s.mu.Unlock()
		return nil, fmt.Errorf("insert after %d of %d: %w", i, n, ErrInvalidIndex)
	}

	prev, next, at := i, (i+1)%n, i+1
	if i == -1 {
		prev, next, at = n-1, 0, 0
	}
	times := s.keyframeTimesLocked()
	cp := s.subdivide(s.points, prev, next, u, times)
	fp := s.subdivide(s.feathers, prev, next, u, times)
	s.points = slices.Insert(s.points, at, cp)
	s.feathers = slices.Insert(s.feathers, at, fp)
	s.mu.Unlock()

	s.changed()
	return cp, nil
}

// subdivide splits the segment between list[prev] and list[next] and
// returns the new middle point. The handles of both neighbours are
// updated.
func (s *Shape) subdivide(list []*ControlPoint, prev, next int, u float64, times []float64) *ControlPoint {
	a, b := list[prev], list[next]
	split := func(sa, sb PointState) (PointState, PointState, PointState) {
		l, r := bezier.Split(sa.Pos, sa.Right, sb.Left, sb.Pos, u)
		sa.Right = l[1]
		sb.Left = r[2]
		return sa, PointState{Pos: l[3], Left: l[2], Right: r[1]}, sb
	}

	if len(times) == 0 {
		sa, m, sb := split(a.raw(0), b.raw(0))
		a.setStatic(sa)
		b.setStatic(sb)
		return newControlPoint(s, m)
	}

	var c *ControlPoint
	for _, k := range times {
		sa, m, sb := split(a.raw(k), b.raw(k))
		if c == nil {
			c = newControlPoint(s, m)
		}
		a.setKey(k, sa)
		b.setKey(k, sb)
		c.setKey(k, m)
	}
	return c
}

// RemoveControlPointByIndex removes interior point i and its feather
// point. Master track links of both points are released.
func (s *Shape) RemoveControlPointByIndex(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.points) {
		s.mu.Unlock()
		return fmt.Errorf("remove point %d: %w", i, ErrInvalidIndex)
	}
	s.points[i].release()
	s.feathers[i].release()
	s.points = slices.Delete(s.points, i, i+1)
	s.feathers = slices.Delete(s.feathers, i, i+1)
	s.mu.Unlock()

	s.changed()
	return nil
}

// release detaches all points, when the shape is removed from its
// context.
func (s *Shape) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.points {
		s.points[i].release()
		s.feathers[i].release()
	}
}

// neighbors returns the states at time t of the points before and after
// c on its curve. Missing neighbours of open curves are nil.
func (s *Shape) neighbors(c *ControlPoint, t float64) (prev, next *PointState) {
	s.mu.RLock()
	list := s.points
	i := slices.Index(list, c)
	if i < 0 {
		list = s.feathers
		i = slices.Index(list, c)
	}
	closed := s.finished
	list = slices.Clone(list)
	s.mu.RUnlock()

	n := len(list)
	if i < 0 || n < 2 {
		return nil, nil
	}
	if i > 0 || closed {
		st := list[(i+n-1)%n].raw(t)
		prev = &st
	}
	if i < n-1 || closed {
		st := list[(i+1)%n].raw(t)
		next = &st
	}
	return prev, next
}

// CurveHit describes a point found on a curve by IsPointOnCurve.
type CurveHit struct {
	Segment int     // index of the segment's first control point
	T       float64 // curve parameter within the segment
	Feather bool    // the hit is on the feather curve
}

// IsPointOnCurve looks for a point of the curve, or its feather, within
// distance of p at time t. Segments are searched in order, interior curve
// first; the first acceptable sample is returned, which is not
// necessarily the closest one.
func (s *Shape) IsPointOnCurve(p vec.Vec2, distance, t float64) (CurveHit, bool) {
	points, feathers, closed := s.snapshot()
	cps := statesAt(points, t)
	fps := statesAt(feathers, t)
	n := len(cps)
	for seg := range segmentCount(n, closed) {
		a, b := seg, (seg+1)%n
		if u, ok := bezier.HitTest(cps[a].Pos, cps[a].Right, cps[b].Left, cps[b].Pos, p, distance); ok {
			return CurveHit{Segment: seg, T: u}, true
		}
		if u, ok := bezier.HitTest(fps[a].Pos, fps[a].Right, fps[b].Left, fps[b].Pos, p, distance); ok {
			return CurveHit{Segment: seg, T: u, Feather: true}, true
		}
	}
	return CurveHit{}, false
}

func statesAt(list []*ControlPoint, t float64) []PointState {
	res := make([]PointState, len(list))
	for i, c := range list {
		res[i] = c.StateAt(t)
	}
	return res
}

func (s *Shape) pointPair(i int) (cp, fp *ControlPoint, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.points) {
		return nil, nil, fmt.Errorf("point %d of %d: %w", i, len(s.points), ErrInvalidIndex)
	}
	return s.points[i], s.feathers[i], nil
}

// editLinked applies f to interior point i. With feather-link enabled, or
// if the feather point sits on the interior point, the feather point is
// changed as well.
func (s *Shape) editLinked(i int, t float64, f func(k float64, st PointState) PointState) error {
	cp, fp, err := s.pointPair(i)
	if err != nil {
		return err
	}
	autoKey, link, ripple := s.flags()
	linked := link || fp.raw(t).Pos == cp.raw(t).Pos
	cp.edit(t, autoKey, ripple, f)
	if linked {
		fp.edit(t, autoKey, ripple, f)
	}
	return nil
}

// MovePointByIndex moves point i, together with its handles, by d.
func (s *Shape) MovePointByIndex(i int, t float64, d vec.Vec2) error {
	return s.editLinked(i, t, func(_ float64, st PointState) PointState {
		return st.translate(d)
	})
}

// MoveFeatherByIndex moves feather point i, together with its handles,
// by d.
func (s *Shape) MoveFeatherByIndex(i int, t float64, d vec.Vec2) error {
	_, fp, err := s.pointPair(i)
	if err != nil {
		return err
	}
	autoKey, _, ripple := s.flags()
	fp.edit(t, autoKey, ripple, func(_ float64, st PointState) PointState {
		return st.translate(d)
	})
	return nil
}

// MoveLeftBezierPoint moves the left handle of point i by d.
func (s *Shape) MoveLeftBezierPoint(i int, t float64, d vec.Vec2) error {
	return s.editLinked(i, t, func(_ float64, st PointState) PointState {
		st.Left = st.Left.Add(d)
		return st
	})
}

// MoveRightBezierPoint moves the right handle of point i by d.
func (s *Shape) MoveRightBezierPoint(i int, t float64, d vec.Vec2) error {
	return s.editLinked(i, t, func(_ float64, st PointState) PointState {
		st.Right = st.Right.Add(d)
		return st
	})
}

// MovePointLeftAndRightIndex moves the left handle of point i by dLeft and
// the right handle by dRight.
func (s *Shape) MovePointLeftAndRightIndex(i int, t float64, dLeft, dRight vec.Vec2) error {
	return s.editLinked(i, t, func(_ float64, st PointState) PointState {
		st.Left = st.Left.Add(dLeft)
		st.Right = st.Right.Add(dRight)
		return st
	})
}

// SetPointAtIndex sets the position and both handles of interior point i,
// or of feather point i if feather is set. With ripple editing, the
// offset from the old state at t is applied to all other keyframes too.
// Setting an interior point carries its feather point along, following
// the same link rule as the other point edits.
func (s *Shape) SetPointAtIndex(feather bool, i int, t float64, st PointState) error {
	cp, fp, err := s.pointPair(i)
	if err != nil {
		return err
	}
	autoKey, link, ripple := s.flags()
	if feather {
		cp, fp = fp, nil
	}
	old := cp.raw(t)
	d := st.sub(old)
	linked := fp != nil && (link || fp.raw(t).Pos == old.Pos)

	cp.edit(t, autoKey, ripple, func(k float64, cur PointState) PointState {
		if k == t {
			return st
		}
		return cur.add(d)
	})
	if linked {
		fp.edit(t, autoKey, ripple, func(_ float64, cur PointState) PointState {
			return cur.add(d)
		})
	}
	return nil
}

// SmoothPointAtIndex smooths interior point i and its feather point.
// The return value reports whether a keyframe was created.
func (s *Shape) SmoothPointAtIndex(i int, t float64, pixelScale vec.Vec2) (bool, error) {
	cp, fp, err := s.pointPair(i)
	if err != nil {
		return false, err
	}
	autoKey, _, ripple := s.flags()
	a := cp.Smooth(t, autoKey, ripple, pixelScale)
	b := fp.Smooth(t, autoKey, ripple, pixelScale)
	return a || b, nil
}

// CuspPointAtIndex makes interior point i and its feather point cusps.
// The return value reports whether a keyframe was created.
func (s *Shape) CuspPointAtIndex(i int, t float64, pixelScale vec.Vec2) (bool, error) {
	cp, fp, err := s.pointPair(i)
	if err != nil {
		return false, err
	}
	autoKey, _, ripple := s.flags()
	a := cp.Cusp(t, autoKey, ripple, pixelScale)
	b := fp.Cusp(t, autoKey, ripple, pixelScale)
	return a || b, nil
}

func (s *Shape) allPoints() []*ControlPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Concat(s.points, s.feathers)
}

// SetKeyframe stores the current state of every point as a keyframe at
// time t. Points which already have a keyframe at t are left alone.
func (s *Shape) SetKeyframe(t float64) {
	changed := false
	for _, c := range s.allPoints() {
		if !c.HasKeyframeAt(t) {
			c.setKey(t, c.raw(t))
			changed = true
		}
	}
	if changed {
		s.changed()
	}
}

// RemoveKeyframe deletes the keyframes at time t.
func (s *Shape) RemoveKeyframe(t float64) error {
	found := false
	for _, c := range s.allPoints() {
		if c.HasKeyframeAt(t) {
			if err := c.RemoveKeyframe(t); err != nil {
				return err
			}
			found = true
		}
	}
	if !found {
		return fmt.Errorf("shape %q, t=%g: %w", s.Name(), t, curve.ErrNoKeyframe)
	}
	return nil
}

// RemoveAnimation removes all point keyframes. The state at time t
// becomes the static shape.
func (s *Shape) RemoveAnimation(t float64) {
	for _, c := range s.allPoints() {
		c.RemoveAnimation(t)
	}
	s.changed()
}

// MoveKeyframe moves the keyframes at oldT to newT.
func (s *Shape) MoveKeyframe(oldT, newT float64) error {
	if oldT == newT {
		return nil
	}
	found := false
	for _, c := range s.allPoints() {
		if !c.HasKeyframeAt(oldT) {
			continue
		}
		st := c.raw(oldT)
		if err := c.RemoveKeyframe(oldT); err != nil {
			return err
		}
		c.setKey(newT, st)
		found = true
	}
	if !found {
		return fmt.Errorf("shape %q, t=%g: %w", s.Name(), oldT, curve.ErrNoKeyframe)
	}
	s.changed()
	return nil
}

// levelScale returns the coordinate scale factor of a detail level.
func levelScale(level uint) float64 {
	return math.Ldexp(1, -int(level))
}

// flatten samples the curve through the given points. Every segment
// contributes n samples; open curves also get their final point.
// Segments for which skip returns true are left out.
func flatten(states []PointState, closed bool, n int, scale float64, skip func(seg int) bool) []vec.Vec2 {
	m := len(states)
	if m == 0 {
		return nil
	}
	if m == 1 {
		return []vec.Vec2{states[0].Pos.Mul(scale)}
	}
	var res []vec.Vec2
	for seg := range segmentCount(m, closed) {
		if skip != nil && skip(seg) {
			continue
		}
		a, b := states[seg], states[(seg+1)%m]
		res = bezier.AppendSamples(res, a.Pos, a.Right, b.Left, b.Pos, n, scale)
	}
	if !closed {
		res = append(res, states[m-1].Pos.Mul(scale))
	}
	return res
}

// EvaluateDeCasteljau flattens the curve at time t into a polyline with
// pointsPerSegment samples per segment. Coordinates are divided by
// 2^level. The bounding box of the polyline is returned as well.
func (s *Shape) EvaluateDeCasteljau(t float64, level uint, pointsPerSegment int) ([]vec.Vec2, rect.Rect) {
	points, _, closed := s.snapshot()
	poly := flatten(statesAt(points, t), closed, pointsPerSegment, levelScale(level), nil)
	bbox, _ := bezier.PolygonBounds(poly)
	return poly, bbox
}

// EvaluateFeatherDeCasteljau flattens the feather curve like
// EvaluateDeCasteljau. Unless evaluateIfEqual is set, segments which
// coincide with the interior curve, to pixel precision, are left out.
func (s *Shape) EvaluateFeatherDeCasteljau(t float64, level uint, pointsPerSegment int, evaluateIfEqual bool) ([]vec.Vec2, rect.Rect) {
	points, feathers, closed := s.snapshot()
	scale := levelScale(level)
	fps := statesAt(feathers, t)

	var skip func(int) bool
	if !evaluateIfEqual {
		cps := statesAt(points, t)
		n := len(cps)
		pix := func(p vec.Vec2) vec.Vec2 {
			return vec.Vec2{X: math.Round(p.X * scale), Y: math.Round(p.Y * scale)}
		}
		same := func(a, b vec.Vec2) bool { return pix(a) == pix(b) }
		skip = func(seg int) bool {
			a, b := seg, (seg+1)%n
			return same(cps[a].Pos, fps[a].Pos) && same(cps[a].Right, fps[a].Right) &&
				same(cps[b].Left, fps[b].Left) && same(cps[b].Pos, fps[b].Pos)
		}
	}

	poly := flatten(fps, closed, pointsPerSegment, scale, skip)
	bbox, _ := bezier.PolygonBounds(poly)
	return poly, bbox
}

// BoundingBox returns a box containing the curve and its feather curve at
// time t, grown by the feather distance in all four directions.
func (s *Shape) BoundingBox(t float64) rect.Rect {
	points, feathers, closed := s.snapshot()
	cps := statesAt(points, t)
	fps := statesAt(feathers, t)

	n := len(cps)
	if n == 0 {
		return rect.Rect{}
	}
	box := rect.Rect{LLx: cps[0].Pos.X, LLy: cps[0].Pos.Y, URx: cps[0].Pos.X, URy: cps[0].Pos.Y}
	for seg := range segmentCount(n, closed) {
		a, b := seg, (seg+1)%n
		box = bezier.Union(box, bezier.Bounds(cps[a].Pos, cps[a].Right, cps[b].Left, cps[b].Pos))
		box = bezier.Union(box, bezier.Bounds(fps[a].Pos, fps[a].Right, fps[b].Left, fps[b].Pos))
	}
	return bezier.Pad(box, max(s.FeatherDistance(t), 0))
}

// featherProbe is the step along a normal used to decide which side of
// a curve is inside.
const featherProbe = 0.5

// ExpandToFeatherDistance moves the feather point fp by featherDistance
// away from the shape and returns the offset applied.
//
// If fp differs from its interior point cp, it is pushed further along
// the direction from cp to fp. Otherwise the offset is perpendicular to
// the feather curve at fp, computed from the derivatives towards the
// neighbouring feather points, and points out of featherPolygon for
// positive distances. featherBBox must contain featherPolygon.
func ExpandToFeatherDistance(cp PointState, fp *PointState, featherDistance float64,
	featherPolygon []vec.Vec2, featherBBox rect.Rect, prevFp, curFp, nextFp PointState) vec.Vec2 {
	if featherDistance == 0 {
		return vec.Vec2{}
	}

	var delta vec.Vec2
	diff := fp.Pos.Sub(cp.Pos)
	if dist := diff.Length(); dist > 0 {
		delta = diff.Mul(featherDistance / dist)
	} else {
		ld := bezier.LeftDerivative(prevFp.Pos, prevFp.Right, curFp.Left, curFp.Pos)
		rd := bezier.RightDerivative(curFp.Pos, curFp.Right, nextFp.Left, nextFp.Pos)
		nrm, ok := bezier.UnitNormal(rd.Sub(ld))
		if !ok {
			nrm, ok = bezier.UnitNormal(nextFp.Pos.Sub(prevFp.Pos))
		}
		if !ok {
			return vec.Vec2{}
		}
		probe := fp.Pos.Add(nrm.Mul(featherProbe))
		if bezier.PointInPolygon(probe, featherPolygon, featherBBox, bezier.EvenOdd) {
			nrm = nrm.Mul(-1)
		}
		delta = nrm.Mul(featherDistance)
	}
	*fp = fp.translate(delta)
	return delta
}

// FeatherPointsAt returns the feather points at time t as displayed to
// the user: every point is pushed out by the feather distance.
func (s *Shape) FeatherPointsAt(t float64) []PointState {
	points, feathers, closed := s.snapshot()
	cps := statesAt(points, t)
	fps := statesAt(feathers, t)
	n := len(fps)
	res := slices.Clone(fps)
	if n == 0 {
		return res
	}

	poly := flatten(fps, closed, DefaultPointsPerSegment, 1, nil)
	bbox, _ := bezier.PolygonBounds(poly)
	fd := s.FeatherDistance(t)
	for i := range n {
		prev, next := i, i
		if i > 0 || closed {
			prev = (i + n - 1) % n
		}
		if i < n-1 || closed {
			next = (i + 1) % n
		}
		ExpandToFeatherDistance(cps[i], &res[i], fd, poly, bbox, fps[prev], fps[i], fps[next])
	}
	return res
}

// ParamCurve gives direct access to the curve behind a shape parameter.
func (s *Shape) ParamCurve(p Param) *curve.Curve {
	return s.params[p]
}

// Param evaluates a shape parameter at time t.
func (s *Shape) Param(p Param, t float64) float64 {
	return s.params[p].Eval(t)
}

// SetParam sets a shape parameter at time t, following the same keying
// rules as point edits. The return value reports whether a keyframe was
// created.
func (s *Shape) SetParam(p Param, t, v float64) bool {
	c := s.params[p]
	autoKey, _, _ := s.flags()
	created := false
	switch {
	case autoKey || c.HasKeyframeAt(t):
		created = c.AddKeyframe(t, v, p.interp())
	case c.KeyframeCount() == 0:
		c.SetDefault(v)
	default:
		return false
	}
	s.changed()
	return created
}

// IsActivated reports whether the shape's own activation parameter is
// on at time t. Layer activation is not taken into account.
func (s *Shape) IsActivated(t float64) bool {
	return s.Param(ParamActivated, t) >= 0.5
}

// Opacity returns the opacity at time t, clamped to [0, 1].
func (s *Shape) Opacity(t float64) float64 {
	return max(0, min(1, s.Param(ParamOpacity, t)))
}

// FeatherDistance returns the feather distance at time t.
func (s *Shape) FeatherDistance(t float64) float64 {
	return s.Param(ParamFeatherDistance, t)
}

// FeatherFallOff returns the feather fall-off at time t.
func (s *Shape) FeatherFallOff(t float64) float64 {
	return s.Param(ParamFeatherFallOff, t)
}

// Color returns the RGB color at time t.
func (s *Shape) Color(t float64) [3]float64 {
	return [3]float64{
		s.Param(ParamColorR, t),
		s.Param(ParamColorG, t),
		s.Param(ParamColorB, t),
	}
}

// Operator returns the compositing operator at time t. Invalid values
// give raster.OpOver.
func (s *Shape) Operator(t float64) raster.Operator {
	v := math.Round(s.Param(ParamOperator, t))
	if v < 0 || v > 255 || !raster.Operator(v).Valid() {
		return raster.OpOver
	}
	return raster.Operator(v)
}

// OverlayColor returns the RGBA color used to draw the outline.
func (s *Shape) OverlayColor() [4]float64 {
	return s.overlay.Load()
}

// SetOverlayColor sets the RGBA color used to draw the outline.
func (s *Shape) SetOverlayColor(c [4]float64) {
	s.overlay.Store(c)
	s.changed()
}
