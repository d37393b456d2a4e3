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
	"sync"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roto/bezier"
	"seehuhn.de/go/roto/curve"
)

// Track is an externally animated 2-D value. Slaved control points
// follow the motion of their master track.
type Track interface {
	ValueAtTime(t float64, dim int) float64
}

// PointState is a control point evaluated at one time: the anchor
// position and the absolute positions of its two tangent handles.
type PointState struct {
	Pos, Left, Right vec.Vec2
}

func (s PointState) translate(d vec.Vec2) PointState {
	return PointState{Pos: s.Pos.Add(d), Left: s.Left.Add(d), Right: s.Right.Add(d)}
}

func (s PointState) add(o PointState) PointState {
	return PointState{Pos: s.Pos.Add(o.Pos), Left: s.Left.Add(o.Left), Right: s.Right.Add(o.Right)}
}

func (s PointState) sub(o PointState) PointState {
	return PointState{Pos: s.Pos.Sub(o.Pos), Left: s.Left.Sub(o.Left), Right: s.Right.Sub(o.Right)}
}

func (s PointState) scale(f float64) PointState {
	return PointState{Pos: s.Pos.Mul(f), Left: s.Left.Mul(f), Right: s.Right.Mul(f)}
}

// TangentHit identifies a tangent handle found by IsNearbyTangent.
type TangentHit uint8

// These are the possible results of IsNearbyTangent.
const (
	TangentNone TangentHit = iota
	TangentLeft
	TangentRight
)

const (
	// cuspLimit is the handle length, in device units, below which Cusp
	// collapses a tangent onto its point.
	cuspLimit = 50.0

	// cuspShrink scales longer handles on every Cusp call.
	cuspShrink = 0.75

	// smoothLength is the handle length, in device units, given to
	// tangents created by Smooth.
	smoothLength = 40.0

	// smoothGrowth scales existing handles on every Smooth call.
	smoothGrowth = 1.25
)

// animation channels of a control point
const (
	chX = iota
	chY
	chLeftX
	chLeftY
	chRightX
	chRightY
	numChannels
)

// ControlPoint is an animated Bézier anchor with two tangent handles.
//
// The six coordinates are stored in separate curves, which are always
// keyed together: a control point has a single set of keyframe times.
// The default values of the curves hold the static position, which is
// used while the point has no keyframes.
type ControlPoint struct {
	ch [numChannels]*curve.Curve

	mu         sync.Mutex
	owner      *Shape
	master     Track
	masterTime float64
}

func newControlPoint(owner *Shape, s PointState) *ControlPoint {
	c := &ControlPoint{owner: owner}
	for i := range c.ch {
		c.ch[i] = curve.New(0)
	}
	c.setStatic(s)
	return c
}

func (c *ControlPoint) shape() *Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

func (c *ControlPoint) changed() {
	if s := c.shape(); s != nil {
		s.changed()
	}
}

// value evaluates one channel. Evaluation failures fall back to the
// static value.
func (c *ControlPoint) value(i int, t float64) float64 {
	v, err := c.ch[i].ValueAt(t)
	if err != nil {
		return c.ch[i].Default()
	}
	return v
}

// raw returns the state at time t, without the master track correction.
func (c *ControlPoint) raw(t float64) PointState {
	return PointState{
		Pos:   vec.Vec2{X: c.value(chX, t), Y: c.value(chY, t)},
		Left:  vec.Vec2{X: c.value(chLeftX, t), Y: c.value(chLeftY, t)},
		Right: vec.Vec2{X: c.value(chRightX, t), Y: c.value(chRightY, t)},
	}
}

// masterDelta returns the offset applied by the master track at time t.
func (c *ControlPoint) masterDelta(t float64) vec.Vec2 {
	c.mu.Lock()
	m, off := c.master, c.masterTime
	c.mu.Unlock()
	if m == nil {
		return vec.Vec2{}
	}
	return vec.Vec2{
		X: m.ValueAtTime(t, 0) - m.ValueAtTime(off, 0),
		Y: m.ValueAtTime(t, 1) - m.ValueAtTime(off, 1),
	}
}

// StateAt returns the position and both tangents at time t, including the
// master track correction.
func (c *ControlPoint) StateAt(t float64) PointState {
	return c.raw(t).translate(c.masterDelta(t))
}

// PositionAt returns the position at time t and whether a keyframe exists
// at exactly this time.
func (c *ControlPoint) PositionAt(t float64) (vec.Vec2, bool) {
	return c.StateAt(t).Pos, c.HasKeyframeAt(t)
}

// LeftTangentAt returns the position of the left handle at time t and
// whether a keyframe exists at exactly this time.
func (c *ControlPoint) LeftTangentAt(t float64) (vec.Vec2, bool) {
	return c.StateAt(t).Left, c.HasKeyframeAt(t)
}

// RightTangentAt returns the position of the right handle at time t and
// whether a keyframe exists at exactly this time.
func (c *ControlPoint) RightTangentAt(t float64) (vec.Vec2, bool) {
	return c.StateAt(t).Right, c.HasKeyframeAt(t)
}

func (c *ControlPoint) setKey(t float64, s PointState) bool {
	vals := [numChannels]float64{s.Pos.X, s.Pos.Y, s.Left.X, s.Left.Y, s.Right.X, s.Right.Y}
	created := false
	for i, v := range vals {
		if c.ch[i].AddKeyframe(t, v, curve.Linear) {
			created = true
		}
	}
	return created
}

func (c *ControlPoint) setStatic(s PointState) {
	vals := [numChannels]float64{s.Pos.X, s.Pos.Y, s.Left.X, s.Left.Y, s.Right.X, s.Right.Y}
	for i, v := range vals {
		c.ch[i].SetDefault(v)
	}
}

// write stores s at time t. With autoKey set, or if a keyframe exists at
// t, a linear keyframe is written. A point without any keyframes gets a
// new static value instead. Otherwise nothing is stored.
// The return value reports whether a keyframe was created.
func (c *ControlPoint) write(t float64, s PointState, autoKey bool) bool {
	switch {
	case autoKey || c.HasKeyframeAt(t):
		return c.setKey(t, s)
	case c.KeyframesCount() == 0:
		c.setStatic(s)
	}
	return false
}

// edit applies f at time t and, for ripple edits, at every other
// keyframe time.
func (c *ControlPoint) edit(t float64, autoKey, ripple bool, f func(k float64, s PointState) PointState) bool {
	created := c.write(t, f(t, c.raw(t)), autoKey)
	if ripple {
		for _, k := range c.KeyframeTimes() {
			if k != t {
				c.write(k, f(k, c.raw(k)), true)
			}
		}
	}
	c.changed()
	return created
}

// SetPositionAt sets a linear keyframe at time t which moves the point
// to p. The tangent handles keep their positions.
func (c *ControlPoint) SetPositionAt(t float64, p vec.Vec2) bool {
	s := c.raw(t)
	s.Pos = p
	created := c.setKey(t, s)
	c.changed()
	return created
}

// SetLeftTangentAt sets a linear keyframe at time t which moves the left
// handle to p.
func (c *ControlPoint) SetLeftTangentAt(t float64, p vec.Vec2) bool {
	s := c.raw(t)
	s.Left = p
	created := c.setKey(t, s)
	c.changed()
	return created
}

// SetRightTangentAt sets a linear keyframe at time t which moves the right
// handle to p.
func (c *ControlPoint) SetRightTangentAt(t float64, p vec.Vec2) bool {
	s := c.raw(t)
	s.Right = p
	created := c.setKey(t, s)
	c.changed()
	return created
}

// SetStaticPosition sets the position used while there are no keyframes.
func (c *ControlPoint) SetStaticPosition(p vec.Vec2) {
	c.ch[chX].SetDefault(p.X)
	c.ch[chY].SetDefault(p.Y)
	c.changed()
}

// SetStaticLeftTangent sets the left handle used while there are no
// keyframes.
func (c *ControlPoint) SetStaticLeftTangent(p vec.Vec2) {
	c.ch[chLeftX].SetDefault(p.X)
	c.ch[chLeftY].SetDefault(p.Y)
	c.changed()
}

// SetStaticRightTangent sets the right handle used while there are no
// keyframes.
func (c *ControlPoint) SetStaticRightTangent(p vec.Vec2) {
	c.ch[chRightX].SetDefault(p.X)
	c.ch[chRightY].SetDefault(p.Y)
	c.changed()
}

// Cusp pulls both tangent handles towards the point. Handles shorter
// than the cusp limit collapse onto the point, longer ones shrink by a
// quarter. pixelScale converts device units into curve units.
// The return value reports whether a keyframe was created.
func (c *ControlPoint) Cusp(t float64, autoKeying, rippleEdit bool, pixelScale vec.Vec2) bool {
	limit := cuspLimit * (pixelScale.X + pixelScale.Y) / 2
	return c.edit(t, autoKeying, rippleEdit, func(_ float64, s PointState) PointState {
		return cuspState(s, limit)
	})
}

func cuspState(s PointState, limit float64) PointState {
	shrink := func(h vec.Vec2) vec.Vec2 {
		d := h.Sub(s.Pos)
		if d.Length() <= limit {
			return s.Pos
		}
		return s.Pos.Add(d.Mul(cuspShrink))
	}
	s.Left = shrink(s.Left)
	s.Right = shrink(s.Right)
	return s
}

// Smooth lengthens both tangent handles by a quarter. If both handles
// coincide with the point, new handles are derived from the direction of
// the curve through the neighbouring points.
// The return value reports whether a keyframe was created.
func (c *ControlPoint) Smooth(t float64, autoKeying, rippleEdit bool, pixelScale vec.Vec2) bool {
	length := smoothLength * (pixelScale.X + pixelScale.Y) / 2
	return c.edit(t, autoKeying, rippleEdit, func(k float64, s PointState) PointState {
		var prev, next *PointState
		if sh := c.shape(); sh != nil {
			prev, next = sh.neighbors(c, k)
		}
		return smoothState(s, prev, next, length)
	})
}

func smoothState(s PointState, prev, next *PointState, length float64) PointState {
	if s.Left != s.Pos || s.Right != s.Pos {
		s.Left = s.Pos.Add(s.Left.Sub(s.Pos).Mul(smoothGrowth))
		s.Right = s.Pos.Add(s.Right.Sub(s.Pos).Mul(smoothGrowth))
		return s
	}

	var ld, rd vec.Vec2
	a, b := s.Pos, s.Pos
	if prev != nil {
		ld = bezier.LeftDerivative(prev.Pos, prev.Right, s.Left, s.Pos)
		a = prev.Pos
	}
	if next != nil {
		rd = bezier.RightDerivative(s.Pos, s.Right, next.Left, next.Pos)
		b = next.Pos
	}
	// ld points backwards, so rd-ld is the forward direction
	dir, ok := bezier.Unit(rd.Sub(ld))
	if !ok {
		dir, ok = bezier.Unit(b.Sub(a))
	}
	if !ok {
		return s
	}
	s.Left = s.Pos.Sub(dir.Mul(length))
	s.Right = s.Pos.Add(dir.Mul(length))
	return s
}

// IsNearbyTangent checks whether p lies within acceptance of one of the
// tangent handles at time t. Handles which coincide with the point are
// ignored.
func (c *ControlPoint) IsNearbyTangent(t float64, p vec.Vec2, acceptance float64) TangentHit {
	s := c.StateAt(t)
	near := func(h vec.Vec2) bool {
		return h != s.Pos && math.Abs(h.X-p.X) <= acceptance && math.Abs(h.Y-p.Y) <= acceptance
	}
	switch {
	case near(s.Left):
		return TangentLeft
	case near(s.Right):
		return TangentRight
	}
	return TangentNone
}

// RemoveKeyframe deletes the keyframe at time t. When the last keyframe
// is removed, its value becomes the static position.
func (c *ControlPoint) RemoveKeyframe(t float64) error {
	s := c.raw(t)
	for i := range c.ch {
		if err := c.ch[i].RemoveKeyframeAtTime(t); err != nil {
			return fmt.Errorf("control point: %w", err)
		}
	}
	if c.KeyframesCount() == 0 {
		c.setStatic(s)
	}
	c.changed()
	return nil
}

// RemoveAnimation removes all keyframes. The state at time t becomes the
// static position.
func (c *ControlPoint) RemoveAnimation(t float64) {
	s := c.raw(t)
	for i := range c.ch {
		c.ch[i].Clear()
	}
	c.setStatic(s)
	c.changed()
}

// HasKeyframeAt reports whether a keyframe exists exactly at time t.
func (c *ControlPoint) HasKeyframeAt(t float64) bool {
	return c.ch[chX].HasKeyframeAt(t)
}

// KeyframeTimes returns the keyframe times in increasing order.
func (c *ControlPoint) KeyframeTimes() []float64 {
	return c.ch[chX].Times()
}

// KeyframesCount returns the number of keyframes.
func (c *ControlPoint) KeyframesCount() int {
	return c.ch[chX].KeyframeCount()
}

// SlaveTo links the point to a master track. At time t the point is
// moved by master(t) - master(offsetTime).
func (c *ControlPoint) SlaveTo(master Track, offsetTime float64) {
	c.mu.Lock()
	c.master = master
	c.masterTime = offsetTime
	c.mu.Unlock()
	c.changed()
}

// Unslave releases the link to the master track.
func (c *ControlPoint) Unslave() {
	c.mu.Lock()
	had := c.master != nil
	c.master = nil
	c.mu.Unlock()
	if had {
		c.changed()
	}
}

// MasterTrack returns the master track and its offset time, or nil if the
// point is not slaved.
func (c *ControlPoint) MasterTrack() (Track, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.master, c.masterTime
}

// release is called when the point is removed from its shape.
func (c *ControlPoint) release() {
	c.mu.Lock()
	c.owner = nil
	c.master = nil
	c.mu.Unlock()
}
