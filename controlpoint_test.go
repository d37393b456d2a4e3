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
	"errors"
	"testing"

	"seehuhn.de/go/roto/curve"
)

// linearTrack moves by (1, 2) per frame.
type linearTrack struct{}

func (linearTrack) ValueAtTime(t float64, dim int) float64 {
	return t * float64(dim+1)
}

func TestControlPointStatic(t *testing.T) {
	c := newControlPoint(nil, PointState{Pos: v(1, 2), Left: v(0, 2), Right: v(2, 2)})
	p, onKey := c.PositionAt(5)
	if p != v(1, 2) || onKey {
		t.Errorf("position %v, on key %t", p, onKey)
	}

	c.SetStaticPosition(v(3, 3))
	c.SetStaticLeftTangent(v(2, 3))
	c.SetStaticRightTangent(v(4, 3))
	want := PointState{Pos: v(3, 3), Left: v(2, 3), Right: v(4, 3)}
	if got := c.StateAt(0); got != want {
		t.Errorf("state %+v, want %+v", got, want)
	}
	if c.KeyframesCount() != 0 {
		t.Error("static edits created keyframes")
	}
}

func TestControlPointKeys(t *testing.T) {
	c := newControlPoint(nil, PointState{})
	if !c.SetPositionAt(1, v(0, 0)) {
		t.Error("first keyframe not reported as created")
	}
	c.SetPositionAt(3, v(4, 8))
	if c.SetLeftTangentAt(3, v(3, 8)) {
		t.Error("existing keyframe reported as created")
	}
	c.SetRightTangentAt(3, v(5, 8))

	p, onKey := c.PositionAt(2)
	if p != v(2, 4) || onKey {
		t.Errorf("t=2: %v, on key %t", p, onKey)
	}
	if l, onKey := c.LeftTangentAt(3); l != v(3, 8) || !onKey {
		t.Errorf("left tangent %v, on key %t", l, onKey)
	}
	if r, _ := c.RightTangentAt(3); r != v(5, 8) {
		t.Errorf("right tangent %v", r)
	}

	times := c.KeyframeTimes()
	if len(times) != 2 || times[0] != 1 || times[1] != 3 {
		t.Errorf("keyframe times %v", times)
	}

	if err := c.RemoveKeyframe(2); !errors.Is(err, curve.ErrNoKeyframe) {
		t.Errorf("got %v, want ErrNoKeyframe", err)
	}
	if err := c.RemoveKeyframe(1); err != nil {
		t.Fatal(err)
	}
	// the last keyframe becomes the static position
	if err := c.RemoveKeyframe(3); err != nil {
		t.Fatal(err)
	}
	if p, _ := c.PositionAt(-10); p != v(4, 8) {
		t.Errorf("static position after removal %v", p)
	}
}

func TestControlPointRemoveAnimation(t *testing.T) {
	c := newControlPoint(nil, PointState{})
	c.SetPositionAt(0, v(0, 0))
	c.SetPositionAt(10, v(10, 0))
	c.RemoveAnimation(5)
	if c.KeyframesCount() != 0 {
		t.Error("keyframes left")
	}
	if p, _ := c.PositionAt(0); p != v(5, 0) {
		t.Errorf("baked position %v", p)
	}
}

func TestControlPointMaster(t *testing.T) {
	st := PointState{Pos: v(1, 1), Left: v(0, 1), Right: v(2, 1)}
	c := newControlPoint(nil, st)
	c.SlaveTo(linearTrack{}, 1)

	if m, off := c.MasterTrack(); m == nil || off != 1 {
		t.Errorf("master %v, offset %g", m, off)
	}
	want := PointState{Pos: v(3, 5), Left: v(2, 5), Right: v(4, 5)}
	if got := c.StateAt(3); got != want {
		t.Errorf("slaved state %+v, want %+v", got, want)
	}
	if got := c.StateAt(1); got != st {
		t.Errorf("at the offset time: %+v", got)
	}

	c.Unslave()
	if got := c.StateAt(3); got != st {
		t.Errorf("after Unslave: %+v", got)
	}
}

func TestIsNearbyTangent(t *testing.T) {
	c := newControlPoint(nil, PointState{Pos: v(10, 10), Left: v(0, 10), Right: v(10, 10)})
	cases := []struct {
		x, y float64
		want TangentHit
	}{
		{1, 9, TangentLeft},
		{0, 13, TangentNone},
		{10, 10, TangentNone}, // the right handle sits on the point
	}
	for _, tc := range cases {
		if got := c.IsNearbyTangent(0, v(tc.x, tc.y), 2); got != tc.want {
			t.Errorf("(%g,%g): got %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestCuspState(t *testing.T) {
	s := PointState{Pos: v(0, 0), Left: v(-10, 0), Right: v(0, 100)}
	got := cuspState(s, 50)
	if got.Left != v(0, 0) {
		t.Errorf("short handle %v, want the point", got.Left)
	}
	if got.Right != v(0, 75) {
		t.Errorf("long handle %v, want (0,75)", got.Right)
	}
}

func TestSmoothStateDirection(t *testing.T) {
	s := PointState{Pos: v(5, 0), Left: v(5, 0), Right: v(5, 0)}
	prev := PointState{Pos: v(0, 0), Left: v(0, 0), Right: v(0, 0)}
	next := PointState{Pos: v(10, 0), Left: v(10, 0), Right: v(10, 0)}
	got := smoothState(s, &prev, &next, 2)
	if !nearVec(got.Left, v(3, 0)) || !nearVec(got.Right, v(7, 0)) {
		t.Errorf("smoothed %+v", got)
	}

	// no neighbours, no direction
	if got := smoothState(s, nil, nil, 2); got != s {
		t.Errorf("isolated point changed: %+v", got)
	}
}
