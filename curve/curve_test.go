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

package curve

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestEmptyCurve(t *testing.T) {
	c := New(3)
	if _, err := c.ValueAt(1); !errors.Is(err, ErrNoKeyframes) {
		t.Errorf("ValueAt on empty curve: got err=%v, want ErrNoKeyframes", err)
	}
	if v := c.Eval(1); v != 3 {
		t.Errorf("Eval on empty curve: got %g, want 3", v)
	}
}

func TestInterpolation(t *testing.T) {
	c := New(0)
	c.AddKeyframe(0, 0, Linear)
	c.AddKeyframe(10, 100, Constant)
	c.AddKeyframe(20, 0, Linear)

	cases := []struct {
		t, want float64
	}{
		{-5, 0},  // clamped to first key
		{0, 0},   // on key
		{5, 50},  // linear
		{10, 100},
		{15, 100}, // constant segment
		{20, 0},
		{30, 0}, // clamped to last key
	}
	for _, tc := range cases {
		got, err := c.ValueAt(tc.t)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ValueAt(%g) = %g, want %g", tc.t, got, tc.want)
		}
	}
}

func TestSmoothPassesThroughKeys(t *testing.T) {
	c := New(0)
	c.AddKeyframe(0, 1, Smooth)
	c.AddKeyframe(1, 5, Smooth)
	c.AddKeyframe(3, -2, Smooth)
	for _, k := range c.Keyframes() {
		if got := c.Eval(k.Time); got != k.Value {
			t.Errorf("Eval(%g) = %g, want %g", k.Time, got, k.Value)
		}
	}
	// the segment must stay continuous around a key
	a := c.Eval(1 - 1e-9)
	b := c.Eval(1 + 1e-9)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("discontinuity at key: %g vs %g", a, b)
	}
}

func TestAddReplaceRemove(t *testing.T) {
	c := New(0)
	if !c.AddKeyframe(1, 1, Linear) {
		t.Error("first AddKeyframe should create a key")
	}
	if c.AddKeyframe(1, 2, Linear) {
		t.Error("second AddKeyframe at same time should replace")
	}
	if n := c.KeyframeCount(); n != 1 {
		t.Fatalf("got %d keys, want 1", n)
	}
	if k, _ := c.KeyframeAt(0); k.Value != 2 {
		t.Errorf("replaced value: got %g, want 2", k.Value)
	}
	if err := c.RemoveKeyframeAtTime(5); !errors.Is(err, ErrNoKeyframe) {
		t.Errorf("removing missing key: got %v", err)
	}
	if err := c.RemoveKeyframeAtTime(1); err != nil {
		t.Errorf("removing key: %v", err)
	}
	if c.KeyframeCount() != 0 {
		t.Error("curve should be empty")
	}
}

func TestPreviousNext(t *testing.T) {
	c := New(0)
	for _, tm := range []float64{2, 4, 8} {
		c.AddKeyframe(tm, tm, Linear)
	}
	cases := []struct {
		t            float64
		prev, next   float64
		okPrv, okNxt bool
	}{
		{1, 0, 2, false, true},
		{2, 0, 4, false, true},
		{3, 2, 4, true, true},
		{4, 2, 8, true, true},
		{8, 4, 0, true, false},
		{9, 8, 0, true, false},
	}
	for _, tc := range cases {
		p, ok := c.Previous(tc.t)
		if ok != tc.okPrv || (ok && p != tc.prev) {
			t.Errorf("Previous(%g) = %g,%t", tc.t, p, ok)
		}
		n, ok := c.Next(tc.t)
		if ok != tc.okNxt || (ok && n != tc.next) {
			t.Errorf("Next(%g) = %g,%t", tc.t, n, ok)
		}
	}
}

func TestSetKeyframesSortsAndDedups(t *testing.T) {
	c := New(0)
	c.SetKeyframes([]Keyframe{
		{Time: 3, Value: 3},
		{Time: 1, Value: 1},
		{Time: 3, Value: 4},
	})
	times := c.Times()
	if len(times) != 2 || times[0] != 1 || times[1] != 3 {
		t.Fatalf("unexpected times %v", times)
	}
	if v := c.Eval(3); v != 4 {
		t.Errorf("duplicate time: got %g, want last value 4", v)
	}
}

func TestConcurrentReads(t *testing.T) {
	c := New(0)
	for i := range 100 {
		c.AddKeyframe(float64(i), float64(i), Linear)
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				c.Eval(float64(i) / 10)
			}
		}()
	}
	for i := 100; i < 200; i++ {
		c.AddKeyframe(float64(i), 0, Linear)
	}
	wg.Wait()
}

func TestParseInterpolation(t *testing.T) {
	for _, in := range []Interpolation{Constant, Linear, Smooth} {
		got, err := ParseInterpolation(in.String())
		if err != nil || got != in {
			t.Errorf("ParseInterpolation(%q) = %v, %v", in.String(), got, err)
		}
	}
	if _, err := ParseInterpolation("bogus"); err == nil {
		t.Error("expected error for unknown interpolation")
	}
}
