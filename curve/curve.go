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

// Package curve implements a single-channel keyframe store.
//
// A Curve holds keyframes sorted by time. Each keyframe carries the
// interpolation kind used for the segment which starts at that keyframe.
// Curves are safe for concurrent use: queries take a read lock, mutations
// a write lock.
package curve

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNoKeyframes is returned by ValueAt when the curve has no keyframes.
	ErrNoKeyframes = errors.New("curve has no keyframes")

	// ErrNoKeyframe is returned when no keyframe exists at the requested time.
	ErrNoKeyframe = errors.New("no keyframe at this time")
)

// Interpolation selects how values are computed between two keyframes.
type Interpolation uint8

const (
	// Constant holds the value of the left keyframe until the next one.
	Constant Interpolation = iota

	// Linear interpolates linearly between neighbouring keyframes.
	Linear

	// Smooth uses a cubic Hermite spline with Catmull-Rom slopes.
	Smooth
)

func (i Interpolation) String() string {
	switch i {
	case Constant:
		return "constant"
	case Linear:
		return "linear"
	case Smooth:
		return "smooth"
	default:
		return fmt.Sprintf("Interpolation(%d)", uint8(i))
	}
}

// ParseInterpolation is the inverse of Interpolation.String.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "constant":
		return Constant, nil
	case "linear", "":
		return Linear, nil
	case "smooth":
		return Smooth, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Keyframe is a single animation key.
type Keyframe struct {
	Time   float64
	Value  float64
	Interp Interpolation
}

// Curve is an animated scalar value.
type Curve struct {
	mu   sync.RWMutex
	keys []Keyframe // sorted by Time, times are unique
	def  float64    // returned by Eval when keys is empty
}

// New returns an empty curve with the given default value.
func New(def float64) *Curve {
	return &Curve{def: def}
}

// Default returns the value used by Eval when the curve has no keyframes.
func (c *Curve) Default() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.def
}

// SetDefault changes the value used when the curve has no keyframes.
func (c *Curve) SetDefault(v float64) {
	c.mu.Lock()
	c.def = v
	c.mu.Unlock()
}

// ValueAt evaluates the curve at time t.
// If the curve has no keyframes, ErrNoKeyframes is returned.
func (c *Curve) ValueAt(t float64) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.keys) == 0 {
		return 0, ErrNoKeyframes
	}
	return c.eval(t), nil
}

// Eval evaluates the curve at time t, falling back to the default value
// when there are no keyframes.
func (c *Curve) Eval(t float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.keys) == 0 {
		return c.def
	}
	return c.eval(t)
}

// eval must be called with at least a read lock held and len(c.keys) > 0.
func (c *Curve) eval(t float64) float64 {
	keys := c.keys
	n := len(keys)
	if t <= keys[0].Time {
		return keys[0].Value
	}
	if t >= keys[n-1].Time {
		return keys[n-1].Value
	}

	// first key with Time > t; 1 <= i <= n-1
	i, found := slices.BinarySearchFunc(keys, t, func(k Keyframe, t float64) int {
		switch {
		case k.Time < t:
			return -1
		case k.Time > t:
			return 1
		default:
			return 0
		}
	})
	if found {
		return keys[i].Value
	}
	k0, k1 := keys[i-1], keys[i]
	u := (t - k0.Time) / (k1.Time - k0.Time)

	switch k0.Interp {
	case Constant:
		return k0.Value
	case Smooth:
		// Catmull-Rom slopes, one-sided at the ends
		m0 := (k1.Value - k0.Value) / (k1.Time - k0.Time)
		if i >= 2 {
			km := keys[i-2]
			m0 = (k1.Value - km.Value) / (k1.Time - km.Time)
		}
		m1 := (k1.Value - k0.Value) / (k1.Time - k0.Time)
		if i+1 < n {
			kp := keys[i+1]
			m1 = (kp.Value - k0.Value) / (kp.Time - k0.Time)
		}
		dt := k1.Time - k0.Time
		u2 := u * u
		u3 := u2 * u
		h00 := 2*u3 - 3*u2 + 1
		h10 := u3 - 2*u2 + u
		h01 := -2*u3 + 3*u2
		h11 := u3 - u2
		return h00*k0.Value + h10*dt*m0 + h01*k1.Value + h11*dt*m1
	default:
		return k0.Value + u*(k1.Value-k0.Value)
	}
}

// index returns the position of the keyframe at time t, or the insertion
// position and false.
func (c *Curve) index(t float64) (int, bool) {
	return slices.BinarySearchFunc(c.keys, t, func(k Keyframe, t float64) int {
		switch {
		case k.Time < t:
			return -1
		case k.Time > t:
			return 1
		default:
			return 0
		}
	})
}

// AddKeyframe sets a keyframe at time t. If a keyframe already exists at t,
// its value and interpolation are replaced. The return value reports whether
// a new keyframe was created.
func (c *Curve) AddKeyframe(t, v float64, interp Interpolation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := c.index(t)
	if found {
		c.keys[i].Value = v
		c.keys[i].Interp = interp
		return false
	}
	c.keys = slices.Insert(c.keys, i, Keyframe{Time: t, Value: v, Interp: interp})
	return true
}

// RemoveKeyframeAtTime deletes the keyframe at time t.
func (c *Curve) RemoveKeyframeAtTime(t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := c.index(t)
	if !found {
		return fmt.Errorf("t=%g: %w", t, ErrNoKeyframe)
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	return nil
}

// HasKeyframeAt reports whether a keyframe exists exactly at time t.
func (c *Curve) HasKeyframeAt(t float64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := c.index(t)
	return found
}

// KeyframeCount returns the number of keyframes.
func (c *Curve) KeyframeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// KeyframeAt returns the i-th keyframe in time order.
func (c *Curve) KeyframeAt(i int) (Keyframe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.keys) {
		return Keyframe{}, false
	}
	return c.keys[i], true
}

// Keyframes returns a copy of all keyframes in time order.
func (c *Curve) Keyframes() []Keyframe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.keys)
}

// Times returns the keyframe times in increasing order.
func (c *Curve) Times() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]float64, len(c.keys))
	for i, k := range c.keys {
		res[i] = k.Time
	}
	return res
}

// Clear removes all keyframes. The default value is left unchanged.
func (c *Curve) Clear() {
	c.mu.Lock()
	c.keys = c.keys[:0]
	c.mu.Unlock()
}

// SetKeyframes replaces all keyframes. The keyframes are sorted by time;
// for duplicate times the last one wins.
func (c *Curve) SetKeyframes(keys []Keyframe) {
	sorted := slices.Clone(keys)
	slices.SortStableFunc(sorted, func(a, b Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		default:
			return 0
		}
	})
	out := sorted[:0]
	for _, k := range sorted {
		if len(out) > 0 && out[len(out)-1].Time == k.Time {
			out[len(out)-1] = k
			continue
		}
		out = append(out, k)
	}

	c.mu.Lock()
	c.keys = out
	c.mu.Unlock()
}

// Previous returns the largest keyframe time strictly before t.
func (c *Curve) Previous(t float64) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, _ := c.index(t)
	if i == 0 {
		return 0, false
	}
	return c.keys[i-1].Time, true
}

// Next returns the smallest keyframe time strictly after t.
func (c *Curve) Next(t float64) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, found := c.index(t)
	if found {
		i++
	}
	if i >= len(c.keys) {
		return 0, false
	}
	return c.keys[i].Time, true
}
