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
	"math"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roto/bezier"
)

// Context owns a tree of layers and shapes, the current selection and
// the global editing modes.
type Context struct {
	// mu guards the selection, the name counters and the uniqueness of
	// item names.
	mu        sync.RWMutex
	root      *Layer
	selection []Item
	counters  map[string]int

	autoKeying  atomic.Bool
	featherLink atomic.Bool
	rippleEdit  atomic.Bool

	age atomic.Uint64

	cache      maskCache
	lastRender guarded[RenderStamp]
}

// NewContext returns a context with an empty root layer.
// Auto-keying and feather-link are on, ripple-edit is off.
func NewContext() *Context {
	c := &Context{counters: make(map[string]int)}
	c.autoKeying.Store(true)
	c.featherLink.Store(true)
	c.root = newLayer(c.uniqueName("Layer"))
	setContext(c.root, c)
	return c
}

// touch records a change of the context contents.
func (c *Context) touch() {
	c.age.Add(1)
}

// Age returns a counter which increases whenever the context, or any of
// its items, is changed.
func (c *Context) Age() uint64 {
	return c.age.Load()
}

// AutoKeying reports whether edits create keyframes.
func (c *Context) AutoKeying() bool { return c.autoKeying.Load() }

// SetAutoKeying turns auto-keying on or off.
func (c *Context) SetAutoKeying(on bool) {
	c.autoKeying.Store(on)
	c.touch()
}

// FeatherLink reports whether edits of an interior point also move its
// feather point.
func (c *Context) FeatherLink() bool { return c.featherLink.Load() }

// SetFeatherLink turns feather-link on or off.
func (c *Context) SetFeatherLink(on bool) {
	c.featherLink.Store(on)
	c.touch()
}

// RippleEdit reports whether edits are repeated at all keyframe times.
func (c *Context) RippleEdit() bool { return c.rippleEdit.Load() }

// SetRippleEdit turns ripple-edit on or off.
func (c *Context) SetRippleEdit(on bool) {
	c.rippleEdit.Store(on)
	c.touch()
}

// RootLayer returns the root of the item tree.
func (c *Context) RootLayer() *Layer {
	return c.root
}

// itemByName finds an item by name. The caller must hold c.mu.
func (c *Context) itemByName(name string) Item {
	var res Item
	walk(c.root, func(it Item) bool {
		if it.Name() == name {
			res = it
			return false
		}
		return true
	})
	return res
}

// ItemByName returns the item with the given name, or nil.
func (c *Context) ItemByName(name string) Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemByName(name)
}

// Layers returns all layers in tree order, starting with the root layer.
func (c *Context) Layers() []*Layer {
	var res []*Layer
	walk(c.root, func(it Item) bool {
		if l, ok := it.(*Layer); ok {
			res = append(res, l)
		}
		return true
	})
	return res
}

// uniqueName returns base followed by the next free number for base.
// The caller must hold c.mu, or be the only user of c.
func (c *Context) uniqueName(base string) string {
	if !validName(base) {
		base = "Item"
	}
	for {
		c.counters[base]++
		name := base + strconv.Itoa(c.counters[base])
		if c.root == nil || c.itemByName(name) == nil {
			return name
		}
	}
}

// deepestSelectedLayer returns the selected layer with the highest
// hierarchy level, or the root layer. The caller must hold c.mu.
func (c *Context) deepestSelectedLayer() *Layer {
	res, level := c.root, 0
	for _, it := range c.selection {
		l, ok := it.(*Layer)
		if !ok {
			continue
		}
		if lev := l.HierarchyLevel(); lev > level {
			res, level = l, lev
		}
	}
	return res
}

// AddLayer creates a new layer inside the deepest selected layer, or
// inside the root layer. The selection is replaced by the new layer.
func (c *Context) AddLayer() *Layer {
	c.mu.Lock()
	parent := c.deepestSelectedLayer()
	l := newLayer(c.uniqueName("Layer"))
	c.mu.Unlock()

	// a fresh layer cannot fail these checks
	_ = parent.AddItem(l)

	c.mu.Lock()
	c.selection = []Item{l}
	c.mu.Unlock()
	c.touch()
	return l
}

// MakeShape creates an open shape with a single control point at p.
// The name is formed from baseName and a per-name counter. The shape is
// placed in the deepest selected layer, or in the root layer.
func (c *Context) MakeShape(p vec.Vec2, baseName string, t float64) *Shape {
	s := c.newShape(baseName)
	// a shape without points is never finished
	_, _ = s.AddControlPoint(p, t)
	return s
}

func (c *Context) newShape(baseName string) *Shape {
	if baseName == "" {
		baseName = "Bezier"
	}
	c.mu.Lock()
	parent := c.deepestSelectedLayer()
	s := newShape(c.uniqueName(baseName))
	c.mu.Unlock()

	_ = parent.AddItem(s)
	return s
}

// ellipseKappa places the handles of a four-segment circle.
const ellipseKappa = 0.5522847498

// MakeEllipse creates a closed four-point shape approximating the ellipse
// with the given center and radii.
func (c *Context) MakeEllipse(center vec.Vec2, rx, ry, t float64) *Shape {
	kx, ky := ellipseKappa*rx, ellipseKappa*ry
	pt := func(dx, dy, lx, ly, rx, ry float64) PointState {
		return PointState{
			Pos:   vec.Vec2{X: center.X + dx, Y: center.Y + dy},
			Left:  vec.Vec2{X: center.X + lx, Y: center.Y + ly},
			Right: vec.Vec2{X: center.X + rx, Y: center.Y + ry},
		}
	}
	return c.makeClosed("Ellipse", t, []PointState{
		pt(rx, 0, rx, -ky, rx, ky),
		pt(0, ry, kx, ry, -kx, ry),
		pt(-rx, 0, -rx, ky, -rx, -ky),
		pt(0, -ry, -kx, -ry, kx, -ry),
	})
}

// MakeRectangle creates a closed four-point shape with the corners of r.
func (c *Context) MakeRectangle(r rect.Rect, t float64) *Shape {
	corner := func(x, y float64) PointState {
		p := vec.Vec2{X: x, Y: y}
		return PointState{Pos: p, Left: p, Right: p}
	}
	return c.makeClosed("Rectangle", t, []PointState{
		corner(r.LLx, r.LLy),
		corner(r.URx, r.LLy),
		corner(r.URx, r.URy),
		corner(r.LLx, r.URy),
	})
}

func (c *Context) makeClosed(baseName string, t float64, pts []PointState) *Shape {
	s := c.newShape(baseName)
	for i, st := range pts {
		_, _ = s.AddControlPoint(st.Pos, t)
		_ = s.SetPointAtIndex(false, i, t, st)
		_ = s.SetPointAtIndex(true, i, t, st)
	}
	s.SetCurveFinished(true)
	return s
}

// RemoveItem removes an item, together with all its descendants, from
// the context. Removed items are deselected and their control points
// are released from their master tracks.
func (c *Context) RemoveItem(it Item) error {
	if it == Item(c.root) {
		return ErrRootLayer
	}
	if it.Context() != c {
		return ErrNotInContext
	}
	if p := it.Parent(); p != nil {
		p.detach(it)
	}
	c.forget(it)
	return nil
}

// forget releases a detached subtree from the context: shapes leave their
// master tracks and all items leave the selection.
func (c *Context) forget(it Item) {
	var gone []Item
	walk(it, func(x Item) bool {
		gone = append(gone, x)
		if s, ok := x.(*Shape); ok {
			s.release()
		}
		return true
	})

	c.mu.Lock()
	c.selection = slices.DeleteFunc(c.selection, func(x Item) bool {
		return slices.Contains(gone, x)
	})
	c.mu.Unlock()

	setContext(it, nil)
	c.touch()
}

// nameClash returns the first name in the subtree of it which is already
// used by an item of the context.
func (c *Context) nameClash(it Item) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var name string
	found := false
	walk(it, func(x Item) bool {
		if other := c.itemByName(x.Name()); other != nil && other.base() != x.base() {
			name, found = x.Name(), true
			return false
		}
		return true
	})
	return name, found
}

// Select adds items to the selection. Selecting a layer selects all its
// descendants too.
func (c *Context) Select(items ...Item) error {
	for _, it := range items {
		if it.Context() != c {
			return ErrNotInContext
		}
	}
	c.mu.Lock()
	for _, it := range items {
		walk(it, func(x Item) bool {
			if !slices.Contains(c.selection, x) {
				c.selection = append(c.selection, x)
			}
			return true
		})
	}
	c.mu.Unlock()
	c.touch()
	return nil
}

// Deselect removes items, and all their descendants, from the selection.
func (c *Context) Deselect(items ...Item) {
	var gone []Item
	for _, it := range items {
		walk(it, func(x Item) bool {
			gone = append(gone, x)
			return true
		})
	}
	c.mu.Lock()
	c.selection = slices.DeleteFunc(c.selection, func(x Item) bool {
		return slices.Contains(gone, x)
	})
	c.mu.Unlock()
	c.touch()
}

// ClearSelection empties the selection.
func (c *Context) ClearSelection() {
	c.mu.Lock()
	c.selection = nil
	c.mu.Unlock()
	c.touch()
}

// SelectedItems returns the selection in the order the items were
// selected.
func (c *Context) SelectedItems() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.selection)
}

// SelectedShapes returns the selected shapes.
func (c *Context) SelectedShapes() []*Shape {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var res []*Shape
	for _, it := range c.selection {
		if s, ok := it.(*Shape); ok {
			res = append(res, s)
		}
	}
	return res
}

// SelectionValue is a shape parameter as seen through the selection.
type SelectionValue struct {
	Value float64

	// Indeterminate is set when more than one unlocked shape is selected.
	// Value then belongs to the first of them.
	Indeterminate bool
}

func (c *Context) selectedUnlocked() []*Shape {
	return slices.DeleteFunc(c.SelectedShapes(), func(s *Shape) bool {
		return s.IsLockedRecursive()
	})
}

// SelectionParam returns a shape parameter of the selected, unlocked
// shapes. The second return value is false if no such shape is selected.
func (c *Context) SelectionParam(p Param, t float64) (SelectionValue, bool) {
	shapes := c.selectedUnlocked()
	if len(shapes) == 0 {
		return SelectionValue{}, false
	}
	return SelectionValue{
		Value:         shapes[0].Param(p, t),
		Indeterminate: len(shapes) >= 2,
	}, true
}

// SetSelectionParam sets a shape parameter on every selected, unlocked
// shape and returns the number of shapes changed.
func (c *Context) SetSelectionParam(p Param, t, v float64) int {
	shapes := c.selectedUnlocked()
	for _, s := range shapes {
		s.SetParam(p, t, v)
	}
	return len(shapes)
}

// shapes returns all shapes in tree order.
func (c *Context) shapes() []*Shape {
	var res []*Shape
	walk(c.root, func(it Item) bool {
		if s, ok := it.(*Shape); ok {
			res = append(res, s)
		}
		return true
	})
	return res
}

// BezierHit describes a curve point found by IsNearbyBezier.
type BezierHit struct {
	Shape *Shape
	CurveHit
}

// IsNearbyBezier looks for a shape curve passing within acceptance of p
// at time t. Shapes are searched in tree order and locked shapes are
// skipped. The first match is returned, which is not necessarily the
// closest one.
func (c *Context) IsNearbyBezier(p vec.Vec2, acceptance, t float64) (BezierHit, bool) {
	for _, s := range c.shapes() {
		if s.IsLockedRecursive() {
			continue
		}
		if hit, ok := s.IsPointOnCurve(p, acceptance, t); ok {
			return BezierHit{Shape: s, CurveHit: hit}, true
		}
	}
	return BezierHit{}, false
}

// isRenderable reports whether s contributes to a mask at time t.
func (s *Shape) isRenderable(t float64) bool {
	return s.IsActivated(t) && !s.IsDeactivatedRecursive() && s.IsFinished() && s.Len() >= 2
}

// MaskRegionOfDefinition returns the union of the bounding boxes of all
// shapes visible at time t. The second return value is false if there
// are none.
func (c *Context) MaskRegionOfDefinition(t float64) (rect.Rect, bool) {
	var res rect.Rect
	found := false
	for _, s := range c.shapes() {
		if !s.isRenderable(t) {
			continue
		}
		box := s.BoundingBox(t)
		if found {
			res = bezier.Union(res, box)
		} else {
			res, found = box, true
		}
	}
	return res, found
}

// CurvesByRenderOrder returns the activated shapes in painting order.
// Deactivated layers hide their whole subtree.
func (c *Context) CurvesByRenderOrder() []*Shape {
	var res []*Shape
	var visit func(l *Layer)
	visit = func(l *Layer) {
		if !l.IsGloballyActivated() {
			return
		}
		for _, it := range l.Children() {
			switch it.Kind() {
			case KindLayer:
				visit(it.(*Layer))
			case KindShape:
				if it.IsGloballyActivated() {
					res = append(res, it.(*Shape))
				}
			}
		}
	}
	visit(c.root)
	return res
}

// GoToPreviousKeyframe returns the latest keyframe time of the selected
// shapes which is before t.
func (c *Context) GoToPreviousKeyframe(t float64) (float64, bool) {
	best, found := math.Inf(-1), false
	for _, sh := range c.SelectedShapes() {
		for _, cv := range sh.keyCurves() {
			if k, ok := cv.Previous(t); ok && k > best {
				best, found = k, true
			}
		}
	}
	return best, found
}

// GoToNextKeyframe returns the earliest keyframe time of the selected
// shapes which is after t.
func (c *Context) GoToNextKeyframe(t float64) (float64, bool) {
	best, found := math.Inf(1), false
	for _, sh := range c.SelectedShapes() {
		for _, cv := range sh.keyCurves() {
			if k, ok := cv.Next(t); ok && k < best {
				best, found = k, true
			}
		}
	}
	return best, found
}
