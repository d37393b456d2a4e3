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
	"slices"
	"sync"
	"sync/atomic"
)

// ItemKind distinguishes the two kinds of items in the tree.
type ItemKind uint8

// These are the item kinds.
const (
	KindLayer ItemKind = iota
	KindShape
)

func (k ItemKind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindShape:
		return "shape"
	default:
		return fmt.Sprintf("ItemKind(%d)", uint8(k))
	}
}

// Item is a node of the layer tree. It is implemented by *Layer and *Shape
// only.
type Item interface {
	Kind() ItemKind
	Name() string
	SetName(name string) bool
	Parent() *Layer
	Context() *Context
	HierarchyLevel() int

	IsGloballyActivated() bool
	SetGloballyActivated(active, recursive bool)
	IsLocked() bool
	SetLocked(locked, recursive bool)
	IsDeactivatedRecursive() bool
	IsLockedRecursive() bool

	base() *itemBase
}

// guarded is a value protected by its own lock.
type guarded[T any] struct {
	mu sync.RWMutex
	v  T
}

func (g *guarded[T]) Load() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.v
}

func (g *guarded[T]) Store(v T) {
	g.mu.Lock()
	g.v = v
	g.mu.Unlock()
}

// itemBase holds the state shared by layers and shapes. Every field is
// guarded independently.
type itemBase struct {
	name      guarded[string]
	activated atomic.Bool
	locked    atomic.Bool
	parent    atomic.Pointer[Layer]
	ctx       atomic.Pointer[Context]
}

func (b *itemBase) init(name string) {
	b.name.Store(name)
	b.activated.Store(true)
}

func (b *itemBase) base() *itemBase { return b }

// Name returns the name of the item.
func (b *itemBase) Name() string { return b.name.Load() }

// Parent returns the layer containing the item, or nil for the root
// layer and for detached items.
func (b *itemBase) Parent() *Layer { return b.parent.Load() }

// Context returns the context owning the item, or nil once the item has
// been removed.
func (b *itemBase) Context() *Context { return b.ctx.Load() }

// IsGloballyActivated reports the activation flag of this item alone.
func (b *itemBase) IsGloballyActivated() bool { return b.activated.Load() }

// IsLocked reports the lock flag of this item alone.
func (b *itemBase) IsLocked() bool { return b.locked.Load() }

// HierarchyLevel returns the number of ancestors. The root layer has
// level 0.
func (b *itemBase) HierarchyLevel() int {
	level := 0
	for p := b.Parent(); p != nil; p = p.Parent() {
		level++
	}
	return level
}

// IsDeactivatedRecursive reports whether the item or any of its ancestors
// is deactivated.
func (b *itemBase) IsDeactivatedRecursive() bool {
	if !b.IsGloballyActivated() {
		return true
	}
	for p := b.Parent(); p != nil; p = p.Parent() {
		if !p.IsGloballyActivated() {
			return true
		}
	}
	return false
}

// IsLockedRecursive reports whether the item or any of its ancestors is
// locked.
func (b *itemBase) IsLockedRecursive() bool {
	if b.IsLocked() {
		return true
	}
	for p := b.Parent(); p != nil; p = p.Parent() {
		if p.IsLocked() {
			return true
		}
	}
	return false
}

// SetName renames the item. Names must start with a letter, contain only
// letters, digits and underscores, and be unique within the context.
// The return value reports whether the name was changed.
func (b *itemBase) SetName(name string) bool {
	if !validName(name) {
		return false
	}
	ctx := b.Context()
	if ctx != nil {
		ctx.mu.Lock()
		defer ctx.mu.Unlock()
		if other := ctx.itemByName(name); other != nil && other.base() != b {
			return false
		}
	}
	b.name.Store(name)
	if ctx != nil {
		ctx.touch()
	}
	return true
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return false
		}
	}
	return true
}

func (b *itemBase) touch() {
	if ctx := b.Context(); ctx != nil {
		ctx.touch()
	}
}

// Layer is an item which groups other items.
type Layer struct {
	itemBase

	mu       sync.RWMutex
	children []Item
}

func newLayer(name string) *Layer {
	l := &Layer{}
	l.init(name)
	return l
}

// Kind returns KindLayer.
func (l *Layer) Kind() ItemKind { return KindLayer }

// Children returns the direct children of the layer, in order.
func (l *Layer) Children() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.children)
}

// SetGloballyActivated changes the activation flag. If recursive is set,
// all descendants are changed as well.
func (l *Layer) SetGloballyActivated(active, recursive bool) {
	l.activated.Store(active)
	if recursive {
		for _, c := range l.Children() {
			c.SetGloballyActivated(active, true)
		}
	}
	l.touch()
}

// SetLocked changes the lock flag. If recursive is set, all descendants
// are changed as well.
func (l *Layer) SetLocked(locked, recursive bool) {
	l.locked.Store(locked)
	if recursive {
		for _, c := range l.Children() {
			c.SetLocked(locked, true)
		}
	}
	l.touch()
}

// AddItem appends it to the children of l.
func (l *Layer) AddItem(it Item) error {
	return l.InsertItem(it, -1)
}

// InsertItem inserts it into the children of l at the given index.
// Index -1 appends. An item which is already part of a layer is
// detached from there first. Items joining a context must not reuse
// the name of an item already there.
func (l *Layer) InsertItem(it Item, index int) error {
	ctx := l.Context()
	if c := it.Context(); c != nil && c != ctx {
		return ErrNotInContext
	}
	if index < -1 {
		return fmt.Errorf("insert at %d: %w", index, ErrInvalidIndex)
	}
	if sub, ok := it.(*Layer); ok {
		for p := l; p != nil; p = p.Parent() {
			if p == sub {
				return fmt.Errorf("cannot insert layer %q into itself", sub.Name())
			}
		}
	}

	old := it.Parent()
	n := len(l.Children())
	if old == l {
		n--
	}
	if index > n {
		return fmt.Errorf("insert at %d of %d: %w", index, n, ErrInvalidIndex)
	}
	if ctx != nil && it.Context() == nil {
		if name, clash := ctx.nameClash(it); clash {
			return fmt.Errorf("insert %q: %w", name, ErrDuplicateName)
		}
	}
	if old != nil {
		old.detach(it)
	}

	l.mu.Lock()
	if index < 0 || index > len(l.children) {
		index = len(l.children)
	}
	l.children = slices.Insert(l.children, index, it)
	l.mu.Unlock()

	it.base().parent.Store(l)
	setContext(it, ctx)
	l.touch()
	return nil
}

// RemoveItem removes it from the children of l. If l belongs to a
// context, the removed subtree leaves the context just as with
// Context.RemoveItem. The return value reports whether it was a child
// of l.
func (l *Layer) RemoveItem(it Item) bool {
	if !l.detach(it) {
		return false
	}
	if ctx := l.Context(); ctx != nil {
		ctx.forget(it)
	} else {
		l.touch()
	}
	return true
}

func (l *Layer) detach(it Item) bool {
	l.mu.Lock()
	i := slices.Index(l.children, it)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.children = slices.Delete(l.children, i, i+1)
	l.mu.Unlock()
	it.base().parent.Store(nil)
	return true
}

// ChildIndex returns the position of it among the children of l, or -1.
func (l *Layer) ChildIndex(it Item) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Index(l.children, it)
}

// setContext sets the owning context of it and all its descendants.
func setContext(it Item, ctx *Context) {
	it.base().ctx.Store(ctx)
	if l, ok := it.(*Layer); ok {
		for _, c := range l.Children() {
			setContext(c, ctx)
		}
	}
}

// walk visits it and all its descendants in tree order. The walk stops
// when visit returns false.
func walk(it Item, visit func(Item) bool) bool {
	if !visit(it) {
		return false
	}
	if l, ok := it.(*Layer); ok {
		for _, c := range l.Children() {
			if !walk(c, visit) {
				return false
			}
		}
	}
	return true
}
