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
)

func TestRename(t *testing.T) {
	c := NewContext()
	a := c.MakeShape(v(0, 0), "Mask", 1)
	b := c.MakeShape(v(5, 5), "Mask", 1)
	if a.Name() != "Mask1" || b.Name() != "Mask2" {
		t.Fatalf("names %q, %q", a.Name(), b.Name())
	}

	if b.SetName("Mask1") {
		t.Error("duplicate name accepted")
	}
	if b.Name() != "Mask2" {
		t.Errorf("failed rename changed the name to %q", b.Name())
	}

	age := c.Age()
	if !b.SetName("Roto_2") {
		t.Fatal("valid rename rejected")
	}
	if c.Age() <= age {
		t.Error("rename did not advance the age")
	}
	if got := c.ItemByName("Roto_2"); got != Item(b) {
		t.Errorf("ItemByName found %v", got)
	}
	if c.ItemByName("Mask2") != nil {
		t.Error("old name still resolves")
	}
	if !b.SetName("Roto_2") {
		t.Error("renaming to the current name failed")
	}

	for _, name := range []string{"", "2x", "_x", "a-b", "a b", "é"} {
		if a.SetName(name) {
			t.Errorf("invalid name %q accepted", name)
		}
	}
}

func TestHierarchy(t *testing.T) {
	c := NewContext()
	root := c.RootLayer()
	l1 := c.AddLayer()
	l2 := c.AddLayer()
	s := c.MakeShape(v(0, 0), "", 1)

	if l1.Parent() != root || l2.Parent() != l1 || s.Parent() != l2 {
		t.Fatal("items not nested in the selected layers")
	}
	levels := []struct {
		it   Item
		want int
	}{{root, 0}, {l1, 1}, {l2, 2}, {s, 3}}
	for _, tc := range levels {
		if got := tc.it.HierarchyLevel(); got != tc.want {
			t.Errorf("%s: level %d, want %d", tc.it.Name(), got, tc.want)
		}
	}
	if s.Kind() != KindShape || l1.Kind() != KindLayer || KindShape.String() != "shape" {
		t.Error("wrong kinds")
	}

	l1.SetGloballyActivated(false, false)
	if !s.IsGloballyActivated() || !s.IsDeactivatedRecursive() {
		t.Error("deactivation not inherited")
	}
	l1.SetGloballyActivated(true, false)
	if s.IsDeactivatedRecursive() {
		t.Error("shape still deactivated")
	}

	l1.SetLocked(true, true)
	if !s.IsLocked() || !l2.IsLocked() {
		t.Error("recursive lock did not reach the descendants")
	}
	l1.SetLocked(false, false)
	if !s.IsLockedRecursive() {
		t.Error("l2 is still locked")
	}
	l2.SetLocked(false, false)
	s.SetLocked(false, false)
	if s.IsLockedRecursive() {
		t.Error("shape still locked")
	}
}

func TestInsertItem(t *testing.T) {
	c := NewContext()
	root := c.RootLayer()
	l1 := c.AddLayer()
	s := c.MakeShape(v(0, 0), "", 1)

	if err := root.InsertItem(s, 5); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("got %v, want ErrInvalidIndex", err)
	}
	if s.Parent() != l1 {
		t.Error("failed insert detached the item")
	}

	if err := root.InsertItem(s, 0); err != nil {
		t.Fatal(err)
	}
	if s.Parent() != root || root.ChildIndex(s) != 0 || l1.ChildIndex(s) != -1 {
		t.Error("item not moved")
	}
	if len(l1.Children()) != 0 {
		t.Error("old parent still lists the item")
	}

	if err := l1.AddItem(root); err == nil {
		t.Error("layer inserted into its own descendant")
	}

	other := NewContext()
	foreign := other.MakeShape(v(0, 0), "", 1)
	if err := root.AddItem(foreign); !errors.Is(err, ErrNotInContext) {
		t.Errorf("got %v, want ErrNotInContext", err)
	}

	for _, index := range []int{-2, -5} {
		if err := root.InsertItem(l1, index); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("index %d: got %v, want ErrInvalidIndex", index, err)
		}
	}

	c.ClearSelection()
	if err := c.Select(s); err != nil {
		t.Fatal(err)
	}
	if !root.RemoveItem(s) || root.RemoveItem(s) {
		t.Error("RemoveItem results")
	}
	if s.Context() != nil {
		t.Error("removed item still belongs to the context")
	}
	if sel := c.SelectedItems(); len(sel) != 0 {
		t.Errorf("removed item still selected: %v", sel)
	}
}

func TestInsertItemNames(t *testing.T) {
	c := NewContext()
	root := c.RootLayer()
	l1 := c.AddLayer()
	s := c.MakeShape(v(0, 0), "", 1)
	if !l1.RemoveItem(s) {
		t.Fatal("shape not in the new layer")
	}

	// detached items are renamed without a uniqueness check
	if !s.SetName(l1.Name()) {
		t.Fatal("rename failed")
	}
	if err := root.AddItem(s); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("got %v, want ErrDuplicateName", err)
	}
	if s.Context() != nil || s.Parent() != nil {
		t.Error("rejected item was attached")
	}

	if !s.SetName("Mask") {
		t.Fatal("rename failed")
	}
	if err := l1.AddItem(s); err != nil {
		t.Fatal(err)
	}
	if s.Context() != c || c.ItemByName("Mask") != s {
		t.Error("item not attached")
	}

	// moving within the context keeps the name
	if err := root.InsertItem(s, 0); err != nil {
		t.Error(err)
	}
}
