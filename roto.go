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

// Package roto implements animated rotoscoping shapes.
//
// A [Context] owns a tree of [Layer] and [Shape] items. Every shape is a
// closed (or, while being drawn, open) cubic Bézier curve made of
// [ControlPoint] values, paired index by index with a second set of
// control points describing its soft feather edge. All point positions
// and shape parameters are animated over time.
//
// The context renders the shapes at a given time into a mask image,
// painting them in tree order with their compositing operators.
//
// Mutating methods must be called from a single goroutine. Methods which
// only evaluate the shapes at a given time, including all rendering
// methods, may run concurrently with each other and with mutations.
package roto

import "errors"

var (
	// ErrInvalidIndex is returned when a control point index is out of range.
	ErrInvalidIndex = errors.New("control point index out of range")

	// ErrShapeFinished is returned when points are appended to a finished
	// shape.
	ErrShapeFinished = errors.New("shape is finished")

	// ErrShapeMismatch is returned by LoadShape when the interior and the
	// feather point lists have different lengths.
	ErrShapeMismatch = errors.New("feather and interior point counts differ")

	// ErrRootLayer is returned when the root layer is removed.
	ErrRootLayer = errors.New("the root layer cannot be removed")

	// ErrNotInContext is returned for items which do not belong to the
	// context.
	ErrNotInContext = errors.New("item does not belong to this context")

	// ErrDuplicateName is returned when an item is attached to a context
	// which already has an item of the same name.
	ErrDuplicateName = errors.New("item name is already in use")
)
