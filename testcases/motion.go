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

package testcases

import "seehuhn.de/go/roto/raster"

var motionScenes = []Scene{
	{
		Name:   "slide_start",
		Width:  96,
		Height: 32,
		Time:   0,
		Shapes: []Shape{{Points: rectangle(4, 4, 28, 28), Motion: pt(64, 0), Operator: raster.OpOver}},
	},
	{
		Name:   "slide_middle",
		Width:  96,
		Height: 32,
		Time:   5,
		Shapes: []Shape{{Points: rectangle(4, 4, 28, 28), Motion: pt(64, 0), Operator: raster.OpOver}},
	},
	{
		Name:   "slide_after_end",
		Width:  96,
		Height: 32,
		Time:   15,
		Shapes: []Shape{{Points: rectangle(4, 4, 28, 28), Motion: pt(64, 0), Operator: raster.OpOver}},
	},
	{
		Name:   "feathered_fall",
		Width:  64,
		Height: 96,
		Time:   7.5,
		Shapes: []Shape{{
			Points:   ellipse(32, 16, 10, 10),
			Feather:  5,
			Motion:   pt(0, 60),
			Operator: raster.OpOver,
		}},
	},
}
