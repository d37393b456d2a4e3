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

var compositeScenes = []Scene{
	{
		Name:   "overlap",
		Width:  64,
		Height: 64,
		Shapes: []Shape{
			{Points: rectangle(8, 8, 40, 40), Opacity: 0.5, Operator: raster.OpOver},
			{Points: rectangle(24, 24, 56, 56), Opacity: 0.5, Operator: raster.OpOver},
		},
	},
	{
		Name:   "hole",
		Width:  64,
		Height: 64,
		Shapes: []Shape{
			over(ellipse(32, 32, 26, 26)),
			{Points: ellipse(32, 32, 12, 12), Feather: 4, Operator: raster.OpDestOut},
		},
	},
	{
		Name:   "xor",
		Width:  64,
		Height: 64,
		Shapes: []Shape{
			over(rectangle(8, 8, 40, 40)),
			{Points: rectangle(24, 24, 56, 56), Operator: raster.OpXor},
		},
	},
	{
		Name:   "intersect",
		Width:  64,
		Height: 64,
		Shapes: []Shape{
			over(ellipse(26, 32, 18, 18)),
			{Points: ellipse(38, 32, 18, 18), Operator: raster.OpIn},
		},
	},
	{
		Name:   "plus",
		Width:  64,
		Height: 64,
		Shapes: []Shape{
			{Points: rectangle(8, 8, 40, 40), Opacity: 0.6, Operator: raster.OpPlus},
			{Points: rectangle(24, 24, 56, 56), Opacity: 0.6, Operator: raster.OpPlus},
		},
	},
}
