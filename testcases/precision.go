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

var precisionScenes = []Scene{
	{
		Name:   "subpixel_offset_00",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(rectangle(20, 20, 44, 44))},
	},
	{
		Name:   "subpixel_offset_25",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(rectangle(20.25, 20.25, 44.25, 44.25))},
	},
	{
		Name:   "subpixel_offset_50",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(rectangle(20.5, 20.5, 44.5, 44.5))},
	},
	{
		Name:   "subpixel_offset_75",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(rectangle(20.75, 20.75, 44.75, 44.75))},
	},
	{
		Name:   "sliver",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(polygon(4, 30.2, 60, 30.5, 60, 31.1, 4, 30.8))},
	},
	{
		Name:   "tiny_circle",
		Width:  16,
		Height: 16,
		Shapes: []Shape{over(ellipse(8.5, 8.5, 0.75, 0.75))},
	},
	{
		Name:   "short_handles",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over([]Point{
			smooth(10, 10, 1e-6, 0),
			smooth(54, 10, 0, 1e-6),
			smooth(54, 54, -1e-6, 0),
			smooth(10, 54, 0, -1e-6),
		})},
	},
}
