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

var curveScenes = []Scene{
	{
		Name:   "circle",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(ellipse(32, 32, 24, 24))},
	},
	{
		Name:   "ellipse",
		Width:  96,
		Height: 64,
		Shapes: []Shape{over(ellipse(48, 32, 40, 20))},
	},
	{
		Name:   "blob",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over([]Point{
			smooth(12, 32, 0, -14),
			smooth(32, 10, 10, 0),
			smooth(52, 26, 4, 12),
			smooth(34, 54, -16, 2),
		})},
	},
	{
		Name:   "teardrop",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over([]Point{
			{Pos: pt(32, 6), Left: pt(20, 30), Right: pt(44, 30)},
			smooth(32, 56, -14, 0),
		})},
	},
	{
		Name:   "loop",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over([]Point{
			{Pos: pt(10, 32), Left: pt(10, 32), Right: pt(70, 0)},
			{Pos: pt(54, 32), Left: pt(-6, 0), Right: pt(54, 32)},
		})},
	},
}
