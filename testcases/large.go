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

var largeScenes = []Scene{
	{
		Name:   "circle_1024",
		Width:  1024,
		Height: 1024,
		Shapes: []Shape{{
			Points:   ellipse(512, 512, 480, 400),
			Feather:  40,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "grid_16x16",
		Width:  512,
		Height: 512,
		Shapes: grid(16, 32),
	},
}

// grid returns n×n small feathered circles on a square lattice.
func grid(n int, step float64) []Shape {
	res := make([]Shape, 0, n*n)
	for i := range n {
		for j := range n {
			cx := (float64(i) + 0.5) * step
			cy := (float64(j) + 0.5) * step
			res = append(res, Shape{
				Points:   ellipse(cx, cy, step/3, step/4),
				Feather:  step / 8,
				Operator: raster.OpOver,
			})
		}
	}
	return res
}
