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

import "math"

var fillScenes = []Scene{
	{
		Name:   "triangle",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(polygon(10, 50, 32, 10, 54, 50))},
	},
	{
		Name:   "rectangle",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(rectangle(10, 10, 54, 54))},
	},
	{
		Name:   "concave",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(polygon(8, 8, 56, 8, 56, 24, 24, 24, 24, 56, 8, 56))},
	},
	{
		Name:   "star",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(star(32, 32, 25))},
	},
	{
		Name:   "bowtie",
		Width:  64,
		Height: 64,
		Shapes: []Shape{over(polygon(8, 12, 56, 52, 56, 12, 8, 52))},
	},
}

// star returns a self-intersecting five-pointed star.
func star(cx, cy, r float64) []Point {
	res := make([]Point, 5)
	for i := range 5 {
		// every second vertex of a regular pentagon
		angle := float64(2*i)*2*math.Pi/5 - math.Pi/2
		res[i] = corner(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return res
}
