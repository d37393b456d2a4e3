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

var featherScenes = []Scene{
	{
		Name:   "rectangle_4",
		Width:  64,
		Height: 64,
		Shapes: []Shape{{
			Points:   rectangle(16, 16, 48, 48),
			Feather:  4,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "circle_16",
		Width:  96,
		Height: 96,
		Shapes: []Shape{{
			Points:   ellipse(48, 48, 24, 24),
			Feather:  16,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "falloff_soft",
		Width:  64,
		Height: 64,
		Shapes: []Shape{{
			Points:   ellipse(32, 32, 16, 16),
			Feather:  12,
			FallOff:  0.5,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "falloff_hard",
		Width:  64,
		Height: 64,
		Shapes: []Shape{{
			Points:   ellipse(32, 32, 16, 16),
			Feather:  12,
			FallOff:  3,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "star_8",
		Width:  80,
		Height: 80,
		Shapes: []Shape{{
			Points:   star(40, 40, 25),
			Feather:  8,
			Operator: raster.OpOver,
		}},
	},
	{
		Name:   "translucent",
		Width:  64,
		Height: 64,
		Shapes: []Shape{{
			Points:   rectangle(12, 12, 52, 52),
			Feather:  6,
			Opacity:  0.4,
			Operator: raster.OpOver,
		}},
	},
}
