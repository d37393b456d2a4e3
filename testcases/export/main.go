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

// Command export writes the test scenes as roto scene files, for use with
// rotorender and other tools.
package main

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/roto"
	"seehuhn.de/go/roto/testcases"
)

const outDir = "testdata/scenes"

func main() {
	roto.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, sc := range testcases.All[category] {
			name := category + "_" + sc.Name
			c := toContext(sc)
			if err := c.SaveFile(filepath.Join(outDir, name+".yaml")); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
		}
	}
}

// toContext builds a context holding the shapes of sc. Moving shapes are
// keyed at 0 and at the end of their motion.
func toContext(sc testcases.Scene) *roto.Context {
	c := roto.NewContext()
	c.SetAutoKeying(false)
	for _, sh := range sc.Shapes {
		s := c.MakeShape(sh.Points[0].Pos, "Shape", 0)
		for _, p := range sh.Points[1:] {
			if _, err := s.AddControlPoint(p.Pos, 0); err != nil {
				panic(err)
			}
		}
		for i, p := range sh.Points {
			st := roto.PointState{Pos: p.Pos, Left: p.Left, Right: p.Right}
			if err := s.SetPointAtIndex(false, i, 0, st); err != nil {
				panic(err)
			}
			if err := s.SetPointAtIndex(true, i, 0, st); err != nil {
				panic(err)
			}
		}
		s.SetCurveFinished(true)
		s.SetParam(roto.ParamFeatherDistance, 0, sh.Feather)
		s.SetParam(roto.ParamFeatherFallOff, 0, sh.EffectiveFallOff())
		s.SetParam(roto.ParamOpacity, 0, sh.EffectiveOpacity())
		s.SetParam(roto.ParamOperator, 0, float64(sh.Operator))

		if sh.Motion.X != 0 || sh.Motion.Y != 0 {
			c.SetAutoKeying(true)
			s.SetKeyframe(0)
			for i := range sh.Points {
				if err := s.MovePointByIndex(i, testcases.MotionDuration, sh.Motion); err != nil {
					panic(err)
				}
			}
			c.SetAutoKeying(false)
		}
	}
	c.SetAutoKeying(true)
	return c
}
