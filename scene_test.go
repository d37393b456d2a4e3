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
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"seehuhn.de/go/roto/raster"
	"seehuhn.de/go/roto/testcases"
)

// buildScene converts a test scene into a context. Shapes without motion
// are static; moving shapes are keyed at 0 and at the end of the motion.
func buildScene(sc testcases.Scene) *Context {
	c := NewContext()
	c.SetAutoKeying(false)
	for _, sh := range sc.Shapes {
		s := c.MakeShape(sh.Points[0].Pos, "Shape", 0)
		for _, p := range sh.Points[1:] {
			_, _ = s.AddControlPoint(p.Pos, 0)
		}
		for i, p := range sh.Points {
			st := PointState{Pos: p.Pos, Left: p.Left, Right: p.Right}
			_ = s.SetPointAtIndex(false, i, 0, st)
			_ = s.SetPointAtIndex(true, i, 0, st)
		}
		s.SetCurveFinished(true)
		s.SetParam(ParamFeatherDistance, 0, sh.Feather)
		s.SetParam(ParamFeatherFallOff, 0, sh.EffectiveFallOff())
		s.SetParam(ParamOpacity, 0, sh.EffectiveOpacity())
		s.SetParam(ParamOperator, 0, float64(sh.Operator))

		if sh.Motion != (v(0, 0)) {
			c.SetAutoKeying(true)
			s.SetKeyframe(0)
			for i := range sh.Points {
				_ = s.MovePointByIndex(i, testcases.MotionDuration, sh.Motion)
			}
			c.SetAutoKeying(false)
		}
	}
	return c
}

func renderScene(t testing.TB, sc testcases.Scene) *raster.Image {
	c := buildScene(sc)
	img, err := c.RenderMask(context.Background(), RenderOptions{
		Time:     sc.Time,
		Bounds:   image.Rect(0, 0, sc.Width, sc.Height),
		Channels: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestScenes(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		if category == "large" && testing.Short() {
			continue
		}
		for _, sc := range testcases.All[category] {
			t.Run(category+"_"+sc.Name, func(t *testing.T) {
				img := renderScene(t, sc)
				var total float64
				for _, a := range img.Pix {
					if math.IsNaN(float64(a)) || a < 0 || a > 1+1e-6 {
						t.Fatalf("alpha %g out of range", a)
					}
					total += float64(a)
				}
				if total == 0 {
					t.Error("empty mask")
				}
			})
		}
	}
}

func TestSceneMotion(t *testing.T) {
	for _, sc := range testcases.All["motion"] {
		t.Run(sc.Name, func(t *testing.T) {
			img := renderScene(t, sc)

			var sum, sx, sy float64
			for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
				for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
					a := float64(img.Alpha(x, y))
					sum += a
					sx += a * (float64(x) + 0.5)
					sy += a * (float64(y) + 0.5)
				}
			}
			if sum == 0 {
				t.Fatal("empty mask")
			}

			pts := sc.Shapes[0].At(sc.Time)
			var want v2
			for _, p := range pts {
				want.x += p.Pos.X / float64(len(pts))
				want.y += p.Pos.Y / float64(len(pts))
			}
			if math.Abs(sx/sum-want.x) > 1 || math.Abs(sy/sum-want.y) > 1 {
				t.Errorf("centroid (%.2f, %.2f), want (%.2f, %.2f)",
					sx/sum, sy/sum, want.x, want.y)
			}
		})
	}
}

type v2 struct{ x, y float64 }

// hardEdged reports whether sc only paints opaque shapes without
// feather, so that the genpdf reference images apply.
func hardEdged(sc testcases.Scene) bool {
	for _, sh := range sc.Shapes {
		if sh.Feather != 0 || sh.EffectiveOpacity() != 1 || sh.Operator != raster.OpOver {
			return false
		}
	}
	return true
}

func TestAgainstReference(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, sc := range testcases.All[category] {
			if !hardEdged(sc) {
				continue
			}
			name := category + "_" + sc.Name
			t.Run(name, func(t *testing.T) {
				ref, err := loadGray(filepath.Join("testdata", "reference", name+".png"))
				if errors.Is(err, os.ErrNotExist) {
					t.Skip("no reference image; run testcases/genpdf")
				} else if err != nil {
					t.Fatal(err)
				}
				if ref.Rect.Dx() != sc.Width || ref.Rect.Dy() != sc.Height {
					t.Fatalf("reference is %v", ref.Rect)
				}

				actual := renderScene(t, sc).ToGray()
				if err := compareImages(name, ref, actual); err != nil {
					t.Error(err)
				}
			})
		}
	}
}

func loadGray(name string) (res *image.Gray, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	res = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			res.SetGray(x, y, color.GrayModel.Convert(img.At(x+b.Min.X, y+b.Min.Y)).(color.Gray))
		}
	}
	return res, nil
}

// compareImages accepts differences along the shape outlines: the
// reference is anti-aliased while masks are not.
func compareImages(name string, expected, actual *image.Gray) error {
	w, h := expected.Rect.Dx(), expected.Rect.Dy()
	diffs := make([]int, 0, w*h)
	for y := range h {
		for x := range w {
			d := int(expected.GrayAt(x, y).Y) - int(actual.GrayAt(x, y).Y)
			diffs = append(diffs, max(d, -d))
		}
	}
	slices.Sort(diffs)

	pct := func(p float64) int {
		return diffs[int(math.Round(p*float64(len(diffs)-1)))]
	}
	var failures []string
	if d := pct(0.80); d > 0 {
		failures = append(failures, fmt.Sprintf("80th percentile diff is %d (want 0)", d))
	}
	if d := pct(0.95); d >= 64 {
		failures = append(failures, fmt.Sprintf("95th percentile diff is %d (want <64)", d))
	}
	if d := pct(0.99); d > 128 {
		failures = append(failures, fmt.Sprintf("99th percentile diff is %d (want <=128)", d))
	}

	if len(failures) > 0 {
		_ = writeDiffImage(name, expected, actual)
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// writeDiffImage writes actual, difference and reference side by side to
// debug/<name>.png. Green marks missing coverage, red excess coverage.
func writeDiffImage(name string, expected, actual *image.Gray) (err error) {
	if err := os.MkdirAll("debug", 0755); err != nil {
		return err
	}

	w, h := expected.Rect.Dx(), expected.Rect.Dy()
	img := image.NewRGBA(image.Rect(0, 0, 3*w, h))
	for y := range h {
		for x := range w {
			a, e := actual.GrayAt(x, y).Y, expected.GrayAt(x, y).Y
			img.Set(x, y, color.RGBA{R: a, G: a, B: a, A: 255})
			diff := color.RGBA{A: 255}
			if e > a {
				diff.G = e - a
			} else {
				diff.R = a - e
			}
			img.Set(x+w, y, diff)
			img.Set(x+2*w, y, color.RGBA{R: e, G: e, B: e, A: 255})
		}
	}

	f, err := os.Create(filepath.Join("debug", name+".png"))
	if err != nil {
		return err
	}
	err = png.Encode(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func BenchmarkScenes(b *testing.B) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, sc := range testcases.All[category] {
			b.Run(category+"_"+sc.Name, func(b *testing.B) {
				c := buildScene(sc)
				dst := raster.NewImage(image.Rect(0, 0, sc.Width, sc.Height), 1)
				opts := RenderOptions{Time: sc.Time}
				for b.Loop() {
					dst.Clear()
					if err := c.RenderMaskInto(context.Background(), dst, opts); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
