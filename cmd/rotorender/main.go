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

// Command rotorender renders the masks of a roto scene file to PNG images.
//
// Usage:
//
//	rotorender -scene shapes.yaml -from 1 -to 48 -out mask_%04d.png
//
// With -level n the masks are rendered at 1/2^n of the full resolution
// and scaled back up, which is much faster for previews.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/image/draw"

	"seehuhn.de/go/roto"
	"seehuhn.de/go/roto/raster"
)

type options struct {
	scene    string
	from, to float64
	step     float64
	level    uint
	width    int
	height   int
	out      string
	overlay  bool
	color    bool
}

func main() {
	opt := options{}
	flag.StringVar(&opt.scene, "scene", "", "scene file (YAML)")
	flag.Float64Var(&opt.from, "from", 0, "time of the first frame")
	flag.Float64Var(&opt.to, "to", 0, "time of the last frame")
	flag.Float64Var(&opt.step, "step", 1, "time between frames")
	flag.UintVar(&opt.level, "level", 0, "render at 1/2^level resolution and scale up")
	flag.IntVar(&opt.width, "width", 0, "image width; 0 uses the extent of the mask")
	flag.IntVar(&opt.height, "height", 0, "image height; 0 uses the extent of the mask")
	flag.StringVar(&opt.out, "out", "mask_%04d.png", "output file name, with a verb for the frame number")
	flag.BoolVar(&opt.overlay, "overlay", false, "draw the shape outlines")
	flag.BoolVar(&opt.color, "color", false, "write RGBA images instead of gray masks")
	verbose := flag.Bool("v", false, "log render details")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	roto.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, opt); err != nil {
		logger.Error("rendering failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opt options) error {
	if opt.scene == "" {
		return errors.New("no scene file given")
	}
	if opt.step <= 0 || opt.to < opt.from {
		return fmt.Errorf("invalid frame range %g..%g, step %g", opt.from, opt.to, opt.step)
	}
	if opt.width < 0 || opt.height < 0 || (opt.width == 0) != (opt.height == 0) {
		return errors.New("-width and -height must be given together")
	}

	c, err := roto.LoadFile(opt.scene)
	if err != nil {
		return err
	}

	var times []float64
	for i := 0; ; i++ {
		t := opt.from + float64(i)*opt.step
		if t > opt.to {
			break
		}
		times = append(times, t)
	}

	ro := roto.RenderOptions{
		Level:    opt.level,
		Channels: 1,
		Overlay:  opt.overlay,
	}
	if opt.color || opt.overlay {
		ro.Channels = 4
	}
	if opt.width > 0 {
		ro.Bounds = image.Rect(0, 0, opt.width>>opt.level, opt.height>>opt.level)
	}

	frames, err := c.RenderFrames(ctx, times, ro)
	if err != nil {
		return err
	}
	for i, img := range frames {
		if img.Rect.Empty() {
			logger.Warn("empty mask, no image written", "time", times[i])
			continue
		}
		name := fmt.Sprintf(opt.out, i)
		if err := writePNG(name, upscale(img, opt.level)); err != nil {
			return err
		}
		logger.Info("frame written", "time", times[i], "file", name)
	}
	return nil
}

// upscale converts img to a standard image at full resolution.
func upscale(img *raster.Image, level uint) image.Image {
	var src, dst draw.Image
	r := img.Rect
	full := image.Rect(r.Min.X<<level, r.Min.Y<<level, r.Max.X<<level, r.Max.Y<<level)
	if img.Channels == 1 {
		src = img.ToGray()
		if level == 0 {
			return src
		}
		dst = image.NewGray(full)
	} else {
		src = img.ToRGBA()
		if level == 0 {
			return src
		}
		dst = image.NewRGBA(full)
	}
	draw.ApproxBiLinear.Scale(dst, full, src, src.Bounds(), draw.Src, nil)
	return dst
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}
