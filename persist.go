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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"seehuhn.de/go/roto/curve"
)

// ContextData is the serialized form of a context.
type ContextData struct {
	AutoKeying  bool           `yaml:"auto_keying"`
	FeatherLink bool           `yaml:"feather_link"`
	RippleEdit  bool           `yaml:"ripple_edit"`
	Counters    map[string]int `yaml:"counters,omitempty"`

	// Items lists all items in tree order. The first item is the root
	// layer.
	Items []ItemData `yaml:"items"`

	// Selection lists the names of the selected items.
	Selection []string `yaml:"selection,omitempty"`
}

// ItemData is the serialized form of a layer or a shape.
type ItemData struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Parent    string     `yaml:"parent,omitempty"`
	Activated bool       `yaml:"activated"`
	Locked    bool       `yaml:"locked,omitempty"`
	Shape     *ShapeData `yaml:"shape,omitempty"`
}

// ShapeData is the serialized form of the curves of a shape.
type ShapeData struct {
	Finished bool                 `yaml:"finished"`
	Points   []PointData          `yaml:"points"`
	Feathers []PointData          `yaml:"feathers"`
	Params   map[string]CurveData `yaml:"params,omitempty"`
	Overlay  [4]float64           `yaml:"overlay,flow"`
}

// PointData is the serialized form of a control point. Coordinates are
// stored in the order x, y, left x, left y, right x, right y.
type PointData struct {
	Static [6]float64     `yaml:"static,flow"`
	Keys   []PointKeyData `yaml:"keys,omitempty"`
}

// PointKeyData is one keyframe of a control point.
type PointKeyData struct {
	Time  float64    `yaml:"time"`
	Value [6]float64 `yaml:"value,flow"`
}

// CurveData is the serialized form of an animated parameter.
type CurveData struct {
	Default float64   `yaml:"default"`
	Keys    []KeyData `yaml:"keys,omitempty"`
}

// KeyData is one keyframe of an animated parameter.
type KeyData struct {
	Time   float64 `yaml:"time"`
	Value  float64 `yaml:"value"`
	Interp string  `yaml:"interp"`
}

func stateValues(s PointState) [6]float64 {
	return [6]float64{s.Pos.X, s.Pos.Y, s.Left.X, s.Left.Y, s.Right.X, s.Right.Y}
}

func valuesState(v [6]float64) PointState {
	var s PointState
	s.Pos.X, s.Pos.Y = v[0], v[1]
	s.Left.X, s.Left.Y = v[2], v[3]
	s.Right.X, s.Right.Y = v[4], v[5]
	return s
}

func savePoint(c *ControlPoint) PointData {
	var res PointData
	for i := range numChannels {
		res.Static[i] = c.ch[i].Default()
	}
	for _, t := range c.KeyframeTimes() {
		res.Keys = append(res.Keys, PointKeyData{Time: t, Value: stateValues(c.raw(t))})
	}
	return res
}

func loadPoint(s *Shape, data PointData) *ControlPoint {
	c := newControlPoint(s, valuesState(data.Static))
	for _, k := range data.Keys {
		c.setKey(k.Time, valuesState(k.Value))
	}
	return c
}

func saveCurve(c *curve.Curve) CurveData {
	res := CurveData{Default: c.Default()}
	for _, k := range c.Keyframes() {
		res.Keys = append(res.Keys, KeyData{Time: k.Time, Value: k.Value, Interp: k.Interp.String()})
	}
	return res
}

func loadCurve(c *curve.Curve, data CurveData) error {
	keys := make([]curve.Keyframe, len(data.Keys))
	for i, k := range data.Keys {
		interp, err := curve.ParseInterpolation(k.Interp)
		if err != nil {
			return err
		}
		keys[i] = curve.Keyframe{Time: k.Time, Value: k.Value, Interp: interp}
	}
	c.SetDefault(data.Default)
	c.SetKeyframes(keys)
	return nil
}

// SaveShape returns the curves and parameters of s.
func (s *Shape) SaveShape() ShapeData {
	points, feathers, closed := s.snapshot()
	res := ShapeData{
		Finished: closed,
		Points:   make([]PointData, len(points)),
		Feathers: make([]PointData, len(feathers)),
		Params:   make(map[string]CurveData, numParams),
		Overlay:  s.OverlayColor(),
	}
	for i := range points {
		res.Points[i] = savePoint(points[i])
		res.Feathers[i] = savePoint(feathers[i])
	}
	for p := range numParams {
		res.Params[p.String()] = saveCurve(s.params[p])
	}
	return res
}

// LoadShape replaces the curves and parameters of s. If the point and
// feather lists differ in length, s is left without points and
// ErrShapeMismatch is returned.
func (s *Shape) LoadShape(data ShapeData) error {
	s.mu.Lock()
	for i := range s.points {
		s.points[i].release()
		s.feathers[i].release()
	}
	s.points, s.feathers = nil, nil
	s.finished = false
	if len(data.Points) != len(data.Feathers) {
		s.mu.Unlock()
		s.changed()
		return fmt.Errorf("shape %q: %d points, %d feather points: %w",
			s.Name(), len(data.Points), len(data.Feathers), ErrShapeMismatch)
	}
	for i := range data.Points {
		s.points = append(s.points, loadPoint(s, data.Points[i]))
		s.feathers = append(s.feathers, loadPoint(s, data.Feathers[i]))
	}
	s.finished = data.Finished
	s.mu.Unlock()

	var errs []error
	for name, cd := range data.Params {
		p, err := ParseParam(name)
		if err == nil {
			err = loadCurve(s.params[p], cd)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("shape %q: %w", s.Name(), err))
		}
	}
	if data.Overlay != ([4]float64{}) {
		s.overlay.Store(data.Overlay)
	}
	s.changed()
	return errors.Join(errs...)
}

// Save returns the serialized form of the context.
func (c *Context) Save() ContextData {
	res := ContextData{
		AutoKeying:  c.AutoKeying(),
		FeatherLink: c.FeatherLink(),
		RippleEdit:  c.RippleEdit(),
	}

	c.mu.RLock()
	res.Counters = make(map[string]int, len(c.counters))
	for k, v := range c.counters {
		res.Counters[k] = v
	}
	for _, it := range c.selection {
		res.Selection = append(res.Selection, it.Name())
	}
	c.mu.RUnlock()

	walk(c.root, func(it Item) bool {
		d := ItemData{
			Name:      it.Name(),
			Kind:      it.Kind().String(),
			Activated: it.IsGloballyActivated(),
			Locked:    it.IsLocked(),
		}
		if p := it.Parent(); p != nil {
			d.Parent = p.Name()
		}
		if s, ok := it.(*Shape); ok {
			sd := s.SaveShape()
			d.Shape = &sd
		}
		res.Items = append(res.Items, d)
		return true
	})
	return res
}

// Load replaces the contents of c. Problems with individual items are
// logged and the item is skipped or, for shapes with inconsistent point
// lists, left empty.
func (c *Context) Load(data ContextData) error {
	if len(data.Items) == 0 || data.Items[0].Kind != KindLayer.String() {
		return errors.New("scene has no root layer")
	}

	for _, it := range c.root.Children() {
		_ = c.RemoveItem(it)
	}

	c.autoKeying.Store(data.AutoKeying)
	c.featherLink.Store(data.FeatherLink)
	c.rippleEdit.Store(data.RippleEdit)

	rootData := data.Items[0]
	c.root.name.Store(rootData.Name)
	c.root.activated.Store(rootData.Activated)
	c.root.locked.Store(rootData.Locked)

	log := Logger()
	byName := map[string]Item{rootData.Name: c.root}
	for _, d := range data.Items[1:] {
		if _, dup := byName[d.Name]; dup || !validName(d.Name) {
			log.Warn("item skipped: invalid or duplicate name", "name", d.Name)
			continue
		}
		parent, ok := byName[d.Parent].(*Layer)
		if !ok {
			log.Warn("item skipped: unknown parent layer", "name", d.Name, "parent", d.Parent)
			continue
		}

		var it Item
		switch d.Kind {
		case KindLayer.String():
			it = newLayer(d.Name)
		case KindShape.String():
			s := newShape(d.Name)
			if d.Shape != nil {
				if err := s.LoadShape(*d.Shape); err != nil {
					log.Warn("shape not fully loaded", "name", d.Name, "error", err)
				}
			}
			it = s
		default:
			log.Warn("item skipped: unknown kind", "name", d.Name, "kind", d.Kind)
			continue
		}
		it.base().activated.Store(d.Activated)
		it.base().locked.Store(d.Locked)
		if err := parent.AddItem(it); err != nil {
			return err
		}
		byName[d.Name] = it
	}

	c.mu.Lock()
	c.counters = make(map[string]int, len(data.Counters))
	for k, v := range data.Counters {
		c.counters[k] = v
	}
	c.selection = nil
	for _, name := range data.Selection {
		if it, ok := byName[name]; ok && !slices.Contains(c.selection, it) {
			c.selection = append(c.selection, it)
		}
	}
	c.mu.Unlock()

	c.touch()
	log.Info("scene loaded", "items", len(byName))
	return nil
}

// Encode writes c to w as a YAML document.
func (c *Context) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Save()); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads a context from a YAML document.
func Decode(r io.Reader) (*Context, error) {
	var data ContextData
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	c := NewContext()
	if err := c.Load(data); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveFile writes c to the named YAML file.
func (c *Context) SaveFile(name string) error {
	buf := &bytes.Buffer{}
	if err := c.Encode(buf); err != nil {
		return err
	}
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		return err
	}
	Logger().Info("scene saved", "file", name)
	return nil
}

// LoadFile reads a context from the named YAML file.
func LoadFile(name string) (*Context, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}
