package types

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// Box is a bounded continuous space of a fixed shape.
// Low and High hold per-element bounds in flattened order.
type Box struct {
	Shape []int
	Low   []float64
	High  []float64
}

// NewBox creates a box with the same bounds for every element.
func NewBox(low, high float64, shape ...int) Box {
	dim := 1
	for _, s := range shape {
		dim *= s
	}
	b := Box{
		Shape: shape,
		Low:   make([]float64, dim),
		High:  make([]float64, dim),
	}
	for i := 0; i < dim; i++ {
		b.Low[i] = low
		b.High[i] = high
	}
	return b
}

// NewBoxBounds creates a box with per-element bounds.
func NewBoxBounds(low, high []float64, shape ...int) Box {
	dim := 1
	for _, s := range shape {
		dim *= s
	}
	if len(low) != dim || len(high) != dim {
		panic(fmt.Sprintf("box bounds of length %d,%d for %d elements", len(low), len(high), dim))
	}
	return Box{Shape: shape, Low: low, High: high}
}

// UnboundedBox creates a box with no bounds.
func UnboundedBox(shape ...int) Box {
	return NewBox(math.Inf(-1), math.Inf(1), shape...)
}

// FlatDim is the number of elements in the flattened space.
func (b Box) FlatDim() int {
	dim := 1
	for _, s := range b.Shape {
		dim *= s
	}
	return dim
}

// Contains reports whether the value lies within the bounds.
func (b Box) Contains(v []float64) bool {
	if len(v) != b.FlatDim() {
		return false
	}
	for i, x := range v {
		if x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// Clip clamps the value to the bounds in place and returns it.
func (b Box) Clip(v []float64) []float64 {
	for i := range v {
		if v[i] < b.Low[i] {
			v[i] = b.Low[i]
		} else if v[i] > b.High[i] {
			v[i] = b.High[i]
		}
	}
	return v
}

// Equal reports whether two boxes declare the same space.
func (b Box) Equal(o Box) bool {
	return slices.Equal(b.Shape, o.Shape) &&
		slices.Equal(b.Low, o.Low) &&
		slices.Equal(b.High, o.High)
}

// boxWire is the JSON form of a box. Infinite bounds are encoded as
// null, which plain JSON numbers cannot carry.
type boxWire struct {
	Shape []int      `json:"shape"`
	Low   []*float64 `json:"low"`
	High  []*float64 `json:"high"`
}

func encodeBounds(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i, x := range xs {
		if !math.IsInf(x, 0) {
			v := x
			out[i] = &v
		}
	}
	return out
}

func decodeBounds(xs []*float64, sign int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if x == nil {
			out[i] = math.Inf(sign)
		} else {
			out[i] = *x
		}
	}
	return out
}

func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal(boxWire{
		Shape: b.Shape,
		Low:   encodeBounds(b.Low),
		High:  encodeBounds(b.High),
	})
}

func (b *Box) UnmarshalJSON(data []byte) error {
	var w boxWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Shape = w.Shape
	b.Low = decodeBounds(w.Low, -1)
	b.High = decodeBounds(w.High, 1)
	return nil
}

// Dict is a fixed-order collection of named boxes.
type Dict struct {
	names []string
	boxes map[string]Box
}

func NewDict() *Dict {
	return &Dict{
		names: make([]string, 0),
		boxes: make(map[string]Box),
	}
}

// Add declares a named sub-space. Declaration order is part of the schema.
func (d *Dict) Add(name string, b Box) *Dict {
	if _, ok := d.boxes[name]; !ok {
		d.names = append(d.names, name)
	}
	d.boxes[name] = b
	return d
}

// Keys returns the field names in declaration order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Get returns the named sub-space.
func (d *Dict) Get(name string) (Box, bool) {
	b, ok := d.boxes[name]
	return b, ok
}

// FlatDim is the total element count across all fields.
func (d *Dict) FlatDim() int {
	dim := 0
	for _, name := range d.names {
		dim += d.boxes[name].FlatDim()
	}
	return dim
}

// Flatten concatenates the observation's fields in declaration order.
func (d *Dict) Flatten(obs Observation) ([]float64, error) {
	out := make([]float64, 0, d.FlatDim())
	for _, name := range d.names {
		field, ok := obs[name]
		if !ok {
			return nil, fmt.Errorf("observation missing field %q", name)
		}
		if want := d.boxes[name].FlatDim(); len(field) != want {
			return nil, fmt.Errorf("field %q has %d elements, expected %d", name, len(field), want)
		}
		out = append(out, field...)
	}
	return out, nil
}

// Equal reports whether two dicts declare the same schema,
// including field order.
func (d *Dict) Equal(o *Dict) bool {
	if len(d.names) != len(o.names) {
		return false
	}
	for i, name := range d.names {
		if o.names[i] != name {
			return false
		}
		if !d.boxes[name].Equal(o.boxes[name]) {
			return false
		}
	}
	return true
}

type dictField struct {
	Name  string `json:"name"`
	Space Box    `json:"space"`
}

type dictWire struct {
	Fields []dictField `json:"fields"`
}

func (d *Dict) MarshalJSON() ([]byte, error) {
	w := dictWire{Fields: make([]dictField, 0, len(d.names))}
	for _, name := range d.names {
		w.Fields = append(w.Fields, dictField{Name: name, Space: d.boxes[name]})
	}
	return json.Marshal(w)
}

func (d *Dict) UnmarshalJSON(data []byte) error {
	var w dictWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.names = make([]string, 0, len(w.Fields))
	d.boxes = make(map[string]Box, len(w.Fields))
	for _, f := range w.Fields {
		d.Add(f.Name, f.Space)
	}
	return nil
}
