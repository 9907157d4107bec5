package types

import (
	"encoding/json"
	"testing"
)

func TestBoxFlatDim(t *testing.T) {
	if d := NewBox(-1, 1, 4, 5).FlatDim(); d != 20 {
		t.Errorf("incorrect flat dim %d", d)
	}
	if d := NewBox(0, 1, 3).FlatDim(); d != 3 {
		t.Errorf("incorrect flat dim %d", d)
	}
}

func TestBoxContains(t *testing.T) {
	b := NewBoxBounds([]float64{-1, 0}, []float64{1, 10}, 2)
	if !b.Contains([]float64{0, 5}) {
		t.Errorf("value inside the bounds not contained")
	}
	if b.Contains([]float64{-2, 5}) {
		t.Errorf("value below the bounds contained")
	}
	if b.Contains([]float64{0, 11}) {
		t.Errorf("value above the bounds contained")
	}
	if b.Contains([]float64{0}) {
		t.Errorf("value of the wrong width contained")
	}
}

func TestBoxClip(t *testing.T) {
	b := NewBoxBounds([]float64{-1, 0}, []float64{1, 10}, 2)
	clipped := b.Clip([]float64{-3, 12})
	if clipped[0] != -1 || clipped[1] != 10 {
		t.Errorf("incorrect clipped value %v", clipped)
	}
	clipped = b.Clip([]float64{0.5, 3})
	if clipped[0] != 0.5 || clipped[1] != 3 {
		t.Errorf("in-bounds value changed by clip: %v", clipped)
	}
}

func TestDictFlattenOrder(t *testing.T) {
	d := NewDict().
		Add("second", NewBox(-1, 1, 2)).
		Add("first", NewBox(-1, 1, 1))
	flat, err := d.Flatten(Observation{
		"first":  {3},
		"second": {1, 2},
	})
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	expected := []float64{1, 2, 3}
	if len(flat) != len(expected) {
		t.Fatalf("incorrect flattened width %d", len(flat))
	}
	for i := range expected {
		if flat[i] != expected[i] {
			t.Errorf("fields flattened out of declaration order: %v", flat)
		}
	}
}

func TestDictFlattenErrors(t *testing.T) {
	d := NewDict().Add("x", NewBox(-1, 1, 2))
	if _, err := d.Flatten(Observation{}); err == nil {
		t.Errorf("flatten accepted an observation with a missing field")
	}
	if _, err := d.Flatten(Observation{"x": {1, 2, 3}}); err == nil {
		t.Errorf("flatten accepted a field of the wrong width")
	}
}

func TestDictEqual(t *testing.T) {
	one := NewDict().Add("a", NewBox(-1, 1, 2)).Add("b", NewBox(0, 1, 1))
	same := NewDict().Add("a", NewBox(-1, 1, 2)).Add("b", NewBox(0, 1, 1))
	reordered := NewDict().Add("b", NewBox(0, 1, 1)).Add("a", NewBox(-1, 1, 2))
	widened := NewDict().Add("a", NewBox(-2, 2, 2)).Add("b", NewBox(0, 1, 1))

	if !one.Equal(same) {
		t.Errorf("identical schemas compared unequal")
	}
	if one.Equal(reordered) {
		t.Errorf("field order ignored in schema comparison")
	}
	if one.Equal(widened) {
		t.Errorf("bounds ignored in schema comparison")
	}
}

func TestDictJSONRoundTrip(t *testing.T) {
	d := NewDict().
		Add("vision", UnboundedBox(4, 5)).
		Add("yaw", NewBox(-1, 1, 1))

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	decoded := NewDict()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !d.Equal(decoded) {
		t.Errorf("schema changed over the wire")
	}
	keys := decoded.Keys()
	if len(keys) != 2 || keys[0] != "vision" || keys[1] != "yaw" {
		t.Errorf("field order changed over the wire: %v", keys)
	}
}
