package models

import (
	"encoding/json"
	"math"
)

// NullableFloat is a float64 that marshals NaN and infinities as JSON
// null. The engine and valuation math use NaN as the "unavailable"
// marker, which encoding/json rejects outright.
type NullableFloat float64

func (f NullableFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *NullableFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// Floats converts a raw series for JSON-safe transport.
func Floats(xs []float64) []NullableFloat {
	if xs == nil {
		return nil
	}
	out := make([]NullableFloat, len(xs))
	for i, x := range xs {
		out[i] = NullableFloat(x)
	}
	return out
}

// FloatMatrix converts a raw matrix for JSON-safe transport.
func FloatMatrix(m [][]float64) [][]NullableFloat {
	if m == nil {
		return nil
	}
	out := make([][]NullableFloat, len(m))
	for i, row := range m {
		out[i] = Floats(row)
	}
	return out
}
