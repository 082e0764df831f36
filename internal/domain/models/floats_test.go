package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestValuationResultMarshalsUnavailableValues(t *testing.T) {
	// Missing shares outstanding leaves the per-share figures NaN;
	// the API response must still encode.
	res := ValuationResult{
		Symbol:            "TEST",
		FreeCashFlow:      1e9,
		IntrinsicPerShare: NullableFloat(math.NaN()),
		CurrentPrice:      NullableFloat(math.NaN()),
		UpsidePercent:     NullableFloat(math.NaN()),
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"intrinsic_per_share":null`) {
		t.Fatalf("expected null intrinsic value, got %s", b)
	}
}

func TestCorrelationReportMarshalsFlatSeries(t *testing.T) {
	// Zero-variance series correlate as NaN; the matrix must encode
	// those cells as null, not fail.
	rep := CorrelationReport{
		Symbols: []string{"A", "B"},
		Matrix: FloatMatrix([][]float64{
			{1, math.NaN()},
			{math.NaN(), 1},
		}),
	}
	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `[1,null]`) {
		t.Fatalf("expected null off-diagonal, got %s", b)
	}
}

func TestNullableFloatRoundTrip(t *testing.T) {
	in := Floats([]float64{1.5, math.NaN(), -2})
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `[1.5,null,-2]` {
		t.Fatalf("unexpected encoding: %s", b)
	}
	var out []NullableFloat
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !math.IsNaN(float64(out[1])) {
		t.Fatalf("null must decode as NaN, got %v", out[1])
	}
	if out[0] != 1.5 || out[2] != -2 {
		t.Fatalf("values must round-trip, got %v", out)
	}
}
