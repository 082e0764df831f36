package signals

import (
	"math"
	"testing"
)

func TestDailyReturns(t *testing.T) {
	candles := candlesFromCloses(100, 110, 99)
	got := DailyReturns(candles)
	want := []float64{10, -10}
	if len(got) != len(want) {
		t.Fatalf("expected %d returns, got %d", len(want), len(got))
	}
	for i, w := range want {
		if math.Abs(got[i]-w) > 1e-9 {
			t.Fatalf("return %d: expected %.4f, got %.4f", i, w, got[i])
		}
	}

	if got := DailyReturns(candlesFromCloses(100)); got != nil {
		t.Fatalf("a single candle has no returns, got %v", got)
	}
}

func TestCumulativeReturns(t *testing.T) {
	candles := candlesFromCloses(100, 110, 99)
	got := CumulativeReturns(candles)
	// 100 -> 110 is +10%; 110 -> 99 lands at -1% overall.
	want := []float64{0.10, -0.01}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if math.Abs(got[i]-w) > 1e-9 {
			t.Fatalf("cumulative %d: expected %.4f, got %.4f", i, w, got[i])
		}
	}
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	if c := Correlation(a, b); math.Abs(c-1) > 1e-9 {
		t.Fatalf("perfectly correlated series: expected 1, got %.6f", c)
	}

	inv := []float64{10, 8, 6, 4, 2}
	if c := Correlation(a, inv); math.Abs(c+1) > 1e-9 {
		t.Fatalf("inverse series: expected -1, got %.6f", c)
	}

	flat := []float64{3, 3, 3, 3, 3}
	if c := Correlation(a, flat); !math.IsNaN(c) {
		t.Fatalf("zero-variance series: expected NaN, got %.6f", c)
	}

	if c := Correlation(a, []float64{1, 2}); !math.IsNaN(c) {
		t.Fatalf("mismatched lengths: expected NaN, got %.6f", c)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
		{8, 6, 4, 2},
	}
	m := CorrelationMatrix(series)
	if len(m) != 3 {
		t.Fatalf("expected 3x3 matrix, got %d rows", len(m))
	}
	for i := range m {
		if m[i][i] != 1 {
			t.Fatalf("diagonal[%d] must be 1, got %.4f", i, m[i][i])
		}
		for j := range m {
			if m[i][j] != m[j][i] {
				t.Fatalf("matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
	if math.Abs(m[0][1]-1) > 1e-9 {
		t.Fatalf("series 0 and 1 scale together: expected 1, got %.6f", m[0][1])
	}
	if math.Abs(m[0][2]+1) > 1e-9 {
		t.Fatalf("series 0 and 2 are inverse: expected -1, got %.6f", m[0][2])
	}
}
