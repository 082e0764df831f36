package signals

import (
	"math"

	"StockSight/internal/domain/models"
)

// DailyReturns computes the day-over-day percent change of close
// prices. The result has len(candles)-1 entries; fewer than two
// candles yield nil.
func DailyReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = (candles[i].Close - prev) / prev * 100
	}
	return out
}

// CumulativeReturns compounds the simple daily returns into growth
// relative to the first close, as a fraction. Aligned with
// DailyReturns: entry i covers candles[0..i+1].
func CumulativeReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, len(candles)-1)
	acc := 1.0
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			out[i-1] = math.NaN()
			continue
		}
		acc *= candles[i].Close / prev
		out[i-1] = acc - 1
	}
	return out
}

// Correlation is the Pearson correlation coefficient of two equal
// length series. Mismatched lengths, fewer than two points, or a
// zero-variance series yield NaN.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return math.NaN()
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}

// CorrelationMatrix builds the symmetric pairwise Pearson matrix for
// the given close-price series. The diagonal is 1.
func CorrelationMatrix(series [][]float64) [][]float64 {
	m := make([][]float64, len(series))
	for i := range series {
		m[i] = make([]float64, len(series))
		m[i][i] = 1
	}
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			c := Correlation(series[i], series[j])
			m[i][j] = c
			m[j][i] = c
		}
	}
	return m
}
