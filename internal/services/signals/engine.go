package signals

import (
	"errors"
	"fmt"

	"StockSight/internal/domain/models"
)

// Window validation failures. The engine validates eagerly and fails
// fast; callers map these to user-facing errors.
var (
	ErrInvalidWindow      = errors.New("invalid window")
	ErrInvalidWindowOrder = errors.New("short window exceeds long window")
)

// MovingAverage computes the trailing arithmetic mean of Close over
// the given window. The result is aligned to candles: one entry per
// candle, with the first window-1 entries invalid (insufficient
// history). It never mutates its input.
func MovingAverage(candles []models.Candle, window int) ([]models.MAValue, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window %d must be positive", ErrInvalidWindow, window)
	}
	if window > len(candles) {
		return nil, fmt.Errorf("%w: window %d exceeds series length %d", ErrInvalidWindow, window, len(candles))
	}

	out := make([]models.MAValue, len(candles))
	sum := 0.0
	for i, c := range candles {
		sum += c.Close
		if i >= window {
			sum -= candles[i-window].Close
		}
		if i >= window-1 {
			out[i] = models.MAValue{Value: sum / float64(window), Valid: true}
		}
	}
	return out, nil
}

// Crossovers classifies each point's trend state from a short and a
// long moving average and extracts the crossing events between them.
//
// A point is bullish iff shortMA > longMA; equality counts as bearish
// (conservative default). A crossing is emitted at index i whenever
// the defined state differs from the previous defined state, tagged by
// the new state. The first defined index has no prior state and never
// emits. Fewer than two defined states yield an empty crossing list
// rather than an error.
func Crossovers(candles []models.Candle, shortWindow, longWindow int) ([]models.State, []models.Crossing, error) {
	if shortWindow > longWindow {
		return nil, nil, fmt.Errorf("%w: short %d > long %d", ErrInvalidWindowOrder, shortWindow, longWindow)
	}
	shortMA, err := MovingAverage(candles, shortWindow)
	if err != nil {
		return nil, nil, err
	}
	longMA, err := MovingAverage(candles, longWindow)
	if err != nil {
		return nil, nil, err
	}

	states := make([]models.State, len(candles))
	var crossings []models.Crossing
	prev := models.StateUndefined
	for i := range candles {
		if !shortMA[i].Valid || !longMA[i].Valid {
			states[i] = models.StateUndefined
			continue
		}
		st := models.StateBearish
		if shortMA[i].Value > longMA[i].Value {
			st = models.StateBullish
		}
		states[i] = st

		if prev != models.StateUndefined && st != prev {
			typ := models.SellCrossing
			if st == models.StateBullish {
				typ = models.BuyCrossing
			}
			crossings = append(crossings, models.Crossing{
				Index: i,
				Time:  candles[i].Bucket,
				Type:  typ,
				Price: candles[i].Close,
			})
		}
		prev = st
	}
	return states, crossings, nil
}

// LatestRecommendation maps the most recent crossing, regardless of
// how long ago it occurred, to the standing recommendation.
func LatestRecommendation(crossings []models.Crossing) models.Recommendation {
	if len(crossings) == 0 {
		return models.Recommendation{Action: models.ActionNoSignal, Index: -1}
	}
	last := crossings[len(crossings)-1]
	action := models.ActionSell
	if last.Type == models.BuyCrossing {
		action = models.ActionBuy
	}
	return models.Recommendation{
		Action: action,
		Price:  last.Price,
		Time:   last.Time,
		Index:  last.Index,
	}
}

// LastBarAlert fires only when the latest crossing sits on the final
// bar of a series of n candles; an older crossing is a standing
// recommendation, not an alert.
func LastBarAlert(crossings []models.Crossing, n int) models.Alert {
	if len(crossings) == 0 || n == 0 {
		return models.Alert{}
	}
	last := crossings[len(crossings)-1]
	if last.Index != n-1 {
		return models.Alert{}
	}
	return models.Alert{Active: true, Type: last.Type, Price: last.Price, Time: last.Time}
}
