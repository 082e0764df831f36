package signals

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockSight/internal/domain/models"
)

func candlesFromCloses(closes ...float64) []models.Candle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Bucket: base.AddDate(0, 0, i),
			Symbol: "TEST",
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

func TestMovingAverageBasic(t *testing.T) {
	candles := candlesFromCloses(10, 11, 9, 12, 14)
	ma, err := MovingAverage(candles, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ma) != len(candles) {
		t.Fatalf("expected %d values, got %d", len(candles), len(ma))
	}
	if ma[0].Valid {
		t.Fatalf("index 0 should be undefined for window 2")
	}
	want := []float64{10.5, 10, 10.5, 13}
	for i, w := range want {
		got := ma[i+1]
		if !got.Valid {
			t.Fatalf("index %d should be defined", i+1)
		}
		if math.Abs(got.Value-w) > 1e-9 {
			t.Fatalf("index %d: expected %.4f, got %.4f", i+1, w, got.Value)
		}
	}
}

func TestMovingAverageWindowEqualsLength(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3)
	ma, err := MovingAverage(candles, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ma[0].Valid || ma[1].Valid {
		t.Fatalf("only the final index should be defined")
	}
	if !ma[2].Valid || math.Abs(ma[2].Value-2) > 1e-9 {
		t.Fatalf("expected single defined value 2, got %+v", ma[2])
	}
}

func TestMovingAverageInvalidWindow(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3)
	cases := []struct {
		name    string
		candles []models.Candle
		window  int
	}{
		{"zero window", candles, 0},
		{"negative window", candles, -1},
		{"window exceeds length", candles, 4},
		{"empty series", nil, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MovingAverage(tc.candles, tc.window); !errors.Is(err, ErrInvalidWindow) {
				t.Fatalf("expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestMovingAverageDoesNotMutateInput(t *testing.T) {
	candles := candlesFromCloses(5, 6, 7)
	if _, err := MovingAverage(candles, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candles[0].Close != 5 || candles[2].Close != 7 {
		t.Fatalf("input candles mutated: %+v", candles)
	}
}

func TestCrossoversBuySignal(t *testing.T) {
	candles := candlesFromCloses(10, 11, 9, 12, 14)
	states, crossings, err := Crossovers(candles, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStates := []models.State{
		models.StateUndefined,
		models.StateUndefined,
		models.StateBearish,
		models.StateBearish,
		models.StateBullish,
	}
	for i, w := range wantStates {
		if states[i] != w {
			t.Fatalf("state %d: expected %s, got %s", i, w, states[i])
		}
	}

	if len(crossings) != 1 {
		t.Fatalf("expected 1 crossing, got %d", len(crossings))
	}
	c := crossings[0]
	if c.Index != 4 || c.Type != models.BuyCrossing {
		t.Fatalf("expected buy crossing at index 4, got %+v", c)
	}
	if c.Price != 14 {
		t.Fatalf("expected crossing price 14, got %.2f", c.Price)
	}
	if !c.Time.Equal(candles[4].Bucket) {
		t.Fatalf("crossing time should match the candle bucket")
	}
}

func TestCrossoversTieIsBearish(t *testing.T) {
	// Constant closes keep both averages equal throughout.
	candles := candlesFromCloses(10, 10, 10, 10, 10)
	states, crossings, err := Crossovers(candles, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 2; i < len(states); i++ {
		if states[i] != models.StateBearish {
			t.Fatalf("state %d: equal averages must be bearish, got %s", i, states[i])
		}
	}
	if len(crossings) != 0 {
		t.Fatalf("expected no crossings, got %d", len(crossings))
	}
}

func TestCrossoversFirstDefinedStateNeverEmits(t *testing.T) {
	// Bullish from the first defined index onward: no state change,
	// so no crossing even though the series starts bullish.
	candles := candlesFromCloses(1, 2, 3, 4, 5, 6)
	states, crossings, err := Crossovers(candles, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if states[2] != models.StateBullish {
		t.Fatalf("expected bullish at first defined index, got %s", states[2])
	}
	if len(crossings) != 0 {
		t.Fatalf("expected no crossings on a monotone series, got %d", len(crossings))
	}
}

func TestCrossoversWindowOrder(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3, 4)
	if _, _, err := Crossovers(candles, 3, 2); !errors.Is(err, ErrInvalidWindowOrder) {
		t.Fatalf("expected ErrInvalidWindowOrder, got %v", err)
	}
	// Order is checked before window bounds.
	if _, _, err := Crossovers(nil, 3, 2); !errors.Is(err, ErrInvalidWindowOrder) {
		t.Fatalf("expected ErrInvalidWindowOrder on empty series, got %v", err)
	}
}

func TestCrossoversEqualWindows(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3, 4)
	states, crossings, err := Crossovers(candles, 2, 2)
	if err != nil {
		t.Fatalf("equal windows are valid, got %v", err)
	}
	// Identical averages tie everywhere, so every defined state is
	// bearish and nothing crosses.
	for i := 1; i < len(states); i++ {
		if states[i] != models.StateBearish {
			t.Fatalf("state %d: expected bearish, got %s", i, states[i])
		}
	}
	if len(crossings) != 0 {
		t.Fatalf("expected no crossings, got %d", len(crossings))
	}
}

func TestCrossoversSingleDefinedState(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3)
	_, crossings, err := Crossovers(candles, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(crossings) != 0 {
		t.Fatalf("a single defined state cannot cross, got %d crossings", len(crossings))
	}
}

func TestCrossoversAlternateAndStayOrdered(t *testing.T) {
	// Sustained swings flip the MA relation at indices 5, 7 and 9:
	// MA2 runs 10,10,7,4,12,20,12,4,12 against MA3 10,8,6,9.33,14.67,14.67,9.33,9.33.
	candles := candlesFromCloses(10, 10, 10, 4, 4, 20, 20, 4, 4, 20)
	_, crossings, err := Crossovers(candles, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(crossings) != 3 {
		t.Fatalf("expected 3 crossings, got %d: %+v", len(crossings), crossings)
	}
	if crossings[0].Index != 5 || crossings[0].Type != models.BuyCrossing {
		t.Fatalf("expected buy crossing at index 5, got %+v", crossings[0])
	}
	for i := 1; i < len(crossings); i++ {
		if crossings[i].Index <= crossings[i-1].Index {
			t.Fatalf("crossings out of order at %d: %+v", i, crossings)
		}
		if crossings[i].Type == crossings[i-1].Type {
			t.Fatalf("consecutive crossings must alternate, got %s twice", crossings[i].Type)
		}
	}
}

func TestCrossoversDefinedStateCount(t *testing.T) {
	candles := candlesFromCloses(3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8)
	shortW, longW := 3, 7
	states, _, err := Crossovers(candles, shortW, longW)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defined := 0
	for _, s := range states {
		if s != models.StateUndefined {
			defined++
		}
	}
	if want := len(candles) - longW + 1; defined != want {
		t.Fatalf("expected %d defined states, got %d", want, defined)
	}
}

func TestCrossoversDeterministic(t *testing.T) {
	candles := candlesFromCloses(10, 20, 5, 25, 4, 30, 3, 35)
	s1, c1, err := Crossovers(candles, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, c2, err := Crossovers(candles, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s1) != len(s2) || len(c1) != len(c2) {
		t.Fatalf("repeated runs disagree: %d/%d states, %d/%d crossings", len(s1), len(s2), len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("crossing %d differs between runs: %+v vs %+v", i, c1[i], c2[i])
		}
	}
}

func TestLatestRecommendation(t *testing.T) {
	rec := LatestRecommendation(nil)
	if rec.Action != models.ActionNoSignal {
		t.Fatalf("empty crossings should recommend no signal, got %s", rec.Action)
	}

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	crossings := []models.Crossing{
		{Index: 3, Type: models.BuyCrossing, Price: 12},
		{Index: 7, Time: ts, Type: models.SellCrossing, Price: 11},
	}
	rec = LatestRecommendation(crossings)
	if rec.Action != models.ActionSell {
		t.Fatalf("expected sell, got %s", rec.Action)
	}
	if rec.Price != 11 || rec.Index != 7 || !rec.Time.Equal(ts) {
		t.Fatalf("recommendation should carry the latest crossing, got %+v", rec)
	}
}

func TestLastBarAlert(t *testing.T) {
	crossings := []models.Crossing{
		{Index: 4, Type: models.BuyCrossing, Price: 14},
	}

	alert := LastBarAlert(crossings, 5)
	if !alert.Active || alert.Type != models.BuyCrossing || alert.Price != 14 {
		t.Fatalf("expected active buy alert on the final bar, got %+v", alert)
	}

	// The same crossing one bar in the past is a standing
	// recommendation, not an alert.
	if alert := LastBarAlert(crossings, 6); alert.Active {
		t.Fatalf("stale crossing must not alert, got %+v", alert)
	}

	if alert := LastBarAlert(nil, 5); alert.Active {
		t.Fatalf("no crossings must not alert")
	}
}
