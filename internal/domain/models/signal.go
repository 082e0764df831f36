package models

import "time"

// MAValue is one point of a moving-average series aligned to a candle
// series. Valid is false for the first window-1 points, where there is
// not enough trailing history; an invalid point is distinguishable
// from a true zero average.
type MAValue struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// State classifies the trend at one aligned point.
type State string

const (
	StateUndefined State = "undefined"
	StateBullish   State = "bullish"
	StateBearish   State = "bearish"
)

// CrossingType tags the direction of a moving-average crossover.
type CrossingType string

const (
	BuyCrossing  CrossingType = "buy"
	SellCrossing CrossingType = "sell"
)

// Crossing marks an index where the trend state flipped relative to
// the previous defined point. Crossings are derived from states, never
// stored independently.
type Crossing struct {
	Index int          `json:"index"`
	Time  time.Time    `json:"time"`
	Type  CrossingType `json:"type"`
	Price float64      `json:"price"` // close at Index
}

// Action is the standing trade recommendation derived from crossings.
type Action string

const (
	ActionBuy      Action = "buy"
	ActionSell     Action = "sell"
	ActionNoSignal Action = "no_signal"
)

// Recommendation carries the most recent crossing direction, however
// long ago it occurred.
type Recommendation struct {
	Action Action    `json:"action"`
	Price  float64   `json:"price,omitempty"`
	Time   time.Time `json:"time,omitempty"`
	Index  int       `json:"index"`
}

// Alert fires only when the signal changed on the most recent bar.
type Alert struct {
	Active bool         `json:"active"`
	Type   CrossingType `json:"type,omitempty"`
	Price  float64      `json:"price,omitempty"`
	Time   time.Time    `json:"time,omitempty"`
}

// AlertEvent is the wire form of a last-bar crossing published to the
// alerts topic.
type AlertEvent struct {
	Symbol      string       `json:"symbol"`
	Type        CrossingType `json:"type"`
	Price       float64      `json:"price"`
	Time        time.Time    `json:"time"`
	ShortWindow int          `json:"short_window"`
	LongWindow  int          `json:"long_window"`
}
