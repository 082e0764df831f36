package models

import "time"

// SignalReport is the consolidated crossover analysis for one symbol.
type SignalReport struct {
	Symbol         string         `json:"symbol"`
	ShortWindow    int            `json:"short_window"`
	LongWindow     int            `json:"long_window"`
	Timestamp      time.Time      `json:"timestamp"`
	Candles        []Candle       `json:"candles"`
	ShortMA        []MAValue      `json:"short_ma"`
	LongMA         []MAValue      `json:"long_ma"`
	States         []State        `json:"states"`
	Crossings      []Crossing     `json:"crossings"`
	Recommendation Recommendation `json:"recommendation"`
	Alert          Alert          `json:"alert"`
}

// ReturnsReport holds descriptive return series for one symbol.
// Both series are aligned to candles[1:].
type ReturnsReport struct {
	Symbol     string          `json:"symbol"`
	Timestamp  time.Time       `json:"timestamp"`
	Daily      []NullableFloat `json:"daily"`      // percent
	Cumulative []NullableFloat `json:"cumulative"` // fraction, compounded
}

// CorrelationReport is the pairwise close-price correlation matrix for
// a portfolio of symbols.
type CorrelationReport struct {
	Symbols   []string          `json:"symbols"`
	Timestamp time.Time         `json:"timestamp"`
	Matrix    [][]NullableFloat `json:"matrix"`
}
