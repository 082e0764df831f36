package models

import "time"

// Candle represents a single OHLCV trading-period sample.
// Series are ordered by ascending Bucket with no duplicate timestamps;
// the signal engine only reads Close.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Tick is a single live trade observation from the market stream.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
