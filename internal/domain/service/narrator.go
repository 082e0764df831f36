package service

import "context"

// Narrator turns a textual valuation summary into free-form commentary.
// It is an opaque external call: it may fail or time out, and callers
// must not let that abort the numeric pipeline.
type Narrator interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
