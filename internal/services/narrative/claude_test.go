package narrative

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockSight/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestClaude(t *testing.T, body string) *Claude {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClaude(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger(t))
}

func TestSummarizeConcatenatesTextBlocks(t *testing.T) {
	c := newTestClaude(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [
			{"type": "text", "text": "Looks reasonably valued."},
			{"type": "text", "text": " Key risk: growth rate."}
		],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 12}
	}`)

	got, err := c.Summarize(context.Background(), "summarize this valuation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Looks reasonably valued. Key risk: growth rate."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSummarizeRejectsEmptyContent(t *testing.T) {
	c := newTestClaude(t, `{
		"id": "msg_2",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 0}
	}`)

	if _, err := c.Summarize(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for reply without text content")
	}
}
