package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finzen/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial AMQP: connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed delivery channel", errors.New("message channel closed"), true},
		{"amqp closed", fmt.Errorf("consume: %w", amqp091.ErrClosed), true},
		{"validation error", errors.New("invalid run message"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "finzen", queueName: "pipeline_runs"}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("circuit should start closed")
		}
	})

	t.Run("failures open the circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("circuit should be open after max failures")
		}
	})

	t.Run("success closes the circuit", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() {
			t.Error("circuit should be closed after success")
		}
		if atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("failure count should reset")
		}
	})

	t.Run("open circuit turns half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		if client.isCircuitOpen() {
			t.Error("circuit should allow a trial after the timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("state should be half-open")
		}
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("state should be open again")
		}
	})
}

func TestClient_PublishRunCompleted_Guards(t *testing.T) {
	msg := NewRunCompletedMessage(validSummary())

	t.Run("cancelled context", func(t *testing.T) {
		client := &Client{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := client.PublishRunCompleted(ctx, msg); err != context.Canceled {
			t.Errorf("got %v, want context.Canceled", err)
		}
	})

	t.Run("open circuit", func(t *testing.T) {
		client := &Client{state: StateOpen, lastFailure: time.Now()}
		err := client.PublishRunCompleted(context.Background(), msg)
		if !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("got %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("invalid message is not sent", func(t *testing.T) {
		client := &Client{}
		bad := *msg
		bad.RunID = ""
		err := client.PublishRunCompleted(context.Background(), &bad)
		if err == nil || !strings.Contains(err.Error(), "invalid run message") {
			t.Errorf("got %v, want validation error", err)
		}
	})
}

func validSummary() core.RunSummary {
	finished := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return core.RunSummary{
		RunID:       "6f1c2a4e-0000-4000-8000-000000000001",
		Source:      "file",
		StartedAt:   finished.Add(-time.Second),
		FinishedAt:  finished,
		RawRows:     5,
		Accepted:    4,
		Rejected:    1,
		Responsible: 2,
		AtRisk:      1,
		Vulnerable:  1,
	}
}

func TestRunCompletedMessage_JSON(t *testing.T) {
	msg := NewRunCompletedMessage(validSummary())
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"6f1c2a4e-0000-4000-8000-000000000001"`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	parsed, err := RunCompletedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("RunCompletedMessageFromJSON() error = %v", err)
	}
	got := parsed.Summary()
	want := validSummary()
	if got.RunID != want.RunID || got.Accepted != want.Accepted || got.Vulnerable != want.Vulnerable {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
	if !got.FinishedAt.Equal(want.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, want.FinishedAt)
	}
}

func TestRunCompletedMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"run_id": 12`},
		{"wrong type", `{"run_id": "x", "accepted": "four"}`},
		{"missing run id", `{"source": "file", "finished_at": "2026-03-01T10:00:00Z", "raw_rows": 0}`},
		{"counts disagree", `{"run_id": "x", "source": "file", "finished_at": "2026-03-01T10:00:00Z", "raw_rows": 3, "accepted": 1, "rejected": 1, "responsible": 1}`},
		{"classes disagree", `{"run_id": "x", "source": "file", "finished_at": "2026-03-01T10:00:00Z", "raw_rows": 2, "accepted": 2, "responsible": 1}`},
		{"negative count", `{"run_id": "x", "source": "file", "finished_at": "2026-03-01T10:00:00Z", "raw_rows": 0, "accepted": 1, "rejected": -1, "responsible": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunCompletedMessageFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
