package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"finzen/internal/core"
)

var validate = validator.New()

// RunCompletedMessage announces a finished pipeline run. It carries the run
// summary only; the derived tables stay in the output directory and storage.
type RunCompletedMessage struct {
	RunID       string    `json:"run_id" validate:"required"`
	Source      string    `json:"source" validate:"required"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at" validate:"required"`
	RawRows     int       `json:"raw_rows" validate:"gte=0"`
	Accepted    int       `json:"accepted" validate:"gte=0"`
	Rejected    int       `json:"rejected" validate:"gte=0"`
	Responsible int       `json:"responsible" validate:"gte=0"`
	AtRisk      int       `json:"at_risk" validate:"gte=0"`
	Vulnerable  int       `json:"vulnerable" validate:"gte=0"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRunCompletedMessage builds the message for a run summary.
func NewRunCompletedMessage(run core.RunSummary) *RunCompletedMessage {
	return &RunCompletedMessage{
		RunID:       run.RunID,
		Source:      run.Source,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		RawRows:     run.RawRows,
		Accepted:    run.Accepted,
		Rejected:    run.Rejected,
		Responsible: run.Responsible,
		AtRisk:      run.AtRisk,
		Vulnerable:  run.Vulnerable,
		Timestamp:   time.Now(),
	}
}

// Summary converts the message back into a run summary.
func (m *RunCompletedMessage) Summary() core.RunSummary {
	return core.RunSummary{
		RunID:       m.RunID,
		Source:      m.Source,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		RawRows:     m.RawRows,
		Accepted:    m.Accepted,
		Rejected:    m.Rejected,
		Responsible: m.Responsible,
		AtRisk:      m.AtRisk,
		Vulnerable:  m.Vulnerable,
	}
}

// Validate checks field constraints and that the counts add up.
func (m *RunCompletedMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid run message: %w", err)
	}
	if m.Accepted+m.Rejected != m.RawRows {
		return fmt.Errorf("invalid run message: accepted %d + rejected %d != raw rows %d", m.Accepted, m.Rejected, m.RawRows)
	}
	if m.Responsible+m.AtRisk+m.Vulnerable != m.Accepted {
		return fmt.Errorf("invalid run message: class counts do not add up to %d accepted", m.Accepted)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunCompletedMessageFromJSON decodes and validates a message.
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
