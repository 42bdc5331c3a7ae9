package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedEvent is the dedup marker for an inbound event id.
// Created once on first admission, never updated or removed.
type ProcessedEvent struct {
	EventID    string    `json:"event_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// HandleResult summarizes what the orchestration engine did with one inbound event.
type HandleResult struct {
	EventID      string
	Duplicate    bool
	Transactions []uuid.UUID
}
