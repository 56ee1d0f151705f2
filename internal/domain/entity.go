package domain

import (
	"fmt"
	"time"
)

// BotStatus represents the lifecycle state of a persisted bot.
type BotStatus string

const (
	StatusActive   BotStatus = "Active"
	StatusPaused   BotStatus = "Paused"
	StatusArchived BotStatus = "Archived"
)

// Valid reports whether s is a known status.
func (s BotStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// InvalidTransitionError reports an illegal status change.
type InvalidTransitionError struct {
	From BotStatus
	To   BotStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Transition checks the lifecycle rules for moving from s to target.
// Active and Paused convert freely in both directions, either may be
// archived, and Archived is terminal. Same-state transitions are no-ops.
func (s BotStatus) Transition(target BotStatus) error {
	if !target.Valid() {
		return &InvalidTransitionError{From: s, To: target}
	}
	if s == target {
		return nil
	}
	if s == StatusArchived {
		return &InvalidTransitionError{From: s, To: target}
	}
	return nil
}

// BotEntity is the durable representation of a bot: its validated
// configuration plus lifecycle status and audit metadata. Version is the
// optimistic-concurrency token bumped on every successful update.
type BotEntity struct {
	Config    BotConfig `json:"config"`
	Status    BotStatus `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ID is a convenience accessor for the embedded configuration's id.
func (e *BotEntity) ID() string {
	return e.Config.Base().ID
}
