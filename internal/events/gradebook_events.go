package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "gradequest-service"
	eventVersion = "1.0"
)

// EventType represents the gradebook events published after store writes.
type EventType string

const (
	// Score events
	EventScoreUpdated EventType = "score.updated"

	// Reward events
	EventRewardBalanceResynced   EventType = "reward.balance_resynced"
	EventRewardBalanceOverridden EventType = "reward.balance_overridden"
	EventRewardRedeemed          EventType = "reward.redeemed"
	EventRewardRedemptionDenied  EventType = "reward.redemption_denied"
)

// Event is the envelope for every gradebook event.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ScoreUpdatedEvent struct {
	StudentID string `json:"student_id"`
	Subject   string `json:"subject"`
	Field     string `json:"field"`
	Index     *int   `json:"index,omitempty"`
	Value     string `json:"value"`
	Total     int    `json:"total"`
	Grade     string `json:"grade"`
	Rank      string `json:"rank"`
}

type RewardBalanceEvent struct {
	StudentID     string `json:"student_id"`
	Subject       string `json:"subject"`
	Previous      int    `json:"previous"`
	Balance       int    `json:"balance"`
	RedeemedCount int    `json:"redeemed_count"`
	Entitlement   int    `json:"entitlement"`
	Reason        string `json:"reason,omitempty"`
}

type RewardRedemptionEvent struct {
	StudentID     string `json:"student_id"`
	Subject       string `json:"subject"`
	Balance       int    `json:"balance"`
	RedeemedCount int    `json:"redeemed_count"`
	Corrected     bool   `json:"corrected"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewScoreUpdatedEvent(data ScoreUpdatedEvent) *Event {
	return newEvent(EventScoreUpdated, data)
}

// NewBalanceResyncedEvent is emitted when the stored balance was rewritten
// to the recomputed entitlement.
func NewBalanceResyncedEvent(data RewardBalanceEvent) *Event {
	return newEvent(EventRewardBalanceResynced, data)
}

func NewBalanceOverriddenEvent(data RewardBalanceEvent) *Event {
	return newEvent(EventRewardBalanceOverridden, data)
}

func NewRewardRedeemedEvent(data RewardRedemptionEvent) *Event {
	return newEvent(EventRewardRedeemed, data)
}

func NewRedemptionDeniedEvent(data RewardRedemptionEvent) *Event {
	return newEvent(EventRewardRedemptionDenied, data)
}

func GenerateEventID() string {
	return uuid.NewString()
}
