package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	event := NewRewardRedeemedEvent(RewardRedemptionEvent{
		StudentID:     "65001",
		Subject:       "M5_History",
		Balance:       1,
		RedeemedCount: 2,
	})

	msg, err := NewMessage(event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "reward.redeemed", msg.Metadata.Get("event_type"))
	assert.Equal(t, "gradequest-service", msg.Metadata.Get("source"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "65001", data["student_id"])
	assert.Equal(t, float64(2), data["redeemed_count"])
}

func TestGenerateEventID(t *testing.T) {
	a, b := GenerateEventID(), GenerateEventID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(nil)
	ctx := context.Background()

	require.NoError(t, pub.PublishEvent(ctx, NewScoreUpdatedEvent(ScoreUpdatedEvent{StudentID: "1"})))
	require.NoError(t, pub.PublishEvent(ctx, NewRedemptionDeniedEvent(RewardRedemptionEvent{StudentID: "1"})))

	assert.Len(t, pub.GetPublishedEvents(), 2)
	assert.Len(t, pub.EventsOfType(EventRewardRedemptionDenied), 1)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
}
