package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"transaction_id": "tbx-999", "rating": 5}

	ev, err := NewEvent("storefront.review.created", "tbx-999", "review", "review-bot", payload)
	require.NoError(t, err)

	_, err = uuid.Parse(ev.EventID)
	assert.NoError(t, err, "event id is a uuid")
	assert.Equal(t, "storefront.review.created", ev.EventType)
	assert.Equal(t, "tbx-999", ev.AggregateID)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())

	var data map[string]any
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, "tbx-999", data["transaction_id"])
}

func TestNewEventUnmarshalableData(t *testing.T) {
	_, err := NewEvent("t", "a", "at", "s", make(chan int))
	require.Error(t, err)
}

func TestEventMarshalRoundTrip(t *testing.T) {
	ev, err := NewEvent("storefront.review.created", "tbx-999", "review", "review-bot", map[string]string{"k": "v"})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-123")

	raw, err := ev.Marshal()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ev.EventID, decoded.EventID)
	assert.Equal(t, "corr-123", decoded.CorrelationID)
}
