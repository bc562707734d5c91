package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	before := time.Now()
	msg := NewMessage("olá", SenderUser)

	require.NotEmpty(t, msg.ID)
	assert.Equal(t, SenderUser, msg.Sender)
	assert.Equal(t, "olá", msg.Text)
	assert.False(t, msg.Timestamp.Before(before))

	other := NewMessage("olá", SenderUser)
	assert.NotEqual(t, msg.ID, other.ID, "ids must be unique")
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "", ClockLabel(time.Time{}), "zero timestamp renders empty")

	ts := time.Date(2025, 4, 25, 9, 5, 0, 0, time.Local)
	assert.Equal(t, "09:05", ClockLabel(ts))

	msg := Message{Timestamp: ts}
	assert.Equal(t, "09:05", msg.ClockLabel())
}
