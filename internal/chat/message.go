package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one conversational turn. Immutable once created; ordering is
// by append order, the timestamp is display-only.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id and the current time.
func NewMessage(text string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// ClockLabel renders a short local-time label (24-hour HH:MM) for display.
// A zero timestamp renders as the empty string.
func ClockLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04")
}

// ClockLabel returns the display label for the message's timestamp.
func (m Message) ClockLabel() string {
	return ClockLabel(m.Timestamp)
}
