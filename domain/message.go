// Package domain contains core concepts of the direct messaging system.
// This file defines Message records and the rules they obey.
// Messages are immutable except for their read timestamp.
package domain

import (
	"bytes"
	"dm-lab/errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a point-to-point text message between two participants.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
	ReadAt     *time.Time // nil until the receiver reads it
}

// NewMessage validates the participants and content and builds an unread message.
// Content is stored trimmed.
func NewMessage(id uuid.UUID, senderID, receiverID, content string, at time.Time) (Message, error) {
	if err := ValidatePair(senderID, receiverID); err != nil {
		return Message{}, err
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, errors.ErrEmptyContent
	}
	return Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    trimmed,
		CreatedAt:  at.UTC(),
	}, nil
}

// ValidatePair rejects empty or identical participant ids.
func ValidatePair(a, b string) error {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return errors.ErrEmptyParticipant
	}
	if a == b {
		return errors.ErrSameParticipant
	}
	return nil
}

// IsRead reports whether the receiver has read the message.
func (m Message) IsRead() bool {
	return m.ReadAt != nil
}

// PeerOf returns the other participant as seen by user.
func (m Message) PeerOf(user string) string {
	if m.SenderID == user {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether user is the sender or the receiver.
func (m Message) Involves(user string) bool {
	return m.SenderID == user || m.ReceiverID == user
}

// Before orders messages by (CreatedAt, ID).
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return bytes.Compare(m.ID[:], other.ID[:]) < 0
}
