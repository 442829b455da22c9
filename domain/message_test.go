package domain

import (
	"dm-lab/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

	t.Run("should trim content and start unread", func(t *testing.T) {
		req := require.New(t)
		msg, err := NewMessage(uuid.New(), "alice", "bob", "  hi there \n", at)
		req.NoError(err)
		req.Equal("hi there", msg.Content)
		req.Nil(msg.ReadAt)
		req.Equal(at, msg.CreatedAt)
	})

	t.Run("should reject blank content", func(t *testing.T) {
		_, err := NewMessage(uuid.New(), "alice", "bob", " \t ", at)
		require.ErrorIs(t, err, errors.ErrEmptyContent)
		require.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("should reject missing participants", func(t *testing.T) {
		_, err := NewMessage(uuid.New(), "", "bob", "hi", at)
		require.ErrorIs(t, err, errors.ErrEmptyParticipant)
		_, err = NewMessage(uuid.New(), "alice", " ", "hi", at)
		require.ErrorIs(t, err, errors.ErrEmptyParticipant)
	})

	t.Run("should reject messages to self", func(t *testing.T) {
		_, err := NewMessage(uuid.New(), "alice", "alice", "hi", at)
		require.ErrorIs(t, err, errors.ErrSameParticipant)
	})
}

func TestMessage_Before(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	low := uuid.UUID{0x01}
	high := uuid.UUID{0x02}

	req.True(Message{ID: high, CreatedAt: at}.Before(Message{ID: low, CreatedAt: at.Add(time.Nanosecond)}))
	req.True(Message{ID: low, CreatedAt: at}.Before(Message{ID: high, CreatedAt: at}))
	req.False(Message{ID: high, CreatedAt: at}.Before(Message{ID: low, CreatedAt: at}))
}

func TestMessage_PeerOf(t *testing.T) {
	req := require.New(t)
	msg := Message{SenderID: "alice", ReceiverID: "bob"}
	req.Equal("bob", msg.PeerOf("alice"))
	req.Equal("alice", msg.PeerOf("bob"))
	req.True(msg.Involves("bob"))
	req.False(msg.Involves("clara"))
}
