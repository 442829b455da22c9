package projection

import (
	"dm-lab/domain"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func message(sender, receiver, content string, at time.Time, read bool) domain.Message {
	m := domain.Message{
		ID:         uuid.Must(uuid.NewV7()),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  at,
	}
	if read {
		m.ReadAt = lo.ToPtr(at.Add(time.Second))
	}
	return m
}

// aggregate folds a complete message set in one call.
func aggregate(viewer string, messages []domain.Message) []domain.Conversation {
	fold := NewConversationFold(viewer)
	for _, message := range messages {
		fold.Add(message)
	}
	return fold.Conversations()
}

func TestConversationFold(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	messages := []domain.Message{
		message("alice", "bob", "Hello", at, true),
		message("alice", "bob", "How are you", at.Add(2*time.Minute), false),
		message("alice", "bob", "?", at.Add(3*time.Minute), false),
		message("bob", "clara", "Lunch?", at.Add(5*time.Minute), false),
		message("clara", "bob", "Sure", at.Add(1*time.Minute), false),
		message("alice", "clara", "not for bob", at.Add(10*time.Minute), false),
	}

	t.Run("should summarise one conversation per peer, newest first", func(t *testing.T) {
		req := require.New(t)
		conversations := aggregate("bob", messages)
		req.Len(conversations, 2)

		req.Equal("clara", conversations[0].PeerID)
		req.Equal("Lunch?", conversations[0].LastMessage.Content)
		req.True(conversations[0].IsLastMessageMine)
		req.Equal(1, conversations[0].UnreadCount)

		req.Equal("alice", conversations[1].PeerID)
		req.Equal("?", conversations[1].LastMessage.Content)
		req.Equal(at.Add(3*time.Minute), conversations[1].LastMessageTime)
		req.False(conversations[1].IsLastMessageMine)
		req.Equal(2, conversations[1].UnreadCount)
	})

	t.Run("should not count messages the viewer sent as unread", func(t *testing.T) {
		req := require.New(t)
		conversations := aggregate("alice", messages)
		req.Len(conversations, 2)
		for _, conversation := range conversations {
			req.Zero(conversation.UnreadCount)
			req.True(conversation.IsLastMessageMine)
		}
	})

	t.Run("should not depend on input order", func(t *testing.T) {
		req := require.New(t)
		expected := aggregate("bob", messages)
		for range 20 {
			shuffled := append([]domain.Message{}, messages...)
			rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			req.Equal(expected, aggregate("bob", shuffled))
		}
	})

	t.Run("should break timestamp ties by id", func(t *testing.T) {
		req := require.New(t)
		first := message("alice", "bob", "first", at, false)
		second := message("bob", "alice", "second", at, false)
		first.ID, second.ID = uuid.UUID{0x01}, uuid.UUID{0x02}

		conversations := aggregate("bob", []domain.Message{second, first})
		req.Len(conversations, 1)
		req.Equal("second", conversations[0].LastMessage.Content)
		req.Equal(1, conversations[0].UnreadCount)
	})

	t.Run("should return nothing for strangers", func(t *testing.T) {
		req := require.New(t)
		req.Empty(aggregate("dave", messages))
		req.Empty(aggregate("bob", nil))
	})
}
