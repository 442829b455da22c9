package services

import (
	"context"
	"dm-lab/domain"
	"dm-lab/domain/chat"
	"dm-lab/errors"
	"dm-lab/repositories"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newStoredService(t *testing.T) *MessageService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	var mu sync.Mutex
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	messageRepository := repositories.NewMessageRepository(db, log, nil).WithClock(clock)
	profileRepository := repositories.NewProfileRepository(db)
	require.NoError(t, profileRepository.SaveProfile(context.Background(),
		repositories.Profile{ID: "alice", Name: "Alice", Email: "alice@example.com"}))
	return NewMessageService(log, messageRepository, profileRepository, 0)
}

func conversationWith(t *testing.T, svc *MessageService, user, peer string) (domain.ConversationView, bool) {
	t.Helper()
	views, err := svc.ListConversations(context.Background(), chat.ListConversationsCommand{UserID: user})
	require.NoError(t, err)
	for _, view := range views {
		if view.PeerID == peer {
			return view, true
		}
	}
	return domain.ConversationView{}, false
}

func Test_Scenario_Unread_Accounting(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newStoredService(t)

	// Strangers have no conversation
	_, found := conversationWith(t, svc, "bob", "alice")
	req.False(found)
	_, found = conversationWith(t, svc, "alice", "bob")
	req.False(found)

	// A sends "Hello"
	sent, err := svc.SendMessage(ctx, chat.SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: "Hello"})
	req.NoError(err)
	req.Equal("Alice", sent.Sender.Name)
	req.Equal(domain.Identity{ID: "bob"}, sent.Receiver)
	req.Nil(sent.ReadAt)

	conversation, found := conversationWith(t, svc, "bob", "alice")
	req.True(found)
	req.Equal("Hello", conversation.LastMessage.Content)
	req.Equal(1, conversation.UnreadCount)
	req.False(conversation.IsLastMessageMine)
	req.Equal("alice@example.com", conversation.Peer.Email)

	// B reads
	updated, err := svc.MarkRead(ctx, chat.MarkReadCommand{ReceiverID: "bob", SenderID: "alice"})
	req.NoError(err)
	req.Equal(1, updated)
	conversation, _ = conversationWith(t, svc, "bob", "alice")
	req.Zero(conversation.UnreadCount)

	// Second call changes nothing
	updated, err = svc.MarkRead(ctx, chat.MarkReadCommand{ReceiverID: "bob", SenderID: "alice"})
	req.NoError(err)
	req.Zero(updated)

	// A sends "How are you"
	_, err = svc.SendMessage(ctx, chat.SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: "How are you"})
	req.NoError(err)
	conversation, _ = conversationWith(t, svc, "bob", "alice")
	req.Equal(1, conversation.UnreadCount)
	req.Equal("How are you", conversation.LastMessage.Content)

	// The sender side never has unread messages of its own
	conversation, _ = conversationWith(t, svc, "alice", "bob")
	req.Zero(conversation.UnreadCount)
	req.True(conversation.IsLastMessageMine)
}

func Test_Scenario_Empty_Content_Creates_Nothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newStoredService(t)

	_, err := svc.SendMessage(ctx, chat.SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: ""})
	req.ErrorIs(err, errors.ErrValidation)

	messages, err := svc.FetchMessages(ctx, chat.FetchMessagesCommand{SenderID: "bob", ReceiverID: "alice"})
	req.NoError(err)
	req.Empty(messages)
	_, found := conversationWith(t, svc, "bob", "alice")
	req.False(found)
}

func Test_Scenario_Polling_With_Cursor(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newStoredService(t)

	for _, content := range []string{"one", "two"} {
		_, err := svc.SendMessage(ctx, chat.SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: content})
		req.NoError(err)
	}
	first, err := svc.FetchMessages(ctx, chat.FetchMessagesCommand{SenderID: "bob", ReceiverID: "alice"})
	req.NoError(err)
	req.Len(first, 2)
	cursor := first[1].CreatedAt

	_, err = svc.SendMessage(ctx, chat.SendMessageCommand{SenderID: "bob", ReceiverID: "alice", Content: "three"})
	req.NoError(err)

	next, err := svc.FetchMessages(ctx, chat.FetchMessagesCommand{SenderID: "bob", ReceiverID: "alice", After: &cursor})
	req.NoError(err)
	req.Len(next, 2)
	req.Equal(first[1].ID, next[0].ID)
	req.Equal("three", next[1].Content)
}
