package server

import (
	"context"
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/grpc/client"
	"dm-lab/grpc/dmv1"
	"dm-lab/repositories"
	"dm-lab/services"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "a-test-secret-that-is-long-enough-for-hs256"

type MessageServerSuite struct {
	suite.Suite
	db       *badger.DB
	server   *grpc.Server
	conn     *grpc.ClientConn
	tokens   auth.Tokens
	alice    *client.MessageClient
	bob      *client.MessageClient
	stranger *client.MessageClient
}

func TestMessageServerSuite(t *testing.T) {
	suite.Run(t, new(MessageServerSuite))
}

func (s *MessageServerSuite) SetupTest() {
	req := s.Require()
	var err error
	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s.tokens, err = auth.NewTokens(testSecret, time.Hour)
	req.NoError(err)

	messageRepository := repositories.NewMessageRepository(s.db, log, nil)
	profileRepository := repositories.NewProfileRepository(s.db)
	messageService := services.NewMessageService(log, messageRepository, profileRepository, 100)

	listener := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer(grpc.UnaryInterceptor(auth.UnaryInterceptor(s.tokens)))
	dmv1.RegisterMessageServiceServer(s.server, NewMessageServer(log, messageService, profileRepository, 5*time.Second))
	go func() { _ = s.server.Serve(listener) }()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)

	s.alice = s.clientFor("alice")
	s.bob = s.clientFor("bob")
	s.stranger = s.clientFor("mallory")
}

func (s *MessageServerSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
	_ = s.db.Close()
}

func (s *MessageServerSuite) clientFor(userID string) *client.MessageClient {
	token, err := s.tokens.GenerateToken(userID)
	s.Require().NoError(err)
	return client.NewMessageClient(s.conn, token)
}

func (s *MessageServerSuite) TestConversationLifecycle() {
	req := s.Require()
	ctx := context.Background()
	req.NoError(s.alice.PutProfile(ctx, domain.Identity{ID: "alice", Name: "Alice", Email: "alice@example.com"}))

	sent, err := s.alice.SendMessage(ctx, "alice", "bob", "Hello")
	req.NoError(err)
	req.Equal("Hello", sent.Content)
	req.Equal("Alice", sent.Sender.Name)
	req.Equal("bob", sent.Receiver.ID)
	req.Nil(sent.ReadAt)

	conversations, err := s.bob.ListConversations(ctx, "bob")
	req.NoError(err)
	req.Len(conversations, 1)
	req.Equal("alice", conversations[0].Peer.ID)
	req.Equal("alice@example.com", conversations[0].Peer.Email)
	req.Equal("Hello", conversations[0].LastMessage)
	req.Equal(sent.ID.String(), conversations[0].LastMessageID)
	req.Equal(1, conversations[0].UnreadCount)
	req.False(conversations[0].IsLastMessageMine)

	messages, err := s.bob.FetchMessages(ctx, "bob", "alice", nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(sent.ID, messages[0].ID)
	req.True(sent.CreatedAt.Equal(messages[0].CreatedAt))

	updated, err := s.bob.MarkRead(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(1, updated)
	updated, err = s.bob.MarkRead(ctx, "bob", "alice")
	req.NoError(err)
	req.Zero(updated)

	conversations, err = s.bob.ListConversations(ctx, "bob")
	req.NoError(err)
	req.Zero(conversations[0].UnreadCount)

	// Polling from the cursor returns the boundary message and the new one
	_, err = s.alice.SendMessage(ctx, "alice", "bob", "How are you")
	req.NoError(err)
	cursor := messages[0].CreatedAt
	messages, err = s.bob.FetchMessages(ctx, "bob", "alice", &cursor)
	req.NoError(err)
	req.Len(messages, 2)
	req.NotNil(messages[0].ReadAt)
	req.Equal("How are you", messages[1].Content)
}

func (s *MessageServerSuite) TestValidationErrors() {
	req := s.Require()
	ctx := context.Background()

	_, err := s.alice.SendMessage(ctx, "alice", "bob", "   ")
	req.Equal(codes.InvalidArgument, status.Code(err))

	_, err = s.alice.SendMessage(ctx, "alice", "alice", "hi")
	req.Equal(codes.InvalidArgument, status.Code(err))

	_, err = s.alice.FetchMessages(ctx, "alice", "", nil)
	req.Equal(codes.InvalidArgument, status.Code(err))

	_, err = s.alice.FetchMessages(ctx, "", "", nil)
	req.Equal(codes.InvalidArgument, status.Code(err))

	messages, err := s.bob.FetchMessages(ctx, "bob", "alice", nil)
	req.NoError(err)
	req.Empty(messages)
}

func (s *MessageServerSuite) TestCallerMustBeParticipant() {
	req := s.Require()
	ctx := context.Background()

	_, err := s.stranger.SendMessage(ctx, "alice", "bob", "spoofed")
	req.Equal(codes.PermissionDenied, status.Code(err))

	_, err = s.stranger.FetchMessages(ctx, "alice", "bob", nil)
	req.Equal(codes.PermissionDenied, status.Code(err))

	_, err = s.alice.MarkRead(ctx, "bob", "alice")
	req.Equal(codes.PermissionDenied, status.Code(err))

	_, err = s.stranger.ListConversations(ctx, "bob")
	req.Equal(codes.PermissionDenied, status.Code(err))

	err = s.stranger.PutProfile(ctx, domain.Identity{ID: "alice", Name: "Not Alice"})
	req.Equal(codes.PermissionDenied, status.Code(err))
}

func (s *MessageServerSuite) TestMissingToken() {
	anonymous := client.NewMessageClient(s.conn, "")
	_, err := anonymous.ListConversations(context.Background(), "alice")
	s.Require().Equal(codes.Unauthenticated, status.Code(err))
}
