package server

import (
	"context"
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/domain/chat"
	"dm-lab/errors"
	"dm-lab/grpc/dmv1"
	"dm-lab/repositories"
	"dm-lab/services"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
)

type MessageServer struct {
	dmv1.UnimplementedMessageServiceServer
	messageService    services.IMessageService
	profileRepository repositories.IProfileRepository
	log               *slog.Logger
	requestTimeout    time.Duration
}

func NewMessageServer(log *slog.Logger, messageService services.IMessageService,
	profileRepository repositories.IProfileRepository, requestTimeout time.Duration) *MessageServer {
	return &MessageServer{
		messageService:    messageService,
		profileRepository: profileRepository,
		log:               log,
		requestTimeout:    requestTimeout,
	}
}

// SendMessage persists a message authored by the caller.
func (s *MessageServer) SendMessage(ctx context.Context, req *dmv1.SendMessageRequest) (*dmv1.SendMessageResponse, error) {
	if err := s.authorize(ctx, req.SenderID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	view, err := s.messageService.SendMessage(ctx, chat.SendMessageCommand{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		return nil, s.fail("SendMessage", err)
	}
	return &dmv1.SendMessageResponse{Message: dmv1.FromMessageView(view)}, nil
}

// FetchMessages returns a conversation the caller takes part in.
func (s *MessageServer) FetchMessages(ctx context.Context, req *dmv1.FetchMessagesRequest) (*dmv1.FetchMessagesResponse, error) {
	if err := s.authorize(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	views, err := s.messageService.FetchMessages(ctx, chat.FetchMessagesCommand{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		After:      req.After,
	})
	if err != nil {
		return nil, s.fail("FetchMessages", err)
	}
	return &dmv1.FetchMessagesResponse{Messages: dmv1.FromMessageViews(views)}, nil
}

// MarkRead acknowledges what the caller received from a peer.
func (s *MessageServer) MarkRead(ctx context.Context, req *dmv1.MarkReadRequest) (*dmv1.MarkReadResponse, error) {
	if err := s.authorize(ctx, req.ReceiverID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := s.messageService.MarkRead(ctx, chat.MarkReadCommand{
		ReceiverID: req.ReceiverID,
		SenderID:   req.SenderID,
	})
	if err != nil {
		return nil, s.fail("MarkRead", err)
	}
	return &dmv1.MarkReadResponse{Success: true, Updated: updated}, nil
}

// ListConversations returns the caller's conversation summaries.
func (s *MessageServer) ListConversations(ctx context.Context, req *dmv1.ListConversationsRequest) (*dmv1.ListConversationsResponse, error) {
	if err := s.authorize(ctx, req.UserID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	views, err := s.messageService.ListConversations(ctx, chat.ListConversationsCommand{UserID: req.UserID})
	if err != nil {
		return nil, s.fail("ListConversations", err)
	}
	return &dmv1.ListConversationsResponse{
		Conversations: lo.Map(views, func(view domain.ConversationView, _ int) dmv1.Conversation {
			return dmv1.FromConversationView(view)
		}),
	}, nil
}

// PutProfile lets the caller publish its own display identity.
func (s *MessageServer) PutProfile(ctx context.Context, req *dmv1.PutProfileRequest) (*dmv1.PutProfileResponse, error) {
	if err := s.authorize(ctx, req.ID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.profileRepository.SaveProfile(ctx, repositories.Profile{ID: req.ID, Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, s.fail("PutProfile", err)
	}
	return &dmv1.PutProfileResponse{}, nil
}

// authorize requires an authenticated caller equal to one of the allowed participants.
// Requests naming no participant at all are reported as invalid rather than forbidden.
func (s *MessageServer) authorize(ctx context.Context, allowed ...string) error {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return errors.MapToGRPCError(errors.ErrUnauthenticated)
	}
	allowed = lo.Compact(lo.Map(allowed, func(id string, _ int) string { return strings.TrimSpace(id) }))
	if len(allowed) == 0 {
		return errors.MapToGRPCError(errors.ErrEmptyParticipant)
	}
	if !lo.Contains(allowed, caller) {
		return errors.MapToGRPCError(errors.ErrForbidden)
	}
	return nil
}

func (s *MessageServer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

func (s *MessageServer) fail(method string, err error) error {
	s.log.Debug("Request failed", "method", method, "error", err)
	return errors.MapToGRPCError(err)
}
