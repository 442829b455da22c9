package services

import (
	"context"
	"dm-lab/domain"
	"dm-lab/domain/chat"
	"dm-lab/projection"
	"dm-lab/repositories"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type IMessageService interface {
	SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (domain.MessageView, error)
	FetchMessages(ctx context.Context, cmd chat.FetchMessagesCommand) ([]domain.MessageView, error)
	MarkRead(ctx context.Context, cmd chat.MarkReadCommand) (int, error)
	ListConversations(ctx context.Context, cmd chat.ListConversationsCommand) ([]domain.ConversationView, error)
}

type MessageService struct {
	log               *slog.Logger
	messageRepository repositories.IMessageRepository
	profileRepository repositories.IProfileRepository
	maxContentLength  int
}

func NewMessageService(
	log *slog.Logger,
	messageRepository repositories.IMessageRepository,
	profileRepository repositories.IProfileRepository,
	maxContentLength int,
) *MessageService {
	return &MessageService{
		log:               log,
		messageRepository: messageRepository,
		profileRepository: profileRepository,
		maxContentLength:  maxContentLength,
	}
}

// SendMessage validates the command, appends the message and returns it
// with both participants' display identity.
func (s *MessageService) SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (domain.MessageView, error) {
	// Rejected before any store access
	if err := chat.ValidateSend(cmd, s.maxContentLength); err != nil {
		return domain.MessageView{}, err
	}
	senderID, receiverID := strings.TrimSpace(cmd.SenderID), strings.TrimSpace(cmd.ReceiverID)
	// Identities are resolved first: once appended, the send must not fail.
	identities, err := s.profileRepository.GetIdentities(ctx, senderID, receiverID)
	if err != nil {
		return domain.MessageView{}, err
	}
	message, err := s.messageRepository.Append(ctx, senderID, receiverID, cmd.Content)
	if err != nil {
		return domain.MessageView{}, err
	}
	return toMessageView(message, identities), nil
}

// FetchMessages returns the conversation between the two participants, oldest first.
// With a cursor, messages created at the cursor itself are returned again:
// callers deduplicate by id.
func (s *MessageService) FetchMessages(ctx context.Context, cmd chat.FetchMessagesCommand) ([]domain.MessageView, error) {
	if err := chat.ValidateFetch(cmd); err != nil {
		return nil, err
	}
	senderID, receiverID := strings.TrimSpace(cmd.SenderID), strings.TrimSpace(cmd.ReceiverID)
	messages, err := s.messageRepository.FetchBetween(ctx, senderID, receiverID, cmd.After)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []domain.MessageView{}, nil
	}
	identities, err := s.profileRepository.GetIdentities(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(message domain.Message, _ int) domain.MessageView {
		return toMessageView(message, identities)
	}), nil
}

// MarkRead marks what the receiver got from the sender as read.
// Zero updated messages is not an error.
func (s *MessageService) MarkRead(ctx context.Context, cmd chat.MarkReadCommand) (int, error) {
	if err := chat.ValidateMarkRead(cmd); err != nil {
		return 0, err
	}
	updated, err := s.messageRepository.MarkRead(ctx,
		strings.TrimSpace(cmd.ReceiverID), strings.TrimSpace(cmd.SenderID))
	if err != nil {
		return updated, err
	}
	s.log.Debug("Read state updated", "receiver", cmd.ReceiverID, "sender", cmd.SenderID, "updated", updated)
	return updated, nil
}

// ListConversations folds every message of the user, read from one store
// snapshot, into one summary per peer, most recent first.
func (s *MessageService) ListConversations(ctx context.Context, cmd chat.ListConversationsCommand) ([]domain.ConversationView, error) {
	if err := chat.ValidateList(cmd); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(cmd.UserID)
	fold := projection.NewConversationFold(userID)
	err := s.messageRepository.ScanParticipant(ctx, userID, func(message domain.Message) error {
		fold.Add(message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	conversations := fold.Conversations()
	if len(conversations) == 0 {
		return []domain.ConversationView{}, nil
	}
	peers := lo.Map(conversations, func(c domain.Conversation, _ int) string { return c.PeerID })
	identities, err := s.profileRepository.GetIdentities(ctx, peers...)
	if err != nil {
		return nil, err
	}
	return lo.Map(conversations, func(c domain.Conversation, _ int) domain.ConversationView {
		return domain.ConversationView{Conversation: c, Peer: identityOf(identities, c.PeerID)}
	}), nil
}

func toMessageView(message domain.Message, identities map[string]domain.Identity) domain.MessageView {
	return domain.MessageView{
		Message:  message,
		Sender:   identityOf(identities, message.SenderID),
		Receiver: identityOf(identities, message.ReceiverID),
	}
}

func identityOf(identities map[string]domain.Identity, id string) domain.Identity {
	if identity, ok := identities[id]; ok {
		return identity
	}
	return domain.Identity{ID: id}
}
