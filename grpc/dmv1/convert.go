package dmv1

import (
	"dm-lab/domain"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

func FromMessageView(view domain.MessageView) Message {
	return Message{
		ID:         view.ID.String(),
		SenderID:   view.SenderID,
		ReceiverID: view.ReceiverID,
		Content:    view.Content,
		CreatedAt:  view.CreatedAt,
		ReadAt:     view.ReadAt,
		Sender:     FromIdentity(view.Sender),
		Receiver:   FromIdentity(view.Receiver),
	}
}

func FromMessageViews(views []domain.MessageView) []Message {
	return lo.Map(views, func(view domain.MessageView, _ int) Message {
		return FromMessageView(view)
	})
}

func FromConversationView(view domain.ConversationView) Conversation {
	return Conversation{
		Peer:              FromIdentity(view.Peer),
		LastMessageID:     view.LastMessage.ID.String(),
		LastMessage:       view.LastMessage.Content,
		LastMessageTime:   view.LastMessageTime,
		UnreadCount:       view.UnreadCount,
		IsLastMessageMine: view.IsLastMessageMine,
	}
}

func FromIdentity(identity domain.Identity) Identity {
	return Identity{ID: identity.ID, Name: identity.Name, Email: identity.Email}
}

func (i Identity) ToDomain() domain.Identity {
	return domain.Identity{ID: i.ID, Name: i.Name, Email: i.Email}
}

func (m Message) ToDomain() (domain.MessageView, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.MessageView{}, fmt.Errorf("message id %q: %w", m.ID, err)
	}
	return domain.MessageView{
		Message: domain.Message{
			ID:         id,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt.UTC(),
			ReadAt:     m.ReadAt,
		},
		Sender:   m.Sender.ToDomain(),
		Receiver: m.Receiver.ToDomain(),
	}, nil
}
