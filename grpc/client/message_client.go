package client

import (
	"context"
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/grpc/dmv1"
	"time"

	"google.golang.org/grpc"
)

// MessageClient calls dm.v1.MessageService on behalf of one authenticated user.
type MessageClient struct {
	client dmv1.MessageServiceClient
	token  string
}

func NewMessageClient(conn grpc.ClientConnInterface, token string) *MessageClient {
	return &MessageClient{client: dmv1.NewMessageServiceClient(conn), token: token}
}

func (c *MessageClient) SendMessage(ctx context.Context, senderID, receiverID, content string) (domain.MessageView, error) {
	res, err := c.client.SendMessage(c.authenticated(ctx), &dmv1.SendMessageRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	})
	if err != nil {
		return domain.MessageView{}, err
	}
	return res.Message.ToDomain()
}

// FetchMessages returns the conversation between self and peer, from after when set.
func (c *MessageClient) FetchMessages(ctx context.Context, self, peer string, after *time.Time) ([]domain.MessageView, error) {
	res, err := c.client.FetchMessages(c.authenticated(ctx), &dmv1.FetchMessagesRequest{
		SenderID:   self,
		ReceiverID: peer,
		After:      after,
	})
	if err != nil {
		return nil, err
	}
	views := make([]domain.MessageView, 0, len(res.Messages))
	for _, message := range res.Messages {
		view, err := message.ToDomain()
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (c *MessageClient) MarkRead(ctx context.Context, self, peer string) (int, error) {
	res, err := c.client.MarkRead(c.authenticated(ctx), &dmv1.MarkReadRequest{ReceiverID: self, SenderID: peer})
	if err != nil {
		return 0, err
	}
	return res.Updated, nil
}

func (c *MessageClient) ListConversations(ctx context.Context, self string) ([]dmv1.Conversation, error) {
	res, err := c.client.ListConversations(c.authenticated(ctx), &dmv1.ListConversationsRequest{UserID: self})
	if err != nil {
		return nil, err
	}
	return res.Conversations, nil
}

func (c *MessageClient) PutProfile(ctx context.Context, identity domain.Identity) error {
	_, err := c.client.PutProfile(c.authenticated(ctx), &dmv1.PutProfileRequest{
		ID:    identity.ID,
		Name:  identity.Name,
		Email: identity.Email,
	})
	return err
}

func (c *MessageClient) authenticated(ctx context.Context) context.Context {
	return auth.BearerToken(ctx, c.token)
}
