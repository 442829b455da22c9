// Package dmv1 defines the dm.v1.MessageService gRPC contract: request and
// response messages, the service descriptor, and a typed client.
package dmv1

import "time"

type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
	Sender     Identity   `json:"sender"`
	Receiver   Identity   `json:"receiver"`
}

type Conversation struct {
	Peer              Identity  `json:"peer"`
	LastMessageID     string    `json:"last_message_id"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	UnreadCount       int       `json:"unread_count"`
	IsLastMessageMine bool      `json:"is_last_message_mine"`
}

type SendMessageRequest struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
}

// FetchMessagesRequest identifies the conversation by its two participants, in any order.
// After is an inclusive cursor.
type FetchMessagesRequest struct {
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	After      *time.Time `json:"after,omitempty"`
}

type FetchMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type MarkReadRequest struct {
	ReceiverID string `json:"receiver_id"`
	SenderID   string `json:"sender_id"`
}

type MarkReadResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}

type ListConversationsRequest struct {
	UserID string `json:"user_id"`
}

type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

type PutProfileRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PutProfileResponse struct{}
