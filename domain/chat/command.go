package chat

import (
	"time"
)

type SendMessageCommand struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required,nefield=SenderID"`
	Content    string `validate:"required"`
}

// FetchMessagesCommand identifies a conversation by its two participants, in any order.
// After is an inclusive cursor on CreatedAt.
type FetchMessagesCommand struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required,nefield=SenderID"`
	After      *time.Time
}

// MarkReadCommand marks what ReceiverID received from SenderID as read.
type MarkReadCommand struct {
	ReceiverID string `validate:"required"`
	SenderID   string `validate:"required,nefield=ReceiverID"`
}

type ListConversationsCommand struct {
	UserID string `validate:"required"`
}
