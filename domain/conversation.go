package domain

import "time"

// Conversation summarises every message a viewer exchanged with one peer.
// It is derived at read time and never stored.
type Conversation struct {
	PeerID            string
	LastMessage       Message
	LastMessageTime   time.Time
	UnreadCount       int
	IsLastMessageMine bool
}

// Identity is the display identity of a participant, owned by the profile collaborator.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// MessageView is a message together with the identities of both participants.
type MessageView struct {
	Message
	Sender   Identity
	Receiver Identity
}

// ConversationView is a conversation summary with the peer identity resolved.
type ConversationView struct {
	Conversation
	Peer Identity
}
