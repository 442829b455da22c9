package projection

import (
	"dm-lab/domain"
	"sort"
)

// ConversationFold derives the conversation list of one viewer from the
// messages it is fed. Messages may arrive in any order; the result only
// depends on the set of messages added.
type ConversationFold struct {
	viewer string
	byPeer map[string]*domain.Conversation
}

func NewConversationFold(viewer string) *ConversationFold {
	return &ConversationFold{viewer: viewer, byPeer: make(map[string]*domain.Conversation)}
}

// Add folds one message into the summary of its peer.
// Messages the viewer is not part of are ignored.
func (f *ConversationFold) Add(message domain.Message) {
	if !message.Involves(f.viewer) || message.SenderID == message.ReceiverID {
		return
	}
	peer := message.PeerOf(f.viewer)
	conversation, ok := f.byPeer[peer]
	if !ok {
		conversation = &domain.Conversation{PeerID: peer, LastMessage: message}
		f.byPeer[peer] = conversation
	} else if conversation.LastMessage.Before(message) {
		conversation.LastMessage = message
	}
	conversation.LastMessageTime = conversation.LastMessage.CreatedAt
	conversation.IsLastMessageMine = conversation.LastMessage.SenderID == f.viewer
	if message.ReceiverID == f.viewer && !message.IsRead() {
		conversation.UnreadCount++
	}
}

// Conversations returns one summary per peer, most recent activity first.
func (f *ConversationFold) Conversations() []domain.Conversation {
	conversations := make([]domain.Conversation, 0, len(f.byPeer))
	for _, conversation := range f.byPeer {
		conversations = append(conversations, *conversation)
	}
	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return conversations[i].PeerID < conversations[j].PeerID
	})
	return conversations
}
