// Package projection builds local views from stored messages.
// Handles ordering, deduplication, and per-viewer summaries.
// Does not persist anything or talk to the network.
package projection

import (
	"dm-lab/domain"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Timeline holds the local copy of one conversation as rendered by a client.
// It is not safe for concurrent use.
type Timeline struct {
	Owner    string
	Peer     string
	Messages []domain.MessageView
	seen     map[uuid.UUID]int
}

func NewTimeline(owner, peer string) *Timeline {
	return &Timeline{
		Owner: owner,
		Peer:  peer,
		seen:  make(map[uuid.UUID]int),
	}
}

// Cursor is the CreatedAt of the newest message held, nil when empty.
// Polls use it as an inclusive lower bound.
func (t *Timeline) Cursor() *time.Time {
	if len(t.Messages) == 0 {
		return nil
	}
	cursor := t.Messages[len(t.Messages)-1].CreatedAt
	return &cursor
}

// Merge adds polled messages and returns the ones not seen before, in order.
// A message already held is refreshed in place so a later read receipt shows up.
func (t *Timeline) Merge(messages []domain.MessageView) []domain.MessageView {
	var added []domain.MessageView
	for _, message := range messages {
		if index, ok := t.seen[message.ID]; ok {
			// -1 marks a duplicate inside this batch
			if index >= 0 {
				t.Messages[index] = message
			}
			continue
		}
		t.seen[message.ID] = -1
		added = append(added, message)
	}
	if len(added) == 0 {
		return nil
	}
	t.Messages = append(t.Messages, added...)
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Before(t.Messages[j].Message)
	})
	for i, message := range t.Messages {
		t.seen[message.ID] = i
	}
	sort.SliceStable(added, func(i, j int) bool {
		return added[i].Before(added[j].Message)
	})
	return added
}

// Unread counts messages received by the owner and not read yet.
func (t *Timeline) Unread() int {
	count := 0
	for _, message := range t.Messages {
		if message.ReceiverID == t.Owner && !message.IsRead() {
			count++
		}
	}
	return count
}

// MarkReceivedRead applies a successful mark-read locally: every held
// message received by the owner and still unread gets readAt.
// It returns how many messages changed.
func (t *Timeline) MarkReceivedRead(readAt time.Time) int {
	updated := 0
	for i, message := range t.Messages {
		if message.ReceiverID == t.Owner && !message.IsRead() {
			at := readAt
			if at.Before(message.CreatedAt) {
				at = message.CreatedAt
			}
			t.Messages[i].ReadAt = &at
			updated++
		}
	}
	return updated
}
