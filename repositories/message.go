//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"dm-lab/domain"
	"dm-lab/errors"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	messagePrefix = "dm:"
	unreadPrefix  = "unread:"
	peerPrefix    = "peer:"

	markReadBatchSize = 256
)

type IMessageRepository interface {
	Append(ctx context.Context, senderID, receiverID, content string) (domain.Message, error)
	FetchBetween(ctx context.Context, userA, userB string, after *time.Time) ([]domain.Message, error)
	MarkRead(ctx context.Context, receiverID, senderID string) (int, error)
	ScanParticipant(ctx context.Context, user string, fn func(domain.Message) error) error
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
	now           func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages, now: time.Now}
}

// WithClock returns a copy of the repository stamping messages with now.
func (m MessageRepository) WithClock(now func() time.Time) MessageRepository {
	m.now = now
	return m
}

// Append validates and persists a new unread message.
// The record and its indexes are written in one transaction:
//   - "dm:{pair}:{created_at_padded}:{uuid}" holds the message, the pair being
//     the two hex-encoded participant ids in ascending order, so a prefix scan
//     yields the conversation sorted by (CreatedAt, ID).
//   - "unread:{receiver}:{sender}:{created_at_padded}:{uuid}" points to the
//     message until it is read.
//   - "peer:{user}:{peer}" is written for both participants.
func (m MessageRepository) Append(ctx context.Context, senderID, receiverID, content string) (domain.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Message{}, fmt.Errorf("message id generation: %w", err)
	}
	message, err := domain.NewMessage(id, senderID, receiverID, content, m.now())
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(message)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, marshalMessage(message)); err != nil {
			return err
		}
		if err := txn.Set(unreadKey(message), key); err != nil {
			return err
		}
		if err := txn.Set(peerKey(senderID, receiverID), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(peerKey(receiverID, senderID), []byte{}); err != nil {
			return err
		}
		// A cancelled caller discards the whole transaction.
		return ctx.Err()
	})
	if err != nil {
		return domain.Message{}, wrapStorageError(ctx, err)
	}
	m.log.Debug("Message appended", "id", message.ID, "sender", senderID, "receiver", receiverID)
	return message, nil
}

// FetchBetween returns the messages exchanged by userA and userB, oldest first.
// A non-nil after keeps messages created at or after it (inclusive).
// When limitMessages is set, a fetch without cursor returns the newest messages
// and a fetch with cursor every message at the cursor plus the oldest ones following it.
func (m MessageRepository) FetchBetween(ctx context.Context, userA, userB string, after *time.Time) ([]domain.Message, error) {
	if err := domain.ValidatePair(userA, userB); err != nil {
		return nil, err
	}
	limit := m.limit()
	reverse := after == nil && limit > 0
	prefix := []byte(messagePrefix + pairKey(userA, userB) + ":")

	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		options.Reverse = reverse
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte{}, prefix...)
		switch {
		case reverse:
			seekKey = append(seekKey, 0xFF)
		case after != nil:
			seekKey = append(seekKey, []byte(fmt.Sprintf("%019d", cursorNanos(*after)))...)
		}

		counted := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			message, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			// Messages on the cursor are returned but do not count toward the page.
			atCursor := after != nil && message.CreatedAt.UnixNano() <= cursorNanos(*after)
			if limit > 0 && !atCursor && counted == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			messages = append(messages, message)
			if !atCursor {
				counted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorageError(ctx, err)
	}
	if reverse {
		messages = lo.Reverse(messages)
	}
	return messages, nil
}

// MarkRead sets ReadAt on every unread message senderID sent to receiverID
// and returns how many messages transitioned.
// Each batch is a conditional update: the unread index entries read by the
// transaction are deleted in the same commit, so a concurrent call touching
// the same entries conflicts and re-evaluates what is still unread.
func (m MessageRepository) MarkRead(ctx context.Context, receiverID, senderID string) (int, error) {
	if err := domain.ValidatePair(receiverID, senderID); err != nil {
		return 0, err
	}
	prefix := []byte(unreadPrefix + encodeID(receiverID) + ":" + encodeID(senderID) + ":")

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var (
			updated int
			more    bool
		)
		// A conflict means a concurrent call took some of the entries: re-read them.
		err := backoff.Retry(func() error {
			var err error
			updated, more, err = m.markReadBatch(prefix)
			if err != nil && !stderrors.Is(err, badger.ErrConflict) {
				return backoff.Permanent(err)
			}
			return err
		}, backoff.WithContext(conflictBackOff(), ctx))
		if err != nil {
			return total, wrapStorageError(ctx, err)
		}
		total += updated
		if !more {
			break
		}
	}
	m.log.Debug("Messages marked as read", "receiver", receiverID, "sender", senderID, "count", total)
	return total, nil
}

// conflictBackOff retries with jitter until the caller's context ends.
func conflictBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

type unreadEntry struct {
	indexKey   []byte
	messageKey []byte
}

func (m MessageRepository) markReadBatch(prefix []byte) (int, bool, error) {
	now := m.now().UTC()
	txn := m.db.NewTransaction(true)
	defer txn.Discard()

	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := txn.NewIterator(options)
	var batch []unreadEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix) && len(batch) < markReadBatchSize; it.Next() {
		item := it.Item()
		messageKey, err := item.ValueCopy(nil)
		if err != nil {
			it.Close()
			return 0, false, err
		}
		batch = append(batch, unreadEntry{indexKey: item.KeyCopy(nil), messageKey: messageKey})
	}
	more := it.ValidForPrefix(prefix)
	it.Close()

	if len(batch) == 0 {
		return 0, false, nil
	}

	updated := 0
	for _, entry := range batch {
		item, err := txn.Get(entry.messageKey)
		switch {
		case stderrors.Is(err, badger.ErrKeyNotFound):
			m.log.Warn("Dropping dangling unread entry", "key", string(entry.indexKey))
		case err != nil:
			return 0, false, err
		default:
			message, err := decodeItem(item)
			if err != nil {
				return 0, false, err
			}
			if message.ReadAt == nil {
				message.ReadAt = lo.ToPtr(lo.Latest(now, message.CreatedAt))
				if err = txn.Set(entry.messageKey, marshalMessage(message)); err != nil {
					return 0, false, err
				}
				updated++
			}
		}
		if err = txn.Delete(entry.indexKey); err != nil {
			return 0, false, err
		}
	}
	if err := txn.Commit(); err != nil {
		return 0, false, err
	}
	return updated, more, nil
}

// ScanParticipant calls fn for every message user sent or received.
// All messages come from one read snapshot, conversation by conversation,
// each conversation in (CreatedAt, ID) order. An error returned by fn stops
// the scan and is returned as is.
func (m MessageRepository) ScanParticipant(ctx context.Context, user string, fn func(domain.Message) error) error {
	if strings.TrimSpace(user) == "" {
		return errors.ErrEmptyParticipant
	}
	var fnErr error
	err := m.db.View(func(txn *badger.Txn) error {
		peers, err := listPeers(txn, user)
		if err != nil {
			return err
		}
		for _, peer := range peers {
			prefix := []byte(messagePrefix + pairKey(user, peer) + ":")
			if err = scanPrefix(ctx, txn, prefix, func(message domain.Message) error {
				fnErr = fn(message)
				return fnErr
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return wrapStorageError(ctx, err)
	}
	return nil
}

func listPeers(txn *badger.Txn, user string) ([]string, error) {
	prefix := []byte(peerPrefix + encodeID(user) + ":")
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var peers []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		peer, err := hex.DecodeString(string(it.Item().Key()[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("corrupted peer key %q: %w", it.Item().Key(), err)
		}
		peers = append(peers, string(peer))
	}
	return peers, nil
}

func scanPrefix(ctx context.Context, txn *badger.Txn, prefix []byte, fn func(domain.Message) error) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		message, err := decodeItem(it.Item())
		if err != nil {
			return err
		}
		if err = fn(message); err != nil {
			return err
		}
	}
	return nil
}

func decodeItem(item *badger.Item) (domain.Message, error) {
	var message domain.Message
	err := item.Value(func(value []byte) error {
		var err error
		message, err = unmarshalMessage(value)
		return err
	})
	return message, err
}

func (m MessageRepository) limit() int {
	if m.limitMessages == nil || *m.limitMessages <= 0 {
		return 0
	}
	return *m.limitMessages
}

// wrapStorageError leaves cancellation and validation errors untouched and tags the rest.
func wrapStorageError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
		return err
	}
	if stderrors.Is(err, errors.ErrValidation) {
		return err
	}
	return errors.Persistence(err)
}

func encodeID(id string) string {
	return hex.EncodeToString([]byte(id))
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return encodeID(a) + "." + encodeID(b)
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		messagePrefix,
		pairKey(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func unreadKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%019d:%s",
		unreadPrefix,
		encodeID(message.ReceiverID),
		encodeID(message.SenderID),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func peerKey(user, peer string) []byte {
	return []byte(peerPrefix + encodeID(user) + ":" + encodeID(peer))
}

// cursorNanos clamps cursors set before the epoch to zero.
func cursorNanos(after time.Time) int64 {
	return max(after.UnixNano(), 0)
}
