package repositories

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Entry is a human readable view of one stored key, used by the debug inspectors.
type Entry struct {
	Key       string
	Kind      string
	Timestamp string
	EntityID  string
	Detail    string
}

// ScanEntries walks every key under prefix in a single snapshot.
// An empty prefix walks the whole store.
func ScanEntries(ctx context.Context, db *badger.DB, prefix string, fn func(Entry) error) error {
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			var entry Entry
			if err := item.Value(func(val []byte) error {
				entry = DescribeEntry(key, val)
				return nil
			}); err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapStorageError(ctx, err)
}

// DescribeEntry decodes the key layout and, for records, the value.
// Undecodable values are reported in Detail rather than failing the scan.
func DescribeEntry(key string, val []byte) Entry {
	entry := Entry{
		Key:       readableKey(key),
		Kind:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	switch {
	case strings.HasPrefix(key, messagePrefix):
		entry.Kind = "MESSAGE"
		message, err := unmarshalMessage(val)
		if err != nil {
			entry.Detail = "Error: unmarshal failed"
			return entry
		}
		entry.Timestamp = message.CreatedAt.Format(time.DateTime)
		entry.EntityID = shortID(message.ID.String())
		status := "unread"
		if message.IsRead() {
			status = "read " + message.ReadAt.Format(time.DateTime)
		}
		entry.Detail = message.SenderID + " -> " + message.ReceiverID + " (" + status + "): " + message.Content
	case strings.HasPrefix(key, unreadPrefix):
		entry.Kind = "UNREAD"
		parts := strings.Split(key, ":")
		if len(parts) == 5 {
			if nanos, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
				entry.Timestamp = time.Unix(0, nanos).UTC().Format(time.DateTime)
			}
			entry.EntityID = shortID(parts[4])
			entry.Detail = decodeID(parts[2]) + " -> " + decodeID(parts[1])
		}
	case strings.HasPrefix(key, peerPrefix):
		entry.Kind = "PEER"
		parts := strings.Split(key, ":")
		if len(parts) == 3 {
			entry.EntityID = decodeID(parts[1])
			entry.Detail = "talks with " + decodeID(parts[2])
		}
	case strings.HasPrefix(key, profilePrefix):
		entry.Kind = "PROFILE"
		profile, err := unmarshalProfile(val)
		if err != nil {
			entry.Detail = "Error: unmarshal failed"
			return entry
		}
		entry.Timestamp = profile.UpdatedAt.Format(time.DateTime)
		entry.EntityID = profile.ID
		entry.Detail = profile.Name + " <" + profile.Email + ">"
	}
	return entry
}

// readableKey replaces hex encoded participant ids with their raw value.
func readableKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return key
	}
	for i := 1; i < len(parts); i++ {
		if pair := strings.Split(parts[i], "."); len(pair) == 2 && isHex(pair[0]) && isHex(pair[1]) {
			parts[i] = decodeID(pair[0]) + "." + decodeID(pair[1])
			continue
		}
		if i <= 2 && !strings.HasPrefix(key, messagePrefix) && isHex(parts[i]) {
			parts[i] = decodeID(parts[i])
		}
	}
	return strings.Join(parts, ":")
}

func decodeID(encoded string) string {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(raw)
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
