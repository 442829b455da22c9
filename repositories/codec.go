package repositories

import (
	"dm-lab/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the stored records. They follow the protobuf wire format
// so the values stay readable by any protobuf decoder.
const (
	messageIDField        protowire.Number = 1
	messageSenderField    protowire.Number = 2
	messageReceiverField  protowire.Number = 3
	messageContentField   protowire.Number = 4
	messageCreatedAtField protowire.Number = 5
	messageReadAtField    protowire.Number = 6
	profileIDField        protowire.Number = 1
	profileNameField      protowire.Number = 2
	profileEmailField     protowire.Number = 3
	profileUpdatedAtField protowire.Number = 4
)

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = protowire.AppendTag(b, messageIDField, protowire.BytesType)
	b = protowire.AppendBytes(b, m.ID[:])
	b = protowire.AppendTag(b, messageSenderField, protowire.BytesType)
	b = protowire.AppendString(b, m.SenderID)
	b = protowire.AppendTag(b, messageReceiverField, protowire.BytesType)
	b = protowire.AppendString(b, m.ReceiverID)
	b = protowire.AppendTag(b, messageContentField, protowire.BytesType)
	b = protowire.AppendString(b, m.Content)
	b = protowire.AppendTag(b, messageCreatedAtField, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.CreatedAt.UnixNano()))
	if m.ReadAt != nil {
		b = protowire.AppendTag(b, messageReadAtField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.ReadAt.UnixNano()))
	}
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Message{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == messageIDField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			id, err := uuid.FromBytes(v)
			if err != nil {
				return domain.Message{}, fmt.Errorf("message id: %w", err)
			}
			m.ID = id
			b = b[n:]
		case num == messageSenderField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			m.SenderID = v
			b = b[n:]
		case num == messageReceiverField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			m.ReceiverID = v
			b = b[n:]
		case num == messageContentField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			m.Content = v
			b = b[n:]
		case num == messageCreatedAtField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			m.CreatedAt = time.Unix(0, protowire.DecodeZigZag(v)).UTC()
			b = b[n:]
		case num == messageReadAtField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			readAt := time.Unix(0, protowire.DecodeZigZag(v)).UTC()
			m.ReadAt = &readAt
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return m, nil
}

func marshalProfile(p Profile) []byte {
	var b []byte
	b = protowire.AppendTag(b, profileIDField, protowire.BytesType)
	b = protowire.AppendString(b, p.ID)
	b = protowire.AppendTag(b, profileNameField, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = protowire.AppendTag(b, profileEmailField, protowire.BytesType)
	b = protowire.AppendString(b, p.Email)
	b = protowire.AppendTag(b, profileUpdatedAtField, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(p.UpdatedAt.Unix()))
	return b
}

func unmarshalProfile(b []byte) (Profile, error) {
	var p Profile
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Profile{}, protowire.ParseError(n)
		}
		b = b[n:]
		if typ == protowire.BytesType && num <= profileEmailField {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Profile{}, protowire.ParseError(n)
			}
			switch num {
			case profileIDField:
				p.ID = v
			case profileNameField:
				p.Name = v
			case profileEmailField:
				p.Email = v
			}
			b = b[n:]
			continue
		}
		if num == profileUpdatedAtField && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Profile{}, protowire.ParseError(n)
			}
			p.UpdatedAt = time.Unix(protowire.DecodeZigZag(v), 0).UTC()
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Profile{}, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return p, nil
}
