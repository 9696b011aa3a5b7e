package repositories

import (
	"chat-inbox/domain"
	"chat-inbox/storage"
	"context"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protowire"
)

type IMessageRepository interface {
	SaveMessages(ctx context.Context, messages []domain.Message) error
	LoadMessages(ctx context.Context) ([]domain.Message, bool, error)
}

type MessageRepository struct {
	store storage.BlobStore
}

func NewMessageRepository(store storage.BlobStore) MessageRepository {
	return MessageRepository{store: store}
}

// SaveMessages rewrites the whole message blob in ledger order (most recent first).
func (m MessageRepository) SaveMessages(ctx context.Context, messages []domain.Message) error {
	return m.store.Set(ctx, MessagesKey, EncodeMessages(messages))
}

func (m MessageRepository) LoadMessages(ctx context.Context) ([]domain.Message, bool, error) {
	blob, ok, err := m.store.Get(ctx, MessagesKey)
	if err != nil || !ok {
		return nil, ok, err
	}
	messages, err := DecodeMessages(blob)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", MessagesKey, err)
	}
	return messages, true, nil
}

const (
	msgID             protowire.Number = 1
	msgConversationID protowire.Number = 2
	msgContent        protowire.Number = 3
	msgSenderID       protowire.Number = 4
	msgSenderName     protowire.Number = 5
	msgRecipientID    protowire.Number = 6
	msgRecipientName  protowire.Number = 7
	msgCreatedAt      protowire.Number = 8
	msgRead           protowire.Number = 9
	msgStatus         protowire.Number = 10
)

func EncodeMessages(messages []domain.Message) []byte {
	return encodeList(lo.Map(messages, func(m domain.Message, _ int) []byte {
		return fromMessage(m)
	}))
}

func DecodeMessages(blob []byte) ([]domain.Message, error) {
	records, err := decodeList(blob)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(records))
	for _, r := range records {
		message, err := toMessage(r)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func fromMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, msgID, m.ID)
	b = appendString(b, msgConversationID, m.ConversationID)
	b = appendString(b, msgContent, m.Content)
	b = appendString(b, msgSenderID, m.SenderID)
	b = appendString(b, msgSenderName, m.SenderName)
	b = appendString(b, msgRecipientID, m.RecipientID)
	b = appendString(b, msgRecipientName, m.RecipientName)
	b = appendTime(b, msgCreatedAt, m.CreatedAt)
	b = appendBool(b, msgRead, m.Read)
	b = appendString(b, msgStatus, string(m.Status))
	return b
}

func toMessage(record []byte) (domain.Message, error) {
	m := domain.Message{Status: domain.StatusSent}
	err := decodeFields(record, func(f field) error {
		switch f.num {
		case msgID:
			m.ID = f.str()
		case msgConversationID:
			m.ConversationID = f.str()
		case msgContent:
			m.Content = f.str()
		case msgSenderID:
			m.SenderID = f.str()
		case msgSenderName:
			m.SenderName = f.str()
		case msgRecipientID:
			m.RecipientID = f.str()
		case msgRecipientName:
			m.RecipientName = f.str()
		case msgCreatedAt:
			m.CreatedAt = f.time()
		case msgRead:
			m.Read = f.boolean()
		case msgStatus:
			m.Status = domain.MessageStatus(f.str())
		}
		return nil
	})
	if m.Read {
		m.Status = domain.StatusRead
	}
	return m, err
}
