package repositories

import (
	"chat-inbox/domain"
	"chat-inbox/storage"
	"context"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protowire"
)

type IConversationRepository interface {
	SaveConversations(ctx context.Context, conversations []domain.Conversation) error
	LoadConversations(ctx context.Context) ([]domain.Conversation, bool, error)
}

type ConversationRepository struct {
	store storage.BlobStore
}

func NewConversationRepository(store storage.BlobStore) ConversationRepository {
	return ConversationRepository{store: store}
}

// SaveConversations rewrites the whole conversation blob, keeping the given order.
func (r ConversationRepository) SaveConversations(ctx context.Context, conversations []domain.Conversation) error {
	return r.store.Set(ctx, ConversationsKey, EncodeConversations(conversations))
}

// LoadConversations returns the stored collection. The boolean is false when
// nothing was ever saved, which callers use to decide on seeding.
func (r ConversationRepository) LoadConversations(ctx context.Context) ([]domain.Conversation, bool, error) {
	blob, ok, err := r.store.Get(ctx, ConversationsKey)
	if err != nil || !ok {
		return nil, ok, err
	}
	conversations, err := DecodeConversations(blob)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", ConversationsKey, err)
	}
	return conversations, true, nil
}

const (
	convID           protowire.Number = 1
	convParticipants protowire.Number = 2
	convIsGroup      protowire.Number = 3
	convName         protowire.Number = 4
	convLastMessage  protowire.Number = 5
	convUnreadCount  protowire.Number = 6
	convCreatedAt    protowire.Number = 7
	convUpdatedAt    protowire.Number = 8
	convGroup        protowire.Number = 9

	lastContent   protowire.Number = 1
	lastTimestamp protowire.Number = 2
	lastSenderID  protowire.Number = 3
)

func EncodeConversations(conversations []domain.Conversation) []byte {
	return encodeList(lo.Map(conversations, func(c domain.Conversation, _ int) []byte {
		return fromConversation(c)
	}))
}

func DecodeConversations(blob []byte) ([]domain.Conversation, error) {
	records, err := decodeList(blob)
	if err != nil {
		return nil, err
	}
	conversations := make([]domain.Conversation, 0, len(records))
	for _, r := range records {
		c, err := toConversation(r)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

func fromConversation(c domain.Conversation) []byte {
	var b []byte
	b = appendString(b, convID, c.ID)
	for _, p := range c.Participants {
		b = protowire.AppendTag(b, convParticipants, protowire.BytesType)
		b = protowire.AppendString(b, p)
	}
	b = appendBool(b, convIsGroup, c.IsGroup)
	b = appendOptionalString(b, convName, c.Name)
	if c.LastMessage != nil {
		var lm []byte
		lm = appendString(lm, lastContent, c.LastMessage.Content)
		lm = appendTime(lm, lastTimestamp, c.LastMessage.Timestamp)
		lm = appendString(lm, lastSenderID, c.LastMessage.SenderID)
		b = appendEmbedded(b, convLastMessage, lm)
	}
	b = appendVarint(b, convUnreadCount, uint64(c.UnreadCount))
	b = appendTime(b, convCreatedAt, c.CreatedAt)
	b = appendTime(b, convUpdatedAt, c.UpdatedAt)
	b = appendString(b, convGroup, string(c.Group))
	return b
}

func toConversation(record []byte) (domain.Conversation, error) {
	c := domain.Conversation{Group: domain.GroupOther}
	err := decodeFields(record, func(f field) error {
		switch f.num {
		case convID:
			c.ID = f.str()
		case convParticipants:
			c.Participants = append(c.Participants, f.str())
		case convIsGroup:
			c.IsGroup = f.boolean()
		case convName:
			c.Name = lo.ToPtr(f.str())
		case convLastMessage:
			lm, err := toLastMessage(f.bytes)
			if err != nil {
				return err
			}
			c.LastMessage = &lm
		case convUnreadCount:
			c.UnreadCount = f.int()
		case convCreatedAt:
			c.CreatedAt = f.time()
		case convUpdatedAt:
			c.UpdatedAt = f.time()
		case convGroup:
			c.Group = domain.ParseGroup(f.str())
		}
		return nil
	})
	return c, err
}

func toLastMessage(record []byte) (domain.LastMessage, error) {
	var lm domain.LastMessage
	err := decodeFields(record, func(f field) error {
		switch f.num {
		case lastContent:
			lm.Content = f.str()
		case lastTimestamp:
			lm.Timestamp = f.time()
		case lastSenderID:
			lm.SenderID = f.str()
		}
		return nil
	})
	return lm, err
}
