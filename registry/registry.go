// Package registry holds the authoritative in-memory collection of
// conversations together with the current selection.
//
// Conversations are kept in insertion order, newest first. Read-marking and
// cascading deletes reach the message side through the Messages interface.
// A Registry is not safe for concurrent use; its owner serializes access.
package registry

import (
	"chat-inbox/domain"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Messages is the part of the message ledger the registry drives.
type Messages interface {
	MarkAllReadForConversation(conversationID string) int
	RemoveForConversation(conversationID string) int
}

type CreateRequest struct {
	ParticipantIDs []string
	IsGroup        bool
	Name           *string
	Group          domain.Group
}

type Registry struct {
	conversations []domain.Conversation
	current       *string
	messages      Messages
	now           func() time.Time
}

func New(messages Messages) *Registry {
	return &Registry{
		messages: messages,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Meant for tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.conversations, func(c domain.Conversation) bool {
		return c.ID == id
	})
}

// Create opens a conversation between ownerID and req.ParticipantIDs.
//
// A non-group request naming exactly one other participant reuses the existing
// non-group conversation of that pair; the boolean is then false. Otherwise a
// new conversation is inserted at the head with ownerID appended to the
// participants. Callers make sure at least one participant differs from ownerID.
func (r *Registry) Create(ownerID string, req CreateRequest) (string, bool) {
	if !req.IsGroup && len(req.ParticipantIDs) == 1 {
		other := req.ParticipantIDs[0]
		if existing, ok := lo.Find(r.conversations, func(c domain.Conversation) bool {
			return c.IsPairOf(ownerID, other)
		}); ok {
			return existing.ID, false
		}
	}

	group := domain.GroupOther
	if req.Group != "" {
		group = domain.ParseGroup(string(req.Group))
	}
	now := r.now()
	conversation := domain.Conversation{
		ID:           uuid.NewString(),
		Participants: lo.Uniq(append(slices.Clone(req.ParticipantIDs), ownerID)),
		IsGroup:      req.IsGroup,
		UnreadCount:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
		Group:        group,
	}
	if req.Name != nil {
		conversation.Name = lo.ToPtr(*req.Name)
	}
	r.conversations = append([]domain.Conversation{conversation}, r.conversations...)
	return conversation.ID, true
}

func (r *Registry) Get(id string) (domain.Conversation, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return domain.Conversation{}, false
	}
	return r.conversations[i].Clone(), true
}

// SetCurrent selects a conversation and marks it read: every unread message of
// it becomes read and a positive unread count drops to zero. Selecting an
// unknown id keeps the previous selection and reports false.
func (r *Registry) SetCurrent(id string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	if r.messages != nil {
		r.messages.MarkAllReadForConversation(id)
	}
	if c := &r.conversations[i]; c.UnreadCount > 0 {
		c.UnreadCount = 0
		c.Touch(r.now())
	}
	r.current = lo.ToPtr(id)
	return true
}

// ClearCurrent drops the selection without touching any conversation.
func (r *Registry) ClearCurrent() {
	r.current = nil
}

func (r *Registry) Current() (domain.Conversation, bool) {
	if r.current == nil {
		return domain.Conversation{}, false
	}
	return r.Get(*r.current)
}

// Delete removes a conversation together with all of its messages and clears
// the selection when it pointed at it.
func (r *Registry) Delete(id string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.conversations = slices.Delete(r.conversations, i, i+1)
	if r.messages != nil {
		r.messages.RemoveForConversation(id)
	}
	if r.current != nil && *r.current == id {
		r.current = nil
	}
	return true
}

// RecordActivity stores the preview of a freshly sent message. The unread count
// grows unless the message was sent by the viewing user.
func (r *Registry) RecordActivity(id string, last domain.LastMessage, isOwnMessage bool) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	c := &r.conversations[i]
	c.LastMessage = &last
	c.Touch(r.now())
	if !isOwnMessage {
		c.UnreadCount++
	}
	return true
}

// List returns every conversation, most recently updated first.
func (r *Registry) List() []domain.Conversation {
	out := lo.Map(r.conversations, func(c domain.Conversation, _ int) domain.Conversation {
		return c.Clone()
	})
	slices.SortStableFunc(out, func(a, b domain.Conversation) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// ListByGroup returns the conversations labelled group, ignoring case.
// Conversations with a missing or unknown label belong to Other.
func (r *Registry) ListByGroup(group domain.Group) []domain.Conversation {
	want := domain.ParseGroup(string(group))
	return lo.Filter(r.List(), func(c domain.Conversation, _ int) bool {
		return domain.ParseGroup(string(c.Group)) == want
	})
}

// Snapshot returns the collection in insertion order, as it should be persisted.
func (r *Registry) Snapshot() []domain.Conversation {
	return lo.Map(r.conversations, func(c domain.Conversation, _ int) domain.Conversation {
		return c.Clone()
	})
}

// Restore replaces the collection. A selection that no longer resolves is dropped.
func (r *Registry) Restore(conversations []domain.Conversation) {
	r.conversations = lo.Map(conversations, func(c domain.Conversation, _ int) domain.Conversation {
		return c.Clone()
	})
	if r.current != nil && r.indexOf(*r.current) < 0 {
		r.current = nil
	}
}
