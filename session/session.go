// Package session is the single entry point client code talks to.
//
// A Session composes the identity directory, the conversation registry and the
// message ledger, and mirrors their state into a blob store after every
// mutation. In-memory state is authoritative: reads never touch the store and
// a failed store write is logged, never rolled back.
//
// All operations are serialized by one mutex, so a Session can be shared
// between goroutines. The ledger and registry writes of Send happen under the
// same lock and are never observed separately.
package session

import (
	"chat-inbox/contract"
	"chat-inbox/directory"
	"chat-inbox/domain"
	"chat-inbox/errors"
	"chat-inbox/ledger"
	"chat-inbox/registry"
	"chat-inbox/repositories"
	"chat-inbox/seed"
	"chat-inbox/sink"
	"chat-inbox/storage"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Options struct {
	Store storage.BlobStore
	Log   *slog.Logger
	// SeedDemoData fills an empty store with the demo inbox and signs in the demo user.
	SeedDemoData bool
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
	// Sink overrides the default store-backed snapshot sink.
	Sink contract.SnapshotSink
}

type Session struct {
	mu            sync.Mutex
	directory     *directory.Directory
	registry      *registry.Registry
	ledger        *ledger.Ledger
	users         repositories.IUserRepository
	sink          contract.SnapshotSink
	currentUserID *string
	log           *slog.Logger
	now           func() time.Time
	validate      *validator.Validate
}

// New builds a session from whatever the store holds. Missing blobs fall back
// to demo data when opts.SeedDemoData is set, and to empty collections otherwise.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session needs a blob store")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "session")
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	conversationRepository := repositories.NewConversationRepository(opts.Store)
	messageRepository := repositories.NewMessageRepository(opts.Store)
	userRepository := repositories.NewUserRepository(opts.Store)
	snapshotSink := opts.Sink
	if snapshotSink == nil {
		snapshotSink = sink.NewSnapshotSink(conversationRepository, messageRepository, userRepository, log)
	}

	l := ledger.New().WithClock(now)
	s := &Session{
		ledger:   l,
		registry: registry.New(l).WithClock(now),
		users:    userRepository,
		sink:     snapshotSink,
		log:      log,
		now:      now,
		validate: validator.New(),
	}

	seeded, err := s.load(ctx, conversationRepository, messageRepository, opts.SeedDemoData)
	if err != nil {
		return nil, err
	}
	if seeded {
		s.persist(ctx, true)
	}
	return s, nil
}

// load restores every collection. Unreadable blobs are logged and treated as
// missing, the same way a first start is.
func (s *Session) load(
	ctx context.Context,
	conversationRepository repositories.IConversationRepository,
	messageRepository repositories.IMessageRepository,
	seedDemo bool,
) (bool, error) {
	now := s.now()
	seeded := false

	users, ok, err := s.users.LoadUsers(ctx)
	if err != nil {
		s.log.Error("Loading users failed", "error", err)
	}
	if !ok || err != nil {
		users = nil
		if seedDemo {
			users = seed.Users(now)
			seeded = true
		}
	}

	current, err := s.users.LoadCurrentUser(ctx)
	if err != nil {
		s.log.Error("Loading current user failed", "error", err)
		current = nil
	}
	if current == nil && seedDemo {
		current = lo.ToPtr(seed.CurrentUser(now))
		if err := s.users.SaveCurrentUser(ctx, current); err != nil {
			s.log.Error("Saving current user failed", "error", err)
		}
	}
	if current != nil {
		if !lo.ContainsBy(users, func(u domain.User) bool { return u.ID == current.ID }) {
			users = append([]domain.User{*current}, users...)
		}
		s.currentUserID = lo.ToPtr(current.ID)
	}

	s.directory, err = directory.New(users, s.log)
	if err != nil {
		return false, err
	}

	conversations, ok, err := conversationRepository.LoadConversations(ctx)
	if err != nil {
		s.log.Error("Loading conversations failed", "error", err)
	}
	if !ok || err != nil {
		conversations = nil
		if seedDemo {
			conversations = seed.Conversations(now)
			seeded = true
		}
	}
	s.registry.Restore(conversations)

	messages, _, err := messageRepository.LoadMessages(ctx)
	if err != nil {
		s.log.Error("Loading messages failed", "error", err)
		messages = nil
	}
	s.ledger.Restore(messages)

	s.log.Info("Session loaded",
		"conversations", len(conversations),
		"messages", len(messages),
		"users", len(users),
		"seeded", seeded)
	return seeded, nil
}

// persist mirrors the collections into the store. Failures never reach the caller.
func (s *Session) persist(ctx context.Context, withUsers bool) {
	snapshot := domain.Snapshot{
		Conversations: s.registry.Snapshot(),
		Messages:      s.ledger.Snapshot(),
	}
	if withUsers {
		snapshot.Users = s.directory.List()
	}
	if err := s.sink.Consume(ctx, snapshot); err != nil {
		s.log.Error("Persisting snapshot failed", "error", err)
	}
}

func (s *Session) saveCurrentUser(ctx context.Context, user *domain.User) {
	if err := s.users.SaveCurrentUser(ctx, user); err != nil {
		s.log.Error("Saving current user failed", "error", err)
	}
}

func (s *Session) currentUser() (domain.User, bool) {
	if s.currentUserID == nil {
		return domain.User{}, false
	}
	return s.directory.Get(*s.currentUserID)
}

func (s *Session) logCommand(name string, cmd domain.Command) {
	s.log.Debug(name, "target", cmd.Target())
}

// Close writes a final snapshot and releases the directory index.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist(ctx, true)
	return s.directory.Close()
}

// Conversations lists every conversation, most recently updated first.
func (s *Session) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.List()
}

// ConversationsByGroup lists the conversations carrying an inbox label.
func (s *Session) ConversationsByGroup(group domain.Group) []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ListByGroup(group)
}

func (s *Session) Conversation(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Get(id)
}

func (s *Session) CurrentConversation() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Current()
}

// SetCurrentConversation opens a conversation and marks it read. An unknown id
// keeps the previous selection and reports false.
func (s *Session) SetCurrentConversation(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registry.SetCurrent(id) {
		s.log.Debug("Ignoring selection of unknown conversation", "conversation_id", id)
		return false
	}
	s.persist(ctx, false)
	return true
}

func (s *Session) ClearCurrentConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ClearCurrent()
}

// CreateConversation opens a conversation between the signed-in user and
// cmd.ParticipantIDs, reusing the existing one for a 1:1 pair.
func (s *Session) CreateConversation(ctx context.Context, cmd domain.CreateConversationCommand) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logCommand("CreateConversation", cmd)

	me, ok := s.currentUser()
	if !ok {
		return "", errors.ErrNoCurrentUser
	}
	if err := s.validate.Struct(cmd); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvariantViolation, err)
	}
	others := lo.Without(lo.Uniq(cmd.ParticipantIDs), me.ID)
	if len(others) == 0 {
		return "", fmt.Errorf("%w: conversation needs a participant other than %s", errors.ErrInvariantViolation, me.ID)
	}
	if !cmd.IsGroup && len(others) > 1 {
		return "", fmt.Errorf("%w: a direct conversation has exactly two participants", errors.ErrInvariantViolation)
	}
	for _, id := range others {
		if _, ok := s.directory.Get(id); !ok {
			return "", fmt.Errorf("participant %s: %w", id, errors.ErrUnknownUser)
		}
	}

	id, created := s.registry.Create(me.ID, registry.CreateRequest{
		ParticipantIDs: others,
		IsGroup:        cmd.IsGroup,
		Name:           cmd.Name,
		Group:          cmd.Group,
	})
	if created {
		s.persist(ctx, false)
	}
	return id, nil
}

// DeleteConversation removes a conversation and all of its messages.
// An unknown id is ignored and reported as false.
func (s *Session) DeleteConversation(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registry.Delete(id) {
		return false
	}
	s.persist(ctx, false)
	return true
}

// Messages lists every message, most recent first.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// MessagesFor lists a conversation's messages oldest first, as a chat screen shows them.
func (s *Session) MessagesFor(conversationID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Chronological(s.ledger.ListForConversation(conversationID))
}

func (s *Session) Message(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(id)
}

// Send posts text into a conversation on behalf of senderID.
//
// The sender must be a participant and the recipient is the other one. Both
// display names are copied into the message so later renames leave history
// untouched. The
// conversation preview is updated in the same critical section; its unread
// count grows unless senderID is the signed-in user.
func (s *Session) Send(ctx context.Context, conversationID, text, senderID string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd := domain.SendMessageCommand{ConversationID: conversationID, SenderID: senderID, Content: strings.TrimSpace(text)}
	s.logCommand("Send", cmd)

	if cmd.Content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if s.currentUserID == nil {
		return domain.Message{}, errors.ErrNoCurrentUser
	}
	if err := s.validateSend(cmd); err != nil {
		return domain.Message{}, err
	}

	conversation, ok := s.registry.Get(conversationID)
	if !ok {
		return domain.Message{}, fmt.Errorf("conversation %s: %w", conversationID, errors.ErrNotFound)
	}
	if !conversation.HasParticipant(senderID) {
		return domain.Message{}, fmt.Errorf("%s is not in conversation %s: %w",
			senderID, conversationID, errors.ErrInvariantViolation)
	}
	recipientID, ok := conversation.Counterpart(senderID)
	if !ok {
		return domain.Message{}, fmt.Errorf("conversation %s has no recipient for %s: %w",
			conversationID, senderID, errors.ErrInvariantViolation)
	}
	sender, ok := s.directory.Get(senderID)
	if !ok {
		return domain.Message{}, fmt.Errorf("sender %s: %w", senderID, errors.ErrUnknownUser)
	}
	recipient, ok := s.directory.Get(recipientID)
	if !ok {
		return domain.Message{}, fmt.Errorf("recipient %s: %w", recipientID, errors.ErrUnknownUser)
	}

	message := s.ledger.Append(domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        text,
		SenderID:       sender.ID,
		SenderName:     sender.DisplayName,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.DisplayName,
		CreatedAt:      s.now(),
		Read:           false,
		Status:         domain.StatusSent,
	})
	isOwnMessage := *s.currentUserID == senderID
	s.registry.RecordActivity(conversationID, domain.LastMessage{
		Content:   message.Content,
		Timestamp: message.CreatedAt,
		SenderID:  message.SenderID,
	}, isOwnMessage)

	s.persist(ctx, false)
	return message, nil
}

// validateSend maps a missing conversation id to ErrNotFound and a missing
// sender to ErrUnknownUser.
func (s *Session) validateSend(cmd domain.SendMessageCommand) error {
	err := s.validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if stderrors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			switch fe.Field() {
			case "SenderID":
				return fmt.Errorf("sender: %w", errors.ErrUnknownUser)
			case "Content":
				return errors.ErrEmptyContent
			}
		}
	}
	return fmt.Errorf("conversation %q: %w", cmd.ConversationID, errors.ErrNotFound)
}

// EditMessage replaces a message's text and refreshes its timestamp. An unknown
// id is ignored and reported as false.
func (s *Session) EditMessage(ctx context.Context, id, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return false, errors.ErrEmptyContent
	}
	if !s.ledger.Edit(id, text) {
		s.log.Debug("Ignoring edit of unknown message", "message_id", id)
		return false, nil
	}
	s.persist(ctx, false)
	return true, nil
}

// DeleteMessage removes one message. An unknown id is ignored and reported as false.
func (s *Session) DeleteMessage(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.Remove(id) {
		return false
	}
	s.persist(ctx, false)
	return true
}

// MarkRead flags one message as read. It reports false when nothing changed.
func (s *Session) MarkRead(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.MarkRead(id) {
		return false
	}
	s.persist(ctx, false)
	return true
}

func (s *Session) User(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory.Get(id)
}

func (s *Session) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory.List()
}

// SearchUsers finds people to start a conversation with; the signed-in user is never listed.
func (s *Session) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory.Search(ctx, query, lo.FromPtr(s.currentUserID))
}

func (s *Session) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser()
}

// SignIn makes the user owning email the current user. There is no password check.
func (s *Session) SignIn(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := directory.ValidateRegister(directory.RegisterRequest{Email: strings.TrimSpace(email)}); err != nil {
		return domain.User{}, err
	}
	user, ok := s.directory.FindByEmail(email)
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", email, errors.ErrNotFound)
	}
	s.signIn(ctx, user)
	return user, nil
}

// Register creates a profile for email and signs it in.
func (s *Session) Register(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.directory.Register(email)
	if err != nil {
		return domain.User{}, err
	}
	s.signIn(ctx, user)
	s.persist(ctx, true)
	return user, nil
}

func (s *Session) signIn(ctx context.Context, user domain.User) {
	s.registry.ClearCurrent()
	s.currentUserID = lo.ToPtr(user.ID)
	s.saveCurrentUser(ctx, &user)
	s.log.Info("Signed in", "user_id", user.ID)
}

func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ClearCurrent()
	s.currentUserID = nil
	s.saveCurrentUser(ctx, nil)
}

// UpdateProfile edits the signed-in user's profile. Sent messages keep the
// names they were sent with.
func (s *Session) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUserID == nil {
		return domain.User{}, errors.ErrNoCurrentUser
	}
	user, err := s.directory.UpdateProfile(*s.currentUserID, update)
	if err != nil {
		return domain.User{}, err
	}
	s.saveCurrentUser(ctx, &user)
	s.persist(ctx, true)
	return user, nil
}
