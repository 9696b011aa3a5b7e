// Package directory is the identity directory: the set of user profiles the
// inbox can address. It is seeded at startup and only changes through
// registration and explicit profile updates.
package directory

import (
	"chat-inbox/domain"
	"chat-inbox/errors"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Directory struct {
	users []domain.User
	byID  map[string]int
	index *index
	log   *slog.Logger
	now   func() time.Time
}

// New indexes users in the given order. Later duplicates of an id replace earlier ones.
func New(users []domain.User, log *slog.Logger) (*Directory, error) {
	if log == nil {
		log = slog.Default()
	}
	idx, err := newIndex()
	if err != nil {
		return nil, err
	}
	d := &Directory{
		byID:  make(map[string]int, len(users)),
		index: idx,
		log:   log.With("component", "directory"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, u := range users {
		if err := d.put(u); err != nil {
			_ = idx.close()
			return nil, err
		}
	}
	return d, nil
}

func (d *Directory) put(user domain.User) error {
	user = user.Clone()
	if i, ok := d.byID[user.ID]; ok {
		d.users[i] = user
	} else {
		d.byID[user.ID] = len(d.users)
		d.users = append(d.users, user)
	}
	return d.index.put(user)
}

// Get returns the profile for id. An unknown id is a normal outcome.
func (d *Directory) Get(id string) (domain.User, bool) {
	i, ok := d.byID[id]
	if !ok {
		return domain.User{}, false
	}
	return d.users[i].Clone(), true
}

func (d *Directory) List() []domain.User {
	return lo.Map(d.users, func(u domain.User, _ int) domain.User {
		return u.Clone()
	})
}

func (d *Directory) FindByEmail(email string) (domain.User, bool) {
	email = normalizeEmail(email)
	user, ok := lo.Find(d.users, func(u domain.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	return user.Clone(), ok
}

// Search returns users whose display name or email contains query, ignoring
// case, in directory order. excludeID (usually the signed-in user) is left out.
func (d *Directory) Search(ctx context.Context, query, excludeID string) ([]domain.User, error) {
	ids, err := d.index.search(ctx, query, len(d.users)+1)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return lo.FilterMap(d.users, func(u domain.User, _ int) (domain.User, bool) {
		_, hit := ids[u.ID]
		return u.Clone(), hit && u.ID != excludeID
	}), nil
}

// Register creates a profile for a new email address. The display name is the
// local part of the address.
func (d *Directory) Register(email string) (domain.User, error) {
	email = normalizeEmail(email)
	if err := ValidateRegister(RegisterRequest{Email: email}); err != nil {
		return domain.User{}, err
	}
	if _, exists := d.FindByEmail(email); exists {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserAlreadyExists, email)
	}
	user := domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: strings.SplitN(email, "@", 2)[0],
		CreatedAt:   d.now(),
	}
	if err := d.put(user); err != nil {
		return domain.User{}, err
	}
	d.log.Debug("user registered", "user_id", user.ID, "email", email)
	return user, nil
}

// UpdateProfile applies the non-nil fields of update. Messages already sent keep
// the names they were sent with.
func (d *Directory) UpdateProfile(id string, update domain.ProfileUpdate) (domain.User, error) {
	user, ok := d.Get(id)
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, errors.ErrNotFound)
	}
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if err := ValidateProfile(ProfileRequest{DisplayName: name}); err != nil {
			return domain.User{}, err
		}
		user.DisplayName = name
	}
	if update.PhotoRef != nil {
		if ref := strings.TrimSpace(*update.PhotoRef); ref != "" {
			user.PhotoRef = lo.ToPtr(ref)
		} else {
			user.PhotoRef = nil
		}
	}
	if err := d.put(user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Close releases the search index.
func (d *Directory) Close() error {
	return d.index.close()
}
