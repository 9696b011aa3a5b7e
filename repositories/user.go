package repositories

import (
	"chat-inbox/domain"
	"chat-inbox/storage"
	"context"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protowire"
)

type IUserRepository interface {
	SaveCurrentUser(ctx context.Context, user *domain.User) error
	LoadCurrentUser(ctx context.Context) (*domain.User, error)
	SaveUsers(ctx context.Context, users []domain.User) error
	LoadUsers(ctx context.Context) ([]domain.User, bool, error)
}

type UserRepository struct {
	store storage.BlobStore
}

func NewUserRepository(store storage.BlobStore) UserRepository {
	return UserRepository{store: store}
}

// SaveCurrentUser stores the signed-in profile. A nil user signs out by removing the key.
func (u UserRepository) SaveCurrentUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return u.store.Remove(ctx, CurrentUserKey)
	}
	return u.store.Set(ctx, CurrentUserKey, fromUser(*user))
}

// LoadCurrentUser returns nil when nobody is signed in.
func (u UserRepository) LoadCurrentUser(ctx context.Context) (*domain.User, error) {
	blob, ok, err := u.store.Get(ctx, CurrentUserKey)
	if err != nil || !ok {
		return nil, err
	}
	user, err := toUser(blob)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", CurrentUserKey, err)
	}
	return &user, nil
}

// SaveUsers stores every profile known to the directory, registered users and edits included.
func (u UserRepository) SaveUsers(ctx context.Context, users []domain.User) error {
	return u.store.Set(ctx, UsersKey, EncodeUsers(users))
}

func (u UserRepository) LoadUsers(ctx context.Context) ([]domain.User, bool, error) {
	blob, ok, err := u.store.Get(ctx, UsersKey)
	if err != nil || !ok {
		return nil, ok, err
	}
	users, err := DecodeUsers(blob)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", UsersKey, err)
	}
	return users, true, nil
}

const (
	userID          protowire.Number = 1
	userEmail       protowire.Number = 2
	userDisplayName protowire.Number = 3
	userPhotoRef    protowire.Number = 4
	userCreatedAt   protowire.Number = 5
)

func EncodeUsers(users []domain.User) []byte {
	return encodeList(lo.Map(users, func(user domain.User, _ int) []byte {
		return fromUser(user)
	}))
}

func DecodeUsers(blob []byte) ([]domain.User, error) {
	records, err := decodeList(blob)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		user, err := toUser(r)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func fromUser(user domain.User) []byte {
	var b []byte
	b = appendString(b, userID, user.ID)
	b = appendString(b, userEmail, user.Email)
	b = appendString(b, userDisplayName, user.DisplayName)
	b = appendOptionalString(b, userPhotoRef, user.PhotoRef)
	b = appendTime(b, userCreatedAt, user.CreatedAt)
	return b
}

func toUser(record []byte) (domain.User, error) {
	var user domain.User
	err := decodeFields(record, func(f field) error {
		switch f.num {
		case userID:
			user.ID = f.str()
		case userEmail:
			user.Email = f.str()
		case userDisplayName:
			user.DisplayName = f.str()
		case userPhotoRef:
			user.PhotoRef = lo.ToPtr(f.str())
		case userCreatedAt:
			user.CreatedAt = f.time()
		}
		return nil
	})
	return user, err
}

// DecodeUser reads the single profile stored under CurrentUserKey.
func DecodeUser(blob []byte) (domain.User, error) {
	return toUser(blob)
}
