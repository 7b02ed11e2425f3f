package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/socialapp/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo is an in-process users collection keyed by normalized email.
// Used by tests and STORE_DRIVER=memory.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) FindUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	u, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return clone(u), nil
}

// InsertUser enforces the same uniqueness the mongo index does.
func (r *UsersRepo) InsertUser(ctx context.Context, u user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[u.Email]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	u.ID = uuid.NewString()
	r.items[u.Email] = clone(u)

	return u, nil
}

func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func clone(u user.User) user.User {
	u.Hobbies = append([]string{}, u.Hobbies...)
	return u
}
