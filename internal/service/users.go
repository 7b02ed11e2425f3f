package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/geocoder89/socialapp/internal/domain/user"
	"github.com/geocoder89/socialapp/internal/security"
)

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (user.User, error)
	InsertUser(ctx context.Context, u user.User) (user.User, error)
}

type UserMetrics interface {
	IncUsersRegistered()
}

// UserService handles signup and lookup.
type UserService struct {
	store   UserStore
	hash    func(plain string) (string, error)
	metrics UserMetrics
}

// NewUserService returns a new UserService. metrics may be nil.
func NewUserService(store UserStore, metrics UserMetrics) *UserService {
	return &UserService{
		store:   store,
		hash:    security.HashPassword,
		metrics: metrics,
	}
}

// Register creates a user with a hashed password and returns its identity.
// A duplicate email is a Conflict whether the pre-check or the store's
// unique index catches it.
func (s *UserService) Register(ctx context.Context, req user.SignUpRequest) (user.Identity, error) {
	name := strings.TrimSpace(req.Name)
	email := user.NormalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return user.Identity{}, apperr.BadRequest("missing_fields", "Name, email and password are required!")
	}

	_, err := s.store.FindUserByEmail(ctx, email)

	switch {
	case err == nil:
		return user.Identity{}, errUserExists()
	case errors.Is(err, user.ErrNotFound):
	default:
		return user.Identity{}, fmt.Errorf("find user: %w", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return user.Identity{}, apperr.Internal("Could not create user", err)
	}

	created, err := s.store.InsertUser(ctx, user.New(name, email, hash))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.Identity{}, errUserExists()
		}

		return user.Identity{}, fmt.Errorf("insert user: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncUsersRegistered()
	}

	return created.Identity(), nil
}

// GetByEmail returns the stored user. The hash stays on the struct but is
// never serialized.
func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	email = user.NormalizeEmail(email)

	if email == "" {
		return user.User{}, apperr.BadRequest("email_required", "Email is required!")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.NotFound("user_not_found", "User not found!")
		}

		return user.User{}, fmt.Errorf("find user: %w", err)
	}

	return u, nil
}

func errUserExists() *apperr.Error {
	return apperr.Conflict("user_exists", "User already exists!")
}
