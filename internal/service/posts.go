package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/geocoder89/socialapp/internal/domain/post"
	"github.com/geocoder89/socialapp/internal/domain/user"
)

type PostStore interface {
	InsertPost(ctx context.Context, p post.Post) (post.Post, error)
	ListPostsByCreatedAtDesc(ctx context.Context) ([]post.Post, error)
}

type PostMetrics interface {
	IncPostsCreated(images int)
}

type PostService struct {
	store   PostStore
	metrics PostMetrics
	now     func() time.Time
}

// NewPostService returns a new PostService. metrics may be nil.
func NewPostService(store PostStore, metrics PostMetrics) *PostService {
	return &PostService{
		store:   store,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock swaps the creation clock, for tests.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

func (s *PostService) Create(ctx context.Context, in post.CreateInput) (post.Post, error) {
	email := user.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || name == "" {
		return post.Post{}, apperr.BadRequest("missing_author", "Email and name are required!")
	}

	if !post.HasContent(in.PostContent, len(in.Images)) {
		return post.Post{}, apperr.BadRequest("empty_post", "Post content or at least one image is required!")
	}

	p := post.New(email, name, in.PostContent, post.EncodeImages(in.Images), s.now())

	created, err := s.store.InsertPost(ctx, p)
	if err != nil {
		return post.Post{}, fmt.Errorf("insert post: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncPostsCreated(len(created.Images))
	}

	return created, nil
}

// List returns every post, newest first. Never nil.
func (s *PostService) List(ctx context.Context) ([]post.Post, error) {
	posts, err := s.store.ListPostsByCreatedAtDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if posts == nil {
		posts = []post.Post{}
	}

	return posts, nil
}
