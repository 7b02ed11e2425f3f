package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/socialapp/internal/domain/post"
	"github.com/google/uuid"
)

type PostsRepo struct {
	mu    sync.RWMutex
	items []post.Post
}

func NewPostsRepo() *PostsRepo {
	return &PostsRepo{}
}

func (r *PostsRepo) InsertPost(ctx context.Context, p post.Post) (post.Post, error) {
	if err := ctx.Err(); err != nil {
		return post.Post{}, err
	}

	p.ID = uuid.NewString()

	r.mu.Lock()
	r.items = append(r.items, p)
	r.mu.Unlock()

	return p, nil
}

// ListPostsByCreatedAtDesc returns newest first; equal timestamps keep the
// later insert first, matching the mongo sort on _id.
func (r *PostsRepo) ListPostsByCreatedAtDesc(ctx context.Context) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]post.Post, len(r.items))
	for i := range r.items {
		out[len(r.items)-1-i] = r.items[i]
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
