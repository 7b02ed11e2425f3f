package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/geocoder89/socialapp/internal/domain/post"
	"github.com/geocoder89/socialapp/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPostStore struct{ err error }

func (f failingPostStore) InsertPost(context.Context, post.Post) (post.Post, error) {
	return post.Post{}, f.err
}

func (f failingPostStore) ListPostsByCreatedAtDesc(context.Context) ([]post.Post, error) {
	return nil, f.err
}

type nilListStore struct{ failingPostStore }

func (nilListStore) ListPostsByCreatedAtDesc(context.Context) ([]post.Post, error) {
	return nil, nil
}

type postCounter struct{ posts, images int }

func (c *postCounter) IncPostsCreated(images int) {
	c.posts++
	c.images += images
}

// tick returns a clock advancing one second per call.
func tick(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCreatePost_Validation(t *testing.T) {
	svc := NewPostService(memory.NewPostsRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   post.CreateInput
	}{
		{name: "missing_email", in: post.CreateInput{Name: "A", PostContent: "hi"}},
		{name: "missing_name", in: post.CreateInput{Email: "a@x.com", PostContent: "hi"}},
		{name: "no_content_no_images", in: post.CreateInput{Email: "a@x.com", Name: "A"}},
		{name: "blank_content_no_images", in: post.CreateInput{Email: "a@x.com", Name: "A", PostContent: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		})
	}
}

func TestCreatePost_ImageOnly(t *testing.T) {
	metrics := &postCounter{}
	svc := NewPostService(memory.NewPostsRepo(), metrics).WithClock(tick(t0))

	p, err := svc.Create(context.Background(), post.CreateInput{
		Email:  "a@x.com",
		Name:   "A",
		Images: []post.ImageUpload{{Data: []byte{1, 2, 3}, MimeType: "image/gif"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "", p.PostContent)
	require.Len(t, p.Images, 1)
	assert.True(t, strings.HasPrefix(p.Images[0], "data:image/gif;base64,"))
	assert.Equal(t, "data:image/gif;base64,AQID", p.Images[0])
	assert.Equal(t, t0.Add(time.Second), p.CreatedAt)
	assert.Empty(t, p.Comments)
	assert.NotNil(t, p.Comments)
	assert.Equal(t, []string{}, p.Likes)
	assert.Equal(t, []string{}, p.Dislikes)
	assert.NotEmpty(t, p.ID)

	assert.Equal(t, 1, metrics.posts)
	assert.Equal(t, 1, metrics.images)
}

func TestListPosts_NewestFirst(t *testing.T) {
	svc := NewPostService(memory.NewPostsRepo(), nil).WithClock(tick(t0))
	ctx := context.Background()

	for _, c := range []string{"t1", "t2", "t3"} {
		_, err := svc.Create(ctx, post.CreateInput{Email: "a@x.com", Name: "A", PostContent: c})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{list[0].PostContent, list[1].PostContent, list[2].PostContent})
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt))
	}
}

func TestListPosts_OutOfOrderInserts(t *testing.T) {
	store := memory.NewPostsRepo()
	ctx := context.Background()

	for _, offset := range []int{2, 3, 1} {
		_, err := store.InsertPost(ctx, post.New("a@x.com", "A", "x", nil, t0.Add(time.Duration(offset)*time.Minute)))
		require.NoError(t, err)
	}

	list, err := NewPostService(store, nil).List(ctx)
	require.NoError(t, err)

	assert.Equal(t, t0.Add(3*time.Minute), list[0].CreatedAt)
	assert.Equal(t, t0.Add(2*time.Minute), list[1].CreatedAt)
	assert.Equal(t, t0.Add(1*time.Minute), list[2].CreatedAt)
}

func TestListPosts_EmptyIsNotNil(t *testing.T) {
	list, err := NewPostService(nilListStore{}, nil).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Len(t, list, 0)
}

func TestPostStoreUnavailable(t *testing.T) {
	svc := NewPostService(failingPostStore{err: apperr.ErrStoreUnavailable}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, post.CreateInput{Email: "a@x.com", Name: "A", PostContent: "hi"})
	assert.Equal(t, apperr.KindStoreUnavailable, apperr.KindOf(err))

	_, err = svc.List(ctx)
	assert.Equal(t, apperr.KindStoreUnavailable, apperr.KindOf(err))

	_, err = NewPostService(failingPostStore{err: errors.New("boom")}, nil).List(ctx)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
