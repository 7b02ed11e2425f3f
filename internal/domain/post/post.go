package post

import (
	"strings"
	"time"
)

type Post struct {
	ID          string         `json:"_id,omitempty"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	PostContent string         `json:"postContent"`
	Images      []string       `json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
	Comments    map[string]any `json:"comments"`
	Likes       []string       `json:"likes"`
	Dislikes    []string       `json:"dislikes"`
}

// ImageUpload is one uploaded file before encoding.
type ImageUpload struct {
	Data     []byte
	MimeType string
}

type CreateInput struct {
	Email       string
	Name        string
	PostContent string
	Images      []ImageUpload
}

// HasContent reports whether a post would carry text or at least one image.
func HasContent(content string, images int) bool {
	return strings.TrimSpace(content) != "" || images > 0
}

// New builds a post with every reserved field initialized. createdAt keeps
// millisecond precision, the resolution the store persists.
func New(email, name, content string, images []string, now time.Time) Post {
	if images == nil {
		images = []string{}
	}

	return Post{
		Email:       email,
		Name:        strings.TrimSpace(name),
		PostContent: content,
		Images:      images,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
		Comments:    map[string]any{},
		Likes:       []string{},
		Dislikes:    []string{},
	}
}
