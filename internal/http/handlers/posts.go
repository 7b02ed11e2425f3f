package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/geocoder89/socialapp/internal/domain/post"
	"github.com/gin-gonic/gin"
)

const (
	imagesField = "images"

	// parts above this stay on disk until read
	multipartMemory = 8 << 20
)

type PostService interface {
	Create(ctx context.Context, in post.CreateInput) (post.Post, error)
	List(ctx context.Context) ([]post.Post, error)
}

type PostsHandler struct {
	svc PostService
}

func NewPostsHandler(svc PostService) *PostsHandler {
	return &PostsHandler{svc: svc}
}

// CreatePost handles POST /posts as multipart/form-data with text fields
// email, name, postContent and zero or more files under "images". A plain
// urlencoded form is accepted too, without images.
func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	in, err := readCreateInput(ctx)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit), nil)
			return
		}

		RespondBadRequest(ctx, "invalid_form", "Could not read form data", nil)
		return
	}

	p, err := h.svc.Create(ctx.Request.Context(), in)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    p,
	})
}

// ListPosts handles GET /posts.
func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	posts, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, posts)
}

func readCreateInput(ctx *gin.Context) (post.CreateInput, error) {
	err := ctx.Request.ParseMultipartForm(multipartMemory)

	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return post.CreateInput{}, err
	}

	in := post.CreateInput{
		Email:       ctx.PostForm("email"),
		Name:        ctx.PostForm("name"),
		PostContent: ctx.PostForm("postContent"),
	}

	form := ctx.Request.MultipartForm
	if form == nil {
		return in, nil
	}

	for _, fh := range form.File[imagesField] {
		img, err := readImage(fh)
		if err != nil {
			return post.CreateInput{}, err
		}

		in.Images = append(in.Images, img)
	}

	return in, nil
}

func readImage(fh *multipart.FileHeader) (post.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return post.ImageUpload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return post.ImageUpload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	return post.ImageUpload{
		Data:     data,
		MimeType: fh.Header.Get("Content-Type"),
	}, nil
}
