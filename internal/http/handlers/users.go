package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/socialapp/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, req user.SignUpRequest) (user.Identity, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UsersHandler struct {
	svc UserService
}

func NewUsersHandler(svc UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// SignUp handles POST /users.
func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	identity, err := h.svc.Register(ctx.Request.Context(), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    identity,
	})
}

// GetUser handles GET /users?email=.
func (h *UsersHandler) GetUser(ctx *gin.Context) {
	u, err := h.svc.GetByEmail(ctx.Request.Context(), ctx.Query("email"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}
