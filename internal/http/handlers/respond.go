package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed response. Raw causes are logged,
// never serialized.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondNotFound(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusNotFound, code, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondAppError maps a service error onto a status code. Duplicate
// signups answer 400, not 409, to keep the original client contract.
func RespondAppError(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	hasAppErr := errors.As(err, &appErr)

	switch kind := apperr.KindOf(err); kind {
	case apperr.KindBadRequest, apperr.KindConflict:
		RespondBadRequest(ctx, appErr.Code, appErr.Message, nil)

	case apperr.KindNotFound:
		RespondNotFound(ctx, appErr.Code, appErr.Message)

	case apperr.KindStoreUnavailable:
		logFailure(ctx, kind, err)
		RespondError(ctx, http.StatusInternalServerError, "store_unavailable", "Database is unavailable, try again later", nil)

	default:
		logFailure(ctx, kind, err)

		message := "Server error"
		if hasAppErr && appErr.Message != "" {
			message = appErr.Message
		}
		RespondInternal(ctx, message)
	}
}

func logFailure(ctx *gin.Context, kind apperr.Kind, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
		"route", ctx.FullPath(),
		"kind", kind.String(),
		"err", err,
	)
}
