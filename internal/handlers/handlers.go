package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/auth"
	"github.com/salmalteam/salmal/backend/internal/middleware"
	"github.com/salmalteam/salmal/backend/internal/service"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Vote    *VoteHandler
	Comment *CommentHandler
	Member  *MemberHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(authService *auth.Service, votes *service.VoteService, members *service.MemberService) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(authService),
		Vote:    NewVoteHandler(votes),
		Comment: NewCommentHandler(votes),
		Member:  NewMemberHandler(members),
	}
}

// respondError writes the status and body matching err.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	switch {
	case errors.As(err, &svcErr):
		c.JSON(statusFor(svcErr.Kind), gin.H{"code": svcErr.Code, "error": svcErr.Message})
	case errors.Is(err, storage.ErrUpload):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"code": "IMAGE_UPLOAD_FAILED", "error": "Failed to upload image"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "error": "Internal server error"})
	}
}

func statusFor(kind error) int {
	switch kind {
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrForbidden:
		return http.StatusForbidden
	case service.ErrConflict:
		return http.StatusConflict
	case service.ErrInvalid:
		return http.StatusBadRequest
	case service.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": msg})
}

// requester returns the authenticated member id, writing 401 when absent.
func requester(c *gin.Context) (int, bool) {
	id, ok := middleware.MemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return 0, false
	}
	return id, true
}

func voteIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("voteID"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid vote id")
		return 0, false
	}
	return id, true
}

// pageQuery reads the cursorId and size query parameters.
func pageQuery(c *gin.Context) (service.Page, bool) {
	var page service.Page
	if raw := c.Query("cursorId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			badRequest(c, "Invalid cursorId")
			return page, false
		}
		page.CursorID = id
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			badRequest(c, "Invalid size")
			return page, false
		}
		page.Size = size
	}
	return page, true
}
