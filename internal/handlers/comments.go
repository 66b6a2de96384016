package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/service"
)

type CommentHandler struct {
	votes *service.VoteService
}

func NewCommentHandler(votes *service.VoteService) *CommentHandler {
	return &CommentHandler{votes: votes}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	comment, err := h.votes.Comment(c.Request.Context(), memberID, voteID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComments returns one page of comments, oldest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	result, err := h.votes.SearchComments(c.Request.Context(), voteID, memberID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CommentHandler) GetAllComments(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	comments, err := h.votes.SearchAllComments(c.Request.Context(), voteID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
