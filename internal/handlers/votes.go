package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/service"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Register creates a vote from the multipart "imageFile" field.
func (h *VoteHandler) Register(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	header, err := c.FormFile("imageFile")
	if err != nil {
		badRequest(c, "imageFile is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "Unreadable imageFile")
		return
	}
	defer file.Close()

	vote, err := h.votes.Register(c.Request.Context(), memberID, storage.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vote)
}

func (h *VoteHandler) GetVotes(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	result, err := h.votes.SearchList(c.Request.Context(), memberID, page, service.SearchType(c.DefaultQuery("searchType", string(service.SearchHome))))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VoteHandler) GetVote(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	view, err := h.votes.Search(c.Request.Context(), memberID, voteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *VoteHandler) DeleteVote(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	if err := h.votes.Delete(c.Request.Context(), memberID, voteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote deleted successfully"})
}

func (h *VoteHandler) Evaluate(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}
	var input struct {
		VoteEvaluationType models.EvaluationType `json:"voteEvaluationType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.votes.Evaluate(c.Request.Context(), memberID, voteID, input.VoteEvaluationType); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote evaluated"})
}

func (h *VoteHandler) CancelEvaluation(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	if err := h.votes.CancelEvaluation(c.Request.Context(), memberID, voteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Evaluation cancelled"})
}

func (h *VoteHandler) Bookmark(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	if err := h.votes.Bookmark(c.Request.Context(), memberID, voteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote bookmarked"})
}

func (h *VoteHandler) CancelBookmark(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	if err := h.votes.CancelBookmark(c.Request.Context(), memberID, voteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookmark cancelled"})
}

func (h *VoteHandler) Report(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	voteID, ok := voteIDParam(c)
	if !ok {
		return
	}

	if err := h.votes.Report(c.Request.Context(), memberID, voteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote reported"})
}
