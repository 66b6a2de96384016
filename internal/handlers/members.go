package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/service"
)

type MemberHandler struct {
	members *service.MemberService
}

func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

func (h *MemberHandler) GetMe(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}

	member, err := h.members.FindMemberByID(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// DeleteMe withdraws the authenticated member.
func (h *MemberHandler) DeleteMe(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}

	if err := h.members.Delete(c.Request.Context(), memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}
