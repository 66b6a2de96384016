package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/auth"
	"github.com/salmalteam/salmal/backend/internal/service"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login issues tokens for a member already signed up with the provider id.
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		ProviderID string `json:"providerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Login(c.Request.Context(), input.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// SignUp registers a member with the provider named in the path.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var input struct {
		ProviderID                  string `json:"providerId" binding:"required"`
		NickName                    string `json:"nickName" binding:"required"`
		MarketingInformationConsent bool   `json:"marketingInformationConsent"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.SignUp(c.Request.Context(), service.SignUpInput{
		Provider:         c.Param("provider"),
		ProviderID:       input.ProviderID,
		Nickname:         input.NickName,
		MarketingConsent: input.MarketingInformationConsent,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	memberID, ok := requester(c)
	if !ok {
		return
	}
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.auth.Logout(c.Request.Context(), memberID, input.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Reissue(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Reissue(c.Request.Context(), input.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
