package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voice-recorder/dto"
	"voice-recorder/pkg/apperror"
	"voice-recorder/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("email and password are required"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("User registered successfully", result))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Login successful", result))
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, dto.OK("Profile retrieved successfully", gin.H{
		"user": dto.AuthUser{
			ID:        user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
			UpdatedAt: &user.UpdatedAt,
		},
	}))
}

func (h *AuthHandler) ValidateToken(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, dto.OK("Token is valid", gin.H{
		"valid": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	}))
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	user := currentUser(c)

	accessToken, err := h.auth.RefreshToken(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Token refreshed successfully", dto.TokenResponse{AccessToken: accessToken}))
}
