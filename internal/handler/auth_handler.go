package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plaxtilineas/catalog_api/internal/middleware"
	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/service"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      *service.TokenManager
}

func NewAuthHandler(authService *service.AuthService, tokens *service.TokenManager) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorFrom(c, fmt.Errorf("%w: %v", utils.ErrValidation, err), "Email and password are required")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.Error(c, http.StatusUnauthorized, utils.ErrInvalidCredentials.Error(), "Invalid credentials")
			return
		}
		utils.ErrorFrom(c, err, "Login failed")
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorFrom(c, fmt.Errorf("%w: %v", utils.ErrValidation, err), "Username, email and password are required")
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, utils.ErrUserExists) {
			utils.ErrorFrom(c, err, "A user with that email or username already exists")
			return
		}
		utils.ErrorFrom(c, err, "Registration failed")
		return
	}

	utils.Success(c, http.StatusCreated, "User registered", resp)
}

// Logout acknowledges the request. Tokens are not tracked server side;
// the client discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorFrom(c, fmt.Errorf("%w: %v", utils.ErrValidation, err), "Token is required")
		return
	}

	token, err := h.authService.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidToken) || errors.Is(err, utils.ErrUserNotFound) {
			utils.Error(c, http.StatusUnauthorized, utils.ErrInvalidToken.Error(), "Invalid or expired token")
			return
		}
		utils.ErrorFrom(c, err, "Token refresh failed")
		return
	}

	utils.Success(c, http.StatusOK, "Token refreshed", gin.H{
		"token":     token,
		"expiresIn": h.tokens.ExpiresIn(),
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		utils.ErrorFrom(c, utils.ErrUnauthenticated, "Access token required")
		return
	}
	utils.Success(c, http.StatusOK, "Profile", gin.H{"user": claims})
}
