package http

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

type AuthHandler struct {
	service domain.AuthService
}

func NewAuthHandler(service domain.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/api/auth/register", h.Register)
	engine.POST("/api/auth/login", h.Login)
	engine.POST("/api/keys", h.CreateKey)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *ginext.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "Email and a password of at least 8 characters are required",
		})
		return
	}

	user, apiKey, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("email", req.Email).Msg("registration failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		UserID: user.ID,
		Email:  user.Email,
		APIKey: apiKey,
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *ginext.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "Email and password are required",
		})
		return
	}

	user, apiKey, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		UserID: user.ID,
		Email:  user.Email,
		APIKey: apiKey,
	})
}

// CreateKey POST /api/keys
func (h *AuthHandler) CreateKey(c *ginext.Context) {
	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Label = ""
	}

	apiKey, err := h.service.CreateKey(c.Request.Context(), currentUserID(c), req.Label)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to create api key")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.KeyResponse{APIKey: apiKey})
}
