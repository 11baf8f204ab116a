package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvforge/internal/auth"
	"cvforge/internal/database"
)

// AuthHandler 处理注册、登录与令牌刷新。
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
}

func NewAuthHandler(db *gorm.DB, authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *AuthHandler) newTokenResponse(pair auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(h.authService.AccessTokenTTL().Seconds()),
	}
}

// Register 创建新用户。
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var existing database.User
	err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		Conflict(c, "username already taken")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		Internal(c, "failed to check username")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	user := database.User{Username: req.Username, PasswordHash: hash}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		Internal(c, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login 校验凭据并签发令牌对。
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	var user database.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		Internal(c, "failed to query user")
		return
	}

	if !h.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID)
	if err != nil {
		Internal(c, "failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, h.newTokenResponse(pair))
}

// Refresh 用刷新令牌换取新的令牌对。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	claims, err := h.authService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		Unauthorized(c)
		return
	}

	// 确认用户仍然存在，避免给已注销账号续期。
	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID)
	if err != nil {
		Internal(c, "failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, h.newTokenResponse(pair))
}
