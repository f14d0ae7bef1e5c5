package handler

import (
	"time"

	identityapp "github.com/circlesoft/crm/internal/application/identity"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/auth"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/circlesoft/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles sign-in, registration and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	jwtService  *auth.JWTService
	revoker     auth.TokenRevoker
}

// NewAuthHandler creates a new AuthHandler. revoker may be nil.
func NewAuthHandler(authService *identityapp.AuthService, jwtService *auth.JWTService, revoker auth.TokenRevoker) *AuthHandler {
	return &AuthHandler{authService: authService, jwtService: jwtService, revoker: revoker}
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// ResetPasswordRequest is the forgotten password form
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SessionResponse is returned after a successful sign-in or sign-up
type SessionResponse struct {
	User  *identity.User    `json:"user"`
	Token *auth.AccessToken `json:"token"`
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.issue(c, user, false)
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AcceptTerms:     req.AcceptTerms,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.issue(c, user, true)
}

func (h *AuthHandler) issue(c *gin.Context, user *identity.User, created bool) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := SessionResponse{User: user, Token: token}
	if created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), identityapp.ResetPasswordInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Remembered GET /auth/remembered
func (h *AuthHandler) Remembered(c *gin.Context) {
	creds, err := h.authService.Remembered(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, creds)
}

// Session GET /auth/session returns the current user when it matches the token
func (h *AuthHandler) Session(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if user.ID != middleware.GetJWTUserID(c) {
		h.HandleError(c, shared.ErrNoCurrentUser)
		return
	}
	h.Success(c, user)
}

// Logout POST /auth/logout revokes the presented token and ends the session
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if claims := middleware.GetJWTClaims(c); claims != nil && h.revoker != nil {
		if err := h.revoker.Revoke(ctx, claims.ID, claims.RemainingTTL(time.Now())); err != nil {
			logger.GetGinLogger(c).Warn("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		}
	}
	if err := h.authService.Logout(ctx); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
