package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/models"
	"gadamagado/api/internal/service"
)

type userResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"fullName"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       *string `json:"email"`
	Region      string  `json:"region"`
	District    string  `json:"district"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"isActive"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		FullName:    user.FullName,
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
		Region:      user.Region,
		District:    user.District,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
	}
}

func (h HandlerSet) setSessionCookie(c *gin.Context, sessionID string, maxAge int) {
	secure := h.cfg.Environment == "production"
	c.SetCookie(h.cfg.Security.SessionCookie, sessionID, maxAge, "/", "", secure, true)
}

type registerRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Region      string `json:"region"`
	District    string `json:"district"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
		Region:      req.Region,
		District:    req.District,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			fail(c, http.StatusBadRequest, "Please provide all required fields")
		case errors.Is(err, service.ErrPhoneRegistered):
			fail(c, http.StatusBadRequest, "Phone number already registered")
		default:
			h.log.Error().Err(err).Msg("register failed")
			fail(c, http.StatusInternalServerError, "Error registering user")
		}
		return
	}

	h.setSessionCookie(c, result.SessionID, int(h.cfg.Security.SessionTTL.Seconds()))
	ok(c, http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   result.Token,
		"user":    toUserResponse(result.User),
	})
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Please provide phone number and password")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrUserInactive):
			fail(c, http.StatusForbidden, "Account is deactivated")
		default:
			h.log.Error().Err(err).Msg("login failed")
			fail(c, http.StatusInternalServerError, "Error logging in")
		}
		return
	}

	h.setSessionCookie(c, result.SessionID, int(h.cfg.Security.SessionTTL.Seconds()))
	ok(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    toUserResponse(result.User),
	})
}

// Logout is idempotent: it reports success even when there was no session
// to destroy or the store misbehaved.
func (h HandlerSet) Logout(c *gin.Context) {
	if sid, err := c.Cookie(h.cfg.Security.SessionCookie); err == nil {
		h.authService.Logout(c.Request.Context(), sid)
	}

	h.setSessionCookie(c, "", -1)
	ok(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h HandlerSet) AuthStatus(c *gin.Context) {
	sid, err := c.Cookie(h.cfg.Security.SessionCookie)
	if err != nil || sid == "" {
		ok(c, http.StatusOK, gin.H{"authenticated": false})
		return
	}

	userID, err := h.sessions.Resolve(c.Request.Context(), sid)
	if err != nil {
		ok(c, http.StatusOK, gin.H{"authenticated": false})
		return
	}

	ok(c, http.StatusOK, gin.H{
		"authenticated": true,
		"userId":        userID,
	})
}
