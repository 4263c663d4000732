package handler

import (
	"errors"
	"net/http"

	"timesheet/internal/logger"
	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ auth *service.AuthService }

func NewAuthHandler(auth *service.AuthService) *AuthHandler { return &AuthHandler{auth: auth} }

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	m, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		logger.Warn("login.failed", "email", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		writeError(c, "login", err)
		return
	}

	token, err := middleware.IssueToken(m)
	if err != nil {
		writeError(c, "login", err)
		return
	}
	logger.Info("login.ok", "uid", m.ID, "role", m.Role)

	c.JSON(http.StatusOK, model.LoginResponse{
		Token: token,
		User:  model.User{ID: m.ID, Email: m.Email, FullName: m.FullName, TeamID: m.TeamID, Role: m.Role},
	})
}

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
