package handlers

import (
	"net/http"

	"project-management-api/internal/middleware"
	"project-management-api/internal/models"
	"project-management-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler exposes registration, login and the current-user lookup.
type AuthHandler struct {
	users *services.UserService
	log   *logrus.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email      string               `json:"email" binding:"required,email"`
	Username   string               `json:"username" binding:"required"`
	Password   string               `json:"password" binding:"required,min=8"`
	FullName   string               `json:"fullName"`
	Role       models.UserRoleLabel `json:"role"`
	Phone      string               `json:"phone"`
	Department string               `json:"department"`
	Position   string               `json:"position"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	const op = "handlers.Auth.Register"

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.users.Register(services.RegisterInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		Phone:      req.Phone,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, AuthResponse{User: user, AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	const op = "handlers.Auth.Login"

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.users.Login(req.UsernameOrEmail, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("user_id", user.ID).Info("user logged in")
	c.JSON(http.StatusOK, AuthResponse{User: user, AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	v, ok := c.Get(middleware.CtxUser)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	c.JSON(http.StatusOK, v.(*models.User))
}
