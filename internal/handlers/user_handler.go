package handlers

import (
	"net/http"
	"strconv"

	"project-management-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler exposes user listing, activity trails and role assignment.
type UserHandler struct {
	users    *services.UserService
	activity *services.ActivityRecorder
	log      *logrus.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService, activity *services.ActivityRecorder, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, activity: activity, log: log}
}

// List handles GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Activity handles GET /api/users/:id/activity
func (h *UserHandler) Activity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.activity.ForUser(id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries, "count": len(entries)})
}

// AssignRoleRequest represents the role assignment payload.
// ProjectID scopes the assignment to one project when present.
type AssignRoleRequest struct {
	RoleID    uint  `json:"roleId" binding:"required"`
	ProjectID *uint `json:"projectId"`
}

// AssignRole handles POST /api/users/:id/roles
func (h *UserHandler) AssignRole(c *gin.Context) {
	const op = "handlers.User.AssignRole"

	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.users.AssignRole(actorID, userID, req.RoleID, req.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"operation": op,
		"user_id":   userID,
		"role_id":   req.RoleID,
	}).Info("role assigned")
	c.JSON(http.StatusCreated, assignment)
}
