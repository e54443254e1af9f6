package handlers

import (
	"net/http"
	"time"

	"project-management-api/internal/authz"
	"project-management-api/internal/models"
	"project-management-api/internal/realtime"
	"project-management-api/internal/services"
	"project-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProjectHandler exposes project CRUD, membership, comments and
// attachments.
type ProjectHandler struct {
	projects *services.ProjectService
	resolver *authz.Resolver
	uploads  *storage.Store
	hub      *realtime.Hub
	log      *logrus.Logger
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(projects *services.ProjectService, resolver *authz.Resolver, uploads *storage.Store, hub *realtime.Hub, log *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, resolver: resolver, uploads: uploads, hub: hub, log: log}
}

// canMutate grants when the actor created the project or holds a
// role-derived permission for the action within its scope.
func (h *ProjectHandler) canMutate(actorID uint, project *models.Project, action string) (bool, error) {
	if project.CreatorID == actorID {
		return true, nil
	}
	return h.resolver.Authorize(actorID, "project", action, &project.ID)
}

// CreateProjectRequest represents the project creation payload
type CreateProjectRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Status      models.ProjectStatus   `json:"status"`
	Priority    models.ProjectPriority `json:"priority"`
	StartDate   *time.Time             `json:"startDate"`
	EndDate     *time.Time             `json:"endDate"`
	Budget      int                    `json:"budget"`
}

// UpdateProjectRequest represents a partial project update. Omitted
// fields are left unchanged; clearing a field requires sending its
// explicit empty value.
type UpdateProjectRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Status      *models.ProjectStatus   `json:"status"`
	Priority    *models.ProjectPriority `json:"priority"`
	StartDate   *time.Time              `json:"startDate"`
	EndDate     *time.Time              `json:"endDate"`
	Budget      *int                    `json:"budget"`
	Progress    *int                    `json:"progress"`
	IsActive    *bool                   `json:"isActive"`
}

// List handles GET /api/projects
// Returns the projects the authenticated user created or belongs to.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	projects, err := h.projects.ListForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projects.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	const op = "handlers.Project.Create"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	granted, err := h.resolver.Authorize(userID, "project", "create", nil)
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(userID, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("project_id", project.ID).Info("project created")
	h.hub.Publish(realtime.Event{Type: "project_created", Resource: "project", ResourceID: project.ID, ActorID: userID}, userID)
	c.JSON(http.StatusCreated, project)
}

// Update handles PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	const op = "handlers.Project.Update"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projects.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	granted, err := h.canMutate(userID, project, "update")
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.projects.Update(userID, id, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Progress:    req.Progress,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("project_id", id).Info("project updated")
	h.hub.Publish(realtime.Event{Type: "project_updated", Resource: "project", ResourceID: id, ActorID: userID}, userID)
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/projects/:id
// Only the project creator may delete, regardless of role grants.
func (h *ProjectHandler) Delete(c *gin.Context) {
	const op = "handlers.Project.Delete"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	if err := h.projects.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("project_id", id).Info("project deleted")
	h.hub.Publish(realtime.Event{Type: "project_deleted", Resource: "project", ResourceID: id, ActorID: userID}, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully", "id": id})
}

// AddMemberRequest represents the membership payload
type AddMemberRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

// AddMember handles POST /api/projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projects.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	granted, err := h.canMutate(userID, project, "update")
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.projects.AddMember(userID, id, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// Members handles GET /api/projects/:id/members
func (h *ProjectHandler) Members(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	members, err := h.projects.Members(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

// AddCommentRequest represents the comment payload
type AddCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

// AddComment handles POST /api/projects/:id/comments
func (h *ProjectHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.projects.AddComment(userID, id, req.Content, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Comments handles GET /api/projects/:id/comments
func (h *ProjectHandler) Comments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	comments, err := h.projects.Comments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Upload handles POST /api/projects/:id/attachments (multipart form,
// field "file").
func (h *ProjectHandler) Upload(c *gin.Context) {
	const op = "handlers.Project.Upload"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	saved, err := h.uploads.Save(header)
	if err != nil {
		if err == storage.ErrTooLarge {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	attachment, err := h.projects.AddAttachment(userID, id, saved.Filename, saved.Path, saved.Size, saved.MimeType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}
