package handlers

import (
	"net/http"
	"strconv"
	"time"

	"project-management-api/internal/authz"
	"project-management-api/internal/models"
	"project-management-api/internal/realtime"
	"project-management-api/internal/services"
	"project-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler exposes task CRUD, assignment, comments, attachments and
// tags.
type TaskHandler struct {
	tasks    *services.TaskService
	projects *services.ProjectService
	resolver *authz.Resolver
	uploads  *storage.Store
	hub      *realtime.Hub
	log      *logrus.Logger
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(tasks *services.TaskService, projects *services.ProjectService, resolver *authz.Resolver, uploads *storage.Store, hub *realtime.Hub, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects, resolver: resolver, uploads: uploads, hub: hub, log: log}
}

// canMutate grants when the actor created the owning project or holds a
// role-derived task permission within the project scope.
func (h *TaskHandler) canMutate(actorID, projectID uint, action string) (bool, error) {
	project, err := h.projects.Get(projectID)
	if err != nil {
		return false, err
	}
	if project.CreatorID == actorID {
		return true, nil
	}
	return h.resolver.Authorize(actorID, "task", action, &projectID)
}

// CreateTaskRequest represents the task creation payload
type CreateTaskRequest struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	ProjectID      uint                `json:"projectId" binding:"required"`
	ParentTaskID   *uint               `json:"parentTaskId"`
	EstimatedHours int                 `json:"estimatedHours"`
	StartDate      *time.Time          `json:"startDate"`
	DueDate        *time.Time          `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. Omitted fields
// are left unchanged.
type UpdateTaskRequest struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	Status         *models.TaskStatus   `json:"status"`
	Priority       *models.TaskPriority `json:"priority"`
	EstimatedHours *int                 `json:"estimatedHours"`
	ActualHours    *int                 `json:"actualHours"`
	StartDate      *time.Time           `json:"startDate"`
	DueDate        *time.Time           `json:"dueDate"`
}

// List handles GET /api/tasks
// With ?projectId= it lists a project's tasks, otherwise the tasks
// assigned to the authenticated user.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var (
		tasks []models.Task
		err   error
	)
	if raw := c.Query("projectId"); raw != "" {
		projectID, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid projectId"})
			return
		}
		tasks, err = h.tasks.ListByProject(uint(projectID))
	} else {
		tasks, err = h.tasks.ListForUser(userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	const op = "handlers.Task.Create"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	granted, err := h.canMutate(userID, req.ProjectID, "create")
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	task, err := h.tasks.Create(userID, services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		ProjectID:      req.ProjectID,
		ParentTaskID:   req.ParentTaskID,
		EstimatedHours: req.EstimatedHours,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("task_id", task.ID).Info("task created")
	h.hub.Publish(realtime.Event{Type: "task_created", Resource: "task", ResourceID: task.ID, ActorID: userID}, userID)
	c.JSON(http.StatusCreated, task)
}

// Update handles PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	const op = "handlers.Task.Update"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	granted, err := h.canMutate(userID, task.ProjectID, "update")
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.tasks.Update(userID, id, services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("task_id", id).Info("task updated")
	h.hub.Publish(realtime.Event{Type: "task_updated", Resource: "task", ResourceID: id, ActorID: userID}, userID)
	c.JSON(http.StatusOK, updated)
}

// AssignTaskRequest represents the assignment payload
type AssignTaskRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// Assign handles POST /api/tasks/:id/assign
func (h *TaskHandler) Assign(c *gin.Context) {
	const op = "handlers.Task.Assign"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	granted, err := h.canMutate(userID, task.ProjectID, "update")
	if err != nil {
		respondError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.tasks.Assign(userID, id, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"operation": op,
		"task_id":   id,
		"user_id":   req.UserID,
	}).Info("task assigned")
	h.hub.Publish(realtime.Event{Type: "task_assigned", Resource: "task", ResourceID: id, ActorID: userID}, userID, req.UserID)
	c.JSON(http.StatusCreated, assignment)
}

// Assignees handles GET /api/tasks/:id/assignees
func (h *TaskHandler) Assignees(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	users, err := h.tasks.Assignees(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignees": users, "count": len(users)})
}

// AddComment handles POST /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.tasks.AddComment(userID, id, req.Content, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Comments handles GET /api/tasks/:id/comments
func (h *TaskHandler) Comments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	comments, err := h.tasks.Comments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Upload handles POST /api/tasks/:id/attachments (multipart form, field
// "file").
func (h *TaskHandler) Upload(c *gin.Context) {
	const op = "handlers.Task.Upload"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
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

	attachment, err := h.tasks.AddAttachment(userID, id, saved.Filename, saved.Path, saved.Size, saved.MimeType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// CreateTagRequest represents the tag creation payload
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateTag handles POST /api/tags
func (h *TaskHandler) CreateTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tasks.CreateTag(userID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// TagTaskRequest represents the tagging payload
type TagTaskRequest struct {
	TagID uint `json:"tagId" binding:"required"`
}

// TagTask handles POST /api/tasks/:id/tags
func (h *TaskHandler) TagTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var req TagTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.tasks.TagTask(userID, id, req.TagID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// Tags handles GET /api/tasks/:id/tags
func (h *TaskHandler) Tags(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	tags, err := h.tasks.Tags(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}
