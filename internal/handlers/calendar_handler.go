package handlers

import (
	"net/http"
	"time"

	"project-management-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CalendarHandler exposes calendars and events.
type CalendarHandler struct {
	calendars *services.CalendarService
	log       *logrus.Logger
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(calendars *services.CalendarService, log *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{calendars: calendars, log: log}
}

// CreateCalendarRequest represents the calendar creation payload
type CreateCalendarRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsDefault   bool   `json:"isDefault"`
}

// Create handles POST /api/calendars
func (h *CalendarHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calendar, err := h.calendars.CreateCalendar(userID, req.Name, req.Description, req.Color, req.IsDefault)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, calendar)
}

// List handles GET /api/calendars
func (h *CalendarHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	calendars, err := h.calendars.ListForOwner(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendars": calendars, "count": len(calendars)})
}

// CreateEventRequest represents the event creation payload
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	IsAllDay    bool      `json:"isAllDay"`
	Location    string    `json:"location"`
	ProjectID   *uint     `json:"projectId"`
	TaskID      *uint     `json:"taskId"`
}

// CreateEvent handles POST /api/calendars/:id/events
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	const op = "handlers.Calendar.CreateEvent"

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	calendarID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calendar ID"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.calendars.CreateEvent(userID, services.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAllDay:    req.IsAllDay,
		Location:    req.Location,
		CalendarID:  calendarID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("operation", op).WithField("event_id", event.ID).Info("event created")
	c.JSON(http.StatusCreated, event)
}

// Events handles GET /api/calendars/:id/events?from=...&to=...
// Window bounds are RFC3339 timestamps.
func (h *CalendarHandler) Events(c *gin.Context) {
	calendarID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calendar ID"})
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp"})
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp"})
			return
		}
		to = &t
	}

	events, err := h.calendars.Events(calendarID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
