package services

import (
	"errors"
	"fmt"
	"time"

	"project-management-api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CalendarService handles calendars and their events.
type CalendarService struct {
	db       *gorm.DB
	activity *ActivityRecorder
	log      *logrus.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(db *gorm.DB, activity *ActivityRecorder, log *logrus.Logger) *CalendarService {
	return &CalendarService{db: db, activity: activity, log: log}
}

// CreateCalendar creates a calendar owned by the user.
func (s *CalendarService) CreateCalendar(ownerID uint, name, description, color string, isDefault bool) (*models.Calendar, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: calendar name is required", ErrInvalidInput)
	}
	calendar := models.Calendar{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		IsDefault:   isDefault,
	}
	if color != "" {
		calendar.Color = color
	}
	if err := s.db.Create(&calendar).Error; err != nil {
		return nil, err
	}

	s.activity.Record(ownerID, "calendar_created", "calendar", calendar.ID,
		fmt.Sprintf("Created calendar: %s", name))
	return &calendar, nil
}

// ListForOwner returns the calendars owned by a user.
func (s *CalendarService) ListForOwner(ownerID uint) ([]models.Calendar, error) {
	var calendars []models.Calendar
	err := s.db.Where("owner_id = ?", ownerID).Order("id").Find(&calendars).Error
	return calendars, err
}

// CreateEventInput is the payload for creating an event.
type CreateEventInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	IsAllDay    bool
	Location    string
	CalendarID  uint
	ProjectID   *uint
	TaskID      *uint
}

// CreateEvent creates an event on a calendar. The end instant must not
// be before the start; linked projects and tasks must exist.
func (s *CalendarService) CreateEvent(creatorID uint, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrInvalidInput)
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, fmt.Errorf("%w: event end must not be before its start", ErrInvalidInput)
	}

	var calendar models.Calendar
	if err := s.db.First(&calendar, in.CalendarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: calendar %d", ErrNotFound, in.CalendarID)
		}
		return nil, err
	}
	if in.ProjectID != nil {
		var project models.Project
		if err := s.db.First(&project, *in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project %d", ErrNotFound, *in.ProjectID)
			}
			return nil, err
		}
	}
	if in.TaskID != nil {
		var task models.Task
		if err := s.db.First(&task, *in.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: task %d", ErrNotFound, *in.TaskID)
			}
			return nil, err
		}
	}

	event := models.Event{
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		IsAllDay:    in.IsAllDay,
		Location:    in.Location,
		CalendarID:  in.CalendarID,
		ProjectID:   in.ProjectID,
		TaskID:      in.TaskID,
		CreatedBy:   creatorID,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}

	if in.ProjectID != nil || in.TaskID != nil {
		s.log.WithFields(logrus.Fields{
			"operation": "CalendarService.CreateEvent",
			"event_id":  event.ID,
		}).Debug("event linked to project work")
	}
	s.activity.Record(creatorID, "event_created", "event", event.ID,
		fmt.Sprintf("Created event: %s", event.Title))
	return &event, nil
}

// Events returns a calendar's events, optionally bounded to a window.
func (s *CalendarService) Events(calendarID uint, from, to *time.Time) ([]models.Event, error) {
	var calendar models.Calendar
	if err := s.db.First(&calendar, calendarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: calendar %d", ErrNotFound, calendarID)
		}
		return nil, err
	}

	query := s.db.Where("calendar_id = ?", calendarID)
	if from != nil {
		query = query.Where("end_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_time <= ?", *to)
	}

	var events []models.Event
	err := query.Order("start_time").Find(&events).Error
	return events, err
}
