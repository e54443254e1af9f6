package models

import (
	"time"
)

// Calendar is owned by a user and groups events
type Calendar struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"default:'#3B82F6'"`
	OwnerID     uint      `json:"ownerId" gorm:"column:owner_id;not null;index"`
	IsDefault   bool      `json:"isDefault" gorm:"column:is_default;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for Calendar Model
func (Calendar) TableName() string {
	return "calendars"
}

// Event belongs to a calendar and may link to a project and/or task.
// EndTime must not be before StartTime (checked at the service layer).
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime" gorm:"column:start_time;not null"`
	EndTime     time.Time `json:"endTime" gorm:"column:end_time;not null"`
	IsAllDay    bool      `json:"isAllDay" gorm:"column:is_all_day;default:false"`
	Location    string    `json:"location"`
	CalendarID  uint      `json:"calendarId" gorm:"column:calendar_id;not null;index"`
	ProjectID   *uint     `json:"projectId" gorm:"column:project_id"`
	TaskID      *uint     `json:"taskId" gorm:"column:task_id"`
	CreatedBy   uint      `json:"createdBy" gorm:"column:created_by;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Event Model
func (Event) TableName() string {
	return "events"
}
