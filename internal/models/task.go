package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusDone       TaskStatus = "done"
	StatusBlocked    TaskStatus = "blocked"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task represents a task in the system. ParentTaskID enables subtasks;
// the parent must belong to the same project (checked at the service layer).
type Task struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	Title          string       `json:"title" gorm:"not null;index"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status" gorm:"default:'todo'"`
	Priority       TaskPriority `json:"priority" gorm:"default:'medium'"`
	ProjectID      uint         `json:"projectId" gorm:"column:project_id;not null;index"`
	ParentTaskID   *uint        `json:"parentTaskId" gorm:"column:parent_task_id"`
	EstimatedHours int          `json:"estimatedHours" gorm:"column:estimated_hours"`
	ActualHours    int          `json:"actualHours" gorm:"column:actual_hours"`
	StartDate      *time.Time   `json:"startDate" gorm:"column:start_date"`
	DueDate        *time.Time   `json:"dueDate" gorm:"column:due_date"`
	CompletedAt    *time.Time   `json:"completedAt" gorm:"column:completed_at"`
	CreatedBy      uint         `json:"createdBy" gorm:"column:created_by;not null"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignment records who is assigned to a task and who assigned them.
// The (task, user) pair is kept unique at the service layer.
type TaskAssignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaskID     uint      `json:"taskId" gorm:"column:task_id;not null;index"`
	UserID     uint      `json:"userId" gorm:"column:user_id;not null;index"`
	AssignedBy uint      `json:"assignedBy" gorm:"column:assigned_by;not null"`
	AssignedAt time.Time `json:"assignedAt" gorm:"column:assigned_at;autoCreateTime"`
}

// TableName specifies the table name for TaskAssignment Model
func (TaskAssignment) TableName() string {
	return "task_assignments"
}

// TaskComment is a comment on a task; ParentID enables threaded replies
type TaskComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    uint      `json:"taskId" gorm:"column:task_id;not null;index"`
	AuthorID  uint      `json:"authorId" gorm:"column:author_id;not null"`
	Content   string    `json:"content" gorm:"not null"`
	ParentID  *uint     `json:"parentId" gorm:"column:parent_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for TaskComment Model
func (TaskComment) TableName() string {
	return "task_comments"
}

// TaskAttachment records an uploaded file attached to a task
type TaskAttachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaskID     uint      `json:"taskId" gorm:"column:task_id;not null;index"`
	Filename   string    `json:"filename" gorm:"not null"`
	FilePath   string    `json:"filePath" gorm:"column:file_path;not null"`
	FileSize   int64     `json:"fileSize" gorm:"column:file_size"`
	MimeType   string    `json:"mimeType" gorm:"column:mime_type"`
	UploadedBy uint      `json:"uploadedBy" gorm:"column:uploaded_by;not null"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"column:uploaded_at;autoCreateTime"`
}

// TableName specifies the table name for TaskAttachment Model
func (TaskAttachment) TableName() string {
	return "task_attachments"
}

// Tag is a label that can be attached to tasks
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Color     string    `json:"color" gorm:"default:'#3B82F6'"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for Tag Model
func (Tag) TableName() string {
	return "tags"
}

// TaskTag links a tag to a task (many-to-many join)
type TaskTag struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TaskID uint `json:"taskId" gorm:"column:task_id;not null;index"`
	TagID  uint `json:"tagId" gorm:"column:tag_id;not null"`
}

// TableName specifies the table name for TaskTag Model
func (TaskTag) TableName() string {
	return "task_tags"
}
