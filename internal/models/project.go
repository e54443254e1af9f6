package models

import (
	"time"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// ProjectPriority represents the priority of a project
type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "low"
	ProjectPriorityMedium ProjectPriority = "medium"
	ProjectPriorityHigh   ProjectPriority = "high"
	ProjectPriorityUrgent ProjectPriority = "urgent"
)

// Membership role labels. At most one lead per project is a convention
// seeded at creation, not a structural constraint.
const (
	MemberRoleMember   = "member"
	MemberRoleLead     = "lead"
	MemberRoleObserver = "observer"
)

// Project represents a project in the system
type Project struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;index"`
	Description string          `json:"description"`
	Status      ProjectStatus   `json:"status" gorm:"default:'planning'"`
	Priority    ProjectPriority `json:"priority" gorm:"default:'medium'"`
	StartDate   *time.Time      `json:"startDate" gorm:"column:start_date"`
	EndDate     *time.Time      `json:"endDate" gorm:"column:end_date"`
	CreatorID   uint            `json:"creatorId" gorm:"column:creator_id;not null"`
	IsActive    bool            `json:"isActive" gorm:"column:is_active;default:true"`
	Budget      int             `json:"budget"`
	Progress    int             `json:"progress" gorm:"default:0"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// ProjectMember links a user to a project with a role label
type ProjectMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"projectId" gorm:"column:project_id;not null;index"`
	UserID    uint      `json:"userId" gorm:"column:user_id;not null"`
	Role      string    `json:"role" gorm:"default:'member'"`
	JoinedAt  time.Time `json:"joinedAt" gorm:"column:joined_at;autoCreateTime"`
}

// TableName specifies the table name for ProjectMember Model
func (ProjectMember) TableName() string {
	return "project_members"
}

// ProjectComment is a comment on a project; ParentID enables threaded replies
type ProjectComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"projectId" gorm:"column:project_id;not null;index"`
	AuthorID  uint      `json:"authorId" gorm:"column:author_id;not null"`
	Content   string    `json:"content" gorm:"not null"`
	ParentID  *uint     `json:"parentId" gorm:"column:parent_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for ProjectComment Model
func (ProjectComment) TableName() string {
	return "project_comments"
}

// ProjectAttachment records an uploaded file attached to a project
type ProjectAttachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProjectID  uint      `json:"projectId" gorm:"column:project_id;not null;index"`
	Filename   string    `json:"filename" gorm:"not null"`
	FilePath   string    `json:"filePath" gorm:"column:file_path;not null"`
	FileSize   int64     `json:"fileSize" gorm:"column:file_size"`
	MimeType   string    `json:"mimeType" gorm:"column:mime_type"`
	UploadedBy uint      `json:"uploadedBy" gorm:"column:uploaded_by;not null"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"column:uploaded_at;autoCreateTime"`
}

// TableName specifies the table name for ProjectAttachment Model
func (ProjectAttachment) TableName() string {
	return "project_attachments"
}
