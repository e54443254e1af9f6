package models

import (
	"time"
)

// UserRoleLabel is the default role label stored on the user row itself.
// Effective permissions come from the RBAC tables, not from this label.
type UserRoleLabel string

const (
	RoleAdmin     UserRoleLabel = "admin"
	RoleManager   UserRoleLabel = "manager"
	RoleDeveloper UserRoleLabel = "developer"
	RoleViewer    UserRoleLabel = "viewer"
)

// User represents an account in the system
type User struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Email          string        `json:"email" gorm:"uniqueIndex;not null"`
	Username       string        `json:"username" gorm:"uniqueIndex;not null"`
	FullName       string        `json:"fullName" gorm:"column:full_name"`
	HashedPassword string        `json:"-" gorm:"column:hashed_password;not null"`
	IsActive       bool          `json:"isActive" gorm:"column:is_active;default:true"`
	IsVerified     bool          `json:"isVerified" gorm:"column:is_verified;default:false"`
	Role           UserRoleLabel `json:"role" gorm:"default:'developer'"`
	AvatarURL      string        `json:"avatarUrl" gorm:"column:avatar_url"`
	Phone          string        `json:"phone"`
	Department     string        `json:"department"`
	Position       string        `json:"position"`
	LastLogin      *time.Time    `json:"lastLogin" gorm:"column:last_login"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// ActivityLog is an append-only audit record. Rows are never updated or deleted.
type ActivityLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"userId" gorm:"column:user_id;index"`
	Action       string    `json:"action" gorm:"not null"`
	ResourceType string    `json:"resourceType" gorm:"column:resource_type"`
	ResourceID   uint      `json:"resourceId" gorm:"column:resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ipAddress" gorm:"column:ip_address"`
	UserAgent    string    `json:"userAgent" gorm:"column:user_agent"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName specifies the table name for ActivityLog Model
func (ActivityLog) TableName() string {
	return "user_activity_logs"
}
