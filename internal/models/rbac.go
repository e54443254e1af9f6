package models

import (
	"time"
)

// Role represents a named permission group (admin, manager, ...)
type Role struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for Role Model
func (Role) TableName() string {
	return "roles"
}

// Permission grants one action on one resource kind (e.g. "task"/"create")
type Permission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Resource    string `json:"resource" gorm:"not null"`
	Action      string `json:"action" gorm:"not null"`
	Description string `json:"description"`
}

// TableName specifies the table name for Permission Model
func (Permission) TableName() string {
	return "permissions"
}

// RolePermission links a role to one of its permissions (many-to-many join)
type RolePermission struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	RoleID       uint `json:"roleId" gorm:"column:role_id;not null;index"`
	PermissionID uint `json:"permissionId" gorm:"column:permission_id;not null"`
}

// TableName specifies the table name for RolePermission Model
func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserRole assigns a role to a user. ProjectID is the optional scope:
// nil means the assignment is global, otherwise it applies only inside
// that project.
type UserRole struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	UserID    uint  `json:"userId" gorm:"column:user_id;not null;index"`
	RoleID    uint  `json:"roleId" gorm:"column:role_id;not null"`
	ProjectID *uint `json:"projectId" gorm:"column:project_id"`
}

// TableName specifies the table name for UserRole Model
func (UserRole) TableName() string {
	return "user_roles"
}
