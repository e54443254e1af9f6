package database

import (
	"fmt"

	"project-management-api/internal/models"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database, runs migrations and seeds the
// role/permission catalog. Using glebarez/sqlite which is a pure Go
// implementation (no CGO required).
func InitDB(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return err
	}
	if err := SeedCatalog(db); err != nil {
		return err
	}

	DB = db
	log.WithField("path", path).Info("database connected and migrated")
	return nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.ActivityLog{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.Project{},
		&models.ProjectMember{},
		&models.ProjectComment{},
		&models.ProjectAttachment{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskComment{},
		&models.TaskAttachment{},
		&models.Tag{},
		&models.TaskTag{},
		&models.Calendar{},
		&models.Event{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Catalog resources and actions. Permissions are named "<resource>:<action>".
var (
	catalogResources = []string{"user", "project", "task", "calendar"}
	catalogActions   = []string{"create", "read", "update", "delete"}
)

// rolePermissionGrants maps role name to the resource/action pairs it holds.
// "*" grants every action on the resource.
var rolePermissionGrants = map[string]map[string][]string{
	"admin": {
		"user": {"*"}, "project": {"*"}, "task": {"*"}, "calendar": {"*"},
	},
	"manager": {
		"user": {"read"}, "project": {"*"}, "task": {"*"}, "calendar": {"*"},
	},
	"developer": {
		"user": {"read"}, "project": {"create", "read", "update"},
		"task": {"create", "read", "update"}, "calendar": {"*"},
	},
	"viewer": {
		"user": {"read"}, "project": {"read"}, "task": {"read"}, "calendar": {"read"},
	},
}

// SeedCatalog inserts the static role and permission reference data.
// It is idempotent: existing rows are left untouched.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]models.Permission)
		for _, resource := range catalogResources {
			for _, action := range catalogActions {
				p := models.Permission{
					Name:        resource + ":" + action,
					Resource:    resource,
					Action:      action,
					Description: fmt.Sprintf("Allows %s on %s", action, resource),
				}
				if err := tx.Where(models.Permission{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
					return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
				}
				perms[p.Name] = p
			}
		}

		for roleName, grants := range rolePermissionGrants {
			role := models.Role{Name: roleName, IsActive: true}
			if err := tx.Where(models.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", roleName, err)
			}

			for resource, actions := range grants {
				if len(actions) == 1 && actions[0] == "*" {
					actions = catalogActions
				}
				for _, action := range actions {
					perm := perms[resource+":"+action]
					link := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
					err := tx.Where(models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).
						FirstOrCreate(&link).Error
					if err != nil {
						return fmt.Errorf("failed to link role %s to %s: %w", roleName, perm.Name, err)
					}
				}
			}
		}
		return nil
	})
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
