// Package authz implements role-based permission resolution. A user may
// perform an action on a resource when any of their role assignments,
// global or scoped to the project in question, carries a matching
// permission. The resolver knows nothing about ownership; creator-only
// rules live in the services that need them.
package authz

import (
	"time"

	"project-management-api/internal/cache"
	"project-management-api/internal/models"

	"gorm.io/gorm"
)

// permKey identifies one permission inside a role's resolved set.
type permKey struct {
	resource string
	action   string
}

// Resolver answers authorization queries against the RBAC tables.
// Role permission sets are cached: roles and permissions are static
// reference data, user-role assignments are always read fresh.
type Resolver struct {
	db       *gorm.DB
	roles    cache.Cache[uint, map[permKey]struct{}]
	cacheTTL time.Duration
}

// NewResolver constructs a Resolver over db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:       db,
		roles:    cache.NewTTLCache[uint, map[permKey]struct{}](),
		cacheTTL: 5 * time.Minute,
	}
}

// Authorize reports whether the user holds a permission matching
// (resource, action) through any qualifying role assignment.
//
// When projectID is nil only global assignments qualify; when it is set,
// both global and matching-project assignments qualify. Any single match
// grants: there is no precedence between roles or scopes.
func (r *Resolver) Authorize(userID uint, resource, action string, projectID *uint) (bool, error) {
	if resource == "" || action == "" {
		return false, nil
	}

	query := r.db.Where("user_id = ?", userID)
	if projectID == nil {
		query = query.Where("project_id IS NULL")
	} else {
		query = query.Where("project_id IS NULL OR project_id = ?", *projectID)
	}

	var assignments []models.UserRole
	if err := query.Find(&assignments).Error; err != nil {
		return false, err
	}

	want := permKey{resource: resource, action: action}
	for _, assignment := range assignments {
		perms, err := r.rolePermissions(assignment.RoleID)
		if err != nil {
			return false, err
		}
		if _, ok := perms[want]; ok {
			return true, nil
		}
	}
	return false, nil
}

// rolePermissions resolves a role's permission set, consulting the cache first.
func (r *Resolver) rolePermissions(roleID uint) (map[permKey]struct{}, error) {
	if set, ok := r.roles.Get(roleID); ok {
		return set, nil
	}

	var perms []models.Permission
	err := r.db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}

	set := make(map[permKey]struct{}, len(perms))
	for _, p := range perms {
		set[permKey{resource: p.Resource, action: p.Action}] = struct{}{}
	}
	r.roles.Set(roleID, set, r.cacheTTL)
	return set, nil
}

// InvalidateRole drops a role's cached permission set. Call it after
// changing role_permissions rows for the role.
func (r *Resolver) InvalidateRole(roleID uint) {
	r.roles.Delete(roleID)
}
