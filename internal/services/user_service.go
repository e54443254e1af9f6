package services

import (
	"errors"
	"fmt"
	"time"

	"project-management-api/internal/auth"
	"project-management-api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserService handles registration, authentication and user lookups.
type UserService struct {
	db       *gorm.DB
	tokens   *auth.TokenManager
	activity *ActivityRecorder
	log      *logrus.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, tokens *auth.TokenManager, activity *ActivityRecorder, log *logrus.Logger) *UserService {
	return &UserService{db: db, tokens: tokens, activity: activity, log: log}
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email      string
	Username   string
	Password   string
	FullName   string
	Role       models.UserRoleLabel
	Phone      string
	Department string
	Position   string
}

// Register creates a new user and returns it with a signed token.
// Duplicate email or username yields ErrConflict and no row is written.
func (s *UserService) Register(in RegisterInput) (*models.User, string, error) {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: email, username and password are required", ErrInvalidInput)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err := s.db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("%w: username already taken", ErrConflict)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	role := in.Role
	if role == "" {
		role = models.RoleDeveloper
	}

	user := models.User{
		Email:          in.Email,
		Username:       in.Username,
		FullName:       in.FullName,
		HashedPassword: hashed,
		IsActive:       true,
		Role:           role,
		Phone:          in.Phone,
		Department:     in.Department,
		Position:       in.Position,
	}
	// The user row and the global assignment of their default role are
	// one unit: an account never exists without its starting grants.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		var dbRole models.Role
		if err := tx.Where("name = ?", string(role)).First(&dbRole).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
			}
			return err
		}
		return tx.Create(&models.UserRole{UserID: user.ID, RoleID: dbRole.ID}).Error
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	s.activity.Record(user.ID, "user_registered", "user", user.ID, "User registered successfully")
	return &user, token, nil
}

// Login authenticates by email or username and returns the user with a
// signed token. Wrong credentials yield ErrUnauthenticated; a disabled
// account yields ErrUnauthorized.
func (s *UserService) Login(usernameOrEmail, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.Where("email = ? OR username = ?", usernameOrEmail, usernameOrEmail).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: incorrect email/username or password", ErrUnauthenticated)
		}
		return nil, "", err
	}

	if !auth.CheckPassword(password, user.HashedPassword) {
		return nil, "", fmt.Errorf("%w: incorrect email/username or password", ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: inactive user", ErrUnauthorized)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		s.log.WithField("operation", "UserService.Login").WithError(err).Warn("failed to stamp last login")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	s.activity.Record(user.ID, "user_login", "user", user.ID, "User logged in successfully")
	return &user, token, nil
}

// GetByID returns a user by id.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AssignRole grants a role to a user, optionally scoped to a project.
// A duplicate assignment for the same (user, role, scope) yields ErrConflict.
func (s *UserService) AssignRole(actorID, userID, roleID uint, projectID *uint) (*models.UserRole, error) {
	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %d", ErrNotFound, roleID)
		}
		return nil, err
	}
	if _, err := s.GetByID(userID); err != nil {
		return nil, err
	}

	assignment := models.UserRole{UserID: userID, RoleID: roleID, ProjectID: projectID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID)
		if projectID == nil {
			query = query.Where("project_id IS NULL")
		} else {
			query = query.Where("project_id = ?", *projectID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: role already assigned", ErrConflict)
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "role_assigned", "user", userID,
		fmt.Sprintf("Assigned role %s to user %d", role.Name, userID))
	return &assignment, nil
}
