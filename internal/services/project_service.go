package services

import (
	"errors"
	"fmt"
	"time"

	"project-management-api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProjectService handles project lifecycle, membership, comments and
// attachments.
type ProjectService struct {
	db       *gorm.DB
	activity *ActivityRecorder
	log      *logrus.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, activity *ActivityRecorder, log *logrus.Logger) *ProjectService {
	return &ProjectService{db: db, activity: activity, log: log}
}

func validProjectStatus(s models.ProjectStatus) bool {
	switch s {
	case models.ProjectPlanning, models.ProjectInProgress, models.ProjectOnHold,
		models.ProjectCompleted, models.ProjectCancelled:
		return true
	}
	return false
}

func validProjectPriority(p models.ProjectPriority) bool {
	switch p {
	case models.ProjectPriorityLow, models.ProjectPriorityMedium,
		models.ProjectPriorityHigh, models.ProjectPriorityUrgent:
		return true
	}
	return false
}

// CreateProjectInput is the payload for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	Priority    models.ProjectPriority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      int
}

// Create writes the project and its creator's "lead" membership as one
// transaction: both rows exist afterwards or neither does.
func (s *ProjectService) Create(creatorID uint, in CreateProjectInput) (*models.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = models.ProjectPlanning
	}
	priority := in.Priority
	if priority == "" {
		priority = models.ProjectPriorityMedium
	}
	if !validProjectStatus(status) {
		return nil, fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, status)
	}
	if !validProjectPriority(priority) {
		return nil, fmt.Errorf("%w: unknown project priority %q", ErrInvalidInput, priority)
	}

	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatorID:   creatorID,
		IsActive:    true,
		Budget:      in.Budget,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    creatorID,
			Role:      models.MemberRoleLead,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(creatorID, "project_created", "project", project.ID,
		fmt.Sprintf("Created project: %s", project.Name))
	return &project, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &project, nil
}

// ListForUser returns the projects the user created or is a member of.
func (s *ProjectService) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Distinct("projects.*").
		Joins("LEFT JOIN project_members ON project_members.project_id = projects.id").
		Where("projects.creator_id = ? OR project_members.user_id = ?", userID, userID).
		Order("projects.id").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateProjectInput carries a partial update: nil fields are left
// unchanged, non-nil fields are applied even when they hold the zero
// value (clearing a description means sending an explicit empty string).
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Priority    *models.ProjectPriority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *int
	Progress    *int
	IsActive    *bool
}

// Update applies a partial update to a project.
func (s *ProjectService) Update(actorID, projectID uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: project name cannot be empty", ErrInvalidInput)
		}
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		if !validProjectStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, *in.Status)
		}
		project.Status = *in.Status
	}
	if in.Priority != nil {
		if !validProjectPriority(*in.Priority) {
			return nil, fmt.Errorf("%w: unknown project priority %q", ErrInvalidInput, *in.Priority)
		}
		project.Priority = *in.Priority
	}
	if in.StartDate != nil {
		project.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		project.EndDate = in.EndDate
	}
	if in.Budget != nil {
		project.Budget = *in.Budget
	}
	if in.Progress != nil {
		if *in.Progress < 0 || *in.Progress > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
		}
		project.Progress = *in.Progress
	}
	if in.IsActive != nil {
		project.IsActive = *in.IsActive
	}

	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "project_updated", "project", project.ID,
		fmt.Sprintf("Updated project: %s", project.Name))
	return project, nil
}

// Delete removes a project and its dependents. Only the creator may
// delete, regardless of role-derived permissions.
func (s *ProjectService) Delete(actorID, projectID uint) error {
	project, err := s.Get(projectID)
	if err != nil {
		return err
	}
	if project.CreatorID != actorID {
		return fmt.Errorf("%w: only the project creator can delete it", ErrUnauthorized)
	}

	var taskIDs []uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			for _, model := range []interface{}{
				&models.TaskAssignment{}, &models.TaskComment{},
				&models.TaskAttachment{}, &models.TaskTag{},
			} {
				if err := tx.Where("task_id IN ?", taskIDs).Delete(model).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&models.Event{}).Where("task_id IN ?", taskIDs).Update("task_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{
			&models.ProjectMember{}, &models.ProjectComment{},
			&models.ProjectAttachment{}, &models.UserRole{},
		} {
			if err := tx.Where("project_id = ?", projectID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Event{}).Where("project_id = ?", projectID).Update("project_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"operation":  "ProjectService.Delete",
		"project_id": projectID,
		"tasks":      len(taskIDs),
	}).Info("project removed with its dependents")
	s.activity.Record(actorID, "project_deleted", "project", projectID,
		fmt.Sprintf("Deleted project: %s", project.Name))
	return nil
}

// AddMember adds a user to a project with the given role label.
// Adding the same user twice yields ErrConflict.
func (s *ProjectService) AddMember(actorID, projectID, userID uint, role string) (*models.ProjectMember, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if role == "" {
		role = models.MemberRoleMember
	}
	switch role {
	case models.MemberRoleMember, models.MemberRoleLead, models.MemberRoleObserver:
	default:
		return nil, fmt.Errorf("%w: unknown member role %q", ErrInvalidInput, role)
	}

	member := models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: user is already a member of this project", ErrConflict)
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "project_member_added", "project", projectID,
		fmt.Sprintf("Added %s to project as %s", user.Username, role))
	return &member, nil
}

// Members returns the users belonging to a project.
func (s *ProjectService) Members(projectID uint) ([]models.User, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.db.
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddComment appends a comment to a project. A reply's parent must be a
// comment on the same project.
func (s *ProjectService) AddComment(authorID, projectID uint, content string, parentID *uint) (*models.ProjectComment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrInvalidInput)
	}
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	if parentID != nil {
		var parent models.ProjectComment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent comment %d", ErrNotFound, *parentID)
			}
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, fmt.Errorf("%w: parent comment belongs to another project", ErrInvalidInput)
		}
	}

	comment := models.ProjectComment{
		ProjectID: projectID,
		AuthorID:  authorID,
		Content:   content,
		ParentID:  parentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	s.activity.Record(authorID, "project_comment_added", "project", projectID, "Commented on project")
	return &comment, nil
}

// Comments returns a project's comments, oldest first.
func (s *ProjectService) Comments(projectID uint) ([]models.ProjectComment, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	var comments []models.ProjectComment
	err := s.db.Where("project_id = ?", projectID).Order("id").Find(&comments).Error
	return comments, err
}

// AddAttachment records an uploaded file against a project.
func (s *ProjectService) AddAttachment(uploaderID, projectID uint, filename, path string, size int64, mimeType string) (*models.ProjectAttachment, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	attachment := models.ProjectAttachment{
		ProjectID:  projectID,
		Filename:   filename,
		FilePath:   path,
		FileSize:   size,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}

	s.activity.Record(uploaderID, "project_attachment_added", "project", projectID,
		fmt.Sprintf("Attached file: %s", filename))
	return &attachment, nil
}
