package services

import (
	"errors"
	"fmt"
	"time"

	"project-management-api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TaskService handles task lifecycle, assignment, comments, attachments
// and tagging.
type TaskService struct {
	db       *gorm.DB
	activity *ActivityRecorder
	log      *logrus.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *gorm.DB, activity *ActivityRecorder, log *logrus.Logger) *TaskService {
	return &TaskService{db: db, activity: activity, log: log}
}

func validTaskStatus(s models.TaskStatus) bool {
	switch s {
	case models.StatusTodo, models.StatusInProgress, models.StatusInReview,
		models.StatusDone, models.StatusBlocked:
		return true
	}
	return false
}

func validTaskPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

// CreateTaskInput is the payload for creating a task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	ProjectID      uint
	ParentTaskID   *uint
	EstimatedHours int
	StartDate      *time.Time
	DueDate        *time.Time
}

// Create writes a new task. The owning project must exist; a parent
// task, when given, must exist and belong to the same project.
func (s *TaskService) Create(creatorID uint, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validTaskStatus(status) {
		return nil, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, status)
	}
	if !validTaskPriority(priority) {
		return nil, fmt.Errorf("%w: unknown task priority %q", ErrInvalidInput, priority)
	}

	var project models.Project
	if err := s.db.First(&project, in.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, in.ProjectID)
		}
		return nil, err
	}

	if in.ParentTaskID != nil {
		var parent models.Task
		if err := s.db.First(&parent, *in.ParentTaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent task %d", ErrNotFound, *in.ParentTaskID)
			}
			return nil, err
		}
		if parent.ProjectID != in.ProjectID {
			return nil, fmt.Errorf("%w: parent task belongs to another project", ErrInvalidInput)
		}
	}

	task := models.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         status,
		Priority:       priority,
		ProjectID:      in.ProjectID,
		ParentTaskID:   in.ParentTaskID,
		EstimatedHours: in.EstimatedHours,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		CreatedBy:      creatorID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	s.activity.Record(creatorID, "task_created", "task", task.ID,
		fmt.Sprintf("Created task: %s", task.Title))
	return &task, nil
}

// Get returns a task by id.
func (s *TaskService) Get(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &task, nil
}

// ListByProject returns the tasks of a project.
func (s *TaskService) ListByProject(projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Where("project_id = ?", projectID).Order("id").Find(&tasks).Error
	return tasks, err
}

// ListForUser returns the tasks assigned to a user.
func (s *TaskService) ListForUser(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, err
}

// UpdateTaskInput carries a partial update: nil fields are left
// unchanged, non-nil fields are applied even when they hold the zero
// value.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	EstimatedHours *int
	ActualHours    *int
	StartDate      *time.Time
	DueDate        *time.Time
}

// Update applies a partial update to a task. Moving the status to done
// stamps the completion time; moving it away clears the stamp.
func (s *TaskService) Update(actorID, taskID uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: task title cannot be empty", ErrInvalidInput)
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	completed := false
	if in.Status != nil {
		if !validTaskStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, *in.Status)
		}
		if *in.Status == models.StatusDone && task.Status != models.StatusDone {
			now := time.Now()
			task.CompletedAt = &now
			completed = true
		} else if *in.Status != models.StatusDone {
			task.CompletedAt = nil
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !validTaskPriority(*in.Priority) {
			return nil, fmt.Errorf("%w: unknown task priority %q", ErrInvalidInput, *in.Priority)
		}
		task.Priority = *in.Priority
	}
	if in.EstimatedHours != nil {
		task.EstimatedHours = *in.EstimatedHours
	}
	if in.ActualHours != nil {
		task.ActualHours = *in.ActualHours
	}
	if in.StartDate != nil {
		task.StartDate = in.StartDate
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}

	if completed {
		s.log.WithFields(logrus.Fields{
			"operation": "TaskService.Update",
			"task_id":   task.ID,
		}).Info("task completed")
	}
	s.activity.Record(actorID, "task_updated", "task", task.ID,
		fmt.Sprintf("Updated task: %s", task.Title))
	return task, nil
}

// Assign assigns a task to a user. The existence checks and the
// duplicate guard run inside one transaction so two concurrent requests
// cannot both pass the check before either writes.
func (s *TaskService) Assign(actorID, taskID, userID uint) (*models.TaskAssignment, error) {
	assignment := models.TaskAssignment{TaskID: taskID, UserID: userID, AssignedBy: actorID}

	var username string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}
		username = user.Username

		var count int64
		err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ? AND user_id = ?", taskID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: task already assigned to this user", ErrConflict)
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "task_assigned", "task", taskID,
		fmt.Sprintf("Assigned task to %s", username))
	return &assignment, nil
}

// Assignees returns the users assigned to a task.
func (s *TaskService) Assignees(taskID uint) ([]models.User, error) {
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.db.
		Joins("JOIN task_assignments ON task_assignments.user_id = users.id").
		Where("task_assignments.task_id = ?", taskID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// AddComment appends a comment to a task. A reply's parent must be a
// comment on the same task.
func (s *TaskService) AddComment(authorID, taskID uint, content string, parentID *uint) (*models.TaskComment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrInvalidInput)
	}
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	if parentID != nil {
		var parent models.TaskComment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent comment %d", ErrNotFound, *parentID)
			}
			return nil, err
		}
		if parent.TaskID != taskID {
			return nil, fmt.Errorf("%w: parent comment belongs to another task", ErrInvalidInput)
		}
	}

	comment := models.TaskComment{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
		ParentID: parentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	s.activity.Record(authorID, "task_comment_added", "task", taskID, "Commented on task")
	return &comment, nil
}

// Comments returns a task's comments, oldest first.
func (s *TaskService) Comments(taskID uint) ([]models.TaskComment, error) {
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	var comments []models.TaskComment
	err := s.db.Where("task_id = ?", taskID).Order("id").Find(&comments).Error
	return comments, err
}

// AddAttachment records an uploaded file against a task.
func (s *TaskService) AddAttachment(uploaderID, taskID uint, filename, path string, size int64, mimeType string) (*models.TaskAttachment, error) {
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	attachment := models.TaskAttachment{
		TaskID:     taskID,
		Filename:   filename,
		FilePath:   path,
		FileSize:   size,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}

	s.activity.Record(uploaderID, "task_attachment_added", "task", taskID,
		fmt.Sprintf("Attached file: %s", filename))
	return &attachment, nil
}

// CreateTag creates a tag. A duplicate name yields ErrConflict.
func (s *TaskService) CreateTag(actorID uint, name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	var count int64
	if err := s.db.Model(&models.Tag{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: tag already exists", ErrConflict)
	}

	tag := models.Tag{Name: name}
	if color != "" {
		tag.Color = color
	}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "tag_created", "tag", tag.ID, fmt.Sprintf("Created tag: %s", name))
	return &tag, nil
}

// TagTask attaches a tag to a task. Tagging twice yields ErrConflict.
func (s *TaskService) TagTask(actorID, taskID, tagID uint) (*models.TaskTag, error) {
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	var tag models.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: tag %d", ErrNotFound, tagID)
		}
		return nil, err
	}

	link := models.TaskTag{TaskID: taskID, TagID: tagID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.TaskTag{}).
			Where("task_id = ? AND tag_id = ?", taskID, tagID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: task already tagged", ErrConflict)
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actorID, "task_tagged", "task", taskID,
		fmt.Sprintf("Tagged task with %s", tag.Name))
	return &link, nil
}

// Tags returns the tags attached to a task.
func (s *TaskService) Tags(taskID uint) ([]models.Tag, error) {
	if _, err := s.Get(taskID); err != nil {
		return nil, err
	}
	var tags []models.Tag
	err := s.db.
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Order("tags.id").
		Find(&tags).Error
	return tags, err
}
