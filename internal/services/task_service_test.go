package services

import (
	"testing"

	"project-management-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateTask_ProjectMustExist(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")

	_, err := env.tasks.Create(creator.ID, CreateTaskInput{Title: "Orphan", ProjectID: 9999})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTask_Defaults(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")

	task := env.createTask(t, creator.ID, project.ID, "Ship it")
	require.Equal(t, models.StatusTodo, task.Status)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Equal(t, creator.ID, task.CreatedBy)
}

func TestCreateTask_ParentMustShareProject(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	p1 := env.createProject(t, creator.ID, "Alpha")
	p2 := env.createProject(t, creator.ID, "Beta")
	parent := env.createTask(t, creator.ID, p1.ID, "Epic")

	_, err := env.tasks.Create(creator.ID, CreateTaskInput{
		Title:        "Subtask",
		ProjectID:    p2.ID,
		ParentTaskID: &parent.ID,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	sub, err := env.tasks.Create(creator.ID, CreateTaskInput{
		Title:        "Subtask",
		ProjectID:    p1.ID,
		ParentTaskID: &parent.ID,
	})
	require.NoError(t, err)
	require.Equal(t, parent.ID, *sub.ParentTaskID)
}

func TestAssignTask_DuplicateConflict(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	assignee := env.register(t, "b@example.com", "bob")
	project := env.createProject(t, creator.ID, "Platform")
	task := env.createTask(t, creator.ID, project.ID, "Ship it")

	first, err := env.tasks.Assign(creator.ID, task.ID, assignee.ID)
	require.NoError(t, err)
	require.Equal(t, creator.ID, first.AssignedBy)

	_, err = env.tasks.Assign(creator.ID, task.ID, assignee.ID)
	require.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", task.ID, assignee.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAssignTask_MissingTaskOrUser(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")
	task := env.createTask(t, creator.ID, project.ID, "Ship it")

	_, err := env.tasks.Assign(creator.ID, 9999, creator.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.tasks.Assign(creator.ID, task.ID, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTask_DoneStampsCompletion(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")
	task := env.createTask(t, creator.ID, project.ID, "Ship it")
	require.Nil(t, task.CompletedAt)

	done := models.StatusDone
	updated, err := env.tasks.Update(creator.ID, task.ID, UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)

	reopened := models.StatusInProgress
	updated, err = env.tasks.Update(creator.ID, task.ID, UpdateTaskInput{Status: &reopened})
	require.NoError(t, err)
	require.Nil(t, updated.CompletedAt)
}

func TestUpdateTask_PartialSemantics(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")
	task, err := env.tasks.Create(creator.ID, CreateTaskInput{
		Title:       "Ship it",
		Description: "with notes",
		ProjectID:   project.ID,
	})
	require.NoError(t, err)

	hours := 8
	updated, err := env.tasks.Update(creator.ID, task.ID, UpdateTaskInput{ActualHours: &hours})
	require.NoError(t, err)
	require.Equal(t, 8, updated.ActualHours)
	require.Equal(t, "with notes", updated.Description)

	empty := ""
	updated, err = env.tasks.Update(creator.ID, task.ID, UpdateTaskInput{Description: &empty})
	require.NoError(t, err)
	require.Empty(t, updated.Description)

	_, err = env.tasks.Update(creator.ID, task.ID, UpdateTaskInput{Title: &empty})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskComments_ParentMustShareTask(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")
	t1 := env.createTask(t, creator.ID, project.ID, "First")
	t2 := env.createTask(t, creator.ID, project.ID, "Second")

	parent, err := env.tasks.AddComment(creator.ID, t1.ID, "root", nil)
	require.NoError(t, err)

	_, err = env.tasks.AddComment(creator.ID, t2.ID, "reply", &parent.ID)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.tasks.AddComment(creator.ID, t1.ID, "reply", &parent.ID)
	require.NoError(t, err)
}

func TestTags_DuplicateGuards(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	project := env.createProject(t, creator.ID, "Platform")
	task := env.createTask(t, creator.ID, project.ID, "Ship it")

	tag, err := env.tasks.CreateTag(creator.ID, "backend", "")
	require.NoError(t, err)
	require.NotEmpty(t, tag.Color)

	_, err = env.tasks.CreateTag(creator.ID, "backend", "#ff0000")
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.tasks.TagTask(creator.ID, task.ID, tag.ID)
	require.NoError(t, err)
	_, err = env.tasks.TagTask(creator.ID, task.ID, tag.ID)
	require.ErrorIs(t, err, ErrConflict)

	tags, err := env.tasks.Tags(task.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "backend", tags[0].Name)
}

func TestListForUser_OnlyAssignedTasks(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "a@example.com", "alice")
	assignee := env.register(t, "b@example.com", "bob")
	project := env.createProject(t, creator.ID, "Platform")
	assigned := env.createTask(t, creator.ID, project.ID, "Assigned")
	env.createTask(t, creator.ID, project.ID, "Unassigned")

	_, err := env.tasks.Assign(creator.ID, assigned.ID, assignee.ID)
	require.NoError(t, err)

	tasks, err := env.tasks.ListForUser(assignee.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, assigned.ID, tasks[0].ID)
}
