package services

import (
	"io"
	"testing"
	"time"

	"project-management-api/internal/auth"
	"project-management-api/internal/models"
	"project-management-api/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	users     *UserService
	projects  *ProjectService
	tasks     *TaskService
	calendars *CalendarService
	activity  *ActivityRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	activity := NewActivityRecorder(db, log)
	tokens := auth.NewTokenManager("test-secret", "project-management-api", "project-management-clients", time.Hour)
	return &testEnv{
		db:        db,
		users:     NewUserService(db, tokens, activity, log),
		projects:  NewProjectService(db, activity, log),
		tasks:     NewTaskService(db, activity, log),
		calendars: NewCalendarService(db, activity, log),
		activity:  activity,
	}
}

func (e *testEnv) register(t *testing.T, email, username string) *models.User {
	t.Helper()
	user, token, err := e.users.Register(RegisterInput{
		Email:    email,
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func (e *testEnv) createProject(t *testing.T, creatorID uint, name string) *models.Project {
	t.Helper()
	project, err := e.projects.Create(creatorID, CreateProjectInput{Name: name})
	require.NoError(t, err)
	return project
}

func (e *testEnv) createTask(t *testing.T, creatorID, projectID uint, title string) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(creatorID, CreateTaskInput{Title: title, ProjectID: projectID})
	require.NoError(t, err)
	return task
}
