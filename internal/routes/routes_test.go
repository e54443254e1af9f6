package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-management-api/internal/config"
	"project-management-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	router, err := Setup(cfg, db, log)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type authResult struct {
	User struct {
		ID uint `json:"id"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
}

func registerUser(t *testing.T, router *gin.Engine, email, username string) authResult {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    email,
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res authResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.AccessToken)
	return res
}

func TestHealth(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")

	// Duplicate email is rejected and nothing new is issued.
	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    "alice@example.com",
		"username": "alice2",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Short password fails request validation.
	w = doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    "short@example.com",
		"username": "short",
		"password": "tiny",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"usernameOrEmail": "alice",
		"password":        "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"usernameOrEmail": "alice",
		"password":        "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/me", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, alice.User.ID, me.ID)
	require.Equal(t, "alice", me.Username)

	// Protected routes demand a token.
	w = doJSON(t, router, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectTaskLifecycle(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")
	bob := registerUser(t, router, "bob@example.com", "bob")

	// Alice creates a project and becomes its lead member.
	w := doJSON(t, router, http.MethodPost, "/api/projects", alice.AccessToken, gin.H{
		"name":        "Platform",
		"description": "backend rewrite",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%d/members", project.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Equal(t, 1, members.Count)

	// Alice creates a task and assigns it to Bob.
	w = doJSON(t, router, http.MethodPost, "/api/tasks", alice.AccessToken, gin.H{
		"title":     "Ship it",
		"projectId": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	assignPath := fmt.Sprintf("/api/tasks/%d/assign", task.ID)
	w = doJSON(t, router, http.MethodPost, assignPath, alice.AccessToken, gin.H{"userId": bob.User.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Assigning the same user again conflicts.
	w = doJSON(t, router, http.MethodPost, assignPath, alice.AccessToken, gin.H{"userId": bob.User.ID})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/tasks/%d/assignees", task.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var assignees struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignees))
	require.Equal(t, 1, assignees.Count)

	// Bob sees the task in his assigned list.
	w = doJSON(t, router, http.MethodGet, "/api/tasks", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Equal(t, 1, tasks.Count)

	// Only the creator may delete the project.
	deletePath := fmt.Sprintf("/api/projects/%d", project.ID)
	w = doJSON(t, router, http.MethodDelete, deletePath, bob.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, deletePath, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, deletePath, alice.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskUpdatePermissions(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")

	// Bob registers as a viewer, so he holds no task mutation grants.
	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "password123",
		"role":     "viewer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bob authResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bob))

	w = doJSON(t, router, http.MethodPost, "/api/projects", alice.AccessToken, gin.H{"name": "Platform"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = doJSON(t, router, http.MethodPost, "/api/tasks", alice.AccessToken, gin.H{
		"title":     "Ship it",
		"projectId": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var task struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	// A viewer has no mutation grant inside Alice's project.
	taskPath := fmt.Sprintf("/api/tasks/%d", task.ID)
	w = doJSON(t, router, http.MethodPut, taskPath, bob.AccessToken, gin.H{"status": "in_progress"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPut, taskPath, alice.AccessToken, gin.H{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Status      string  `json:"status"`
		CompletedAt *string `json:"completedAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "done", updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestTagsAndComments(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")

	w := doJSON(t, router, http.MethodPost, "/api/projects", alice.AccessToken, gin.H{"name": "Platform"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = doJSON(t, router, http.MethodPost, "/api/tasks", alice.AccessToken, gin.H{
		"title":     "Ship it",
		"projectId": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var task struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	w = doJSON(t, router, http.MethodPost, "/api/tags", alice.AccessToken, gin.H{"name": "backend"})
	require.Equal(t, http.StatusCreated, w.Code)
	var tag struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tag))

	w = doJSON(t, router, http.MethodPost, "/api/tags", alice.AccessToken, gin.H{"name": "backend"})
	require.Equal(t, http.StatusConflict, w.Code)

	tagPath := fmt.Sprintf("/api/tasks/%d/tags", task.ID)
	w = doJSON(t, router, http.MethodPost, tagPath, alice.AccessToken, gin.H{"tagId": tag.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, tagPath, alice.AccessToken, gin.H{"tagId": tag.ID})
	require.Equal(t, http.StatusConflict, w.Code)

	commentPath := fmt.Sprintf("/api/projects/%d/comments", project.ID)
	w = doJSON(t, router, http.MethodPost, commentPath, alice.AccessToken, gin.H{"content": "kickoff"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, commentPath, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Equal(t, 1, comments.Count)
}

func TestProjectAttachmentUpload(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")

	w := doJSON(t, router, http.MethodPost, "/api/projects", alice.AccessToken, gin.H{"name": "Platform"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("meeting notes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%d/attachments", project.ID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var attachment struct {
		Filename string `json:"filename"`
		FileSize int64  `json:"fileSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attachment))
	require.Equal(t, "notes.txt", attachment.Filename)
	require.EqualValues(t, len("meeting notes"), attachment.FileSize)
}

func TestCalendarEvents(t *testing.T) {
	router := newTestServer(t)
	alice := registerUser(t, router, "alice@example.com", "alice")

	w := doJSON(t, router, http.MethodPost, "/api/calendars", alice.AccessToken, gin.H{"name": "Team"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var calendar struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &calendar))

	eventsPath := fmt.Sprintf("/api/calendars/%d/events", calendar.ID)
	w = doJSON(t, router, http.MethodPost, eventsPath, alice.AccessToken, gin.H{
		"title":     "Review",
		"startTime": "2026-03-01T09:00:00Z",
		"endTime":   "2026-03-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// End before start is rejected.
	w = doJSON(t, router, http.MethodPost, eventsPath, alice.AccessToken, gin.H{
		"title":     "Backwards",
		"startTime": "2026-03-01T10:00:00Z",
		"endTime":   "2026-03-01T09:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, eventsPath+"?from=2026-03-01T00:00:00Z&to=2026-03-02T00:00:00Z", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Equal(t, 1, events.Count)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
