package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/swifttrack/internal/board"
	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
	"github.com/adanyl0v/swifttrack/internal/theme"
)

const (
	testUserID    = "0192a6f0-0000-7000-8000-000000000001"
	testSessionID = "0192a6f0-0000-7000-8000-000000000002"
	testProjectID = "0192a6f0-0000-7000-8000-000000000003"
	testTaskID    = "0192a6f0-0000-7000-8000-000000000004"
	testToken     = "access-token"
	testUserAgent = "swifttrack-test"
)

var errDatabaseDown = fmt.Errorf("%w: connection refused", services.ErrPersistence)

type testServer struct {
	router   *gin.Engine
	auth     *mockAuthService
	sessions *mockSessionService
	projects *mockProjectService
	tasks    *mockTaskService
	hub      *board.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router:   gin.New(),
		auth:     &mockAuthService{},
		sessions: &mockSessionService{},
		projects: &mockProjectService{},
		tasks:    &mockTaskService{},
	}
	ts.hub = board.NewHub(zerolog.Nop(), ts.tasks, board.HubOptions{
		Options:            board.Options{RemoteTimeout: time.Second},
		ActivationDistance: 8,
	})

	h := New(
		zerolog.Nop(),
		ts.auth,
		ts.sessions,
		ts.projects,
		ts.tasks,
		ts.hub,
		theme.NewPreference(theme.Dark),
	)
	Register(ts.router.Group("/api/v1"), h)
	return ts
}

// authenticate makes every request carrying testToken resolve to testUserID.
func (ts *testServer) authenticate() {
	ts.auth.On("ParseJWTToken", testToken).
		Return(&jwt.RegisteredClaims{Subject: testSessionID}, nil)
	ts.sessions.On("GetSessionByID", mock.Anything, testSessionID).
		Return(&models.Session{
			ID:          testSessionID,
			UserID:      testUserID,
			Fingerprint: fmt.Sprintf(`{"client_ip":"192.0.2.1","user_agent":%q}`, testUserAgent),
		}, nil)
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	req.Header.Set("Authorization", "Bearer "+testToken)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func testTask(status models.TaskStatus) *models.Task {
	return &models.Task{
		ID:        testTaskID,
		ProjectID: testProjectID,
		UserID:    testUserID,
		Title:     "Write the release notes",
		Status:    status,
		CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewServiceError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrEmptyTaskTitle, http.StatusBadRequest},
		{services.ErrSessionExpired, http.StatusUnauthorized},
		{services.ErrProjectNotFound, http.StatusNotFound},
		{services.ErrUserAlreadyExists, http.StatusConflict},
		{errDatabaseDown, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, newServiceError(tt.err).Code)
		})
	}
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), newServiceError(errDatabaseDown).Message)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	ts.projects.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.On("ParseJWTToken", testToken).
		Return(nil, fmt.Errorf("%w: signature is invalid", services.ErrNotAuthenticated))

	w := ts.do(t, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsFingerprintMismatch(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.On("ParseJWTToken", testToken).
		Return(&jwt.RegisteredClaims{Subject: testSessionID}, nil)
	ts.sessions.On("GetSessionByID", mock.Anything, testSessionID).
		Return(&models.Session{ID: testSessionID, UserID: testUserID, Fingerprint: "elsewhere"}, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRefreshesExpiredToken(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.On("ParseJWTToken", testToken).
		Return(nil, fmt.Errorf("%w: %w", services.ErrNotAuthenticated, jwt.ErrTokenExpired))
	ts.auth.On("Refresh", mock.Anything, mock.MatchedBy(func(p services.RefreshParams) bool {
		return p.RefreshToken == "refresh-token"
	})).Return(&services.LoginResult{
		UserID:                testUserID,
		SessionID:             testSessionID,
		AccessToken:           "fresh-token",
		AccessTokenExpiresAt:  time.Now().Add(time.Minute),
		RefreshToken:          "fresh-refresh-token",
		RefreshTokenExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	ts.auth.On("ParseJWTToken", "fresh-token").
		Return(&jwt.RegisteredClaims{Subject: testSessionID}, nil)
	ts.sessions.On("GetSessionByID", mock.Anything, testSessionID).
		Return(&models.Session{
			ID:          testSessionID,
			UserID:      testUserID,
			Fingerprint: fmt.Sprintf(`{"client_ip":"192.0.2.1","user_agent":%q}`, testUserAgent),
		}, nil)
	ts.projects.On("ListProjects", mock.Anything, testUserID).Return([]*models.Project{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("User-Agent", testUserAgent)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "refresh-token"})
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cookies []string
	for _, c := range w.Result().Cookies() {
		cookies = append(cookies, c.Name+"="+c.Value)
	}
	assert.Contains(t, cookies, accessTokenCookie+"=fresh-token")
	assert.Contains(t, cookies, refreshTokenCookie+"=fresh-refresh-token")
}

func TestHandleMe(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()

	w := ts.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[meResponse](t, w)
	assert.Equal(t, testUserID, resp.UserID)
	assert.Equal(t, testSessionID, resp.SessionID)
}

func TestHandleLoginHidesWhichCredentialFailed(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.On("Login", mock.Anything, mock.Anything).Return(nil, services.ErrUserNotFound)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    "nobody@example.com",
		Password: "password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestHandleTheme(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dark", decode[themeResponse](t, w).Theme)

	w = ts.do(t, http.MethodPost, "/api/v1/theme/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "light", decode[themeResponse](t, w).Theme)
}

func TestHandleCreateProject(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.projects.On("CreateProject", mock.Anything, services.CreateProjectParams{
		UserID: testUserID,
		Name:   "Launch",
	}).Return(&models.Project{ID: testProjectID, UserID: testUserID, Name: "Launch"}, nil)

	w := ts.do(t, http.MethodPost, "/api/v1/projects", createProjectRequest{Name: "Launch"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testProjectID, decode[getProjectResponse](t, w).ID)
}

func TestHandleCreateProjectValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.projects.On("CreateProject", mock.Anything, mock.Anything).Return(nil, services.ErrEmptyProjectName)

	w := ts.do(t, http.MethodPost, "/api/v1/projects", createProjectRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetProject(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.projects.On("GetProject", mock.Anything, testUserID, testProjectID).
		Return(&models.Project{ID: testProjectID, UserID: testUserID, Name: "Launch"}, nil)
	ts.tasks.On("ListTasks", mock.Anything, testUserID, testProjectID).
		Return([]*models.Task{testTask(models.StatusTodo)}, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/projects/"+testProjectID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[getProjectWithTasksResponse](t, w)
	assert.Equal(t, "Launch", resp.Name)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "todo", resp.Tasks[0].Status)
}

func TestHandleGetProjectNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.projects.On("GetProject", mock.Anything, testUserID, testProjectID).
		Return(nil, services.ErrProjectNotFound)
	ts.tasks.On("ListTasks", mock.Anything, testUserID, testProjectID).
		Return([]*models.Task{}, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/projects/"+testProjectID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetProjectRejectsMalformedID(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()

	w := ts.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.projects.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSetTaskStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.tasks.On("UpdateTaskStatus", mock.Anything, services.UpdateTaskStatusParams{
		ID:     testTaskID,
		UserID: testUserID,
		Status: models.StatusDone,
	}).Return(testTask(models.StatusDone), nil)

	w := ts.do(t, http.MethodPatch, "/api/v1/tasks/"+testTaskID+"/status", setTaskStatusRequest{Status: "done"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", decode[getTaskResponse](t, w).Status)

	w = ts.do(t, http.MethodPatch, "/api/v1/tasks/"+testTaskID+"/status", setTaskStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.tasks.AssertNumberOfCalls(t, "UpdateTaskStatus", 1)
}

func TestHandleUpdateTaskNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.tasks.On("UpdateTask", mock.Anything, mock.Anything).Return(nil, services.ErrTaskNotFound)

	w := ts.do(t, http.MethodPatch, "/api/v1/tasks/"+testTaskID, updateTaskRequest{Title: "Renamed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardRequiresOpenSession(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()

	w := ts.do(t, http.MethodGet, "/api/v1/projects/"+testProjectID+"/board", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/projects/"+testProjectID+"/board", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardDragFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.projects.On("GetProject", mock.Anything, testUserID, testProjectID).
		Return(&models.Project{ID: testProjectID, UserID: testUserID, Name: "Launch"}, nil)
	ts.tasks.On("ListTasks", mock.Anything, testUserID, testProjectID).
		Return([]*models.Task{testTask(models.StatusTodo)}, nil)
	ts.tasks.On("UpdateTaskStatus", mock.Anything, services.UpdateTaskStatusParams{
		ID:     testTaskID,
		UserID: testUserID,
		Status: models.StatusDone,
	}).Return(testTask(models.StatusDone), nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		assert.Nil(t, ctx.Value(gin.ContextKey), "remote update must not hold the gin context")
	}).Once()

	base := "/api/v1/projects/" + testProjectID + "/board"

	w := ts.do(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	opened := decode[getBoardResponse](t, w)
	require.Len(t, opened.Columns, 3)
	assert.Len(t, opened.Columns[0].Tasks, 1)

	w = ts.do(t, http.MethodPost, base+"/events", boardEventRequest{Type: "drag_started", TaskID: testTaskID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testTaskID, decode[getBoardResponse](t, w).ActiveID)

	w = ts.do(t, http.MethodPost, base+"/events", boardEventRequest{
		Type:   "drag_ended",
		TaskID: testTaskID,
		ZoneID: "done",
	})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[getBoardResponse](t, w)
	assert.Empty(t, moved.ActiveID)
	assert.Empty(t, moved.Columns[0].Tasks)
	require.Len(t, moved.Columns[2].Tasks, 1)

	w = ts.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	ts.tasks.AssertExpectations(t)
}

func TestBoardEventValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.hub.Open(testUserID, testProjectID, []*models.Task{testTask(models.StatusTodo)})
	base := "/api/v1/projects/" + testProjectID + "/board"

	w := ts.do(t, http.MethodPost, base+"/events", boardEventRequest{Type: "explode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base+"/events", boardEventRequest{Type: "card_clicked", TaskID: testTaskID})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, base+"/events", boardEventRequest{
		Type:   "edit_submitted",
		TaskID: testTaskID,
		Title:  "  ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.tasks.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)

	w = ts.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[getBoardResponse](t, w)
	require.NotNil(t, snap.Draft)
	assert.NotEmpty(t, snap.Draft.Error)
}

func TestBoardPointerClick(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.hub.Open(testUserID, testProjectID, []*models.Task{testTask(models.StatusTodo)})
	base := "/api/v1/projects/" + testProjectID + "/board"

	w := ts.do(t, http.MethodPut, base+"/zones", map[string]any{
		"zones": []map[string]any{
			{"id": "todo", "rect": map[string]float64{"x": 0, "y": 0, "width": 300, "height": 600}},
			{"id": "in_progress", "rect": map[string]float64{"x": 320, "y": 0, "width": 300, "height": 600}},
			{"id": "done", "rect": map[string]float64{"x": 640, "y": 0, "width": 300, "height": 600}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[getBoardResponse](t, w).Zones, 3)

	w = ts.do(t, http.MethodPost, base+"/pointer", boardPointerRequest{Kind: "down", TaskID: testTaskID})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, base+"/pointer", boardPointerRequest{Kind: "up"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[boardPointerResponse](t, w)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, "click", string(resp.Outcomes[0].Kind))
	require.NotNil(t, resp.Board.Selected)
	assert.Equal(t, testTaskID, resp.Board.Selected.ID)
}

func TestBoardZonesRejectUnknownStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.authenticate()
	ts.hub.Open(testUserID, testProjectID, nil)

	w := ts.do(t, http.MethodPut, "/api/v1/projects/"+testProjectID+"/board/zones", map[string]any{
		"zones": []map[string]any{{"id": "archive"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
