package v1

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*services.LoginResult)
	return result, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, params services.RefreshParams) (*services.LoginResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*services.LoginResult)
	return result, args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*services.LoginResult)
	return result, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthService) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.RegisteredClaims)
	return claims, args.Error(1)
}

type mockSessionService struct {
	mock.Mock
}

func (m *mockSessionService) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

type mockProjectService struct {
	mock.Mock
}

func (m *mockProjectService) CreateProject(ctx context.Context, params services.CreateProjectParams) (*models.Project, error) {
	args := m.Called(ctx, params)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *mockProjectService) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	args := m.Called(ctx, userID, projectID)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *mockProjectService) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	args := m.Called(ctx, userID)
	projects, _ := args.Get(0).([]*models.Project)
	return projects, args.Error(1)
}

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) CreateTask(ctx context.Context, params services.CreateTaskParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) ListTasks(ctx context.Context, userID, projectID string) ([]*models.Task, error) {
	args := m.Called(ctx, userID, projectID)
	tasks, _ := args.Get(0).([]*models.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) UpdateTaskStatus(ctx context.Context, params services.UpdateTaskStatusParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}
