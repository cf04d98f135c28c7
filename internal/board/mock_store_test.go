package board

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateTask(ctx context.Context, params services.CreateTaskParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *mockStore) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *mockStore) UpdateTaskStatus(ctx context.Context, params services.UpdateTaskStatusParams) (*models.Task, error) {
	args := m.Called(ctx, params)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func statusParams(taskID string, status models.TaskStatus) services.UpdateTaskStatusParams {
	return services.UpdateTaskStatusParams{ID: taskID, UserID: testUserID, Status: status}
}
