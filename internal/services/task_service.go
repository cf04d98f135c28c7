package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	db     Querier
}

func NewTaskService(
	logger zerolog.Logger,
	db Querier,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTaskTitle
	}

	task := &models.Task{
		ProjectID:   params.ProjectID,
		UserID:      params.UserID,
		Title:       title,
		Description: optionalText(params.Description),
		Status:      models.StatusTodo,
		CreatedAt:   time.Now(),
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   project_id,
                   user_id,
                   title,
                   description,
                   status,
                   created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = s.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.ProjectID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			s.logger.Error().
				Str("project_id", task.ProjectID).
				Str("user_id", task.UserID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", task.ProjectID).
			Msg("failed to insert task")
		return nil, persistenceError(err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID, projectID string) ([]*models.Task, error) {
	const selectTasksByProjectIDQuery = `
SELECT id,
       title,
       description,
       status,
       created_at
FROM tasks
WHERE project_id = $1 AND user_id = $2
ORDER BY created_at ASC
`
	rows, err := s.db.Query(
		ctx,
		selectTasksByProjectIDQuery,
		projectID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select tasks by project id")
		return nil, persistenceError(err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{ProjectID: projectID, UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, persistenceError(err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, persistenceError(err)
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("project_id", projectID).
		Msg("selected tasks by project id")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTaskTitle
	}

	task := &models.Task{
		ID:          params.ID,
		UserID:      params.UserID,
		Title:       title,
		Description: optionalText(params.Description),
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2
WHERE id = $3 AND user_id = $4
RETURNING project_id, status, created_at
`
	err := s.db.QueryRow(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.ID,
		task.UserID,
	).Scan(
		&task.ProjectID,
		&task.Status,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, persistenceError(err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error) {
	if !params.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	task := &models.Task{
		ID:     params.ID,
		UserID: params.UserID,
		Status: params.Status,
	}

	const updateTaskStatusQuery = `
UPDATE tasks
SET status = $1
WHERE id = $2 AND user_id = $3
RETURNING project_id, title, description, created_at
`
	err := s.db.QueryRow(
		ctx,
		updateTaskStatusQuery,
		task.Status,
		task.ID,
		task.UserID,
	).Scan(
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task status")
		return nil, persistenceError(err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("status", task.Status.String()).
		Msg("updated task status")
	return task, nil
}
