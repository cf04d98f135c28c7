package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/models"
)

type projectServiceImpl struct {
	logger zerolog.Logger
	db     Querier
}

func NewProjectService(
	logger zerolog.Logger,
	db Querier,
) ProjectService {
	return &projectServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyProjectName
	}

	project := &models.Project{
		UserID:      params.UserID,
		Name:        name,
		Description: optionalText(params.Description),
		CreatedAt:   time.Now(),
	}

	projectUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate project uuid")
		return nil, err
	}
	project.ID = projectUUID.String()

	const insertProjectQuery = `
INSERT INTO projects (id,
                      user_id,
                      name,
                      description,
                      created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.db.Exec(
		ctx,
		insertProjectQuery,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.CreatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", project.UserID).
			Msg("failed to insert project")
		return nil, persistenceError(err)
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("created project")
	return project, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project := &models.Project{
		ID:     projectID,
		UserID: userID,
	}

	const selectProjectQuery = `
SELECT name,
       description,
       created_at
FROM projects
WHERE id = $1 AND user_id = $2
`
	err := s.db.QueryRow(
		ctx,
		selectProjectQuery,
		project.ID,
		project.UserID,
	).Scan(
		&project.Name,
		&project.Description,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project")
		return nil, persistenceError(err)
	}
	s.logger.Debug().
		Str("project_id", projectID).
		Msg("selected project")
	return project, nil
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	const selectProjectsByUserIDQuery = `
SELECT id,
       name,
       description,
       created_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := s.db.Query(
		ctx,
		selectProjectsByUserIDQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects by user id")
		return nil, persistenceError(err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{UserID: userID}
		err = rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan project")
			return nil, persistenceError(err)
		}
		projects = append(projects, project)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, persistenceError(err)
	}
	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("selected projects by user id")
	return projects, nil
}
