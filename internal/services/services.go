package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/swifttrack/internal/models"
)

// Error kinds. Every error returned by a service wraps exactly one of them,
// so callers classify failures with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPersistence      = errors.New("persistence failure")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)

var (
	ErrEmptyTaskTitle       = fmt.Errorf("%w: task title is required", ErrValidation)
	ErrEmptyProjectName     = fmt.Errorf("%w: project name is required", ErrValidation)
	ErrInvalidTaskStatus    = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrEmptyEmail           = fmt.Errorf("%w: email is required", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password is too short", ErrValidation)
	ErrTaskNotFound         = fmt.Errorf("task %w", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("session %w", ErrNotFound)
	ErrUserAlreadyExists    = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrUserPasswordMismatch = fmt.Errorf("%w: user password mismatch", ErrNotAuthenticated)
	ErrSessionExpired       = fmt.Errorf("%w: session expired", ErrNotAuthenticated)
)

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

type AuthService interface {
	// Login authenticates the user by email and password and opens
	// a session for the device, replacing that device's previous one.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given email and password.
	//
	// It returns ErrUserAlreadyExists if the user with the given
	// email already exists and a validation error for a blank email
	// or a password shorter than MinPasswordLength.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims. An expired token yields an error wrapping jwt.ErrTokenExpired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type ProjectService interface {
	CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error)

	// GetProject returns ErrProjectNotFound unless the project
	// exists and belongs to the given user.
	GetProject(ctx context.Context, userID, projectID string) (*models.Project, error)

	// ListProjects returns the user's projects, newest first.
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
}

// TaskService is the remote store behind a board. All operations are scoped
// by user ID in addition to the task or project ID.
type TaskService interface {
	// CreateTask inserts a task in the todo status. It returns
	// ErrProjectNotFound if the project doesn't exist or isn't
	// owned by the user.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListTasks returns the project's tasks ordered by creation time.
	ListTasks(ctx context.Context, userID, projectID string) ([]*models.Task, error)

	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateProjectParams struct {
	UserID      string
	Name        string
	Description string
}

type CreateTaskParams struct {
	UserID      string
	ProjectID   string
	Title       string
	Description string
}

type UpdateTaskParams struct {
	ID          string
	UserID      string
	Title       string
	Description string
}

type UpdateTaskStatusParams struct {
	ID     string
	UserID string
	Status models.TaskStatus
}
