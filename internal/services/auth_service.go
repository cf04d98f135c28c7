package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/models"
)

// MinPasswordLength is also enforced by the HTTP binding.
const MinPasswordLength = 6

type authServiceImpl struct {
	logger zerolog.Logger
	db     Querier
	tokens tokenIssuer
	now    func() time.Time
}

func NewAuthService(
	logger zerolog.Logger,
	db Querier,
	tokens TokenConfig,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		db:     db,
		tokens: tokenIssuer{cfg: tokens},
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, params LoginParams) (*LoginResult, error) {
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if len(params.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	now := s.now()
	user := models.User{
		ID:        userUUID.String(),
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var result *LoginResult
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		const insertUserQuery = `
INSERT INTO users (id, email, password, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`
		_, err := tx.Exec(ctx, insertUserQuery,
			user.ID, user.Email, user.Password, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrUserAlreadyExists
			}
			return persistenceError(err)
		}

		result, err = s.openSession(ctx, tx, user.ID, params.Fingerprint, now)
		return err
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("email", email).
			Msg("failed to register user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("registered user")
	return result, nil
}

// Login opens a session for the device identified by the fingerprint. A
// previous session of the same device and the user's expired sessions are
// dropped; sessions on other devices stay valid.
func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	email := normalizeEmail(params.Email)

	var user models.User
	const selectUserQuery = `SELECT id, password FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, selectUserQuery, email).Scan(&user.ID, &user.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn().
			Str("email", email).
			Msg("login of unknown user")
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select user")
		return nil, persistenceError(err)
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		return nil, err
	}
	if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("password mismatch")
		return nil, ErrUserPasswordMismatch
	}

	now := s.now()
	var result *LoginResult
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		const pruneSessionsQuery = `
DELETE FROM sessions
WHERE user_id = $1 AND (fingerprint = $2 OR expires_at <= $3)
`
		_, err := tx.Exec(ctx, pruneSessionsQuery, user.ID, params.Fingerprint, now)
		if err != nil {
			return persistenceError(err)
		}

		result, err = s.openSession(ctx, tx, user.ID, params.Fingerprint, now)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to open session")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("logged in")
	return result, nil
}

// Refresh rotates the refresh token. The session row is locked so two
// concurrent refreshes with the same token cannot both succeed.
func (s *authServiceImpl) Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error) {
	now := s.now()

	var result *LoginResult
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		session := models.Session{Fingerprint: params.Fingerprint}

		const lockSessionQuery = `
SELECT id, user_id, expires_at
FROM sessions
WHERE refresh_token = $1 AND fingerprint = $2
FOR UPDATE
`
		err := tx.QueryRow(ctx, lockSessionQuery, params.RefreshToken, params.Fingerprint).
			Scan(&session.ID, &session.UserID, &session.ExpiresAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		if err != nil {
			return persistenceError(err)
		}
		if session.Expired(now) {
			return ErrSessionExpired
		}

		session.RefreshToken, err = newRefreshToken()
		if err != nil {
			return err
		}
		session.ExpiresAt = now.Add(s.tokens.cfg.RefreshTTL)
		session.UpdatedAt = now

		const rotateSessionQuery = `
UPDATE sessions
SET refresh_token = $1, expires_at = $2, updated_at = $3
WHERE id = $4
`
		_, err = tx.Exec(ctx, rotateSessionQuery,
			session.RefreshToken, session.ExpiresAt, session.UpdatedAt, session.ID)
		if err != nil {
			return persistenceError(err)
		}

		result, err = s.tokens.pair(&session, now)
		return err
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to refresh session")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", result.UserID).
		Str("session_id", result.SessionID).
		Msg("refreshed session")
	return result, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, userID string) error {
	const deleteSessionsQuery = `DELETE FROM sessions WHERE user_id = $1`
	tag, err := s.db.Exec(ctx, deleteSessionsQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete sessions")
		return persistenceError(err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("sessions", tag.RowsAffected()).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	return s.tokens.parse(token)
}

func (s *authServiceImpl) openSession(ctx context.Context, tx pgx.Tx, userID, fingerprint string, now time.Time) (*LoginResult, error) {
	sessionUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	session := models.Session{
		ID:           sessionUUID.String(),
		UserID:       userID,
		Fingerprint:  fingerprint,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.tokens.cfg.RefreshTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	const insertSessionQuery = `
INSERT INTO sessions (id, user_id, fingerprint, refresh_token, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = tx.Exec(ctx, insertSessionQuery,
		session.ID, session.UserID, session.Fingerprint, session.RefreshToken,
		session.ExpiresAt, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, persistenceError(err)
	}

	return s.tokens.pair(&session, now)
}
