package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = TokenConfig{
	Issuer:     "swifttrack",
	SigningKey: []byte("key"),
	AccessTTL:  time.Minute,
	RefreshTTL: time.Hour,
}

func newTestAuthService(db Querier) *authServiceImpl {
	return NewAuthService(zerolog.Nop(), db, testTokens).(*authServiceImpl)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := tokenIssuer{cfg: testTokens}

	token, expiresAt, err := tokens.accessToken("session-1", time.Now())
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tokens.parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.Subject)
}

func TestParseJWTTokenWrongKey(t *testing.T) {
	issuer := tokenIssuer{cfg: TokenConfig{Issuer: "swifttrack", SigningKey: []byte("a"), AccessTTL: time.Minute}}
	verifier := newTestAuthService(&fakeQuerier{})

	token, _, err := issuer.accessToken("session-1", time.Now())
	require.NoError(t, err)

	_, err = verifier.ParseJWTToken(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestParseJWTTokenExpired(t *testing.T) {
	tokens := tokenIssuer{cfg: testTokens}
	token, _, err := tokens.accessToken("session-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = tokens.parse(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLoginUnknownUser(t *testing.T) {
	db := &fakeQuerier{}
	svc := newTestAuthService(db)

	_, err := svc.Login(context.Background(), LoginParams{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, db.beginCalls)
}

func TestLoginReplacesDeviceSession(t *testing.T) {
	hash, err := argon2id.CreateHash("secret1", argon2id.DefaultParams)
	require.NoError(t, err)

	tx := &fakeTx{}
	db := &fakeQuerier{
		tx: tx,
		QueryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
			assert.Equal(t, "ann@example.com", args[0])
			return rowFunc(func(dest ...any) error {
				*dest[0].(*string) = "u1"
				*dest[1].(*string) = hash
				return nil
			})
		},
	}
	svc := newTestAuthService(db)

	result, err := svc.Login(context.Background(), LoginParams{
		Email:       " Ann@Example.com ",
		Password:    "secret1",
		Fingerprint: "device-a",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", result.UserID)
	assert.True(t, tx.committed)

	require.Len(t, tx.execSQL, 2)
	assert.Contains(t, tx.execSQL[0], "DELETE FROM sessions")
	assert.Equal(t, "device-a", tx.execArgs[0][1])
	assert.Contains(t, tx.execSQL[1], "INSERT INTO sessions")
}

func TestLoginPasswordMismatch(t *testing.T) {
	hash, err := argon2id.CreateHash("secret1", argon2id.DefaultParams)
	require.NoError(t, err)

	db := &fakeQuerier{
		QueryRowFunc: func(context.Context, string, ...any) pgx.Row {
			return rowFunc(func(dest ...any) error {
				*dest[0].(*string) = "u1"
				*dest[1].(*string) = hash
				return nil
			})
		},
	}
	svc := newTestAuthService(db)

	_, err = svc.Login(context.Background(), LoginParams{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUserPasswordMismatch)
	assert.Zero(t, db.beginCalls)
}

func TestRegisterValidation(t *testing.T) {
	db := &fakeQuerier{}
	svc := newTestAuthService(db)

	_, err := svc.Register(context.Background(), LoginParams{Email: "  ", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = svc.Register(context.Background(), LoginParams{Email: "ann@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, db.beginCalls)
}

func TestRegister(t *testing.T) {
	tx := &fakeTx{}
	svc := newTestAuthService(&fakeQuerier{tx: tx})

	result, err := svc.Register(context.Background(), LoginParams{
		Email:       "Ann@Example.com",
		Password:    "secret1",
		Fingerprint: "device-a",
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
	require.Len(t, tx.execArgs, 2)
	assert.Equal(t, "ann@example.com", tx.execArgs[0][1])
	assert.NotEqual(t, "secret1", tx.execArgs[0][2])

	claims, err := svc.ParseJWTToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, claims.Subject)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	tx := &fakeTx{
		ExecFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := newTestAuthService(&fakeQuerier{tx: tx})

	_, err := svc.Register(context.Background(), LoginParams{Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, tx.committed)
}

func sessionRow(expiresAt time.Time) func(context.Context, string, ...any) pgx.Row {
	return func(_ context.Context, sql string, _ ...any) pgx.Row {
		return rowFunc(func(dest ...any) error {
			*dest[0].(*string) = "s1"
			*dest[1].(*string) = "u1"
			*dest[2].(*time.Time) = expiresAt
			return nil
		})
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	tx := &fakeTx{}
	svc := newTestAuthService(&fakeQuerier{tx: tx})

	_, err := svc.Refresh(context.Background(), RefreshParams{RefreshToken: "stale", Fingerprint: "device-a"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, tx.committed)
}

func TestRefreshExpiredSession(t *testing.T) {
	tx := &fakeTx{QueryRowFunc: sessionRow(time.Now().Add(-time.Minute))}
	svc := newTestAuthService(&fakeQuerier{tx: tx})

	_, err := svc.Refresh(context.Background(), RefreshParams{RefreshToken: "old", Fingerprint: "device-a"})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, tx.execSQL)
}

func TestRefreshRotatesToken(t *testing.T) {
	var lockSQL string
	tx := &fakeTx{}
	tx.QueryRowFunc = func(ctx context.Context, sql string, args ...any) pgx.Row {
		lockSQL = sql
		return sessionRow(time.Now().Add(time.Hour))(ctx, sql, args...)
	}
	svc := newTestAuthService(&fakeQuerier{tx: tx})

	result, err := svc.Refresh(context.Background(), RefreshParams{RefreshToken: "old", Fingerprint: "device-a"})
	require.NoError(t, err)

	assert.True(t, strings.Contains(lockSQL, "FOR UPDATE"))
	assert.Equal(t, "s1", result.SessionID)
	assert.NotEqual(t, "old", result.RefreshToken)
	require.Len(t, tx.execArgs, 1)
	assert.Equal(t, result.RefreshToken, tx.execArgs[0][0])
	assert.True(t, tx.committed)
}
