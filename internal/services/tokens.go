package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/adanyl0v/swifttrack/internal/models"
)

// TokenConfig controls the token pair handed out for a session. Access
// tokens are HS256 JWTs whose subject is the session id; refresh tokens are
// opaque and live as long as the session row.
type TokenConfig struct {
	Issuer     string
	SigningKey []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type tokenIssuer struct {
	cfg TokenConfig
}

func (t tokenIssuer) accessToken(sessionID string, now time.Time) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	expiresAt := now.Add(t.cfg.AccessTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    t.cfg.Issuer,
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// parse fails with ErrNotAuthenticated. An expired token additionally
// matches jwt.ErrTokenExpired.
func (t tokenIssuer) parse(token string) (*jwt.RegisteredClaims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.cfg.SigningKey, nil
		},
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse token: %w", ErrNotAuthenticated, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrNotAuthenticated)
	}
	return claims, nil
}

// pair issues an access token for the session and bundles it with the
// session's refresh token.
func (t tokenIssuer) pair(session *models.Session, now time.Time) (*LoginResult, error) {
	accessToken, accessTokenExpiresAt, err := t.accessToken(session.ID, now)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
