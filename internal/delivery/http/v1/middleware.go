package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/swifttrack/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
)

// HandleAuthMiddleware authenticates the request by its bearer access token.
// An expired token is renewed with the refresh token cookie, and the fresh
// pair is sent back as cookies.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	claims, err := h.auth.ParseJWTToken(parts[1])
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Warn().
				Err(err).
				Msg("failed to parse token")
			abort(c, newStatusTextError(http.StatusUnauthorized))
			return
		}

		result, ok := h.refresh(c)
		if !ok {
			return
		}

		claims, err = h.auth.ParseJWTToken(result.AccessToken)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to parse fresh token")
			abort(c, newStatusTextError(http.StatusUnauthorized))
			return
		}
	}

	session, err := h.sessions.GetSessionByID(c, claims.Subject)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("session_id", claims.Subject).
			Msg("failed to fetch session")
		if errors.Is(err, services.ErrSessionNotFound) {
			abort(c, newStatusTextError(http.StatusUnauthorized))
			return
		}
		abort(c, newServiceError(err))
		return
	}

	browserFingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if browserFingerprint != session.Fingerprint {
		h.logger.Warn().
			Str("session_id", session.ID).
			Msg("fingerprint mismatch")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

// mustUserID returns the id set by HandleAuthMiddleware. It aborts with 401
// when the route was mounted without the middleware.
func (h *handlerImpl) mustUserID(c *gin.Context) (string, bool) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok || userID == "" {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return "", false
	}
	return userID, true
}
