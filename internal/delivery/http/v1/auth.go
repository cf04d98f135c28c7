package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/swifttrack/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("email", req.Email).
			Msg("failed to login")
		// Unknown email and wrong password are indistinguishable to the client.
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrUserPasswordMismatch) {
			abort(c, newUnauthorizedError("invalid email or password"))
			return
		}
		abort(c, newServiceError(err))
		return
	}

	setTokenCookies(c, result)
	c.JSON(http.StatusOK, newTokenResponse(result))
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	result, ok := h.refresh(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(result))
}

// refresh rotates the session behind the refresh token cookie and sets the
// new token cookies. It aborts the request on failure.
func (h *handlerImpl) refresh(c *gin.Context) (*services.LoginResult, bool) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to get refresh token cookie")
		abort(c, newUnauthorizedError(errMandatoryCookieNotFound.Error()))
		return nil, false
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return nil, false
	}

	result, err := h.auth.Refresh(c, services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to refresh session")
		if errors.Is(err, services.ErrSessionNotFound) {
			abort(c, newUnauthorizedError(services.ErrSessionNotFound.Error()))
			return nil, false
		}
		abort(c, newServiceError(err))
		return nil, false
	}

	setTokenCookies(c, result)
	return result, true
}

type registerRequest struct {
	loginRequest
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("register request")

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Register(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, newServiceError(err))
		return
	}

	setTokenCookies(c, result)
	c.JSON(http.StatusCreated, newTokenResponse(result))
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	err := h.auth.Logout(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to logout")
		abort(c, newServiceError(err))
		return
	}
	h.boards.CloseUser(userID)

	clearCookie(c, accessTokenCookie)
	clearCookie(c, refreshTokenCookie)

	c.Status(http.StatusNoContent)
}

type meResponse struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func (h *handlerImpl) HandleMe(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}
	sessionID, _ := getStringFromContext(c, sessionIDCtxKey)

	c.JSON(http.StatusOK, meResponse{
		UserID:    userID,
		SessionID: sessionID,
	})
}

type tokenResponse struct {
	UserID               string    `json:"user_id"`
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

func newTokenResponse(result *services.LoginResult) tokenResponse {
	return tokenResponse{
		UserID:               result.UserID,
		AccessToken:          result.AccessToken,
		AccessTokenExpiresAt: result.AccessTokenExpiresAt,
	}
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func setTokenCookies(c *gin.Context, result *services.LoginResult) {
	now := time.Now()
	setAccessTokenCookie(c, result.AccessToken, result.AccessTokenExpiresAt.Sub(now))
	setRefreshTokenCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt.Sub(now))
}

func setAccessTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	// httpOnly must be false to allow client-side JavaScript
	// to read the cookie and send it in the Authorization header.
	const secure, httpOnly = false, false
	c.SetCookie(accessTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func setRefreshTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(refreshTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, false)
}
