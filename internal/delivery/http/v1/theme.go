package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type themeResponse struct {
	Theme string `json:"theme"`
}

func (h *handlerImpl) HandleGetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, themeResponse{Theme: h.theme.Current().String()})
}

func (h *handlerImpl) HandleToggleTheme(c *gin.Context) {
	t := h.theme.Toggle()
	h.logger.Info().
		Str("theme", t.String()).
		Msg("toggled theme")
	c.JSON(http.StatusOK, themeResponse{Theme: t.String()})
}
