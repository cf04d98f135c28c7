package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/swifttrack/internal/board"
	"github.com/adanyl0v/swifttrack/internal/dnd"
)

type boardColumnResponse struct {
	Status string            `json:"status"`
	Tasks  []getTaskResponse `json:"tasks"`
}

type boardDraftResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

type getBoardResponse struct {
	ProjectID string                `json:"project_id"`
	Columns   []boardColumnResponse `json:"columns"`
	ActiveID  string                `json:"active_id,omitempty"`
	Selected  *getTaskResponse      `json:"selected,omitempty"`
	Draft     *boardDraftResponse   `json:"draft,omitempty"`
	Pending   []string              `json:"pending"`
	Error     string                `json:"error,omitempty"`
	Zones     []dnd.Zone            `json:"zones"`
}

func newGetBoardResponse(s *board.Session) getBoardResponse {
	snap := s.Snapshot()
	resp := getBoardResponse{
		ProjectID: snap.ProjectID,
		Columns:   make([]boardColumnResponse, 0, len(snap.Columns)),
		Pending:   snap.Pending,
		Zones:     s.Zones(),
	}
	for _, col := range snap.Columns {
		tasks := make([]getTaskResponse, 0, len(col.Tasks))
		for i := range col.Tasks {
			tasks = append(tasks, newGetTaskResponse(&col.Tasks[i]))
		}
		resp.Columns = append(resp.Columns, boardColumnResponse{
			Status: col.Status.String(),
			Tasks:  tasks,
		})
	}
	if snap.Active != nil {
		resp.ActiveID = snap.Active.ID
	}
	if snap.Selected != nil {
		selected := newGetTaskResponse(snap.Selected)
		resp.Selected = &selected
	}
	if snap.Draft != nil {
		resp.Draft = &boardDraftResponse{
			Title:       snap.Draft.Title,
			Description: snap.Draft.Description,
		}
		if snap.Draft.Err != nil {
			resp.Draft.Error = newServiceError(snap.Draft.Err).Message
		}
	}
	if snap.Err != nil {
		resp.Error = newServiceError(snap.Err).Message
	}
	if resp.Pending == nil {
		resp.Pending = []string{}
	}
	if resp.Zones == nil {
		resp.Zones = []dnd.Zone{}
	}
	return resp
}

// HandleOpenBoard loads the project's tasks into the user's board session,
// creating the session if needed.
func (h *handlerImpl) HandleOpenBoard(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var uri idURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind uri")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	_, tasks, err := h.loadProject(c, userID, uri.ID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	s := h.boards.Open(userID, uri.ID, tasks)
	c.JSON(http.StatusOK, newGetBoardResponse(s))
}

func (h *handlerImpl) HandleGetBoard(c *gin.Context) {
	s, ok := h.mustBoard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newGetBoardResponse(s))
}

func (h *handlerImpl) HandleCloseBoard(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	if !h.boards.Close(userID, c.Param("id")) {
		abort(c, newNotFoundError(errBoardNotOpen.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

type boardEventRequest struct {
	Type        string `json:"type" binding:"required,oneof=drag_started drag_ended card_clicked draft_changed edit_submitted edit_cancelled task_added error_dismissed"`
	TaskID      string `json:"task_id"`
	ZoneID      string `json:"zone_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r boardEventRequest) event() board.Event {
	switch r.Type {
	case "drag_started":
		return board.DragStarted{TaskID: r.TaskID}
	case "drag_ended":
		return board.DragEnded{TaskID: r.TaskID, ZoneID: r.ZoneID}
	case "card_clicked":
		return board.CardClicked{TaskID: r.TaskID}
	case "draft_changed":
		return board.DraftChanged{Title: r.Title, Description: r.Description}
	case "edit_submitted":
		return board.EditSubmitted{TaskID: r.TaskID, Title: r.Title, Description: r.Description}
	case "edit_cancelled":
		return board.EditCancelled{}
	case "task_added":
		return board.TaskAdded{Title: r.Title, Description: r.Description}
	default:
		return board.ErrorDismissed{}
	}
}

// HandleBoardEvent applies one user intent and returns the resulting board.
// A rejected intent is reported with its error status; the board may still
// have changed, for example to show the error in the editor.
func (h *handlerImpl) HandleBoardEvent(c *gin.Context) {
	s, ok := h.mustBoard(c)
	if !ok {
		return
	}

	var req boardEventRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = s.Dispatch(c.Request.Context(), req.event())
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("event", req.Type).
			Str("task_id", req.TaskID).
			Msg("board event rejected")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newGetBoardResponse(s))
}

type setBoardZonesRequest struct {
	Zones []dnd.Zone `json:"zones" binding:"required"`
}

func (h *handlerImpl) HandleSetBoardZones(c *gin.Context) {
	s, ok := h.mustBoard(c)
	if !ok {
		return
	}

	var req setBoardZonesRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = s.SetZones(req.Zones)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newGetBoardResponse(s))
}

type boardPointerRequest struct {
	Kind   string    `json:"kind" binding:"required,oneof=down move up cancel"`
	TaskID string    `json:"task_id"`
	Point  dnd.Point `json:"point"`
}

type boardPointerResponse struct {
	Outcomes []dnd.Outcome    `json:"outcomes"`
	Board    getBoardResponse `json:"board"`
}

func (h *handlerImpl) HandleBoardPointer(c *gin.Context) {
	s, ok := h.mustBoard(c)
	if !ok {
		return
	}

	var req boardPointerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	outcomes, err := s.HandlePointer(c.Request.Context(), dnd.PointerEvent{
		Kind:   dnd.PointerKind(req.Kind),
		TaskID: req.TaskID,
		Point:  req.Point,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("kind", req.Kind).
			Msg("pointer event rejected")
		abort(c, newServiceError(err))
		return
	}
	if outcomes == nil {
		outcomes = []dnd.Outcome{}
	}

	c.JSON(http.StatusOK, boardPointerResponse{
		Outcomes: outcomes,
		Board:    newGetBoardResponse(s),
	})
}

func (h *handlerImpl) mustBoard(c *gin.Context) (*board.Session, bool) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return nil, false
	}

	s, ok := h.boards.Get(userID, c.Param("id"))
	if !ok {
		abort(c, newNotFoundError(errBoardNotOpen.Error()))
		return nil, false
	}
	return s, true
}
