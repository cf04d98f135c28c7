package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/dnd"
	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

// Session pairs a board controller with the pointer engine driving it.
type Session struct {
	*Controller

	engineMu sync.Mutex
	engine   *dnd.Engine
}

func newSession(c *Controller, activationDistance float64) *Session {
	return &Session{
		Controller: c,
		engine:     dnd.NewEngine(activationDistance),
	}
}

// SetZones registers the column layout. Every zone id must be a status.
func (s *Session) SetZones(zones []dnd.Zone) error {
	for _, z := range zones {
		if !models.TaskStatus(z.ID).Valid() {
			return services.ErrInvalidTaskStatus
		}
	}

	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	err := s.engine.SetZones(zones)
	if err != nil {
		return fmt.Errorf("%w: %w", services.ErrValidation, err)
	}
	return nil
}

func (s *Session) Zones() []dnd.Zone {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine.Zones()
}

// HandlePointer runs a raw pointer event through the engine and dispatches
// whatever drag or click it completes.
func (s *Session) HandlePointer(ctx context.Context, ev dnd.PointerEvent) ([]dnd.Outcome, error) {
	s.engineMu.Lock()
	outcomes := s.engine.Handle(ev)
	s.engineMu.Unlock()

	for _, o := range outcomes {
		err := s.Dispatch(ctx, eventFor(o))
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func eventFor(o dnd.Outcome) Event {
	switch o.Kind {
	case dnd.OutcomeClick:
		return CardClicked{TaskID: o.TaskID}
	case dnd.OutcomeDragStart:
		return DragStarted{TaskID: o.TaskID}
	default:
		return DragEnded{TaskID: o.TaskID, ZoneID: o.ZoneID}
	}
}

type HubOptions struct {
	Options
	ActivationDistance float64
}

type sessionKey struct {
	userID    string
	projectID string
}

// Hub keeps one board session per user and project.
type Hub struct {
	logger zerolog.Logger
	store  Store
	opts   HubOptions

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewHub(logger zerolog.Logger, store Store, opts HubOptions) *Hub {
	return &Hub{
		logger:   logger,
		store:    store,
		opts:     opts,
		sessions: make(map[sessionKey]*Session),
	}
}

// Open returns the user's session for the project, creating it if needed,
// and seeds it with tasks.
func (h *Hub) Open(userID, projectID string, tasks []*models.Task) *Session {
	key := sessionKey{userID: userID, projectID: projectID}

	h.mu.Lock()
	s, ok := h.sessions[key]
	if !ok {
		c := NewController(h.logger, h.store, userID, projectID, h.opts.Options)
		s = newSession(c, h.opts.ActivationDistance)
		h.sessions[key] = s
	}
	h.mu.Unlock()

	s.LoadInitial(tasks)
	h.logger.Info().
		Str("user_id", userID).
		Str("project_id", projectID).
		Bool("reopened", ok).
		Msg("opened board session")
	return s
}

func (h *Hub) Get(userID, projectID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionKey{userID: userID, projectID: projectID}]
	return s, ok
}

// Close drops the session once its remote updates have resolved.
func (h *Hub) Close(userID, projectID string) bool {
	key := sessionKey{userID: userID, projectID: projectID}

	h.mu.Lock()
	s, ok := h.sessions[key]
	delete(h.sessions, key)
	h.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	s.Wait()
	h.logger.Info().
		Str("user_id", userID).
		Str("project_id", projectID).
		Msg("closed board session")
	return true
}

// CloseUser drops every session of the user.
func (h *Hub) CloseUser(userID string) {
	h.mu.Lock()
	var closing []*Session
	for key, s := range h.sessions {
		if key.userID == userID {
			closing = append(closing, s)
			delete(h.sessions, key)
		}
	}
	h.mu.Unlock()

	for _, s := range closing {
		s.close()
		s.Wait()
	}
}

// Shutdown closes every session and waits for their remote updates.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for key, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, key)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
		s.Wait()
	}
	h.logger.Info().
		Int("sessions", len(sessions)).
		Msg("board sessions drained")
}
