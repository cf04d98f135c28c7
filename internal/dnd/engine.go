// Package dnd turns raw pointer input into drag lifecycle outcomes.
//
// A press becomes a drag only after the pointer has travelled the activation
// distance from the press point. Otherwise the release is reported as a
// click. Click and drag are mutually exclusive for one gesture.
package dnd

import "fmt"

// DefaultActivationDistance is the travel, in logical pixels, that turns a
// press into a drag.
const DefaultActivationDistance = 8

type PointerKind string

const (
	PointerDown   PointerKind = "down"
	PointerMove   PointerKind = "move"
	PointerUp     PointerKind = "up"
	PointerCancel PointerKind = "cancel"
)

type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	// TaskID is the card under the pointer. Only read on PointerDown.
	TaskID string `json:"task_id,omitempty"`
	Point  Point  `json:"point"`
}

type OutcomeKind string

const (
	OutcomeClick     OutcomeKind = "click"
	OutcomeDragStart OutcomeKind = "drag_start"
	OutcomeDragEnd   OutcomeKind = "drag_end"
)

type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	TaskID string      `json:"task_id"`
	// ZoneID is set on OutcomeDragEnd when the release was over a zone.
	// Empty means the drag was cancelled.
	ZoneID string `json:"zone_id,omitempty"`
}

type gesture struct {
	taskID   string
	origin   Point
	dragging bool
}

// Engine is driven by a single pointer and is not safe for concurrent use.
type Engine struct {
	activationDistance float64
	zones              []Zone
	current            *gesture
}

func NewEngine(activationDistance float64) *Engine {
	if activationDistance < 0 {
		activationDistance = DefaultActivationDistance
	}
	return &Engine{activationDistance: activationDistance}
}

func (e *Engine) ActivationDistance() float64 {
	return e.activationDistance
}

// SetZones replaces the registered drop zones.
func (e *Engine) SetZones(zones []Zone) error {
	seen := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		if z.ID == "" {
			return fmt.Errorf("zone id is required")
		}
		if _, ok := seen[z.ID]; ok {
			return fmt.Errorf("duplicate zone id %q", z.ID)
		}
		seen[z.ID] = struct{}{}
	}
	e.zones = append([]Zone(nil), zones...)
	return nil
}

func (e *Engine) Zones() []Zone {
	return append([]Zone(nil), e.zones...)
}

// Dragging reports the task being dragged, if any.
func (e *Engine) Dragging() (string, bool) {
	if e.current == nil || !e.current.dragging {
		return "", false
	}
	return e.current.taskID, true
}

// Handle feeds one pointer event and returns the outcomes it produced, in
// order. Most events produce none.
func (e *Engine) Handle(ev PointerEvent) []Outcome {
	switch ev.Kind {
	case PointerDown:
		return e.down(ev)
	case PointerMove:
		return e.move(ev.Point)
	case PointerUp:
		return e.up(ev.Point)
	case PointerCancel:
		return e.cancel()
	default:
		return nil
	}
}

func (e *Engine) down(ev PointerEvent) []Outcome {
	var out []Outcome
	if e.current != nil && e.current.dragging {
		out = e.cancel()
	}
	e.current = nil
	// A press without a card under it starts nothing.
	if ev.TaskID == "" {
		return out
	}
	e.current = &gesture{taskID: ev.TaskID, origin: ev.Point}
	return out
}

func (e *Engine) move(p Point) []Outcome {
	g := e.current
	if g == nil || g.dragging {
		return nil
	}
	if g.origin.DistanceTo(p) < e.activationDistance {
		return nil
	}
	g.dragging = true
	return []Outcome{{Kind: OutcomeDragStart, TaskID: g.taskID}}
}

func (e *Engine) up(p Point) []Outcome {
	g := e.current
	if g == nil {
		return nil
	}

	// The release itself may carry the pointer past the threshold.
	out := e.move(p)
	e.current = nil
	if !g.dragging {
		return []Outcome{{Kind: OutcomeClick, TaskID: g.taskID}}
	}

	end := Outcome{Kind: OutcomeDragEnd, TaskID: g.taskID}
	if z, ok := ClosestCenter(e.zones, p); ok {
		end.ZoneID = z.ID
	}
	return append(out, end)
}

func (e *Engine) cancel() []Outcome {
	g := e.current
	e.current = nil
	if g == nil || !g.dragging {
		return nil
	}
	return []Outcome{{Kind: OutcomeDragEnd, TaskID: g.taskID}}
}
