package board

import (
	"context"
	"fmt"

	"github.com/adanyl0v/swifttrack/internal/models"
)

// Event is a user intent coming from the presentation layer.
type Event interface {
	event()
}

type DragStarted struct {
	TaskID string
}

// DragEnded carries the drop zone under the pointer on release. An empty
// ZoneID means the card was released outside every zone.
type DragEnded struct {
	TaskID string
	ZoneID string
}

type CardClicked struct {
	TaskID string
}

type DraftChanged struct {
	Title       string
	Description string
}

type EditSubmitted struct {
	TaskID      string
	Title       string
	Description string
}

type EditCancelled struct{}

type TaskAdded struct {
	Title       string
	Description string
}

type ErrorDismissed struct{}

func (DragStarted) event()    {}
func (DragEnded) event()      {}
func (CardClicked) event()    {}
func (DraftChanged) event()   {}
func (EditSubmitted) event()  {}
func (EditCancelled) event()  {}
func (TaskAdded) event()      {}
func (ErrorDismissed) event() {}

// Dispatch applies one event. It is the only mutation path the
// presentation layer needs.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case DragStarted:
		c.BeginDrag(ev.TaskID)
	case DragEnded:
		if ev.ZoneID == "" {
			c.CancelDrag()
			return nil
		}
		return c.CompleteDrag(ctx, ev.TaskID, models.TaskStatus(ev.ZoneID))
	case CardClicked:
		c.SelectTask(ev.TaskID)
	case DraftChanged:
		c.UpdateDraft(ev.Title, ev.Description)
	case EditSubmitted:
		return c.ApplyEdit(ctx, ev.TaskID, ev.Title, ev.Description)
	case EditCancelled:
		c.Deselect()
	case TaskAdded:
		_, err := c.AddTask(ctx, ev.Title, ev.Description)
		return err
	case ErrorDismissed:
		c.DismissError()
	default:
		return fmt.Errorf("unknown board event %T", ev)
	}
	return nil
}
