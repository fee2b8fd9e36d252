package editable

import "github.com/pthm/editable/lib/dom"

// Events emitted by the engine. Action events are also emitted with the
// action name appended after a colon, e.g. "action-success:submit".
const (
	EventToggle        = "toggle"
	EventEditCancel    = "edit-cancel"
	EventSuccess       = "success"
	EventError         = "error"
	EventActionSuccess = "action-success"
	EventActionError   = "action-error"
	EventRowAdd        = "listing:row-add"
	EventRowRemove     = "listing:row-remove"
	EventRowSubmit     = "listing:row-submit"
)

// ErrorPayload is carried by action-error events.
type ErrorPayload struct {
	Reason string
	Info   string
	Data   Data
}

func errorPayload(f Failure) ErrorPayload {
	return ErrorPayload{Reason: f.Type(), Info: f.Info(), Data: f.Data()}
}

// ModeChange is carried by action-success:toggle.
type ModeChange struct {
	Mode Mode
}

// RowEvent is carried by the listing row events.
type RowEvent struct {
	ID   string
	Row  *dom.Node
	Data Data
}
