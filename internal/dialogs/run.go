package dialogs

import (
	"errors"

	"github.com/HaiFongPan/reconsole/internal/session"
)

// ErrNotClosable is returned when the operator tries to close the run dialog
var ErrNotClosable = errors.New("the run dialog closes when the run ends")

// RunDialog mirrors the session while a run is active: it shows on top,
// carries the determinate gauge and closes itself on completion.
type RunDialog struct {
	visible    bool
	progress   float64
	cancelling bool
	status     string
}

// NewRunDialog follows sess
func NewRunDialog(sess *session.Session) *RunDialog {
	d := &RunDialog{}
	sess.OnChange(d.follow)
	d.follow(sess)
	return d
}

func (d *RunDialog) follow(s *session.Session) {
	if s.Running() {
		d.visible = true
		d.progress = s.Progress()
		d.cancelling = s.CancelRequested()
		if d.cancelling {
			d.status = "cancelling"
		} else {
			d.status = "running"
		}
		return
	}
	d.visible = false
	d.cancelling = false
	if s.Runs() > 0 {
		o, _ := s.Last()
		d.status = o.String()
	}
	d.progress = s.Progress()
}

// Visible reports whether the dialog is showing
func (d *RunDialog) Visible() bool { return d.visible }

// OnTop reports whether the dialog must stay above the main window
func (d *RunDialog) OnTop() bool { return d.visible }

// Progress is the gauge value in [0, 1]
func (d *RunDialog) Progress() float64 { return d.progress }

// Cancelling reports whether cancellation was requested
func (d *RunDialog) Cancelling() bool { return d.cancelling }

// Status is "running", "cancelling" or the last outcome
func (d *RunDialog) Status() string { return d.status }

// Close is the window close button. It is refused while visible.
func (d *RunDialog) Close() error {
	if d.visible {
		return ErrNotClosable
	}
	return nil
}
