// Package console is the controller of the operator console. It owns the
// value model and everything that hangs off it, and it runs on the UI
// thread: the front-end feeds it input events and the messages that engine
// goroutines post back.
package console

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/dialogs"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/input"
	"github.com/HaiFongPan/reconsole/internal/router"
	"github.com/HaiFongPan/reconsole/internal/session"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// Options configure a console
type Options struct {
	Limits       values.Limits
	Capabilities controls.Capabilities
	LogLines     int
	Version      string
	// Path is the configuration record opened at startup, if any
	Path string
	// Remember is told about every path opened or saved
	Remember func(path string)
}

// Deps are the collaborators
type Deps struct {
	Engine   engine.Engine
	Hardware engine.Hardware
	Store    engine.ConfigStore
	// Post marshals a message onto the UI thread. It is called from worker
	// goroutines only.
	Post func(msg any)
}

// FrameMsg carries a rendered preview
type FrameMsg struct {
	Seq   uint64
	Frame engine.Frame
	Err   error
}

// Console ties the value model, the controls, the session, the router and
// the dialogs together
type Console struct {
	ctx  context.Context
	opts Options
	deps Deps

	model  *values.Model
	panel  *controls.Panel
	sess   *session.Session
	router *router.Router
	input  *input.Dispatcher

	run      *dialogs.RunDialog
	config   *dialogs.ConfigDialog
	phantoms *dialogs.PhantomEditor
	modals   dialogs.Modals

	status Status
	log    *Log

	page      engine.Page
	frame     engine.Frame
	frameSeq  uint64
	shownSeq  uint64
	refreshes int

	quit bool
}

// New builds a console. ctx bounds every collaborator call.
func New(ctx context.Context, opts Options, deps Deps) (*Console, error) {
	if deps.Engine == nil || deps.Hardware == nil || deps.Store == nil || deps.Post == nil {
		return nil, errors.New("console: engine, hardware, store and post are required")
	}
	m, err := values.New(opts.Limits)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	c := &Console{
		ctx:   ctx,
		opts:  opts,
		deps:  deps,
		model: m,
		panel: controls.NewPanel(m, opts.Capabilities),
		sess:  session.New(),
		log:   NewLog(opts.LogLines),
	}
	c.router = router.New(router.Deps{
		Model:    m,
		Session:  c.sess,
		Engine:   deps.Engine,
		Hardware: deps.Hardware,
		Store:    deps.Store,
		Post:     deps.Post,
	})
	c.router.SetPath(opts.Path)
	c.router.Handle(router.CmdConfigure, router.Idle, c.openConfig)
	c.router.Handle(router.CmdResolution, router.Idle, c.openPhantoms(values.FieldResolutionPhantoms))
	c.router.Handle(router.CmdContrast, router.Idle, c.openPhantoms(values.FieldContrastPhantoms))
	c.router.Handle(router.CmdAbout, router.Always, c.about)

	c.input = input.NewDispatcher(input.DefaultKeyMap(), c)
	c.run = dialogs.NewRunDialog(c.sess)

	c.sess.OnChange(func(s *session.Session) { c.panel.SetRunning(s.Running()) })
	c.panel.OnEnableChange(func(controls.EnableSet) { c.input.Revalidate() })
	m.SubscribeAll(func(ch values.Change) {
		if viewField(ch.Field) {
			c.refresh()
		}
	})

	logrus.Infof("console: ready, %d fields, store path %q", len(values.Fields()), opts.Path)
	return c, nil
}

// viewField reports whether a change to f alters the preview
func viewField(f values.Field) bool {
	switch {
	case f == values.FieldDistance, f == values.FieldStep:
		return false
	case f == values.FieldProjectionAngles:
		// the projection page is taken at the first row's angle
		return true
	case slices.Contains(values.ScanFields, f):
		return false
	}
	return true
}

// Start renders the first preview and opens the startup configuration
func (c *Console) Start() {
	c.refresh()
	if c.opts.Path != "" {
		c.Command(router.CmdOpen, c.opts.Path)
	}
}

// Model returns the value model
func (c *Console) Model() *values.Model { return c.model }

// Panel returns the control panel
func (c *Console) Panel() *controls.Panel { return c.panel }

// Session returns the session state machine
func (c *Console) Session() *session.Session { return c.sess }

// Router returns the command router
func (c *Console) Router() *router.Router { return c.router }

// Input returns the key dispatcher
func (c *Console) Input() *input.Dispatcher { return c.input }

// RunDialog returns the run-progress dialog
func (c *Console) RunDialog() *dialogs.RunDialog { return c.run }

// ConfigDialog returns the open configuration dialog, or nil
func (c *Console) ConfigDialog() *dialogs.ConfigDialog {
	if c.config != nil && !c.config.Open() {
		c.config = nil
	}
	return c.config
}

// PhantomEditor returns the open phantom editor, or nil
func (c *Console) PhantomEditor() *dialogs.PhantomEditor {
	if c.phantoms != nil && !c.phantoms.Open() {
		c.phantoms = nil
	}
	return c.phantoms
}

// Modal returns the focused modal notification
func (c *Console) Modal() (dialogs.Modal, bool) { return c.modals.Top() }

// Status returns the status bar message
func (c *Console) Status() Status { return c.status }

// Log returns the log area
func (c *Console) Log() *Log { return c.log }

// Page returns the active notebook page
func (c *Console) Page() engine.Page { return c.page }

// Frame returns the latest preview
func (c *Console) Frame() engine.Frame { return c.frame }

// Refreshes counts preview refreshes requested from the engine
func (c *Console) Refreshes() int { return c.refreshes }

// Quit reports whether the console has shut down
func (c *Console) Quit() bool { return c.quit }

// Version is the console version string
func (c *Console) Version() string { return c.opts.Version }

// notify sets the status bar and appends to the log area
func (c *Console) notify(level router.Level, text string) {
	c.status = Status{Level: level, Text: text, At: c.log.now()}
	c.log.Add(level, text)
}

// fail surfaces an error as a modal notification
func (c *Console) fail(title string, err error) {
	c.notify(router.Error, fmt.Sprintf("%s: %v", title, err))
	c.modals.Push(dialogs.Modal{Kind: dialogs.ModalError, Title: title, Text: err.Error()})
}

func (c *Console) refresh() {
	c.frameSeq++
	c.refreshes++
	seq := c.frameSeq
	snap := c.model.Snapshot()
	page := c.page
	eng, post, ctx := c.deps.Engine, c.deps.Post, c.ctx
	go func() {
		f, err := eng.Refresh(ctx, snap, page)
		post(FrameMsg{Seq: seq, Frame: f, Err: err})
	}()
}

// SetPage switches the notebook page and refreshes it
func (c *Console) SetPage(p engine.Page) {
	if p == c.page {
		return
	}
	c.page = p
	c.refresh()
}

// Handle applies a message posted by a worker goroutine
func (c *Console) Handle(msg any) {
	switch m := msg.(type) {
	case FrameMsg:
		if m.Seq < c.shownSeq {
			return
		}
		c.shownSeq = m.Seq
		if m.Err != nil {
			if !errors.Is(m.Err, context.Canceled) {
				c.notify(router.Warning, fmt.Sprintf("preview: %v", m.Err))
			}
			return
		}
		c.frame = m.Frame
		return

	case router.QuitMsg:
		c.quit = true
		c.log.Add(router.Info, "shutting down")
		return

	case dialogs.LoadedMsg:
		if err := m.Dialog.ApplyLoaded(m); err != nil {
			c.fail("Load configuration", err)
			return
		}
		if m.Dialog == c.config && m.Err == nil && c.config.Open() {
			c.notify(router.Info, "loaded "+m.Path+" into the configuration dialog")
		}
		return

	case dialogs.SavedMsg:
		if m.Err != nil {
			c.fail("Save configuration", m.Err)
			return
		}
		c.remember(m.Path)
		c.notify(router.Success, "saved "+m.Path)
		return
	}

	n, ok := c.router.Apply(msg)
	if !ok {
		logrus.Debugf("console: dropped %T", msg)
		return
	}
	switch mm := msg.(type) {
	case router.LoadedMsg:
		if mm.Err == nil && n.Err == nil {
			c.remember(mm.Path)
		}
	case router.SavedMsg:
		if mm.Err == nil {
			c.remember(mm.Path)
		}
	case router.RunDoneMsg:
		if !n.Empty() && n.Level == router.Error {
			// engine failures go to the status bar and the log, not a modal
			c.notify(n.Level, n.Text)
			return
		}
	}
	if n.Empty() {
		return
	}
	if n.Err != nil {
		c.fail(n.Text, n.Err)
		return
	}
	c.notify(n.Level, n.Text)
}

func (c *Console) remember(path string) {
	if c.opts.Remember != nil && path != "" {
		c.opts.Remember(path)
	}
}

// Command dispatches a router command and surfaces refusals. The returned
// error has already been reported.
func (c *Console) Command(name, arg string) error {
	err := c.router.Dispatch(c.ctx, name, arg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, router.ErrConfirmQuit):
		c.modals.Push(dialogs.Modal{
			Kind:    dialogs.ModalConfirm,
			Title:   "Quit",
			Text:    "A reconstruction is running. Cancel it and quit?",
			Command: router.CmdQuit,
			Arg:     router.ForceQuit,
		})
	default:
		c.fail(commandTitle(name), err)
	}
	return commandError{err}
}

func commandTitle(name string) string {
	if name == "" {
		return "Command"
	}
	return "Command " + name
}

// AcceptModal confirms the focused modal
func (c *Console) AcceptModal() {
	m, ok := c.modals.Pop()
	if !ok || m.Kind != dialogs.ModalConfirm {
		return
	}
	c.Command(m.Command, m.Arg)
}

// DismissModal closes the focused modal without acting on it
func (c *Console) DismissModal() {
	c.modals.Pop()
}

// CancelRun is the run dialog's cancel button
func (c *Console) CancelRun() error {
	return c.Command(router.CmdCancelRun, "")
}

// CloseRunDialog is the run dialog's close box
func (c *Console) CloseRunDialog() error {
	return c.run.Close()
}
