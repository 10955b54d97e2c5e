// Package router maps named console commands to intents on the engine,
// the bench hardware and the configuration store.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/session"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// Command names. Buttons and menu items carry these as their command string.
const (
	CmdNew           = "new"
	CmdOpen          = "open"
	CmdSave          = "save"
	CmdQuit          = "quit"
	CmdConfigure     = "configure"
	CmdResolution    = "resolutionPhantoms"
	CmdContrast      = "contrastPhantoms"
	CmdRunTest       = "runTest"
	CmdCancelRun     = "cancelRun"
	CmdTestGeo       = "testGeo"
	CmdAutoGeo       = "autoGeo"
	CmdAutoFocus     = "autoFocus"
	CmdAutoLight     = "autoLight"
	CmdAutoAll       = "autoAll"
	CmdResetEnhance  = "resetEnhance"
	CmdResetScanVert = "resetScanVert"
	CmdResetScanHor  = "resetScanHor"
	CmdResetNoiseMax = "resetNoiseMax"
	CmdAbout         = "about"
)

// ForceQuit is the argument that confirms Quit while a run is active
const ForceQuit = "force"

var (
	// ErrNotAllowed is returned when a command's guard refuses it
	ErrNotAllowed = errors.New("command not allowed")
	// ErrUnknownCommand is returned for names nobody registered
	ErrUnknownCommand = errors.New("unknown command")
	// ErrConfirmQuit is returned by CmdQuit while running; dispatch it again
	// with ForceQuit to cancel the run and exit once it has stopped
	ErrConfirmQuit = errors.New("a run is active, confirm to quit")
)

// Guard decides when a command may be dispatched
type Guard int

const (
	Always Guard = iota
	Idle
	WhileRunning
)

func (g Guard) String() string {
	switch g {
	case Idle:
		return "idle"
	case WhileRunning:
		return "running"
	}
	return "always"
}

// Handler performs a command on the UI thread. It must not block: long work
// goes to a goroutine that posts its result.
type Handler func(ctx context.Context, arg string) error

// Poster marshals a message onto the UI thread
type Poster func(msg any)

type command struct {
	guard Guard
	do    Handler
}

// Deps are the collaborators the router drives
type Deps struct {
	Model    *values.Model
	Session  *session.Session
	Engine   engine.Engine
	Hardware engine.Hardware
	Store    engine.ConfigStore
	Post     Poster
}

// Router dispatches named commands. Like the model it belongs to the UI
// thread.
type Router struct {
	Deps

	cmds      map[string]command
	runCancel context.CancelFunc
	quitting  bool
	path      string
}

// New creates a router with the built-in commands registered. Configure,
// the phantom editors and About belong to the front-end, which registers
// them with Handle.
func New(d Deps) *Router {
	r := &Router{Deps: d, cmds: make(map[string]command)}

	r.Handle(CmdNew, Idle, r.newSession)
	r.Handle(CmdOpen, Idle, r.open)
	r.Handle(CmdSave, Idle, r.save)
	r.Handle(CmdQuit, Always, r.quit)
	r.Handle(CmdRunTest, Idle, r.runTest)
	r.Handle(CmdCancelRun, WhileRunning, r.cancelRun)
	r.Handle(CmdTestGeo, Idle, r.testGeo)
	r.Handle(CmdAutoGeo, Idle, r.autoGeo)
	r.Handle(CmdAutoFocus, Idle, r.autoFocus)
	r.Handle(CmdAutoLight, Idle, r.autoLight)
	r.Handle(CmdAutoAll, Idle, r.autoAll)
	r.Handle(CmdResetEnhance, Always, r.reset(values.FieldEnhanceRatio))
	r.Handle(CmdResetScanVert, Always, r.reset(values.FieldScanVert))
	r.Handle(CmdResetScanHor, Always, r.reset(values.FieldScanHor))
	r.Handle(CmdResetNoiseMax, Always, r.reset(values.FieldNoiseMax))
	return r
}

// Handle registers or replaces a command
func (r *Router) Handle(name string, g Guard, h Handler) {
	r.cmds[name] = command{guard: g, do: h}
}

// Names lists registered commands, sorted
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Path is the configuration record path used by Save and the default for Open
func (r *Router) Path() string { return r.path }

// SetPath sets the configuration record path
func (r *Router) SetPath(p string) { r.path = p }

// Quitting reports whether a forced quit is waiting for the run to stop
func (r *Router) Quitting() bool { return r.quitting }

// Allowed reports whether name may be dispatched now
func (r *Router) Allowed(name string) error {
	c, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
	return r.check(name, c.guard)
}

func (r *Router) check(name string, g Guard) error {
	running := r.Session.Running()
	switch {
	case g == Idle && running:
		return fmt.Errorf("%s while %s: %w: %w", name, r.Session.State(), ErrNotAllowed, session.ErrSessionBusy)
	case g == WhileRunning && !running:
		return fmt.Errorf("%s while %s: %w", name, r.Session.State(), ErrNotAllowed)
	}
	return nil
}

// Dispatch runs the named command after checking its guard
func (r *Router) Dispatch(ctx context.Context, name, arg string) error {
	c, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
	if err := r.check(name, c.guard); err != nil {
		logrus.Debugf("router: %v", err)
		return err
	}
	logrus.Debugf("router: dispatch %s %q", name, arg)
	return c.do(ctx, arg)
}

// post runs fn on a goroutine and posts its message
func (r *Router) post(fn func() any) {
	go func() {
		r.Post(fn())
	}()
}

func (r *Router) newSession(ctx context.Context, _ string) error {
	if err := r.Session.Reset(); err != nil {
		return err
	}
	r.Model.ResetAll()
	r.path = ""
	logrus.Info("router: new session")
	return nil
}

func (r *Router) reset(f values.Field) Handler {
	return func(ctx context.Context, _ string) error {
		r.Model.Reset(f)
		return nil
	}
}

func (r *Router) quit(ctx context.Context, arg string) error {
	if !r.Session.Running() {
		r.post(func() any { return QuitMsg{} })
		return nil
	}
	if arg != ForceQuit {
		return ErrConfirmQuit
	}
	r.quitting = true
	return r.cancelRun(ctx, "")
}
