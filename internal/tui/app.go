// Package tui is the bubbletea front-end of the operator console. It owns
// no console state: every key goes to the console controller or to one of
// its dialogs, and every view is rendered from what the controller reports.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/console"
	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/dialogs"
	"github.com/HaiFongPan/reconsole/internal/router"
	uiconfig "github.com/HaiFongPan/reconsole/internal/tui/config"
	"github.com/HaiFongPan/reconsole/internal/tui/messaging"
	"github.com/HaiFongPan/reconsole/internal/tui/preview"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// postedMsg wraps a message a worker goroutine posted to the console
type postedMsg struct {
	msg any
}

// Prompt targets: router commands, or the configuration dialog's record
// load and save
const (
	promptConfigLoad = "configLoad"
	promptConfigSave = "configSave"
)

// menuItems are the menu bar entries in order
var menuItems = []controls.ID{
	controls.NewItem, controls.OpenItem, controls.SaveItem, controls.ConfigureItem,
	controls.ResolutionItem, controls.ContrastItem, controls.RunTestItem,
	controls.TestGeoItem, controls.AutoGeoItem, controls.AboutItem, controls.QuitItem,
}

// Model is the bubbletea model
type Model struct {
	c *console.Console

	keys  AppKeys
	dkeys DialogKeys
	help  help.Model

	gauge    progress.Model
	log      viewport.Model
	logLen   int
	status   messaging.StatusManager
	renderer *preview.Renderer
	frames   *preview.Cache

	menuOpen   bool
	menuCursor int

	prompting bool
	promptFor string
	prompt    textinput.Model

	config  *configForm
	phantom *phantomForm

	showHelp bool

	windowWidth  int
	windowHeight int
}

// New creates the front-end for c
func New(c *console.Console) *Model {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.Placeholder = "path/to/record.yaml"
	ti.CharLimit = 256
	ti.Width = uiconfig.DialogDefaultWidth - 6

	vp := viewport.New(80, uiconfig.DefaultLogHeight)

	r := preview.NewRenderer(preview.ProtocolText)
	return &Model{
		c:            c,
		keys:         DefaultAppKeys(),
		dkeys:        DefaultDialogKeys(),
		help:         h,
		gauge:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(uiconfig.ProgressBarWidth)),
		log:          vp,
		status:       messaging.NewStatusManager(),
		renderer:     r,
		frames:       preview.NewCache(r, preview.DefaultCacheEntries),
		prompt:       ti,
		windowWidth:  80,
		windowHeight: 24,
	}
}

// Console returns the controller behind the front-end
func (m *Model) Console() *console.Console { return m.c }

// Init implements the bubbletea.Model interface
func (m *Model) Init() tea.Cmd {
	m.c.Start()
	m.sync()
	return nil
}

// Update implements the bubbletea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case postedMsg:
		m.c.Handle(msg.msg)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.log, cmd = m.log.Update(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}

	m.sync()
	if m.c.Quit() {
		logrus.Info("tui: quit")
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) resize(w, h int) {
	m.windowWidth = w
	m.windowHeight = h
	m.log.Width = max(w-2, 10)
	m.help.Width = w

	panel := max(int(float64(w)*uiconfig.ControlPanelWidthRatio), uiconfig.MinControlPanelWidth)
	rows := h - uiconfig.DefaultLogHeight - 8
	m.renderer.SetCellSize(max(w-panel-4, 8), max(rows, 4))
}

// sync copies controller state the widgets keep themselves
func (m *Model) sync() {
	st := m.c.Status()
	m.status.Sync(st.Text, messaging.MessageType(st.Level), st.At)

	if n := m.c.Log().Len(); n != m.logLen {
		atBottom := m.log.AtBottom() || m.logLen == 0
		m.log.SetContent(strings.Join(m.c.Log().Lines(), "\n"))
		m.logLen = n
		if atBottom {
			m.log.GotoBottom()
		}
	}

	if d := m.c.ConfigDialog(); d == nil {
		m.config = nil
	} else if m.config == nil || m.config.d != d {
		model := m.c.Model()
		m.config = newConfigForm(d, model.Choices(values.FieldOrientation), model.Choices(values.FieldRotationEnabled))
	}

	if e := m.c.PhantomEditor(); e == nil {
		m.phantom = nil
	} else if m.phantom == nil || m.phantom.e != e {
		title := "Resolution phantoms"
		if e.Field() == values.FieldContrastPhantoms {
			title = "Contrast phantoms"
		}
		m.phantom = newPhantomForm(e, title)
	}
}

// handleKey routes a key to whatever is on top: a modal, the path prompt,
// the run dialog, an editing dialog, the menu, and finally the console
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if modal, ok := m.c.Modal(); ok {
		m.handleModal(modal, msg)
		return nil
	}
	if m.prompting {
		return m.handlePrompt(msg)
	}
	if m.c.Locked() {
		m.c.Key(msg)
		return nil
	}
	if m.config != nil {
		act, cmd := m.config.update(msg, m.dkeys)
		switch act {
		case actAccept:
			m.c.ConfigOK()
		case actCancel:
			m.c.ConfigCancel()
		case actLoad:
			return m.openPrompt(promptConfigLoad)
		case actSave:
			return m.openPrompt(promptConfigSave)
		}
		return cmd
	}
	if m.phantom != nil {
		act, cmd := m.phantom.update(msg, m.dkeys)
		switch act {
		case actAccept:
			m.c.PhantomOK()
		case actCancel:
			m.c.PhantomCancel()
		}
		return cmd
	}
	if m.menuOpen {
		return m.handleMenu(msg)
	}

	keys := m.c.Input().Keys()
	switch {
	case key.Matches(msg, m.keys.Menu):
		m.menuOpen = true
		m.menuCursor = 0
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil
	case key.Matches(msg, m.keys.LogUp), key.Matches(msg, m.keys.LogDown):
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return cmd
	case key.Matches(msg, keys.Open):
		return m.openPrompt(router.CmdOpen)
	case key.Matches(msg, keys.Save) && m.c.Router().Path() == "":
		return m.openPrompt(router.CmdSave)
	}

	m.c.Key(msg)
	return nil
}

func (m *Model) handleModal(modal dialogs.Modal, msg tea.KeyMsg) {
	switch msg.String() {
	case "enter", "y":
		if modal.Kind == dialogs.ModalConfirm {
			m.c.AcceptModal()
			return
		}
		m.c.DismissModal()
	case "esc", "n", "q":
		m.c.DismissModal()
	case "ctrl+c":
		// a second interrupt while asked to confirm counts as yes
		if modal.Kind == dialogs.ModalConfirm && modal.Command == router.CmdQuit {
			m.c.AcceptModal()
		}
	}
}

func (m *Model) openPrompt(target string) tea.Cmd {
	if target == router.CmdOpen || target == router.CmdSave {
		if err := m.c.Router().Allowed(target); err != nil {
			// the console reports the refusal
			m.c.Command(target, "")
			return nil
		}
	}
	m.prompting = true
	m.promptFor = target
	m.prompt.SetValue(m.c.Router().Path())
	m.prompt.CursorEnd()
	return m.prompt.Focus()
}

func (m *Model) handlePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.dkeys.Cancel):
		m.prompting = false
		m.prompt.Blur()
		return nil
	case key.Matches(msg, m.dkeys.Edit):
		m.prompting = false
		m.prompt.Blur()
		path := strings.TrimSpace(m.prompt.Value())
		switch m.promptFor {
		case promptConfigLoad:
			m.c.ConfigLoad(path)
		case promptConfigSave:
			m.c.ConfigSave(path)
		default:
			if path == "" {
				return nil
			}
			m.c.Command(m.promptFor, path)
		}
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) handleMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.dkeys.Cancel), key.Matches(msg, m.keys.Menu):
		m.menuOpen = false
	case key.Matches(msg, m.dkeys.Up):
		m.menuCursor = (m.menuCursor + len(menuItems) - 1) % len(menuItems)
	case key.Matches(msg, m.dkeys.Down):
		m.menuCursor = (m.menuCursor + 1) % len(menuItems)
	case key.Matches(msg, m.dkeys.Edit):
		m.menuOpen = false
		id := menuItems[m.menuCursor]
		switch id {
		case controls.OpenItem:
			return m.openPrompt(router.CmdOpen)
		case controls.SaveItem:
			if m.c.Router().Path() == "" {
				return m.openPrompt(router.CmdSave)
			}
		}
		m.c.Click(id)
	}
	return nil
}

// Run wires the console to a bubbletea program and blocks until it quits.
// build receives the Post function the console hands to its workers.
func Run(ctx context.Context, build func(post func(any)) (*console.Console, error), opts ...tea.ProgramOption) error {
	var p *tea.Program
	ready := make(chan struct{})
	post := func(msg any) {
		<-ready
		p.Send(postedMsg{msg: msg})
	}

	c, err := build(post)
	if err != nil {
		return err
	}

	opts = append(opts, tea.WithContext(ctx))
	p = tea.NewProgram(New(c), opts...)
	close(ready)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
