package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/dialogs"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/input"
	uiconfig "github.com/HaiFongPan/reconsole/internal/tui/config"
	"github.com/HaiFongPan/reconsole/internal/tui/theme"
)

var controlLabels = map[controls.ID]string{
	controls.ToolbarChoice:       "Toolbar",
	controls.GainChoice:          "Gain",
	controls.DistanceEntry:       "Distance",
	controls.AutoFocusButton:     "Auto focus",
	controls.StepSlider:          "Step",
	controls.AutoLightButton:     "Auto light",
	controls.WindowSlider:        "Window",
	controls.LevelSlider:         "Level",
	controls.ZoomSlider:          "Zoom",
	controls.AutoAllButton:       "Auto all",
	controls.VertFlipBox:         "Vertical flip",
	controls.HorFlipBox:          "Horizontal flip",
	controls.LogViewBox:          "Log view",
	controls.ProjectionViewBox:   "Projection view",
	controls.XEnhanceBox:         "X enhance",
	controls.YEnhanceBox:         "Y enhance",
	controls.AbsEnhanceBox:       "Absolute",
	controls.ResetEnhanceButton:  "Reset enhance",
	controls.EnhanceSlider:       "Enhance",
	controls.ScanVertBox:         "Vertical scan",
	controls.ResetScanVertButton: "Reset vertical",
	controls.ScanVertSlider:      "Vertical",
	controls.ScanHorBox:          "Horizontal scan",
	controls.ResetScanHorButton:  "Reset horizontal",
	controls.ScanHorSlider:       "Horizontal",
	controls.OutlierBox:          "Outliers",
	controls.ResetNoiseMaxButton: "Reset noise",
	controls.NoiseMaxSlider:      "Noise max",

	controls.NewItem:        "New",
	controls.OpenItem:       "Open...",
	controls.SaveItem:       "Save",
	controls.QuitItem:       "Quit",
	controls.ConfigureItem:  "Configure...",
	controls.ResolutionItem: "Resolution phantoms...",
	controls.ContrastItem:   "Contrast phantoms...",
	controls.RunTestItem:    "Run test",
	controls.TestGeoItem:    "Test geometry",
	controls.AutoGeoItem:    "Auto geometry",
	controls.AboutItem:      "About",
}

const sliderWidth = 16

// View implements the bubbletea.Model interface
func (m *Model) View() string {
	if modal, ok := m.c.Modal(); ok {
		return m.overlay(m.renderModal(modal))
	}
	if m.prompting {
		return m.overlay(m.renderPrompt())
	}
	if m.c.RunDialog().Visible() {
		return m.overlay(m.renderRunDialog())
	}
	if m.config != nil {
		return m.overlay(m.config.view(m.windowWidth-4, m.dkeys, m.dialogHelp))
	}
	if m.phantom != nil {
		return m.overlay(m.phantom.view(m.windowWidth-4, m.dkeys, m.dialogHelp))
	}
	if m.menuOpen {
		return m.overlay(m.renderMenu())
	}
	return m.renderMain()
}

func (m *Model) overlay(box string) string {
	return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) dialogHelp(k DialogKeys) string {
	return theme.CreateFooterStyle().Render(m.help.View(k))
}

func (m *Model) renderMain() string {
	path := m.c.Router().Path()
	if path == "" {
		path = "untitled"
	}
	header := theme.CreateHeaderStyle().Render("reconsole " + m.c.Version() + theme.HeaderSeparator + path)
	menuHint := theme.CreateSecondaryTextStyle().Render("  f10 menu · f2 help")

	panelWidth := max(int(float64(m.windowWidth)*uiconfig.ControlPanelWidthRatio), uiconfig.MinControlPanelWidth)
	left := theme.CreateUnifiedPanelStyle(panelWidth, m.renderer.Rows+2).Render(m.renderControls())
	right := lipgloss.NewStyle().MarginLeft(1).Render(m.renderNotebook())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	logBox := lipgloss.NewStyle().
		Border(theme.BorderStyleUnified).
		BorderForeground(lipgloss.Color(theme.ColorBrightBlack)).
		Render(m.log.View())

	footer := theme.CreateFooterStyle().Render(m.help.View(m.c.Input().Keys()))

	return lipgloss.JoinVertical(lipgloss.Left,
		header+menuHint,
		body,
		logBox,
		m.status.RenderMessage(),
		footer,
	)
}

// renderControls draws the toolbar choice, the gain choice and the chosen
// toolbar
func (m *Model) renderControls() string {
	p := m.c.Panel()
	focus := m.c.Input().Focus()

	var tabs []string
	for i, name := range controls.Toolbars {
		tabs = append(tabs, theme.CreateTabStyle(p.State(controls.ToolbarChoice).Selected == i).Render(name))
	}
	toolbar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if focus == controls.ToolbarChoice {
		toolbar = theme.CreateControlStyle(true, true).Render("›") + toolbar
	}

	lines := []string{toolbar, m.renderControl(controls.GainChoice, focus), ""}
	for _, id := range controls.IDs() {
		if controls.ToolbarOf(id) != p.Toolbar() {
			continue
		}
		lines = append(lines, m.renderControl(id, focus))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderControl(id, focus controls.ID) string {
	p := m.c.Panel()
	st := p.State(id)
	enabled := p.Enabled(id)
	style := theme.CreateControlStyle(id == focus, enabled)
	label := lipgloss.NewStyle().Width(16).Render(controlLabels[id])

	switch p.Binding(id).Kind {
	case controls.KindSlider:
		return label + style.Render(slider(st)) + " " + st.Text
	case controls.KindCheckbox:
		box := "[ ]"
		if st.Checked {
			box = "[x]"
		}
		return style.Render(box + " " + controlLabels[id])
	case controls.KindEntry:
		text := st.Text
		if st.Editing {
			text += "▏"
		}
		return label + style.Render("["+text+"]")
	case controls.KindChoice:
		return label + style.Render("< "+st.Text+" >")
	case controls.KindButton:
		return style.Render("< " + controlLabels[id] + " >")
	}
	return label
}

func slider(st controls.State) string {
	span := st.Max - st.Min
	knob := 0
	if span > 0 {
		knob = (st.Pos - st.Min) * (sliderWidth - 1) / span
	}
	var b strings.Builder
	for i := 0; i < sliderWidth; i++ {
		if i == knob {
			b.WriteString("●")
		} else {
			b.WriteString("─")
		}
	}
	return b.String()
}

// renderNotebook draws the page tabs and the latest preview
func (m *Model) renderNotebook() string {
	var tabs []string
	for _, pg := range engine.Pages {
		tabs = append(tabs, theme.CreateTabStyle(pg == m.c.Page()).Render(pg.String()))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.c.Input().Focus() == input.ImagePanel {
		header = theme.CreateControlStyle(true, true).Render("›") + header
	}

	frame := m.c.Frame()
	body := m.frames.Text(frame.Image)
	if body == "" {
		body = theme.CreateSecondaryTextStyle().Render("no preview")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m *Model) renderMenu() string {
	p := m.c.Panel()
	keys := m.c.Input().Keys()
	accel := map[controls.ID]string{
		controls.NewItem:       keys.New.Help().Key,
		controls.OpenItem:      keys.Open.Help().Key,
		controls.SaveItem:      keys.Save.Help().Key,
		controls.QuitItem:      keys.Quit.Help().Key,
		controls.ConfigureItem: keys.Configure.Help().Key,
		controls.RunTestItem:   keys.RunTest.Help().Key,
		controls.AboutItem:     keys.About.Help().Key,
	}

	var lines []string
	for i, id := range menuItems {
		row := lipgloss.NewStyle().Width(26).Render(controlLabels[id]) + accel[id]
		lines = append(lines, theme.CreateControlStyle(i == m.menuCursor, p.Enabled(id)).Render(row))
	}
	return theme.CreateDialogStyle(uiconfig.DialogDefaultWidth, "").
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderPrompt() string {
	title := "Open configuration"
	switch m.promptFor {
	case "save", promptConfigSave:
		title = "Save configuration"
	case promptConfigLoad:
		title = "Load into dialog"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.CreatePromptStyle().Render(title),
		"",
		m.prompt.View(),
		"",
		theme.CreateSecondaryTextStyle().Render("enter to confirm · esc to cancel"),
	)
	return theme.CreateDialogStyle(uiconfig.DialogDefaultWidth, theme.ColorBrightYellow).Render(content)
}

func (m *Model) renderRunDialog() string {
	run := m.c.RunDialog()
	status := run.Status()
	hint := "esc to cancel"
	if run.Cancelling() {
		hint = "waiting for the engine to stop"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.CreateProgressTextStyle().Render(theme.FormatProgressMessage(status, run.Progress())),
		"",
		m.gauge.ViewAs(run.Progress()),
		"",
		theme.CreateSecondaryTextStyle().Render(hint),
	)
	return theme.CreateProgressBarStyle().Render(content)
}

func (m *Model) renderModal(modal dialogs.Modal) string {
	color := theme.ColorBrightBlue
	hint := "enter to close"
	switch modal.Kind {
	case dialogs.ModalError:
		color = theme.ColorBrightRed
	case dialogs.ModalConfirm:
		color = theme.ColorBrightYellow
		hint = lipgloss.JoinHorizontal(lipgloss.Top,
			theme.CreateDialogButtonStyle(true).Render("y · yes"),
			theme.CreateDialogButtonStyle(false).Render("n · no"),
		)
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.CreateStatusIndicatorStyle(modal.Kind != dialogs.ModalError).Render(modal.Title),
		"",
		modal.Text,
		"",
		hint,
	)
	return theme.CreateModalStyle(uiconfig.DialogDefaultWidth, color).Render(content)
}
