package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/router"
)

type call struct {
	kind  string
	id    controls.ID
	name  string
	dx    int
	dy    int
	delta int
	up    bool
}

// fakeHost 记录调度器的调用
type fakeHost struct {
	disabled map[controls.ID]bool
	hidden   map[controls.ID]bool
	locked   bool
	calls    []call
}

func newHost() *fakeHost {
	return &fakeHost{disabled: map[controls.ID]bool{}, hidden: map[controls.ID]bool{}}
}

func (h *fakeHost) Enabled(id controls.ID) bool { return !h.disabled[id] }
func (h *fakeHost) Visible(id controls.ID) bool { return !h.hidden[id] }
func (h *fakeHost) IsSlider(id controls.ID) bool {
	return controls.DefaultBindings()[id].Kind == controls.KindSlider
}
func (h *fakeHost) Command(name, arg string) error {
	h.calls = append(h.calls, call{kind: "command", name: name})
	return nil
}
func (h *fakeHost) Pan(dx, dy int) { h.calls = append(h.calls, call{kind: "pan", dx: dx, dy: dy}) }
func (h *fakeHost) Step(id controls.ID, delta int) error {
	h.calls = append(h.calls, call{kind: "step", id: id, delta: delta})
	return nil
}
func (h *fakeHost) Forward(id controls.ID, msg tea.KeyMsg, up bool) error {
	h.calls = append(h.calls, call{kind: "forward", id: id, name: msg.String(), up: up})
	return nil
}
func (h *fakeHost) Focused(from, to controls.ID) {
	h.calls = append(h.calls, call{kind: "focus", id: to})
}
func (h *fakeHost) NextPage()    { h.calls = append(h.calls, call{kind: "page"}) }
func (h *fakeHost) Locked() bool { return h.locked }

func (h *fakeHost) last() call {
	if len(h.calls) == 0 {
		return call{}
	}
	return h.calls[len(h.calls)-1]
}

func keyOf(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// TestAccelerators 测试加速键映射到命令
func TestAccelerators(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{keyOf(tea.KeyCtrlN), router.CmdNew},
		{keyOf(tea.KeyCtrlO), router.CmdOpen},
		{keyOf(tea.KeyCtrlS), router.CmdSave},
		{keyOf(tea.KeyCtrlQ), router.CmdQuit},
		{keyOf(tea.KeyCtrlC), router.CmdQuit},
		{keyOf(tea.KeyCtrlE), router.CmdConfigure},
		{keyOf(tea.KeyCtrlR), router.CmdRunTest},
		{keyOf(tea.KeyF1), router.CmdAbout},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := newHost()
			d := NewDispatcher(DefaultKeyMap(), h)
			require.NoError(t, d.KeyDown(tt.key))
			assert.Equal(t, call{kind: "command", name: tt.want}, h.last())
			assert.True(t, d.Bound(tt.key))
		})
	}
}

// TestFallthrough 测试未绑定的按键转发给焦点控件，按键抬起同样如此
func TestFallthrough(t *testing.T) {
	h := newHost()
	d := NewDispatcher(DefaultKeyMap(), h)
	require.True(t, d.SetFocus(controls.DistanceEntry))

	require.NoError(t, d.KeyDown(runes("7")))
	assert.Equal(t, call{kind: "forward", id: controls.DistanceEntry, name: "7"}, h.last())

	require.NoError(t, d.KeyUp(runes("7")))
	assert.Equal(t, call{kind: "forward", id: controls.DistanceEntry, name: "7", up: true}, h.last())

	n := len(h.calls)
	require.NoError(t, d.KeyUp(keyOf(tea.KeyCtrlN)))
	assert.Len(t, h.calls, n, "accelerator releases are swallowed")

	require.NoError(t, d.KeyDown(keyOf(tea.KeyEsc)))
	assert.Equal(t, "forward", h.last().kind, "esc goes to the control when no run is active")
}

// TestArrows 测试方向键：图像面板平移，滑块步进，其他控件转发
func TestArrows(t *testing.T) {
	h := newHost()
	d := NewDispatcher(DefaultKeyMap(), h)
	assert.Equal(t, ImagePanel, d.Focus())

	require.NoError(t, d.KeyDown(keyOf(tea.KeyLeft)))
	assert.Equal(t, call{kind: "pan", dx: -PanStep}, h.last())
	require.NoError(t, d.KeyDown(keyOf(tea.KeyDown)))
	assert.Equal(t, call{kind: "pan", dy: PanStep}, h.last())

	require.True(t, d.SetFocus(controls.WindowSlider))
	require.NoError(t, d.KeyDown(keyOf(tea.KeyRight)))
	assert.Equal(t, call{kind: "step", id: controls.WindowSlider, delta: 1}, h.last())
	require.NoError(t, d.KeyDown(keyOf(tea.KeyDown)))
	assert.Equal(t, call{kind: "step", id: controls.WindowSlider, delta: -1}, h.last())
	require.NoError(t, d.KeyDown(keyOf(tea.KeyUp)))
	assert.Equal(t, call{kind: "step", id: controls.WindowSlider, delta: 1}, h.last())

	require.True(t, d.SetFocus(controls.VertFlipBox))
	require.NoError(t, d.KeyDown(keyOf(tea.KeyLeft)))
	assert.Equal(t, "forward", h.last().kind)
}

// TestFocusRing 测试 tab 循环跳过禁用和隐藏的控件
func TestFocusRing(t *testing.T) {
	h := newHost()
	h.disabled[controls.GainChoice] = true
	h.hidden[controls.DistanceEntry] = true
	d := NewDispatcher(DefaultKeyMap(), h)

	require.NoError(t, d.KeyDown(keyOf(tea.KeyTab)))
	assert.Equal(t, controls.ToolbarChoice, d.Focus(), "wraps from the image panel")
	require.NoError(t, d.KeyDown(keyOf(tea.KeyTab)))
	assert.Equal(t, controls.AutoFocusButton, d.Focus())

	require.NoError(t, d.KeyDown(keyOf(tea.KeyShiftTab)))
	assert.Equal(t, controls.ToolbarChoice, d.Focus())
	require.NoError(t, d.KeyDown(keyOf(tea.KeyShiftTab)))
	assert.Equal(t, ImagePanel, d.Focus())

	assert.False(t, d.SetFocus(controls.GainChoice))
	assert.False(t, d.SetFocus(controls.RunTestItem), "menu items are not in the ring")
	assert.False(t, d.SetFocus(controls.QuitItem))
	assert.Equal(t, ImagePanel, d.Focus())
}

// TestRevalidate 测试焦点控件被禁用后焦点移到下一个可用控件
func TestRevalidate(t *testing.T) {
	h := newHost()
	d := NewDispatcher(DefaultKeyMap(), h)
	require.True(t, d.SetFocus(controls.ScanVertSlider))

	h.disabled[controls.ScanVertSlider] = true
	d.Revalidate()
	assert.Equal(t, controls.ScanHorBox, d.Focus())
	assert.Equal(t, call{kind: "focus", id: controls.ScanHorBox}, h.last())

	n := len(h.calls)
	d.Revalidate()
	assert.Len(t, h.calls, n)
}

// TestLocked 测试运行对话框显示时焦点锁定，只有退出与取消有效
func TestLocked(t *testing.T) {
	h := newHost()
	d := NewDispatcher(DefaultKeyMap(), h)
	require.True(t, d.SetFocus(controls.WindowSlider))
	h.locked = true
	n := len(h.calls)

	require.NoError(t, d.KeyDown(keyOf(tea.KeyTab)))
	require.NoError(t, d.KeyDown(keyOf(tea.KeyRight)))
	require.NoError(t, d.KeyDown(keyOf(tea.KeyCtrlN)))
	require.NoError(t, d.KeyUp(runes("x")))
	assert.False(t, d.SetFocus(controls.LevelSlider))
	assert.Len(t, h.calls, n)
	assert.Equal(t, controls.WindowSlider, d.Focus())

	require.NoError(t, d.KeyDown(keyOf(tea.KeyEsc)))
	assert.Equal(t, call{kind: "command", name: router.CmdCancelRun}, h.last())
	require.NoError(t, d.KeyDown(keyOf(tea.KeyCtrlQ)))
	assert.Equal(t, call{kind: "command", name: router.CmdQuit}, h.last())
}

// TestNextPage 测试切换图像页
func TestNextPage(t *testing.T) {
	h := newHost()
	d := NewDispatcher(DefaultKeyMap(), h)
	require.NoError(t, d.KeyDown(keyOf(tea.KeyF6)))
	assert.Equal(t, call{kind: "page"}, h.last())
}
