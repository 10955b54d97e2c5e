package console

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/dialogs"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/engine/enginetest"
	"github.com/HaiFongPan/reconsole/internal/input"
	"github.com/HaiFongPan/reconsole/internal/router"
	"github.com/HaiFongPan/reconsole/internal/session"
	"github.com/HaiFongPan/reconsole/internal/values"
)

type harness struct {
	c     *Console
	eng   *enginetest.MockEngine
	hw    *enginetest.MockHardware
	store *enginetest.MockStore
	msgs  chan any
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		eng:   new(enginetest.MockEngine),
		hw:    new(enginetest.MockHardware),
		store: new(enginetest.MockStore),
		msgs:  make(chan any, 256),
	}
	frame := engine.Frame{Image: image.NewGray(image.Rect(0, 0, 4, 4))}
	h.eng.On("Refresh", mock.Anything, mock.Anything, mock.Anything).Return(frame, nil).Maybe()
	h.eng.On("Pan", mock.Anything, mock.Anything).Return().Maybe()

	if opts.Limits.GainChoices == nil {
		opts.Limits = values.DefaultLimits()
	}
	opts.Capabilities = controls.Capabilities{AutoFocus: true, AutoLight: true}
	c, err := New(context.Background(), opts, Deps{
		Engine:   h.eng,
		Hardware: h.hw,
		Store:    h.store,
		Post:     func(msg any) { h.msgs <- msg },
	})
	require.NoError(t, err)
	h.c = c
	return h
}

// until 在“UI 线程”上处理投递的消息，直到条件成立
func (h *harness) until(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case msg := <-h.msgs:
			h.c.Handle(msg)
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

// settle 处理完所有已投递的消息
func (h *harness) settle() {
	for {
		select {
		case msg := <-h.msgs:
			h.c.Handle(msg)
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func countField(m *values.Model, f values.Field) *int {
	n := 0
	m.Subscribe(f, func(values.Change) { n++ })
	return &n
}

// TestScenario_SliderLiveEcho 测试滑块实时回显：三次提交、三次通知、三次预览刷新
func TestScenario_SliderLiveEcho(t *testing.T) {
	l := values.DefaultLimits()
	l.WindowDefault = 1000
	h := newHarness(t, Options{Limits: l})
	m := h.c.Model()
	require.Equal(t, 1000, m.Int(values.FieldWindow))

	notified := countField(m, values.FieldWindow)
	before := h.c.Refreshes()

	for _, pos := range []int{1100, 1200, 1500} {
		h.c.Drag(controls.WindowSlider, pos)
	}
	h.c.Release(controls.WindowSlider)

	assert.Equal(t, 3, *notified)
	assert.Equal(t, "1500", h.c.Panel().Label(controls.WindowSlider))
	assert.Equal(t, 1500, m.Int(values.FieldWindow))
	assert.Equal(t, 3, h.c.Refreshes()-before)

	h.settle()
	h.eng.AssertNumberOfCalls(t, "Refresh", before+3)
	assert.NotNil(t, h.c.Frame().Image)
}

// TestScenario_ResetScanVert 测试重置纵向扫描校正
func TestScenario_ResetScanVert(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.c.Model()

	h.c.Click(controls.ScanVertBox)
	require.True(t, m.Bool(values.FieldScanVertEnable))
	_, err := m.SetInt(values.FieldScanVert, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", h.c.Panel().Label(controls.ScanVertSlider))

	h.c.Click(controls.ResetScanVertButton)

	assert.Equal(t, 0, m.Int(values.FieldScanVert))
	assert.True(t, m.Bool(values.FieldScanVertEnable))
	assert.True(t, h.c.Panel().Enabled(controls.ScanVertSlider))
	assert.Equal(t, "0", h.c.Panel().Label(controls.ScanVertSlider))
}

// TestScenario_ConfigCancel 测试配置对话框取消
func TestScenario_ConfigCancel(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.c.Model()
	require.Equal(t, 0.5, m.Float(values.FieldSliceThickness))
	before := m.Snapshot()

	fired := 0
	m.SubscribeAll(func(values.Change) { fired++ })

	require.NoError(t, h.c.Command(router.CmdConfigure, ""))
	d := h.c.ConfigDialog()
	require.NotNil(t, d)
	_, err := d.SetLength(values.FieldSliceThickness, "0.9")
	require.NoError(t, err)
	h.c.ConfigCancel()

	assert.Nil(t, h.c.ConfigDialog())
	assert.Equal(t, 0.5, m.Float(values.FieldSliceThickness))
	assert.Equal(t, before, m.Snapshot())
	assert.Zero(t, fired)
}

// TestScenario_InvalidSnapshot 测试无效快照：报告 InvalidConfiguration 且会话保持 Idle
func TestScenario_InvalidSnapshot(t *testing.T) {
	h := newHarness(t, Options{})
	_, err := h.c.Model().SetFloat(values.FieldSliceThickness, 0)
	require.NoError(t, err)

	err = h.c.Command(router.CmdRunTest, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, values.ErrInvalidConfiguration)
	assert.Equal(t, session.Idle, h.c.Session().State())
	assert.False(t, h.c.RunDialog().Visible())

	modal, ok := h.c.Modal()
	require.True(t, ok)
	assert.Equal(t, dialogs.ModalError, modal.Kind)
	assert.Contains(t, modal.Text, "sliceThickness")
	h.eng.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

// TestScenario_CancelRunningSession 测试取消正在运行的会话
func TestScenario_CancelRunningSession(t *testing.T) {
	h := newHarness(t, Options{})
	h.eng.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(engine.ProgressFunc)(0.3)
		<-args.Get(0).(context.Context).Done()
	}).Return(engine.Result{Status: engine.Cancelled, Reason: "cancelled"})

	require.NoError(t, h.c.Command(router.CmdRunTest, ""))
	run := h.c.RunDialog()
	assert.True(t, run.Visible())
	assert.True(t, h.c.Locked())
	assert.ErrorIs(t, h.c.CloseRunDialog(), dialogs.ErrNotClosable)

	h.until(t, func() bool { return run.Progress() == 0.3 })

	require.NoError(t, h.c.CancelRun())
	assert.True(t, h.c.Session().Running())

	h.until(t, func() bool { return !h.c.Session().Running() })
	assert.Equal(t, session.Idle, h.c.Session().State())
	assert.False(t, run.Visible())
	assert.Equal(t, "cancelled", h.c.Status().Text)
	assert.Equal(t, "cancelled", run.Status())
}

// TestScenario_PhantomRoundTrip 测试分辨率体模列表往返
func TestScenario_PhantomRoundTrip(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.c.Model()

	require.NoError(t, h.c.Command(router.CmdResolution, ""))
	e := h.c.PhantomEditor()
	require.NotNil(t, e)
	require.Empty(t, e.Rows())
	for i, name := range []string{"line pairs A", "line pairs B"} {
		e.Add()
		require.NoError(t, e.SetCell(i, 0, name))
	}
	require.NoError(t, h.c.PhantomOK())
	assert.Nil(t, h.c.PhantomEditor())
	original := m.Phantoms(values.FieldResolutionPhantoms)
	require.Len(t, original, 2)

	require.NoError(t, h.c.Command(router.CmdResolution, ""))
	e = h.c.PhantomEditor()
	e.Select(1)
	assert.Equal(t, 1, e.Remove())
	h.c.PhantomCancel()

	assert.Equal(t, original, m.Phantoms(values.FieldResolutionPhantoms))
}

// TestConfigOK_Atomic 测试确定一次性替换配置字段，监听者看到完整的模型
func TestConfigOK_Atomic(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.c.Model()

	require.NoError(t, h.c.Command(router.CmdConfigure, ""))
	d := h.c.ConfigDialog()
	_, _ = d.SetLength(values.FieldSliceThickness, "0.9")
	_, _ = d.SetLength(values.FieldPixelHeight, "0.3")
	require.NoError(t, d.SetOrientation(1))

	var seen []values.ScanConfig
	m.SubscribeAll(func(values.Change) { seen = append(seen, m.Scan()) })

	require.NoError(t, h.c.ConfigOK())
	require.Len(t, seen, 3)
	for _, s := range seen {
		assert.Equal(t, 0.9, s.SliceThickness)
		assert.Equal(t, 0.3, s.PixelHeight)
		assert.Equal(t, "vertical", s.Orientation)
	}
	assert.Equal(t, "configuration applied", h.c.Status().Text)
}

// TestConfigOK_Invalid 测试无效配置保持对话框打开并弹出通知
func TestConfigOK_Invalid(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.c.Command(router.CmdConfigure, ""))
	d := h.c.ConfigDialog()
	_, _ = d.SetLength(values.FieldPitchWidth, "0")

	assert.ErrorIs(t, h.c.ConfigOK(), values.ErrInvalidConfiguration)
	assert.NotNil(t, h.c.ConfigDialog())
	_, ok := h.c.Modal()
	assert.True(t, ok)
}

// TestSingleSession 测试同一时间至多一个会话运行
func TestSingleSession(t *testing.T) {
	h := newHarness(t, Options{})
	release := make(chan struct{})
	h.eng.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-release
	}).Return(engine.Result{Status: engine.Completed, Slices: 1}).Once()

	require.NoError(t, h.c.Command(router.CmdRunTest, ""))
	err := h.c.Command(router.CmdRunTest, "")
	assert.ErrorIs(t, err, session.ErrSessionBusy)
	h.c.DismissModal()
	assert.False(t, h.c.Panel().Enabled(controls.RunTestItem))

	close(release)
	h.until(t, func() bool { return !h.c.Session().Running() })
	assert.Equal(t, 1, h.c.Session().Runs())
	assert.True(t, h.c.Panel().Enabled(controls.RunTestItem))
	assert.Equal(t, "completed, 1 slices", h.c.Status().Text)
	h.eng.AssertNumberOfCalls(t, "Run", 1)
}

// TestEngineFailure 测试引擎失败：回到 Idle，状态栏和日志记录原因，不弹窗
func TestEngineFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.eng.On("Run", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.Result{Status: engine.Failed, Reason: "tube arc"})

	require.NoError(t, h.c.Command(router.CmdRunTest, ""))
	h.until(t, func() bool { return !h.c.Session().Running() })

	assert.Equal(t, router.Error, h.c.Status().Level)
	assert.Contains(t, h.c.Status().Text, "tube arc")
	lines := h.c.Log().Lines()
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], "tube arc")
	_, ok := h.c.Modal()
	assert.False(t, ok)
}

// TestQuitWhileRunning 测试运行中退出需确认，确认后等待引擎结束再退出
func TestQuitWhileRunning(t *testing.T) {
	h := newHarness(t, Options{})
	h.eng.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(engine.Result{Status: engine.Cancelled})

	require.NoError(t, h.c.Command(router.CmdRunTest, ""))
	h.c.Key(tea.KeyMsg{Type: tea.KeyCtrlQ})

	modal, ok := h.c.Modal()
	require.True(t, ok)
	assert.Equal(t, dialogs.ModalConfirm, modal.Kind)
	assert.False(t, h.c.Quit())

	h.c.AcceptModal()
	h.until(t, h.c.Quit)
	assert.False(t, h.c.Session().Running())
}

// TestQuitIdle 测试空闲时直接退出
func TestQuitIdle(t *testing.T) {
	h := newHarness(t, Options{})
	h.c.Click(controls.QuitItem)
	h.until(t, h.c.Quit)
}

// TestAbout 测试关于对话框
func TestAbout(t *testing.T) {
	h := newHarness(t, Options{Version: "1.2.3"})
	h.c.Key(tea.KeyMsg{Type: tea.KeyF1})
	modal, ok := h.c.Modal()
	require.True(t, ok)
	assert.Equal(t, "About", modal.Title)
	assert.Contains(t, modal.Text, "1.2.3")
	h.c.DismissModal()
	_, ok = h.c.Modal()
	assert.False(t, ok)
}

// TestStartupOpen 测试启动时打开配置并记住路径
func TestStartupOpen(t *testing.T) {
	var remembered []string
	h := newHarness(t, Options{Path: "bench.yaml", Remember: func(p string) { remembered = append(remembered, p) }})
	rec := values.DefaultScanConfig(values.DefaultLimits())
	rec.SliceThickness = 1.25
	h.store.On("Load", mock.Anything, "bench.yaml").Return(rec, nil)

	h.c.Start()
	h.until(t, func() bool { return h.c.Model().Float(values.FieldSliceThickness) == 1.25 })
	assert.Equal(t, []string{"bench.yaml"}, remembered)
	assert.Equal(t, "opened bench.yaml", h.c.Status().Text)
}

// TestOpenFailure 测试加载失败弹出通知且模型不变
func TestOpenFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.On("Load", mock.Anything, "bad.yaml").Return(values.ScanConfig{}, errors.New("permission denied"))
	before := h.c.Model().Snapshot()

	require.NoError(t, h.c.Command(router.CmdOpen, "bad.yaml"))
	h.until(t, func() bool { _, ok := h.c.Modal(); return ok })

	assert.Equal(t, before, h.c.Model().Snapshot())
	assert.Contains(t, h.c.Status().Text, "permission denied")
}

// TestOpenNonFiniteAngles 测试记录含非有限角度时打开失败且模型不变
func TestOpenNonFiniteAngles(t *testing.T) {
	h := newHarness(t, Options{})
	rec := values.DefaultScanConfig(values.DefaultLimits())
	rec.Angles = []values.ProjectionAngle{{Angle: math.NaN(), SourceObject: math.Inf(1)}}
	h.store.On("Load", mock.Anything, "bad.yaml").Return(rec, nil)
	before := h.c.Model().Snapshot()

	require.NoError(t, h.c.Command(router.CmdOpen, "bad.yaml"))
	h.until(t, func() bool { _, ok := h.c.Modal(); return ok })

	assert.Equal(t, before, h.c.Model().Snapshot())
	assert.Empty(t, h.c.Router().Path())
	assert.Contains(t, h.c.Status().Text, "open failed")
}

// TestConfigDialog_LoadSave 测试配置对话框的加载与保存
func TestConfigDialog_LoadSave(t *testing.T) {
	var remembered []string
	h := newHarness(t, Options{Remember: func(p string) { remembered = append(remembered, p) }})
	rec := values.DefaultScanConfig(values.DefaultLimits())
	rec.PitchHeight = 0.4
	h.store.On("Load", mock.Anything, "in.yaml").Return(rec, nil)
	h.store.On("Save", mock.Anything, "out.yaml", mock.Anything).Return(nil)

	require.NoError(t, h.c.Command(router.CmdConfigure, ""))
	h.c.ConfigLoad("in.yaml")
	h.until(t, func() bool { return h.c.ConfigDialog().Working().PitchHeight == 0.4 })
	assert.Equal(t, 0.1, h.c.Model().Float(values.FieldPitchHeight))

	h.c.ConfigSave("out.yaml")
	h.until(t, func() bool { return len(remembered) == 1 })
	assert.Equal(t, "saved out.yaml", h.c.Status().Text)

	require.NoError(t, h.c.ConfigOK())
	assert.Equal(t, 0.4, h.c.Model().Float(values.FieldPitchHeight))
}

// TestKeys 测试键盘：tab 焦点、滑块步进、图像平移、输入框提交
func TestKeys(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.c.Model()

	require.True(t, h.c.Input().SetFocus(controls.LevelSlider))
	h.c.Key(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, values.DefaultLimits().LevelDefault+1, m.Int(values.FieldLevel))

	require.True(t, h.c.Input().SetFocus(input.ImagePanel))
	h.c.Key(tea.KeyMsg{Type: tea.KeyUp})
	h.eng.AssertCalled(t, "Pan", 0, -input.PanStep)

	require.True(t, h.c.Input().SetFocus(controls.DistanceEntry))
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyBackspace}, {Type: tea.KeyBackspace}, {Type: tea.KeyBackspace},
		{Type: tea.KeyRunes, Runes: []rune("3")}, {Type: tea.KeyRunes, Runes: []rune("00")},
	} {
		h.c.Key(k)
	}
	assert.Equal(t, "300", h.c.Panel().Label(controls.DistanceEntry))
	assert.Equal(t, 250.0, m.Float(values.FieldDistance), "explicit entry waits for enter")

	// focus loss commits
	h.c.Key(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 300.0, m.Float(values.FieldDistance))

	require.True(t, h.c.Input().SetFocus(controls.VertFlipBox))
	h.c.Key(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.Bool(values.FieldVertFlip))

	require.True(t, h.c.Input().SetFocus(controls.ToolbarChoice))
	h.c.Key(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "edge", h.c.Panel().Toolbar())
}

// TestDisabledFocusMoves 测试焦点控件被禁用后焦点移走
func TestDisabledFocusMoves(t *testing.T) {
	h := newHarness(t, Options{})
	require.True(t, h.c.Input().SetFocus(controls.ToolbarChoice))
	h.c.Key(tea.KeyMsg{Type: tea.KeyRight})
	h.c.Key(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "scan", h.c.Panel().Toolbar())

	h.c.Click(controls.ScanVertBox)
	require.True(t, h.c.Input().SetFocus(controls.ScanVertSlider))
	require.NoError(t, h.c.Model().SetBool(values.FieldScanVertEnable, false))

	assert.False(t, h.c.Panel().Enabled(controls.ScanVertSlider))
	assert.Equal(t, controls.ScanHorBox, h.c.Input().Focus())
}

// TestPageChange 测试切换图像页会刷新预览
func TestPageChange(t *testing.T) {
	h := newHarness(t, Options{})
	before := h.c.Refreshes()
	h.c.Key(tea.KeyMsg{Type: tea.KeyF6})
	assert.Equal(t, engine.PageProjection, h.c.Page())
	assert.Equal(t, before+1, h.c.Refreshes())
	h.settle()
	h.eng.AssertCalled(t, "Refresh", mock.Anything, mock.Anything, engine.PageProjection)
}

// TestStaleFrames 测试过期的预览被丢弃
func TestStaleFrames(t *testing.T) {
	h := newHarness(t, Options{})
	newer := engine.Frame{Page: engine.PageSinogram}
	h.c.Handle(FrameMsg{Seq: 5, Frame: newer})
	h.c.Handle(FrameMsg{Seq: 3, Frame: engine.Frame{Page: engine.PageSlice}})
	assert.Equal(t, newer, h.c.Frame())
}

// TestLog_Bounded 测试日志区行数上限
func TestLog_Bounded(t *testing.T) {
	l := NewLog(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		l.Add(router.Info, s)
	}
	lines := l.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "c")
	assert.Contains(t, lines[2], "e")
	assert.Equal(t, DefaultLogLines, NewLog(0).max)
}

// TestAutoAll_FocusFailureSingleModal 测试对焦失败只弹出一个错误框，跳过调光只写状态栏
func TestAutoAll_FocusFailureSingleModal(t *testing.T) {
	h := newHarness(t, Options{})
	h.hw.On("AutoFocus", mock.Anything).Return(0.0, errors.New("no contrast"))

	require.NoError(t, h.c.Command(router.CmdAutoAll, ""))
	h.until(t, func() bool { return h.c.Status().Text == "auto light skipped after focus failure" })
	assert.Equal(t, router.Warning, h.c.Status().Level)

	modal, ok := h.c.Modal()
	require.True(t, ok)
	assert.Contains(t, modal.Text, "no contrast")
	h.c.DismissModal()
	_, ok = h.c.Modal()
	assert.False(t, ok)
	h.hw.AssertNotCalled(t, "AutoLight", mock.Anything)
}

// TestAutoFocusButton 测试自动对焦按钮
func TestAutoFocusButton(t *testing.T) {
	h := newHarness(t, Options{})
	h.hw.On("AutoFocus", mock.Anything).Return(190.0, nil)

	h.c.Click(controls.AutoFocusButton)
	h.until(t, func() bool { return h.c.Model().Float(values.FieldDistance) == 190 })
	assert.Equal(t, "190", h.c.Panel().Label(controls.DistanceEntry))
}
