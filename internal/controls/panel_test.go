package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/values"
)

func newPanel(t *testing.T) (*values.Model, *Panel) {
	t.Helper()
	m, err := values.New(values.DefaultLimits())
	require.NoError(t, err)
	p := NewPanel(m, Capabilities{AutoFocus: true, AutoLight: true})
	t.Cleanup(p.Close)
	return m, p
}

// TestPanel_InitialEcho 测试控件初始显示模型值
func TestPanel_InitialEcho(t *testing.T) {
	_, p := newPanel(t)

	assert.Equal(t, "4096", p.Label(WindowSlider))
	assert.Equal(t, 4096, p.State(WindowSlider).Pos)
	assert.Equal(t, 65535, p.State(WindowSlider).Max)
	assert.Equal(t, "1.00", p.Label(ZoomSlider))
	assert.Equal(t, 100, p.State(ZoomSlider).Pos)
	assert.Equal(t, 25, p.State(ZoomSlider).Min)
	assert.Equal(t, "0.50", p.Label(EnhanceSlider))
	assert.Equal(t, "250", p.Label(DistanceEntry))
	assert.Equal(t, "low", p.Label(GainChoice))
	assert.Equal(t, "navigation", p.Toolbar())
}

// TestPanel_LiveSliderEcho 测试实时滑块拖动的通知与标签回显
func TestPanel_LiveSliderEcho(t *testing.T) {
	m, p := newPanel(t)
	_, err := m.SetInt(values.FieldWindow, 1000)
	require.NoError(t, err)

	var labels []string
	m.Subscribe(values.FieldWindow, func(values.Change) {
		labels = append(labels, p.Label(WindowSlider))
	})

	for _, pos := range []int{1100, 1200, 1500} {
		require.NoError(t, p.Drag(WindowSlider, pos))
	}
	require.NoError(t, p.Release(WindowSlider))

	assert.Equal(t, []string{"1100", "1200", "1500"}, labels)
	assert.Equal(t, "1500", p.Label(WindowSlider))
	assert.Equal(t, 1500, m.Int(values.FieldWindow))
}

// TestPanel_FinalSliderPublishesOnRelease 测试 final 滑块仅在释放时提交
func TestPanel_FinalSliderPublishesOnRelease(t *testing.T) {
	m, p := newPanel(t)
	var n int
	m.Subscribe(values.FieldStep, func(values.Change) { n++ })

	require.NoError(t, p.Drag(StepSlider, 5))
	require.NoError(t, p.Drag(StepSlider, 9))
	assert.Equal(t, 0, n)
	assert.Equal(t, "9", p.Label(StepSlider))
	assert.Equal(t, 1, m.Int(values.FieldStep))

	require.NoError(t, p.Release(StepSlider))
	assert.Equal(t, 1, n)
	assert.Equal(t, 9, m.Int(values.FieldStep))
}

// TestPanel_ScaledSlider 测试缩放滑块的刻度换算
func TestPanel_ScaledSlider(t *testing.T) {
	m, p := newPanel(t)
	require.NoError(t, p.Drag(ZoomSlider, 250))
	assert.Equal(t, 2.5, m.Float(values.FieldZoom))
	assert.Equal(t, "2.50", p.Label(ZoomSlider))

	require.NoError(t, p.Drag(ZoomSlider, 5000))
	assert.Equal(t, 8.0, m.Float(values.FieldZoom))
	assert.Equal(t, 800, p.State(ZoomSlider).Pos)
}

// TestPanel_EntryExplicitCommit 测试文本框仅在回车或失焦时提交
func TestPanel_EntryExplicitCommit(t *testing.T) {
	m, p := newPanel(t)
	var n int
	m.Subscribe(values.FieldDistance, func(values.Change) { n++ })

	require.NoError(t, p.Type(DistanceEntry, "312.5"))
	assert.Equal(t, 0, n)
	assert.Equal(t, 250.0, m.Float(values.FieldDistance))

	require.NoError(t, p.Enter(DistanceEntry))
	assert.Equal(t, 1, n)
	assert.Equal(t, 312.5, m.Float(values.FieldDistance))

	require.NoError(t, p.Type(DistanceEntry, "100"))
	require.NoError(t, p.Blur(DistanceEntry))
	assert.Equal(t, 100.0, m.Float(values.FieldDistance))
	assert.Equal(t, 2, n)
}

// TestPanel_EntryCorrectedSilently 测试非法输入被静默修正并回显
func TestPanel_EntryCorrectedSilently(t *testing.T) {
	m, p := newPanel(t)

	require.NoError(t, p.Type(DistanceEntry, "-40"))
	require.NoError(t, p.Enter(DistanceEntry))
	assert.Equal(t, 0.0, m.Float(values.FieldDistance))
	assert.Equal(t, "0", p.Label(DistanceEntry))

	require.NoError(t, p.Type(DistanceEntry, "-1"))
	require.NoError(t, p.Enter(DistanceEntry))
	assert.Equal(t, "0", p.Label(DistanceEntry))

	require.NoError(t, p.Type(DistanceEntry, "abc"))
	require.NoError(t, p.Enter(DistanceEntry))
	assert.Equal(t, "0", p.Label(DistanceEntry))
}

// TestPanel_ResetEchoesLabel 测试复位后标签同步更新
func TestPanel_ResetEchoesLabel(t *testing.T) {
	m, p := newPanel(t)
	require.NoError(t, p.Toggle(ScanVertBox))
	require.NoError(t, p.Drag(ScanVertSlider, 42))
	assert.Equal(t, "42", p.Label(ScanVertSlider))

	m.Reset(values.FieldScanVert)
	assert.Equal(t, 0, m.Int(values.FieldScanVert))
	assert.Equal(t, "0", p.Label(ScanVertSlider))
	assert.True(t, p.Enabled(ScanVertSlider))
}

// TestPanel_DisabledSliderRetainsValue 测试禁用的滑块保留数值
func TestPanel_DisabledSliderRetainsValue(t *testing.T) {
	m, p := newPanel(t)
	assert.False(t, p.Enabled(ScanVertSlider))
	assert.ErrorIs(t, p.Drag(ScanVertSlider, 10), ErrDisabled)

	require.NoError(t, p.Toggle(ScanVertBox))
	require.NoError(t, p.Drag(ScanVertSlider, 17))
	require.NoError(t, p.Toggle(ScanVertBox))

	assert.False(t, p.Enabled(ScanVertSlider))
	assert.Equal(t, 17, m.Int(values.FieldScanVert))

	require.NoError(t, p.Toggle(ScanVertBox))
	assert.True(t, p.Enabled(ScanVertSlider))
	assert.Equal(t, "17", p.Label(ScanVertSlider))
}

// TestPanel_Step 测试方向键按一个单位步进
func TestPanel_Step(t *testing.T) {
	m, p := newPanel(t)
	require.NoError(t, p.Step(LevelSlider, 1))
	assert.Equal(t, 2049, m.Int(values.FieldLevel))
	require.NoError(t, p.Step(LevelSlider, -2))
	assert.Equal(t, 2047, m.Int(values.FieldLevel))

	require.NoError(t, p.Step(StepSlider, -1))
	assert.Equal(t, 1, m.Int(values.FieldStep))
}

// TestPanel_Choose 测试选择控件
func TestPanel_Choose(t *testing.T) {
	m, p := newPanel(t)
	require.NoError(t, p.Choose(GainChoice, 2))
	assert.Equal(t, "high", m.ChoiceName(values.FieldGainSelection))
	assert.Equal(t, "high", p.Label(GainChoice))

	err := p.Choose(GainChoice, 7)
	assert.ErrorIs(t, err, values.ErrInvalidSelection)
	assert.Equal(t, 2, p.State(GainChoice).Selected)

	require.NoError(t, p.Choose(ToolbarChoice, 2))
	assert.Equal(t, "scan", p.Toolbar())
	assert.ErrorIs(t, p.Choose(ToolbarChoice, 9), values.ErrInvalidSelection)

	assert.True(t, p.Visible(ScanHorSlider))
	assert.True(t, p.Visible(GainChoice))
	assert.False(t, p.Visible(WindowSlider))
	assert.False(t, p.Visible(RunTestItem))
}

// TestToolbarOf 测试控件所属工具栏
func TestToolbarOf(t *testing.T) {
	assert.Equal(t, "navigation", ToolbarOf(DistanceEntry))
	assert.Equal(t, "navigation", ToolbarOf(ProjectionViewBox))
	assert.Equal(t, "edge", ToolbarOf(AbsEnhanceBox))
	assert.Equal(t, "scan", ToolbarOf(ResetScanHorButton))
	assert.Equal(t, "noise", ToolbarOf(NoiseMaxSlider))
	assert.Equal(t, "", ToolbarOf(GainChoice))
	assert.Equal(t, "", ToolbarOf(AboutItem))
	assert.True(t, IsMenuItem(NewItem))
	assert.False(t, IsMenuItem(NoiseMaxSlider))
}

// TestPanel_Press 测试按钮返回命令名
func TestPanel_Press(t *testing.T) {
	_, p := newPanel(t)
	cmd, err := p.Press(ResetScanVertButton)
	require.NoError(t, err)
	assert.Equal(t, "resetScanVert", cmd)

	_, err = p.Press(WindowSlider)
	assert.Error(t, err)

	p.SetRunning(true)
	_, err = p.Press(RunTestItem)
	assert.ErrorIs(t, err, ErrDisabled)
	cmd, err = p.Press(QuitItem)
	require.NoError(t, err)
	assert.Equal(t, "quit", cmd)
}

// TestPanel_OnEnableChange 测试启用状态变化回调
func TestPanel_OnEnableChange(t *testing.T) {
	_, p := newPanel(t)
	var sets []EnableSet
	p.OnEnableChange(func(e EnableSet) { sets = append(sets, e) })

	require.NoError(t, p.Toggle(XEnhanceBox))
	require.Len(t, sets, 1)
	assert.True(t, sets[0].Enabled(EnhanceSlider))

	require.NoError(t, p.Toggle(VertFlipBox))
	assert.Len(t, sets, 1)
}
