package dialogs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/engine/enginetest"
	"github.com/HaiFongPan/reconsole/internal/session"
	recstore "github.com/HaiFongPan/reconsole/internal/store"
	"github.com/HaiFongPan/reconsole/internal/values"
)

func newModel(t *testing.T) *values.Model {
	t.Helper()
	m, err := values.New(values.DefaultLimits())
	require.NoError(t, err)
	return m
}

// countChanges 统计所有字段的通知
func countChanges(m *values.Model) *[]values.Field {
	var seen []values.Field
	m.SubscribeAll(func(c values.Change) {
		seen = append(seen, c.Field)
	})
	return &seen
}

func receive(t *testing.T, ch chan any) any {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message posted")
		return nil
	}
}

// TestConfigDialog_Cancel 测试取消不改变模型且不触发通知
func TestConfigDialog_Cancel(t *testing.T) {
	m := newModel(t)
	before := m.Scan()
	seen := countChanges(m)

	d := OpenConfig(m)
	v, err := d.SetLength(values.FieldSliceThickness, "0.9")
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)
	require.NoError(t, d.SetOrientation(1))
	d.AddRow()
	d.Cancel()

	assert.False(t, d.Open())
	assert.Equal(t, 0.5, m.Float(values.FieldSliceThickness))
	assert.Equal(t, before, m.Scan())
	assert.Empty(t, *seen)
}

// TestConfigDialog_OK 测试确定后一次性替换配置字段
func TestConfigDialog_OK(t *testing.T) {
	m := newModel(t)
	d := OpenConfig(m)

	_, err := d.SetLength(values.FieldSliceThickness, "0.9")
	require.NoError(t, err)
	_, err = d.SetLength(values.FieldPitchWidth, "0.2")
	require.NoError(t, err)
	require.NoError(t, d.SetRotation(1))
	row := d.AddRow()
	require.NoError(t, d.SetCell(row, 1, "400"))
	require.NoError(t, d.SetCell(row, 2, "800"))

	var observed []values.Snapshot
	m.SubscribeAll(func(c values.Change) {
		observed = append(observed, m.Snapshot())
	})

	require.NoError(t, d.OK())
	assert.False(t, d.Open())
	assert.Equal(t, 0.9, m.Float(values.FieldSliceThickness))
	assert.Equal(t, 0.2, m.Float(values.FieldPitchWidth))
	assert.Equal(t, "step-and-shoot", m.ChoiceName(values.FieldRotationEnabled))
	assert.Equal(t, []values.ProjectionAngle{{SourceObject: 400, SourceDetector: 800}}, m.Angles())

	// 每个监听者看到的都是完整写入后的模型
	require.NotEmpty(t, observed)
	for _, s := range observed {
		assert.Equal(t, 0.9, s.Scan.SliceThickness)
		assert.Len(t, s.Scan.Angles, 1)
	}
}

// TestConfigDialog_OKInvalid 测试无效的工作副本被拒绝且对话框保持打开
func TestConfigDialog_OKInvalid(t *testing.T) {
	m := newModel(t)
	d := OpenConfig(m)
	_, err := d.SetLength(values.FieldSliceThickness, "0")
	require.NoError(t, err)

	err = d.OK()
	assert.ErrorIs(t, err, values.ErrInvalidConfiguration)
	assert.True(t, d.Open())
	assert.Equal(t, 0.5, m.Float(values.FieldSliceThickness))
}

// TestConfigDialog_SetLength 测试数值输入的静默修正
func TestConfigDialog_SetLength(t *testing.T) {
	d := OpenConfig(newModel(t))

	v, _ := d.SetLength(values.FieldPixelWidth, "abc")
	assert.Equal(t, 0.1, v)
	v, _ = d.SetLength(values.FieldPixelWidth, "5000")
	assert.Equal(t, 1000.0, v)
	v, _ = d.SetLength(values.FieldPixelWidth, "-3")
	assert.Equal(t, 0.0, v)
	v, _ = d.SetLength(values.FieldPixelWidth, "NaN")
	assert.Equal(t, 0.0, v)

	_, err := d.SetLength(values.FieldWindow, "1")
	assert.Error(t, err)

	assert.ErrorIs(t, d.SetOrientation(5), values.ErrInvalidSelection)
	assert.ErrorIs(t, d.SetRotation(-1), values.ErrInvalidSelection)
}

// TestConfigDialog_Grid 测试网格增删与单元格校验
func TestConfigDialog_Grid(t *testing.T) {
	d := OpenConfig(newModel(t))

	r0 := d.AddRow()
	require.NoError(t, d.SetCell(r0, 0, "0"))
	r1 := d.AddRow()
	require.NoError(t, d.SetCell(r1, 0, "15"))
	r2 := d.AddRow()
	assert.Equal(t, "30", d.Cell(r2, 0))

	for _, text := range []string{"x", "", "Inf", "NaN"} {
		err := d.SetCell(r1, 3, text)
		assert.ErrorIs(t, err, ErrCellInvalid, text)
	}
	var ce *CellError
	require.ErrorAs(t, d.SetCell(r1, 3, "bad"), &ce)
	assert.Equal(t, 1, ce.Row)
	assert.Equal(t, 3, ce.Col)
	assert.ErrorIs(t, d.SetCell(9, 0, "1"), ErrCellInvalid)

	require.NoError(t, d.RemoveRow(r0))
	rows := d.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 15.0, rows[0].Angle)
	assert.ErrorIs(t, d.RemoveRow(5), ErrCellInvalid)
}

// TestConfigDialog_LoadSave 测试通过配置存储加载与保存
func TestConfigDialog_LoadSave(t *testing.T) {
	m := newModel(t)
	store := new(enginetest.MockStore)
	msgs := make(chan any, 4)
	post := func(msg any) { msgs <- msg }
	ctx := context.Background()

	rec := values.DefaultScanConfig(values.DefaultLimits())
	rec.SliceThickness = 2
	rec.Angles = []values.ProjectionAngle{{Angle: 90, SourceObject: 1, SourceDetector: 2}}
	store.On("Load", mock.Anything, "good.yaml").Return(rec, nil)
	store.On("Load", mock.Anything, "odd.yaml").Return(values.ScanConfig{Orientation: "diagonal", Rotation: "continuous"}, nil)
	store.On("Load", mock.Anything, "gone.yaml").Return(values.ScanConfig{}, errors.New("missing"))

	d := OpenConfig(m)

	d.Load(ctx, store, "good.yaml", post)
	require.NoError(t, d.ApplyLoaded(receive(t, msgs).(LoadedMsg)))
	assert.Equal(t, rec, d.Working())
	assert.Equal(t, 0.5, m.Float(values.FieldSliceThickness), "load only fills the working copy")

	d.Load(ctx, store, "odd.yaml", post)
	err := d.ApplyLoaded(receive(t, msgs).(LoadedMsg))
	assert.ErrorIs(t, err, values.ErrInvalidConfiguration)
	assert.ErrorIs(t, err, recstore.ErrConfigLoadFailed)
	assert.Contains(t, err.Error(), "odd.yaml")
	assert.Equal(t, rec, d.Working())

	d.Load(ctx, store, "gone.yaml", post)
	err = d.ApplyLoaded(receive(t, msgs).(LoadedMsg))
	assert.ErrorIs(t, err, recstore.ErrConfigLoadFailed)
	assert.Contains(t, err.Error(), "missing")
	var pe *recstore.PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, recstore.OpLoad, pe.Op)

	store.On("Save", mock.Anything, "out.yaml", rec).Return(nil)
	d.Save(ctx, store, "out.yaml", post)
	saved := receive(t, msgs).(SavedMsg)
	assert.NoError(t, saved.Err)
	assert.Equal(t, "out.yaml", saved.Path)
	store.AssertExpectations(t)
}

// TestConfigDialog_StaleLoad 测试关闭后到达的加载结果被忽略
func TestConfigDialog_StaleLoad(t *testing.T) {
	m := newModel(t)
	d := OpenConfig(m)
	before := d.Working()

	rec := values.DefaultScanConfig(values.DefaultLimits())
	rec.SliceThickness = 3
	d.Cancel()
	require.NoError(t, d.ApplyLoaded(LoadedMsg{Dialog: d, Config: rec}))
	assert.Equal(t, before, d.Working())
}

// TestPhantomEditor_RoundTrip 测试增加、确定、删除、取消的往返
func TestPhantomEditor_RoundTrip(t *testing.T) {
	m := newModel(t)

	e, err := OpenPhantoms(m, values.FieldResolutionPhantoms)
	require.NoError(t, err)
	assert.Empty(t, e.Rows())
	a := e.Add()
	require.NoError(t, e.SetCell(a, 0, "bar 1"))
	require.NoError(t, e.SetCell(a, 4, "2.5"))
	b := e.Add()
	require.NoError(t, e.SetCell(b, 0, "bar 2"))
	require.NoError(t, e.SetCell(b, 1, "-10"))
	require.NoError(t, e.OK())

	want := []values.Phantom{{Name: "bar 1", Target: 2.5}, {Name: "bar 2", CenterX: -10}}
	assert.Equal(t, want, m.Phantoms(values.FieldResolutionPhantoms))

	e, err = OpenPhantoms(m, values.FieldResolutionPhantoms)
	require.NoError(t, err)
	e.Select(0)
	assert.Equal(t, 1, e.Remove())
	assert.Len(t, e.Rows(), 1)
	e.Cancel()

	assert.Equal(t, want, m.Phantoms(values.FieldResolutionPhantoms))
	assert.Empty(t, m.Phantoms(values.FieldContrastPhantoms))
}

// TestPhantomEditor_Edit 测试单元格编辑与选择
func TestPhantomEditor_Edit(t *testing.T) {
	m := newModel(t)
	e, err := OpenPhantoms(m, values.FieldContrastPhantoms)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		e.Add()
	}
	assert.ErrorIs(t, e.SetCell(0, 3, "wide"), ErrCellInvalid)
	assert.ErrorIs(t, e.SetCell(0, 7, "1"), ErrCellInvalid)
	require.NoError(t, e.SetCell(2, 3, "4"))
	assert.Equal(t, "4", e.Cell(2, 3))

	e.Select(0)
	e.Select(2)
	e.Select(0)
	assert.Equal(t, []int{2}, e.Selected())
	assert.Equal(t, 1, e.Remove())
	assert.Empty(t, e.Selected())
	assert.Equal(t, 0, e.Remove())
	assert.Len(t, e.Rows(), 2)

	_, err = OpenPhantoms(m, values.FieldWindow)
	assert.Error(t, err)
}

// TestRunDialog 测试运行对话框跟随会话
func TestRunDialog(t *testing.T) {
	sess := session.New()
	d := NewRunDialog(sess)
	assert.False(t, d.Visible())
	assert.NoError(t, d.Close())

	id, err := sess.Begin()
	require.NoError(t, err)
	assert.True(t, d.Visible())
	assert.True(t, d.OnTop())
	assert.ErrorIs(t, d.Close(), ErrNotClosable)

	sess.SetProgress(id, 0.3)
	assert.Equal(t, 0.3, d.Progress())
	require.NoError(t, sess.RequestCancel())
	assert.True(t, d.Cancelling())
	assert.Equal(t, "cancelling", d.Status())

	require.NoError(t, sess.Finish(id, session.Cancelled, ""))
	assert.False(t, d.Visible())
	assert.Equal(t, "cancelled", d.Status())
}

// TestModals 测试模态通知栈
func TestModals(t *testing.T) {
	var s Modals
	_, ok := s.Top()
	assert.False(t, ok)

	s.Push(Modal{Kind: ModalInfo, Text: "a"})
	s.Push(Modal{Kind: ModalConfirm, Text: "b", Command: "quit", Arg: "force"})
	top, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, "quit", top.Command)
	assert.Equal(t, 1, s.Len())
}
