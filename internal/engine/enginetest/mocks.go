// Package enginetest provides testify mocks of the engine collaborators.
package enginetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// MockEngine 模拟重建引擎
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Run(ctx context.Context, snap values.Snapshot, progress engine.ProgressFunc) engine.Result {
	args := m.Called(ctx, snap, progress)
	return args.Get(0).(engine.Result)
}

func (m *MockEngine) TestGeometry(ctx context.Context, snap values.Snapshot) (engine.GeometryReport, error) {
	args := m.Called(ctx, snap)
	return args.Get(0).(engine.GeometryReport), args.Error(1)
}

func (m *MockEngine) AutoGeometry(ctx context.Context, snap values.Snapshot) ([]values.ProjectionAngle, error) {
	args := m.Called(ctx, snap)
	angles, _ := args.Get(0).([]values.ProjectionAngle)
	return angles, args.Error(1)
}

func (m *MockEngine) Refresh(ctx context.Context, snap values.Snapshot, page engine.Page) (engine.Frame, error) {
	args := m.Called(ctx, snap, page)
	return args.Get(0).(engine.Frame), args.Error(1)
}

func (m *MockEngine) Pan(dx, dy int) {
	m.Called(dx, dy)
}

// MockHardware 模拟台架硬件
type MockHardware struct {
	mock.Mock
}

func (m *MockHardware) AutoFocus(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockHardware) AutoLight(ctx context.Context) (engine.Light, error) {
	args := m.Called(ctx)
	return args.Get(0).(engine.Light), args.Error(1)
}

// MockStore 模拟配置存储
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, path string) (values.ScanConfig, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(values.ScanConfig), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, path string, cfg values.ScanConfig) error {
	args := m.Called(ctx, path, cfg)
	return args.Error(0)
}

var (
	_ engine.Engine      = (*MockEngine)(nil)
	_ engine.Hardware    = (*MockHardware)(nil)
	_ engine.ConfigStore = (*MockStore)(nil)
)
