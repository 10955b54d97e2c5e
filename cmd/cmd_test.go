package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/config"
	"github.com/HaiFongPan/reconsole/internal/engine"
)

// TestParsePage 测试页面名称解析
func TestParsePage(t *testing.T) {
	p, err := parsePage("sinogram")
	require.NoError(t, err)
	assert.Equal(t, engine.PageSinogram, p)

	p, err = parsePage("Projection")
	require.NoError(t, err)
	assert.Equal(t, engine.PageProjection, p)

	_, err = parsePage("histogram")
	assert.Error(t, err)
}

// TestRecordPath 测试记录路径默认值
func TestRecordPath(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, cfg.Store.DefaultPath, recordPath(cfg, nil))
	assert.Equal(t, "bench.yaml", recordPath(cfg, []string{"bench.yaml"}))
}

// TestSimOptions 测试引擎配置映射
func TestSimOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.StepIntervalMS = 25
	opts := simOptions(cfg)
	assert.Equal(t, cfg.Engine.Steps, opts.Steps)
	assert.Equal(t, int64(25), opts.Interval.Milliseconds())
	assert.Equal(t, cfg.Engine.Seed, opts.Seed)
}
