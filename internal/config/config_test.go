package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// TestLoad_Defaults 测试无配置文件时使用默认值
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 500, cfg.UI.LogLines)
	assert.Equal(t, []string{"low", "medium", "high"}, cfg.Device.GainChoices)

	l := cfg.Limits()
	assert.NoError(t, l.Check())
	assert.Equal(t, values.DefaultLimits(), l)
}

// TestLoad_FileAndEnv 测试配置文件与环境变量优先级
func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[log]
level = "debug"
format = "json"

[device]
step_max = 20
gain_choices = ["x1", "x4"]

[engine]
steps = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("RECON_ENGINE_STEPS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 20, cfg.Device.StepMax)
	assert.Equal(t, []string{"x1", "x4"}, cfg.Limits().GainChoices)
	assert.Equal(t, 7, cfg.Engine.Steps)
}

// TestValidate 测试各配置段校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default ok", func(c *Config) {}, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"no gains", func(c *Config) { c.Device.GainChoices = nil }, "gain_choices"},
		{"zero slice", func(c *Config) { c.Scan.SliceThickness = 0 }, "slice_thickness"},
		{"bad backend", func(c *Config) { c.Store.Backend = "ftp" }, "invalid backend"},
		{"r2 needs account", func(c *Config) { c.Store.Backend = "r2" }, "account_id is required"},
		{"r2 bad bucket", func(c *Config) {
			c.Store.Backend = "r2"
			c.R2 = R2Config{AccountID: "a", AccessKeyID: "k", AccessKeySecret: "s", BucketName: "-bad"}
		}, "invalid bucket_name"},
		{"r2 ok", func(c *Config) {
			c.Store.Backend = "r2"
			c.R2 = R2Config{AccountID: "a", AccessKeyID: "k", AccessKeySecret: "s", BucketName: "recon-configs"}
		}, ""},
		{"preview too small", func(c *Config) { c.Engine.PreviewSize = 4 }, "preview_size"},
		{"bad preview protocol", func(c *Config) { c.UI.Preview = "ascii" }, "invalid preview"},
		{"no log lines", func(c *Config) { c.UI.LogLines = 0 }, "log_lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestUserData_Remember 测试最近使用的配置列表
func TestUserData_Remember(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	ud, err := LoadUserData()
	require.NoError(t, err)
	assert.Empty(t, ud.LastConfig)

	for _, p := range []string{"a.yaml", "b.yaml", "a.yaml"} {
		require.NoError(t, ud.Remember(p))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, ud.Remember(filepath.Join("more", string(rune('c'+i))+".yaml")))
	}

	loaded, err := LoadUserData()
	require.NoError(t, err)
	assert.Equal(t, ud.LastConfig, loaded.LastConfig)
	assert.Len(t, loaded.Recent, maxRecent)
	assert.Equal(t, filepath.Join("more", "l.yaml"), loaded.Recent[0])
}

// TestUserData_LivesInConfigDir 测试 user.data 写在默认配置文件所在目录
func TestUserData_LivesInConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".reconsole", "config.toml"), GetDefaultConfigPath())

	ud, err := LoadUserData()
	require.NoError(t, err)
	require.NoError(t, ud.Remember("bench.yaml"))

	info, err := os.Stat(filepath.Join(home, ".reconsole"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(home, ".reconsole", "user.data"))
	assert.NoError(t, err)
}
