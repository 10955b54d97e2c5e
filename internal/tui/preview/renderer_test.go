package preview

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	return img
}

// TestDetect 测试根据环境变量检测终端
func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		terminal TerminalType
		protocol Protocol
	}{
		{"kitty window", map[string]string{"KITTY_WINDOW_ID": "1"}, TerminalKitty, ProtocolKitty},
		{"ghostty", map[string]string{"TERM_PROGRAM": "ghostty"}, TerminalGhostty, ProtocolKitty},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, TerminalITerm2, ProtocolITerm},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, TerminalWezTerm, ProtocolITerm},
		{"sixel", map[string]string{"TERM": "xterm-sixel"}, TerminalGeneric, ProtocolSixel},
		{"plain", map[string]string{"TERM": "xterm-256color"}, TerminalGeneric, ProtocolText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, p := Detect(env(tt.vars))
			assert.Equal(t, tt.terminal, term)
			assert.Equal(t, tt.protocol, p)
		})
	}
}

// TestParseProtocol 测试协议名解析
func TestParseProtocol(t *testing.T) {
	p, err := ParseProtocol("Sixel", env(nil))
	require.NoError(t, err)
	assert.Equal(t, ProtocolSixel, p)

	p, err = ParseProtocol("auto", env(map[string]string{"KITTY_WINDOW_ID": "3"}))
	require.NoError(t, err)
	assert.Equal(t, ProtocolKitty, p)

	_, err = ParseProtocol("braille", env(nil))
	assert.Error(t, err)
}

// TestText 测试半块字符渲染：每个单元格两个像素行
func TestText(t *testing.T) {
	r := NewRenderer(ProtocolText)
	r.SetCellSize(16, 8)

	out := r.Text(gradient(64, 64))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, 16, strings.Count(lines[0], "▀"))
	assert.True(t, strings.HasSuffix(lines[0], "\x1b[0m"))

	// wide images keep their aspect ratio
	out = r.Text(gradient(64, 16))
	assert.Len(t, strings.Split(out, "\n"), 2)
}

// TestRender 测试各协议的输出
func TestRender(t *testing.T) {
	img := gradient(32, 32)

	_, err := NewRenderer(ProtocolText).Render(nil)
	assert.ErrorIs(t, err, ErrNoImage)

	out, err := NewRenderer(ProtocolText).Render(img)
	require.NoError(t, err)
	assert.Contains(t, out, "▀")

	out, err = NewRenderer(ProtocolKitty).Render(img)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b")

	out, err = NewRenderer(ProtocolITerm).Render(img)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b")

	out, err = NewRenderer(ProtocolSixel).Render(img)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
