// Package preview turns engine frames into terminal output: shaded half-block
// cells for the console, or a graphics protocol image when the terminal
// speaks one.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
)

// 渲染配置
const (
	DefaultCols = 48
	DefaultRows = 20
)

// ErrNoImage is returned for an empty frame
var ErrNoImage = errors.New("no image to render")

// TerminalType 终端类型
type TerminalType string

const (
	TerminalKitty   TerminalType = "kitty"
	TerminalITerm2  TerminalType = "iterm2"
	TerminalWezTerm TerminalType = "wezterm"
	TerminalGhostty TerminalType = "ghostty"
	TerminalGeneric TerminalType = "generic"
)

// Protocol 图形协议
type Protocol string

const (
	ProtocolKitty Protocol = "kitty"
	ProtocolITerm Protocol = "iterm2"
	ProtocolSixel Protocol = "sixel"
	ProtocolText  Protocol = "text"
)

// ParseProtocol maps a configured name to a protocol; "auto" detects it
// from the environment
func ParseProtocol(name string, getenv func(string) string) (Protocol, error) {
	switch Protocol(strings.ToLower(name)) {
	case "", "auto":
		_, p := Detect(getenv)
		return p, nil
	case ProtocolKitty, ProtocolITerm, ProtocolSixel, ProtocolText:
		return Protocol(strings.ToLower(name)), nil
	}
	return "", fmt.Errorf("unknown preview protocol %q (want auto, text, kitty, iterm2 or sixel)", name)
}

// Detect 检测终端类型并选择图形协议
func Detect(getenv func(string) string) (TerminalType, Protocol) {
	term := strings.ToLower(getenv("TERM"))
	termProgram := strings.ToLower(getenv("TERM_PROGRAM"))

	switch {
	case getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty"):
		return TerminalKitty, ProtocolKitty
	case getenv("GHOSTTY") != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty"):
		return TerminalGhostty, ProtocolKitty
	case termProgram == "iterm.app":
		return TerminalITerm2, ProtocolITerm
	case termProgram == "wezterm":
		// WezTerm 支持 iTerm2 协议
		return TerminalWezTerm, ProtocolITerm
	}

	for _, t := range []string{"xterm-sixel", "mlterm", "yaft"} {
		if strings.Contains(term, t) {
			return TerminalGeneric, ProtocolSixel
		}
	}
	return TerminalGeneric, ProtocolText
}

// RenderError 渲染错误
type RenderError struct {
	Protocol Protocol
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer draws frames into a grid of terminal cells
type Renderer struct {
	Protocol Protocol
	Cols     int
	Rows     int
}

// NewRenderer 创建新的渲染器
func NewRenderer(p Protocol) *Renderer {
	return &Renderer{Protocol: p, Cols: DefaultCols, Rows: DefaultRows}
}

// SetCellSize sets the grid the image is fitted into
func (r *Renderer) SetCellSize(cols, rows int) {
	r.Cols = max(cols, 1)
	r.Rows = max(rows, 1)
}

// Render draws img with the renderer's protocol
func (r *Renderer) Render(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", ErrNoImage
	}

	var b strings.Builder
	var err error
	switch r.Protocol {
	case ProtocolKitty:
		err = rasterm.KittyWriteImage(&b, img, rasterm.KittyImgOpts{
			DstCols: uint32(r.Cols),
			DstRows: uint32(r.Rows),
		})
	case ProtocolITerm:
		err = rasterm.ItermWriteImage(&b, r.fit(img, r.Cols*8, r.Rows*16))
	case ProtocolSixel:
		// Sixel 需要调色板图像
		src := r.fit(img, r.Cols*8, r.Rows*16)
		bounds := src.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, src, bounds.Min)
		err = rasterm.SixelWriteImage(&b, paletted)
	default:
		return r.Text(img), nil
	}
	if err != nil {
		return "", &RenderError{Protocol: r.Protocol, Err: err}
	}
	return b.String(), nil
}

// fit scales img to fit w x h pixels keeping its aspect ratio
func (r *Renderer) fit(img image.Image, w, h int) *image.NRGBA {
	sb := img.Bounds()
	scale := min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	ow := max(int(float64(sb.Dx())*scale), 1)
	oh := max(int(float64(sb.Dy())*scale), 1)
	return imaging.Resize(img, ow, oh, imaging.Box)
}

// Text 使用 ANSI 24 位颜色半块字符渲染：每个单元格上下两个像素
func (r *Renderer) Text(img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	// 行*2，保持比例
	scaled := r.fit(img, r.Cols, r.Rows*2)
	w, h := scaled.Bounds().Dx(), scaled.Bounds().Dy()
	if h%2 == 1 {
		h++
	}

	gray := func(x, y int) uint8 {
		if y >= scaled.Bounds().Dy() {
			return 0
		}
		c := scaled.NRGBAAt(x, y)
		return uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000)
	}

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top, bot := gray(x, y), gray(x, y+1)
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top, top, top, bot, bot, bot)
		}
		b.WriteString("\x1b[0m")
		if y+2 < h {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
