package sim

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/HaiFongPan/reconsole/internal/values"
)

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// correct applies the scan and noise corrections of the snapshot to raw data
func correct(raw plane, snap values.Snapshot) plane {
	p := raw.clone()
	l := snap.Limits()
	if snap.ScanVertEnable && l.ScanMax > 0 {
		removeStripes(p, float64(snap.ScanVert)/float64(l.ScanMax), true)
	}
	if snap.ScanHorEnable && l.ScanMax > 0 {
		removeStripes(p, float64(snap.ScanHor)/float64(l.ScanMax), false)
	}
	if snap.OutlierEnable {
		removeOutliers(p, float64(snap.NoiseMax)*32)
	}
	if snap.LogView {
		scale := values.IntensityMax / math.Log1p(values.IntensityMax)
		for i, v := range p.pix {
			p.pix[i] = math.Log1p(v) * scale
		}
	}
	return p
}

// removeStripes subtracts a fraction of the known stripe pattern
func removeStripes(p plane, strength float64, vertical bool) {
	cols, rows := stripes(p.n)
	for y := 0; y < p.n; y++ {
		for x := 0; x < p.n; x++ {
			off := rows[y]
			if vertical {
				off = cols[x]
			}
			p.set(x, y, clampIntensity(p.at(x, y)-strength*off))
		}
	}
}

// removeOutliers replaces pixels that stand more than threshold above their
// 3x3 neighbourhood mean
func removeOutliers(p plane, threshold float64) {
	src := p.clone()
	for y := 1; y < p.n-1; y++ {
		for x := 1; x < p.n-1; x++ {
			sum := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx != 0 || dy != 0 {
						sum += src.at(x+dx, y+dy)
					}
				}
			}
			mean := sum / 8
			if src.at(x, y)-mean > threshold {
				p.set(x, y, mean)
			}
		}
	}
}

// enhance blends Sobel edges over img at the given ratio
func enhance(img image.Image, snap values.Snapshot) image.Image {
	opts := &imaging.ConvolveOptions{Abs: snap.AbsEnhance}
	if !snap.AbsEnhance {
		opts.Bias = 128
	}
	var edges *image.NRGBA
	switch {
	case snap.XEnhance && snap.YEnhance:
		ex := imaging.Convolve3x3(img, sobelX, opts)
		ey := imaging.Convolve3x3(img, sobelY, opts)
		edges = imaging.Overlay(ex, ey, image.Pt(0, 0), 0.5)
	case snap.XEnhance:
		edges = imaging.Convolve3x3(img, sobelX, opts)
	case snap.YEnhance:
		edges = imaging.Convolve3x3(img, sobelY, opts)
	default:
		return img
	}
	return imaging.Overlay(img, edges, image.Pt(0, 0), snap.EnhanceRatio)
}

// zoom magnifies about the centre shifted by pan, keeping the frame size
func zoom(img image.Image, z float64, pan image.Point) (image.Image, image.Point) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	zw := max(1, int(math.Round(float64(w)*z)))
	zh := max(1, int(math.Round(float64(h)*z)))
	if zw == w && zh == h {
		return img, image.Point{}
	}
	scaled := imaging.Resize(img, zw, zh, imaging.Linear)
	if zw < w || zh < h {
		return imaging.PasteCenter(imaging.New(w, h, color.Black), scaled), image.Point{}
	}
	x0 := clamp((zw-w)/2+pan.X, 0, zw-w)
	y0 := clamp((zh-h)/2+pan.Y, 0, zh-h)
	used := image.Pt(x0-(zw-w)/2, y0-(zh-h)/2)
	return imaging.Crop(scaled, image.Rect(x0, y0, x0+w, y0+h)), used
}

// render runs the preview pipeline for one page
func render(page plane, snap values.Snapshot, inset *plane, pan image.Point) (image.Image, image.Point) {
	p := correct(page, snap)
	var img image.Image = p.gray(snap.Window, snap.Level)
	img = enhance(img, snap)
	if snap.VertFlip {
		img = imaging.FlipV(img)
	}
	if snap.HorFlip {
		img = imaging.FlipH(img)
	}
	if inset != nil {
		small := imaging.Resize(correct(*inset, snap).gray(snap.Window, snap.Level), p.n/4, p.n/4, imaging.Box)
		img = imaging.Overlay(img, small, image.Pt(p.n-p.n/4, 0), 1)
	}
	return zoom(img, snap.Zoom, pan)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
