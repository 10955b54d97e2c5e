package sim

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// plane is a square intensity image on the detector scale [0, 65535]
type plane struct {
	n   int
	pix []float64
}

func newPlane(n int) plane {
	return plane{n: n, pix: make([]float64, n*n)}
}

func (p plane) at(x, y int) float64 { return p.pix[y*p.n+x] }

func (p plane) set(x, y int, v float64) { p.pix[y*p.n+x] = v }

func (p plane) clone() plane {
	out := newPlane(p.n)
	copy(out.pix, p.pix)
	return out
}

// fieldOfView is the simulated object diameter in millimetres
const fieldOfView = 100.0

const (
	baseline  = 2000.0
	density   = 40000.0
	hotPixel  = 65535.0
	stripeAmp = 3000.0
)

type ellipse struct {
	value, a, b, x0, y0, phi float64
}

// head-like test object, coordinates normalised to [-1, 1]
var head = []ellipse{
	{1, .69, .92, 0, 0, 0},
	{-.8, .6624, .874, 0, -.0184, 0},
	{-.2, .11, .31, .22, 0, -18},
	{-.2, .16, .41, -.22, 0, 18},
	{.1, .21, .25, 0, .35, 0},
	{.1, .046, .046, 0, .1, 0},
	{.1, .046, .046, 0, -.1, 0},
	{.1, .046, .023, -.08, -.605, 0},
	{.1, .023, .023, 0, -.606, 0},
	{.1, .023, .046, .06, -.605, 0},
}

func (e ellipse) contains(x, y float64) bool {
	phi := e.phi * math.Pi / 180
	dx, dy := x-e.x0, y-e.y0
	c, s := math.Cos(phi), math.Sin(phi)
	u := (dx*c + dy*s) / e.a
	v := (-dx*s + dy*c) / e.b
	return u*u+v*v <= 1
}

// object renders the test object plus calibration phantoms. Phantom centres
// and radii are millimetres from the rotation axis.
func object(n int, resolution, contrast []values.Phantom) plane {
	p := newPlane(n)
	toNorm := func(mm float64) float64 { return mm / (fieldOfView / 2) }

	for y := 0; y < n; y++ {
		ny := 1 - 2*(float64(y)+0.5)/float64(n)
		for x := 0; x < n; x++ {
			nx := 2*(float64(x)+0.5)/float64(n) - 1
			d := 0.0
			for _, e := range head {
				if e.contains(nx, ny) {
					d += e.value
				}
			}
			for _, ph := range contrast {
				if math.Hypot(nx-toNorm(ph.CenterX), ny-toNorm(ph.CenterY)) <= toNorm(ph.Radius) {
					d += ph.Target / 100
				}
			}
			for _, ph := range resolution {
				if math.Hypot(nx-toNorm(ph.CenterX), ny-toNorm(ph.CenterY)) <= toNorm(ph.Radius) {
					mm := nx * fieldOfView / 2
					if math.Sin(2*math.Pi*ph.Target*mm) > 0 {
						d += 0.5
					}
				}
			}
			p.set(x, y, baseline+math.Max(0, d)*density)
		}
	}
	return p
}

// gainNoise is the noise sigma per gain index: low gain is the noisiest
var gainNoise = []float64{900, 400, 150}

// acquire degrades the object the way the detector would: stripes from
// uneven column and row response, hot pixels and gain dependent noise.
func acquire(obj plane, gain int, seed uint64) plane {
	p := obj.clone()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	sigma := gainNoise[len(gainNoise)-1]
	if gain >= 0 && gain < len(gainNoise) {
		sigma = gainNoise[gain]
	}
	cols, rows := stripes(p.n)
	for y := 0; y < p.n; y++ {
		for x := 0; x < p.n; x++ {
			v := p.at(x, y) + cols[x] + rows[y] + rng.NormFloat64()*sigma
			if (x*7919+y*104729)%211 == 0 {
				v = hotPixel
			}
			p.set(x, y, clampIntensity(v))
		}
	}
	return p
}

// stripes returns the fixed column and row offsets of the simulated detector
func stripes(n int) (cols, rows []float64) {
	cols = make([]float64, n)
	rows = make([]float64, n)
	for i := 0; i < n; i++ {
		if i%9 == 0 {
			cols[i] = stripeAmp
		}
		if i%13 == 0 {
			rows[i] = stripeAmp
		}
	}
	return cols, rows
}

// radon computes line integrals through p at angle deg for every detector bin
func radon(p plane, deg float64) []float64 {
	th := deg * math.Pi / 180
	c, s := math.Cos(th), math.Sin(th)
	half := float64(p.n) / 2
	out := make([]float64, p.n)
	for t := 0; t < p.n; t++ {
		u := float64(t) + 0.5 - half
		sum := 0.0
		for k := 0; k < p.n; k++ {
			v := float64(k) + 0.5 - half
			x := int(math.Floor(u*c - v*s + half))
			y := int(math.Floor(u*s + v*c + half))
			if x >= 0 && x < p.n && y >= 0 && y < p.n {
				sum += p.at(x, y) - baseline
			}
		}
		out[t] = sum
	}
	return out
}

// projection renders the detector image at one angle
func projection(p plane, deg float64) plane {
	line := radon(p, deg)
	return fromLines([][]float64{line}, p.n)
}

// sinogram stacks projections over half a turn
func sinogram(p plane) plane {
	lines := make([][]float64, p.n)
	for i := range lines {
		lines[i] = radon(p, 180*float64(i)/float64(p.n))
	}
	return fromLines(lines, p.n)
}

// fromLines scales line integrals back to the detector range and stretches
// them to an n by n plane
func fromLines(lines [][]float64, n int) plane {
	peak := 0.0
	for _, l := range lines {
		for _, v := range l {
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 {
		peak = 1
	}
	out := newPlane(n)
	for y := 0; y < n; y++ {
		l := lines[y*len(lines)/n]
		for x := 0; x < n; x++ {
			out.set(x, y, baseline+l[x]/peak*density)
		}
	}
	return out
}

func clampIntensity(v float64) float64 {
	return math.Max(values.IntensityMin, math.Min(values.IntensityMax, v))
}

// gray maps the plane through a window/level transfer into an 8-bit image
func (p plane) gray(window, level int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.n, p.n))
	w := math.Max(1, float64(window))
	lo := float64(level) - w/2
	for y := 0; y < p.n; y++ {
		for x := 0; x < p.n; x++ {
			t := (p.at(x, y) - lo) / w
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(255 * math.Max(0, math.Min(1, t))))})
		}
	}
	return img
}
