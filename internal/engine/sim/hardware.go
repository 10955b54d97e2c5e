package sim

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/values"
)

var laplacian = [9]float64{0, 1, 0, 1, -4, 1, 0, 1, 0}

// Hardware simulates the bench's focus stage and source
type Hardware struct {
	opts  Options
	scout plane
	gray  *image.Gray
}

var _ engine.Hardware = (*Hardware)(nil)

// NewHardware creates a bench looking at the test object
func NewHardware(opts Options) *Hardware {
	opts = opts.withDefaults()
	scout := acquire(object(opts.PreviewSize, nil, nil), 1, opts.Seed)
	return &Hardware{opts: opts, scout: scout, gray: scout.gray(values.IntensityMax, values.IntensityMax/2)}
}

// sharpness is the variance of the Laplacian of the scout seen at distance d
func (h *Hardware) sharpness(d float64) float64 {
	sigma := math.Abs(d-h.opts.FocusDistance)/20 + 0.05
	blurred := imaging.Blur(h.gray, sigma)
	edges := imaging.Convolve3x3(blurred, laplacian, &imaging.ConvolveOptions{Abs: true})
	px := make([]float64, 0, len(edges.Pix)/4)
	for i := 0; i < len(edges.Pix); i += 4 {
		px = append(px, float64(edges.Pix[i]))
	}
	return stat.Variance(px, nil)
}

// AutoFocus sweeps the stage and returns the sharpest distance. A coarse
// sweep over twice the nominal focus is refined around the best candidate.
func (h *Hardware) AutoFocus(ctx context.Context) (float64, error) {
	best, bestScore := 0.0, -1.0
	sweep := func(from, to float64, n int) error {
		for i := 0; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := from + (to-from)*float64(i)/float64(n)
			if d < 0 {
				continue
			}
			if s := h.sharpness(d); s > bestScore {
				best, bestScore = d, s
			}
		}
		return nil
	}

	span := 2 * h.opts.FocusDistance
	if err := sweep(0, span, 16); err != nil {
		return 0, err
	}
	step := span / 16
	if err := sweep(best-step, best+step, 16); err != nil {
		return 0, err
	}
	logrus.Infof("sim: auto focus settled at %.2f mm", best)
	return math.Round(best*100) / 100, nil
}

// AutoLight chooses window and level from the scout statistics: the level
// at the mean intensity and the window spanning four standard deviations.
func (h *Hardware) AutoLight(ctx context.Context) (engine.Light, error) {
	if err := ctx.Err(); err != nil {
		return engine.Light{}, err
	}
	mean, std := stat.MeanStdDev(h.scout.pix, nil)
	l := engine.Light{
		Window: clamp(int(math.Round(4*std)), 1, values.IntensityMax),
		Level:  clamp(int(math.Round(mean)), values.IntensityMin, values.IntensityMax),
	}
	logrus.Infof("sim: auto light window %d level %d", l.Window, l.Level)
	return l, nil
}
