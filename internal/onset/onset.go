/*
Package onset declares the arrival of seismic shaking using the ratio of a short term average
(STA) to a long term average (LTA) of the squared, high-pass filtered acceleration.

Both averages are kept over fixed length windows with incrementally maintained sums so each
sample costs the same regardless of the window lengths.  The detector is one-shot: once it has
triggered it ignores all further input.
*/
package onset

import (
	"errors"
	"fmt"
	"math"
)

// ErrSTAWindow is returned by New when the STA window is shorter than one sample.
var ErrSTAWindow = errors.New("sta window is shorter than one sample")

// quiet is the LTA mean below which the ratio is forced to zero.
const quiet = 1e-15

// Detector is a STA/LTA onset detector for a single channel.
type Detector struct {
	sta, lta  *window
	threshold float64

	absorbed  int
	ratio     float64
	triggered bool
}

// New returns a Detector for sampling rate fs with STA and LTA windows given in seconds.
// Window lengths are rounded to the nearest sample.
func New(fs, staSeconds, ltaSeconds, threshold float64) (*Detector, error) {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"sampling rate", fs},
		{"sta seconds", staSeconds},
		{"lta seconds", ltaSeconds},
		{"threshold", threshold},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value <= 0.0 {
			return nil, fmt.Errorf("invalid %s %g: must be positive", v.name, v.value)
		}
	}

	staLen := int(math.Round(staSeconds * fs))
	ltaLen := int(math.Round(ltaSeconds * fs))

	switch {
	case staLen < 1:
		return nil, fmt.Errorf("%w: %gs at %g Hz", ErrSTAWindow, staSeconds, fs)
	case ltaLen < staLen:
		return nil, fmt.Errorf("lta window (%d samples) is shorter than the sta window (%d samples)", ltaLen, staLen)
	}

	return &Detector{
		sta:       newWindow(staLen),
		lta:       newWindow(ltaLen),
		threshold: threshold,
	}, nil
}

// Feed adds a filtered sample.  It returns true only for the sample at which the ratio
// first reaches the threshold.  Once triggered Feed does nothing and returns false.
func (d *Detector) Feed(x float64) bool {
	if d.triggered {
		return false
	}

	e := x * x

	d.sta.Push(e)
	d.lta.Push(e)
	d.absorbed++

	// both windows must be full.
	if d.absorbed < d.lta.Len() {
		return false
	}

	staMean := d.sta.Sum() / float64(d.sta.Len())
	ltaMean := d.lta.Sum() / float64(d.lta.Len())

	switch {
	case ltaMean > quiet:
		d.ratio = staMean / ltaMean
	default:
		d.ratio = 0.0
	}

	if d.ratio >= d.threshold {
		d.triggered = true
		return true
	}

	return false
}

// Ratio is the last evaluated STA/LTA ratio, 0 until the windows are full.
func (d *Detector) Ratio() float64 {
	return d.ratio
}

// Triggered reports whether the detector has latched.
func (d *Detector) Triggered() bool {
	return d.triggered
}

// Threshold is the trigger ratio.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// STALen is the short term window length in samples.
func (d *Detector) STALen() int {
	return d.sta.Len()
}

// LTALen is the long term window length in samples.
func (d *Detector) LTALen() int {
	return d.lta.Len()
}

// Absorbed is the number of samples fed before the detector latched.
func (d *Detector) Absorbed() int {
	return d.absorbed
}
