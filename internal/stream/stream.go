// Package stream converts recorded or streamed strong motion data into acceleration samples.
package stream

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/kit/seis/ms"
)

// Units of the raw sample values.
type Units string

const (
	Counts Units = "counts" // digitiser counts, divided by Gain
	G      Units = "g"
	MS2    Units = "ms2" // m/s^2
)

// ParseUnits returns the Units named by s.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case Counts, G, MS2:
		return u, nil
	default:
		return "", fmt.Errorf("unknown units %q", s)
	}
}

// Config describes how raw values convert to m/s^2.
type Config struct {
	Gain  float64 // counts per m/s^2, Counts only
	Units Units
}

// Validate returns an error if c cannot convert values.
func (c Config) Validate() error {
	switch c.Units {
	case Counts:
		if !(c.Gain > 0.0) || math.IsInf(c.Gain, 0) {
			return fmt.Errorf("invalid gain %g: counts need a positive gain", c.Gain)
		}
	case G, MS2:
	default:
		return fmt.Errorf("unknown units %q", string(c.Units))
	}

	return nil
}

// Acceleration converts a raw value to m/s^2.
func (c Config) Acceleration(v float64) float64 {
	switch c.Units {
	case Counts:
		return v / c.Gain
	case G:
		return v * ews.Gravity
	default:
		return v
	}
}

// Packet is a block of contiguous samples from one source.
type Packet struct {
	Source     string // NET_STA_LOC_CHA
	Start      time.Time
	SampleRate float64
	Samples    []float64
}

// End is the time of the last sample.
func (p Packet) End() time.Time {
	if len(p.Samples) == 0 || !(p.SampleRate > 0.0) {
		return p.Start
	}

	return p.Start.Add(time.Duration(float64(len(p.Samples)-1) * float64(time.Second) / p.SampleRate))
}

// Decode unpacks a single miniSEED record.
func Decode(raw []byte) (Packet, error) {
	r, err := ms.NewRecord(raw)
	if err != nil {
		return Packet{}, err
	}

	samples, err := r.Float64s()
	if err != nil {
		return Packet{}, fmt.Errorf("%s: %w", r.SrcName(false), err)
	}

	return Packet{
		Source:     r.SrcName(false),
		Start:      r.StartTime(),
		SampleRate: r.SampleRate(),
		Samples:    samples,
	}, nil
}

// Gap returns true if next does not follow last at sampling rate fs.
// A gap signals that the channel processing must be reset.
func Gap(last, next time.Time, fs float64) bool {
	return math.Abs(next.Sub(last).Seconds()-1.0/fs) > (0.5 / fs)
}

// Overlap returns the number of leading samples of p at or before last, to within half a sample.
func Overlap(last time.Time, p Packet) int {
	if !(p.SampleRate > 0.0) {
		return 0
	}

	n := int(math.Floor(last.Sub(p.Start).Seconds()*p.SampleRate+0.5)) + 1
	switch {
	case n < 0:
		return 0
	case n > len(p.Samples):
		return len(p.Samples)
	default:
		return n
	}
}

// Skip returns p without its first n samples.
func (p Packet) Skip(n int) Packet {
	if n <= 0 {
		return p
	}
	if n > len(p.Samples) {
		n = len(p.Samples)
	}

	p.Start = p.Start.Add(time.Duration(float64(n) * float64(time.Second) / p.SampleRate))
	p.Samples = p.Samples[n:]

	return p
}
