package ews

import (
	"fmt"
	"math"

	"github.com/GeoNet/ews/internal/damage"
)

// Gravity converts acceleration in g to m/s^2.
const Gravity = 9.81

// Config holds the per channel processing parameters.
type Config struct {
	SamplingRate   float64 // Hz
	STASeconds     float64
	LTASeconds     float64
	Threshold      float64 // STA/LTA trigger ratio
	HighPassCutoff float64 // Hz

	Typology damage.Typology
	Stories  int
	Target   damage.State
}

// DefaultConfig returns the parameters used for a 200 Hz strong motion channel in a low rise
// reinforced concrete building.
func DefaultConfig() Config {
	return Config{
		SamplingRate:   200.0,
		STASeconds:     0.5,
		LTASeconds:     6.0,
		Threshold:      4.0,
		HighPassCutoff: 0.075,
		Typology:       damage.RC,
		Stories:        3,
		Target:         damage.EDS,
	}
}

// ConfigError is returned by New for an unusable Config.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0.0 {
		return &ConfigError{Field: field, Err: fmt.Errorf("%g must be a positive number", v)}
	}
	return nil
}
