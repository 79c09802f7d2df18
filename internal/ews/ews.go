/*
Package ews is an on-site earthquake early-warning engine for a single accelerometer channel.

A Machine consumes one acceleration sample (m/s^2) at a time.  While waiting it high-pass
filters the signal and feeds an STA/LTA onset detector.  Once triggered it double integrates
the filtered acceleration, high-pass filtering after each integration to remove drift, and
tracks the peak ground displacement (PGD).  Peak ground acceleration (PGA) is tracked from
the first sample.  The first PGD whose drift exceedance probability
reaches the building's threshold raises the alarm.  An alarm is never withdrawn.

Each sample costs the same fixed amount of work and nothing is allocated after New.
A Machine is not safe for concurrent use; independent Machines share no mutable state.
*/
package ews

import (
	"errors"
	"math"

	"github.com/GeoNet/ews/internal/biquad"
	"github.com/GeoNet/ews/internal/damage"
	"github.com/GeoNet/ews/internal/integrate"
	"github.com/GeoNet/ews/internal/onset"
)

// Machine is the processing state for one channel.
type Machine struct {
	cfg     Config
	table   damage.Table
	model   damage.Model
	sink    Sink
	profile damage.Profile

	dt float64
	hp biquad.Coefficients

	acc, vel, disp         biquad.State
	velocity, displacement integrate.Trapezoid
	detector               *onset.Detector

	phase    Phase
	samples  int
	trigger  int
	alarm    int
	pgd      float64
	pgdMax   float64
	pgdMaxAt int
	pgdAlarm float64
	pgaMax   float64
	pgaMaxAt int
}

// Option configures a Machine.
type Option func(*Machine)

// WithTable sets the damage profile table, the default is damage.DefaultTable.
func WithTable(t damage.Table) Option {
	return func(m *Machine) {
		m.table = t
	}
}

// WithModel sets the alarm model, the default is damage.DefaultModel.
func WithModel(d damage.Model) Option {
	return func(m *Machine) {
		m.model = d
	}
}

// WithSink sets a receiver for phase transitions.
func WithSink(s Sink) Option {
	return func(m *Machine) {
		m.sink = s
	}
}

// New returns a Machine waiting for a trigger.  An unusable cfg returns a *ConfigError.
func New(cfg Config, opts ...Option) (*Machine, error) {
	m := &Machine{
		cfg:     cfg,
		table:   damage.DefaultTable(),
		model:   damage.DefaultModel,
		trigger: -1,
		alarm:   -1,
	}

	for _, o := range opts {
		o(m)
	}

	for _, v := range []struct {
		field string
		value float64
	}{
		{"SamplingRate", cfg.SamplingRate},
		{"STASeconds", cfg.STASeconds},
		{"LTASeconds", cfg.LTASeconds},
		{"Threshold", cfg.Threshold},
		{"HighPassCutoff", cfg.HighPassCutoff},
		{"Model.Sigma", m.model.Sigma},
	} {
		if err := positive(v.field, v.value); err != nil {
			return nil, err
		}
	}

	var err error

	m.hp, err = biquad.HighPass(cfg.SamplingRate, cfg.HighPassCutoff)
	if err != nil {
		return nil, &ConfigError{Field: "HighPassCutoff", Err: err}
	}

	m.detector, err = onset.New(cfg.SamplingRate, cfg.STASeconds, cfg.LTASeconds, cfg.Threshold)
	switch {
	case errors.Is(err, onset.ErrSTAWindow):
		return nil, &ConfigError{Field: "STASeconds", Err: err}
	case err != nil:
		return nil, &ConfigError{Field: "LTASeconds", Err: err}
	}

	if cfg.Stories <= 0 {
		return nil, &ConfigError{Field: "Stories", Err: errors.New("must be at least one")}
	}

	if m.table == nil {
		return nil, &ConfigError{Field: "Typology", Err: errors.New("no damage table")}
	}

	m.profile, err = m.table.Profile(cfg.Typology, cfg.Stories)
	if err != nil {
		return nil, &ConfigError{Field: "Typology", Err: err}
	}

	if _, _, err = m.profile.Thresholds(cfg.Target); err != nil {
		return nil, &ConfigError{Field: "Target", Err: err}
	}

	m.dt = 1.0 / cfg.SamplingRate

	return m, nil
}

// Process consumes one acceleration sample (m/s^2) and returns the phase after it.
// Non-finite input is not checked and propagates to PGD.
func (m *Machine) Process(a float64) Phase {
	m.samples++

	x := m.hp.Apply(&m.acc, a)

	switch pga := math.Abs(x); {
	case math.IsNaN(m.pgaMax):
	case math.IsNaN(pga) || pga > m.pgaMax:
		m.pgaMax, m.pgaMaxAt = pga, m.samples
	}

	if m.phase == WaitingTrigger {
		if m.detector.Feed(x) {
			m.trigger = m.samples
			m.move(Triggered)
		}
		// integration starts with the next sample.
		return m.phase
	}

	v := m.hp.Apply(&m.vel, m.velocity.Update(x, m.dt))
	d := m.hp.Apply(&m.disp, m.displacement.Update(v, m.dt))

	m.pgd = math.Abs(d)

	switch {
	case math.IsNaN(m.pgdMax):
	case math.IsNaN(m.pgd) || m.pgd > m.pgdMax:
		m.pgdMax, m.pgdMaxAt = m.pgd, m.samples
	}

	if m.phase == Triggered && m.model.Evaluate(m.pgd, m.profile, m.cfg.Target) {
		m.alarm = m.samples
		m.pgdAlarm = m.pgd
		m.move(Alarmed)
	}

	return m.phase
}

func (m *Machine) move(to Phase) {
	from := m.phase
	m.phase = to

	if m.sink == nil {
		return
	}

	m.sink.Transition(Transition{
		From:   from,
		To:     to,
		Sample: m.samples,
		Time:   m.seconds(m.samples),
		PGD:    m.pgd,
		Ratio:  m.detector.Ratio(),
	})
}

func (m *Machine) seconds(index int) float64 {
	return float64(index) / m.cfg.SamplingRate
}

// Config returns the configuration the Machine was built with.
func (m *Machine) Config() Config {
	return m.cfg
}

// Profile is the damage profile selected for the building.
func (m *Machine) Profile() damage.Profile {
	return m.profile
}

// Phase is the current processing phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Samples is the number of samples processed.
func (m *Machine) Samples() int {
	return m.samples
}

// TriggerIndex is the 1-based index of the triggering sample, -1 before a trigger.
func (m *Machine) TriggerIndex() int {
	return m.trigger
}

// AlarmIndex is the 1-based index of the alarm sample, -1 before an alarm.
func (m *Machine) AlarmIndex() int {
	return m.alarm
}

// PGD is the absolute filtered displacement (m) of the last sample.
func (m *Machine) PGD() float64 {
	return m.pgd
}

// PGDMax is the largest PGD since the trigger.
func (m *Machine) PGDMax() float64 {
	return m.pgdMax
}

// PGAMax is the largest absolute high-pass filtered acceleration (m/s^2) in all phases.
func (m *Machine) PGAMax() float64 {
	return m.pgaMax
}

// PGDAtAlarm is the PGD that raised the alarm.
func (m *Machine) PGDAtAlarm() float64 {
	return m.pgdAlarm
}

// Ratio is the last evaluated STA/LTA ratio.
func (m *Machine) Ratio() float64 {
	return m.detector.Ratio()
}
