package ews

// Report summarises a channel.  Times are seconds from the first sample.
// Alarm fields and LeadTime are zero unless Alarmed.
type Report struct {
	Phase   Phase
	Samples int

	Triggered   bool
	TriggerTime float64

	Alarmed    bool
	AlarmTime  float64
	PGDAtAlarm float64

	PGDMax     float64
	PGDMaxTime float64

	PGAMax     float64 // m/s^2, from the first sample
	PGAMaxTime float64

	// evaluated at PGDAtAlarm when alarmed, otherwise at PGDMax.
	PredictedMedianDrift  float64
	DriftThreshold        float64
	ExceedanceProbability float64
	ProbabilityThreshold  float64

	LeadTime float64 // PGDMaxTime - AlarmTime
}

// Report returns the current summary.  It can be called at any point in the stream.
func (m *Machine) Report() Report {
	r := Report{
		Phase:     m.phase,
		Samples:   m.samples,
		Triggered: m.trigger > 0,
		Alarmed:   m.alarm > 0,
		PGDMax:    m.pgdMax,
		PGAMax:    m.pgaMax,
	}

	// validated by New.
	r.DriftThreshold, r.ProbabilityThreshold, _ = m.profile.Thresholds(m.cfg.Target)

	if r.Triggered {
		r.TriggerTime = m.seconds(m.trigger)
	}

	if m.pgaMaxAt > 0 {
		r.PGAMaxTime = m.seconds(m.pgaMaxAt)
	}

	if m.pgdMaxAt > 0 {
		r.PGDMaxTime = m.seconds(m.pgdMaxAt)
	}

	pgd := m.pgdMax

	if r.Alarmed {
		r.AlarmTime = m.seconds(m.alarm)
		r.PGDAtAlarm = m.pgdAlarm
		r.LeadTime = r.PGDMaxTime - r.AlarmTime
		pgd = m.pgdAlarm
	}

	r.PredictedMedianDrift = m.model.MedianDrift(pgd)
	r.ExceedanceProbability = m.model.ExceedanceProbability(pgd, r.DriftThreshold)

	return r
}
