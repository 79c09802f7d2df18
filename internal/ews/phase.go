package ews

// Phase is the processing phase of a channel.  Phases only move forward:
// WaitingTrigger, Triggered, Alarmed.
type Phase int

const (
	WaitingTrigger Phase = iota
	Triggered
	Alarmed
)

func (p Phase) String() string {
	switch p {
	case WaitingTrigger:
		return "waiting"
	case Triggered:
		return "triggered"
	case Alarmed:
		return "alarmed"
	default:
		return "unknown"
	}
}

// Transition describes a phase change.
type Transition struct {
	From, To Phase
	Sample   int     // 1-based sample index
	Time     float64 // seconds from the first sample
	PGD      float64 // m
	Ratio    float64 // STA/LTA ratio
}

// Sink receives phase transitions.  It is called synchronously from Process.
type Sink interface {
	Transition(Transition)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Transition)

func (f SinkFunc) Transition(t Transition) {
	f(t)
}
