// Package notify delivers channel phase changes to operators.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/GeoNet/ews/internal/ews"
)

// Alert is a phase change on one channel.
type Alert struct {
	ID         uuid.UUID
	Source     string    // NET_STA_LOC_CHA
	At         time.Time // wall clock time of the transition sample
	Transition ews.Transition
	Report     ews.Report
}

// NewAlert returns an Alert with a time ordered ID.
func NewAlert(source string, at time.Time, tr ews.Transition, r ews.Report) Alert {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Alert{
		ID:         id,
		Source:     source,
		At:         at,
		Transition: tr,
		Report:     r,
	}
}

// Notifier delivers an Alert.
type Notifier interface {
	Notify(Alert) error
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(string, ...interface{})
}

// Log writes alerts to a Logger.
type Log struct {
	Logger Logger
}

func (l Log) Notify(a Alert) error {
	switch a.Transition.To {
	case ews.Alarmed:
		l.Logger.Printf("%s ALARM %s at %s pgd %.6e m probability %.2f %% (limit %.2f %%)",
			a.ID, a.Source, a.At.Format(time.RFC3339Nano), a.Transition.PGD,
			a.Report.ExceedanceProbability, a.Report.ProbabilityThreshold)
	default:
		l.Logger.Printf("%s %s %s at %s sta/lta %.2f",
			a.ID, a.Transition.To, a.Source, a.At.Format(time.RFC3339Nano), a.Transition.Ratio)
	}

	return nil
}

// Multi delivers to every Notifier, joining any errors.
type Multi []Notifier

func (m Multi) Notify(a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(a); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run delivers alerts until ctx is done or alerts is closed.  Alerts already queued when ctx is
// done are still delivered.  Failed deliveries are logged.
func Run(ctx context.Context, alerts <-chan Alert, n Notifier, l Logger) {
	deliver := func(a Alert) {
		if err := n.Notify(a); err != nil {
			l.Printf("notify %s %s: %v", a.ID, a.Source, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case a, ok := <-alerts:
					if !ok {
						return
					}
					deliver(a)
				default:
					return
				}
			}
		case a, ok := <-alerts:
			if !ok {
				return
			}
			deliver(a)
		}
	}
}
