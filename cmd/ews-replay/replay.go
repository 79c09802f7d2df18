package main

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/monitor"
	"github.com/GeoNet/ews/internal/notify"
	"github.com/GeoNet/ews/internal/report"
	"github.com/GeoNet/ews/internal/stream"
)

func replayText(o options, in io.Reader, out io.Writer, logger *log.Logger) error {
	m, err := ews.New(o.cfg, ews.WithSink(ews.SinkFunc(func(t ews.Transition) {
		logger.Printf("%s -> %s at sample %d (%.3f s) sta/lta %.2f pgd %.6e m", t.From, t.To, t.Sample, t.Time, t.Ratio, t.PGD)
	})))
	if err != nil {
		return err
	}

	err = stream.ReadText(in, func(v float64) error {
		m.Process(o.conv.Acceleration(v))
		return nil
	})
	if err != nil {
		return err
	}

	return report.Write(out, o.cfg.Target, m.Report())
}

func replayRecords(o options, in io.Reader, out io.Writer, logger *log.Logger) error {
	// a record raises at most a trigger and an alarm.
	alerts := make(chan notify.Alert, 2)

	m, err := monitor.New(o.cfg, o.conv, monitor.WithAlerts(alerts), monitor.WithLogger(logger))
	if err != nil {
		return err
	}

	var n notify.Notifier = notify.Log{Logger: logger}

	var skipped int

	err = stream.Records(in, stream.RecordLength, func(raw []byte) error {
		if err := m.Process(raw); err != nil {
			logger.Printf("skipping: %v", err)
			skipped++
		}

		drain(alerts, n, logger)

		return nil
	})
	if err != nil {
		return err
	}

	r := m.Reports()
	if len(r) == 0 {
		return fmt.Errorf("no usable records, %d skipped", skipped)
	}

	for _, c := range r {
		if _, err := fmt.Fprintf(out, "%s %s to %s\n", c.Source, c.Start.Format(time.RFC3339Nano), c.Last.Format(time.RFC3339Nano)); err != nil {
			return err
		}
		if err := report.Write(out, o.cfg.Target, c.Report); err != nil {
			return err
		}
	}

	return nil
}

// drain delivers the queued alerts without waiting for more.
func drain(alerts <-chan notify.Alert, n notify.Notifier, logger *log.Logger) {
	for {
		select {
		case a := <-alerts:
			if err := n.Notify(a); err != nil {
				logger.Printf("notify %s %s: %v", a.ID, a.Source, err)
			}
		default:
			return
		}
	}
}
