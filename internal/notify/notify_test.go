package notify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/notify"
)

type logger struct {
	sync.Mutex
	lines []string
}

func (l *logger) Printf(format string, v ...interface{}) {
	l.Lock()
	defer l.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

type recorder struct {
	err    error
	alerts []notify.Alert
}

func (r *recorder) Notify(a notify.Alert) error {
	r.alerts = append(r.alerts, a)
	return r.err
}

var at = time.Date(2016, time.November, 13, 11, 2, 56, 0, time.UTC)

func TestNewAlert(t *testing.T) {
	tr := ews.Transition{From: ews.WaitingTrigger, To: ews.Triggered, Sample: 1301, Time: 6.5}

	a := notify.NewAlert("NZ_WEL_20_HNZ", at, tr, ews.Report{Phase: ews.Triggered})
	b := notify.NewAlert("NZ_WEL_20_HNZ", at, tr, ews.Report{Phase: ews.Triggered})

	if a.ID == uuid.Nil || a.ID == b.ID {
		t.Errorf("expected distinct IDs got %s %s", a.ID, b.ID)
	}
	if a.Source != "NZ_WEL_20_HNZ" || !a.At.Equal(at) || a.Transition != tr {
		t.Errorf("unexpected alert %+v", a)
	}
}

func TestLog(t *testing.T) {
	l := &logger{}
	n := notify.Log{Logger: l}

	_ = n.Notify(notify.NewAlert("NZ_WEL_20_HNZ", at, ews.Transition{To: ews.Triggered, Ratio: 4.5}, ews.Report{}))
	_ = n.Notify(notify.NewAlert("NZ_WEL_20_HNZ", at, ews.Transition{To: ews.Alarmed, PGD: 0.1}, ews.Report{ExceedanceProbability: 20}))

	if len(l.lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(l.lines))
	}
	if !strings.Contains(l.lines[0], "triggered NZ_WEL_20_HNZ") || !strings.Contains(l.lines[0], "sta/lta 4.50") {
		t.Errorf("unexpected trigger line %s", l.lines[0])
	}
	if !strings.Contains(l.lines[1], "ALARM NZ_WEL_20_HNZ") || !strings.Contains(l.lines[1], "probability 20.00 %") {
		t.Errorf("unexpected alarm line %s", l.lines[1])
	}
}

func TestMulti(t *testing.T) {
	fail := errors.New("unreachable")
	a, b := &recorder{err: fail}, &recorder{}

	err := notify.Multi{a, b}.Notify(notify.Alert{Source: "NZ_WEL_20_HNZ"})
	if !errors.Is(err, fail) {
		t.Errorf("expected the joined error got %v", err)
	}
	if len(a.alerts) != 1 || len(b.alerts) != 1 {
		t.Error("expected every notifier to receive the alert")
	}
}

func TestRun(t *testing.T) {
	l := &logger{}
	r := &recorder{err: errors.New("unreachable")}
	alerts := make(chan notify.Alert, 3)

	for i := 0; i < 3; i++ {
		alerts <- notify.Alert{Source: fmt.Sprintf("NZ_WEL_2%d_HNZ", i)}
	}
	close(alerts)

	notify.Run(context.Background(), alerts, r, l)

	if len(r.alerts) != 3 {
		t.Errorf("expected 3 alerts got %d", len(r.alerts))
	}
	if len(l.lines) != 3 || !strings.Contains(l.lines[2], "NZ_WEL_22_HNZ") {
		t.Errorf("expected the failures to be logged got %v", l.lines)
	}
}

func TestRunCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		notify.Run(ctx, make(chan notify.Alert), &recorder{}, &logger{})
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunDrain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{}
	alerts := make(chan notify.Alert, 3)

	for i := 0; i < 3; i++ {
		alerts <- notify.Alert{Source: fmt.Sprintf("NZ_WEL_2%d_HNZ", i)}
	}

	notify.Run(ctx, alerts, r, &logger{})

	if len(r.alerts) != 3 {
		t.Errorf("expected the queued alerts to be delivered got %d", len(r.alerts))
	}
	if len(alerts) != 0 {
		t.Errorf("expected an empty queue got %d", len(alerts))
	}
}
