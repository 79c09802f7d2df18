package report_test

import (
	"bytes"
	"errors"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/GeoNet/ews/internal/damage"
	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/report"
)

func loc() string {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}

func TestWrite(t *testing.T) {
	in := []struct {
		id      string
		r       ews.Report
		want    []string
		notWant []string
	}{
		{
			id:      loc(),
			r:       ews.Report{Samples: 4000, PGAMax: 0.0123, PGAMaxTime: 12.5},
			want:    []string{"damage state        : EDS", "max pga             : 1.230000e-02 m/s^2 at 12.500 s", "samples             : 4000", ">>> no trigger detected"},
			notWant: []string{"ALARM"},
		},
		{
			id: loc(),
			r: ews.Report{
				Phase: ews.Triggered, Triggered: true, TriggerTime: 6.505,
				PGDMax: 0.0042, PGDMaxTime: 9.1, DriftThreshold: 0.0301,
				ExceedanceProbability: 0.01, ProbabilityThreshold: 12.37,
			},
			want: []string{
				"trigger at          : 6.505 s",
				"max pgd             : 4.200000e-03 m at 9.100 s",
				"probability limit   : 12.37 %",
				">>> ALARM: NOT EXCEEDED",
			},
			notWant: []string{"alarm at", "lead time"},
		},
		{
			id: loc(),
			r: ews.Report{
				Phase: ews.Alarmed, Triggered: true, TriggerTime: 6.505,
				Alarmed: true, AlarmTime: 7.25, PGDAtAlarm: 0.07,
				PGDMax: 0.9, PGDMaxTime: 9.5, LeadTime: 2.25,
				PGAMax: 5.1, PGAMaxTime: 7.0,
				PredictedMedianDrift: 0.0204, DriftThreshold: 0.0301,
				ExceedanceProbability: 12.5, ProbabilityThreshold: 12.37,
			},
			want: []string{
				"alarm at            : 7.250 s",
				"pgd at alarm        : 7.000000e-02 m",
				"probability         : 12.50 %",
				"lead time           : 2.250 s",
				"max pga             : 5.100000e+00 m/s^2 at 7.000 s",
				">>> ALARM: ACTIVE",
			},
		},
	}

	for _, v := range in {
		var b bytes.Buffer
		if err := report.Write(&b, damage.EDS, v.r); err != nil {
			t.Errorf("%s %v", v.id, err)
			continue
		}

		s := b.String()
		for _, w := range v.want {
			if !strings.Contains(s, w) {
				t.Errorf("%s expected %q in\n%s", v.id, w, s)
			}
		}
		for _, w := range v.notWant {
			if strings.Contains(s, w) {
				t.Errorf("%s did not expect %q in\n%s", v.id, w, s)
			}
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteError(t *testing.T) {
	if err := report.Write(failWriter{}, damage.MDS, ews.Report{}); err == nil {
		t.Error("expected the writer error")
	}
}
