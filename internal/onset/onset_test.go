package onset_test

import (
	"errors"
	"math"
	"runtime"
	"strconv"
	"testing"

	"github.com/GeoNet/ews/internal/onset"
)

func loc() string {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}

func TestNew(t *testing.T) {
	in := []struct {
		id                  string
		fs, sta, lta, limit float64
		staLen, ltaLen      int
		ok                  bool
	}{
		{id: loc(), fs: 200, sta: 0.5, lta: 6, limit: 4, staLen: 100, ltaLen: 1200, ok: true},
		{id: loc(), fs: 100, sta: 1, lta: 1, limit: 1, staLen: 100, ltaLen: 100, ok: true},
		{id: loc(), fs: 100, sta: 0.026, lta: 0.5, limit: 3, staLen: 3, ltaLen: 50, ok: true},
		{id: loc(), fs: 100, sta: 0.004, lta: 1, limit: 3},
		{id: loc(), fs: 100, sta: 2, lta: 1, limit: 3},
		{id: loc(), fs: 0, sta: 0.5, lta: 6, limit: 4},
		{id: loc(), fs: 200, sta: -0.5, lta: 6, limit: 4},
		{id: loc(), fs: 200, sta: 0.5, lta: 0, limit: 4},
		{id: loc(), fs: 200, sta: 0.5, lta: 6, limit: 0},
		{id: loc(), fs: 200, sta: 0.5, lta: math.NaN(), limit: 4},
		{id: loc(), fs: math.Inf(1), sta: 0.5, lta: 6, limit: 4},
	}

	for _, v := range in {
		d, err := onset.New(v.fs, v.sta, v.lta, v.limit)
		switch {
		case v.ok && err != nil:
			t.Errorf("%s unexpected error %v", v.id, err)
		case !v.ok && err == nil:
			t.Errorf("%s expected an error", v.id)
		case v.ok:
			if d.STALen() != v.staLen {
				t.Errorf("%s expected sta length %d got %d", v.id, v.staLen, d.STALen())
			}
			if d.LTALen() != v.ltaLen {
				t.Errorf("%s expected lta length %d got %d", v.id, v.ltaLen, d.LTALen())
			}
			if d.Triggered() || d.Absorbed() != 0 || d.Ratio() != 0 {
				t.Errorf("%s expected a detector at rest", v.id)
			}
		}
	}
}

func TestNewSTAWindow(t *testing.T) {
	if _, err := onset.New(100, 0.004, 1, 3); !errors.Is(err, onset.ErrSTAWindow) {
		t.Errorf("expected ErrSTAWindow got %v", err)
	}

	if _, err := onset.New(100, 2, 1, 3); err == nil || errors.Is(err, onset.ErrSTAWindow) {
		t.Errorf("expected an lta window error got %v", err)
	}
}

func TestWarmUp(t *testing.T) {
	d, err := onset.New(100, 0.1, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	n := d.LTALen()

	for i := 1; i <= n; i++ {
		got := d.Feed(1000.0)
		switch {
		case i < n && got:
			t.Fatalf("triggered at sample %d before the lta window (%d) was full", i, n)
		case i < n && d.Ratio() != 0:
			t.Fatalf("ratio evaluated at sample %d before the lta window was full", i)
		case i == n && !got:
			t.Fatalf("expected a trigger at sample %d ratio %g", i, d.Ratio())
		}
	}

	if d.Ratio() != 1.0 {
		t.Errorf("expected ratio 1 for a constant signal got %g", d.Ratio())
	}
}

func TestLatch(t *testing.T) {
	d, err := onset.New(100, 0.1, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < d.LTALen(); i++ {
		if d.Feed(0.001) {
			t.Fatalf("unexpected trigger during quiet input at %d", i)
		}
	}

	var count int
	for i := 0; i < 500; i++ {
		if d.Feed(10.0 * float64(i+1)) {
			count++
		}
	}

	if count != 1 {
		t.Errorf("expected exactly one trigger got %d", count)
	}
	if !d.Triggered() {
		t.Error("expected the detector to stay triggered")
	}

	absorbed, ratio := d.Absorbed(), d.Ratio()
	for i := 0; i < 100; i++ {
		if d.Feed(1e6) {
			t.Fatal("latched detector reported a second trigger")
		}
	}
	if d.Absorbed() != absorbed || d.Ratio() != ratio {
		t.Error("latched detector changed state")
	}
}

// zeros fill the lta window, a constant amplitude then fills the sta window.
func TestRatioClosedForm(t *testing.T) {
	d, err := onset.New(100, 0.25, 2, 1e9)
	if err != nil {
		t.Fatal(err)
	}

	staLen, ltaLen := d.STALen(), d.LTALen()
	const a = 2.0

	for i := 0; i < ltaLen; i++ {
		d.Feed(0)
	}

	if d.Ratio() != 0 {
		t.Errorf("expected the quiet guard to give ratio 0 got %g", d.Ratio())
	}

	for k := 1; k <= staLen; k++ {
		d.Feed(a)

		e := float64(k) * a * a
		want := (e / float64(staLen)) / (e / float64(ltaLen))

		if d.Ratio() != want {
			t.Fatalf("after %d samples expected ratio %g got %g", k, want, d.Ratio())
		}
	}

	if math.Abs(d.Ratio()-float64(ltaLen)/float64(staLen)) > 1e-12 {
		t.Errorf("expected ratio %g got %g", float64(ltaLen)/float64(staLen), d.Ratio())
	}

	// the zeros now slide out of the sta window as well.
	for k := 1; k <= ltaLen-staLen; k++ {
		d.Feed(a)
	}

	if math.Abs(d.Ratio()-1.0) > 1e-12 {
		t.Errorf("expected ratio 1 once both windows hold the constant got %g", d.Ratio())
	}

	if d.Triggered() {
		t.Error("unexpected trigger")
	}
}

func TestTriggerSample(t *testing.T) {
	// 5 samples sta, 50 samples lta, threshold 8.
	d, err := onset.New(100, 0.05, 0.5, 8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < d.LTALen(); i++ {
		d.Feed(0.01)
	}

	var at int
	for i := 1; i <= 20; i++ {
		if d.Feed(0.1) {
			at = i
			break
		}
	}

	// after k loud samples: sta = (k*0.01 + (5-k)*1e-4)/5, lta = (k*0.01 + (50-k)*1e-4)/50.
	// k=1 gives 6.98, k=2 gives 8.19.
	if at != 2 {
		t.Errorf("expected the trigger on the second loud sample got %d", at)
	}
}
