package biquad_test

import (
	"math"
	"math/cmplx"
	"runtime"
	"strconv"
	"testing"

	"github.com/GeoNet/ews/internal/biquad"
)

func loc() string {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}

// gain returns |H(e^jw)| for c at frequency f.
func gain(c biquad.Coefficients, fs, f float64) float64 {
	z := cmplx.Exp(complex(0, -2.0*math.Pi*f/fs)) // z^-1
	num := complex(c.A0, 0) + complex(c.A1, 0)*z + complex(c.A2, 0)*z*z
	den := 1 + complex(c.B1, 0)*z + complex(c.B2, 0)*z*z
	return cmplx.Abs(num / den)
}

func TestCoefficientErrors(t *testing.T) {
	in := []struct {
		id     string
		fs, fc float64
		ok     bool
	}{
		{id: loc(), fs: 200, fc: 0.075, ok: true},
		{id: loc(), fs: 200, fc: 99.9, ok: true},
		{id: loc(), fs: 200, fc: 100},
		{id: loc(), fs: 200, fc: 150},
		{id: loc(), fs: 0, fc: 1},
		{id: loc(), fs: -200, fc: 1},
		{id: loc(), fs: 200, fc: 0},
		{id: loc(), fs: 200, fc: -1},
		{id: loc(), fs: math.NaN(), fc: 1},
		{id: loc(), fs: 200, fc: math.Inf(1)},
	}

	for _, v := range in {
		_, errHP := biquad.HighPass(v.fs, v.fc)
		_, errLP := biquad.LowPass(v.fs, v.fc)

		if v.ok && (errHP != nil || errLP != nil) {
			t.Errorf("%s unexpected error hp=%v lp=%v", v.id, errHP, errLP)
		}
		if !v.ok && (errHP == nil || errLP == nil) {
			t.Errorf("%s expected an error for fs=%g fc=%g", v.id, v.fs, v.fc)
		}
	}
}

func TestHighPassResponse(t *testing.T) {
	fs, fc := 200.0, 0.075

	c, err := biquad.HighPass(fs, fc)
	if err != nil {
		t.Fatal(err)
	}

	if s := c.A0 + c.A1 + c.A2; math.Abs(s) > 1e-15 {
		t.Errorf("expected zero dc gain numerator got %g", s)
	}

	if g := gain(c, fs, fc); math.Abs(g-math.Sqrt2/2.0) > 1e-6 {
		t.Errorf("expected -3dB at cutoff got %f", g)
	}

	if g := gain(c, fs, 10.0); math.Abs(g-1.0) > 1e-6 {
		t.Errorf("expected unity pass band gain got %f", g)
	}
}

func TestLowPassResponse(t *testing.T) {
	fs, fc := 200.0, 1.0

	c, err := biquad.LowPass(fs, fc)
	if err != nil {
		t.Fatal(err)
	}

	if g := gain(c, fs, 0); math.Abs(g-1.0) > 1e-12 {
		t.Errorf("expected unity dc gain got %f", g)
	}

	if g := gain(c, fs, fc); math.Abs(g-math.Sqrt2/2.0) > 1e-6 {
		t.Errorf("expected -3dB at cutoff got %f", g)
	}

	f := biquad.NewFilter(c)

	var y float64
	for i := 0; i < 20*int(fs); i++ {
		y = f.Sample(2.5)
	}

	if math.Abs(y-2.5) > 1e-9 {
		t.Errorf("expected low pass to settle on 2.5 got %g", y)
	}
}

// a constant offset fed into the high-pass must decay to zero.
func TestHighPassRejectsDC(t *testing.T) {
	in := []struct {
		id     string
		fc     float64
		offset float64
		n      int
	}{
		{id: loc(), fc: 0.075, offset: 1.0, n: 200 * 150},
		{id: loc(), fc: 0.075, offset: -9.81, n: 200 * 150},
		{id: loc(), fc: 1.0, offset: 0.5, n: 200 * 20},
	}

	for _, v := range in {
		c, err := biquad.HighPass(200, v.fc)
		if err != nil {
			t.Fatalf("%s %s", v.id, err)
		}

		f := biquad.NewFilter(c)

		var y, peak float64
		for i := 0; i < v.n; i++ {
			y = f.Sample(v.offset)
			if math.IsNaN(y) || math.IsInf(y, 0) {
				t.Fatalf("%s non finite output at %d", v.id, i)
			}
			peak = math.Max(peak, math.Abs(y))
		}

		if peak > math.Abs(v.offset)*1.0000001 {
			t.Errorf("%s step response exceeded the input: %g", v.id, peak)
		}

		if math.Abs(y) > 1e-9*math.Abs(v.offset) {
			t.Errorf("%s expected dc to be removed got %g", v.id, y)
		}
	}
}

func TestApplyShiftsState(t *testing.T) {
	c := biquad.Coefficients{A0: 1, A1: 2, A2: 3, B1: 0.5, B2: 0.25}

	var s biquad.State

	y0 := c.Apply(&s, 1)
	if y0 != 1 {
		t.Errorf("expected 1 got %g", y0)
	}

	y1 := c.Apply(&s, 0)
	// 2*1 - 0.5*1
	if y1 != 1.5 {
		t.Errorf("expected 1.5 got %g", y1)
	}

	want := biquad.State{X1: 0, X2: 1, Y1: 1.5, Y2: 1}
	if s != want {
		t.Errorf("expected state %+v got %+v", want, s)
	}

	s.Reset()
	if s != (biquad.State{}) {
		t.Errorf("expected reset state got %+v", s)
	}
}

func TestNaNPropagates(t *testing.T) {
	c, err := biquad.HighPass(200, 0.075)
	if err != nil {
		t.Fatal(err)
	}

	f := biquad.NewFilter(c)
	f.Sample(1)

	if y := f.Sample(math.NaN()); !math.IsNaN(y) {
		t.Errorf("expected NaN got %g", y)
	}
	if y := f.Sample(1); !math.IsNaN(y) {
		t.Errorf("expected NaN to remain in the state got %g", y)
	}

	f.Reset()
	if y := f.Sample(0); y != 0 {
		t.Errorf("expected 0 after reset got %g", y)
	}
}

func TestSeriesMatchesStreaming(t *testing.T) {
	c, err := biquad.HighPass(100, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	in := make([]float64, 1000)
	for i := range in {
		in[i] = math.Sin(2.0*math.Pi*2.0*float64(i)/100.0) + 0.3
	}

	batch := biquad.Series(c, in)

	f := biquad.NewFilter(c)
	for i := range in {
		if y := f.Sample(in[i]); y != batch[i] {
			t.Fatalf("sample %d streaming %g batch %g", i, y, batch[i])
		}
	}
}
