package main

/*
ews-replay runs the early-warning engine over a recorded accelerometer stream and prints the
final report.

Text input is one value per line (or whitespace separated) for a single channel.  miniSEED input
may hold several channels, each is processed independently and restarted at data gaps.

	ews-replay -file WEL_HNZ.txt -units g -typology RC -stories 3 -target EDS
	ews-replay -format mseed -file NZ.WEL.20.HNZ.D.2016.318 -fs 200
*/

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/GeoNet/ews/internal/damage"
	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/stream"
)

type options struct {
	file   string
	format string
	out    string
	conv   stream.Config
	cfg    ews.Config
}

func main() {
	o, err := parse(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "ews-replay ", log.LstdFlags)

	if err := run(o, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func parse(args []string, errs io.Writer) (options, error) {
	d := ews.DefaultConfig()

	var o options
	var units, typology, target string

	f := flag.NewFlagSet("ews-replay", flag.ContinueOnError)
	f.SetOutput(errs)

	f.StringVar(&o.file, "file", "-", "input file, - for stdin")
	f.StringVar(&o.format, "format", "text", "input format: text or mseed")
	f.StringVar(&o.out, "report", "", "write the report to this file instead of stdout")
	f.StringVar(&units, "units", string(stream.G), "input units: g, ms2 or counts")
	f.Float64Var(&o.conv.Gain, "gain", 0, "counts per m/s^2, counts input only")
	f.Float64Var(&o.cfg.SamplingRate, "fs", d.SamplingRate, "sampling rate (Hz)")
	f.Float64Var(&o.cfg.STASeconds, "sta", d.STASeconds, "STA window (s)")
	f.Float64Var(&o.cfg.LTASeconds, "lta", d.LTASeconds, "LTA window (s)")
	f.Float64Var(&o.cfg.Threshold, "threshold", d.Threshold, "STA/LTA trigger ratio")
	f.Float64Var(&o.cfg.HighPassCutoff, "fc", d.HighPassCutoff, "high-pass cutoff (Hz)")
	f.StringVar(&typology, "typology", string(d.Typology), "building typology: RC, URM_REG or URM_STONE")
	f.IntVar(&o.cfg.Stories, "stories", d.Stories, "number of stories")
	f.StringVar(&target, "target", string(d.Target), "target damage state: MDS, EDS or CDS")

	if err := f.Parse(args); err != nil {
		return o, err
	}

	var err error

	if o.conv.Units, err = stream.ParseUnits(units); err != nil {
		return o, usage(errs, err)
	}
	if o.cfg.Typology, err = damage.ParseTypology(typology); err != nil {
		return o, usage(errs, err)
	}
	if o.cfg.Target, err = damage.ParseState(target); err != nil {
		return o, usage(errs, err)
	}

	switch o.format {
	case "text", "mseed":
	default:
		return o, usage(errs, fmt.Errorf("unknown format %q", o.format))
	}

	return o, nil
}

func usage(w io.Writer, err error) error {
	fmt.Fprintln(w, err)
	return err
}

func run(o options, stdin io.Reader, stdout io.Writer, logger *log.Logger) error {
	if err := o.conv.Validate(); err != nil {
		return err
	}

	in := stdin
	if o.file != "-" {
		f, err := os.Open(o.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	out := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch o.format {
	case "mseed":
		return replayRecords(o, in, out, logger)
	default:
		return replayText(o, in, out, logger)
	}
}
