package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/GeoNet/kit/weft"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GeoNet/ews/internal/monitor"
	"github.com/GeoNet/ews/internal/report"
	"github.com/GeoNet/ews/internal/valid"
)

var mux *http.ServeMux

var decoder = schema.NewDecoder() // decoder for URL queries.

type reportQuery struct {
	Stream string `schema:"stream"` // NET_STA_LOC_CHA, empty for all channels
}

func init() {
	mux = http.NewServeMux()

	mux.HandleFunc("/", weft.MakeHandler(weft.NoMatch, weft.TextError))
	mux.HandleFunc("/soh/up", weft.MakeHandler(weft.Up, weft.TextError))
	mux.HandleFunc("/soh", weft.MakeHandler(soh, weft.TextError))
	mux.HandleFunc("/report", weft.MakeHandler(channelReport, weft.TextError))
	mux.Handle("/metrics", promhttp.Handler())
}

func soh(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{})
	if err != nil {
		return err
	}

	h.Set("Content-Type", "text/html; charset=utf-8")

	// strong motion data arrives continuously.  There should be at least one channel.
	n := mon.Len()
	if n == 0 {
		b.WriteString("<html><head></head><body>have zero channels.</body></html>")
		return weft.StatusError{Code: http.StatusServiceUnavailable}
	}

	b.WriteString(fmt.Sprintf("<html><head></head><body>have %d channels.</body></html>", n))

	return nil
}

func channelReport(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{"stream"})
	if err != nil {
		return err
	}

	var q reportQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		return weft.StatusError{Code: http.StatusBadRequest, Err: err}
	}

	var reports []monitor.ChannelReport

	switch q.Stream {
	case "":
		reports = mon.Reports()
	default:
		if err := valid.Source(q.Stream); err != nil {
			return err
		}

		c, ok := mon.Report(q.Stream)
		if !ok {
			return weft.StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("no channel %s", q.Stream)}
		}
		reports = append(reports, c)
	}

	h.Set("Content-Type", "text/plain; charset=utf-8")

	target := mon.Config().Target

	for _, c := range reports {
		fmt.Fprintf(b, "%s %s to %s\n", c.Source, c.Start.Format(time.RFC3339Nano), c.Last.Format(time.RFC3339Nano))
		if err := report.Write(b, target, c.Report); err != nil {
			return err
		}
	}

	return nil
}
