package main

/*
ews-slink connects to a SEEDLink server and runs the early-warning engine on every received
strong motion channel.  Triggers and alarms are logged and optionally sent to Telegram.

Channel state is available from /report, Prometheus metrics from /metrics.
*/

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GeoNet/kit/metrics"
	"github.com/GeoNet/kit/seis/sl"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GeoNet/ews/internal/config"
	"github.com/GeoNet/ews/internal/monitor"
	"github.com/GeoNet/ews/internal/notify"
)

var configPath = flag.String("config", "", "path to the configuration file, empty uses defaults and EWS_ environment variables")

// mon is used by the routes.
var mon *monitor.Monitor

func main() {
	flag.Parse()

	cfg, err := load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	metrics.DataDogMsg(cfg.Metrics.DataDogAPIKey, metrics.HostName(), metrics.AppName(), logger)

	alerts := make(chan notify.Alert, cfg.Monitor.AlertQueue)

	mon, err = newMonitor(cfg, alerts)
	if err != nil {
		log.Fatal(err)
	}

	n, err := notifier(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Println("shutdown signal received")
		cancel()

		// collection stops on the next packet or a read timeout.
		time.Sleep(cfg.SeedLink.NetTo)
		log.Fatal("timed out waiting for seedlink to close")
	}()

	delivered := make(chan struct{})
	go func() {
		notify.Run(ctx, alerts, n, logger)
		close(delivered)
	}()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting server on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	log.Printf("listening for packets from seedlink %s", cfg.SeedLink.Server)

	collect(ctx, cfg)

	// alerts raised just before the shutdown are still sent.
	<-delivered

	for _, r := range mon.Reports() {
		log.Printf("%s: %d samples, phase %s", r.Source, r.Report.Samples, r.Report.Phase)
	}

	shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	if err := server.Shutdown(shutdown); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func load(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

func newMonitor(cfg *config.Config, alerts chan<- notify.Alert) (*monitor.Monitor, error) {
	p, err := cfg.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "processing config")
	}

	s, err := cfg.Conversion()
	if err != nil {
		return nil, errors.Wrap(err, "stream config")
	}

	return monitor.New(p, s,
		monitor.WithMaxChannels(cfg.Monitor.MaxChannels),
		monitor.WithAlerts(alerts),
		monitor.WithLogger(logger),
		monitor.WithRegisterer(prometheus.DefaultRegisterer),
	)
}

func notifier(cfg *config.Config) (notify.Notifier, error) {
	n := notify.Multi{notify.Log{Logger: logger}}

	if !cfg.Telegram.Enabled {
		return n, nil
	}

	t, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelay)
	if err != nil {
		return nil, errors.Wrap(err, "telegram")
	}

	log.Println("telegram notifications enabled")

	return append(n, t), nil
}

// collect reconnects to the SEEDLink server until ctx is done.  Each reconnect resumes every
// station from its last received record.
func collect(ctx context.Context, cfg *config.Config) {
	state := make(stations)

	for ctx.Err() == nil {
		opts := []sl.SLinkOpt{
			sl.SetServer(cfg.SeedLink.Server),
			sl.SetNetTo(cfg.SeedLink.NetTo),
			sl.SetKeepAlive(cfg.SeedLink.KeepAlive),
			sl.SetStreams(cfg.SeedLink.Streams),
			sl.SetSelectors(cfg.SeedLink.Selectors),
			sl.SetState(state.list()...),
		}

		// request recent data so the LTA window is full when live data arrives.
		if cfg.SeedLink.Backfill > 0 {
			opts = append(opts, sl.SetStart(time.Now().UTC().Add(-cfg.SeedLink.Backfill)))
		}

		slink := sl.NewSLink(opts...)

		if err := slink.CollectWithContext(ctx, func(seq string, data []byte) (bool, error) {
			if ctx.Err() != nil {
				return true, nil
			}

			if err := state.update(seq, data); err != nil {
				log.Printf("state for record %s: %v", seq, err)
			}

			if err := metrics.DoProcess(mon, data); err != nil {
				log.Printf("processing record %s: %v", seq, err)
			}

			return false, nil
		}); err != nil {
			log.Println("slink.Collect:", err)
		}

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
	}
}
