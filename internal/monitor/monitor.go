/*
Package monitor runs an early-warning Machine per miniSEED channel.

Records are routed by source name.  Samples at or before the last one processed for a channel
are skipped, so resent data never repeats a trigger or an alarm.  A channel is restarted with a
fresh Machine after a forward gap, so a trigger or an alarm only ever reflects uninterrupted data.  The least
recently seen channel is dropped once the channel limit is reached.
*/
package monitor

import (
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GeoNet/ews/internal/ews"
	"github.com/GeoNet/ews/internal/notify"
	"github.com/GeoNet/ews/internal/stream"
)

// DefaultMaxChannels is the channel limit when WithMaxChannels is not used.
const DefaultMaxChannels = 100

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(string, ...interface{})
}

// ChannelReport is the state of one channel.
type ChannelReport struct {
	Source string
	Start  time.Time // first sample since the last restart
	Last   time.Time // last sample
	Report ews.Report
}

type channel struct {
	source  string
	start   time.Time
	last    time.Time
	machine *ews.Machine
}

// Monitor is safe for concurrent use.
type Monitor struct {
	mu sync.Mutex

	cfg     ews.Config
	conv    stream.Config
	options []ews.Option

	max      int
	channels *lru.Cache          // recency, evicts the least recently seen channel
	index    map[string]*channel // lookup without disturbing recency
	alerts   chan<- notify.Alert
	logger   Logger
	reg      prometheus.Registerer
	metrics  *collectors
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithMaxChannels limits the number of channels held.
func WithMaxChannels(n int) Option {
	return func(m *Monitor) {
		m.max = n
	}
}

// WithAlerts sends phase changes to a.  Alerts are dropped if a is full.
func WithAlerts(a chan<- notify.Alert) Option {
	return func(m *Monitor) {
		m.alerts = a
	}
}

// WithLogger sets the logger for channel restarts and evictions.
func WithLogger(l Logger) Option {
	return func(m *Monitor) {
		m.logger = l
	}
}

// WithRegisterer registers the Monitor's Prometheus collectors with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(m *Monitor) {
		m.reg = r
	}
}

// WithMachineOptions are passed to every new ews.Machine.
func WithMachineOptions(o ...ews.Option) Option {
	return func(m *Monitor) {
		m.options = append(m.options, o...)
	}
}

// New returns a Monitor that processes every channel with cfg after converting raw values with conv.
func New(cfg ews.Config, conv stream.Config, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		cfg:    cfg,
		conv:   conv,
		max:    DefaultMaxChannels,
		logger: log.New(io.Discard, "", 0),
	}

	for _, o := range opts {
		o(m)
	}

	if m.max < 1 {
		return nil, fmt.Errorf("invalid channel limit %d", m.max)
	}

	if err := conv.Validate(); err != nil {
		return nil, err
	}

	// fail now rather than on the first record.
	if _, err := ews.New(cfg, m.options...); err != nil {
		return nil, err
	}

	m.metrics = newCollectors(m.reg)

	m.index = make(map[string]*channel)
	m.channels = lru.New(m.max)
	m.channels.OnEvicted = m.evicted

	return m, nil
}

// Process decodes a miniSEED record and feeds its samples to the channel's Machine.
func (m *Monitor) Process(raw []byte) error {
	p, err := stream.Decode(raw)
	if err != nil {
		return err
	}

	if p.SampleRate != m.cfg.SamplingRate {
		return fmt.Errorf("%s: sample rate %g does not match the configured %g", p.Source, p.SampleRate, m.cfg.SamplingRate)
	}

	if len(p.Samples) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var c *channel

	if v, ok := m.channels.Get(p.Source); ok {
		c = v.(*channel)

		// resent or overlapping data, only the samples after the last one processed are used.
		if n := stream.Overlap(c.last, p); n > 0 {
			m.metrics.skipped.Add(float64(n))
			if n == len(p.Samples) {
				return nil
			}
			p = p.Skip(n)
		}

		if stream.Gap(c.last, p.Start, p.SampleRate) {
			m.logger.Printf("%s: restarting in phase %s, %s does not follow %s", p.Source, c.machine.Phase(),
				p.Start.Format(time.RFC3339Nano), c.last.Format(time.RFC3339Nano))
			m.metrics.resets.WithLabelValues("gap").Inc()
			m.metrics.forget(p.Source)
			c = nil
		}
	}

	if c == nil {
		c, err = m.open(p)
		if err != nil {
			return err
		}
	}

	for _, v := range p.Samples {
		c.machine.Process(m.conv.Acceleration(v))
	}
	c.last = p.End()

	m.metrics.samples.Add(float64(len(p.Samples)))
	m.metrics.phase.WithLabelValues(p.Source).Set(float64(c.machine.Phase()))
	if !math.IsNaN(c.machine.PGAMax()) {
		m.metrics.pgaMax.WithLabelValues(p.Source).Set(c.machine.PGAMax())
	}
	if c.machine.Phase() != ews.WaitingTrigger && !math.IsNaN(c.machine.PGDMax()) {
		m.metrics.pgdMax.WithLabelValues(p.Source).Set(c.machine.PGDMax())
	}

	return nil
}

// open adds a fresh channel starting at p, replacing any existing channel for the source.
func (m *Monitor) open(p stream.Packet) (*channel, error) {
	c := &channel{
		source: p.Source,
		start:  p.Start,
		last:   p.Start,
	}

	opts := append([]ews.Option{}, m.options...)
	opts = append(opts, ews.WithSink(ews.SinkFunc(func(t ews.Transition) {
		m.transition(c, t)
	})))

	var err error

	c.machine, err = ews.New(m.cfg, opts...)
	if err != nil {
		return nil, err
	}

	// Add replaces without calling OnEvicted.
	m.channels.Add(p.Source, c)
	m.index[p.Source] = c
	m.metrics.channels.Set(float64(m.channels.Len()))

	return c, nil
}

// transition is called with the lock held.
func (m *Monitor) transition(c *channel, t ews.Transition) {
	switch t.To {
	case ews.Triggered:
		m.metrics.triggers.WithLabelValues(c.source).Inc()
	case ews.Alarmed:
		m.metrics.alarms.WithLabelValues(c.source).Inc()
	}

	if m.alerts == nil {
		return
	}

	at := c.start.Add(time.Duration(float64(t.Sample-1) * float64(time.Second) / m.cfg.SamplingRate))

	select {
	case m.alerts <- notify.NewAlert(c.source, at, t, c.machine.Report()):
	default:
		m.metrics.dropped.Inc()
		m.logger.Printf("%s: alert queue full, dropped %s", c.source, t.To)
	}
}

func (m *Monitor) evicted(_ lru.Key, value interface{}) {
	c := value.(*channel)
	r := c.machine.Report()

	m.logger.Printf("%s: evicted after %d samples, phase %s", c.source, r.Samples, r.Phase)

	if m.index[c.source] == c {
		delete(m.index, c.source)
	}
	m.metrics.forget(c.source)
}

// Reports returns the state of every channel sorted by source.
func (m *Monitor) Reports() []ChannelReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := make([]string, 0, len(m.index))
	for k := range m.index {
		sources = append(sources, k)
	}
	sort.Strings(sources)

	r := make([]ChannelReport, 0, len(sources))
	for _, s := range sources {
		r = append(r, m.index[s].report())
	}

	return r
}

// Report returns the state of the channel for source.
func (m *Monitor) Report(source string) (ChannelReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.index[source]
	if !ok {
		return ChannelReport{}, false
	}

	return c.report(), true
}

// Len is the number of channels held.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.channels.Len()
}

// Config is the per channel processing configuration.
func (m *Monitor) Config() ews.Config {
	return m.cfg
}

func (c *channel) report() ChannelReport {
	return ChannelReport{
		Source: c.source,
		Start:  c.start,
		Last:   c.last,
		Report: c.machine.Report(),
	}
}
