package notify

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wager-pool/internal/config"
	"wager-pool/internal/ledger"
)

// Dispatcher queues notices and delivers them to every sink from a pool of
// workers. Failed deliveries are retried with exponential backoff up to
// RetryMax times, then dropped.
type Dispatcher struct {
	cfg   config.NotifyConfig
	sinks []Sink
	now   func() time.Time

	queue  chan job
	retryQ *retryQueue
	done   chan struct{}

	mu      sync.Mutex
	started bool
}

func NewDispatcher(cfg config.NotifyConfig, sinks ...Sink) *Dispatcher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		cfg:   cfg,
		sinks: sinks,
		now:   time.Now,
		queue: make(chan job, cfg.Buffer),
		done:  make(chan struct{}),
	}
	d.retryQ = newRetryQueue(d.queue, d.done)
	return d
}

// FromConfig registers a sink for every destination configured.
func FromConfig(cfg config.NotifyConfig, currency string) *Dispatcher {
	var sinks []Sink
	if url := strings.TrimSpace(cfg.DiscordWebhookURL); url != "" {
		sinks = append(sinks, NewDiscordSink(NewHTTPClient(cfg.RequestTimeout), url, currency))
	}
	if len(cfg.KafkaBrokers) > 0 && strings.TrimSpace(cfg.KafkaTopic) != "" {
		sinks = append(sinks, NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	return NewDispatcher(cfg, sinks...)
}

func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Start launches the workers. They stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || len(d.sinks) == 0 {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.cfg.Workers; i++ {
		go d.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Publish queues one notice per update and sink. It never blocks; when the
// queue is full the notice is dropped.
func (d *Dispatcher) Publish(reason string, updates ...ledger.AccountUpdate) {
	if len(d.sinks) == 0 {
		return
	}
	at := d.now()
	for _, u := range updates {
		n := Notice{Reason: reason, Update: u, At: at}
		for _, s := range d.sinks {
			select {
			case d.queue <- job{sink: s, notice: n}:
				metricQueued.Inc()
				metricQueueLen.Set(float64(len(d.queue)))
			default:
				metricDropped.WithLabelValues("queue_full").Inc()
				log.Warn().
					Str("sink", s.Name()).
					Str("community", u.Community).
					Str("member", u.Member).
					Msg("notify queue full, dropping notice")
			}
		}
	}
}

// Close releases sinks holding connections.
func (d *Dispatcher) Close() error {
	var firstErr error
	for _, s := range d.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case j := <-d.queue:
			metricQueueLen.Set(float64(len(d.queue)))
			d.process(ctx, j)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, j job) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	if err := j.sink.Send(sendCtx, j.notice); err != nil {
		metricFailed.WithLabelValues(j.sink.Name()).Inc()
		if !d.retryOrDrop(j) {
			log.Error().Err(err).
				Str("sink", j.sink.Name()).
				Str("community", j.notice.Update.Community).
				Str("member", j.notice.Update.Member).
				Int("attempts", j.attempt+1).
				Msg("notice delivery failed")
		}
		return
	}
	metricSent.WithLabelValues(j.sink.Name()).Inc()
}

func (d *Dispatcher) retryOrDrop(j job) bool {
	if j.attempt >= d.cfg.RetryMax {
		metricDropped.WithLabelValues("retries_exhausted").Inc()
		return false
	}
	j.attempt++
	metricRetry.WithLabelValues(j.sink.Name()).Inc()
	delay := d.cfg.RetryBase * time.Duration(1<<(j.attempt-1))
	d.retryQ.Enqueue(j, delay)
	return true
}
