package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/internal/observability/metrics"
	"github.com/macspp/lead-intake/pkg/logging"
)

var fanoutTracer = otel.Tracer("leadintake.internal.notify.fanout")

// Delivery statuses recorded per channel.
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

const defaultChannelTimeout = 10 * time.Second

// Outcome is the result of one channel delivery.
type Outcome struct {
	Channel  string        `json:"channel"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// Report lists one Outcome per configured channel, in channel order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome returns the outcome recorded for the named channel.
func (r Report) Outcome(channel string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Channel == channel {
			return o, true
		}
	}
	return Outcome{}, false
}

// Failed returns the names of channels that did not deliver.
func (r Report) Failed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status != StatusDelivered {
			names = append(names, o.Channel)
		}
	}
	return names
}

// FanoutConfig bounds the fan-out.
type FanoutConfig struct {
	// Timeout applies to each channel independently.
	Timeout time.Duration
	// Concurrency caps parallel deliveries; zero or less means unbounded.
	Concurrency int
}

// Fanout delivers a stored submission to every configured channel.
type Fanout struct {
	channels []Channel
	cfg      FanoutConfig
	logger   *logging.Logger
	metrics  *metrics.LeadMetrics
}

// NewFanout creates a dispatcher over channels. A nil m disables metrics.
func NewFanout(channels []Channel, cfg FanoutConfig, logger *logging.Logger, m *metrics.LeadMetrics) *Fanout {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChannelTimeout
	}
	return &Fanout{
		channels: channels,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
	}
}

// Channels returns the configured channel names in dispatch order.
func (f *Fanout) Channels() []string {
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.Name())
	}
	return names
}

// MaxDuration bounds how long Dispatch can block: every channel running to
// its timeout, in waves of at most Concurrency channels.
func (f *Fanout) MaxDuration() time.Duration {
	n := len(f.channels)
	if n == 0 {
		return 0
	}
	waves := 1
	if c := f.cfg.Concurrency; c > 0 && c < n {
		waves = (n + c - 1) / c
	}
	return time.Duration(waves) * f.cfg.Timeout
}

// Dispatch runs every channel concurrently and waits for all of them. A
// channel failure, timeout or panic is recorded in the Report and never
// affects the other channels. Caller cancellation does not abort
// deliveries already started; each is bounded by its own timeout.
func (f *Fanout) Dispatch(ctx context.Context, sub *leads.Submission) Report {
	outcomes := make([]Outcome, len(f.channels))
	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	if f.cfg.Concurrency > 0 {
		g.SetLimit(f.cfg.Concurrency)
	}
	for i, ch := range f.channels {
		snapshot := *sub
		g.Go(func() error {
			outcomes[i] = f.deliver(detached, ch, &snapshot)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Outcomes: outcomes}
}

func (f *Fanout) deliver(ctx context.Context, ch Channel, sub *leads.Submission) Outcome {
	name := ch.Name()
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	ctx, span := fanoutTracer.Start(ctx, "notify.deliver", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("leadintake.channel", name),
		attribute.String("leadintake.lead_id", sub.ID),
	)

	start := time.Now()
	err := safeDeliver(ctx, ch, sub)
	elapsed := time.Since(start)

	outcome := Outcome{Channel: name, Status: StatusDelivered, Duration: elapsed}
	switch {
	case err == nil:
		f.logger.Info("lead notification delivered", "channel", name, "lead_id", sub.ID, "duration_ms", elapsed.Milliseconds())
	case errors.Is(err, ErrChannelNotConfigured):
		outcome.Status = StatusSkipped
		outcome.Error = err.Error()
		f.logger.Warn("lead notification skipped", "channel", name, "lead_email", sub.Email, "error", err)
	default:
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		f.logger.Error("lead notification failed", "channel", name, "lead_email", sub.Email, "error", err)
	}

	f.metrics.ObserveDelivery(name, outcome.Status, elapsed.Seconds())
	return outcome
}

func safeDeliver(ctx context.Context, ch Channel, sub *leads.Submission) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: %s panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Deliver(ctx, sub)
}
