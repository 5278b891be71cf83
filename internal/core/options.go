package core

import "time"

type options struct {
	logger       Logger
	metrics      MetricsRecorder
	tracer       Tracer
	clock        Clock
	writeTimeout time.Duration
	sessionIdle  time.Duration
	newID        func() string
}

// Option customises core components.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:       noopLogger{},
		metrics:      NopMetrics{},
		tracer:       noopTracer{},
		clock:        systemClock{},
		writeTimeout: defaultWriteTimeout,
		sessionIdle:  defaultSessionIdle,
		newID:        newID,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer sets the tracer wrapped around catalog operations.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithWriteTimeout bounds each background persistence write.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithIDGenerator overrides record, product and session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithSessionIdleTimeout sets how long an untouched editor session stays open.
func WithSessionIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sessionIdle = d
		}
	}
}
