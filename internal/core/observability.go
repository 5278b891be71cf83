package core

import (
	"context"
	"time"
)

const (
	entryStatusSuccess = "success"
	entryStatusError   = "error"
)

// Logger is the key/value logging surface the core depends on.
// *logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// MetricsRecorder receives the outcome of every catalog operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around catalog operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

// Clock abstracts time for deterministic timestamps in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopMetrics discards observations.
type NopMetrics struct{}

func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// observeOp times fn and reports it to both the tracer and the metrics recorder.
func observeOp(ctx context.Context, tracer Tracer, metrics MetricsRecorder, clock Clock, op string, fn func(context.Context) error) error {
	start := clock.Now()
	ctx, span := tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	metrics.Observe(ctx, op, err == nil, clock.Now().Sub(start))
	return err
}
