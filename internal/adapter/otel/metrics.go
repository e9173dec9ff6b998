package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "synod"

// Metrics holds all Synod metric instruments.
type Metrics struct {
	TurnsStarted   metric.Int64Counter
	TurnsCompleted metric.Int64Counter
	TurnsFailed    metric.Int64Counter
	ProviderCalls  metric.Int64Counter
	ParseFailures  metric.Int64Counter
	TurnDuration   metric.Float64Histogram
	StageDuration  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TurnsStarted, err = meter.Int64Counter("synod.turns.started",
		metric.WithDescription("Number of deliberation turns started"))
	if err != nil {
		return nil, err
	}

	m.TurnsCompleted, err = meter.Int64Counter("synod.turns.completed",
		metric.WithDescription("Number of deliberation turns completed"))
	if err != nil {
		return nil, err
	}

	m.TurnsFailed, err = meter.Int64Counter("synod.turns.failed",
		metric.WithDescription("Number of turns that short-circuited before synthesis"))
	if err != nil {
		return nil, err
	}

	m.ProviderCalls, err = meter.Int64Counter("synod.provider.calls",
		metric.WithDescription("Number of upstream model calls"))
	if err != nil {
		return nil, err
	}

	m.ParseFailures, err = meter.Int64Counter("synod.rankings.parse_failures",
		metric.WithDescription("Number of reviewer replies that yielded no labels"))
	if err != nil {
		return nil, err
	}

	m.TurnDuration, err = meter.Float64Histogram("synod.turn.duration_seconds",
		metric.WithDescription("Full turn duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.StageDuration, err = meter.Float64Histogram("synod.stage.duration_seconds",
		metric.WithDescription("Per-stage duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
