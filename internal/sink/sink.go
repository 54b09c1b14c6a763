// Package sink delivers issued incidents to downstream consumers. The
// JSONL file is the canonical output; Postgres and RabbitMQ are optional
// feeds for analytics dashboards.
package sink

import (
	"context"

	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/incident"
)

// Sink is the minimal interface all sinks must implement. Append must make
// the incident durable before returning (at-least-once; no buffering that
// could lose incidents on abrupt termination).
type Sink interface {
	Name() string
	Append(ctx context.Context, inc incident.Incident) error
	Close() error
}

// NewFromConfig builds every enabled sink. The JSONL sink is always on;
// Postgres and RabbitMQ join when configured.
func NewFromConfig(ctx context.Context, cfg config.SinksConf) ([]Sink, error) {
	js, err := NewJSONL(cfg.JSONL.Path)
	if err != nil {
		return nil, err
	}
	sinks := []Sink{js}

	if cfg.Postgres.URL != "" {
		pg, err := NewPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		sinks = append(sinks, pg)
	}
	if cfg.RabbitMQ.URL != "" {
		mq, err := NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		sinks = append(sinks, mq)
	}
	return sinks, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}
