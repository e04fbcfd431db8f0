// Package compliance provides a fail-closed publisher for document history.
//
// Publisher writes compliance events synchronously. If the write fails, an
// error is returned and the calling operation MUST fail. Run Emit inside
// the transaction that applies the change so both commit together.
//
// Use for: document_transitioned, document_resubmitted
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	id "slfcert/pkg/domain"
	audit "slfcert/pkg/platform/audit"
	"slfcert/pkg/requestcontext"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a history entry.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.DocumentID.IsNil() {
		return fmt.Errorf("compliance event requires DocumentID")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: document history write failed",
				"action", event.Action,
				"document_id", event.DocumentID.String(),
				"error", err,
			)
		}
		return fmt.Errorf("document history persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}

	return nil
}

// History returns a document's recorded events.
func (p *Publisher) History(ctx context.Context, documentID id.DocumentID) ([]audit.Event, error) {
	return p.store.ListByDocument(ctx, documentID)
}
