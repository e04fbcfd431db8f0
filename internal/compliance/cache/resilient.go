package cache

import (
	"context"
	"log/slog"
	"sync"

	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/circuit"
)

// Backend is the contract shared by every cache implementation.
type Backend interface {
	GetInspection(ctx context.Context, inspectionID id.InspectionID) (*models.InspectionWithChecklist, error)
	SetInspection(ctx context.Context, insp models.InspectionWithChecklist) error
	GetChecklistItems(ctx context.Context, templateID string) ([]models.ChecklistItemRow, bool, error)
	SetChecklistItems(ctx context.Context, templateID string, items []models.ChecklistItemRow) error
	Clear(ctx context.Context, kind models.Kind) error
	ClearAll(ctx context.Context) error
}

// Resilient reads and writes through a shared primary cache and switches to
// a process-local fallback while the primary keeps failing.
//
// Clears that cannot reach the primary are queued and replayed before the
// primary serves any other call, so evicted entries never come back.
type Resilient struct {
	primary  Backend
	fallback Backend
	breaker  *circuit.Breaker
	logger   *slog.Logger

	mu      sync.Mutex
	pending pendingClears
}

type pendingClears struct {
	all   bool
	kinds map[models.Kind]struct{}
}

func (p pendingClears) empty() bool {
	return !p.all && len(p.kinds) == 0
}

func NewResilient(primary, fallback Backend, breaker *circuit.Breaker, logger *slog.Logger) *Resilient {
	if breaker == nil {
		breaker = circuit.New("compliance-cache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// Degraded reports whether the fallback is currently serving.
func (c *Resilient) Degraded() bool {
	return c.breaker.IsOpen()
}

func (c *Resilient) GetInspection(ctx context.Context, inspectionID id.InspectionID) (*models.InspectionWithChecklist, error) {
	if !c.primaryReady(ctx) {
		return c.fallback.GetInspection(ctx, inspectionID)
	}
	v, err := c.primary.GetInspection(ctx, inspectionID)
	if c.record(ctx, err) {
		return c.fallback.GetInspection(ctx, inspectionID)
	}
	return v, err
}

func (c *Resilient) SetInspection(ctx context.Context, insp models.InspectionWithChecklist) error {
	return c.write(ctx, func(b Backend) error { return b.SetInspection(ctx, insp) })
}

func (c *Resilient) GetChecklistItems(ctx context.Context, templateID string) ([]models.ChecklistItemRow, bool, error) {
	if !c.primaryReady(ctx) {
		return c.fallback.GetChecklistItems(ctx, templateID)
	}
	items, ok, err := c.primary.GetChecklistItems(ctx, templateID)
	if c.record(ctx, err) {
		return c.fallback.GetChecklistItems(ctx, templateID)
	}
	return items, ok, err
}

func (c *Resilient) SetChecklistItems(ctx context.Context, templateID string, items []models.ChecklistItemRow) error {
	return c.write(ctx, func(b Backend) error { return b.SetChecklistItems(ctx, templateID, items) })
}

// Clear evicts kind from both backends. When the primary is unreachable the
// clear is queued for it and the call still succeeds: until the queue is
// replayed only the already cleared fallback serves.
func (c *Resilient) Clear(ctx context.Context, kind models.Kind) error {
	if err := c.fallback.Clear(ctx, kind); err != nil {
		return err
	}
	if c.primaryReady(ctx) && !c.record(ctx, c.primary.Clear(ctx, kind)) {
		return nil
	}
	c.deferClear(ctx, &kind)
	return nil
}

func (c *Resilient) ClearAll(ctx context.Context) error {
	if err := c.fallback.ClearAll(ctx); err != nil {
		return err
	}
	if c.primaryReady(ctx) && !c.record(ctx, c.primary.ClearAll(ctx)) {
		return nil
	}
	c.deferClear(ctx, nil)
	return nil
}

// PendingClears reports whether clears are waiting for the primary.
func (c *Resilient) PendingClears() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.pending.empty()
}

func (c *Resilient) write(ctx context.Context, fn func(Backend) error) error {
	if !c.primaryReady(ctx) {
		return fn(c.fallback)
	}
	err := fn(c.primary)
	if c.record(ctx, err) {
		return fn(c.fallback)
	}
	return err
}

// primaryReady reports whether the primary may serve the current call. The
// primary is skipped while the circuit is open or while queued clears
// cannot be replayed.
func (c *Resilient) primaryReady(ctx context.Context) bool {
	if c.breaker.IsOpen() {
		c.probe(ctx)
		return false
	}
	if err := c.flushPending(ctx); err != nil {
		c.record(ctx, err)
		return false
	}
	return true
}

// deferClear queues a clear of kind, or of everything when kind is nil.
func (c *Resilient) deferClear(ctx context.Context, kind *models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case kind == nil:
		c.pending = pendingClears{all: true}
	case c.pending.all:
	default:
		if c.pending.kinds == nil {
			c.pending.kinds = make(map[models.Kind]struct{})
		}
		c.pending.kinds[*kind] = struct{}{}
	}
	c.logger.WarnContext(ctx, "primary cache clear deferred until it recovers", "breaker", c.breaker.Name())
}

// flushPending replays queued clears against the primary. The queue only
// shrinks by what was applied.
func (c *Resilient) flushPending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending.empty() {
		return nil
	}
	if c.pending.all {
		if err := c.primary.ClearAll(ctx); err != nil {
			return err
		}
		c.pending = pendingClears{}
		return nil
	}
	for kind := range c.pending.kinds {
		if err := c.primary.Clear(ctx, kind); err != nil {
			return err
		}
		delete(c.pending.kinds, kind)
	}
	return nil
}

// record updates the breaker and reports whether the caller should retry
// the operation on the fallback.
func (c *Resilient) record(ctx context.Context, err error) bool {
	if err == nil {
		c.breaker.RecordSuccess()
		return false
	}
	_, change := c.breaker.RecordFailure()
	c.logger.WarnContext(ctx, "primary cache error, using fallback",
		"error", err,
		"breaker", c.breaker.Name(),
	)
	if change.Opened {
		c.logger.ErrorContext(ctx, "cache circuit opened", "breaker", c.breaker.Name())
	}
	return true
}

// probe checks the primary while the circuit is open so it can close once
// the primary recovers. Queued clears go first; the circuit never closes
// over a primary that still holds evicted entries.
func (c *Resilient) probe(ctx context.Context) {
	err := c.flushPending(ctx)
	if err == nil {
		_, _, err = c.primary.GetChecklistItems(ctx, "__probe__")
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "cache circuit closed", "breaker", c.breaker.Name())
	}
}
