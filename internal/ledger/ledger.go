// Package ledger owns the persisted product catalog and per-product price
// history. All mutation goes through it; it serializes its own
// read-modify-write cycles, keeps at most one price point per local calendar
// day, and bounds every history to the retention window.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"pricetracker/internal/cache"
	"pricetracker/internal/identity"
	"pricetracker/internal/platform"
	"pricetracker/internal/platform/models"
	"pricetracker/internal/platform/store"
)

const (
	// retention is the maximum age of a price point relative to the append
	// that triggers pruning.
	retention = 365 * 24 * time.Hour

	defaultCacheTTL = 5 * time.Minute

	cacheKeyPrefix = "product:"
)

// Option is custom configuration of Ledger.
type Option func(l *Ledger)

// Ledger is the storage and price-history engine.
type Ledger struct {
	store    store.Store
	cache    cache.Cache
	cacheTTL time.Duration
	clock    Clock

	// mu serializes this instance's read-modify-write cycles. The store
	// itself has no transactions; writers in other processes still race.
	mu sync.Mutex
}

// New returns a Ledger over st.
func New(st store.Store, ops ...Option) *Ledger {
	led := &Ledger{
		store:    st,
		cache:    cache.NewMemoryCache(),
		cacheTTL: defaultCacheTTL,
		clock:    systemClock{},
	}

	for _, op := range ops {
		op(led)
	}

	return led
}

// WithClock sets Ledger's custom Clock.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithCache sets Ledger's custom Cache.
func WithCache(c cache.Cache) Option {
	return func(l *Ledger) {
		l.cache = c
	}
}

// Track upserts draft into the catalog. An identity already present is a
// no-op reported with isNew=false. A new identity is persisted with creation
// and update timestamps set to now, a single-point price history seeded from
// the draft's price, and the default alert configuration.
func (l *Ledger) Track(ctx context.Context, draft models.ProductRecord) (string, bool, error) {
	id := draft.Identity
	if id == "" {
		id = identity.Derive(draft.URL)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.readProducts(ctx)
	if err != nil {
		return "", false, fmt.Errorf("can't track product: %w", err)
	}

	if _, exists := products[id]; exists {
		return id, false, nil
	}

	now := l.clock.Timestamp()

	record := draft
	record.Identity = id
	record.Price = max(record.Price, 0)
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Alert = models.DefaultAlertConfig()
	if record.Availability == "" {
		record.Availability = models.Unknown
	}

	seed := models.PricePoint{Price: record.Price, Timestamp: now}
	record.LatestPoint = &seed

	products[id] = record
	if err := l.writeProducts(ctx, products); err != nil {
		return "", false, fmt.Errorf("can't track product: %w", err)
	}

	histories, err := l.readHistories(ctx)
	if err != nil {
		return "", false, fmt.Errorf("can't track product: %w", err)
	}
	histories[id] = []models.PricePoint{seed}
	if err := l.writeHistories(ctx, histories); err != nil {
		return "", false, fmt.Errorf("can't track product: %w", err)
	}

	return id, true, nil
}

// Product returns the record for id, reading through the cache.
// Returns platform.ErrProductNotFound when id is not in the catalog.
func (l *Ledger) Product(ctx context.Context, id string) (models.ProductRecord, error) {
	if cached, err := l.cache.Get(ctx, cacheKeyPrefix+id); err == nil {
		var record models.ProductRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			return record, nil
		}
	}

	products, err := l.readProducts(ctx)
	if err != nil {
		return models.ProductRecord{}, fmt.Errorf("can't read product: %w", err)
	}

	record, exists := products[id]
	if !exists {
		return models.ProductRecord{}, platform.NotFoundError(id)
	}

	if encoded, err := json.Marshal(record); err == nil {
		_ = l.cache.Set(ctx, cacheKeyPrefix+id, encoded, l.cacheTTL)
	}

	return record, nil
}

// Products returns the full catalog, keyed by identity. The cache is never
// authoritative, so this always reads the store.
func (l *Ledger) Products(ctx context.Context) (map[string]models.ProductRecord, error) {
	products, err := l.readProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't read products: %w", err)
	}

	return products, nil
}

// Update merges updates over the record for id, refreshes its update
// timestamp and invalidates its cache entry. Returns the updated record, or
// platform.ErrProductNotFound when id is not in the catalog.
func (l *Ledger) Update(ctx context.Context, id string, updates models.ProductUpdate) (models.ProductRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.readProducts(ctx)
	if err != nil {
		return models.ProductRecord{}, fmt.Errorf("can't update product: %w", err)
	}

	record, exists := products[id]
	if !exists {
		return models.ProductRecord{}, platform.NotFoundError(id)
	}

	if updates.Title != nil {
		record.Title = *updates.Title
	}
	if updates.Price != nil {
		record.Price = max(*updates.Price, 0)
	}
	if updates.Availability != nil {
		record.Availability = *updates.Availability
	}
	if updates.SellerName != nil {
		record.SellerName = *updates.SellerName
	}
	if updates.Alert != nil {
		record.Alert = *updates.Alert
	}
	record.UpdatedAt = l.clock.Timestamp()

	products[id] = record
	if err := l.writeProducts(ctx, products); err != nil {
		return models.ProductRecord{}, fmt.Errorf("can't update product: %w", err)
	}

	_ = l.cache.Delete(ctx, cacheKeyPrefix+id)

	return record, nil
}

// Delete removes the record for id, its price history and its cache entry as
// one logical unit. Returns platform.ErrProductNotFound when id is not in the
// catalog.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.readProducts(ctx)
	if err != nil {
		return fmt.Errorf("can't delete product: %w", err)
	}

	if _, exists := products[id]; !exists {
		return platform.NotFoundError(id)
	}

	delete(products, id)
	if err := l.writeProducts(ctx, products); err != nil {
		return fmt.Errorf("can't delete product: %w", err)
	}

	histories, err := l.readHistories(ctx)
	if err != nil {
		return fmt.Errorf("can't delete product history: %w", err)
	}
	delete(histories, id)
	if err := l.writeHistories(ctx, histories); err != nil {
		return fmt.Errorf("can't delete product history: %w", err)
	}

	_ = l.cache.Delete(ctx, cacheKeyPrefix+id)

	return nil
}

// History returns the ordered price history for id. An unknown identity
// yields an empty history.
func (l *Ledger) History(ctx context.Context, id string) ([]models.PricePoint, error) {
	histories, err := l.readHistories(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't read price history: %w", err)
	}

	return histories[id], nil
}

// AppendPrice unconditionally appends a point with the given price and
// current timestamp, then prunes points older than the retention window.
func (l *Ledger) AppendPrice(ctx context.Context, id string, price int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendLocked(ctx, id, price)
}

// AppendPriceIfNewToday appends a point only when no existing point falls
// within the current local calendar day. Reports whether a point was added.
func (l *Ledger) AppendPriceIfNewToday(ctx context.Context, id string, price int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	histories, err := l.readHistories(ctx)
	if err != nil {
		return false, fmt.Errorf("can't check price history: %w", err)
	}

	now := l.clock.Now()
	recorded := lo.SomeBy(histories[id], func(point models.PricePoint) bool {
		return sameCalendarDay(now, time.UnixMilli(point.Timestamp).In(now.Location()))
	})
	if recorded {
		return false, nil
	}

	if err := l.appendLocked(ctx, id, price); err != nil {
		return false, err
	}

	return true, nil
}

// Export produces a self-describing snapshot of the full catalog and price
// history table.
func (l *Ledger) Export(ctx context.Context) (models.ExportEnvelope, error) {
	products, err := l.readProducts(ctx)
	if err != nil {
		return models.ExportEnvelope{}, fmt.Errorf("can't export products: %w", err)
	}

	histories, err := l.readHistories(ctx)
	if err != nil {
		return models.ExportEnvelope{}, fmt.Errorf("can't export price history: %w", err)
	}

	return models.ExportEnvelope{
		Version:      models.ExportVersion,
		ExportDate:   l.clock.Timestamp(),
		Products:     products,
		PriceHistory: histories,
	}, nil
}

// Import validates raw as an export envelope and wholesale-replaces the
// catalog and price history table. Validation failure is reported as a
// *ValidationError without mutating existing state. Returns the number of
// imported products.
func (l *Ledger) Import(ctx context.Context, raw []byte) (int, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return 0, &ValidationError{Reason: "payload is not a JSON object"}
	}
	if _, ok := shape["version"]; !ok {
		return 0, &ValidationError{Reason: "missing version tag"}
	}
	if _, ok := shape["products"]; !ok {
		return 0, &ValidationError{Reason: "missing product catalog"}
	}

	var envelope models.ExportEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return 0, &ValidationError{Reason: "malformed envelope: " + err.Error()}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writeProducts(ctx, envelope.Products); err != nil {
		return 0, fmt.Errorf("can't import products: %w", err)
	}
	if err := l.writeHistories(ctx, envelope.PriceHistory); err != nil {
		return 0, fmt.Errorf("can't import price history: %w", err)
	}

	if err := l.cache.Clear(ctx); err != nil {
		return 0, fmt.Errorf("can't clear cache after import: %w", err)
	}

	return len(envelope.Products), nil
}

// appendLocked appends a point for id at the clock's current timestamp and
// prunes everything older than the retention window. Callers hold l.mu.
func (l *Ledger) appendLocked(ctx context.Context, id string, price int64) error {
	histories, err := l.readHistories(ctx)
	if err != nil {
		return fmt.Errorf("can't append price point: %w", err)
	}

	now := l.clock.Timestamp()
	oldest := now - retention.Milliseconds()

	history := append(histories[id], models.PricePoint{
		Price:     max(price, 0),
		Timestamp: now,
	})
	history = lo.Filter(history, func(point models.PricePoint, _ int) bool {
		return point.Timestamp >= oldest
	})
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})

	histories[id] = history
	if err := l.writeHistories(ctx, histories); err != nil {
		return fmt.Errorf("can't append price point: %w", err)
	}

	return nil
}

func (l *Ledger) readProducts(ctx context.Context) (map[string]models.ProductRecord, error) {
	raw, err := l.store.Read(ctx, store.NamespaceProducts)
	if err != nil {
		return nil, err
	}

	products := make(map[string]models.ProductRecord, len(raw))
	for id, blob := range raw {
		var record models.ProductRecord
		if err := json.Unmarshal(blob, &record); err != nil {
			return nil, fmt.Errorf("corrupt product record %q: %w", id, err)
		}
		products[id] = record
	}

	return products, nil
}

func (l *Ledger) writeProducts(ctx context.Context, products map[string]models.ProductRecord) error {
	raw := make(map[string]json.RawMessage, len(products))
	for id, record := range products {
		blob, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("can't encode product record %q: %w", id, err)
		}
		raw[id] = blob
	}

	return l.store.Write(ctx, store.NamespaceProducts, raw)
}

func (l *Ledger) readHistories(ctx context.Context) (map[string][]models.PricePoint, error) {
	raw, err := l.store.Read(ctx, store.NamespacePriceHistory)
	if err != nil {
		return nil, err
	}

	histories := make(map[string][]models.PricePoint, len(raw))
	for id, blob := range raw {
		var history []models.PricePoint
		if err := json.Unmarshal(blob, &history); err != nil {
			return nil, fmt.Errorf("corrupt price history %q: %w", id, err)
		}
		histories[id] = history
	}

	return histories, nil
}

func (l *Ledger) writeHistories(ctx context.Context, histories map[string][]models.PricePoint) error {
	raw := make(map[string]json.RawMessage, len(histories))
	for id, history := range histories {
		blob, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("can't encode price history %q: %w", id, err)
		}
		raw[id] = blob
	}

	return l.store.Write(ctx, store.NamespacePriceHistory, raw)
}

func sameCalendarDay(a, b time.Time) bool {
	aYear, aMonth, aDay := a.Date()
	bYear, bMonth, bDay := b.Date()
	return aYear == bYear && aMonth == bMonth && aDay == bDay
}
