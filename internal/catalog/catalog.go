// Package catalog keeps an in-memory snapshot of the locality catalog and the
// stored attribute overrides, so ranking requests never touch the database.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/metrics"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// Snapshot is a point-in-time copy of the catalog. Callers own it.
type Snapshot struct {
	Localities []*store.Locality
	Overrides  map[string]store.Attributes
	LoadedAt   time.Time
}

type Catalog struct {
	store    store.Store
	hermes   hermes.Client
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *slog.Logger

	mu         sync.RWMutex
	localities []*store.Locality
	byZip      map[string]*store.Locality
	overrides  map[string]store.Attributes
	loadedAt   time.Time

	refreshCh chan struct{}
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func New(s store.Store, h hermes.Client, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) *Catalog {
	if h == nil {
		h = hermes.NopClient{}
	}
	return &Catalog{
		store:     s,
		hermes:    h,
		metrics:   m,
		interval:  interval,
		logger:    logger,
		byZip:     make(map[string]*store.Locality),
		overrides: make(map[string]store.Attributes),
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Refresh reloads localities and overrides from the store. On error the
// previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	localities, err := c.store.ListLocalities(ctx)
	if err != nil {
		c.metrics.ObserveRefresh(0, 0, err)
		return err
	}
	overrides, err := c.store.ListOverrides(ctx)
	if err != nil {
		c.metrics.ObserveRefresh(0, 0, err)
		return err
	}

	byZip := make(map[string]*store.Locality, len(localities))
	for _, l := range localities {
		byZip[l.ZipCode] = l
	}
	ov := make(map[string]store.Attributes, len(overrides))
	for _, o := range overrides {
		ov[o.ZipCode] = o.Attributes
	}

	c.mu.Lock()
	c.localities = localities
	c.byZip = byZip
	c.overrides = ov
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.metrics.ObserveRefresh(len(localities), len(overrides), nil)
	c.logger.Debug("catalog refreshed", "localities", len(localities), "overrides", len(overrides))
	return nil
}

// Snapshot returns deep copies of the current catalog.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Localities: make([]*store.Locality, len(c.localities)),
		Overrides:  make(map[string]store.Attributes, len(c.overrides)),
		LoadedAt:   c.loadedAt,
	}
	for i, l := range c.localities {
		snap.Localities[i] = l.Clone()
	}
	for zip, a := range c.overrides {
		snap.Overrides[zip] = a.Clone()
	}
	return snap
}

// Locality returns a copy of one catalog entry.
func (c *Catalog) Locality(zip string) (*store.Locality, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.byZip[zip]
	if !ok {
		return nil, false
	}
	return l.Clone(), true
}

// Size returns the number of localities in the snapshot.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.localities)
}

// Start runs the periodic refresh loop and subscribes to catalog change
// events, which trigger an immediate refresh.
func (c *Catalog) Start(ctx context.Context) {
	c.setupSubscriptions()
	c.wg.Add(1)
	go c.refreshLoop(ctx)
}

func (c *Catalog) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// RequestRefresh schedules a refresh on the loop. Requests made while one is
// already pending are coalesced.
func (c *Catalog) RequestRefresh() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

func (c *Catalog) refreshLoop(ctx context.Context) {
	defer c.wg.Done()

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-tick:
			c.refresh(ctx, "interval")
		case <-c.refreshCh:
			c.refresh(ctx, "event")
		}
	}
}

func (c *Catalog) refresh(ctx context.Context, trigger string) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("catalog refresh failed", "trigger", trigger, "error", err)
	}
}

func (c *Catalog) setupSubscriptions() {
	subjects := []string{
		hermes.SubjectLocalityUpdatedAll,
		hermes.SubjectLocalityDeletedAll,
		hermes.SubjectOverrideRecordedAll,
		hermes.SubjectOverrideClearedAll,
	}
	for _, subject := range subjects {
		err := c.hermes.Subscribe(subject, func(subject string, data []byte) {
			var evt struct {
				ZipCode string `json:"zip_code"`
			}
			_ = json.Unmarshal(data, &evt)
			if evt.ZipCode == "" {
				evt.ZipCode = zipFromSubject(subject)
			}
			c.logger.Debug("catalog change event", "subject", subject, "zip", evt.ZipCode)
			c.RequestRefresh()
		})
		if err != nil {
			c.logger.Warn("catalog subscription failed", "subject", subject, "error", err)
		}
	}
}

// zipFromSubject extracts the postal code from zipfit.<kind>.<zip>.<event>.
func zipFromSubject(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) < 4 {
		return ""
	}
	return parts[2]
}
