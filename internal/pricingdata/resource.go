package pricingdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Simplici0/signworks/internal/pricing"
)

// DefaultTTL is how long a loaded snapshot stays valid.
const DefaultTTL = 30 * time.Minute

const flightKey = "snapshot"

// Invalidator is implemented by shared tiers that must be dropped together
// with the in-process entry.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type entry struct {
	snap       *Snapshot
	loadedAt   time.Time
	generation uint64
}

// Resource is the pricing.Source used at runtime. It holds at most one
// snapshot, reloads it after the TTL and coalesces concurrent loads into a
// single call to the loader.
type Resource struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
	tiers  []Invalidator

	group singleflight.Group

	mu      sync.RWMutex
	current *entry
	gen     uint64
	// epoch changes on ClearCache so a load started before the clear is
	// returned to its waiters but not stored.
	epoch uint64
}

type Option func(*Resource)

func WithTTL(ttl time.Duration) Option {
	return func(r *Resource) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resource) { r.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Resource) {
		if log != nil {
			r.log = log
		}
	}
}

// WithInvalidator registers a shared tier cleared by ClearCache.
func WithInvalidator(inv Invalidator) Option {
	return func(r *Resource) { r.tiers = append(r.tiers, inv) }
}

func NewResource(loader Loader, opts ...Option) *Resource {
	r := &Resource{
		loader: loader,
		ttl:    DefaultTTL,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resource) fresh() *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil || r.now().Sub(r.current.loadedAt) >= r.ttl {
		return nil
	}
	return r.current
}

// Snapshot returns the current snapshot and its generation, loading it when
// absent or expired. A caller whose ctx ends stops waiting; the shared load
// keeps running for everyone else.
func (r *Resource) Snapshot(ctx context.Context) (*Snapshot, uint64, error) {
	if e := r.fresh(); e != nil {
		return e.snap, e.generation, nil
	}

	ch := r.group.DoChan(flightKey, func() (any, error) {
		if e := r.fresh(); e != nil {
			return e, nil
		}
		return r.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, 0, res.Err
		}
		e := res.Val.(*entry)
		return e.snap, e.generation, nil
	}
}

func (r *Resource) load(ctx context.Context) (*entry, error) {
	r.mu.RLock()
	epoch := r.epoch
	r.mu.RUnlock()

	start := r.now()
	snap, err := r.loader.Load(ctx)
	if err != nil {
		r.log.Error("pricing snapshot load failed", zap.Error(err))
		return nil, fmt.Errorf("load pricing snapshot: %w", err)
	}

	r.mu.Lock()
	r.gen++
	e := &entry{snap: snap, loadedAt: r.now(), generation: r.gen}
	if r.epoch == epoch {
		r.current = e
	}
	r.mu.Unlock()

	r.log.Info("pricing snapshot loaded",
		zap.Uint64("generation", e.generation),
		zap.Duration("duration", r.now().Sub(start)),
	)
	return e, nil
}

// Generation loads the snapshot if needed and reports its generation.
// Lookup tables built from one generation stay valid until it changes.
// Pin returns the current snapshot as a Source. Reads through it all come
// from one generation, however long the caller holds it.
func (r *Resource) Pin(ctx context.Context) (pricing.Source, uint64, error) {
	snap, gen, err := r.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	return snap, gen, nil
}

func (r *Resource) Generation(ctx context.Context) (uint64, error) {
	_, gen, err := r.Snapshot(ctx)
	return gen, err
}

// ClearCache drops the in-process snapshot and every shared tier. The next
// read reloads from the backing store.
func (r *Resource) ClearCache(ctx context.Context) error {
	r.mu.Lock()
	r.current = nil
	r.epoch++
	r.mu.Unlock()
	r.group.Forget(flightKey)

	var errs []error
	for _, tier := range r.tiers {
		if err := tier.Invalidate(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.log.Info("pricing cache cleared")
	return errors.Join(errs...)
}

var _ pricing.Source = (*Resource)(nil)

func (r *Resource) GetChannelLetterType(ctx context.Context, name string) (*pricing.ChannelLetterType, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetChannelLetterType(ctx, name)
}

func (r *Resource) GetLed(ctx context.Context, code string) (*pricing.LED, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetLed(ctx, code)
}

func (r *Resource) GetLedByID(ctx context.Context, id int64) (*pricing.LED, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetLedByID(ctx, id)
}

func (r *Resource) GetDefaultLed(ctx context.Context) (*pricing.LED, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetDefaultLed(ctx)
}

func (r *Resource) GetPowerSupplyByType(ctx context.Context, psType string) (*pricing.PowerSupply, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetPowerSupplyByType(ctx, psType)
}

func (r *Resource) GetPowerSupplyByID(ctx context.Context, id int64) (*pricing.PowerSupply, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetPowerSupplyByID(ctx, id)
}

func (r *Resource) GetDefaultULPowerSupply(ctx context.Context) (*pricing.PowerSupply, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetDefaultULPowerSupply(ctx)
}

func (r *Resource) GetDefaultNonULPowerSupply(ctx context.Context) (*pricing.PowerSupply, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetDefaultNonULPowerSupply(ctx)
}

func (r *Resource) ListPowerSupplies(ctx context.Context) ([]pricing.PowerSupply, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ListPowerSupplies(ctx)
}

func (r *Resource) GetUlListingPricing(ctx context.Context, listingType string) (*pricing.ULListingPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetUlListingPricing(ctx, listingType)
}

func (r *Resource) GetWiringPricing(ctx context.Context) (*pricing.WiringPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetWiringPricing(ctx)
}

func (r *Resource) GetPinType(ctx context.Context, name string) (*pricing.PinType, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetPinType(ctx, name)
}

func (r *Resource) GetPaintingPricing(ctx context.Context) (*pricing.PaintingPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetPaintingPricing(ctx)
}

func (r *Resource) GetSubstrateCutPricing(ctx context.Context, name string) (*pricing.SubstrateCutPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetSubstrateCutPricing(ctx, name)
}

func (r *Resource) GetSubstrateCutPricingMap(ctx context.Context) (map[string]pricing.SubstrateCutPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetSubstrateCutPricingMap(ctx)
}

func (r *Resource) GetSubstrateCutBasePricingMap(ctx context.Context) (map[string]pricing.SubstrateBasePricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetSubstrateCutBasePricingMap(ctx)
}

func (r *Resource) GetPushThruAssemblyPricing(ctx context.Context) (*pricing.PushThruAssemblyPricing, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetPushThruAssemblyPricing(ctx)
}

func (r *Resource) GetHingedRacewayPricing(ctx context.Context) ([]pricing.HingedRacewayPrice, error) {
	snap, _, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetHingedRacewayPricing(ctx)
}
