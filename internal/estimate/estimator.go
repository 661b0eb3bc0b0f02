package estimate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/signworks/internal/pricing"
)

// DefaultMaxParallelRows bounds concurrent row pricing.
const DefaultMaxParallelRows = 8

// pinner is implemented by sources that can hand out one consistent view of
// their data, tagged with a generation. An estimate reads every table from
// that view, and lookup tables are rebuilt only when the generation moves.
type pinner interface {
	Pin(ctx context.Context) (pricing.Source, uint64, error)
}

// Estimator prices estimates against one pricing source.
type Estimator struct {
	src         pricing.Source
	registry    pricing.Registry
	maxParallel int
	log         *zap.Logger
	now         func() time.Time

	mu        sync.Mutex
	tables    *pricing.LookupTables
	tablesGen uint64
}

type Option func(*Estimator)

func WithMaxParallelRows(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Estimator) {
		if log != nil {
			e.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

func New(src pricing.Source, opts ...Option) *Estimator {
	e := &Estimator{
		src:         src,
		registry:    pricing.NewRegistry(src),
		maxParallel: DefaultMaxParallelRows,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate prices every row of req. Row failures are reported on their line;
// an error is returned only when ctx ends, the pricing data cannot be loaded
// or the lookup tables cannot be built.
func (e *Estimator) Calculate(ctx context.Context, req Request) (*Estimate, error) {
	src, registry, gen, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	inputs := Prepare(req.Rows, req.Preferences, registry)

	var tables *pricing.LookupTables
	if needsTables(inputs) {
		tables, err = e.lookupTables(ctx, src, gen)
		if err != nil {
			return nil, err
		}
	}

	lines := make([]Line, len(inputs))
	line := func(ctx context.Context, i int) Line {
		return Line{
			RowID:                inputs[i].RowID,
			Section:              req.Rows[i].Section,
			ProductType:          inputs[i].ProductTypeID,
			RowCalculationResult: priceRow(ctx, registry, inputs[i], tables),
		}
	}

	// Rows asking for UL price one by one in display order. The base fee
	// moves off later rows only once a row has actually charged UL; pending
	// and failed rows charge nothing.
	ulRows := ulRequests(inputs, registry)
	charged := false
	for i := range inputs {
		setULBilled(&inputs[i], charged)
		if !ulRows[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines[i] = line(ctx, i)
		charged = charged || pricing.ChargesUL(lines[i].RowCalculationResult)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i := range inputs {
		if ulRows[i] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i] = line(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Rows priced after cancellation carry errors nobody asked for.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	est := &Estimate{
		ID:          uuid.NewString(),
		CreatedAt:   e.now().UTC(),
		Title:       req.Title,
		Notes:       req.Notes,
		Preferences: req.Preferences,
		Lines:       lines,
		Totals:      Summarize(lines),
		Generation:  gen,
	}
	e.log.Debug("estimate priced",
		zap.String("estimate_id", est.ID),
		zap.Int("rows", len(lines)),
		zap.Int("completed", est.CompletedRows),
		zap.Int("pending", est.PendingRows),
		zap.Int("errors", est.ErrorRows),
		zap.Float64("subtotal", est.Subtotal),
	)
	return est, nil
}

// view pins the source for one estimate. Sources that cannot pin are read
// directly at generation 0.
func (e *Estimator) view(ctx context.Context) (pricing.Source, pricing.Registry, uint64, error) {
	p, ok := e.src.(pinner)
	if !ok {
		return e.src, e.registry, 0, nil
	}
	src, gen, err := p.Pin(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load pricing: %w", err)
	}
	return src, pricing.NewRegistry(src), gen, nil
}

func priceRow(ctx context.Context, registry pricing.Registry, in pricing.ValidatedPricingInput, tables *pricing.LookupTables) pricing.RowCalculationResult {
	calc, ok := registry[in.ProductTypeID]
	if !ok {
		return pricing.Failed(&pricing.DomainError{
			Display: "Unknown product type",
			Err:     fmt.Errorf("%w: product type %q", pricing.ErrInvalidInput, in.ProductTypeID),
		})
	}
	return calc.Calculate(ctx, in, tables)
}

func needsTables(inputs []pricing.ValidatedPricingInput) bool {
	for _, in := range inputs {
		switch in.ProductTypeID {
		case pricing.ProductBacker, pricing.ProductPushThru:
			return true
		}
	}
	return false
}

// lookupTables returns tables built from src for gen, building them at most
// once per generation.
func (e *Estimator) lookupTables(ctx context.Context, src pricing.Source, gen uint64) (*pricing.LookupTables, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tables != nil && e.tablesGen == gen {
		return e.tables, nil
	}

	start := e.now()
	tables, err := pricing.GenerateLookupTables(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("build lookup tables: %w", err)
	}
	e.tables, e.tablesGen = tables, gen
	e.log.Debug("lookup tables built", zap.Uint64("generation", gen), zap.Duration("duration", e.now().Sub(start)))
	return tables, nil
}
