package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"
)

const (
	// AngleLinearDivisor is the length of one aluminum angle stick in inches.
	AngleLinearDivisor = 240.0

	// DefaultMarkup applies when a base material carries no markup.
	DefaultMarkup = 1.0
	// DefaultShippingPerSheet applies when a base material carries no
	// shipping cost.
	DefaultShippingPerSheet = 25.0

	// Base material names in the substrate base pricing map.
	MaterialAluminumSheet = "aluminum_sheet"
	MaterialACMSheet      = "acm_sheet"
	MaterialAluminumAngle = "aluminum_angle"
)

// PerimeterType selects which edges receive angle framing.
type PerimeterType int

const (
	PerimeterFull PerimeterType = iota
	PerimeterHorizontalOnly
)

// MaterialConfig is the per-family input of the price formula.
type MaterialConfig struct {
	PerimeterType        PerimeterType
	ReferenceWidth       float64
	ReferenceHeight      float64
	TotalSheetCost       float64
	ShippingCostPerSheet float64
	TotalAngleCost       float64
	PerCut               float64
}

// CategoryPrice computes the rounded price of one category pair.
func CategoryPrice(x, y float64, cfg MaterialConfig) float64 {
	refArea := cfg.ReferenceWidth * cfg.ReferenceHeight
	area := x * y

	areaCost := area / refArea * cfg.TotalSheetCost
	sheetCount := ceilCount(area / refArea)
	shippingCost := sheetCount * cfg.ShippingCostPerSheet

	perimeter := 2 * (x + y)
	if cfg.PerimeterType == PerimeterHorizontalOnly {
		perimeter = 2 * x
	}
	angleCost := perimeter / AngleLinearDivisor * cfg.TotalAngleCost
	angleCutCost := ceilCount(perimeter/AngleLinearDivisor) * cfg.PerCut

	return RoundUpTo(areaCost+shippingCost+angleCost+angleCutCost, 5)
}

// priceGrid is an immutable category-key to price map.
type priceGrid struct {
	xs, ys []float64
	prices map[string]float64
}

func buildGrid(xs, ys []float64, cfg MaterialConfig) priceGrid {
	g := priceGrid{xs: xs, ys: ys, prices: make(map[string]float64, len(xs)*len(ys))}
	for _, x := range xs {
		for _, y := range ys {
			g.prices[CategoryKey(x, y)] = CategoryPrice(x, y, cfg)
		}
	}
	return g
}

func (g priceGrid) lookup(x, y float64) (price float64, key string, err error) {
	cx, cy, err := bucket(x, y, g.xs, g.ys)
	if err != nil {
		return 0, "", err
	}
	key = CategoryKey(cx, cy)
	price, ok := g.prices[key]
	if !ok {
		return 0, "", fmt.Errorf("%w: no price for category %s", ErrDimensionOutOfRange, key)
	}
	return price, key, nil
}

// LookupTables holds the pre-computed grids for one pricing configuration.
// It is read-only after construction and safe to share across goroutines.
type LookupTables struct {
	aluminum      priceGrid
	acmSmall      priceGrid
	acmLarge      priceGrid
	racewayLens   []float64
	hingedRaceway map[string]float64
}

// Aluminum prices a normalised aluminum blank.
func (t *LookupTables) Aluminum(x, y float64) (float64, string, error) {
	return t.aluminum.lookup(x, y)
}

// ACM prices an ACM panel, falling back from the small reference panel to the
// large one.
func (t *LookupTables) ACM(x, y float64) (float64, string, error) {
	if price, key, err := t.acmSmall.lookup(x, y); err == nil {
		return price, key, nil
	}
	price, key, err := t.acmLarge.lookup(x, y)
	if err != nil {
		return 0, "", err
	}
	return price, key, nil
}

// HingedRaceway prices a raceway length from the flat table.
func (t *LookupTables) HingedRaceway(length float64) (float64, string, error) {
	c, err := FindCategory(length, t.racewayLens)
	if err != nil {
		return 0, "", err
	}
	key := formatDim(c)
	return t.hingedRaceway[key], key, nil
}

// Entries returns a copy of one family's grid, keyed by category.
func (t *LookupTables) Entries(family string) map[string]float64 {
	var src map[string]float64
	switch family {
	case "aluminum":
		src = t.aluminum.prices
	case "acmSmall":
		src = t.acmSmall.prices
	case "acmLarge":
		src = t.acmLarge.prices
	case "hingedRaceway":
		src = t.hingedRaceway
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// MaterialConfigs are the three formula-priced families.
type MaterialConfigs struct {
	Aluminum MaterialConfig
	ACMSmall MaterialConfig
	ACMLarge MaterialConfig
}

// ResolveMaterialConfigs derives the formula inputs from base rates. A missing
// material is a configuration error; only markup and shipping fall back.
func ResolveMaterialConfigs(base map[string]SubstrateBasePricing) (MaterialConfigs, error) {
	aluminum, ok := base[MaterialAluminumSheet]
	if !ok {
		return MaterialConfigs{}, missingRate("Base material", MaterialAluminumSheet)
	}
	acm, ok := base[MaterialACMSheet]
	if !ok {
		return MaterialConfigs{}, missingRate("Base material", MaterialACMSheet)
	}
	angle, ok := base[MaterialAluminumAngle]
	if !ok {
		return MaterialConfigs{}, missingRate("Base material", MaterialAluminumAngle)
	}

	angleCost := angle.SheetCost * markupOf(angle)
	perCut := angle.CutCost

	return MaterialConfigs{
		Aluminum: MaterialConfig{
			PerimeterType:        PerimeterFull,
			ReferenceWidth:       96,
			ReferenceHeight:      48,
			TotalSheetCost:       aluminum.SheetCost * markupOf(aluminum),
			ShippingCostPerSheet: shippingOf(aluminum),
			TotalAngleCost:       angleCost,
			PerCut:               perCut,
		},
		ACMSmall: MaterialConfig{
			PerimeterType:        PerimeterHorizontalOnly,
			ReferenceWidth:       96,
			ReferenceHeight:      48,
			TotalSheetCost:       acm.SheetCost * markupOf(acm),
			ShippingCostPerSheet: shippingOf(acm),
			TotalAngleCost:       angleCost,
			PerCut:               perCut,
		},
		ACMLarge: MaterialConfig{
			PerimeterType:   PerimeterHorizontalOnly,
			ReferenceWidth:  120,
			ReferenceHeight: 60,
			// A 5x10 panel costs its area share of the 4x8 sheet price.
			TotalSheetCost:       acm.SheetCost * markupOf(acm) * (120 * 60) / (96 * 48),
			ShippingCostPerSheet: shippingOf(acm),
			TotalAngleCost:       angleCost,
			PerCut:               perCut,
		},
	}, nil
}

func markupOf(b SubstrateBasePricing) float64 {
	if b.Markup <= 0 {
		return DefaultMarkup
	}
	return b.Markup
}

func shippingOf(b SubstrateBasePricing) float64 {
	if b.ShippingPerSheet <= 0 {
		return DefaultShippingPerSheet
	}
	return b.ShippingPerSheet
}

// NewLookupTables builds every grid from resolved material configs and the
// flat raceway table.
func NewLookupTables(cfgs MaterialConfigs, raceway []HingedRacewayPrice) (*LookupTables, error) {
	if len(raceway) == 0 {
		return nil, missingRate("Hinged raceway pricing", "")
	}

	rows := append([]HingedRacewayPrice(nil), raceway...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Length < rows[j].Length })

	t := &LookupTables{
		aluminum:      buildGrid(AluminumXCategories, AluminumYCategories, cfgs.Aluminum),
		acmSmall:      buildGrid(ACMSmallXCategories, ACMSmallYCategories, cfgs.ACMSmall),
		acmLarge:      buildGrid(ACMLargeXCategories, ACMLargeYCategories, cfgs.ACMLarge),
		racewayLens:   make([]float64, 0, len(rows)),
		hingedRaceway: make(map[string]float64, len(rows)),
	}
	for _, r := range rows {
		if r.Length <= 0 || r.Price <= 0 || math.IsNaN(r.Price) {
			return nil, domainErr("Hinged raceway pricing is invalid",
				fmt.Errorf("%w: raceway row length=%s price=%s", ErrMissingRate, formatDim(r.Length), formatDim(r.Price)))
		}
		key := formatDim(r.Length)
		if _, dup := t.hingedRaceway[key]; dup {
			continue
		}
		t.racewayLens = append(t.racewayLens, r.Length)
		t.hingedRaceway[key] = RoundUpTo(r.Price, 5)
	}
	return t, nil
}

// GenerateLookupTables fetches base rates once and builds all four tables.
// Any fetch or configuration failure aborts before a table is returned.
func GenerateLookupTables(ctx context.Context, src Source) (*LookupTables, error) {
	base, err := src.GetSubstrateCutBasePricingMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch substrate base pricing: %w", err)
	}
	cfgs, err := ResolveMaterialConfigs(base)
	if err != nil {
		return nil, err
	}
	raceway, err := src.GetHingedRacewayPricing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch hinged raceway pricing: %w", err)
	}
	return NewLookupTables(cfgs, raceway)
}
