package pricing

import (
	"context"
	"fmt"
)

var (
	backerAluminumSlots = []FieldSlot{Field1, Field2, Field3}
	backerACMSlots      = []FieldSlot{Field4, Field5}
)

const (
	backerRaceway    = Field6
	backerAdjustment = Field7
)

var backerMergeRules = []MergeRule{
	{Source: ComponentAluminumBacker, Target: ComponentAluminumBacker},
	{Source: ComponentACMPanel, Target: ComponentACMPanel},
}

// BackerCalculator prices aluminum backers, ACM panels and hinged raceway
// from pre-built lookup tables.
type BackerCalculator struct {
	src Source
}

func NewBackerCalculator(src Source) *BackerCalculator {
	return &BackerCalculator{src: src}
}

func (c *BackerCalculator) ProductType() ProductType { return ProductBacker }

func (c *BackerCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

func (c *BackerCalculator) price(_ context.Context, in ValidatedPricingInput, qty float64, tables *LookupTables) (*PricingCalculationData, string, error) {
	if tables == nil {
		return nil, "", domainErr("Pricing tables not loaded", ErrLookupTablesRequired)
	}
	pv := in.ParsedValues
	var b lineBuilder

	for _, slot := range backerAluminumSlots {
		dims, ok := pv.Dimensions(slot)
		if !ok {
			continue
		}
		item, err := aluminumPiece(tables, dims, "Aluminum Backer", ComponentAluminumBacker)
		if err != nil {
			return nil, "", err
		}
		b.add(item)
	}

	for _, slot := range backerACMSlots {
		dims, ok := pv.Dimensions(slot)
		if !ok {
			continue
		}
		if len(dims) < 2 {
			return nil, "", domainErr("Enter ACM width and height",
				fmt.Errorf("%w: acm panel needs 2 dimensions", ErrInvalidInput))
		}
		if dims[0] <= 0 || dims[1] <= 0 {
			return nil, "", domainErr("Dimensions must be positive",
				fmt.Errorf("%w: acm panel %sx%s", ErrInvalidInput, formatDim(dims[0]), formatDim(dims[1])))
		}
		x, y := NormalizeDimensions(dims[0], dims[1])
		price, key, err := tables.ACM(x, y)
		if err != nil {
			return nil, "", domainErr(fmt.Sprintf("ACM panel %sx%s is too large", formatDim(x), formatDim(y)), err)
		}
		b.add(ComponentItem{
			Name:               "ACM Panel",
			Price:              price,
			Type:               ComponentACMPanel,
			CalculationDisplay: fmt.Sprintf("%sx%s → %s = %s", formatDim(x), formatDim(y), key, FormatMoney(price)),
			Count:              countPtr(1),
			Metadata:           map[string]any{"category": key},
		})
	}

	if length, ok := pv.Number(backerRaceway); ok && length > 0 {
		price, key, err := tables.HingedRaceway(length)
		if err != nil {
			return nil, "", domainErr(fmt.Sprintf("Hinged raceway %s\" is too long", formatDim(length)), err)
		}
		b.add(ComponentItem{
			Name:               "Hinged Raceway",
			Price:              price,
			Type:               ComponentHingedRaceway,
			CalculationDisplay: fmt.Sprintf("%s\" → %s\" = %s", formatDim(length), key, FormatMoney(price)),
			Metadata:           map[string]any{"category": key},
		})
	}

	if b.empty() {
		return nil, "Backer dimensions required", nil
	}
	if adj, ok := adjustmentComponent(pv.Override(backerAdjustment)); ok {
		b.add(adj)
	}
	return b.finalize(in, "Backer", qty, backerMergeRules), "", nil
}

// aluminumPiece prices one formed aluminum blank from its X×Y×depth input.
func aluminumPiece(tables *LookupTables, dims []float64, name string, typ ComponentType) (ComponentItem, error) {
	x, y, err := FormedDimensions(dims)
	if err != nil {
		return ComponentItem{}, err
	}
	price, key, err := tables.Aluminum(x, y)
	if err != nil {
		return ComponentItem{}, domainErr(fmt.Sprintf("%s %sx%s is too large", name, formatDim(x), formatDim(y)), err)
	}
	return ComponentItem{
		Name:               name,
		Price:              price,
		Type:               typ,
		CalculationDisplay: fmt.Sprintf("%sx%s → %s = %s", formatDim(x), formatDim(y), key, FormatMoney(price)),
		Count:              countPtr(1),
		Metadata:           map[string]any{"category": key, "adjustedWidth": x, "adjustedHeight": y},
	}, nil
}
