package pricing

import (
	"context"
	"fmt"
)

const (
	scName       = Field1
	scDims       = Field2
	scPieces     = Field3
	scPinCount   = Field4
	scPinType    = Field5
	scCutting    = Field7
	scAdjustment = Field10
)

var substrateCutMergeRules = []MergeRule{
	{Source: ComponentPins, Target: ComponentSubstrate},
	{Source: ComponentCutting, Target: ComponentSubstrate},
}

// SubstrateCutCalculator prices pieces cut from stock sheets by the share of
// the sheet they use.
type SubstrateCutCalculator struct {
	src Source
}

func NewSubstrateCutCalculator(src Source) *SubstrateCutCalculator {
	return &SubstrateCutCalculator{src: src}
}

func (c *SubstrateCutCalculator) ProductType() ProductType { return ProductSubstrateCut }

func (c *SubstrateCutCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

func (c *SubstrateCutCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	pv := in.ParsedValues

	name, ok := pv.Text(scName)
	if !ok {
		return nil, "Substrate required", nil
	}
	dims, ok := pv.Dimensions(scDims)
	if !ok {
		return nil, "Substrate dimensions required", nil
	}
	if len(dims) < 2 || dims[0] <= 0 || dims[1] <= 0 {
		return nil, "", domainErr("Enter substrate width and height",
			fmt.Errorf("%w: substrate %v", ErrInvalidInput, dims))
	}
	pieces := 1.0
	if n, ok := pv.Number(scPieces); ok {
		if n <= 0 {
			return nil, "", domainErr("Pieces must be positive",
				fmt.Errorf("%w: pieces %s", ErrInvalidInput, FormatQuantity(n)))
		}
		pieces = n
	}

	sc, err := c.src.GetSubstrateCutPricing(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("get substrate pricing %q: %w", name, err)
	}
	if sc == nil {
		return nil, "", missingRate("Substrate", name)
	}
	cost, err := substrateCost(sc, dims[0], dims[1], pieces)
	if err != nil {
		return nil, "", err
	}

	var b lineBuilder
	b.add(ComponentItem{
		Name:  sc.Name,
		Price: cost.material,
		Type:  ComponentSubstrate,
		CalculationDisplay: fmt.Sprintf("%s × %sx%s = %.3f sheet × %s = %s",
			FormatQuantity(pieces), formatDim(dims[0]), formatDim(dims[1]), cost.sheets,
			FormatMoney(sc.MaterialCostPerSheet), FormatMoney(cost.material)),
		Count:    countPtr(pieces),
		Metadata: map[string]any{"substrate": sc.Name, "sheets": cost.sheets},
	})

	switch o := pv.Override(scCutting); o.Kind {
	case OverrideDisabled:
	case OverrideCurrency:
		b.add(ComponentItem{
			Name:               "Cutting",
			Price:              o.Amount,
			Type:               ComponentCutting,
			CalculationDisplay: "Custom amount " + FormatMoney(o.Amount),
		})
	default:
		if cost.cutting > 0 {
			b.add(ComponentItem{
				Name:               "Cutting",
				Price:              cost.cutting,
				Type:               ComponentCutting,
				CalculationDisplay: fmt.Sprintf("%.3f sheet × %s = %s", cost.sheets, FormatMoney(sc.CuttingCostPerSheet), FormatMoney(cost.cutting)),
			})
		}
	}

	if pins, ok := pv.Number(scPinCount); ok && pins > 0 {
		pinName, _ := pv.Text(scPinType)
		pin, err := resolvePinType(ctx, c.src, pinName, "", in.CustomerPreferences)
		if err != nil {
			return nil, "", err
		}
		b.add(pinsComponent(pins, pin))
	}

	if adj, ok := adjustmentComponent(pv.Override(scAdjustment)); ok {
		b.add(adj)
	}
	return b.finalize(in, sc.Name, qty, substrateCutMergeRules), "", nil
}
