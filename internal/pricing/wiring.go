package pricing

import (
	"context"
	"fmt"
)

const (
	wirePieces       = Field1
	wireFeetPerPiece = Field2
	wireExtraFeet    = Field3
	wirePlugs        = Field4
)

type WiringCalculator struct {
	src Source
}

func NewWiringCalculator(src Source) *WiringCalculator {
	return &WiringCalculator{src: src}
}

func (c *WiringCalculator) ProductType() ProductType { return ProductWiring }

func (c *WiringCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

// WireFeet is pieces × feet per piece plus any loose extra footage.
func WireFeet(pieces, feetPerPiece, extra float64) float64 {
	return max(0, pieces)*max(0, feetPerPiece) + max(0, extra)
}

func (c *WiringCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	pv := in.ParsedValues
	pieces, _ := pv.Number(wirePieces)
	perPiece, _ := pv.Number(wireFeetPerPiece)
	extra, _ := pv.Number(wireExtraFeet)
	plugs, _ := pv.Number(wirePlugs)

	feet := WireFeet(pieces, perPiece, extra)
	if feet <= 0 && plugs <= 0 {
		return nil, "Wire length or plugs required", nil
	}

	rates, err := c.src.GetWiringPricing(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("get wiring pricing: %w", err)
	}
	if rates == nil {
		return nil, "", missingRate("Wiring pricing", "")
	}

	var b lineBuilder
	if feet > 0 {
		total := RoundCents(feet * rates.WirePricePerFoot)
		b.add(ComponentItem{
			Name:               "Wire",
			Price:              total,
			Type:               ComponentWire,
			CalculationDisplay: fmt.Sprintf("%s ft × %s/ft = %s", formatDim(feet), FormatMoney(rates.WirePricePerFoot), FormatMoney(total)),
			Count:              countPtr(feet),
		})
	}
	if plugs > 0 {
		total := RoundCents(plugs * rates.PlugPrice)
		b.add(ComponentItem{
			Name:               "Plugs",
			Price:              total,
			Type:               ComponentPlugs,
			CalculationDisplay: fmt.Sprintf("%s × %s = %s", FormatQuantity(plugs), FormatMoney(rates.PlugPrice), FormatMoney(total)),
			Count:              countPtr(plugs),
		})
	}
	return b.finalize(in, "Wiring", qty, nil), "", nil
}
