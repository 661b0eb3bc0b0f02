package pricing

import (
	"context"
	"fmt"
)

const (
	paintFace   = Field1
	paintTrim   = Field2
	paintReturn = Field3
	paintPrimer = Field4
	paintClear  = Field5
	paintPrep   = Field6

	// DefaultPaintingMinimum is the floor when the rate table has none.
	DefaultPaintingMinimum = 200.0
)

type PaintingCalculator struct {
	src Source
}

func NewPaintingCalculator(src Source) *PaintingCalculator {
	return &PaintingCalculator{src: src}
}

func (c *PaintingCalculator) ProductType() ProductType { return ProductPainting }

func (c *PaintingCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

// PaintingMultiplier is 1.0 plus an addition for each of primer and clear
// coat.
func PaintingMultiplier(p *PaintingPricing, primer, clearCoat bool) float64 {
	m := 1.0
	if primer {
		m += additionOr(p.PrimerAddition, 0.5)
	}
	if clearCoat {
		m += additionOr(p.ClearCoatAddition, 0.5)
	}
	return m
}

func additionOr(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func (c *PaintingCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	pv := in.ParsedValues

	face, hasFace := pv.Dimensions(paintFace)
	trimIn, hasTrim := pv.Number(paintTrim)
	returnDepth, hasReturn := pv.Number(paintReturn)
	prepHours, hasPrep := pv.Number(paintPrep)
	hasTrim = hasTrim && trimIn > 0
	hasReturn = hasReturn && returnDepth > 0
	hasPrep = hasPrep && prepHours > 0
	if !hasFace && !hasTrim && !hasReturn && !hasPrep {
		return nil, "Painting dimensions required", nil
	}
	if hasFace && (len(face) < 2 || face[0] <= 0 || face[1] <= 0) {
		return nil, "", domainErr("Enter face width and height",
			fmt.Errorf("%w: painting face %v", ErrInvalidInput, face))
	}
	if hasReturn && !hasFace {
		return nil, "", domainErr("Return depth needs face dimensions",
			fmt.Errorf("%w: return depth without face", ErrInvalidInput))
	}

	rates, err := c.src.GetPaintingPricing(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("get painting pricing: %w", err)
	}
	if rates == nil {
		return nil, "", missingRate("Painting pricing", "")
	}

	var (
		areaCost, trimCost, returnCost float64
		parts                          []string
	)
	if hasFace {
		sqft := face[0] * face[1] / 144
		areaCost = sqft * rates.AreaRatePerSqft
		parts = append(parts, fmt.Sprintf("face %.2f sqft × %s", sqft, FormatMoney(rates.AreaRatePerSqft)))
	}
	if hasTrim {
		feet := trimIn / 12
		trimCost = feet * rates.TrimRatePerFoot
		parts = append(parts, fmt.Sprintf("trim %.2f ft × %s", feet, FormatMoney(rates.TrimRatePerFoot)))
	}
	if hasReturn {
		sqft := 2 * (face[0] + face[1]) * returnDepth / 144
		returnCost = sqft * rates.ReturnRatePerSqft
		parts = append(parts, fmt.Sprintf("returns %.2f sqft × %s", sqft, FormatMoney(rates.ReturnRatePerSqft)))
	}

	primer := pv.Override(paintPrimer).IsEnabled()
	clearCoat := pv.Override(paintClear).IsEnabled()
	multiplier := PaintingMultiplier(rates, primer, clearCoat)

	var b lineBuilder
	if hasFace || hasTrim || hasReturn {
		subtotal := RoundCents((areaCost + trimCost + returnCost) * multiplier)
		minimum := rates.Minimum
		if minimum <= 0 {
			minimum = DefaultPaintingMinimum
		}
		display := joinParts(parts)
		if multiplier != 1 {
			display += fmt.Sprintf(" × %g", multiplier)
		}
		display += " = " + FormatMoney(subtotal)
		applied := subtotal < minimum
		if applied {
			display += fmt.Sprintf(" (minimum %s applied)", FormatMoney(minimum))
			subtotal = minimum
		}
		b.add(ComponentItem{
			Name:               "Painting",
			Price:              subtotal,
			Type:               ComponentPainting,
			CalculationDisplay: display,
			Metadata: map[string]any{
				"multiplier":     multiplier,
				"minimumApplied": applied,
			},
		})
	}

	if hasPrep {
		total := RoundCents(prepHours * rates.PrepRatePerHour)
		b.add(ComponentItem{
			Name:               "Prep Labor",
			Price:              total,
			Type:               ComponentPrepLabor,
			CalculationDisplay: fmt.Sprintf("%s h × %s/h = %s", formatDim(prepHours), FormatMoney(rates.PrepRatePerHour), FormatMoney(total)),
			Count:              countPtr(prepHours),
		})
	}

	return b.finalize(in, "Painting", qty, nil), "", nil
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " + "
		}
		out += p
	}
	if len(parts) > 1 {
		out = "(" + out + ")"
	}
	return out
}
