package pricing

import (
	"context"
	"fmt"
)

const (
	neonLength       = Field1
	neonLEDType      = Field2
	neonBacking      = Field3
	neonBackingName  = Field4
	neonSolderJoints = Field5
	neonPSCount      = Field6
	neonPSType       = Field7
)

var ledNeonMergeRules = []MergeRule{
	{Source: ComponentSolderJoints, Target: ComponentLEDNeon},
}

// LEDNeonCalculator prices flexible LED neon by the foot, with an optional
// cut backing and the supplies to drive it.
type LEDNeonCalculator struct {
	src Source
}

func NewLEDNeonCalculator(src Source) *LEDNeonCalculator {
	return &LEDNeonCalculator{src: src}
}

func (c *LEDNeonCalculator) ProductType() ProductType { return ProductLEDNeon }

func (c *LEDNeonCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

func (c *LEDNeonCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	pv := in.ParsedValues

	inches, ok := pv.Number(neonLength)
	if !ok || inches <= 0 {
		inches = in.CalculatedValues.TotalLinearInches
	}
	if inches <= 0 {
		return nil, "LED neon length required", nil
	}

	code, _ := pv.Text(neonLEDType)
	led, err := resolveLED(ctx, c.src, code, "", in.CustomerPreferences)
	if err != nil {
		return nil, "", err
	}
	perFoot := led.PricePerFoot
	if perFoot <= 0 {
		perFoot = led.Price
	}
	wattsPerFoot := led.WattsPerFoot
	if wattsPerFoot <= 0 {
		wattsPerFoot = led.Watts
	}

	feet := inches / 12
	var b lineBuilder
	neonTotal := RoundCents(feet * perFoot)
	b.add(ComponentItem{
		Name:               "LED Neon",
		Price:              neonTotal,
		Type:               ComponentLEDNeon,
		CalculationDisplay: fmt.Sprintf("%.2f ft %s × %s/ft = %s", feet, led.Code, FormatMoney(perFoot), FormatMoney(neonTotal)),
		Metadata:           map[string]any{"ledCode": led.Code, "linearInches": inches},
	})

	if face, ok := pv.Dimensions(neonBacking); ok {
		if len(face) < 2 || face[0] <= 0 || face[1] <= 0 {
			return nil, "", domainErr("Enter backing width and height",
				fmt.Errorf("%w: neon backing %v", ErrInvalidInput, face))
		}
		name, ok := pv.Text(neonBackingName)
		if !ok {
			return nil, "", domainErr("Backing material required",
				fmt.Errorf("%w: neon backing without material", ErrInvalidInput))
		}
		sc, err := c.src.GetSubstrateCutPricing(ctx, name)
		if err != nil {
			return nil, "", fmt.Errorf("get substrate pricing %q: %w", name, err)
		}
		if sc == nil {
			return nil, "", missingRate("Backing material", name)
		}
		cost, err := substrateCost(sc, face[0], face[1], 1)
		if err != nil {
			return nil, "", err
		}
		total := RoundCents(cost.material + cost.cutting)
		b.add(ComponentItem{
			Name:  "Backing",
			Price: total,
			Type:  ComponentBacking,
			CalculationDisplay: fmt.Sprintf("%s %sx%s (%.3f sheet) = %s",
				sc.Name, formatDim(face[0]), formatDim(face[1]), cost.sheets, FormatMoney(total)),
			Metadata: map[string]any{"substrate": sc.Name},
		})
	}

	if joints, ok := pv.Number(neonSolderJoints); ok && joints > 0 {
		wiring, err := c.src.GetWiringPricing(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("get wiring pricing: %w", err)
		}
		if wiring == nil {
			return nil, "", missingRate("Wiring pricing", "")
		}
		total := RoundCents(joints * wiring.SolderJointCost)
		b.add(ComponentItem{
			Name:               "Solder Joints",
			Price:              total,
			Type:               ComponentSolderJoints,
			CalculationDisplay: fmt.Sprintf("%s × %s = %s", FormatQuantity(joints), FormatMoney(wiring.SolderJointCost), FormatMoney(total)),
			Count:              countPtr(joints),
		})
	}

	psType, _ := pv.Text(neonPSType)
	ps, err := SelectPowerSupplies(ctx, c.src, PowerSupplyRequest{
		TotalWattage:  feet * wattsPerFoot,
		HasUL:         in.CalculatedValues.SectionHasUL,
		CountOverride: pv.Override(neonPSCount),
		TypeOverride:  psType,
		Preferences:   in.CustomerPreferences,
	})
	if err != nil {
		return nil, "", err
	}
	b.add(ps.Components...)

	return b.finalize(in, "LED Neon", qty, ledNeonMergeRules), "", nil
}
