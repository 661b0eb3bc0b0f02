package pricing

import (
	"context"
	"fmt"
	"math"
)

const (
	ptCabinet     = Field1
	ptAcrylic     = Field2
	ptAcrylicName = Field3
	ptLEDOverride = Field4
	ptLEDType     = Field5
	ptPSCount     = Field6
	ptPSType      = Field7
	ptAssembly    = Field8
	ptAdjustment  = Field10
)

var pushThruMergeRules = []MergeRule{
	{Source: ComponentAcrylic, Target: ComponentCabinet},
}

// PushThruCalculator prices a routed aluminum cabinet with push-thru acrylic,
// its illumination and assembly.
type PushThruCalculator struct {
	src Source
}

func NewPushThruCalculator(src Source) *PushThruCalculator {
	return &PushThruCalculator{src: src}
}

func (c *PushThruCalculator) ProductType() ProductType { return ProductPushThru }

func (c *PushThruCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

func (c *PushThruCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, tables *LookupTables) (*PricingCalculationData, string, error) {
	if tables == nil {
		return nil, "", domainErr("Pricing tables not loaded", ErrLookupTablesRequired)
	}
	pv := in.ParsedValues

	cabinet, hasCabinet := pv.Dimensions(ptCabinet)
	if !hasCabinet {
		return nil, "Cabinet dimensions required", nil
	}

	var b lineBuilder
	item, err := aluminumPiece(tables, cabinet, "Cabinet", ComponentCabinet)
	if err != nil {
		return nil, "", err
	}
	b.add(item)

	assembly, err := c.src.GetPushThruAssemblyPricing(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("get push-thru assembly pricing: %w", err)
	}
	if assembly == nil {
		return nil, "", missingRate("Push-thru assembly pricing", "")
	}

	// Assembly is charged on the acrylic face; without one the cabinet front
	// is the face.
	faceW, faceH := cabinet[0], cabinet[1]
	if face, ok := pv.Dimensions(ptAcrylic); ok {
		if len(face) < 2 || face[0] <= 0 || face[1] <= 0 {
			return nil, "", domainErr("Enter acrylic width and height",
				fmt.Errorf("%w: acrylic face %v", ErrInvalidInput, face))
		}
		name, ok := pv.Text(ptAcrylicName)
		if !ok {
			name = assembly.DefaultAcrylic
		}
		sc, err := c.src.GetSubstrateCutPricing(ctx, name)
		if err != nil {
			return nil, "", fmt.Errorf("get substrate pricing %q: %w", name, err)
		}
		if sc == nil {
			return nil, "", missingRate("Acrylic", name)
		}
		cost, err := substrateCost(sc, face[0], face[1], 1)
		if err != nil {
			return nil, "", err
		}
		faceW, faceH = face[0], face[1]
		total := RoundCents(cost.material + cost.cutting)
		b.add(ComponentItem{
			Name:  "Acrylic",
			Price: total,
			Type:  ComponentAcrylic,
			CalculationDisplay: fmt.Sprintf("%s %sx%s (%.3f sheet) = %s",
				sc.Name, formatDim(face[0]), formatDim(face[1]), cost.sheets, FormatMoney(total)),
			Metadata: map[string]any{"substrate": sc.Name},
		})
	}

	ledOverride := pv.Override(ptLEDOverride)
	ledCount := in.CalculatedValues.LEDCount
	switch ledOverride.Kind {
	case OverrideCount:
		ledCount = math.Max(0, ledOverride.Amount)
	case OverrideDisabled:
		ledCount = 0
	}
	var led *LED
	if ledCount > 0 || ledOverride.IsCurrency() {
		code, _ := pv.Text(ptLEDType)
		led, err = resolveLED(ctx, c.src, code, "", in.CustomerPreferences)
		if err != nil {
			return nil, "", err
		}
	}
	switch {
	case ledOverride.IsCurrency():
		b.add(ComponentItem{
			Name:               "LEDs",
			Price:              ledOverride.Amount,
			Type:               ComponentLEDs,
			CalculationDisplay: "Custom amount " + FormatMoney(ledOverride.Amount),
			Count:              countPtr(ledCount),
			Metadata:           map[string]any{"ledCode": led.Code, "override": "currency"},
		})
	case ledCount > 0:
		total := RoundCents(ledCount * led.Price)
		b.add(ComponentItem{
			Name:               "LEDs",
			Price:              total,
			Type:               ComponentLEDs,
			CalculationDisplay: fmt.Sprintf("%s × %s = %s", FormatQuantity(ledCount), led.Code, FormatMoney(total)),
			Count:              countPtr(ledCount),
			Metadata:           map[string]any{"ledCode": led.Code},
		})
	}

	psType, _ := pv.Text(ptPSType)
	wattage := 0.0
	if led != nil {
		wattage = ledCount * led.Watts
	}
	ps, err := SelectPowerSupplies(ctx, c.src, PowerSupplyRequest{
		TotalWattage:  wattage,
		HasUL:         in.CalculatedValues.SectionHasUL,
		CountOverride: pv.Override(ptPSCount),
		TypeOverride:  psType,
		Preferences:   in.CustomerPreferences,
	})
	if err != nil {
		return nil, "", err
	}
	b.add(ps.Components...)

	switch o := pv.Override(ptAssembly); o.Kind {
	case OverrideDisabled:
	case OverrideCurrency:
		b.add(ComponentItem{
			Name:               "Assembly",
			Price:              o.Amount,
			Type:               ComponentAssembly,
			CalculationDisplay: "Custom amount " + FormatMoney(o.Amount),
		})
	default:
		sqft := faceW * faceH / 144
		raw := assembly.BaseCost + assembly.PerSquareFoot*sqft
		total := RoundCents(math.Max(raw, assembly.MinimumCost))
		display := fmt.Sprintf("%s + %.2f sqft × %s = %s", FormatMoney(assembly.BaseCost), sqft, FormatMoney(assembly.PerSquareFoot), FormatMoney(total))
		if raw < assembly.MinimumCost {
			display = fmt.Sprintf("Minimum %s applied", FormatMoney(assembly.MinimumCost))
		}
		b.add(ComponentItem{
			Name:               "Assembly",
			Price:              total,
			Type:               ComponentAssembly,
			CalculationDisplay: display,
		})
	}

	if adj, ok := adjustmentComponent(pv.Override(ptAdjustment)); ok {
		b.add(adj)
	}
	return b.finalize(in, "Push-Thru", qty, pushThruMergeRules), "", nil
}

type sheetCost struct {
	sheets   float64
	material float64
	cutting  float64
}

// substrateCost prices pieces of w×h by their share of a full sheet.
func substrateCost(sc *SubstrateCutPricing, w, h, pieces float64) (sheetCost, error) {
	sheetArea := sc.SheetWidth * sc.SheetHeight
	if sheetArea <= 0 {
		return sheetCost{}, domainErr(fmt.Sprintf("Substrate %q has no sheet size", sc.Name),
			fmt.Errorf("%w: sheet %sx%s", ErrMissingRate, formatDim(sc.SheetWidth), formatDim(sc.SheetHeight)))
	}
	markup := sc.Markup
	if markup <= 0 {
		markup = DefaultMarkup
	}
	sheets := w * h * pieces / sheetArea
	return sheetCost{
		sheets:   sheets,
		material: RoundCents(sheets * sc.MaterialCostPerSheet * markup),
		cutting:  RoundCents(sheets * sc.CuttingCostPerSheet),
	}, nil
}
