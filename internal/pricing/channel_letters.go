package pricing

import (
	"context"
	"fmt"
	"math"
)

// StandardLEDMultiplier is the LEDs-per-inch density upstream pair/group
// counts are computed with.
const StandardLEDMultiplier = 0.7

// Channel letter field slots.
const (
	clType        = Field1
	clLetterData  = Field2
	clLEDOverride = Field3
	clULOverride  = Field4
	clPinCount    = Field5
	clPinType     = Field6
	clExtraWire   = Field7
	clLEDType     = Field8
	clPSCount     = Field9
	clPSType      = Field10
)

var channelLetterMergeRules = []MergeRule{
	{Source: ComponentPins, Target: ComponentChannelLetters},
}

type ChannelLetterCalculator struct {
	src Source
}

func NewChannelLetterCalculator(src Source) *ChannelLetterCalculator {
	return &ChannelLetterCalculator{src: src}
}

func (c *ChannelLetterCalculator) ProductType() ProductType { return ProductChannelLetters }

// BillsUL reports whether the row asks for UL: an explicit yes, set count or
// custom amount, or the customer's UL requirement when the row is silent.
func (c *ChannelLetterCalculator) BillsUL(in ValidatedPricingInput) bool {
	return rowRequestsUL(in.ParsedValues.Override(clULOverride), in.CustomerPreferences)
}

func rowRequestsUL(o Override, prefs CustomerPreferences) bool {
	switch o.Kind {
	case OverrideEnabled:
		return true
	case OverrideCount, OverrideCurrency:
		return o.Amount > 0
	case OverrideDefault:
		return prefs.ULRequired
	}
	return false
}

func (c *ChannelLetterCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

// LEDCountFor derives the LED count of a channel letter row.
//
// An explicit numeric override always wins. Otherwise a multiplier of exactly
// zero means the construction is not illuminated and the count is zero,
// whatever upstream computed. Upstream pair/group counts assume
// StandardLEDMultiplier and are rescaled; without them the count comes from
// linear inches.
//
// TODO: confirm with the shop that a zero multiplier should discard upstream
// LED demand instead of flagging the row.
func LEDCountFor(multiplier float64, override Override, calc CalculatedValues) float64 {
	switch override.Kind {
	case OverrideCount:
		return math.Max(0, override.Amount)
	case OverrideDisabled:
		return 0
	}
	if multiplier == 0 {
		return 0
	}
	if calc.LEDCount > 0 {
		return ceilCount(calc.LEDCount * multiplier / StandardLEDMultiplier)
	}
	return ceilCount(calc.TotalLinearInches * multiplier)
}

func (c *ChannelLetterCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	pv := in.ParsedValues

	typeName, ok := pv.Text(clType)
	if !ok {
		return nil, "Channel letter type required", nil
	}
	if !pv.Has(clLetterData) {
		return nil, "Letter data required", nil
	}

	clt, err := c.src.GetChannelLetterType(ctx, typeName)
	if err != nil {
		return nil, "", fmt.Errorf("get channel letter type %q: %w", typeName, err)
	}
	if clt == nil {
		return nil, "", missingRate("Channel letter type", typeName)
	}

	inches := in.CalculatedValues.TotalLinearInches
	if inches <= 0 {
		return nil, "", domainErr("Letter dimensions are invalid",
			fmt.Errorf("%w: total linear inches %s", ErrInvalidInput, formatDim(inches)))
	}

	var b lineBuilder
	base := RoundCents(inches * clt.PricePerInch)
	b.add(ComponentItem{
		Name:               clt.Name,
		Price:              base,
		Type:               ComponentChannelLetters,
		CalculationDisplay: fmt.Sprintf("%s\" × %s/in = %s", formatDim(inches), FormatMoney(clt.PricePerInch), FormatMoney(base)),
		Metadata:           map[string]any{"channelLetterTypeId": clt.ID, "linearInches": inches},
	})

	ledOverride := pv.Override(clLEDOverride)
	ledCount := LEDCountFor(clt.LEDMultiplier, ledOverride, in.CalculatedValues)

	var led *LED
	if ledCount > 0 || ledOverride.IsCurrency() && clt.LEDMultiplier != 0 {
		code, _ := pv.Text(clLEDType)
		led, err = resolveLED(ctx, c.src, code, clt.DefaultLEDCode, in.CustomerPreferences)
		if err != nil {
			return nil, "", err
		}
	}

	switch {
	case ledOverride.IsCurrency() && clt.LEDMultiplier != 0:
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
			CalculationDisplay: fmt.Sprintf("%s × %s @ %s = %s", FormatQuantity(ledCount), led.Code, FormatMoney(led.Price), FormatMoney(total)),
			Count:              countPtr(ledCount),
			Metadata:           map[string]any{"ledCode": led.Code, "ledId": led.ID},
		})
	}

	psTypeName, _ := pv.Text(clPSType)
	wattage := 0.0
	if led != nil {
		wattage = ledCount * led.Watts
	}
	ps, err := SelectPowerSupplies(ctx, c.src, PowerSupplyRequest{
		TotalWattage:  wattage,
		HasUL:         in.CalculatedValues.SectionHasUL,
		CountOverride: pv.Override(clPSCount),
		TypeOverride:  psTypeName,
		Preferences:   in.CustomerPreferences,
	})
	if err != nil {
		return nil, "", err
	}
	b.add(ps.Components...)

	ulOverride := pv.Override(clULOverride)
	if rowRequestsUL(ulOverride, in.CustomerPreferences) {
		if ulOverride.IsDefault() {
			ulOverride = Enabled()
		}
		ul, err := priceUL(ctx, c.src, DefaultULListingType, ulOverride, ulAlreadyBilled(in))
		if err != nil {
			return nil, "", err
		}
		if ul != nil {
			b.add(*ul)
		}
	}

	if pins, ok := pv.Number(clPinCount); ok && pins > 0 {
		pinName, _ := pv.Text(clPinType)
		pin, err := resolvePinType(ctx, c.src, pinName, clt.DefaultPinType, in.CustomerPreferences)
		if err != nil {
			return nil, "", err
		}
		b.add(pinsComponent(pins, pin))
	}

	if feet, ok := pv.Number(clExtraWire); ok && feet > 0 {
		wiring, err := c.src.GetWiringPricing(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("get wiring pricing: %w", err)
		}
		if wiring == nil {
			return nil, "", missingRate("Wiring pricing", "")
		}
		total := RoundCents(feet * wiring.WirePricePerFoot)
		b.add(ComponentItem{
			Name:               "Extra Wire",
			Price:              total,
			Type:               ComponentExtraWire,
			CalculationDisplay: fmt.Sprintf("%s ft × %s/ft = %s", formatDim(feet), FormatMoney(wiring.WirePricePerFoot), FormatMoney(total)),
			Count:              countPtr(feet),
		})
	}

	data := b.finalize(in, clt.Name, qty, channelLetterMergeRules)
	complete := ledCount > 0 && ps.TotalCount > 0
	data.HasCompleteSet = &complete
	return data, "", nil
}

func ulAlreadyBilled(in ValidatedPricingInput) bool {
	return in.ULExistsInPreviousRows || in.CalculatedValues.ULExistsInPreviousRows
}
