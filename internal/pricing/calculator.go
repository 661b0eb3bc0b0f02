package pricing

import (
	"context"
	"fmt"
)

const (
	displayFixValidation = "Fix validation errors first"
	displayQuantity      = "Quantity required"
)

// Calculator prices rows of one product type. Implementations are pure apart
// from configuration reads and never return Go errors: failures surface as
// StatusError results.
type Calculator interface {
	ProductType() ProductType
	Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult
}

// ULBiller is implemented by calculators whose rows can bill UL. The
// orchestrator uses it to fold the job-level UL state before pricing.
type ULBiller interface {
	BillsUL(in ValidatedPricingInput) bool
}

// ChargesUL reports whether a completed result carries a UL charge.
func ChargesUL(res RowCalculationResult) bool {
	if res.Status != StatusCompleted || res.Data == nil {
		return false
	}
	for _, c := range res.Data.Components {
		if c.Type == ComponentUL && c.Price != 0 {
			return true
		}
	}
	return false
}

// Registry maps product types to calculators.
type Registry map[ProductType]Calculator

// NewRegistry wires every calculator to src.
func NewRegistry(src Source) Registry {
	calcs := []Calculator{
		NewChannelLetterCalculator(src),
		NewBackerCalculator(src),
		NewPushThruCalculator(src),
		NewULCalculator(src),
		NewPaintingCalculator(src),
		NewLEDNeonCalculator(src),
		NewSubstrateCutCalculator(src),
		NewWiringCalculator(src),
	}
	r := make(Registry, len(calcs))
	for _, c := range calcs {
		r[c.ProductType()] = c
	}
	return r
}

// priceFunc returns either priced data, a pending reason, or an error.
type priceFunc func(ctx context.Context, in ValidatedPricingInput, qty float64, tables *LookupTables) (*PricingCalculationData, string, error)

// evaluate applies the contract shared by all calculators around fn.
func evaluate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables, fn priceFunc) RowCalculationResult {
	if in.HasValidationErrors {
		return Pending(displayFixValidation)
	}
	qty, ok := in.ParsedValues.Number(Quantity)
	if !ok || qty <= 0 {
		return Pending(displayQuantity)
	}
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}

	data, pending, err := fn(ctx, in, qty, tables)
	switch {
	case err != nil:
		return Failed(err)
	case pending != "":
		return Pending(pending)
	case data == nil:
		return Pending("Nothing to price")
	}
	return Completed(data)
}

// resolveLED applies row code > product default > customer preference >
// system default. An explicit row code that does not exist is an error.
func resolveLED(ctx context.Context, src Source, rowCode, productDefault string, prefs CustomerPreferences) (*LED, error) {
	if rowCode != "" {
		led, err := src.GetLed(ctx, rowCode)
		if err != nil {
			return nil, fmt.Errorf("get led %q: %w", rowCode, err)
		}
		if led == nil {
			return nil, missingRate("LED", rowCode)
		}
		return led, nil
	}
	for _, code := range []string{productDefault, prefs.DefaultLEDCode} {
		if code == "" {
			continue
		}
		led, err := src.GetLed(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("get led %q: %w", code, err)
		}
		if led != nil {
			return led, nil
		}
	}
	led, err := src.GetDefaultLed(ctx)
	if err != nil {
		return nil, fmt.Errorf("get default led: %w", err)
	}
	if led == nil {
		return nil, missingRate("Default LED", "")
	}
	return led, nil
}

// resolvePinType applies the same precedence as resolveLED, without a system
// default.
func resolvePinType(ctx context.Context, src Source, rowType, productDefault string, prefs CustomerPreferences) (*PinType, error) {
	if rowType != "" {
		pin, err := src.GetPinType(ctx, rowType)
		if err != nil {
			return nil, fmt.Errorf("get pin type %q: %w", rowType, err)
		}
		if pin == nil {
			return nil, missingRate("Pin type", rowType)
		}
		return pin, nil
	}
	for _, name := range []string{productDefault, prefs.DefaultPinType} {
		if name == "" {
			continue
		}
		pin, err := src.GetPinType(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get pin type %q: %w", name, err)
		}
		if pin != nil {
			return pin, nil
		}
	}
	return nil, missingRate("Pin type", "")
}

func pinsComponent(count float64, pin *PinType) ComponentItem {
	total := RoundCents(count * pin.Price)
	return ComponentItem{
		Name:               "Pins",
		Price:              total,
		Type:               ComponentPins,
		CalculationDisplay: fmt.Sprintf("%s × %s @ %s = %s", FormatQuantity(count), pin.Name, FormatMoney(pin.Price), FormatMoney(total)),
		Count:              countPtr(count),
		Metadata:           map[string]any{"pinType": pin.Name},
	}
}

// DefaultULListingType is used when a row names no listing type.
const DefaultULListingType = "standard"

// ulSets resolves a UL override into a set count. ok is false when the row
// does not bill UL sets (no, zero count, or a custom amount).
func ulSets(o Override, minimum float64) (sets float64, ok bool, err error) {
	if minimum < 1 {
		minimum = 1
	}
	switch o.Kind {
	case OverrideDisabled, OverrideCurrency:
		return 0, false, nil
	case OverrideCount:
		if o.Amount < 0 {
			return 0, false, domainErr("UL sets cannot be negative",
				fmt.Errorf("%w: ul sets %s", ErrInvalidInput, FormatQuantity(o.Amount)))
		}
		if o.Amount == 0 {
			return 0, false, nil
		}
		return max(o.Amount, minimum), true, nil
	default:
		return minimum, true, nil
	}
}

// priceUL charges the base fee only on the first UL row of the job; every
// row pays its own per-set fee.
func priceUL(ctx context.Context, src Source, listingType string, o Override, ulExistsInPreviousRows bool) (*ComponentItem, error) {
	if o.IsCurrency() {
		return &ComponentItem{
			Name:               "UL",
			Price:              RoundCents(o.Amount),
			Type:               ComponentUL,
			CalculationDisplay: "Custom amount " + FormatMoney(o.Amount),
			Metadata:           map[string]any{"override": "currency"},
		}, nil
	}
	if o.IsDisabled() {
		return nil, nil
	}

	if listingType == "" {
		listingType = DefaultULListingType
	}
	ul, err := src.GetUlListingPricing(ctx, listingType)
	if err != nil {
		return nil, fmt.Errorf("get ul pricing %q: %w", listingType, err)
	}
	if ul == nil {
		return nil, missingRate("UL listing pricing", listingType)
	}

	sets, ok, err := ulSets(o, ul.MinimumSets)
	if err != nil || !ok {
		return nil, err
	}

	base := ul.BaseFee
	if ulExistsInPreviousRows {
		base = 0
	}
	setsCost := sets * ul.PerSetFee
	total := RoundCents(base + setsCost)

	display := fmt.Sprintf("%s sets × %s = %s", FormatQuantity(sets), FormatMoney(ul.PerSetFee), FormatMoney(setsCost))
	if !ulExistsInPreviousRows {
		display = fmt.Sprintf("Base %s + %s", FormatMoney(base), display)
	} else {
		display += " (base fee already charged)"
	}
	return &ComponentItem{
		Name:               "UL",
		Price:              total,
		Type:               ComponentUL,
		CalculationDisplay: display,
		Count:              countPtr(sets),
		Metadata: map[string]any{
			"listingType":    listingType,
			"baseFeeApplied": !ulExistsInPreviousRows,
			"sets":           sets,
		},
	}, nil
}

// adjustmentComponent turns a custom currency override into a signed line.
func adjustmentComponent(o Override) (ComponentItem, bool) {
	if !o.IsCurrency() && !o.IsCount() {
		return ComponentItem{}, false
	}
	if o.Amount == 0 {
		return ComponentItem{}, false
	}
	return ComponentItem{
		Name:               "Adjustment",
		Price:              RoundCents(o.Amount),
		Type:               ComponentAdjustment,
		CalculationDisplay: "Manual adjustment " + FormatMoney(o.Amount),
	}, true
}
