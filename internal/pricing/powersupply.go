package pricing

import (
	"context"
	"fmt"
	"sort"
)

// PowerSupplyRequest describes the demand of one row.
type PowerSupplyRequest struct {
	TotalWattage float64
	// HasUL is the section-level UL flag, not the row's own.
	HasUL         bool
	CountOverride Override
	TypeOverride  string
	Preferences   CustomerPreferences
}

// PowerSupplySelection is the priced outcome.
type PowerSupplySelection struct {
	Components []ComponentItem
	TotalCount float64
	Supply     *PowerSupply
}

// SelectPowerSupplies resolves count and type for a row's power supplies.
//
// An explicit count (zero included) is authoritative and only the type is
// resolved: row override, then customer preference, then the UL-appropriate
// default. Without a count, the cheapest SKU of the matching UL family that
// covers the wattage is chosen, using ceil(wattage/rated) identical units.
func SelectPowerSupplies(ctx context.Context, src Source, req PowerSupplyRequest) (PowerSupplySelection, error) {
	switch req.CountOverride.Kind {
	case OverrideCurrency:
		amount := req.CountOverride.Amount
		return PowerSupplySelection{
			Components: []ComponentItem{{
				Name:               "Power Supplies",
				Price:              RoundCents(amount),
				Type:               ComponentPowerSupplies,
				CalculationDisplay: "Custom amount " + FormatMoney(amount),
				Metadata:           map[string]any{"override": "currency"},
			}},
		}, nil
	case OverrideCount, OverrideDisabled:
		count := req.CountOverride.Amount
		if req.CountOverride.IsDisabled() {
			count = 0
		}
		if count < 0 {
			return PowerSupplySelection{}, domainErr("Power supply count cannot be negative",
				fmt.Errorf("%w: power supply count %s", ErrInvalidInput, FormatQuantity(count)))
		}
		if count == 0 {
			return PowerSupplySelection{}, nil
		}
		ps, err := resolveExplicitType(ctx, src, req)
		if err != nil {
			return PowerSupplySelection{}, err
		}
		return priced(ps, count, "override"), nil
	}

	if req.TotalWattage <= 0 {
		return PowerSupplySelection{}, nil
	}

	if req.TypeOverride != "" {
		ps, err := src.GetPowerSupplyByType(ctx, req.TypeOverride)
		if err != nil {
			return PowerSupplySelection{}, fmt.Errorf("get power supply %q: %w", req.TypeOverride, err)
		}
		if ps == nil {
			return PowerSupplySelection{}, domainErr(fmt.Sprintf("Power supply %q not found", req.TypeOverride), ErrNoPowerSupply)
		}
		if ps.Watts <= 0 {
			return PowerSupplySelection{}, domainErr(fmt.Sprintf("Power supply %q has no rated wattage", ps.Type), ErrNoPowerSupply)
		}
		return priced(ps, unitsFor(req.TotalWattage, ps.Watts), "type override"), nil
	}

	if pref := req.Preferences.DefaultPowerSupplyType; pref != "" {
		ps, err := src.GetPowerSupplyByType(ctx, pref)
		if err != nil {
			return PowerSupplySelection{}, fmt.Errorf("get preferred power supply %q: %w", pref, err)
		}
		if ps != nil && ps.ULListed == req.HasUL && ps.Watts > 0 {
			return priced(ps, unitsFor(req.TotalWattage, ps.Watts), "customer preference"), nil
		}
	}

	all, err := src.ListPowerSupplies(ctx)
	if err != nil {
		return PowerSupplySelection{}, fmt.Errorf("list power supplies: %w", err)
	}
	if best, ok := cheapestCovering(all, req.TotalWattage, req.HasUL); ok {
		return priced(&best, unitsFor(req.TotalWattage, best.Watts), "optimized"), nil
	}

	ps, err := defaultFor(ctx, src, req.HasUL)
	if err != nil {
		return PowerSupplySelection{}, err
	}
	if ps.Watts <= 0 {
		return PowerSupplySelection{}, domainErr(fmt.Sprintf("Power supply %q has no rated wattage", ps.Type), ErrNoPowerSupply)
	}
	return priced(ps, unitsFor(req.TotalWattage, ps.Watts), "default"), nil
}

func resolveExplicitType(ctx context.Context, src Source, req PowerSupplyRequest) (*PowerSupply, error) {
	if req.TypeOverride != "" {
		ps, err := src.GetPowerSupplyByType(ctx, req.TypeOverride)
		if err != nil {
			return nil, fmt.Errorf("get power supply %q: %w", req.TypeOverride, err)
		}
		if ps == nil {
			return nil, domainErr(fmt.Sprintf("Power supply %q not found", req.TypeOverride), ErrNoPowerSupply)
		}
		return ps, nil
	}
	if pref := req.Preferences.DefaultPowerSupplyType; pref != "" {
		ps, err := src.GetPowerSupplyByType(ctx, pref)
		if err != nil {
			return nil, fmt.Errorf("get preferred power supply %q: %w", pref, err)
		}
		if ps != nil {
			return ps, nil
		}
	}
	return defaultFor(ctx, src, req.HasUL)
}

func defaultFor(ctx context.Context, src Source, hasUL bool) (*PowerSupply, error) {
	var (
		ps    *PowerSupply
		err   error
		label = "non-UL"
	)
	if hasUL {
		label = "UL"
		ps, err = src.GetDefaultULPowerSupply(ctx)
	} else {
		ps, err = src.GetDefaultNonULPowerSupply(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get default %s power supply: %w", label, err)
	}
	if ps == nil {
		return nil, domainErr(fmt.Sprintf("No default %s power supply configured", label), ErrNoPowerSupply)
	}
	return ps, nil
}

// cheapestCovering picks the SKU with the lowest total cost for the wattage,
// then fewest units, then lowest id.
func cheapestCovering(all []PowerSupply, wattage float64, hasUL bool) (PowerSupply, bool) {
	type candidate struct {
		ps    PowerSupply
		count float64
		cost  float64
	}
	var cands []candidate
	for _, ps := range all {
		if ps.ULListed != hasUL || ps.Watts <= 0 || ps.Price < 0 {
			continue
		}
		n := unitsFor(wattage, ps.Watts)
		cands = append(cands, candidate{ps: ps, count: n, cost: RoundCents(n * ps.Price)})
	}
	if len(cands) == 0 {
		return PowerSupply{}, false
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if a.count != b.count {
			return a.count < b.count
		}
		return a.ps.ID < b.ps.ID
	})
	return cands[0].ps, true
}

func unitsFor(wattage, rated float64) float64 {
	if wattage <= 0 {
		return 0
	}
	n := ceilCount(wattage / rated)
	for n*rated < wattage {
		n++
	}
	return n
}

func priced(ps *PowerSupply, count float64, source string) PowerSupplySelection {
	if count <= 0 {
		return PowerSupplySelection{Supply: ps}
	}
	n := count
	total := RoundCents(count * ps.Price)
	ul := "non-UL"
	if ps.ULListed {
		ul = "UL"
	}
	return PowerSupplySelection{
		Supply:     ps,
		TotalCount: count,
		Components: []ComponentItem{{
			Name:  "Power Supplies",
			Price: total,
			Type:  ComponentPowerSupplies,
			CalculationDisplay: fmt.Sprintf("%s × %s (%sW %s) @ %s = %s",
				FormatQuantity(count), ps.Type, formatDim(ps.Watts), ul, FormatMoney(ps.Price), FormatMoney(total)),
			Count: &n,
			Metadata: map[string]any{
				"powerSupplyId": ps.ID,
				"type":          ps.Type,
				"watts":         ps.Watts,
				"ulListed":      ps.ULListed,
				"selection":     source,
			},
		}},
	}
}
