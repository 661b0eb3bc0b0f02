package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source. Setting err makes every lookup fail.
type fakeSource struct {
	letterTypes map[string]ChannelLetterType
	leds        []LED
	supplies    []PowerSupply
	ul          map[string]ULListingPricing
	wiring      *WiringPricing
	pins        map[string]PinType
	painting    *PaintingPricing
	substrates  map[string]SubstrateCutPricing
	base        map[string]SubstrateBasePricing
	pushThru    *PushThruAssemblyPricing
	raceway     []HingedRacewayPrice
	err         error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		letterTypes: map[string]ChannelLetterType{
			"Front Lit": {ID: 1, Name: "Front Lit", PricePerInch: 2.5, LEDMultiplier: 0.7, DefaultLEDCode: "M3", DefaultPinType: "Standard"},
			"Halo":      {ID: 2, Name: "Halo", PricePerInch: 3, LEDMultiplier: 1.4, DefaultLEDCode: "M5"},
			"Non-Lit":   {ID: 3, Name: "Non-Lit", PricePerInch: 2.5, LEDMultiplier: 0},
		},
		leds: []LED{
			{ID: 1, Code: "M3", Price: 1.2, Watts: 0.72, IsDefault: true},
			{ID: 2, Code: "M5", Price: 1.8, Watts: 1.2},
			{ID: 3, Code: "NEON-W", PricePerFoot: 9, WattsPerFoot: 4.4},
		},
		supplies: []PowerSupply{
			{ID: 1, Type: "PS-60", Watts: 60, Price: 30, IsDefaultNonUL: true},
			{ID: 2, Type: "PS-100", Watts: 100, Price: 40},
			{ID: 3, Type: "UL-60", Watts: 60, Price: 45, ULListed: true, IsDefaultUL: true},
			{ID: 4, Type: "UL-100", Watts: 100, Price: 65, ULListed: true},
		},
		ul: map[string]ULListingPricing{
			"standard": {Type: "standard", BaseFee: 150, PerSetFee: 25, MinimumSets: 1},
		},
		wiring: &WiringPricing{WirePricePerFoot: 0.5, PlugPrice: 8, SolderJointCost: 2.5},
		pins: map[string]PinType{
			"Standard": {Name: "Standard", Price: 0.75},
			"Long":     {Name: "Long", Price: 1.25},
		},
		painting: &PaintingPricing{
			AreaRatePerSqft:   10,
			TrimRatePerFoot:   1.5,
			ReturnRatePerSqft: 12,
			PrepRatePerHour:   65,
			Minimum:           200,
			PrimerAddition:    0.5,
			ClearCoatAddition: 0.5,
		},
		substrates: map[string]SubstrateCutPricing{
			"Acrylic 3/16": {Name: "Acrylic 3/16", MaterialCostPerSheet: 120, CuttingCostPerSheet: 40, SheetWidth: 48, SheetHeight: 96, Markup: 1.5},
			"PVC 6mm":      {Name: "PVC 6mm", MaterialCostPerSheet: 60, CuttingCostPerSheet: 30, SheetWidth: 48, SheetHeight: 96},
		},
		base: map[string]SubstrateBasePricing{
			MaterialAluminumSheet: {Name: MaterialAluminumSheet, SheetCost: 300},
			MaterialACMSheet:      {Name: MaterialACMSheet, SheetCost: 150, ShippingPerSheet: 25},
			MaterialAluminumAngle: {Name: MaterialAluminumAngle, SheetCost: 60, CutCost: 10},
		},
		pushThru: &PushThruAssemblyPricing{BaseCost: 100, PerSquareFoot: 8, MinimumCost: 250, DefaultAcrylic: "Acrylic 3/16"},
		raceway: []HingedRacewayPrice{
			{Length: 96, Price: 312},
			{Length: 48, Price: 180},
			{Length: 144, Price: 451},
		},
	}
}

func (f *fakeSource) GetChannelLetterType(_ context.Context, name string) (*ChannelLetterType, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.letterTypes[name]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakeSource) GetLed(_ context.Context, code string) (*LED, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.leds {
		if l.Code == code {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetLedByID(_ context.Context, id int64) (*LED, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.leds {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetDefaultLed(_ context.Context) (*LED, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.leds {
		if l.IsDefault {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetPowerSupplyByType(_ context.Context, psType string) (*PowerSupply, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, ps := range f.supplies {
		if ps.Type == psType {
			return &ps, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetPowerSupplyByID(_ context.Context, id int64) (*PowerSupply, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, ps := range f.supplies {
		if ps.ID == id {
			return &ps, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetDefaultULPowerSupply(_ context.Context) (*PowerSupply, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, ps := range f.supplies {
		if ps.IsDefaultUL {
			return &ps, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetDefaultNonULPowerSupply(_ context.Context) (*PowerSupply, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, ps := range f.supplies {
		if ps.IsDefaultNonUL {
			return &ps, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListPowerSupplies(_ context.Context) ([]PowerSupply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]PowerSupply(nil), f.supplies...), nil
}

func (f *fakeSource) GetUlListingPricing(_ context.Context, listingType string) (*ULListingPricing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.ul[listingType]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeSource) GetWiringPricing(_ context.Context) (*WiringPricing, error) {
	return f.wiring, f.err
}

func (f *fakeSource) GetPinType(_ context.Context, name string) (*PinType, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.pins[name]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeSource) GetPaintingPricing(_ context.Context) (*PaintingPricing, error) {
	return f.painting, f.err
}

func (f *fakeSource) GetSubstrateCutPricing(_ context.Context, name string) (*SubstrateCutPricing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.substrates[name]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSource) GetSubstrateCutPricingMap(_ context.Context) (map[string]SubstrateCutPricing, error) {
	return f.substrates, f.err
}

func (f *fakeSource) GetSubstrateCutBasePricingMap(_ context.Context) (map[string]SubstrateBasePricing, error) {
	return f.base, f.err
}

func (f *fakeSource) GetPushThruAssemblyPricing(_ context.Context) (*PushThruAssemblyPricing, error) {
	return f.pushThru, f.err
}

func (f *fakeSource) GetHingedRacewayPricing(_ context.Context) ([]HingedRacewayPrice, error) {
	return f.raceway, f.err
}

type fields map[FieldSlot]FieldValue

func input(pt ProductType, qty float64, f fields) ValidatedPricingInput {
	pv := ParsedFieldValues{Quantity: NumberValue(qty)}
	for k, v := range f {
		pv[k] = v
	}
	return ValidatedPricingInput{RowID: "row-1", ProductTypeID: pt, ParsedValues: pv}
}

func testTables(t *testing.T, src Source) *LookupTables {
	t.Helper()
	tables, err := GenerateLookupTables(context.Background(), src)
	require.NoError(t, err)
	return tables
}

func requireCompleted(t *testing.T, res RowCalculationResult) *PricingCalculationData {
	t.Helper()
	require.Equal(t, StatusCompleted, res.Status, "display=%q error=%q", res.Display, res.Error)
	require.NotNil(t, res.Data)
	require.InDelta(t, SumComponents(res.Data.Components), res.Data.UnitPrice, 1e-9)
	return res.Data
}

func componentOf(t *testing.T, data *PricingCalculationData, typ ComponentType) ComponentItem {
	t.Helper()
	for _, c := range data.Components {
		if c.Type == typ {
			return c
		}
	}
	t.Fatalf("no %s component in %+v", typ, data.Components)
	return ComponentItem{}
}

func hasComponent(data *PricingCalculationData, typ ComponentType) bool {
	for _, c := range data.Components {
		if c.Type == typ {
			return true
		}
	}
	return false
}
