package pricingdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/signworks/internal/pricing"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		ChannelLetterTypes: []pricing.ChannelLetterType{
			{ID: 1, Name: "Front Lit", PricePerInch: 2.5, LEDMultiplier: 0.7, DefaultLEDCode: "M3"},
		},
		LEDs: []pricing.LED{
			{ID: 1, Code: "M3", Price: 1.2, Watts: 0.72, IsDefault: true},
			{ID: 2, Code: "M5", Price: 1.8, Watts: 1.2},
		},
		PowerSupplies: []pricing.PowerSupply{
			{ID: 1, Type: "PS-60", Watts: 60, Price: 30, IsDefaultNonUL: true},
			{ID: 2, Type: "UL-60", Watts: 60, Price: 45, ULListed: true, IsDefaultUL: true},
			// flagged as UL default but not listed, never returned as one
			{ID: 3, Type: "PS-100", Watts: 100, Price: 40, IsDefaultUL: true},
		},
		ULListings: []pricing.ULListingPricing{{Type: "standard", BaseFee: 150, PerSetFee: 25, MinimumSets: 1}},
		Wiring:     &pricing.WiringPricing{WirePricePerFoot: 0.5, PlugPrice: 8, SolderJointCost: 2.5},
		PinTypes:   []pricing.PinType{{Name: "Standard", Price: 0.75}},
		Painting:   &pricing.PaintingPricing{AreaRatePerSqft: 10, Minimum: 200},
		SubstrateCuts: []pricing.SubstrateCutPricing{
			{Name: "PVC 6mm", MaterialCostPerSheet: 60, CuttingCostPerSheet: 30, SheetWidth: 48, SheetHeight: 96, Markup: 1},
		},
		SubstrateBases: []pricing.SubstrateBasePricing{{Name: "aluminum_sheet", SheetCost: 300, Markup: 1}},
		PushThruAssembly: &pricing.PushThruAssemblyPricing{
			BaseCost: 100, PerSquareFoot: 8, MinimumCost: 250, DefaultAcrylic: "Acrylic 3/16",
		},
		HingedRaceway: []pricing.HingedRacewayPrice{{Length: 48, Price: 180}},
	}
}

func TestSnapshotLookups(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot()

	clt, err := snap.GetChannelLetterType(ctx, "  front lit ")
	require.NoError(t, err)
	require.NotNil(t, clt)
	assert.Equal(t, 2.5, clt.PricePerInch)

	missing, err := snap.GetChannelLetterType(ctx, "Reverse")
	require.NoError(t, err)
	assert.Nil(t, missing)

	led, err := snap.GetLedByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, led)
	assert.Equal(t, "M5", led.Code)

	def, err := snap.GetDefaultLed(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "M3", def.Code)

	ul, err := snap.GetDefaultULPowerSupply(ctx)
	require.NoError(t, err)
	require.NotNil(t, ul)
	assert.Equal(t, "UL-60", ul.Type)

	nonUL, err := snap.GetDefaultNonULPowerSupply(ctx)
	require.NoError(t, err)
	require.NotNil(t, nonUL)
	assert.Equal(t, "PS-60", nonUL.Type)

	subs, err := snap.GetSubstrateCutPricingMap(ctx)
	require.NoError(t, err)
	assert.Contains(t, subs, "PVC 6mm")
}

func TestSnapshotReturnsCopies(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot()

	w, err := snap.GetWiringPricing(ctx)
	require.NoError(t, err)
	w.PlugPrice = 99
	assert.Equal(t, 8.0, snap.Wiring.PlugPrice)

	supplies, err := snap.ListPowerSupplies(ctx)
	require.NoError(t, err)
	supplies[0].Price = 0
	assert.Equal(t, 30.0, snap.PowerSupplies[0].Price)

	led, err := snap.GetLed(ctx, "m3")
	require.NoError(t, err)
	led.Price = 0
	assert.Equal(t, 1.2, snap.LEDs[0].Price)
}

func TestSnapshotMissingSingletons(t *testing.T) {
	ctx := context.Background()
	snap := &Snapshot{}

	w, err := snap.GetWiringPricing(ctx)
	require.NoError(t, err)
	assert.Nil(t, w)

	p, err := snap.GetPaintingPricing(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	a, err := snap.GetPushThruAssemblyPricing(ctx)
	require.NoError(t, err)
	assert.Nil(t, a)

	r, err := snap.GetHingedRacewayPricing(ctx)
	require.NoError(t, err)
	assert.Empty(t, r)
}
