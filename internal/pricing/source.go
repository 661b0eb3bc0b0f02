package pricing

import "context"

// ChannelLetterType describes one letter construction.
type ChannelLetterType struct {
	ID             int64   `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	PricePerInch   float64 `json:"pricePerInch" yaml:"price_per_inch"`
	LEDMultiplier  float64 `json:"ledMultiplier" yaml:"led_multiplier"`
	DefaultLEDCode string  `json:"defaultLedCode,omitempty" yaml:"default_led_code"`
	DefaultPinType string  `json:"defaultPinType,omitempty" yaml:"default_pin_type"`
}

// LED is either a module (Price/Watts per unit) or a strip such as LED neon
// (PricePerFoot/WattsPerFoot).
type LED struct {
	ID           int64   `json:"id" yaml:"id"`
	Code         string  `json:"code" yaml:"code"`
	Price        float64 `json:"price" yaml:"price"`
	Watts        float64 `json:"watts" yaml:"watts"`
	PricePerFoot float64 `json:"pricePerFoot,omitempty" yaml:"price_per_foot"`
	WattsPerFoot float64 `json:"wattsPerFoot,omitempty" yaml:"watts_per_foot"`
	IsDefault    bool    `json:"isDefault" yaml:"is_default"`
}

type PowerSupply struct {
	ID             int64   `json:"id" yaml:"id"`
	Type           string  `json:"type" yaml:"type"`
	Watts          float64 `json:"watts" yaml:"watts"`
	Price          float64 `json:"price" yaml:"price"`
	ULListed       bool    `json:"ulListed" yaml:"ul_listed"`
	IsDefaultUL    bool    `json:"isDefaultUL" yaml:"is_default_ul"`
	IsDefaultNonUL bool    `json:"isDefaultNonUL" yaml:"is_default_non_ul"`
}

type ULListingPricing struct {
	Type        string  `json:"type" yaml:"type"`
	BaseFee     float64 `json:"baseFee" yaml:"base_fee"`
	PerSetFee   float64 `json:"perSetFee" yaml:"per_set_fee"`
	MinimumSets float64 `json:"minimumSets" yaml:"minimum_sets"`
}

type WiringPricing struct {
	WirePricePerFoot float64 `json:"wirePricePerFoot" yaml:"wire_price_per_foot"`
	PlugPrice        float64 `json:"plugPrice" yaml:"plug_price"`
	SolderJointCost  float64 `json:"solderJointCost" yaml:"solder_joint_cost"`
}

type PinType struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

type PaintingPricing struct {
	AreaRatePerSqft   float64 `json:"areaRatePerSqft" yaml:"area_rate_per_sqft"`
	TrimRatePerFoot   float64 `json:"trimRatePerFoot" yaml:"trim_rate_per_foot"`
	ReturnRatePerSqft float64 `json:"returnRatePerSqft" yaml:"return_rate_per_sqft"`
	PrepRatePerHour   float64 `json:"prepRatePerHour" yaml:"prep_rate_per_hour"`
	Minimum           float64 `json:"minimum" yaml:"minimum"`
	PrimerAddition    float64 `json:"primerAddition" yaml:"primer_addition"`
	ClearCoatAddition float64 `json:"clearCoatAddition" yaml:"clear_coat_addition"`
}

// SubstrateCutPricing prices a cut substrate by the fraction of a sheet used.
type SubstrateCutPricing struct {
	Name                 string  `json:"name" yaml:"name"`
	MaterialCostPerSheet float64 `json:"materialCostPerSheet" yaml:"material_cost_per_sheet"`
	CuttingCostPerSheet  float64 `json:"cuttingCostPerSheet" yaml:"cutting_cost_per_sheet"`
	SheetWidth           float64 `json:"sheetWidth" yaml:"sheet_width"`
	SheetHeight          float64 `json:"sheetHeight" yaml:"sheet_height"`
	Markup               float64 `json:"markup" yaml:"markup"`
}

// SubstrateBasePricing holds the raw material rates the lookup tables are
// generated from.
type SubstrateBasePricing struct {
	Name             string  `json:"name" yaml:"name"`
	SheetCost        float64 `json:"sheetCost" yaml:"sheet_cost"`
	ShippingPerSheet float64 `json:"shippingPerSheet" yaml:"shipping_per_sheet"`
	CutCost          float64 `json:"cutCost" yaml:"cut_cost"`
	Markup           float64 `json:"markup" yaml:"markup"`
}

type PushThruAssemblyPricing struct {
	BaseCost       float64 `json:"baseCost" yaml:"base_cost"`
	PerSquareFoot  float64 `json:"perSquareFoot" yaml:"per_square_foot"`
	MinimumCost    float64 `json:"minimumCost" yaml:"minimum_cost"`
	DefaultAcrylic string  `json:"defaultAcrylic" yaml:"default_acrylic"`
}

// HingedRacewayPrice is one row of the flat raceway table.
type HingedRacewayPrice struct {
	Length float64 `json:"length" yaml:"length"`
	Price  float64 `json:"price" yaml:"price"`
}

// Source is the read-only pricing configuration collaborator. Lookups return
// (nil, nil) when the row does not exist; errors are reserved for failures
// reaching the backing store.
type Source interface {
	GetChannelLetterType(ctx context.Context, name string) (*ChannelLetterType, error)
	GetLed(ctx context.Context, code string) (*LED, error)
	GetLedByID(ctx context.Context, id int64) (*LED, error)
	GetDefaultLed(ctx context.Context) (*LED, error)
	GetPowerSupplyByType(ctx context.Context, psType string) (*PowerSupply, error)
	GetPowerSupplyByID(ctx context.Context, id int64) (*PowerSupply, error)
	GetDefaultULPowerSupply(ctx context.Context) (*PowerSupply, error)
	GetDefaultNonULPowerSupply(ctx context.Context) (*PowerSupply, error)
	ListPowerSupplies(ctx context.Context) ([]PowerSupply, error)
	GetUlListingPricing(ctx context.Context, listingType string) (*ULListingPricing, error)
	GetWiringPricing(ctx context.Context) (*WiringPricing, error)
	GetPinType(ctx context.Context, name string) (*PinType, error)
	GetPaintingPricing(ctx context.Context) (*PaintingPricing, error)
	GetSubstrateCutPricing(ctx context.Context, name string) (*SubstrateCutPricing, error)
	GetSubstrateCutPricingMap(ctx context.Context) (map[string]SubstrateCutPricing, error)
	GetSubstrateCutBasePricingMap(ctx context.Context) (map[string]SubstrateBasePricing, error)
	GetPushThruAssemblyPricing(ctx context.Context) (*PushThruAssemblyPricing, error)
	GetHingedRacewayPricing(ctx context.Context) ([]HingedRacewayPrice, error)
}
