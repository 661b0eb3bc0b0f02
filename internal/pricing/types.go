package pricing

// ProductType identifies which calculator prices a row.
type ProductType string

const (
	ProductChannelLetters ProductType = "channel_letters"
	ProductBacker         ProductType = "backer"
	ProductPushThru       ProductType = "push_thru"
	ProductUL             ProductType = "ul"
	ProductPainting       ProductType = "painting"
	ProductLEDNeon        ProductType = "led_neon"
	ProductSubstrateCut   ProductType = "substrate_cut"
	ProductWiring         ProductType = "wiring"
)

// CalculatedValues are derived upstream and trusted as-is.
type CalculatedValues struct {
	LEDCount               float64 `json:"ledCount"`
	TotalLinearInches      float64 `json:"totalLinearInches"`
	PowerSupplyCount       float64 `json:"psCount"`
	SectionHasUL           bool    `json:"sectionHasUL"`
	ULExistsInPreviousRows bool    `json:"ulExistsInPreviousRows"`
}

// CustomerPreferences sit below row and product-type defaults and above
// system defaults in override precedence.
type CustomerPreferences struct {
	DefaultLEDCode         string `json:"defaultLedCode,omitempty"`
	DefaultPowerSupplyType string `json:"defaultPowerSupplyType,omitempty"`
	DefaultPinType         string `json:"defaultPinType,omitempty"`
	ULRequired             bool   `json:"ulRequired"`
}

// ValidatedPricingInput is the read-only input of one calculator invocation.
type ValidatedPricingInput struct {
	RowID                  string
	ProductTypeID          ProductType
	ParsedValues           ParsedFieldValues
	CalculatedValues       CalculatedValues
	CustomerPreferences    CustomerPreferences
	HasValidationErrors    bool
	ULExistsInPreviousRows bool
}

// ComponentType tags a component so merge rules can address it.
type ComponentType string

const (
	ComponentChannelLetters ComponentType = "channel_letters"
	ComponentLEDs           ComponentType = "leds"
	ComponentPowerSupplies  ComponentType = "power_supplies"
	ComponentUL             ComponentType = "ul"
	ComponentPins           ComponentType = "pins"
	ComponentExtraWire      ComponentType = "extra_wire"
	ComponentAluminumBacker ComponentType = "aluminum_backer"
	ComponentACMPanel       ComponentType = "acm_panel"
	ComponentHingedRaceway  ComponentType = "hinged_raceway"
	ComponentAdjustment     ComponentType = "adjustment"
	ComponentCabinet        ComponentType = "cabinet"
	ComponentAcrylic        ComponentType = "acrylic"
	ComponentAssembly       ComponentType = "assembly"
	ComponentPainting       ComponentType = "painting"
	ComponentPrepLabor      ComponentType = "prep_labor"
	ComponentLEDNeon        ComponentType = "led_neon"
	ComponentBacking        ComponentType = "backing"
	ComponentSolderJoints   ComponentType = "solder_joints"
	ComponentSubstrate      ComponentType = "substrate"
	ComponentCutting        ComponentType = "cutting"
	ComponentWire           ComponentType = "wire"
	ComponentPlugs          ComponentType = "plugs"
)

// ComponentItem is one priced contribution to a line. Price is signed.
// CalculationDisplay is for humans only.
type ComponentItem struct {
	Name               string         `json:"name"`
	Price              float64        `json:"price"`
	Type               ComponentType  `json:"type"`
	CalculationDisplay string         `json:"calculationDisplay"`
	Count              *float64       `json:"count,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// PricingCalculationData is the priced line. UnitPrice always equals the sum
// of component prices.
type PricingCalculationData struct {
	ProductTypeID  ProductType     `json:"productTypeId"`
	RowID          string          `json:"rowId"`
	ItemName       string          `json:"itemName"`
	UnitPrice      float64         `json:"unitPrice"`
	Quantity       float64         `json:"quantity"`
	Components     []ComponentItem `json:"components"`
	HasCompleteSet *bool           `json:"hasCompleteSet,omitempty"`
}

// ExtendedPrice is unit price times quantity, rounded to cents.
func (d *PricingCalculationData) ExtendedPrice() float64 {
	if d == nil {
		return 0
	}
	return RoundCents(d.UnitPrice * d.Quantity)
}

// Status of a row calculation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// RowCalculationResult is what every calculator returns.
type RowCalculationResult struct {
	Status  Status                  `json:"status"`
	Display string                  `json:"display"`
	Data    *PricingCalculationData `json:"data"`
	Error   string                  `json:"error,omitempty"`
}

// Pending builds a non-terminal result with an inline reason.
func Pending(display string) RowCalculationResult {
	return RowCalculationResult{Status: StatusPending, Display: display}
}

// Failed converts err into an error result. DomainError supplies its own
// display string.
func Failed(err error) RowCalculationResult {
	display := "Calculation error"
	if de, ok := asDomainError(err); ok {
		display = de.Display
	}
	return RowCalculationResult{Status: StatusError, Display: display, Error: err.Error()}
}

// Completed wraps priced data and renders the row display.
func Completed(data *PricingCalculationData) RowCalculationResult {
	return RowCalculationResult{
		Status:  StatusCompleted,
		Display: FormatLineDisplay(data.UnitPrice, data.Quantity),
		Data:    data,
	}
}
