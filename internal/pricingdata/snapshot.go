// Package pricingdata supplies the pricing engine with rate tables: a SQL
// store, an optional Redis tier shared between instances, and a TTL cache
// that coalesces concurrent loads.
package pricingdata

import (
	"context"
	"strings"

	"github.com/Simplici0/signworks/internal/pricing"
)

// Snapshot is every rate table the engine reads, loaded together so one
// estimate never mixes two configurations.
type Snapshot struct {
	ChannelLetterTypes []pricing.ChannelLetterType      `json:"channelLetterTypes" yaml:"channel_letter_types"`
	LEDs               []pricing.LED                    `json:"leds" yaml:"leds"`
	PowerSupplies      []pricing.PowerSupply            `json:"powerSupplies" yaml:"power_supplies"`
	ULListings         []pricing.ULListingPricing       `json:"ulListings" yaml:"ul_listings"`
	Wiring             *pricing.WiringPricing           `json:"wiring,omitempty" yaml:"wiring"`
	PinTypes           []pricing.PinType                `json:"pinTypes" yaml:"pin_types"`
	Painting           *pricing.PaintingPricing         `json:"painting,omitempty" yaml:"painting"`
	SubstrateCuts      []pricing.SubstrateCutPricing    `json:"substrateCuts" yaml:"substrate_cuts"`
	SubstrateBases     []pricing.SubstrateBasePricing   `json:"substrateBases" yaml:"substrate_bases"`
	PushThruAssembly   *pricing.PushThruAssemblyPricing `json:"pushThruAssembly,omitempty" yaml:"push_thru_assembly"`
	HingedRaceway      []pricing.HingedRacewayPrice     `json:"hingedRaceway" yaml:"hinged_raceway"`
}

var _ pricing.Source = (*Snapshot)(nil)

// Names compare case-insensitively: they arrive from dropdowns and
// hand-edited fixtures.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s *Snapshot) GetChannelLetterType(_ context.Context, name string) (*pricing.ChannelLetterType, error) {
	for _, t := range s.ChannelLetterTypes {
		if sameName(t.Name, name) {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetLed(_ context.Context, code string) (*pricing.LED, error) {
	for _, l := range s.LEDs {
		if sameName(l.Code, code) {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetLedByID(_ context.Context, id int64) (*pricing.LED, error) {
	for _, l := range s.LEDs {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetDefaultLed(_ context.Context) (*pricing.LED, error) {
	for _, l := range s.LEDs {
		if l.IsDefault {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetPowerSupplyByType(_ context.Context, psType string) (*pricing.PowerSupply, error) {
	for _, ps := range s.PowerSupplies {
		if sameName(ps.Type, psType) {
			return &ps, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetPowerSupplyByID(_ context.Context, id int64) (*pricing.PowerSupply, error) {
	for _, ps := range s.PowerSupplies {
		if ps.ID == id {
			return &ps, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetDefaultULPowerSupply(_ context.Context) (*pricing.PowerSupply, error) {
	for _, ps := range s.PowerSupplies {
		if ps.IsDefaultUL && ps.ULListed {
			return &ps, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetDefaultNonULPowerSupply(_ context.Context) (*pricing.PowerSupply, error) {
	for _, ps := range s.PowerSupplies {
		if ps.IsDefaultNonUL && !ps.ULListed {
			return &ps, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) ListPowerSupplies(_ context.Context) ([]pricing.PowerSupply, error) {
	return append([]pricing.PowerSupply(nil), s.PowerSupplies...), nil
}

func (s *Snapshot) GetUlListingPricing(_ context.Context, listingType string) (*pricing.ULListingPricing, error) {
	for _, u := range s.ULListings {
		if sameName(u.Type, listingType) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetWiringPricing(_ context.Context) (*pricing.WiringPricing, error) {
	if s.Wiring == nil {
		return nil, nil
	}
	w := *s.Wiring
	return &w, nil
}

func (s *Snapshot) GetPinType(_ context.Context, name string) (*pricing.PinType, error) {
	for _, p := range s.PinTypes {
		if sameName(p.Name, name) {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetPaintingPricing(_ context.Context) (*pricing.PaintingPricing, error) {
	if s.Painting == nil {
		return nil, nil
	}
	p := *s.Painting
	return &p, nil
}

func (s *Snapshot) GetSubstrateCutPricing(_ context.Context, name string) (*pricing.SubstrateCutPricing, error) {
	for _, sc := range s.SubstrateCuts {
		if sameName(sc.Name, name) {
			return &sc, nil
		}
	}
	return nil, nil
}

func (s *Snapshot) GetSubstrateCutPricingMap(_ context.Context) (map[string]pricing.SubstrateCutPricing, error) {
	out := make(map[string]pricing.SubstrateCutPricing, len(s.SubstrateCuts))
	for _, sc := range s.SubstrateCuts {
		out[sc.Name] = sc
	}
	return out, nil
}

func (s *Snapshot) GetSubstrateCutBasePricingMap(_ context.Context) (map[string]pricing.SubstrateBasePricing, error) {
	out := make(map[string]pricing.SubstrateBasePricing, len(s.SubstrateBases))
	for _, b := range s.SubstrateBases {
		out[b.Name] = b
	}
	return out, nil
}

func (s *Snapshot) GetPushThruAssemblyPricing(_ context.Context) (*pricing.PushThruAssemblyPricing, error) {
	if s.PushThruAssembly == nil {
		return nil, nil
	}
	p := *s.PushThruAssembly
	return &p, nil
}

func (s *Snapshot) GetHingedRacewayPricing(_ context.Context) ([]pricing.HingedRacewayPrice, error) {
	return append([]pricing.HingedRacewayPrice(nil), s.HingedRaceway...), nil
}
