package seed

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/signworks/internal/pricingdata"
)

//go:embed pricing.yaml
var defaultFixture []byte

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Default returns the embedded starting rate tables.
func Default() (*pricingdata.Snapshot, error) {
	return LoadFixture(bytes.NewReader(defaultFixture))
}

// LoadFixture decodes a YAML rate-table fixture. Unknown keys are rejected so
// a typo never silently drops a table.
func LoadFixture(r io.Reader) (*pricingdata.Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var snap pricingdata.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode pricing fixture: %w", err)
	}
	return &snap, nil
}

// Run inserts every fixture row whose key is not yet present. It is
// idempotent and runs in a single transaction.
func Run(ctx context.Context, db *sql.DB, snap *pricingdata.Snapshot) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	steps := []func(context.Context, *sql.Tx, *pricingdata.Snapshot, *Stats) error{
		ensureChannelLetterTypes,
		ensureLEDs,
		ensurePowerSupplies,
		ensureULListings,
		ensureWiring,
		ensurePinTypes,
		ensurePainting,
		ensureSubstrateCuts,
		ensureSubstrateBases,
		ensurePushThruAssembly,
		ensureHingedRaceway,
	}
	for _, step := range steps {
		if err := step(ctx, tx, snap, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// ensureRow inserts one row unless existsQuery finds it.
func ensureRow(ctx context.Context, tx *sql.Tx, stats *Stats, what, existsQuery string, key []any, insertQuery string, values ...any) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, existsQuery, key...).Scan(&exists); err != nil {
		return fmt.Errorf("check %s existence: %w", what, err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	if _, err := tx.ExecContext(ctx, insertQuery, values...); err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	stats.Inserts++
	return nil
}

func ensureChannelLetterTypes(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, t := range snap.ChannelLetterTypes {
		err := ensureRow(ctx, tx, stats, "channel letter type "+t.Name,
			`SELECT EXISTS(SELECT 1 FROM channel_letter_types WHERE name = ? LIMIT 1)`, []any{t.Name},
			`INSERT INTO channel_letter_types (name, price_per_inch, led_multiplier, default_led_code, default_pin_type)
			VALUES (?, ?, ?, ?, ?)`,
			t.Name, t.PricePerInch, t.LEDMultiplier, t.DefaultLEDCode, t.DefaultPinType)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureLEDs(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, l := range snap.LEDs {
		err := ensureRow(ctx, tx, stats, "led "+l.Code,
			`SELECT EXISTS(SELECT 1 FROM leds WHERE code = ? LIMIT 1)`, []any{l.Code},
			`INSERT INTO leds (code, price, watts, price_per_foot, watts_per_foot, is_default)
			VALUES (?, ?, ?, ?, ?, ?)`,
			l.Code, l.Price, l.Watts, l.PricePerFoot, l.WattsPerFoot, l.IsDefault)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensurePowerSupplies(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, ps := range snap.PowerSupplies {
		err := ensureRow(ctx, tx, stats, "power supply "+ps.Type,
			`SELECT EXISTS(SELECT 1 FROM power_supplies WHERE type = ? LIMIT 1)`, []any{ps.Type},
			`INSERT INTO power_supplies (type, watts, price, ul_listed, is_default_ul, is_default_non_ul)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ps.Type, ps.Watts, ps.Price, ps.ULListed, ps.IsDefaultUL, ps.IsDefaultNonUL)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureULListings(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, u := range snap.ULListings {
		err := ensureRow(ctx, tx, stats, "ul listing pricing "+u.Type,
			`SELECT EXISTS(SELECT 1 FROM ul_listing_pricing WHERE type = ? LIMIT 1)`, []any{u.Type},
			`INSERT INTO ul_listing_pricing (type, base_fee, per_set_fee, minimum_sets) VALUES (?, ?, ?, ?)`,
			u.Type, u.BaseFee, u.PerSetFee, u.MinimumSets)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureWiring(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	if snap.Wiring == nil {
		return nil
	}
	w := snap.Wiring
	return ensureRow(ctx, tx, stats, "wiring pricing singleton",
		`SELECT EXISTS(SELECT 1 FROM wiring_pricing WHERE id = 1)`, nil,
		`INSERT INTO wiring_pricing (id, wire_price_per_foot, plug_price, solder_joint_cost) VALUES (1, ?, ?, ?)`,
		w.WirePricePerFoot, w.PlugPrice, w.SolderJointCost)
}

func ensurePinTypes(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, p := range snap.PinTypes {
		err := ensureRow(ctx, tx, stats, "pin type "+p.Name,
			`SELECT EXISTS(SELECT 1 FROM pin_types WHERE name = ? LIMIT 1)`, []any{p.Name},
			`INSERT INTO pin_types (name, price) VALUES (?, ?)`,
			p.Name, p.Price)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensurePainting(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	if snap.Painting == nil {
		return nil
	}
	p := snap.Painting
	return ensureRow(ctx, tx, stats, "painting pricing singleton",
		`SELECT EXISTS(SELECT 1 FROM painting_pricing WHERE id = 1)`, nil,
		`INSERT INTO painting_pricing (
			id,
			area_rate_per_sqft,
			trim_rate_per_foot,
			return_rate_per_sqft,
			prep_rate_per_hour,
			minimum,
			primer_addition,
			clear_coat_addition
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		p.AreaRatePerSqft, p.TrimRatePerFoot, p.ReturnRatePerSqft, p.PrepRatePerHour,
		p.Minimum, p.PrimerAddition, p.ClearCoatAddition)
}

func ensureSubstrateCuts(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, sc := range snap.SubstrateCuts {
		err := ensureRow(ctx, tx, stats, "substrate cut pricing "+sc.Name,
			`SELECT EXISTS(SELECT 1 FROM substrate_cut_pricing WHERE name = ? LIMIT 1)`, []any{sc.Name},
			`INSERT INTO substrate_cut_pricing (name, material_cost_per_sheet, cutting_cost_per_sheet, sheet_width, sheet_height, markup)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sc.Name, sc.MaterialCostPerSheet, sc.CuttingCostPerSheet, sc.SheetWidth, sc.SheetHeight, sc.Markup)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureSubstrateBases(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, b := range snap.SubstrateBases {
		err := ensureRow(ctx, tx, stats, "substrate base pricing "+b.Name,
			`SELECT EXISTS(SELECT 1 FROM substrate_base_pricing WHERE name = ? LIMIT 1)`, []any{b.Name},
			`INSERT INTO substrate_base_pricing (name, sheet_cost, shipping_per_sheet, cut_cost, markup)
			VALUES (?, ?, ?, ?, ?)`,
			b.Name, b.SheetCost, b.ShippingPerSheet, b.CutCost, b.Markup)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensurePushThruAssembly(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	if snap.PushThruAssembly == nil {
		return nil
	}
	p := snap.PushThruAssembly
	return ensureRow(ctx, tx, stats, "push-thru assembly pricing singleton",
		`SELECT EXISTS(SELECT 1 FROM push_thru_assembly_pricing WHERE id = 1)`, nil,
		`INSERT INTO push_thru_assembly_pricing (id, base_cost, per_square_foot, minimum_cost, default_acrylic)
		VALUES (1, ?, ?, ?, ?)`,
		p.BaseCost, p.PerSquareFoot, p.MinimumCost, p.DefaultAcrylic)
}

func ensureHingedRaceway(ctx context.Context, tx *sql.Tx, snap *pricingdata.Snapshot, stats *Stats) error {
	for _, r := range snap.HingedRaceway {
		err := ensureRow(ctx, tx, stats, fmt.Sprintf("hinged raceway price %g", r.Length),
			`SELECT EXISTS(SELECT 1 FROM hinged_raceway_pricing WHERE length = ? LIMIT 1)`, []any{r.Length},
			`INSERT INTO hinged_raceway_pricing (length, price) VALUES (?, ?)`,
			r.Length, r.Price)
		if err != nil {
			return err
		}
	}
	return nil
}
