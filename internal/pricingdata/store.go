package pricingdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/signworks/internal/pricing"
)

// Loader fetches a complete pricing snapshot from a backing store.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// SQLStore loads rate tables from the SQLite schema.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Load reads every rate table in one read transaction.
func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin pricing snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snap := &Snapshot{}
	steps := []func(context.Context, *sql.Tx, *Snapshot) error{
		loadChannelLetterTypes,
		loadLEDs,
		loadPowerSupplies,
		loadULListings,
		loadWiring,
		loadPinTypes,
		loadPainting,
		loadSubstrateCuts,
		loadSubstrateBases,
		loadPushThruAssembly,
		loadHingedRaceway,
	}
	for _, step := range steps {
		if err := step(ctx, tx, snap); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit pricing snapshot transaction: %w", err)
	}
	return snap, nil
}

func queryAll(ctx context.Context, tx *sql.Tx, what, query string, scan func(*sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", what, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", what, err)
	}
	return nil
}

func loadChannelLetterTypes(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "channel letter types", `
		SELECT id, name, price_per_inch, led_multiplier, default_led_code, default_pin_type
		FROM channel_letter_types
		WHERE active
		ORDER BY id
	`, func(rows *sql.Rows) error {
		var t pricing.ChannelLetterType
		if err := rows.Scan(&t.ID, &t.Name, &t.PricePerInch, &t.LEDMultiplier, &t.DefaultLEDCode, &t.DefaultPinType); err != nil {
			return err
		}
		snap.ChannelLetterTypes = append(snap.ChannelLetterTypes, t)
		return nil
	})
}

func loadLEDs(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "leds", `
		SELECT id, code, price, watts, price_per_foot, watts_per_foot, is_default
		FROM leds
		WHERE active
		ORDER BY id
	`, func(rows *sql.Rows) error {
		var l pricing.LED
		if err := rows.Scan(&l.ID, &l.Code, &l.Price, &l.Watts, &l.PricePerFoot, &l.WattsPerFoot, &l.IsDefault); err != nil {
			return err
		}
		snap.LEDs = append(snap.LEDs, l)
		return nil
	})
}

func loadPowerSupplies(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "power supplies", `
		SELECT id, type, watts, price, ul_listed, is_default_ul, is_default_non_ul
		FROM power_supplies
		WHERE active
		ORDER BY id
	`, func(rows *sql.Rows) error {
		var ps pricing.PowerSupply
		if err := rows.Scan(&ps.ID, &ps.Type, &ps.Watts, &ps.Price, &ps.ULListed, &ps.IsDefaultUL, &ps.IsDefaultNonUL); err != nil {
			return err
		}
		snap.PowerSupplies = append(snap.PowerSupplies, ps)
		return nil
	})
}

func loadULListings(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "ul listing pricing", `
		SELECT type, base_fee, per_set_fee, minimum_sets
		FROM ul_listing_pricing
		ORDER BY type
	`, func(rows *sql.Rows) error {
		var u pricing.ULListingPricing
		if err := rows.Scan(&u.Type, &u.BaseFee, &u.PerSetFee, &u.MinimumSets); err != nil {
			return err
		}
		snap.ULListings = append(snap.ULListings, u)
		return nil
	})
}

func loadWiring(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	var w pricing.WiringPricing
	err := tx.QueryRowContext(ctx, `
		SELECT wire_price_per_foot, plug_price, solder_joint_cost
		FROM wiring_pricing
		WHERE id = 1
	`).Scan(&w.WirePricePerFoot, &w.PlugPrice, &w.SolderJointCost)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query wiring pricing: %w", err)
	}
	snap.Wiring = &w
	return nil
}

func loadPinTypes(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "pin types", `
		SELECT name, price
		FROM pin_types
		ORDER BY name
	`, func(rows *sql.Rows) error {
		var p pricing.PinType
		if err := rows.Scan(&p.Name, &p.Price); err != nil {
			return err
		}
		snap.PinTypes = append(snap.PinTypes, p)
		return nil
	})
}

func loadPainting(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	var p pricing.PaintingPricing
	err := tx.QueryRowContext(ctx, `
		SELECT area_rate_per_sqft, trim_rate_per_foot, return_rate_per_sqft, prep_rate_per_hour,
			minimum, primer_addition, clear_coat_addition
		FROM painting_pricing
		WHERE id = 1
	`).Scan(&p.AreaRatePerSqft, &p.TrimRatePerFoot, &p.ReturnRatePerSqft, &p.PrepRatePerHour,
		&p.Minimum, &p.PrimerAddition, &p.ClearCoatAddition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query painting pricing: %w", err)
	}
	snap.Painting = &p
	return nil
}

func loadSubstrateCuts(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "substrate cut pricing", `
		SELECT name, material_cost_per_sheet, cutting_cost_per_sheet, sheet_width, sheet_height, markup
		FROM substrate_cut_pricing
		ORDER BY name
	`, func(rows *sql.Rows) error {
		var sc pricing.SubstrateCutPricing
		if err := rows.Scan(&sc.Name, &sc.MaterialCostPerSheet, &sc.CuttingCostPerSheet, &sc.SheetWidth, &sc.SheetHeight, &sc.Markup); err != nil {
			return err
		}
		snap.SubstrateCuts = append(snap.SubstrateCuts, sc)
		return nil
	})
}

func loadSubstrateBases(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "substrate base pricing", `
		SELECT name, sheet_cost, shipping_per_sheet, cut_cost, markup
		FROM substrate_base_pricing
		ORDER BY name
	`, func(rows *sql.Rows) error {
		var b pricing.SubstrateBasePricing
		if err := rows.Scan(&b.Name, &b.SheetCost, &b.ShippingPerSheet, &b.CutCost, &b.Markup); err != nil {
			return err
		}
		snap.SubstrateBases = append(snap.SubstrateBases, b)
		return nil
	})
}

func loadPushThruAssembly(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	var p pricing.PushThruAssemblyPricing
	err := tx.QueryRowContext(ctx, `
		SELECT base_cost, per_square_foot, minimum_cost, default_acrylic
		FROM push_thru_assembly_pricing
		WHERE id = 1
	`).Scan(&p.BaseCost, &p.PerSquareFoot, &p.MinimumCost, &p.DefaultAcrylic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query push-thru assembly pricing: %w", err)
	}
	snap.PushThruAssembly = &p
	return nil
}

func loadHingedRaceway(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	return queryAll(ctx, tx, "hinged raceway pricing", `
		SELECT length, price
		FROM hinged_raceway_pricing
		ORDER BY length
	`, func(rows *sql.Rows) error {
		var r pricing.HingedRacewayPrice
		if err := rows.Scan(&r.Length, &r.Price); err != nil {
			return err
		}
		snap.HingedRaceway = append(snap.HingedRaceway, r)
		return nil
	})
}
