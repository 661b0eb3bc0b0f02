package pricing

import "context"

const (
	ulSetsSlot = Field1
	ulTypeSlot = Field2
)

// ULCalculator prices a standalone UL listing row. The job-level base fee is
// charged only when no earlier row billed UL; that state comes in on the
// input.
type ULCalculator struct {
	src Source
}

func NewULCalculator(src Source) *ULCalculator {
	return &ULCalculator{src: src}
}

func (c *ULCalculator) ProductType() ProductType { return ProductUL }

func (c *ULCalculator) BillsUL(in ValidatedPricingInput) bool {
	o := in.ParsedValues.Override(ulSetsSlot)
	switch o.Kind {
	case OverrideDisabled:
		return false
	case OverrideCount, OverrideCurrency:
		return o.Amount > 0
	}
	return true
}

func (c *ULCalculator) Calculate(ctx context.Context, in ValidatedPricingInput, tables *LookupTables) RowCalculationResult {
	return evaluate(ctx, in, tables, c.price)
}

func (c *ULCalculator) price(ctx context.Context, in ValidatedPricingInput, qty float64, _ *LookupTables) (*PricingCalculationData, string, error) {
	o := in.ParsedValues.Override(ulSetsSlot)
	if o.IsDisabled() {
		return nil, "UL not requested", nil
	}
	listingType, _ := in.ParsedValues.Text(ulTypeSlot)

	item, err := priceUL(ctx, c.src, listingType, o, ulAlreadyBilled(in))
	if err != nil {
		return nil, "", err
	}
	if item == nil {
		return nil, "UL sets required", nil
	}

	var b lineBuilder
	b.add(*item)
	return b.finalize(in, "UL Listing", qty, nil), "", nil
}
