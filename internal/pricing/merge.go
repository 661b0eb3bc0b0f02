package pricing

import "strings"

// MergeRule folds every component of type Source into the first component of
// type Target. When Source equals Target, repeated siblings collapse into the
// first one. Rules whose target is absent leave components untouched.
type MergeRule struct {
	Source ComponentType
	Target ComponentType
}

// lineBuilder accumulates candidate components for one row.
type lineBuilder struct {
	components []ComponentItem
}

func (b *lineBuilder) add(items ...ComponentItem) {
	for _, it := range items {
		it.Price = RoundCents(it.Price)
		b.components = append(b.components, it)
	}
}

func (b *lineBuilder) empty() bool { return len(b.components) == 0 }

// ApplyMergeRules returns a new component list with rules applied in order.
// The input is not modified and the price total is preserved.
func ApplyMergeRules(items []ComponentItem, rules []MergeRule) []ComponentItem {
	out := make([]ComponentItem, len(items))
	for i, it := range items {
		out[i] = cloneComponent(it)
	}
	for _, rule := range rules {
		out = applyRule(out, rule)
	}
	return out
}

func applyRule(items []ComponentItem, rule MergeRule) []ComponentItem {
	target := -1
	for i, it := range items {
		if it.Type == rule.Target {
			target = i
			break
		}
	}
	if target < 0 {
		return items
	}

	kept := make([]ComponentItem, 0, len(items))
	keptTarget := -1
	var merged []ComponentItem
	for i, it := range items {
		if i != target && it.Type == rule.Source {
			merged = append(merged, it)
			continue
		}
		if i == target {
			keptTarget = len(kept)
		}
		kept = append(kept, it)
	}
	if len(merged) == 0 {
		return items
	}

	t := &kept[keptTarget]
	for _, m := range merged {
		t.Price = RoundCents(t.Price + m.Price)
		if rule.Source == rule.Target {
			if t.Count != nil && m.Count != nil {
				n := *t.Count + *m.Count
				t.Count = &n
			}
			t.CalculationDisplay = joinDisplay(t.CalculationDisplay, m.CalculationDisplay)
		} else {
			t.CalculationDisplay = joinDisplay(t.CalculationDisplay, m.Name+" "+FormatMoney(m.Price))
		}
		if t.Metadata == nil {
			t.Metadata = map[string]any{}
		}
		names, _ := t.Metadata["merged"].([]string)
		t.Metadata["merged"] = append(names, m.Name)
	}
	return kept
}

func joinDisplay(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimSpace(a) + " + " + strings.TrimSpace(b)
}

func cloneComponent(c ComponentItem) ComponentItem {
	if c.Count != nil {
		n := *c.Count
		c.Count = &n
	}
	if c.Metadata != nil {
		m := make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			if names, ok := v.([]string); ok {
				v = append([]string(nil), names...)
			}
			m[k] = v
		}
		c.Metadata = m
	}
	return c
}

// SumComponents totals component prices to the cent.
func SumComponents(items []ComponentItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price
	}
	return RoundCents(total)
}

// finalize runs the merge stage and assembles the priced line.
func (b *lineBuilder) finalize(in ValidatedPricingInput, itemName string, quantity float64, rules []MergeRule) *PricingCalculationData {
	components := ApplyMergeRules(b.components, rules)
	return &PricingCalculationData{
		ProductTypeID: in.ProductTypeID,
		RowID:         in.RowID,
		ItemName:      itemName,
		UnitPrice:     SumComponents(components),
		Quantity:      quantity,
		Components:    components,
	}
}

func countPtr(n float64) *float64 { return &n }
