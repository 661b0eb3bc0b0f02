package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldSlot names a column of an estimate row. The meaning of each numbered
// slot depends on the row's product type.
type FieldSlot string

const (
	Field1   FieldSlot = "field1"
	Field2   FieldSlot = "field2"
	Field3   FieldSlot = "field3"
	Field4   FieldSlot = "field4"
	Field5   FieldSlot = "field5"
	Field6   FieldSlot = "field6"
	Field7   FieldSlot = "field7"
	Field8   FieldSlot = "field8"
	Field9   FieldSlot = "field9"
	Field10  FieldSlot = "field10"
	Quantity FieldSlot = "quantity"
)

// ValueKind discriminates FieldValue.
type ValueKind int

const (
	KindNumber ValueKind = iota + 1
	KindDimensions
	KindText
	KindOverride
)

// OverrideKind discriminates Override.
type OverrideKind int

const (
	// OverrideDefault means the user left the slot alone.
	OverrideDefault OverrideKind = iota
	// OverrideDisabled is an explicit "no".
	OverrideDisabled
	// OverrideEnabled is an explicit "yes": apply the computed default.
	OverrideEnabled
	// OverrideCount is an explicit quantity, zero included.
	OverrideCount
	// OverrideCurrency replaces the computed price with a custom amount.
	OverrideCurrency
)

// Override is the value of a slot that can supersede a computed default.
type Override struct {
	Kind   OverrideKind
	Amount float64
}

func DefaultOverride() Override         { return Override{Kind: OverrideDefault} }
func Disabled() Override                { return Override{Kind: OverrideDisabled} }
func Enabled() Override                 { return Override{Kind: OverrideEnabled} }
func Count(n float64) Override          { return Override{Kind: OverrideCount, Amount: n} }
func CustomAmount(amt float64) Override { return Override{Kind: OverrideCurrency, Amount: amt} }

func (o Override) IsDefault() bool  { return o.Kind == OverrideDefault }
func (o Override) IsDisabled() bool { return o.Kind == OverrideDisabled }
func (o Override) IsEnabled() bool  { return o.Kind == OverrideEnabled }
func (o Override) IsCount() bool    { return o.Kind == OverrideCount }
func (o Override) IsCurrency() bool { return o.Kind == OverrideCurrency }

func (o Override) String() string {
	switch o.Kind {
	case OverrideDisabled:
		return "no"
	case OverrideEnabled:
		return "yes"
	case OverrideCount:
		return fmt.Sprintf("count:%g", o.Amount)
	case OverrideCurrency:
		return fmt.Sprintf("currency:%g", o.Amount)
	default:
		return "default"
	}
}

// FieldValue is a typed, already-validated cell value.
type FieldValue struct {
	Kind       ValueKind
	Number     float64
	Dimensions []float64
	Text       string
	Override   Override
}

func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Number: n} }

func DimensionsValue(dims ...float64) FieldValue {
	return FieldValue{Kind: KindDimensions, Dimensions: append([]float64(nil), dims...)}
}

func TextValue(s string) FieldValue { return FieldValue{Kind: KindText, Text: s} }

func OverrideValue(o Override) FieldValue { return FieldValue{Kind: KindOverride, Override: o} }

type overrideJSON struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// UnmarshalJSON decodes the wire form produced by the grid validation layer:
// numbers, dimension arrays, dropdown strings, the literals "yes"/"no" and
// {"kind":"currency"|"count","amount":n} objects.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = FieldValue{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var dims []float64
		if err := json.Unmarshal(data, &dims); err != nil {
			return fmt.Errorf("decode dimensions: %w", err)
		}
		*v = DimensionsValue(dims...)
	case '{':
		var o overrideJSON
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("decode override: %w", err)
		}
		switch o.Kind {
		case "currency":
			*v = OverrideValue(CustomAmount(o.Amount))
		case "count":
			*v = OverrideValue(Count(o.Amount))
		default:
			return fmt.Errorf("unknown override kind %q", o.Kind)
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes":
			*v = OverrideValue(Enabled())
		case "no":
			*v = OverrideValue(Disabled())
		default:
			*v = TextValue(s)
		}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		*v = NumberValue(n)
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Number)
	case KindDimensions:
		return json.Marshal(v.Dimensions)
	case KindText:
		return json.Marshal(v.Text)
	case KindOverride:
		switch v.Override.Kind {
		case OverrideEnabled:
			return json.Marshal("yes")
		case OverrideDisabled:
			return json.Marshal("no")
		case OverrideCount:
			return json.Marshal(overrideJSON{Kind: "count", Amount: v.Override.Amount})
		case OverrideCurrency:
			return json.Marshal(overrideJSON{Kind: "currency", Amount: v.Override.Amount})
		}
	}
	return []byte("null"), nil
}

// ParsedFieldValues maps each populated slot of a row to its typed value.
// Calculators treat it as read-only.
type ParsedFieldValues map[FieldSlot]FieldValue

// Has reports whether the slot carries any value.
func (p ParsedFieldValues) Has(slot FieldSlot) bool {
	v, ok := p[slot]
	return ok && v.Kind != 0
}

// Number returns a numeric slot. Count overrides read as numbers too.
func (p ParsedFieldValues) Number(slot FieldSlot) (float64, bool) {
	v, ok := p[slot]
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindOverride:
		if v.Override.Kind == OverrideCount {
			return v.Override.Amount, true
		}
	}
	return 0, false
}

// Dimensions returns a pair or triple. A plain number reads as a single
// dimension.
func (p ParsedFieldValues) Dimensions(slot FieldSlot) ([]float64, bool) {
	v, ok := p[slot]
	if !ok {
		return nil, false
	}
	switch v.Kind {
	case KindDimensions:
		if len(v.Dimensions) == 0 {
			return nil, false
		}
		return v.Dimensions, true
	case KindNumber:
		return []float64{v.Number}, true
	}
	return nil, false
}

// Text returns a dropdown choice, trimmed. Empty strings read as absent.
func (p ParsedFieldValues) Text(slot FieldSlot) (string, bool) {
	v, ok := p[slot]
	if !ok || v.Kind != KindText {
		return "", false
	}
	s := strings.TrimSpace(v.Text)
	return s, s != ""
}

// Override returns the override held in slot. A bare number is an explicit
// count; an absent slot is the default.
func (p ParsedFieldValues) Override(slot FieldSlot) Override {
	v, ok := p[slot]
	if !ok {
		return DefaultOverride()
	}
	switch v.Kind {
	case KindOverride:
		return v.Override
	case KindNumber:
		return Count(v.Number)
	}
	return DefaultOverride()
}
