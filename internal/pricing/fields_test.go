package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want FieldValue
	}{
		{name: "number", raw: `12.5`, want: NumberValue(12.5)},
		{name: "dimensions", raw: `[100,40,2]`, want: DimensionsValue(100, 40, 2)},
		{name: "text", raw: `"Front Lit"`, want: TextValue("Front Lit")},
		{name: "yes", raw: `"yes"`, want: OverrideValue(Enabled())},
		{name: "no", raw: `"No"`, want: OverrideValue(Disabled())},
		{name: "count", raw: `{"kind":"count","amount":3}`, want: OverrideValue(Count(3))},
		{name: "currency", raw: `{"kind":"currency","amount":49.99}`, want: OverrideValue(CustomAmount(49.99))},
		{name: "null", raw: `null`, want: FieldValue{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FieldValue
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldValue_UnmarshalJSON_UnknownOverride(t *testing.T) {
	var v FieldValue
	require.Error(t, json.Unmarshal([]byte(`{"kind":"percent","amount":3}`), &v))
}

func TestParsedFieldValues_Decode(t *testing.T) {
	var pv ParsedFieldValues
	raw := `{"field1":"Front Lit","field2":[1,2],"field3":{"kind":"count","amount":0},"field4":"no","quantity":2}`
	require.NoError(t, json.Unmarshal([]byte(raw), &pv))

	name, ok := pv.Text(Field1)
	require.True(t, ok)
	assert.Equal(t, "Front Lit", name)

	dims, ok := pv.Dimensions(Field2)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, dims)

	o := pv.Override(Field3)
	assert.True(t, o.IsCount())
	assert.Zero(t, o.Amount)

	assert.True(t, pv.Override(Field4).IsDisabled())
	assert.True(t, pv.Override(Field9).IsDefault())

	qty, ok := pv.Number(Quantity)
	require.True(t, ok)
	assert.Equal(t, 2.0, qty)
}

func TestParsedFieldValues_Accessors(t *testing.T) {
	pv := ParsedFieldValues{
		Field1: TextValue("   "),
		Field2: NumberValue(7),
		Field3: OverrideValue(Count(4)),
	}

	_, ok := pv.Text(Field1)
	assert.False(t, ok, "blank text is absent")

	assert.Equal(t, Count(7), pv.Override(Field2), "bare number is a count")
	dims, ok := pv.Dimensions(Field2)
	require.True(t, ok)
	assert.Equal(t, []float64{7}, dims)

	n, ok := pv.Number(Field3)
	require.True(t, ok)
	assert.Equal(t, 4.0, n)

	assert.False(t, pv.Has(Field5))
}

func TestFieldValue_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(ParsedFieldValues{
		Field1: OverrideValue(Enabled()),
		Field2: OverrideValue(CustomAmount(10)),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"field1":"yes","field2":{"kind":"currency","amount":10}}`, string(b))
}
