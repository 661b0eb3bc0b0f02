package pricing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMergeRules_FoldsIntoTarget(t *testing.T) {
	items := []ComponentItem{
		{Name: "Pins", Price: 7.5, Type: ComponentPins},
		{Name: "Front Lit", Price: 300, Type: ComponentChannelLetters},
		{Name: "LEDs", Price: 48, Type: ComponentLEDs},
	}
	out := ApplyMergeRules(items, []MergeRule{{Source: ComponentPins, Target: ComponentChannelLetters}})

	require.Len(t, out, 2)
	assert.Equal(t, ComponentChannelLetters, out[0].Type)
	assert.Equal(t, 307.5, out[0].Price)
	assert.Contains(t, out[0].CalculationDisplay, "Pins $7.50")
	assert.Equal(t, []string{"Pins"}, out[0].Metadata["merged"])

	assert.Len(t, items, 3, "input is untouched")
	assert.Equal(t, 300.0, items[1].Price)
}

func TestApplyMergeRules_CollapsesSiblings(t *testing.T) {
	items := []ComponentItem{
		{Name: "Aluminum Backer", Price: 525, Type: ComponentAluminumBacker, Count: countPtr(1)},
		{Name: "Aluminum Backer", Price: 220, Type: ComponentAluminumBacker, Count: countPtr(1)},
	}
	out := ApplyMergeRules(items, []MergeRule{{Source: ComponentAluminumBacker, Target: ComponentAluminumBacker}})

	require.Len(t, out, 1)
	assert.Equal(t, 745.0, out[0].Price)
	require.NotNil(t, out[0].Count)
	assert.Equal(t, 2.0, *out[0].Count)
	assert.Equal(t, 1.0, *items[0].Count)
}

func TestApplyMergeRules_MissingTarget(t *testing.T) {
	items := []ComponentItem{{Name: "Pins", Price: 5, Type: ComponentPins}}
	out := ApplyMergeRules(items, []MergeRule{{Source: ComponentPins, Target: ComponentSubstrate}})
	assert.Equal(t, items, out)
}

var mergeTypes = []ComponentType{ComponentSubstrate, ComponentPins, ComponentCutting, ComponentAdjustment}

func TestApplyMergeRules_PreservesTotal(t *testing.T) {
	rules := []MergeRule{
		{Source: ComponentPins, Target: ComponentSubstrate},
		{Source: ComponentCutting, Target: ComponentSubstrate},
		{Source: ComponentAdjustment, Target: ComponentAdjustment},
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("merging never changes the sum", prop.ForAll(
		func(prices []float64, kinds []int) bool {
			var items []ComponentItem
			for i := 0; i < len(prices) && i < len(kinds); i++ {
				items = append(items, ComponentItem{
					Name:  string(mergeTypes[kinds[i]]),
					Price: RoundCents(prices[i]),
					Type:  mergeTypes[kinds[i]],
				})
			}
			out := ApplyMergeRules(items, rules)
			return len(out) <= len(items) &&
				math.Abs(SumComponents(out)-SumComponents(items)) < 0.005
		},
		gen.SliceOf(gen.Float64Range(-500, 5000)),
		gen.SliceOf(gen.IntRange(0, len(mergeTypes)-1)),
	))

	properties.TestingRun(t)
}
