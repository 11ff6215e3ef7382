package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCostFlatAmounts(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"55.00", 55.00, true},
		{"$55.00", 55.00, true},
		{"0", 0, true},
		{"12", 12, true},
		{"1,250.50", 1, true}, // thousands separators read as first number; crawler never emits them
		{"", 0, false},
		{"free", 0, false},
		{"-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCost(tt.input, 100)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestParseCostPercentFee(t *testing.T) {
	const fee = `[fee percent="10" min_fee="5" max_fee="50"]`

	// clamp(0.1*S, 5, 50) across the whole range.
	for _, subtotal := range []float64{0, 10, 49.99, 50, 200, 499, 500, 501, 10000} {
		want := 0.1 * subtotal
		if want < 5 {
			want = 5
		}
		if want > 50 {
			want = 50
		}
		got, ok := ParseCost(fee, subtotal)
		assert.True(t, ok, "subtotal %v", subtotal)
		assert.InDelta(t, want, got, 0.001, "subtotal %v", subtotal)
	}
}

func TestParseCostPercentFeeDefaults(t *testing.T) {
	// No min: percentage applies from zero.
	got, ok := ParseCost(`[fee percent="16" max_fee="120"]`, 100)
	assert.True(t, ok)
	assert.InDelta(t, 16, got, 0.001)

	// No max: unbounded.
	got, ok = ParseCost(`[fee percent="16" min_fee="55"]`, 10000)
	assert.True(t, ok)
	assert.InDelta(t, 1600, got, 0.001)

	// Min floor still applies.
	got, ok = ParseCost(`[fee percent="16" min_fee="55"]`, 10)
	assert.True(t, ok)
	assert.InDelta(t, 55, got, 0.001)
}

func TestParseCostUnquotedAttributes(t *testing.T) {
	got, ok := ParseCost(`[fee percent=10 min_fee=5 max_fee=50]`, 300)
	assert.True(t, ok)
	assert.InDelta(t, 30, got, 0.001)
}

func TestParseCostFeeWithoutPercentFallsBackToFlat(t *testing.T) {
	// Missing percent attribute reads the embedded number as a flat amount.
	got, ok := ParseCost(`[fee min_fee="55"]`, 1000)
	assert.True(t, ok)
	assert.InDelta(t, 55, got, 0.001)
}

func TestParseCostInvalidFee(t *testing.T) {
	for _, input := range []string{
		`[fee percent="-10"]`,
		`[fee percent="10" min_fee="-5"]`,
	} {
		t.Run(input, func(t *testing.T) {
			_, ok := ParseCost(input, 100)
			assert.False(t, ok)
		})
	}
}

func TestParseCostNeverNegative(t *testing.T) {
	for _, input := range []string{"55", "$12.50", `[fee percent="10"]`, `[fee percent="10" min_fee="5" max_fee="50"]`} {
		for _, subtotal := range []float64{0, 1, 100, 100000} {
			got, ok := ParseCost(input, subtotal)
			if ok {
				assert.GreaterOrEqual(t, got, 0.0, fmt.Sprintf("%s @ %v", input, subtotal))
			}
		}
	}
}
