package refrange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAbnormal(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		rng      string
		abnormal bool
	}{
		{"inside band", "15", "10 - 20", false},
		{"above band", "25", "10 - 20", true},
		{"below band", "9.5", "10 - 20", true},
		{"band edge", "20", "10 - 20", false},
		{"non numeric value", "abc", "10 - 20", false},
		{"non numeric value with bound", "abc", "> 10", false},
		{"under lower bound", "5", "> 10", true},
		{"over lower bound", "15", "> 10", false},
		{"over upper bound", "7", "< 5", true},
		{"under upper bound", "3", "<5", false},
		{"inclusive bound", "5", "<= 5", false},
		{"no range", "5", "", false},
		{"textual range", "5", "Negative", false},
		{"value with unit", "12.4 g/dL", "13 - 17", true},
		{"compact band", "4", "3.5-5.0", false},
		{"leading decimal", ".5", "1 - 2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.abnormal, IsAbnormal(tt.value, tt.rng))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Range{Kind: Band, Low: 10, High: 20}, Parse(" 10 - 20 "))
	assert.Equal(t, Range{Kind: Below, Limit: 5}, Parse("< 5"))
	assert.Equal(t, Range{Kind: Above, Limit: 40}, Parse(">=40"))
	assert.Equal(t, Unknown, Parse("N/A").Kind)
}

func TestValue(t *testing.T) {
	v, ok := Value("Hb 13.2")
	assert.True(t, ok)
	assert.Equal(t, 13.2, v)

	_, ok = Value("nil")
	assert.False(t, ok)
}

func TestText(t *testing.T) {
	low, high := 3.5, 5.0

	assert.Equal(t, "3.5 - 5", Text(&low, &high, "ignored"))
	assert.Equal(t, "3.5", Text(&low, nil, ""))
	assert.Equal(t, "5", Text(nil, &high, ""))
	assert.Equal(t, "Negative", Text(nil, nil, " Negative "))
	assert.Equal(t, "N/A", Text(nil, nil, ""))
}
