package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitCategoryLabel(t *testing.T) {
	tests := []struct {
		label, name, applicability string
	}{
		{"Cars (Weekdays)", "Cars", "Weekdays"},
		{"Motorcycles(Saturdays)", "Motorcycles", "Saturdays"},
		{"Taxis", "Taxis", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, applicability := SplitCategoryLabel(tt.label)
		assert.Equal(t, tt.name, name, tt.label)
		assert.Equal(t, tt.applicability, applicability, tt.label)
	}
}

func TestStripCurrency(t *testing.T) {
	assert.Equal(t, "3.50", StripCurrency(" $3.50 "))
	assert.Equal(t, "3.50", StripCurrency("3.50"))
	assert.Equal(t, "Free", StripCurrency("Free"))
}

func TestRound7(t *testing.T) {
	assert.Equal(t, 103.8543211, Round7(103.85432114))
	assert.Equal(t, 1.2999999, Round7(1.29999994))
	assert.Equal(t, -0.0000001, Round7(-0.00000009))
}

func TestDateStamp(t *testing.T) {
	ts := time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", DateStamp(ts))
}
