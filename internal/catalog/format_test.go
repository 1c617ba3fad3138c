package catalog

import (
	"testing"

	"github.com/google/uuid"
)

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{99, "$0.99"},
		{100, "$1.00"},
		{123456, "$1,234.56"},
		{123456789, "$1,234,567.89"},
		{-4875, "-$48.75"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{205, "3h 25m"},
		{480, "8h"},
		{-10, "0m"},
	}
	for _, tc := range cases {
		if got := FormatMinutes(tc.minutes); got != tc.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestOrderTotalCents(t *testing.T) {
	order := ManufacturingOrder{Quantity: 20}
	if got := order.TotalCents(18900); got != 378000 {
		t.Fatalf("TotalCents = %d, want 378000", got)
	}
}

func TestBOMComponentCostCents(t *testing.T) {
	bom := BOM{Lines: []BOMLine{
		{ProductID: fixtureID("SKU-1001"), Quantity: 2},
		{ProductID: fixtureID("SKU-1003"), Quantity: 16},
		{ProductID: fixtureID("missing"), Quantity: 99},
	}}
	prices := map[uuid.UUID]int64{
		fixtureID("SKU-1001"): 12500,
		fixtureID("SKU-1003"): 35,
	}

	// 2*12500 + 16*35; the line with no known price contributes nothing.
	if got := bom.ComponentCostCents(prices); got != 25560 {
		t.Fatalf("ComponentCostCents = %d, want 25560", got)
	}
}
