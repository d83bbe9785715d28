package domain

import (
	"testing"
)

func TestApplyDebit(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		qty      int
		want     int
	}{
		{"partial", 5, 3, 2},
		{"exact", 5, 5, 0},
		{"oversell clamps to zero", 5, 8, 0},
		{"zero stock", 0, 1, 0},
		{"zero debit", 5, 0, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{SKU: "SKU-1", Quantity: tc.quantity}
			p.ApplyDebit(tc.qty)
			if p.Quantity != tc.want {
				t.Errorf("Quantity = %d, want %d", p.Quantity, tc.want)
			}
		})
	}
}

func TestCanFulfill(t *testing.T) {
	p := Product{SKU: "SKU-1", Quantity: 5}

	if !p.CanFulfill(5) {
		t.Error("exact quantity should be fulfillable")
	}
	if !p.CanFulfill(1) {
		t.Error("smaller quantity should be fulfillable")
	}
	if p.CanFulfill(6) {
		t.Error("quantity above stock should not be fulfillable")
	}
}
