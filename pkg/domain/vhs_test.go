package domain

import "testing"

func TestValidStatus(t *testing.T) {
	tests := []struct {
		name   string
		status VHSStatus
		valid  bool
	}{
		{"available", StatusAvailable, true},
		{"out of stock", StatusOutOfStock, true},
		{"damaged", StatusDamaged, true},
		{"lost", StatusLost, true},
		{"empty", "", false},
		{"lowercase", "available", false},
		{"unknown", "RETIRED", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidStatus(tt.status); got != tt.valid {
				t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.valid)
			}
		})
	}
}

func TestVHSRentable(t *testing.T) {
	tests := []struct {
		name string
		vhs  VHS
		want bool
	}{
		{"available with stock", VHS{Status: StatusAvailable, StockLevel: 2}, true},
		{"available no stock", VHS{Status: StatusAvailable, StockLevel: 0}, false},
		{"damaged with stock", VHS{Status: StatusDamaged, StockLevel: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vhs.Rentable(); got != tt.want {
				t.Errorf("Rentable() = %v, want %v", got, tt.want)
			}
		})
	}
}
