package domain

import (
	"time"

	"github.com/google/uuid"
)

// VHSStatus is the inventory state of a tape.
type VHSStatus string

const (
	StatusAvailable  VHSStatus = "AVAILABLE"
	StatusOutOfStock VHSStatus = "OUT_OF_STOCK"
	StatusDamaged    VHSStatus = "DAMAGED"
	StatusLost       VHSStatus = "LOST"
)

// Statuses lists every status the API accepts, in display order.
var Statuses = []VHSStatus{StatusAvailable, StatusOutOfStock, StatusDamaged, StatusLost}

// ValidStatus returns true if s is a known VHS status.
func ValidStatus(s VHSStatus) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// VHS is a catalog entry.
type VHS struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"releaseDate"`
	Genre       Genre     `json:"genre"`
	RentalPrice float64   `json:"rentalPrice"`
	StockLevel  int       `json:"stockLevel"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      VHSStatus `json:"status"`
}

// Rentable reports whether the tape can be rented right now.
func (v VHS) Rentable() bool {
	return v.Status == StatusAvailable && v.StockLevel > 0
}

// CreateVHSRequest holds the multipart fields for POST /vhs.
// Image is optional; ImageName is used as the uploaded file name.
type CreateVHSRequest struct {
	Title       string
	ReleaseDate string
	GenreID     string
	RentalPrice float64
	StockLevel  int
	Status      VHSStatus
	Image       []byte
	ImageName   string
}
