package domain

import "time"

// Rental is a single tape rented by a user.
type Rental struct {
	ID         string     `json:"id"`
	VHS        VHS        `json:"vhs"`
	User       User       `json:"user"`
	RentalDate time.Time  `json:"rentalDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Price      *float64   `json:"price,omitempty"`
}

// Returned reports whether the tape has been brought back.
func (r Rental) Returned() bool {
	return r.ReturnDate != nil
}

// Overdue reports whether the rental is still out past its due date.
func (r Rental) Overdue(now time.Time) bool {
	return !r.Returned() && now.After(r.DueDate)
}

// CreateRentalRequest is the payload for POST /rentals.
// DueDate must be RFC 3339 in UTC with second precision, e.g. 2023-10-05T14:48:00Z.
type CreateRentalRequest struct {
	VHSID   string `json:"vhsId"`
	DueDate string `json:"dueDate"`
}

// NewCreateRentalRequest formats due in the layout the API validates.
func NewCreateRentalRequest(vhsID string, due time.Time) CreateRentalRequest {
	return CreateRentalRequest{
		VHSID:   vhsID,
		DueDate: due.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z"),
	}
}
