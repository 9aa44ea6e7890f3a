package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a rating left on a VHS after a rental.
type Review struct {
	ID      uuid.UUID     `json:"id"`
	Rating  float64       `json:"rating"`
	Comment string        `json:"comment,omitempty"`
	User    ReviewAuthor  `json:"user"`
	VHS     ReviewedTitle `json:"vhs"`
}

// ReviewAuthor is the user summary embedded in a review.
type ReviewAuthor struct {
	Email string `json:"email"`
}

// ReviewedTitle is the VHS summary embedded in a review.
type ReviewedTitle struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	ReleaseDate time.Time `json:"releaseDate"`
}

// CreateReviewRequest is the payload for POST /reviews.
type CreateReviewRequest struct {
	RentalID string `json:"rentalId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// UpdateReviewRequest is the payload for PUT /reviews/{id}.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}
