package domain

import "github.com/google/uuid"

// Genre is a catalog category.
type Genre struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateGenreRequest is the payload for POST /genres.
type CreateGenreRequest struct {
	Name string `json:"name"`
}
