package domain

import "github.com/google/uuid"

// User is the authenticated customer profile returned by /users/me.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	FavoriteGenres []Genre   `json:"favoriteGenres,omitempty"`
}

// HasFavorite reports whether the genre is one of the user's favorites.
func (u User) HasFavorite(id uuid.UUID) bool {
	for _, g := range u.FavoriteGenres {
		if g.ID == id {
			return true
		}
	}
	return false
}

// FavoriteGenreIDs returns the IDs of the favorite genres in the order stored.
func (u User) FavoriteGenreIDs() []string {
	ids := make([]string, 0, len(u.FavoriteGenres))
	for _, g := range u.FavoriteGenres {
		ids = append(ids, g.ID.String())
	}
	return ids
}

// UpdateFavoriteGenresRequest is the payload for PATCH /users/me/favorite-genres.
type UpdateFavoriteGenresRequest struct {
	FavoriteGenres []string `json:"favoriteGenres"`
}
