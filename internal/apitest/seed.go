package apitest

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// AddUser creates an account that can sign in with password.
func (s *Server) AddUser(name, email, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := domain.User{ID: uuid.New(), Name: name, Email: email, FavoriteGenres: []domain.Genre{}}
	s.accounts[email] = &account{user: u, passwordHash: hash}
	return u
}

// AddGenre adds a genre to the catalog.
func (s *Server) AddGenre(name string) domain.Genre {
	g := domain.Genre{ID: uuid.New(), Name: name}
	s.mu.Lock()
	s.genres = append(s.genres, g)
	s.mu.Unlock()
	return g
}

// AddVHS adds an available tape with the given stock.
func (s *Server) AddVHS(title string, genre domain.Genre, stock int) domain.VHS {
	v := domain.VHS{
		ID:          uuid.New(),
		Title:       title,
		ReleaseDate: time.Date(1985, time.July, 3, 0, 0, 0, 0, time.UTC),
		Genre:       genre,
		RentalPrice: 2.5,
		StockLevel:  stock,
		Status:      domain.StatusAvailable,
	}
	if stock == 0 {
		v.Status = domain.StatusOutOfStock
	}
	s.mu.Lock()
	s.tapes = append(s.tapes, v)
	s.mu.Unlock()
	return v
}

// AddRental records a rental of v by the user with email. rentedAt orders
// the rental history; returned rentals carry a return date and price.
func (s *Server) AddRental(email string, v domain.VHS, rentedAt time.Time, returned bool) domain.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	rental := domain.Rental{
		ID:         uuid.NewString(),
		VHS:        v,
		User:       s.accounts[email].user,
		RentalDate: rentedAt.UTC(),
		DueDate:    rentedAt.UTC().Add(72 * time.Hour),
	}
	if returned {
		back := rentedAt.UTC().Add(48 * time.Hour)
		price := v.RentalPrice
		rental.ReturnDate = &back
		rental.Price = &price
	}
	s.rentals = append(s.rentals, rental)
	return rental
}

// AddReview records a review of v by the user with email.
func (s *Server) AddReview(email string, v domain.VHS, rating int, comment string) domain.Review {
	review := newReview(email, v, rating, comment)
	s.mu.Lock()
	s.reviews = append(s.reviews, review)
	s.mu.Unlock()
	return review
}

func newReview(email string, v domain.VHS, rating int, comment string) domain.Review {
	return domain.Review{
		ID:      uuid.New(),
		Rating:  float64(rating),
		Comment: comment,
		User:    domain.ReviewAuthor{Email: email},
		VHS: domain.ReviewedTitle{
			ID:          v.ID,
			Title:       v.Title,
			Genre:       v.Genre.Name,
			ReleaseDate: v.ReleaseDate,
		},
	}
}

func (s *Server) genreLocked(id string) (domain.Genre, bool) {
	for _, g := range s.genres {
		if g.ID.String() == id {
			return g, true
		}
	}
	return domain.Genre{}, false
}

func (s *Server) tapeIndexLocked(id string) int {
	for i, v := range s.tapes {
		if v.ID.String() == id {
			return i
		}
	}
	return -1
}

func (s *Server) rentalIndexLocked(id string) int {
	for i, r := range s.rentals {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) reviewIndexLocked(id string) int {
	for i, r := range s.reviews {
		if r.ID.String() == id {
			return i
		}
	}
	return -1
}
