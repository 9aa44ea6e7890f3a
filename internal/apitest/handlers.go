package apitest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

type ctxKey struct{}

func withEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKey{}, email)
}

func emailFrom(r *http.Request) string {
	email, _ := r.Context().Value(ctxKey{}).(string)
	return email
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "success",
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"data":      data,
	})
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":      "about:blank",
		"title":     title,
		"status":    status,
		"detail":    detail,
		"instance":  r.URL.Path,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "Failed to read request")
		return false
	}
	return true
}

func paginate[T any](r *http.Request, items []T) domain.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}
	total := len(items)
	start := min(page*size, total)
	end := min(start+size, total)
	content := append([]T{}, items[start:end]...)
	pages := (total + size - 1) / size
	return domain.Page[T]{
		Content:          content,
		TotalElements:    int64(total),
		TotalPages:       pages,
		Number:           page,
		Size:             size,
		NumberOfElements: len(content),
		First:            page == 0,
		Last:             page >= pages-1,
		Empty:            len(content) == 0,
	}
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     RefreshCookiePath,
		HttpOnly: true,
		MaxAge:   7 * 24 * 60 * 60,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		s.mu.Unlock()
		writeProblem(w, r, http.StatusUnauthorized, "Authentication error", "Bad credentials")
		return
	}
	access := s.issueAccessTokenLocked(req.Email)
	refresh := s.issueRefreshTokenLocked(req.Email)
	s.mu.Unlock()

	s.setRefreshCookie(w, refresh)
	writeData(w, http.StatusOK, "Login successful", domain.AuthResponse{AccessToken: access, TokenType: "Bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "email: must not be blank")
		return
	}
	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeProblem(w, r, http.StatusConflict, "Resource Already Exists", "User with email "+req.Email+" already exists")
		return
	}
	s.addUserLocked(req.Name, req.Email, req.Password)
	access := s.issueAccessTokenLocked(req.Email)
	refresh := s.issueRefreshTokenLocked(req.Email)
	s.mu.Unlock()

	s.setRefreshCookie(w, refresh)
	writeData(w, http.StatusCreated, "Registration successful", domain.AuthResponse{AccessToken: access, TokenType: "Bearer"})
}

func (s *Server) handleAccessToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.refreshCalls++
	delay := s.refreshDelay
	fails := s.refreshFails
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fails {
		writeProblem(w, r, http.StatusUnauthorized, "Authentication error", "Refresh token expired")
		return
	}

	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "Required cookie 'refresh_token' is not present.")
		return
	}
	s.mu.Lock()
	email, ok := s.refreshTokens[cookie.Value]
	var access string
	if ok {
		access = s.issueAccessTokenLocked(email)
	}
	s.mu.Unlock()
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "Authentication error", "Invalid refresh token")
		return
	}
	writeData(w, http.StatusOK, "Access token generated", domain.AuthResponse{AccessToken: access, TokenType: "Bearer"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		s.mu.Lock()
		delete(s.refreshTokens, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Path: RefreshCookiePath, MaxAge: -1})
	writeData(w, http.StatusOK, "Logout successful", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acct, ok := s.accounts[emailFrom(r)]
	var u domain.User
	if ok {
		u = acct.user
	}
	s.mu.Unlock()
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "User not found")
		return
	}
	writeData(w, http.StatusOK, "User retrieved", u)
}

func (s *Server) handleFavoriteGenres(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateFavoriteGenresRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[emailFrom(r)]
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "User not found")
		return
	}
	favorites := make([]domain.Genre, 0, len(req.FavoriteGenres))
	for _, id := range req.FavoriteGenres {
		g, found := s.genreLocked(id)
		if !found {
			writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Genre with id "+id+" not found")
			return
		}
		favorites = append(favorites, g)
	}
	acct.user.FavoriteGenres = favorites
	writeData(w, http.StatusOK, "Favorite genres updated", acct.user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]domain.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.user)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	writeData(w, http.StatusOK, "Users retrieved", paginate(r, users))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID.String() == id {
			writeData(w, http.StatusOK, "User retrieved", a.user)
			return
		}
	}
	writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "User with id "+id+" not found")
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	genres := append([]domain.Genre(nil), s.genres...)
	s.mu.Unlock()
	writeData(w, http.StatusOK, "Genres retrieved", paginate(r, genres))
}

func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	g, ok := s.genreLocked(id)
	s.mu.Unlock()
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Genre with id "+id+" not found")
		return
	}
	writeData(w, http.StatusOK, "Genre retrieved", g)
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGenreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "name: must not be blank")
		return
	}
	writeData(w, http.StatusCreated, "Genre created", s.AddGenre(req.Name))
}

func (s *Server) handleListVHS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tapes := append([]domain.VHS(nil), s.tapes...)
	s.mu.Unlock()
	writeData(w, http.StatusOK, "VHS retrieved", paginate(r, tapes))
}

func (s *Server) handleGetVHS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	i := s.tapeIndexLocked(id)
	var v domain.VHS
	if i >= 0 {
		v = s.tapes[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "VHS with id "+id+" not found")
		return
	}
	writeData(w, http.StatusOK, "VHS retrieved", v)
}

func (s *Server) handleCreateVHS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "Expected multipart form")
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("rentalPrice"), 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "rentalPrice: must be a number")
		return
	}
	stock, err := strconv.Atoi(r.FormValue("stockLevel"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "stockLevel: must be an integer")
		return
	}
	released, err := time.Parse(time.RFC3339, r.FormValue("releaseDate"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "releaseDate: invalid date")
		return
	}

	s.mu.Lock()
	g, ok := s.genreLocked(r.FormValue("genreId"))
	s.mu.Unlock()
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Genre not found")
		return
	}

	v := domain.VHS{
		ID:          uuid.New(),
		Title:       r.FormValue("title"),
		ReleaseDate: released,
		Genre:       g,
		RentalPrice: price,
		StockLevel:  stock,
		Status:      domain.VHSStatus(r.FormValue("status")),
	}

	var image []byte
	if file, header, err := r.FormFile("image"); err == nil {
		image, _ = io.ReadAll(file)
		_ = file.Close()
		v.ImageURL = "/uploads/" + v.ID.String() + "/" + header.Filename
	}

	s.mu.Lock()
	s.tapes = append(s.tapes, v)
	if image != nil {
		s.uploads[v.ID] = image
	}
	s.mu.Unlock()
	writeData(w, http.StatusCreated, "VHS created", v)
}

func (s *Server) handleListRentals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rentals := append([]domain.Rental(nil), s.rentals...)
	s.mu.Unlock()
	if r.URL.Query().Get("sort") == "rentalDate,desc" {
		sort.SliceStable(rentals, func(i, j int) bool { return rentals[i].RentalDate.After(rentals[j].RentalDate) })
	}
	writeData(w, http.StatusOK, "Rentals retrieved", paginate(r, rentals))
}

func (s *Server) handleGetRental(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	i := s.rentalIndexLocked(id)
	var rental domain.Rental
	if i >= 0 {
		rental = s.rentals[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Rental with id "+id+" not found")
		return
	}
	writeData(w, http.StatusOK, "Rental retrieved", rental)
}

func (s *Server) handleCreateRental(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRentalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	due, err := time.Parse("2006-01-02T15:04:05Z", req.DueDate)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "dueDate: invalid format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tapeIndexLocked(req.VHSID)
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "VHS with id "+req.VHSID+" not found")
		return
	}
	if !s.tapes[i].Rentable() {
		writeProblem(w, r, http.StatusBadRequest, "Invalid Operation", "VHS is not available for rental")
		return
	}
	s.tapes[i].StockLevel--
	if s.tapes[i].StockLevel == 0 {
		s.tapes[i].Status = domain.StatusOutOfStock
	}
	rental := domain.Rental{
		ID:         uuid.NewString(),
		VHS:        s.tapes[i],
		User:       s.accounts[emailFrom(r)].user,
		RentalDate: time.Now().UTC().Truncate(time.Second),
		DueDate:    due,
	}
	s.rentals = append(s.rentals, rental)
	writeData(w, http.StatusCreated, "Rental created", rental)
}

func (s *Server) handleFinishRental(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.rentalIndexLocked(id)
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Rental with id "+id+" not found")
		return
	}
	if s.rentals[i].User.Email != emailFrom(r) {
		writeProblem(w, r, http.StatusForbidden, "Access Denied", "You do not have permission to access this resource")
		return
	}
	if s.rentals[i].Returned() {
		writeProblem(w, r, http.StatusBadRequest, "Invalid Operation", "Rental already finished")
		return
	}
	now := time.Now().UTC().Truncate(time.Second)
	price := s.rentals[i].VHS.RentalPrice
	s.rentals[i].ReturnDate = &now
	s.rentals[i].Price = &price
	if t := s.tapeIndexLocked(s.rentals[i].VHS.ID.String()); t >= 0 {
		s.tapes[t].StockLevel++
		s.tapes[t].Status = domain.StatusAvailable
	}
	writeData(w, http.StatusOK, "Rental finished", s.rentals[i])
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeProblem(w, r, http.StatusBadRequest, "Validation error", "rating: must be between 1 and 5")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.rentalIndexLocked(req.RentalID)
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Rental with id "+req.RentalID+" not found")
		return
	}
	rental := s.rentals[i]
	if !rental.Returned() {
		writeProblem(w, r, http.StatusBadRequest, "Rental not returned", "You can only review a VHS after returning it")
		return
	}
	review := newReview(emailFrom(r), rental.VHS, req.Rating, req.Comment)
	s.reviews = append(s.reviews, review)
	writeData(w, http.StatusCreated, "Review created", review)
}

func (s *Server) handleReviewsByVHS(w http.ResponseWriter, r *http.Request) {
	vhsID := mux.Vars(r)["vhsId"]
	s.mu.Lock()
	var reviews []domain.Review
	for _, rev := range s.reviews {
		if rev.VHS.ID.String() == vhsID {
			reviews = append(reviews, rev)
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, "Reviews retrieved", paginate(r, reviews))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	i := s.reviewIndexLocked(id)
	var rev domain.Review
	if i >= 0 {
		rev = s.reviews[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Review with id "+id+" not found")
		return
	}
	writeData(w, http.StatusOK, "Review retrieved", rev)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reviewIndexLocked(id)
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Review with id "+id+" not found")
		return
	}
	if s.reviews[i].User.Email != emailFrom(r) {
		writeProblem(w, r, http.StatusForbidden, "Forbidden operation", "You can only edit your own reviews")
		return
	}
	s.reviews[i].Rating = float64(req.Rating)
	s.reviews[i].Comment = req.Comment
	writeData(w, http.StatusOK, "Review updated", nil)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reviewIndexLocked(id)
	if i < 0 {
		writeProblem(w, r, http.StatusNotFound, "Resource Not Found", "Review with id "+id+" not found")
		return
	}
	if s.reviews[i].User.Email != emailFrom(r) {
		writeProblem(w, r, http.StatusForbidden, "Forbidden operation", "You can only delete your own reviews")
		return
	}
	s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
	writeData(w, http.StatusOK, "Review deleted", nil)
}
