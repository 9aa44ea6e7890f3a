// Package apitest runs an in-process fake of the VHS rental API for tests.
//
// It speaks the same wire format as the real service: success payloads are
// wrapped in the response envelope, errors are problem-detail objects, access
// tokens are short-lived JWTs and the refresh token travels in an HTTP-only
// cookie scoped to the auth path.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// Prefix is the mount point of the API on the fake server.
const Prefix = "/api"

// RefreshCookiePath is where the server scopes the refresh cookie. It does
// not sit under Prefix, like the deployed service.
const RefreshCookiePath = "/api/v1/auth"

var signingKey = []byte("apitest-signing-key")

// Recorded is one request as the server saw it. Path has Prefix stripped.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	user         domain.User
	passwordHash []byte
}

// Server is a fake API. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by email
	accessTokens  map[string]string   // token -> email
	refreshTokens map[string]string   // token -> email
	genres        []domain.Genre
	tapes         []domain.VHS
	rentals       []domain.Rental
	reviews       []domain.Review
	uploads       map[uuid.UUID][]byte
	requests      []Recorded
	failures      map[string]int

	refreshCalls  int
	refreshDelay  time.Duration
	refreshFails  bool
	tokenTTL      time.Duration
	tokenSequence int
}

// New starts a fake API and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:      make(map[string]*account),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		uploads:       make(map[uuid.UUID][]byte),
		failures:      make(map[string]int),
		tokenTTL:      15 * time.Minute,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to client.New.
func (s *Server) BaseURL() string {
	return s.URL + Prefix
}

func (s *Server) router() *mux.Router {
	root := mux.NewRouter()
	r := root.PathPrefix(Prefix).Subrouter()
	r.Use(s.record)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/access-token", s.handleAccessToken).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/genres", s.handleListGenres).Methods(http.MethodGet)
	r.HandleFunc("/genres/{id}", s.handleGetGenre).Methods(http.MethodGet)
	r.HandleFunc("/vhs", s.handleListVHS).Methods(http.MethodGet)
	r.HandleFunc("/vhs/{id}", s.handleGetVHS).Methods(http.MethodGet)
	r.HandleFunc("/reviews/vhs/{vhsId}", s.handleReviewsByVHS).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", s.handleGetReview).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/favorite-genres", s.handleFavoriteGenres).Methods(http.MethodPatch)
	authed.HandleFunc("/genres", s.handleCreateGenre).Methods(http.MethodPost)
	authed.HandleFunc("/vhs", s.handleCreateVHS).Methods(http.MethodPost)
	authed.HandleFunc("/rentals", s.handleListRentals).Methods(http.MethodGet)
	authed.HandleFunc("/rentals", s.handleCreateRental).Methods(http.MethodPost)
	authed.HandleFunc("/rentals/{id}", s.handleGetRental).Methods(http.MethodGet)
	authed.HandleFunc("/rentals/{id}/finish", s.handleFinishRental).Methods(http.MethodPatch)
	authed.HandleFunc("/reviews", s.handleCreateReview).Methods(http.MethodPost)
	authed.HandleFunc("/reviews/{id}", s.handleUpdateReview).Methods(http.MethodPut)
	authed.HandleFunc("/reviews/{id}", s.handleDeleteReview).Methods(http.MethodDelete)

	// After the authenticated routes so /users/me is not taken for an id.
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	return root
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, Prefix)
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		status, fail := s.failures[path]
		s.mu.Unlock()

		if fail {
			writeProblem(w, r, status, http.StatusText(status), "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeProblem(w, r, http.StatusUnauthorized, "Unauthorized", "Full authentication is required to access this resource")
			return
		}
		s.mu.Lock()
		email, valid := s.accessTokens[token]
		s.mu.Unlock()
		if !valid {
			writeProblem(w, r, http.StatusUnauthorized, "Unauthorized", "JWT expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(withEmail(r.Context(), email)))
	})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the recorded requests for one method and path.
func (s *Server) RequestsTo(method, path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// RefreshCalls counts the requests that reached the access-token endpoint.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// SetRefreshDelay makes the access-token endpoint wait before answering.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	s.refreshDelay = d
	s.mu.Unlock()
}

// SetRefreshFailure makes the access-token endpoint reject every call.
func (s *Server) SetRefreshFailure(fail bool) {
	s.mu.Lock()
	s.refreshFails = fail
	s.mu.Unlock()
}

// SetTokenTTL sets the lifetime written into new access tokens.
func (s *Server) SetTokenTTL(d time.Duration) {
	s.mu.Lock()
	s.tokenTTL = d
	s.mu.Unlock()
}

// ExpireAccessTokens invalidates every access token issued so far, so the
// next authenticated call is answered with 401.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.accessTokens = make(map[string]string)
	s.mu.Unlock()
}

// RevokeRefreshTokens invalidates every refresh cookie issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refreshTokens = make(map[string]string)
	s.mu.Unlock()
}

// Fail answers every request to path (without Prefix) with status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	s.failures[path] = status
	s.mu.Unlock()
}

// IssueAccessToken returns a valid access token for a seeded user.
func (s *Server) IssueAccessToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueAccessTokenLocked(email)
}

// IssueRefreshToken returns a valid refresh cookie value for a seeded user.
func (s *Server) IssueRefreshToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueRefreshTokenLocked(email)
}

func (s *Server) issueAccessTokenLocked(email string) string {
	s.tokenSequence++
	now := time.Now()
	claims := jwtlib.RegisteredClaims{
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.accessTokens[token] = email
	return token
}

func (s *Server) issueRefreshTokenLocked(email string) string {
	token := uuid.NewString()
	s.refreshTokens[token] = email
	return token
}

// Upload returns the cover image uploaded for a tape.
func (s *Server) Upload(id uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[id]
	return data, ok
}
