// Package session holds the signed-in identity shared by the API client and
// the screens: the current access token and the user profile.
//
// A Store is the single source of truth. Every mutation is written to its
// Storage before the in-memory state changes, so a process restarted right
// after a call observes the new value.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	AccessToken     string
	User            *domain.User
	IsAuthenticated bool
}

// TokenExpiry returns the exp claim of a JWT access token without verifying
// the signature. The zero time is returned for opaque tokens or tokens
// without an expiry.
func (s Snapshot) TokenExpiry() time.Time {
	if s.AccessToken == "" {
		return time.Time{}
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Store is safe for concurrent use.
type Store struct {
	// notifyMu orders subscriber callbacks the same way mutations are ordered.
	notifyMu sync.Mutex

	mu      sync.Mutex
	storage Storage
	token   string
	user    *domain.User
	subs    map[int]func(Snapshot)
	nextSub int

	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage problems found while loading.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a Store and restores the last persisted session from storage.
// A user value that cannot be decoded is dropped; the token is kept.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		subs:    make(map[int]func(Snapshot)),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if tok, ok, err := storage.Load(KeyAccessToken); err != nil {
		s.logger.Warn().Err(err).Msg("load access token")
	} else if ok {
		s.token = tok
	}

	raw, ok, err := storage.Load(KeyUser)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("load user")
	case ok:
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable stored user")
			if err := storage.Delete(KeyUser); err != nil {
				s.logger.Warn().Err(err).Msg("delete unreadable stored user")
			}
		} else {
			s.user = &u
		}
	}
	return s
}

// Snapshot returns the current session. It never blocks on network I/O.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AccessToken is shorthand for Snapshot().AccessToken.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetAccessToken stores the token, or clears it when token is empty.
// On a storage error the in-memory state is left untouched.
func (s *Store) SetAccessToken(token string) error {
	return s.mutate(func() error {
		var err error
		if token == "" {
			err = s.storage.Delete(KeyAccessToken)
		} else {
			err = s.storage.Save(KeyAccessToken, token)
		}
		if err != nil {
			return fmt.Errorf("session.SetAccessToken: %w", err)
		}
		s.token = token
		return nil
	})
}

// SetUser stores the profile, or clears it when u is nil.
func (s *Store) SetUser(u *domain.User) error {
	return s.mutate(func() error {
		if u == nil {
			if err := s.storage.Delete(KeyUser); err != nil {
				return fmt.Errorf("session.SetUser: %w", err)
			}
			s.user = nil
			return nil
		}
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("session.SetUser: marshal: %w", err)
		}
		if err := s.storage.Save(KeyUser, string(data)); err != nil {
			return fmt.Errorf("session.SetUser: %w", err)
		}
		s.user = cloneUser(u)
		return nil
	})
}

// Logout clears the token, the user and the stored refresh cookie in one
// step. The in-memory session is cleared even if storage fails; the storage
// error is returned.
func (s *Store) Logout() error {
	var storageErr error
	err := s.mutate(func() error {
		if err := s.storage.Delete(KeyAccessToken, KeyUser, KeyRefreshCookie); err != nil {
			storageErr = fmt.Errorf("session.Logout: %w", err)
		}
		s.token = ""
		s.user = nil
		return nil
	})
	if err != nil {
		return err
	}
	return storageErr
}

// Subscribe registers fn to be called with the new snapshot after every
// successful mutation. Callbacks run outside the state lock, in mutation
// order, and must not mutate the Store themselves.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Storage returns the backend, for collaborators that persist related values
// such as the refresh cookie.
func (s *Store) Storage() Storage {
	return s.storage
}

func (s *Store) mutate(apply func() error) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if err := apply(); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		AccessToken:     s.token,
		User:            cloneUser(s.user),
		IsAuthenticated: s.token != "",
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.FavoriteGenres != nil {
		c.FavoriteGenres = append([]domain.Genre(nil), u.FavoriteGenres...)
	}
	return &c
}
