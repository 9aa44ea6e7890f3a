package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vhsrental/vhsrental/pkg/session"
)

// RefreshCookieName is the HTTP-only cookie the API issues on login.
const RefreshCookieName = "refresh_token"

// PersistentJar is a cookie jar that also keeps the refresh cookie in session
// storage, so a restarted client can still renew its access token.
//
// The API scopes the refresh cookie to its own auth path, which need not
// match the configured base URL. The jar re-scopes it to the auth path under
// the base URL so it reaches the access-token endpoint.
type PersistentJar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	storage session.Storage
	authURL *url.URL
	logger  zerolog.Logger
}

var _ http.CookieJar = (*PersistentJar)(nil)

// NewPersistentJar builds a jar for the API at baseURL, restoring a refresh
// cookie previously saved in storage.
func NewPersistentJar(baseURL string, storage session.Storage, logger zerolog.Logger) *PersistentJar {
	j := &PersistentJar{storage: storage, logger: logger, jar: newCookieJar()}

	u, err := url.Parse(baseURL + "/auth/")
	if err != nil {
		logger.Warn().Err(err).Str("base_url", baseURL).Msg("refresh cookie persistence disabled")
		return j
	}
	j.authURL = u

	value, ok, err := storage.Load(session.KeyRefreshCookie)
	if err != nil {
		logger.Warn().Err(err).Msg("load refresh cookie")
		return j
	}
	if ok && value != "" {
		j.jar.SetCookies(u, []*http.Cookie{j.scoped(value)})
	}
	return j
}

func newCookieJar() *cookiejar.Jar {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New never fails without options
	return jar
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if j.authURL == nil {
		return
	}
	for _, c := range cookies {
		if c.Name != RefreshCookieName {
			continue
		}
		if c.Value == "" || c.MaxAge < 0 {
			j.jar.SetCookies(j.authURL, []*http.Cookie{{Name: RefreshCookieName, Path: j.authURL.Path, MaxAge: -1}})
			if err := j.storage.Delete(session.KeyRefreshCookie); err != nil {
				j.logger.Warn().Err(err).Msg("delete refresh cookie")
			}
			continue
		}
		j.jar.SetCookies(j.authURL, []*http.Cookie{j.scoped(c.Value)})
		if err := j.storage.Save(session.KeyRefreshCookie, c.Value); err != nil {
			j.logger.Warn().Err(err).Msg("persist refresh cookie")
		}
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Reset forgets every cookie, including the stored refresh cookie.
func (j *PersistentJar) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = newCookieJar()
	if err := j.storage.Delete(session.KeyRefreshCookie); err != nil {
		j.logger.Warn().Err(err).Msg("delete refresh cookie")
	}
}

func (j *PersistentJar) scoped(value string) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     j.authURL.Path,
		HttpOnly: true,
	}
}
