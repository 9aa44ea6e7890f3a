package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedURL is returned for links that are not absolute http(s) URLs.
var ErrUnsupportedURL = errors.New("only http and https links can be opened")

// Open opens rawURL in the user's default browser. Cover and help links come
// from the API and config, so anything but http(s) is refused.
func Open(rawURL string) error {
	if err := check(rawURL); err != nil {
		return err
	}
	name, args, err := opener(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("browser: run %s: %w", name, err)
	}
	return nil
}

func check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser: %q: %w", rawURL, ErrUnsupportedURL)
	}
	return nil
}

// opener returns the platform command that hands a URL to the desktop.
func opener(goos, rawURL string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("browser: unsupported OS %s", goos)
	}
}
