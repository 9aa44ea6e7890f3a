package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"

	"github.com/vhsrental/vhsrental/internal/config"
	"github.com/vhsrental/vhsrental/internal/logging"
	"github.com/vhsrental/vhsrental/internal/tui"
	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
	"github.com/vhsrental/vhsrental/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// envConfig points at an alternative config file.
const envConfig = "VHSRENTAL_CONFIG"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Println("vhsrental " + version)
		return nil
	case "help", "--help", "-h":
		printHelp(os.Stdout)
		return nil
	case "", "login", "register", "logout", "whoami":
	default:
		return fmt.Errorf("unknown command %q, see: vhsrental help", cmd)
	}

	cfg, err := config.Load(os.Getenv(envConfig))
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath, Console: cfg.LogConsole})
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort close

	c, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug().Str("command", cmd).Str("api_url", cfg.APIURL).Str("version", version).Msg("start")

	ctx := context.Background()
	switch cmd {
	case "login":
		return runLogin(ctx, c, os.Stdin, os.Stdout)
	case "register":
		return runRegister(ctx, c, os.Stdin, os.Stdout)
	case "logout":
		return runLogout(ctx, c, os.Stdout)
	case "whoami":
		return runWhoami(ctx, c, os.Stdout)
	}

	app := tui.NewApp(c)
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newClient(cfg config.Config, logger zerolog.Logger) (*client.Client, error) {
	storage, err := session.OpenFile(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	store := session.New(storage, session.WithLogger(logger))
	return client.New(cfg.APIURL, store,
		client.WithLogger(logger),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRefreshTimeout(cfg.RefreshTimeout),
	), nil
}

var errMissingInput = errors.New("all fields are required")

func runLogin(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	email, err := prompt(r, out, "Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword(r, in, out, "Password: ")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return errMissingInput
	}

	user, err := c.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", client.Normalize(err))
	}
	printWelcome(out, user.Name)
	return nil
}

func runRegister(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	name, err := prompt(r, out, "Name: ")
	if err != nil {
		return err
	}
	email, err := prompt(r, out, "Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword(r, in, out, "Password: ")
	if err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return errMissingInput
	}

	user, err := c.Register(ctx, domain.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("register: %w", client.Normalize(err))
	}
	printWelcome(out, user.Name)
	return nil
}

func runLogout(ctx context.Context, c *client.Client, out io.Writer) error {
	if !c.Session().Snapshot().IsAuthenticated {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err := c.Logout(ctx); err != nil {
		// The local session is gone either way.
		fmt.Fprintf(out, "Signed out locally. The server could not be reached: %s\n", client.Normalize(err).Summary())
		return nil
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

func runWhoami(ctx context.Context, c *client.Client, out io.Writer) error {
	store := c.Session()
	if !store.Snapshot().IsAuthenticated {
		fmt.Fprintln(out, "Not signed in. Run: vhsrental login")
		return nil
	}
	me, err := c.GetMe(ctx)
	if err != nil {
		if errors.Is(err, client.ErrRefreshFailed) {
			fmt.Fprintln(out, "Your session has expired. Run: vhsrental login")
			return nil
		}
		return fmt.Errorf("whoami: %w", client.Normalize(err))
	}
	if err := store.SetUser(me); err != nil {
		return fmt.Errorf("whoami: %w", err)
	}

	fmt.Fprintf(out, "%s <%s>\n", me.Name, me.Email)
	if len(me.FavoriteGenres) > 0 {
		names := make([]string, 0, len(me.FavoriteGenres))
		for _, g := range me.FavoriteGenres {
			names = append(names, g.Name)
		}
		fmt.Fprintf(out, "Favorite genres: %s\n", strings.Join(names, ", "))
	}
	if exp := store.Snapshot().TokenExpiry(); !exp.IsZero() {
		fmt.Fprintf(out, "Access token expires %s\n", exp.Local().Format(time.DateTime))
	}
	return nil
}

// prompt writes label and reads one trimmed line.
func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errMissingInput
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line for piped input.
func readPassword(r *bufio.Reader, in io.Reader, out io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(out, label)
		pw, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(pw)), nil
	}
	return prompt(r, out, label)
}
