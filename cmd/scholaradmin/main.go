package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/config"
	"github.com/jask/scholaradmin/internal/journal"
	"github.com/jask/scholaradmin/internal/logging"
	"github.com/jask/scholaradmin/internal/secrets"
	"github.com/jask/scholaradmin/internal/tui"
)

const usage = `usage:
  scholaradmin                 run the admin console
  scholaradmin token set <t>   store the bearer token
  scholaradmin token show      show whether a token is available
  scholaradmin token clear     remove the stored token
  scholaradmin history [n]     print the last n journal entries
  scholaradmin config init     write the current configuration to disk`

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "scholaradmin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return runConsole(ctx, cfg)
	}
	switch args[0] {
	case "token":
		return runToken(cfg, args[1:], out)
	case "history":
		return runHistory(ctx, cfg, args[1:], out)
	case "config":
		if len(args) != 2 || args[1] != "init" {
			return errors.New(usage)
		}
		return config.Save(cfg)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runConsole(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := secrets.DefaultStore()
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}
	creds := secrets.EnvOverride{Env: cfg.Auth.TokenEnv, Next: store}
	client, err := api.New(cfg.API.BaseURL, creds, cfg.Auth.TokenKey,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Logger:     logger.Named("tui"),
		DateFormat: cfg.UI.DateFormat,
		Location:   cfg.Location(),
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal unavailable, continuing without it", zap.String("path", cfg.Journal.Path), zap.Error(err))
	} else {
		defer j.Close()
		opts.Journal = j
	}

	if _, err := creds.Fetch(cfg.Auth.TokenKey); err != nil {
		logger.Warn("no bearer token configured", zap.String("key", cfg.Auth.TokenKey))
	}

	logger.Info("starting console", zap.String("base_url", cfg.API.BaseURL))
	p := tea.NewProgram(tui.New(ctx, client, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

func runToken(cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	store, err := secrets.DefaultStore()
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}
	switch args[0] {
	case "set":
		if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
			return errors.New("token set needs a value")
		}
		if err := store.Put(cfg.Auth.TokenKey, args[1]); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Fprintf(out, "token stored under %q\n", cfg.Auth.TokenKey)
	case "clear":
		if err := store.Delete(cfg.Auth.TokenKey); err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("clear token: %w", err)
		}
		fmt.Fprintln(out, "token cleared")
	case "show":
		if v := strings.TrimSpace(os.Getenv(cfg.Auth.TokenEnv)); v != "" {
			fmt.Fprintf(out, "%s (from $%s)\n", maskToken(v), cfg.Auth.TokenEnv)
			return nil
		}
		v, err := store.Fetch(cfg.Auth.TokenKey)
		if errors.Is(err, secrets.ErrNotFound) {
			fmt.Fprintln(out, "no token")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		fmt.Fprintf(out, "%s (stored)\n", maskToken(v))
	default:
		return fmt.Errorf("unknown token command %q", args[0])
	}
	return nil
}

func runHistory(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("history: invalid count %q", args[0])
		}
		limit = n
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no history")
		return nil
	}
	loc := cfg.Location()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		result := "ok"
		if !e.OK {
			result = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.At.In(loc).Format("2006-01-02 15:04"), e.Kind, e.Subject, e.Detail, result)
	}
	return tw.Flush()
}

// maskToken keeps only a short prefix.
func maskToken(t string) string {
	if len(t) <= 8 {
		return "********"
	}
	return t[:4] + "…" + t[len(t)-2:]
}
