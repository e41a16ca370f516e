// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

// ledgerline-console is a terminal dashboard for the Ledgerline
// banking platform: accounts, users, transactions, the settled
// ledger, and a volume overview, scoped to either the sandbox or the
// production environment.
//
// Run with no arguments to open the dashboard. A durable session from
// a previous run is restored when still valid; otherwise the console
// lands on the sign-in form. Three argument modes run without the
// TUI:
//
//	ledgerline-console login     authenticate and save a session
//	ledgerline-console register  create a business account
//	ledgerline-console logout    end the saved session
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/dashboard"
	"github.com/ledgerline/console/environment"
	"github.com/ledgerline/console/lib/clock"
	"github.com/ledgerline/console/lib/config"
	"github.com/ledgerline/console/lib/storage"
	"github.com/ledgerline/console/lib/version"
	"github.com/ledgerline/console/profile"
	"github.com/ledgerline/console/session"
	"github.com/ledgerline/console/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	var configPath string
	var emailFlag string
	var passwordFile string

	flagSet := pflag.NewFlagSet("ledgerline-console", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config YAML (default: $LEDGERLINE_CONFIG, else built-in defaults)")
	flagSet.StringVar(&emailFlag, "email", "", "email for the login and register modes (skips the prompt)")
	flagSet.StringVar(&passwordFile, "password-file", "", "path to a file containing the password, or - to prompt interactively (default: prompt)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("ledgerline-console " + version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	timeout, err := cfg.API.RequestTimeout()
	if err != nil {
		return err
	}
	client, err := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	durable := storage.New(cfg.StateDir)
	envStore := environment.NewStore(durable, logger)
	sessionStore := session.NewStore(durable, logger)
	controller := session.NewController(sessionStore, envStore, clock.Real(), logger)

	args := flagSet.Args()
	mode := ""
	if len(args) > 0 {
		mode = args[0]
	}

	switch mode {
	case "login":
		return runLogin(client, controller, emailFlag, passwordFile, false)
	case "register":
		return runLogin(client, controller, emailFlag, passwordFile, true)
	case "logout":
		return runLogout(controller)
	case "":
		return runDashboard(client, controller, envStore, logger)
	default:
		return fmt.Errorf("unknown mode %q (expected login, register, logout, or no argument)", mode)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// buildLogger writes JSON records to the configured log file. With no
// file configured, text records go to stderr at warn level and above
// so the TUI is not scribbled over.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		return slog.New(handler), func() {}, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { file.Close() }, nil
}

// runLogin authenticates on the command line and saves the session
// for subsequent dashboard runs.
func runLogin(client *api.Client, controller *session.Controller, email, passwordFile string, register bool) error {
	ctx := context.Background()

	if email == "" {
		fmt.Fprint(os.Stderr, "Email: ")
		if _, err := fmt.Scanln(&email); err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
	}

	password, err := readPassword(passwordFile)
	if err != nil {
		return err
	}

	var auth *api.AuthResponse
	if register {
		auth, err = client.Register(ctx, api.RegisterRequest{Email: email, Password: password})
	} else {
		auth, err = client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	}
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	if err := controller.HandleAuthSuccess(auth); err != nil {
		return err
	}

	record := controller.Session()
	fmt.Fprintf(os.Stderr, "Logged in. Session valid until %s.\n", record.ExpiresAt().Local().Format("2006-01-02 15:04"))
	return nil
}

// readPassword reads the password from the given file, or prompts on
// the terminal when the path is empty or "-".
func readPassword(passwordFile string) (string, error) {
	if passwordFile == "" || passwordFile == "-" {
		return promptPassword()
	}
	contents, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("reading password file: %w", err)
	}
	return strings.TrimSpace(string(contents)), nil
}

// promptPassword reads a password from the terminal with echo
// disabled.
func promptPassword() (string, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", fmt.Errorf("no terminal available for the password prompt")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(string(passwordBytes)), nil
}

// runLogout ends the saved session, if one restores.
func runLogout(controller *session.Controller) error {
	if controller.Restore() != session.Active {
		fmt.Fprintln(os.Stderr, "No active session.")
		return nil
	}
	controller.Logout()
	fmt.Fprintln(os.Stderr, "Logged out.")
	return nil
}

// runDashboard wires the views and runs the TUI until the operator
// quits.
func runDashboard(client *api.Client, controller *session.Controller, envStore *environment.Store, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := profile.NewSyncer(client, controller, envStore, logger)
	go syncer.Run(ctx)

	views := dashboard.Views{
		Overview: dashboard.NewOverview(controller, client, clock.Real(), logger),
		Accounts: view.NewList("accounts", controller,
			func(ctx context.Context, auth api.AuthContext, pageNumber int) ([]api.Account, api.PageMeta, error) {
				return client.ListAccounts(ctx, auth, pageNumber, api.DefaultPerPage)
			}, logger),
		Users: view.NewList("users", controller,
			func(ctx context.Context, auth api.AuthContext, pageNumber int) ([]api.User, api.PageMeta, error) {
				return client.ListUsers(ctx, auth, pageNumber, api.DefaultPerPage)
			}, logger),
		Transactions: view.NewList("transactions", controller,
			func(ctx context.Context, auth api.AuthContext, pageNumber int) ([]api.Transaction, api.PageMeta, error) {
				return client.ListTransactions(ctx, auth, pageNumber, api.DefaultPerPage)
			}, logger),
		Ledger: view.NewList("ledger", controller,
			func(ctx context.Context, auth api.AuthContext, pageNumber int) ([]api.LedgerEntry, api.PageMeta, error) {
				return client.ListLedgerEntries(ctx, auth, pageNumber, api.DefaultPerPage)
			}, logger),
		AccountDetail: view.NewDetail("account", controller, client.GetAccount, logger),
		AccountActivity: view.NewDetail("account-activity", controller,
			func(ctx context.Context, auth api.AuthContext, accountID string) (*api.AccountActivity, error) {
				transactions, meta, err := client.ListAccountTransactions(ctx, auth, accountID, 1, api.DefaultPerPage)
				if err != nil {
					return nil, err
				}
				return &api.AccountActivity{Transactions: transactions, Meta: meta}, nil
			}, logger),
		TransactionDetail: view.NewDetail("transaction", controller, client.GetTransaction, logger),
	}

	// Restore after the subscriptions exist so the restored event
	// reaches the profile syncer.
	controller.Restore()

	model := dashboard.NewModel(ctx, dashboard.Deps{
		Controller:  controller,
		Environment: envStore,
		Profile:     syncer,
		Client:      client,
		Views:       views,
		Logger:      logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Ledgerline console — terminal dashboard for the Ledgerline platform.

Usage:
  ledgerline-console [flags]            open the dashboard
  ledgerline-console login [--email] [--password-file]    authenticate and save a session
  ledgerline-console register [--email] [--password-file] create a business account
  ledgerline-console logout             end the saved session

Configuration comes from $LEDGERLINE_CONFIG (a YAML file) or --config;
without either, the backend URL is read from $LEDGERLINE_API_URL. A
.env file in the working directory is loaded if present.

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
