// Command aquactl is a terminal front end for the water-delivery ordering
// backend: account/session management, catalog browsing, cart operations, and
// the admin order panel.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/config"
	"aquaflow-client/internal/guard"
	"aquaflow-client/internal/service/auth"
	"aquaflow-client/internal/service/cart"
	"aquaflow-client/internal/service/catalog"
	"aquaflow-client/internal/service/orders"
	"aquaflow-client/internal/session"
	"aquaflow-client/internal/storage"
	"github.com/spf13/cobra"
)

// app bundles the wired client layer for the commands.
type app struct {
	cfg       config.Config
	store     storage.Store
	creds     *session.Credentials
	validator *session.Validator
	guard     *guard.Guard
	auth      *auth.Service
	cart      *cart.Synchronizer
	orders    *orders.Controller
	catalog   *catalog.Service
	logger    *slog.Logger
}

func newApp(configPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := storage.NewFile(cfg.StatePath)
	if err != nil {
		return nil, err
	}
	creds := session.NewCredentials(store)

	client := api.New(cfg.BaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithTokenSource(creds),
		api.WithUnauthorizedHook(creds.Evict),
		api.WithRetryConfig(api.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Backoff:     cfg.RetryBackoff,
		}),
		api.WithLogger(logger),
	)

	validator := session.NewValidator(client, creds, logger)

	return &app{
		cfg:       cfg,
		store:     store,
		creds:     creds,
		validator: validator,
		guard:     guard.New(validator, creds, guard.DefaultRoutes()),
		auth:      auth.New(client, creds, store, logger),
		cart:      cart.New(client, creds, cart.WithSnapshots(store), cart.WithLogger(logger)),
		orders:    orders.New(client, orders.WithLogger(logger)),
		catalog:   catalog.New(client, cfg.AssetHost),
		logger:    logger,
	}, nil
}

func main() {
	var (
		configPath string
		verbose    bool
		a          *app
	)

	root := &cobra.Command{
		Use:           "aquactl",
		Short:         "Water-delivery ordering client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(configPath, verbose)
			return err
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
		newAddressesCmd(&a),
		newCatalogCmd(&a),
		newCartCmd(&a),
		newOrdersCmd(&a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
