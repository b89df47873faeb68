package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/cartflow/internal/activity"
	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/config"
	"github.com/roach88/cartflow/internal/engine"
	"github.com/roach88/cartflow/internal/httpapi"
	"github.com/roach88/cartflow/internal/store"
)

// ServeOptions holds flags for the serve command. Flags override the
// corresponding CARTFLOW_* environment settings.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Catalog  string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cart engine and its HTTP API",
		Long: `Start the cart engine and serve the HTTP API.

Configuration comes from CARTFLOW_* environment variables (a .env file in the
working directory is loaded when present); flags override the environment.

Example:
  cartflow serve
  cartflow serve --addr :9090 --db /tmp/carts.db --catalog ./menu.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal database")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to YAML product catalog")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}
	cfg := config.Load()
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if opts.Catalog != "" {
		cfg.CatalogPath = opts.Catalog
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		var err error
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
		slog.Info("catalog loaded", "path", cfg.CatalogPath, "products", cat.Len())
	}

	var journal store.Journal = store.NewMemory()
	if cfg.DatabasePath != "" {
		slog.Info("opening journal database", "path", cfg.DatabasePath)
		sqlite, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		journal = sqlite
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	eng := engine.New(engine.Config{
		Catalog: cat,
		Journal: journal,
		Timeouts: engine.Timeouts{
			Reminder:      cfg.ReminderTimeout,
			Cancel:        cfg.CancelTimeout,
			MaxProcessing: cfg.MaxProcessingTimeout,
		},
		Retry: activity.RetryPolicy{
			MaxAttempts:     cfg.CheckoutAttempts,
			InitialInterval: cfg.CheckoutRetryInterval,
			AttemptTimeout:  cfg.CheckoutTimeout,
		},
		AllowEditsDuringCheckout: cfg.AllowEditsDuringCheckout,
		AllowNonPositiveQuantity: cfg.AllowNonPositiveQuantity,
		MergeDuplicateLines:      cfg.MergeDuplicateLines,
	})
	defer eng.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(eng, cat).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http api listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
