// Package vault parses vault service flags and launches the HTTP API.
package vault

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/louisbranch/crowdvault/internal/api/web"
	"github.com/louisbranch/crowdvault/internal/auth/credential"
	fundingservice "github.com/louisbranch/crowdvault/internal/funding/service"
	governanceservice "github.com/louisbranch/crowdvault/internal/governance/service"
	entrypoint "github.com/louisbranch/crowdvault/internal/platform/cmd"
	"github.com/louisbranch/crowdvault/internal/storage/bbolt"
	"github.com/louisbranch/crowdvault/internal/storage/sqlite"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

const shutdownTimeout = 10 * time.Second

// Config holds vault command configuration.
type Config struct {
	Addr        string `env:"CROWDVAULT_ADDR" envDefault:":8080"`
	DBPath      string `env:"CROWDVAULT_DB_PATH" envDefault:"data/crowdvault.db"`
	AssetDBPath string `env:"CROWDVAULT_ASSET_DB_PATH" envDefault:"data/crowdvault-assets.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database")
	fs.StringVar(&cfg.AssetDBPath, "asset-db-path", cfg.AssetDBPath, "path to the asset registry database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the vault HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceVault, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	creds, err := credential.LoadConfigFromEnv(time.Now)
	if err != nil {
		return fmt.Errorf("load credential config: %w", err)
	}

	if err := ensureDir(cfg.DBPath); err != nil {
		return err
	}
	if err := ensureDir(cfg.AssetDBPath); err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close sqlite store: %v", err)
		}
	}()

	assets, err := bbolt.Open(cfg.AssetDBPath)
	if err != nil {
		return fmt.Errorf("open asset store: %w", err)
	}
	defer func() {
		if err := assets.Close(); err != nil {
			log.Printf("close asset store: %v", err)
		}
	}()

	ledger := treasury.NewMemoryLedger()

	funding, err := fundingservice.New(fundingservice.Config{
		Store:  store,
		Assets: assets,
		Ledger: ledger,
	})
	if err != nil {
		return fmt.Errorf("build funding service: %w", err)
	}
	governance, err := governanceservice.New(governanceservice.Config{
		Store:  store,
		Assets: assets,
	})
	if err != nil {
		return fmt.Errorf("build governance service: %w", err)
	}

	handler, err := web.NewHandler(funding, governance, creds)
	if err != nil {
		return fmt.Errorf("build api handler: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return nil
}
