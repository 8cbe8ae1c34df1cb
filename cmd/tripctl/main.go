// Command tripctl runs schema migrations and the one-off data maintenance
// jobs against a tripshare database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Conversly/tripshare/internal/backfill"
	"github.com/Conversly/tripshare/internal/config"
	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/schema"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadToolConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by subcommands. The database is opened on
// first use so commands that fail flag validation never connect.
type app struct {
	cfg     *config.ToolConfig
	verbose bool

	logger *zap.Logger
	db     *loaders.PostgresClient
	schema *schema.Schema
}

func newRootCmd(cfg *config.ToolConfig) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:          "tripctl",
		Short:        "Maintain the tripshare database and photo store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := utils.InitLogger(a.cfg.LogLevel, a.cfg.Debug || a.verbose,
				zap.String("service", "tripctl"))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string (DATABASE_URL)")
	flags.StringVar(&a.cfg.PhotoRoot, "photo-root", cfg.PhotoRoot, "photo storage root (PHOTO_ROOT)")
	flags.StringVar(&a.cfg.SchemaDir, "schema-dir", cfg.SchemaDir, "on-disk migrations instead of the embedded ones (SCHEMA_DIR)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level with a console encoder")

	root.AddCommand(
		newMigrateCmd(a),
		newBackfillCmd(a),
		newVerifyCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) connect(ctx context.Context) (*loaders.PostgresClient, *schema.Schema, error) {
	if a.db != nil {
		return a.db, a.schema, nil
	}
	if a.cfg.DatabaseURL == "" {
		return nil, nil, errors.New("database url is required: set DATABASE_URL or --database-url")
	}
	db, err := loaders.NewPostgresClient(ctx, a.cfg.DatabaseURL, a.cfg.MaxDBConns)
	if err != nil {
		return nil, nil, err
	}
	a.db = db
	a.schema = schema.New(schema.Wrap(db.Pool()), schema.WithRepository(a.cfg.SchemaDir))
	return a.db, a.schema, nil
}

// runner builds a backfill runner. withFiles opens the photo store, which
// creates its root directory.
func (a *app) runner(ctx context.Context, withFiles bool) (*backfill.Runner, error) {
	db, sch, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	var files *storage.PhotoStore
	if withFiles {
		if files, err = storage.NewPhotoStore(a.cfg.PhotoRoot); err != nil {
			return nil, err
		}
	}
	return backfill.NewRunner(db, sch, files), nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
