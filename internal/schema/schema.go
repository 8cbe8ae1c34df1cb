package schema

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Conversly/tripshare/internal/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations
var embedded embed.FS

// advisoryLockKey serialises concurrent upgrades from several instances.
const advisoryLockKey = 7_302_114

// Queryer is the subset of pgxpool.Pool and pgx.Tx the schema needs.
type Queryer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Pool interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
}

type pgxPool struct {
	*pgxpool.Pool
}

func (p pgxPool) Begin(ctx context.Context) (Tx, error) {
	return p.Pool.Begin(ctx)
}

// Wrap adapts a pgx pool to Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return pgxPool{Pool: p}
}

type Schema struct {
	pool Pool
	repo fs.FS
	// dir is the on-disk repository, empty when migrations are embedded.
	dir string
}

type Option func(*Schema)

// WithRepository reads migrations from an on-disk directory instead of the
// ones compiled into the binary.
func WithRepository(dir string) Option {
	return func(s *Schema) {
		if dir == "" {
			return
		}
		s.dir = dir
		s.repo = os.DirFS(dir)
	}
}

// WithFS reads migrations from an arbitrary filesystem.
func WithFS(fsys fs.FS) Option {
	return func(s *Schema) {
		s.repo = fsys
		s.dir = ""
	}
}

// New creates a Schema. Each version is a directory named by its number
// holding .sql files, applied in name order.
func New(pool Pool, opts ...Option) *Schema {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	s := &Schema{pool: pool, repo: sub}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type version struct {
	Version int
	Root    string
}

func (v version) Apply(ctx context.Context, repo fs.FS, conn Queryer) error {
	return fs.WalkDir(repo, v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		query, err := fs.ReadFile(repo, p)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("schema %d: %s: %w", v.Version, path.Base(p), err)
		}
		return nil
	})
}

// Version returns the version recorded in the database. A database without
// the schema_version table is at version 0.
func (s *Schema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

// currentVersion checks for the table first: a failing SELECT would abort
// the surrounding transaction in Upgrade.
func currentVersion(ctx context.Context, q Queryer) (int, error) {
	var exists bool
	if err := q.QueryRow(
		ctx, `SELECT to_regclass('"schema_version"') IS NOT NULL`,
	).Scan(&exists); err != nil {
		return -1, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	if err := q.QueryRow(
		ctx, `SELECT coalesce(max("version"), 0) FROM "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}
	return version, nil
}

// Latest returns the highest version in the repository.
func (s *Schema) Latest() (int, error) {
	vs, err := s.versions()
	if err != nil {
		return -1, err
	}
	if len(vs) == 0 {
		return 0, nil
	}
	return vs[len(vs)-1].Version, nil
}

// Pending lists the repository versions newer than the database.
func (s *Schema) Pending(ctx context.Context) ([]int, error) {
	vs, err := s.versions()
	if err != nil {
		return nil, err
	}
	current, err := s.Version(ctx)
	if err != nil {
		return nil, err
	}

	pending := []int{}
	for _, v := range vs {
		if v.Version > current {
			pending = append(pending, v.Version)
		}
	}
	return pending, nil
}

// Upgrade applies every pending version.
func (s *Schema) Upgrade(ctx context.Context) error {
	return s.UpgradeTo(ctx, -1)
}

// UpgradeTo applies pending versions up to and including target. A negative
// target means the latest version. All versions are applied in a single
// transaction; on failure nothing is applied.
func (s *Schema) UpgradeTo(ctx context.Context, target int) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
		return err
	}

	current, err := currentVersion(ctx, tx)
	if err != nil {
		return err
	}

	applied := 0
	for _, v := range schemaVersions {
		if v.Version <= current {
			continue
		}
		if target >= 0 && v.Version > target {
			break
		}
		utils.Zlog.Info("Applying schema version", zap.Int("version", v.Version))
		if err := v.Apply(ctx, s.repo, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, v.Version,
		); err != nil {
			return err
		}
		applied++
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if applied > 0 {
		utils.Zlog.Info("Schema upgraded", zap.Int("from", current), zap.Int("versions", applied))
	}
	return nil
}

// Context returns a context which is cancelled when the database schema is
// older than the repository. With an on-disk repository, new version
// directories are picked up as they appear.
func (s *Schema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	checkVersion := func() {
		latest, err := s.Latest()
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}
		current, err := s.Version(cctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}
		if current < latest {
			can(fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)", current, latest,
			))
		}
	}

	if s.dir == "" {
		checkVersion()
		return cctx, func() { can(nil) }
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Clean(s.dir) != filepath.Dir(ev.Name) {
					continue
				}
				checkVersion()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				utils.Zlog.Warn("Schema repository watch error", zap.Error(err))
			}
		}
	}()

	checkVersion()
	return cctx, func() { can(nil) }
}

// versions lists the repository's version directories sorted by number.
// Entries whose name is not a number are ignored.
func (s *Schema) versions() ([]version, error) {
	dir, err := fs.ReadDir(s.repo, ".")
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		schemaVersions = append(schemaVersions, version{Version: v, Root: entry.Name()})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)
	return schemaVersions, nil
}
