package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"guide-exam/internal/config"
	"guide-exam/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies every pending up migration for the driver.
// Postgres and SQLite go through golang-migrate; Oracle runs the plain up scripts in order.
func RunMigrations(db *sql.DB, driver string) error {
	switch driver {
	case config.DriverPostgres:
		instance, err := pgx.WithInstance(db, &pgx.Config{})
		if err != nil {
			return fmt.Errorf("could not create pgx migration driver: %w", err)
		}
		return migrateUp(instance, "postgres")
	case config.DriverSQLite:
		instance, err := sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite migration driver: %w", err)
		}
		return migrateUp(instance, "sqlite")
	case config.DriverOracle:
		return runScripts(db, "migrations/oracle")
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}
}

func migrateUp(instance migratedb.Driver, dialect string) error {
	source, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, dialect, instance)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Get().Info("Migrations completed successfully", zap.String("dialect", dialect), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// runScripts executes each *.up.sql file statement by statement.
// Oracle rejects multiple statements per call and does not know IF NOT EXISTS, so
// "already exists" errors (ORA-00955) are skipped to keep reruns harmless.
func runScripts(db *sql.DB, dir string) error {
	files, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationsFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				if strings.Contains(err.Error(), "ORA-00955") {
					continue
				}
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		logger.Get().Info("Executed migration", zap.String("file", name))
	}

	logger.Get().Info("Migrations completed successfully", zap.String("dialect", "oracle"))
	return nil
}

// SplitStatements splits a script on ';' and drops blank statements and '--' comment lines.
func SplitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}
	var stmts []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
