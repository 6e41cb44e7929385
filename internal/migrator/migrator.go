package migrator

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/zlog"
)

// Migrator применяет SQL миграции схемы уведомлений из каталога.
type Migrator struct {
	migrate *migrate.Migrate
}

// NewMigrator проверяет каталог миграций и готовит golang-migrate для postgres.
func NewMigrator(db *sql.DB, migrationsDir string) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}
	if migrationsDir == "" {
		return nil, errors.New("migrations directory is empty")
	}

	info, err := os.Stat(strings.TrimPrefix(migrationsDir, "file://"))
	if err != nil {
		return nil, fmt.Errorf("cannot access migrations path %q: %w", migrationsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path %q is not a directory", migrationsDir)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(migrationsDir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m}, nil
}

// Up накатывает все непримененные миграции.
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down откатывает все примененные миграции.
func (m *Migrator) Down() error {
	return m.apply("down", m.migrate.Down)
}

// MigrateTo приводит схему к указанной версии в любую сторону.
func (m *Migrator) MigrateTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error {
		return m.migrate.Migrate(version)
	})
}

func (m *Migrator) apply(direction string, fn func() error) error {
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		zlog.Logger.Info().Str("direction", direction).Msg("schema is up to date")
		return nil
	}
	return err
}

// Version возвращает текущую версию схемы, 0 если миграций еще не было.
func (m *Migrator) Version() (uint, error) {
	ver, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, err
	}
	if dirty {
		return ver, fmt.Errorf("database is dirty at version %d (migration failed midway)", ver)
	}
	return ver, nil
}

// Close закрывает источник миграций и соединение драйвера.
func (m *Migrator) Close() error {
	if m.migrate == nil {
		return nil
	}
	serr, derr := m.migrate.Close()
	if serr != nil || derr != nil {
		return fmt.Errorf("close error: source error: %v, database error: %v", serr, derr)
	}
	return nil
}

func sourceURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
