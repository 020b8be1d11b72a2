package session

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"finadvisor/internal/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// sessionRowID is the primary key of the single stored session.
const sessionRowID = 1

// storedSession is the sessions table row.
type storedSession struct {
	ID           uint   `gorm:"primaryKey"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string
	DisplayName  string
	Email        string
	UserID       int
	UpdatedAt    time.Time
}

// TableName implements gorm's tabler interface.
func (storedSession) TableName() string { return "sessions" }

// SQLiteStore persists the session in a local SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if needed) the SQLite file at path and
// applies pending migrations.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an already opened database and migrates it.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.runMigrations(); err != nil {
		return nil, err
	}
	return store, nil
}

// runMigrations applies the embedded SQL migrations.
func (s *SQLiteStore) runMigrations() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	// The migrate instance is not closed: closing it would close sqlDB,
	// which the store keeps using.
	mig, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Debug("session store migrations applied")
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	var row storedSession
	err := s.db.WithContext(ctx).Where("id = ?", sessionRowID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &State{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		DisplayName:  row.DisplayName,
		Email:        row.Email,
		UserID:       row.UserID,
	}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, state State) error {
	row := storedSession{
		ID:           sessionRowID,
		AccessToken:  state.AccessToken,
		RefreshToken: state.RefreshToken,
		DisplayName:  state.DisplayName,
		Email:        state.Email,
		UserID:       state.UserID,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("id = ?", sessionRowID).Delete(&storedSession{}).Error
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
