// Copyright (c) 2025 ToeiRei
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package store is the fingerprint ledger: it persists the fields derived
// from validated public keys (type, bits, fingerprints, comment) so that
// duplicate registrations can be refused. Key text itself is never stored.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/internal/sshkey"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// KeyRecord maps the key_fingerprints table.
type KeyRecord struct {
	bun.BaseModel `bun:"table:key_fingerprints" json:"-" yaml:"-"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	Fingerprint       string    `bun:"fingerprint,notnull" json:"fingerprint"`
	FingerprintSHA256 string    `bun:"fingerprint_sha256,notnull" json:"fingerprint_sha256"`
	Type              string    `bun:"type,notnull" json:"type"`
	Bits              int       `bun:"bits,notnull" json:"bits"`
	Comment           string    `bun:"comment,notnull" json:"comment"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Store is a bun-backed fingerprint ledger. It is safe for concurrent use.
type Store struct {
	db     *bun.DB
	dbType string
}

// Open connects to the database, applies pending migrations and returns
// the ledger. dbType is one of sqlite, postgres or mysql.
func Open(dbType, dsn string) (*Store, error) {
	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	if dbType == "postgres" {
		driverName = "pgx"
	}
	switch dbType {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type '%s'", dbType)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(sqlDB, dbType, dsn)

	s := &Store{db: createBunDB(sqlDB, dbType), dbType: dbType}
	logging.Debugf("store: opened %s driver in %s", driverName, time.Since(start))

	migStart := time.Now()
	if err := s.migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logging.Debugf("store: migrations for %s completed in %s", dbType, time.Since(migStart))
	return s, nil
}

// configurePool applies connection limits. KEYPRINT_DB_MAX_OPEN_CONNS
// overrides the default limit.
func configurePool(sqlDB *sql.DB, dbType, dsn string) {
	const (
		defaultMaxOpenConns    = 10
		defaultConnMaxLifetime = 5 * time.Minute
	)
	maxOpen := defaultMaxOpenConns
	if v := os.Getenv("KEYPRINT_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxOpen = n
		}
	}
	// Every connection to an in-memory SQLite database sees its own
	// database, so keep exactly one.
	if dbType == "sqlite" && (dsn == ":memory:" || strings.Contains(dsn, "mode=memory")) {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
}

// createBunDB wraps sqlDB with the bun dialect for dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// migrate applies the embedded *.up.sql files for the store's dialect in
// lexical order, recording each in schema_migrations.
func (s *Store) migrate(ctx context.Context) error {
	dir := path.Join("migrations", s.dbType)
	entries, err := fs.ReadDir(embeddedMigrations, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", dir, err)
	}

	var ups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	if _, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY, applied_at TIMESTAMP NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var applied int
		err := s.db.NewSelect().
			TableExpr("schema_migrations").
			ColumnExpr("COUNT(*)").
			Where("version = ?", version).
			Scan(ctx, &applied)
		if err != nil {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		data, err := embeddedMigrations.ReadFile(path.Join(dir, fname))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fname, err)
		}
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(data)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", version, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", version, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		logging.Debugf("store: applied migration %s", version)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register records the derived fields of a valid key.
func (s *Store) Register(ctx context.Context, k *sshkey.PublicKey) (*KeyRecord, error) {
	if k == nil || !k.Valid() {
		return nil, ErrInvalidKey
	}
	typ, _ := k.Type()
	bits, _ := k.Bits()
	fp, _ := k.Fingerprint()
	sha, _ := k.FingerprintSHA256()

	rec := &KeyRecord{
		Fingerprint:       fp,
		FingerprintSHA256: sha,
		Type:              typ.String(),
		Bits:              bits,
		Comment:           k.Comment(),
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, mapDBError(err)
	}
	return rec, nil
}

// Get returns the record for a fingerprint in either the colon separated
// MD5 form or the "SHA256:" form.
func (s *Store) Get(ctx context.Context, fingerprint string) (*KeyRecord, error) {
	column, value := fingerprintColumn(fingerprint)
	var rec KeyRecord
	err := s.db.NewSelect().Model(&rec).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns all records in registration order.
func (s *Store) List(ctx context.Context) ([]KeyRecord, error) {
	var recs []KeyRecord
	if err := s.db.NewSelect().Model(&recs).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

// Delete removes the record for a fingerprint.
func (s *Store) Delete(ctx context.Context, fingerprint string) error {
	column, value := fingerprintColumn(fingerprint)
	res, err := s.db.NewDelete().Model((*KeyRecord)(nil)).Where("? = ?", bun.Ident(column), value).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func fingerprintColumn(fingerprint string) (column, value string) {
	fp := strings.TrimSpace(fingerprint)
	if rest, ok := strings.CutPrefix(fp, "SHA256:"); ok {
		return "fingerprint_sha256", "SHA256:" + rest
	}
	fp = strings.TrimPrefix(strings.ToLower(fp), "md5:")
	return "fingerprint", fp
}
