package store

import (
	"database/sql"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyscolab/symbolite/internal/expr"
)

// Current schema version
const SchemaVersion = "2"

// SQL is a store over database/sql. The same queries serve SQLite and
// PostgreSQL; only the placeholder style differs.
type SQL struct {
	mu     sync.Mutex
	db     *sql.DB
	driver string
	log    logrus.FieldLogger
	now    func() time.Time
}

// SQLOption configures a SQL store.
type SQLOption func(*SQL)

// WithLogger sends schema and write events to log at Debug level.
func WithLogger(log logrus.FieldLogger) SQLOption {
	return func(s *SQL) { s.log = log }
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string, opts ...SQLOption) (*SQL, error) {
	return Open(SQLiteDriver, path, opts...)
}

// NewPostgres creates a new PostgreSQL store from a lib/pq connection string.
func NewPostgres(dsn string, opts ...SQLOption) (*SQL, error) {
	return Open(PostgresDriver, dsn, opts...)
}

// Open connects with one of the registered drivers and brings the schema
// up to date.
func Open(driver, dsn string, opts ...SQLOption) (*SQL, error) {
	if driver != SQLiteDriver && driver != PostgresDriver {
		return nil, errors.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s store", driver)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connecting to %s store", driver)
	}
	if driver == SQLiteDriver {
		// A single connection keeps ":memory:" databases shared and
		// serializes writers.
		db.SetMaxOpenConns(1)
	}
	s := &SQL{db: db, driver: driver, log: expr.Logger(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS namespaces (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return errors.Wrap(err, "creating tables")
	}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		return err
	}
	switch version {
	case SchemaVersion:
		return nil
	case "", "1":
		s.log.WithFields(logrus.Fields{"driver": s.driver, "from": version, "to": SchemaVersion}).Debug("migrating store schema")
		if err := s.migrateToV2(); err != nil {
			return errors.Wrap(err, "migrating to schema 2")
		}
		return s.setMetadataUnlocked("schema_version", SchemaVersion)
	}
	return errors.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
}

// migrateToV2 adds the version table and records every existing namespace
// as its version 1.
func (s *SQL) migrateToV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS namespace_versions (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			value TEXT NOT NULL,
			hash TEXT NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY (name, version)
		);
	`)
	if err != nil {
		return err
	}

	rows, err := s.db.Query("SELECT name, value FROM namespaces")
	if err != nil {
		return err
	}
	type row struct{ name, value string }
	var existing []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.name, &r.value); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	ts := s.timestamp()
	for _, r := range existing {
		ns, err := Decode(r.value)
		if err != nil {
			return errors.Wrapf(err, "namespace %s", r.name)
		}
		_, hash, err := Encode(ns)
		if err != nil {
			return err
		}
		_, err = s.db.Exec(s.rebind(`
			INSERT INTO namespace_versions (name, version, value, hash, ts) VALUES (?, 1, ?, ?, ?)
			ON CONFLICT(name, version) DO NOTHING
		`), r.name, r.value, hash, ts)
		if err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites "?" placeholders as "$1", "$2", ... for PostgreSQL.
func (s *SQL) rebind(query string) string {
	if s.driver != PostgresDriver {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQL) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Get retrieves a namespace by name.
func (s *SQL) Get(name string) (*expr.Namespace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow(s.rebind("SELECT value FROM namespaces WHERE name = ?"), name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading namespace %s", name)
	}
	return Decode(value)
}

// Put stores a namespace by name.
func (s *SQL) Put(name string, ns *expr.Namespace) error {
	doc, hash, err := Encode(ns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lastHash string
	var version int
	err = tx.QueryRow(s.rebind(`
		SELECT hash, version FROM namespace_versions WHERE name = ?
		ORDER BY version DESC LIMIT 1
	`), name).Scan(&lastHash, &version)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrapf(err, "reading history of %s", name)
	}
	if err == nil && lastHash == hash {
		return nil
	}
	version++

	if _, err := tx.Exec(s.rebind(`
		INSERT INTO namespace_versions (name, version, value, hash, ts) VALUES (?, ?, ?, ?, ?)
	`), name, version, doc, hash, s.timestamp()); err != nil {
		return errors.Wrapf(err, "recording version %d of %s", version, name)
	}
	if _, err := tx.Exec(s.rebind(`
		INSERT INTO namespaces (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`), name, doc); err != nil {
		return errors.Wrapf(err, "storing namespace %s", name)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"name": name, "version": version, "hash": hash}).Debug("stored namespace")
	return nil
}

// Delete removes a namespace and all its versions.
func (s *SQL) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(s.rebind("DELETE FROM namespaces WHERE name = ?"), name); err != nil {
		return err
	}
	if _, err := tx.Exec(s.rebind("DELETE FROM namespace_versions WHERE name = ?"), name); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns the stored names in order.
func (s *SQL) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM namespaces ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetHistory returns versions newest first.
func (s *SQL) GetHistory(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT version, value, hash, ts FROM namespace_versions WHERE name = ? ORDER BY version DESC"
	args := []any{name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []VersionEntry
	for rows.Next() {
		var e VersionEntry
		var ts string
		if err := rows.Scan(&e.Version, &e.Value, &e.Hash, &ts); err != nil {
			return nil, err
		}
		if e.Ts, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, errors.Wrapf(err, "version %d of %s", e.Version, name)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQL) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQL) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQL) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow(s.rebind("SELECT value FROM metadata WHERE key = ?"), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQL) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQL) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(s.rebind(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`), key, value)
	return err
}
