// Package store is the client-side state database: the session token, saved
// drafts, and the last fetched workout list live in a SQLite file under the
// data directory.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/guissxs/treinocli/internal/draft"
	"github.com/guissxs/treinocli/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Draft kinds. One draft per flow is kept at a time.
const (
	KindCreate = "create"
	KindEdit   = "edit"
)

// DB is the local state database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dir/treino.db and applies
// pending schema migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "treino.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the state database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Token returns the stored session token, or "" when logged out.
func (d *DB) Token() (string, error) {
	var token string
	err := d.db.QueryRow(`SELECT token FROM session WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session token: %w", err)
	}
	return token, nil
}

// SetToken stores the session token, replacing any previous one.
func (d *DB) SetToken(token string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO session (id, token) VALUES (1, ?)`, token)
	if err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	return nil
}

// ClearToken removes the session token.
func (d *DB) ClearToken() error {
	if _, err := d.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	return nil
}

// SaveDraft persists the draft for the given kind so an interrupted flow can
// be resumed.
func (d *DB) SaveDraft(kind string, dr draft.Draft) error {
	body, err := json.Marshal(dr)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT OR REPLACE INTO drafts (kind, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		kind, string(body))
	if err != nil {
		return fmt.Errorf("storing draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved draft for the given kind. ok is false when
// none is saved.
func (d *DB) LoadDraft(kind string) (dr draft.Draft, ok bool, err error) {
	var body string
	err = d.db.QueryRow(`SELECT body FROM drafts WHERE kind = ?`, kind).Scan(&body)
	if err == sql.ErrNoRows {
		return draft.Draft{}, false, nil
	}
	if err != nil {
		return draft.Draft{}, false, fmt.Errorf("reading draft: %w", err)
	}
	if err := json.Unmarshal([]byte(body), &dr); err != nil {
		return draft.Draft{}, false, fmt.Errorf("decoding draft: %w", err)
	}
	return dr, true, nil
}

// DeleteDraft discards the saved draft for the given kind.
func (d *DB) DeleteDraft(kind string) error {
	if _, err := d.db.Exec(`DELETE FROM drafts WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// CacheWorkouts stores the last fetched workout list for a user so listing
// works offline.
func (d *DB) CacheWorkouts(userID string, workouts []models.Workout) error {
	body, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("encoding workout cache: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT OR REPLACE INTO workout_cache (user_id, body, fetched_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		userID, string(body))
	if err != nil {
		return fmt.Errorf("storing workout cache: %w", err)
	}
	return nil
}

// CachedWorkouts returns the cached workout list for a user. ok is false
// when nothing has been cached yet.
func (d *DB) CachedWorkouts(userID string) (workouts []models.Workout, ok bool, err error) {
	var body string
	err = d.db.QueryRow(`SELECT body FROM workout_cache WHERE user_id = ?`, userID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading workout cache: %w", err)
	}
	if err := json.Unmarshal([]byte(body), &workouts); err != nil {
		return nil, false, fmt.Errorf("decoding workout cache: %w", err)
	}
	return workouts, true, nil
}
