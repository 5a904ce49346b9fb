package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/choicerank/internal/history"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS choice_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	store_name  TEXT NOT NULL,
	entry_id    TEXT NOT NULL,
	chosen_at   INTEGER NOT NULL,
	weight      REAL NOT NULL,
	revision    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_choice_history_store
	ON choice_history(store_name);

CREATE TABLE IF NOT EXISTS store_revisions (
	store_name   TEXT PRIMARY KEY,
	revision     TEXT NOT NULL,
	saved_at     TEXT NOT NULL,
	record_count INTEGER NOT NULL
);
`

// #endregion schema

// #region db-store

// DBStore persists choice histories in one SQLite database; each named
// store is a row set keyed by store_name. Every Save stamps a fresh
// revision so external tooling can tell rewrites apart.
type DBStore struct {
	db *sql.DB
}

// NewDBStore opens (or creates) the database and runs migrations.
func NewDBStore(dbPath string) (*DBStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DBStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *DBStore) Close() error {
	return s.db.Close()
}

// #endregion db-store

// #region load

// Load returns the records stored under name in insertion order. An unknown
// name yields (nil, nil).
func (s *DBStore) Load(name string) ([]history.Record, error) {
	rows, err := s.db.Query(
		`SELECT entry_id, chosen_at, weight FROM choice_history
		 WHERE store_name = ? ORDER BY id`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", name, err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var rec history.Record
		if err := rows.Scan(&rec.EntryID, &rec.Time, &rec.Weight); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion load

// #region save

// Save replaces the rows for name inside one transaction and stamps the
// batch with a new revision.
func (s *DBStore) Save(name string, records []history.Record) error {
	revision := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM choice_history WHERE store_name = ?`, name); err != nil {
		return fmt.Errorf("clear history %s: %w", name, err)
	}
	for _, rec := range records {
		_, err := tx.Exec(
			`INSERT INTO choice_history (store_name, entry_id, chosen_at, weight, revision)
			 VALUES (?, ?, ?, ?, ?)`,
			name, rec.EntryID, rec.Time, rec.Weight, revision,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO store_revisions (store_name, revision, saved_at, record_count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(store_name) DO UPDATE SET
			revision = excluded.revision,
			saved_at = excluded.saved_at,
			record_count = excluded.record_count`,
		name, revision, now.Format(time.RFC3339Nano), len(records),
	)
	if err != nil {
		return fmt.Errorf("stamp revision: %w", err)
	}

	return tx.Commit()
}

// #endregion save

// #region store-info

// StoreInfo describes one named store's latest saved state.
type StoreInfo struct {
	Name        string
	Revision    string
	SavedAt     time.Time
	RecordCount int
}

// ListStores returns every store that has been saved at least once.
func (s *DBStore) ListStores() ([]StoreInfo, error) {
	rows, err := s.db.Query(
		`SELECT store_name, revision, saved_at, record_count
		 FROM store_revisions ORDER BY store_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var infos []StoreInfo
	for rows.Next() {
		var info StoreInfo
		var savedStr string
		if err := rows.Scan(&info.Name, &info.Revision, &savedStr, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		info.SavedAt, _ = time.Parse(time.RFC3339Nano, savedStr)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// #endregion store-info
