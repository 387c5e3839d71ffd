package store

import (
	"database/sql"
	"fmt"
)

// Migrate brings the schema up to the current version. Upgrades are
// strictly additive: a database written by an older build keeps all its
// rows and just gains default-filled columns.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 3 {
		return tx.Commit()
	}

	// ---- Schema v1: base table ----

	if v < 1 {
		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listing_id TEXT NOT NULL,
  url TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  price REAL,
  bedrooms REAL,
  bathrooms REAL,
  square_feet REAL,
  availability_date TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL,
  last_seen TEXT NOT NULL,
  notified INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
			return err
		}

		// The unique index is what makes Upsert's INSERT OR IGNORE an
		// at-most-once insert even under concurrent sightings.
		if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_listing_id
ON listings(listing_id);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_listings_first_seen
ON listings(first_seen);
`); err != nil {
			return err
		}
	}

	// ---- Schema v2: favorites ----

	if v < 2 && !columnExists(tx, "listings", "favorited") {
		if _, err := tx.Exec(`ALTER TABLE listings ADD COLUMN favorited INTEGER NOT NULL DEFAULT 0;`); err != nil {
			return err
		}
	}

	// ---- Schema v3: neighborhood tag ----

	if v < 3 && !columnExists(tx, "listings", "neighborhood") {
		if _, err := tx.Exec(`ALTER TABLE listings ADD COLUMN neighborhood TEXT NOT NULL DEFAULT '';`); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 3;`); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
