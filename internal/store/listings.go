package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aptwatch/internal/domain"
)

// ErrNotFound is returned when an operation targets an identity the store
// has never seen.
var ErrNotFound = errors.New("listing not found")

const listingColumns = `listing_id, url, title, address, neighborhood, price,
bedrooms, bathrooms, square_feet, availability_date,
first_seen, last_seen, notified, favorited`

// Exists reports whether an identity is already tracked.
func Exists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM listings WHERE listing_id = ? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Upsert is the dedup gate. A new identity inserts a full row with
// first_seen = last_seen = now and returns inserted=true; a known identity
// only gets its last_seen touched; attributes, notified and favorited are
// never reset. The unique index on listing_id serializes concurrent
// sightings: the losing inserter sees zero rows affected and falls through
// to the touch.
func Upsert(ctx context.Context, db *sql.DB, l domain.RawListing, now time.Time) (inserted bool, err error) {
	ts := now.UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO listings
  (listing_id, url, title, address, neighborhood, price, bedrooms, bathrooms,
   square_feet, availability_date, first_seen, last_seen, notified, favorited)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0);`,
		l.ID, l.URL, l.Title, l.Address, l.Neighborhood,
		nullable(l.Price), nullable(l.Bedrooms), nullable(l.Bathrooms), nullable(l.SquareFeet),
		l.AvailableOn, ts, ts,
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return true, nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE listings SET last_seen = ? WHERE listing_id = ?;`, ts, l.ID)
	if err != nil {
		return false, fmt.Errorf("touch listing: %w", err)
	}
	return false, nil
}

// MarkNotified flips the notified flag; idempotent.
func MarkNotified(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE listings SET notified = 1 WHERE listing_id = ?;`, id)
	return err
}

// ToggleFavorite flips the favorited flag and returns the new state, or
// ErrNotFound for an unknown identity.
func ToggleFavorite(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var cur int
	err := db.QueryRowContext(ctx,
		`SELECT favorited FROM listings WHERE listing_id = ?;`, id).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	next := 0
	if cur == 0 {
		next = 1
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE listings SET favorited = ? WHERE listing_id = ?;`, next, id); err != nil {
		return false, err
	}
	return next == 1, nil
}

// Unnotified returns listings pending notification, most recently first
// seen first.
func Unnotified(ctx context.Context, db *sql.DB) ([]domain.Listing, error) {
	return queryListings(ctx, db, `
SELECT `+listingColumns+`
FROM listings
WHERE notified = 0
ORDER BY first_seen DESC;`)
}

// All returns tracked listings ordered by first_seen, newest first.
// limit <= 0 means no limit.
func All(ctx context.Context, db *sql.DB, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = -1 // sqlite: LIMIT -1 is unlimited
	}
	return queryListings(ctx, db, `
SELECT `+listingColumns+`
FROM listings
ORDER BY first_seen DESC
LIMIT ?;`, limit)
}

// Favorited returns the user's starred listings, newest first.
func Favorited(ctx context.Context, db *sql.DB) ([]domain.Listing, error) {
	return queryListings(ctx, db, `
SELECT `+listingColumns+`
FROM listings
WHERE favorited = 1
ORDER BY first_seen DESC;`)
}

// Prune deletes rows first seen before now - retentionDays. Pruning goes by
// first_seen, never last_seen: a listing the site keeps re-showing still
// ages out of notification relevance.
func Prune(ctx context.Context, db *sql.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)
	res, err := db.ExecContext(ctx,
		`DELETE FROM listings WHERE first_seen < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune listings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type Stats struct {
	Total      int `json:"total"`
	Notified   int `json:"notified"`
	Unnotified int `json:"unnotified"`
	Favorited  int `json:"favorited"`
}

func GetStats(ctx context.Context, db *sql.DB) (Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(notified), 0),
       COALESCE(SUM(1 - notified), 0),
       COALESCE(SUM(favorited), 0)
FROM listings;`).Scan(&s.Total, &s.Notified, &s.Unnotified, &s.Favorited)
	return s, err
}

func queryListings(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.Listing, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var (
			l                        domain.Listing
			price, beds, baths, sqft sql.NullFloat64
			firstSeen, lastSeen      string
			notified, favorited      int
		)
		if err := rows.Scan(
			&l.ID, &l.URL, &l.Title, &l.Address, &l.Neighborhood,
			&price, &beds, &baths, &sqft, &l.AvailableOn,
			&firstSeen, &lastSeen, &notified, &favorited,
		); err != nil {
			return nil, err
		}
		l.Price = fromNull(price)
		l.Bedrooms = fromNull(beds)
		l.Bathrooms = fromNull(baths)
		l.SquareFeet = fromNull(sqft)
		l.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
		l.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		l.Notified = notified != 0
		l.Favorited = favorited != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
