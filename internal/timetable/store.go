package timetable

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite cache of fetched timetable rows, keyed by calendar day.
// It lets a restart mid-day reuse the morning's fetch instead of hitting the
// API again. Times are stored as the API's "HH:MM" strings.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS timetable (
	day     TEXT PRIMARY KEY,
	fajr    TEXT NOT NULL,
	sunrise TEXT NOT NULL,
	dhuhr   TEXT NOT NULL,
	asr     TEXT NOT NULL,
	maghrib TEXT NOT NULL,
	isha    TEXT NOT NULL
)`

// OpenStore opens (creating if necessary) the cache database at path.
func OpenStore(path string, loc *time.Location) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db, loc: loc}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached row for day, or (nil, nil) on a cache miss.
func (s *Store) Get(day time.Time) (*Row, error) {
	var fajr, sunrise, dhuhr, asr, maghrib, isha string
	err := s.db.QueryRow(
		`SELECT fajr, sunrise, dhuhr, asr, maghrib, isha FROM timetable WHERE day = ?`,
		day.Format("2006-01-02"),
	).Scan(&fajr, &sunrise, &dhuhr, &asr, &maghrib, &isha)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	row := &Row{}
	for _, f := range []struct {
		dst  *time.Time
		hhmm string
	}{
		{&row.Fajr, fajr},
		{&row.Sunrise, sunrise},
		{&row.Dhuhr, dhuhr},
		{&row.Asr, asr},
		{&row.Maghrib, maghrib},
		{&row.Isha, isha},
	} {
		t, err := atClock(f.hhmm, day, s.loc)
		if err != nil {
			return nil, fmt.Errorf("cache row: %w", err)
		}
		*f.dst = t
	}
	return row, nil
}

// Put stores the row for day, replacing any previous entry.
func (s *Store) Put(day time.Time, row *Row) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO timetable (day, fajr, sunrise, dhuhr, asr, maghrib, isha)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		day.Format("2006-01-02"),
		row.Fajr.Format("15:04"),
		row.Sunrise.Format("15:04"),
		row.Dhuhr.Format("15:04"),
		row.Asr.Format("15:04"),
		row.Maghrib.Format("15:04"),
		row.Isha.Format("15:04"),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
