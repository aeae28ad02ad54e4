package timetable

import (
	"context"
	"log/slog"
	"time"
)

// Source serves timetable rows cache-first. The store is optional; with no
// store every call goes to the API. Fetch failures are returned to the
// caller, which treats them as "timetable unavailable".
type Source struct {
	client *Client
	store  *Store
	logger *slog.Logger
}

// NewSource composes a client with an optional cache store.
func NewSource(client *Client, store *Store, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{client: client, store: store, logger: logger}
}

// Day returns the official row for the given calendar day, consulting the
// cache before the API. Cache errors are logged and ignored; only the API
// result decides availability.
func (s *Source) Day(ctx context.Context, day time.Time) (*Row, error) {
	if s.store != nil {
		row, err := s.store.Get(day)
		if err != nil {
			s.logger.Warn("timetable cache read failed", "error", err)
		} else if row != nil {
			s.logger.Debug("timetable cache hit", "date", day.Format("2006-01-02"))
			return row, nil
		}
	}

	row, err := s.client.Day(ctx, day)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Put(day, row); err != nil {
			s.logger.Warn("timetable cache write failed", "error", err)
		}
	}
	return row, nil
}
