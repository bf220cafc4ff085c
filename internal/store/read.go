package store

import (
	"context"
	"fmt"
	"strings"
)

// Record is one journal row.
type Record struct {
	Seq        int64
	Name       string
	ProjectID  string
	Properties map[string]any
}

// Filter narrows an Events query. Zero fields match everything.
type Filter struct {
	ProjectID string
	Name      string
	Limit     int
}

// Events returns journal rows matching f, ordered by seq ascending.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Events(ctx context.Context, f Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.Name != "" {
		where = append(where, "name = ?")
		args = append(args, f.Name)
	}

	query := "SELECT seq, name, project_id, properties FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec   Record
			props string
		)
		if err := rows.Scan(&rec.Seq, &rec.Name, &rec.ProjectID, &props); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Properties, err = unmarshalProps(props)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// Count returns the number of journal rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq stored, or 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM events").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
