package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/windtools/fstdeck/internal/deck"
	"github.com/windtools/fstdeck/internal/metrics"
)

// ErrNotFound is returned when a report id does not exist in the archive.
var ErrNotFound = errors.New("report not found")

// Origins distinguish how a deck reached the validator.
const (
	OriginAPI     = "api"
	OriginWatcher = "watcher"
)

// Report is one archived validation run.
type Report struct {
	ID        string       `json:"id"`
	DeckHash  string       `json:"deckHash"`
	Origin    string       `json:"origin"`
	DeckPath  string       `json:"deckPath,omitempty"`
	Clean     bool         `json:"clean"`
	Issues    []deck.Issue `json:"issues"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	DeckHash string
	Origin   string
	Limit    int // 0 means no limit
}

// Archive inserts a report and prunes the archive back down to the
// retention bound in the same transaction. A missing ID or CreatedAt is
// filled in. Returns the number of reports pruned.
func (s *Store) Archive(ctx context.Context, rep *Report) (int, error) {
	if rep.ID == "" {
		rep.ID = uuid.New().String()
	}
	if rep.CreatedAt.IsZero() {
		// Stored at millisecond precision, so fill at that precision too.
		rep.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	issuesJSON, err := json.Marshal(rep.Issues)
	if err != nil {
		return 0, fmt.Errorf("marshal issues: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (report_id, deck_hash, origin, deck_path, clean, issue_count, issues_json, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.DeckHash, rep.Origin, nullIfEmpty(rep.DeckPath),
		boolToInt(rep.Clean), len(rep.Issues), string(issuesJSON), rep.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, err
	}

	pruned := 0
	if s.maxReports > 0 {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM reports WHERE report_id IN (
				SELECT report_id FROM reports
				ORDER BY created_at_ms DESC, report_id DESC
				LIMIT -1 OFFSET ?
			)`, s.maxReports)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		pruned = int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	metrics.IncReportArchived()
	if pruned > 0 {
		metrics.AddReportsPruned(pruned)
	}
	return pruned, nil
}

// Get retrieves one report by id.
func (s *Store) Get(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT report_id, deck_hash, origin, deck_path, clean, issue_count, issues_json, created_at_ms
		FROM reports WHERE report_id = ?`, id)

	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return rep, err
}

// List returns reports newest first, narrowed by the filter.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Report, error) {
	query := `
		SELECT report_id, deck_hash, origin, deck_path, clean, issue_count, issues_json, created_at_ms
		FROM reports WHERE 1=1`
	args := []interface{}{}

	if filter.DeckHash != "" {
		query += " AND deck_hash = ?"
		args = append(args, filter.DeckHash)
	}
	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, filter.Origin)
	}

	query += " ORDER BY created_at_ms DESC, report_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rep)
	}
	return results, rows.Err()
}

// Count returns the number of archived reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&n)
	return n, err
}

func scanReport(scanner interface {
	Scan(dest ...interface{}) error
}) (*Report, error) {
	var rep Report
	var deckPath sql.NullString
	var clean, issueCount int
	var issuesJSON string
	var createdAtMs int64

	err := scanner.Scan(
		&rep.ID, &rep.DeckHash, &rep.Origin, &deckPath,
		&clean, &issueCount, &issuesJSON, &createdAtMs,
	)
	if err != nil {
		return nil, err
	}

	if deckPath.Valid {
		rep.DeckPath = deckPath.String
	}
	rep.Clean = clean != 0
	rep.CreatedAt = time.UnixMilli(createdAtMs).UTC()

	if err := json.Unmarshal([]byte(issuesJSON), &rep.Issues); err != nil {
		return nil, fmt.Errorf("report %s: corrupt issues payload: %w", rep.ID, err)
	}
	if rep.Issues == nil {
		rep.Issues = []deck.Issue{}
	}

	return &rep, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
