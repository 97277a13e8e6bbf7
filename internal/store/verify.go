package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// integrityPragma maps the verification mode to its PRAGMA. "full" runs
// the exhaustive integrity_check; anything else gets quick_check.
func integrityPragma(mode string) string {
	if mode == "full" {
		return "PRAGMA integrity_check;"
	}
	return "PRAGMA quick_check;"
}

// VerifyIntegrity checks an archive database for structural corruption
// without opening it through a Store. A nil diagnostic slice means the
// file is healthy; a non-nil one carries SQLite's complaint lines.
func VerifyIntegrity(path string, mode string) ([]string, error) {
	// Read-only: verification must never mutate a possibly damaged file.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=2000", path))
	if err != nil {
		return nil, fmt.Errorf("open archive for verification: %w", err)
	}
	defer db.Close()

	diags, err := collectStrings(db, integrityPragma(mode))
	if err != nil {
		return nil, err
	}

	switch {
	case len(diags) == 1 && strings.EqualFold(diags[0], "ok"):
		return nil, nil
	case len(diags) == 0:
		return []string{"no results returned from integrity check"}, nil
	default:
		return diags, nil
	}
}

func collectStrings(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("integrity pragma: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan integrity row: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
