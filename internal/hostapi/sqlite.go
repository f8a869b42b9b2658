package hostapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrDotCommand rejects sqlite3 shell meta commands.
var ErrDotCommand = errors.New("sqlite3 dot-commands are not allowed")

func newSQLiteAPI(ctx context.Context) SQLiteAPI {
	return SQLiteAPI{
		Query: func(dbPath, query string) (string, error) {
			return QuerySQLite(ctx, dbPath, query)
		},
	}
}

// QuerySQLite runs query against the database at dbPath opened read-only and
// returns the rows as a JSON array of objects with columns in result order.
func QuerySQLite(ctx context.Context, dbPath, query string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(query), ".") {
		return "", ErrDotCommand
	}

	db, err := sql.Open("sqlite", readOnlyDSN(ExpandPath(dbPath)))
	if err != nil {
		return "", fmt.Errorf("sqlite open failed: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("sqlite query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("sqlite query failed: %w", err)
	}

	var out strings.Builder
	out.WriteByte('[')
	count := 0
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return "", fmt.Errorf("sqlite query failed: %w", err)
		}

		if count > 0 {
			out.WriteByte(',')
		}
		if err := writeRow(&out, columns, values); err != nil {
			return "", err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("sqlite query failed: %w", err)
	}
	out.WriteByte(']')

	return out.String(), nil
}

func readOnlyDSN(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return "file:" + escaped + "?mode=ro&_pragma=query_only(1)"
}

func writeRow(out *strings.Builder, columns []string, values []any) error {
	out.WriteByte('{')
	for i, column := range columns {
		if i > 0 {
			out.WriteByte(',')
		}
		value := values[i]
		if raw, ok := value.([]byte); ok {
			value = string(raw)
		}
		key, err := json.Marshal(column)
		if err != nil {
			return fmt.Errorf("encode column %s: %w", column, err)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode column %s: %w", column, err)
		}
		out.Write(key)
		out.WriteByte(':')
		out.Write(encoded)
	}
	out.WriteByte('}')
	return nil
}
