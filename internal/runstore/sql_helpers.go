package runstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/rideintegrity/schema"
)

// Layouts accepted when a backend hands back a timestamp as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// placeholder returns the n-th (1-based) parameter placeholder for the backend.
func placeholder(backend schema.DatabaseBackend, n int) string {
	switch backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "`" + tableName + "`"
	default: // SQLite and PostgreSQL
		return `"` + tableName + `"`
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// timeScanner reads a nullable timestamp regardless of how the driver encodes it.
type timeScanner struct {
	backend schema.DatabaseBackend
	value   time.Time
	valid   bool
}

var _ sql.Scanner = &timeScanner{}

// Scan implements sql.Scanner.
func (ts *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.value, ts.valid = time.Time{}, false
		return nil
	case time.Time:
		ts.value, ts.valid = v, true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp for %s", src, ts.backend)
	}
}

func (ts *timeScanner) parse(text string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			ts.value, ts.valid = t, true
			return nil
		}
	}
	return fmt.Errorf("failed to parse timestamp %q", text)
}

// scanTime reads a single non-null timestamp column from row.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	ts := timeScanner{backend: backend}
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.valid {
		return time.Time{}, fmt.Errorf("unexpected NULL timestamp")
	}
	return ts.value, nil
}
