package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ColumnExtra is the export column holding undeclared attributes as JSON.
// No declared field may use this name.
const ColumnExtra = "extra"

// openExportDB opens a SQLite database for an export.
func openExportDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// GenerateDDL generates a CREATE TABLE statement for a tag: the store-owned
// columns, one column per declared attribute, and an extra column holding
// undeclared attributes as a JSON object.
func GenerateDDL(schema *Schema) string {
	cols := []string{
		"id TEXT PRIMARY KEY",
		"created_at TEXT NOT NULL",
		"updated_at TEXT NOT NULL",
	}
	for _, f := range schema.Fields {
		cols = append(cols, fmt.Sprintf("%s %s", f.Name, sqliteType(f.Type)))
	}
	cols = append(cols, ColumnExtra+" TEXT")

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		schema.Tag,
		strings.Join(cols, ",\n  "))
}

// GenerateMetaTableDDL generates the _meta table DDL.
func GenerateMetaTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`
}

// sqliteType maps FieldType to SQLite type.
func sqliteType(ft FieldType) string {
	switch ft {
	case FieldTypeInteger:
		return "INTEGER"
	case FieldTypeFloat:
		return "REAL"
	default:
		return "TEXT" // strings, and lists as JSON arrays
	}
}

// sqliteValue converts a Value to a SQLite-compatible value.
func sqliteValue(v Value) (any, error) {
	switch v.Kind() {
	case KindInteger:
		return v.Int(), nil
	case KindFloat:
		return v.Float(), nil
	case KindList:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v.Str(), nil
	}
}

// Export writes a snapshot of the registry to a SQLite database at path,
// one table per known tag. Existing rows are replaced. Returns the number
// of records written.
func (s *Store) Export(path string) (int, error) {
	db, err := openExportDB(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(GenerateMetaTableDDL()); err != nil {
		return 0, fmt.Errorf("creating meta table: %w", err)
	}
	for _, tag := range s.types.Tags() {
		schema, _ := s.types.Lookup(tag)
		if _, err := tx.Exec(GenerateDDL(schema)); err != nil {
			return 0, fmt.Errorf("creating table %s: %w", tag, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", tag)); err != nil {
			return 0, fmt.Errorf("clearing table %s: %w", tag, err)
		}
	}

	n := 0
	for r := range s.records("") {
		if err := insertRecord(tx, r); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", r.Key(), err)
		}
		n++
	}

	if err := setMeta(tx, "source", s.path); err != nil {
		return 0, err
	}
	if err := setMeta(tx, "exported_at", time.Now().Format(time.RFC3339)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing export: %w", err)
	}

	s.log.Debug("registry exported", "path", path, "records", n)
	return n, nil
}

// insertRecord inserts a single record into its tag's table.
func insertRecord(tx *sql.Tx, r *Record) error {
	cols := []string{"id", "created_at", "updated_at"}
	values := []any{r.ID, FormatTimestamp(r.CreatedAt), FormatTimestamp(r.UpdatedAt)}

	declared := make(map[string]bool, len(r.schema.Fields))
	for _, f := range r.schema.Fields {
		declared[f.Name] = true
		v, _ := r.Get(f.Name)
		sv, err := sqliteValue(v)
		if err != nil {
			return err
		}
		cols = append(cols, f.Name)
		values = append(values, sv)
	}

	extra := make(map[string]Value)
	for name, v := range r.Attrs {
		if !declared[name] {
			extra[name] = v
		}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("encoding extra attributes: %w", err)
	}
	cols = append(cols, ColumnExtra)
	values = append(values, string(extraJSON))

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.Tag,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	_, err = tx.Exec(query, values...)
	return err
}

// setMeta stores a key/value pair in the _meta table.
func setMeta(tx *sql.Tx, key, value string) error {
	if _, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}
	return nil
}
