// Package duckdb is an example downstream consumer of the engine's chunk
// stream: it appends each materialised Chunk to a DuckDB table, one column
// per planned field, the way a caller wiring vcfarray into an analytics
// pipeline would.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vcfarray/internal/vcf"
)

// Sink manages a DuckDB connection and a table whose schema mirrors one
// resolved field plan.
type Sink struct {
	db    *sql.DB
	path  string
	table string
}

// Open opens or creates a DuckDB database at path (empty string for
// in-memory) and creates table from plan's columns. Because SQL
// identifiers are case-insensitive, plan.CaseInsensitiveCollisions being
// non-empty is fatal here even though the in-memory plan itself permitted
// it (spec's DuplicateField split: sink-side only).
func Open(path, table string, plan *vcf.Plan) (*Sink, error) {
	if len(plan.CaseInsensitiveCollisions) > 0 {
		return nil, &vcf.ParseError{Kind: vcf.DuplicateField, Message: fmt.Sprintf("columns collide case-insensitively: %v", plan.CaseInsensitiveCollisions)}
	}

	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Sink{db: db, path: path, table: table}
	if err := s.ensureSchema(plan); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Sink) Close() error { return s.db.Close() }

// DB returns the underlying *sql.DB for direct querying.
func (s *Sink) DB() *sql.DB { return s.db }

func (s *Sink) ensureSchema(plan *vcf.Plan) error {
	var cols []string
	for _, f := range plan.Fields {
		if f.Origin == vcf.OriginSamples {
			continue
		}
		cols = append(cols, fmt.Sprintf("%q %s", f.Name, sqlType(f)))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", s.table, strings.Join(cols, ", "))
	_, err := s.db.Exec(stmt)
	return err
}

func sqlType(f *vcf.PlannedField) string {
	switch f.Type.Kind {
	case vcf.DTypeInt, vcf.DTypeGenotypeInt, vcf.DTypeAlleleCount:
		return "BIGINT"
	case vcf.DTypeFloat:
		return "DOUBLE"
	case vcf.DTypeBool:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

// AppendChunk inserts every row of chunk into the sink's table, flattening
// vector fields into DuckDB's native LIST type would be a natural next
// step; for now multi-cell fields are appended as their first cell only,
// matching the teacher's single-valued variant_results row shape.
func (s *Sink) AppendChunk(chunk *vcf.Chunk, plan *vcf.Plan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var names []string
	for _, f := range plan.Fields {
		if f.Origin == vcf.OriginSamples {
			continue
		}
		names = append(names, f.Name)
	}
	placeholders := strings.Repeat("?, ", len(names))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", s.table, placeholders)

	stmt, err := tx.Prepare(insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row := 0; row < chunk.Rows(); row++ {
		args := make([]interface{}, len(names))
		for i, name := range names {
			args[i] = firstCell(chunk.Column(name), row)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func firstCell(col *vcf.Column, row int) interface{} {
	idx := row * col.ItemCount()
	switch {
	case col.Ints != nil:
		return col.Ints[idx]
	case col.Floats != nil:
		return col.Floats[idx]
	case col.Bools != nil:
		return col.Bools[idx]
	case col.Strings != nil:
		return col.Strings[idx]
	default:
		return nil
	}
}
