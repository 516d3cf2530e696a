package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT
);
CREATE TABLE documents (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	slug TEXT NOT NULL
);
CREATE TABLE symbols (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	anchor TEXT NOT NULL,
	document_id INTEGER REFERENCES documents(id),
	uses INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE rules (
	id INTEGER PRIMARY KEY,
	symbol_id INTEGER NOT NULL REFERENCES symbols(id),
	document_id INTEGER REFERENCES documents(id),
	anchor TEXT NOT NULL,
	line INTEGER,
	plain TEXT NOT NULL
);
CREATE TABLE refs (
	rule_id INTEGER NOT NULL REFERENCES rules(id),
	alternative INTEGER NOT NULL,
	element INTEGER NOT NULL,
	name TEXT NOT NULL,
	optional INTEGER NOT NULL DEFAULT 0,
	target_id INTEGER REFERENCES symbols(id),
	anchor TEXT,
	PRIMARY KEY (rule_id, alternative, element)
);
CREATE TABLE diagnostics (
	code TEXT NOT NULL,
	severity TEXT NOT NULL,
	kind TEXT NOT NULL,
	subject TEXT,
	path TEXT,
	line INTEGER,
	col INTEGER,
	message TEXT NOT NULL
);
CREATE INDEX idx_refs_target ON refs(target_id);
CREATE INDEX idx_rules_symbol ON rules(symbol_id);
`

// Open opens a SQLite database with the pure Go driver.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// ExportSQLite writes g into a fresh database at path, replacing any existing
// file. All rows go in one transaction.
func ExportSQLite(ctx context.Context, path string, g Graph) (err error) {
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return fmt.Errorf("remove old export: %w", rmErr)
	}
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertGraph(ctx, tx, g); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertGraph(ctx context.Context, tx *sql.Tx, g Graph) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('book', ?), ('schema', '1')`, g.Book); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	for _, d := range g.Documents {
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents (id, path, slug) VALUES (?, ?, ?)`, d.ID, d.Path, d.Slug); err != nil {
			return fmt.Errorf("insert document %s: %w", d.Path, err)
		}
	}
	for _, s := range g.Symbols {
		if _, err := tx.ExecContext(ctx, `INSERT INTO symbols (id, name, anchor, document_id, uses) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Anchor, nullID(s.DocumentID), s.Uses); err != nil {
			return fmt.Errorf("insert symbol %s: %w", s.Name, err)
		}
	}
	for _, r := range g.Rules {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rules (id, symbol_id, document_id, anchor, line, plain) VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.SymbolID, nullID(r.DocumentID), r.Anchor, r.Line, r.Plain); err != nil {
			return fmt.Errorf("insert rule %d: %w", r.ID, err)
		}
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO refs (rule_id, alternative, element, name, optional, target_id, anchor) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare refs: %w", err)
	}
	defer stmt.Close()
	for _, ref := range g.References {
		var anchor sql.NullString
		if ref.Anchor != "" {
			anchor = sql.NullString{String: ref.Anchor, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, ref.RuleID, ref.Alternative, ref.Element, ref.Name, ref.Optional, nullID(ref.TargetID), anchor); err != nil {
			return fmt.Errorf("insert reference %s: %w", ref.Name, err)
		}
	}
	for _, d := range g.Diagnostics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO diagnostics (code, severity, kind, subject, path, line, col, message) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Code, d.Severity, d.Kind, d.Subject, d.Path, d.Line, d.Col, d.Message); err != nil {
			return fmt.Errorf("insert diagnostic %s: %w", d.Code, err)
		}
	}
	return nil
}

func nullID(id int) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}
