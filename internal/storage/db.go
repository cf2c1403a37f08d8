package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mdsections/internal"
)

type DB struct {
	conn *sql.DB
}

type RunMeta struct {
	Source   string
	Column   string
	Headings []string
}

type RunRow struct {
	ID        string
	Source    string
	Column    string
	Headings  []string
	Columns   []string
	RowCount  int
	CreatedAt string
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  columnName TEXT NOT NULL,
  headingsJson TEXT NOT NULL,
  columnsJson TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS export_rows (
  runId TEXT NOT NULL,
  position INTEGER NOT NULL,
  sourceIndex INTEGER NOT NULL,
  PRIMARY KEY(runId, position),
  FOREIGN KEY(runId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS export_cells (
  runId TEXT NOT NULL,
  position INTEGER NOT NULL,
  columnName TEXT NOT NULL,
  value TEXT NOT NULL,
  PRIMARY KEY(runId, position, columnName),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_export_cells_column ON export_cells(runId, columnName);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveFrame stores frame as a new run. Absent cells are not written, so they
// stay distinguishable from empty bodies when the run is loaded back.
func (d *DB) SaveFrame(meta RunMeta, frame internal.Frame) (string, error) {
	runID := uuid.Must(uuid.NewV7()).String()
	headings := meta.Headings
	if headings == nil {
		headings = []string{}
	}
	columns := frame.Columns
	if columns == nil {
		columns = []string{}
	}
	headingsJSON, _ := json.Marshal(headings)
	columnsJSON, _ := json.Marshal(columns)

	tx, err := d.conn.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO runs (id, source, columnName, headingsJson, columnsJson, rowCount)
VALUES (?, ?, ?, ?, ?, ?)
`, runID, meta.Source, meta.Column, string(headingsJSON), string(columnsJSON), len(frame.Rows)); err != nil {
		return "", err
	}

	rowStmt, err := tx.Prepare(`INSERT INTO export_rows (runId, position, sourceIndex) VALUES (?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer rowStmt.Close()

	cellStmt, err := tx.Prepare(`INSERT INTO export_cells (runId, position, columnName, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer cellStmt.Close()

	for pos, row := range frame.Rows {
		if _, err := rowStmt.Exec(runID, pos, row.SourceIndex); err != nil {
			return "", err
		}
		for _, col := range frame.Columns {
			value, ok := row.Cells[col]
			if !ok {
				continue
			}
			if _, err := cellStmt.Exec(runID, pos, col, value); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, source, columnName, headingsJson, columnsJson, rowCount, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		row, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetRun(id string) (*RunRow, error) {
	row, err := scanRun(d.conn.QueryRow(`
SELECT id, source, columnName, headingsJson, columnsJson, rowCount, createdAt
FROM runs WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LoadFrame rebuilds the frame saved under runID with its original column
// and row order.
func (d *DB) LoadFrame(runID string) (internal.Frame, error) {
	run, err := d.GetRun(runID)
	if err != nil {
		return internal.Frame{}, err
	}
	if run == nil {
		return internal.Frame{}, fmt.Errorf("run not found: %s", runID)
	}

	frame := internal.Frame{Columns: run.Columns, Rows: make([]internal.ExportRow, 0, run.RowCount)}
	rows, err := d.conn.Query(`SELECT sourceIndex FROM export_rows WHERE runId = ? ORDER BY position ASC`, runID)
	if err != nil {
		return internal.Frame{}, err
	}
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			_ = rows.Close()
			return internal.Frame{}, err
		}
		frame.Rows = append(frame.Rows, internal.ExportRow{SourceIndex: idx, Cells: map[string]string{}})
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return internal.Frame{}, err
	}

	cells, err := d.conn.Query(`SELECT position, columnName, value FROM export_cells WHERE runId = ?`, runID)
	if err != nil {
		return internal.Frame{}, err
	}
	defer cells.Close()
	for cells.Next() {
		var pos int
		var col, value string
		if err := cells.Scan(&pos, &col, &value); err != nil {
			return internal.Frame{}, err
		}
		if pos >= 0 && pos < len(frame.Rows) {
			frame.Rows[pos].Cells[col] = value
		}
	}
	return frame, cells.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRow, error) {
	var row RunRow
	var headingsJSON, columnsJSON string
	if err := s.Scan(&row.ID, &row.Source, &row.Column, &headingsJSON, &columnsJSON, &row.RowCount, &row.CreatedAt); err != nil {
		return RunRow{}, err
	}
	if err := json.Unmarshal([]byte(headingsJSON), &row.Headings); err != nil {
		return RunRow{}, fmt.Errorf("run %s: decode headings: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(columnsJSON), &row.Columns); err != nil {
		return RunRow{}, fmt.Errorf("run %s: decode columns: %w", row.ID, err)
	}
	return row, nil
}
