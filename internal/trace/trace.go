// Package trace stores per-tick signal traces in an SQLite database so that a
// simulation can be inspected after the fact.
package trace

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	chainedqueue "github.com/timzifer/chained_queue"
)

// ErrClosed is returned when recording into a closed recorder.
var ErrClosed = errors.New("trace: recorder is closed")

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	tick      INTEGER PRIMARY KEY,
	valid_in  INTEGER NOT NULL,
	ready_in  INTEGER NOT NULL,
	flush     INTEGER NOT NULL,
	ready_out INTEGER NOT NULL,
	valid_out INTEGER NOT NULL,
	pushed    INTEGER NOT NULL,
	popped    INTEGER NOT NULL,
	usage     INTEGER NOT NULL
)`

// Row is one recorded tick.
type Row struct {
	Tick     uint64
	ValidIn  bool
	ReadyIn  bool
	Flush    bool
	ReadyOut bool
	ValidOut bool
	Pushed   bool
	Popped   bool
	Usage    int
}

// Recorder writes rows inside a single transaction that is committed on Close.
type Recorder struct {
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
}

// Open creates or opens the trace database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create trace schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("begin trace transaction: %w", err)
	}
	insert, err := tx.Prepare(`INSERT OR REPLACE INTO ticks
		(tick, valid_in, ready_in, flush, ready_out, valid_out, pushed, popped, usage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("prepare trace insert: %w", err)
	}

	return &Recorder{db: db, tx: tx, insert: insert}, nil
}

// Record stores one tick.
func (r *Recorder) Record(tick uint64, in chainedqueue.Inputs[uint64], out chainedqueue.Outputs[uint64]) error {
	if r.insert == nil {
		return ErrClosed
	}
	_, err := r.insert.Exec(int64(tick), in.Valid, in.Ready, in.Flush, out.Ready, out.Valid, out.Pushed, out.Popped, out.Usage)
	return err
}

// Close commits the recorded rows and closes the database.
func (r *Recorder) Close() error {
	if r.insert == nil {
		return nil
	}
	r.insert.Close()
	r.insert = nil

	commitErr := r.tx.Commit()
	closeErr := r.db.Close()
	if commitErr != nil {
		return fmt.Errorf("commit trace: %w", commitErr)
	}
	return closeErr
}

// Load reads every row of the trace at path ordered by tick.
func Load(path string) ([]Row, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT tick, valid_in, ready_in, flush, ready_out, valid_out, pushed, popped, usage
		FROM ticks
		ORDER BY tick`)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var (
			row  Row
			tick int64
		)
		if err := rows.Scan(&tick, &row.ValidIn, &row.ReadyIn, &row.Flush, &row.ReadyOut, &row.ValidOut, &row.Pushed, &row.Popped, &row.Usage); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		row.Tick = uint64(tick)
		result = append(result, row)
	}
	return result, rows.Err()
}
