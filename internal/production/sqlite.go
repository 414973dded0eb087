package production

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/comalice/fsmx"
)

//go:embed schema.sql
var schemaSQL string

// SQLitePersister stores snapshots in a SQLite database, one row per snapshot and
// one row per instance.
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Save replaces whatever is stored under the snapshot's key.
func (p *SQLitePersister) Save(ctx context.Context, snapshot fsmx.MachineSnapshot) (err error) {
	key := SnapshotKey(snapshot)
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (key, machine_id, name, taken_at) VALUES (?, ?, ?, ?)`,
		key, snapshot.MachineID.String(), snapshot.Name, snapshot.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert snapshot %q: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_instances (snapshot_key, position, instance_id, bound, state, state_name) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for i, is := range snapshot.Instances {
		if _, err = stmt.ExecContext(ctx, key, i, is.ID.String(), is.Bound, int(is.State), is.StateName); err != nil {
			return fmt.Errorf("insert instance %s: %w", is.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the snapshot stored under key.
func (p *SQLitePersister) Load(ctx context.Context, key string) (fsmx.MachineSnapshot, error) {
	var (
		snapshot  fsmx.MachineSnapshot
		machineID string
		takenAt   string
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT machine_id, name, taken_at FROM snapshots WHERE key = ?`, key).
		Scan(&machineID, &snapshot.Name, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fsmx.MachineSnapshot{}, fmt.Errorf("%q: %w", key, ErrSnapshotNotFound)
	}
	if err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("query snapshot %q: %w", key, err)
	}
	if snapshot.MachineID, err = uuid.Parse(machineID); err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("snapshot %q machine id: %w", key, err)
	}
	if snapshot.Timestamp, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("snapshot %q timestamp: %w", key, err)
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT instance_id, bound, state, state_name FROM snapshot_instances WHERE snapshot_key = ? ORDER BY position`, key)
	if err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("query instances %q: %w", key, err)
	}
	defer rows.Close()

	snapshot.Instances = []fsmx.InstanceSnapshot{}
	for rows.Next() {
		var (
			id    string
			is    fsmx.InstanceSnapshot
			state int
		)
		if err := rows.Scan(&id, &is.Bound, &state, &is.StateName); err != nil {
			return fsmx.MachineSnapshot{}, fmt.Errorf("scan instance: %w", err)
		}
		if is.ID, err = uuid.Parse(id); err != nil {
			return fsmx.MachineSnapshot{}, fmt.Errorf("instance id %q: %w", id, err)
		}
		is.State = fsmx.StateID(state)
		snapshot.Instances = append(snapshot.Instances, is)
	}
	if err := rows.Err(); err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("iterate instances: %w", err)
	}
	return snapshot, nil
}

// Keys lists stored snapshot keys in order.
func (p *SQLitePersister) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
