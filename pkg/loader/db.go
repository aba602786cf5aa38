package loader

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"jobtree/pkg/model"
)

// DB handles SQLite-backed snapshots.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the snapshot database at the given path
func OpenDB(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sdb := &DB{db: db}
	if err := sdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT '',
		parent_id TEXT,
		parent_name TEXT,
		parent_kind TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL DEFAULT '',
		channel TEXT NOT NULL DEFAULT '',
		func TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		attempt INTEGER NOT NULL DEFAULT 0,
		max_retries INTEGER NOT NULL DEFAULT 0,
		runner_id TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '',
		created DATETIME NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		expires_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_group_id ON jobs(group_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Groups returns every group row.
func (d *DB) Groups() ([]model.Group, error) {
	rows, err := d.db.Query(`
		SELECT id, name, kind, parent_id, parent_name, parent_kind, active, created_at
		FROM groups
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		var parentID, parentName, parentKind sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.Kind, &parentID, &parentName, &parentKind, &g.Active, &g.CreatedAt); err != nil {
			return nil, err
		}
		if parentID.Valid && parentID.String != "" {
			g.Parent = &model.GroupRef{
				ID:   parentID.String,
				Name: parentName.String,
				Kind: parentKind.String,
			}
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Jobs returns job rows, optionally filtered to a channel.
func (d *DB) Jobs(channel string) ([]model.Job, error) {
	query := `
		SELECT id, group_id, channel, func, status, attempt, max_retries,
		       runner_id, last_error, payload, created, started_at, finished_at, expires_at
		FROM jobs
	`
	args := []any{}
	if channel != "" {
		query += " WHERE channel = ?"
		args = append(args, channel)
	}
	query += " ORDER BY created"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var started, finished, expires sql.NullTime
		if err := rows.Scan(&j.ID, &j.GroupID, &j.Channel, &j.Func, &j.Status, &j.Attempt,
			&j.MaxRetries, &j.RunnerID, &j.LastError, &j.Payload, &j.Created,
			&started, &finished, &expires); err != nil {
			return nil, err
		}
		if started.Valid {
			j.StartedAt = &started.Time
		}
		if finished.Valid {
			j.FinishedAt = &finished.Time
		}
		if expires.Valid {
			j.ExpiresAt = &expires.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// InsertGroup writes one group row, replacing any existing row with the
// same id. Used by snapshot imports and tests.
func (d *DB) InsertGroup(g *model.Group) error {
	var parentID, parentName, parentKind any
	if g.Parent != nil {
		parentID = g.Parent.ID
		parentName = g.Parent.Name
		parentKind = g.Parent.Kind
	}
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO groups (id, name, kind, parent_id, parent_name, parent_kind, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Name, g.Kind, parentID, parentName, parentKind, g.Active, g.CreatedAt)
	return err
}

// InsertJob writes one job row, replacing any existing row with the same id.
func (d *DB) InsertJob(j *model.Job) error {
	var started, finished, expires any
	if j.StartedAt != nil {
		started = *j.StartedAt
	}
	if j.FinishedAt != nil {
		finished = *j.FinishedAt
	}
	if j.ExpiresAt != nil {
		expires = *j.ExpiresAt
	}
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO jobs (id, group_id, channel, func, status, attempt, max_retries,
			runner_id, last_error, payload, created, started_at, finished_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.GroupID, j.Channel, j.Func, j.Status, j.Attempt, j.MaxRetries,
		j.RunnerID, j.LastError, j.Payload, j.Created, started, finished, expires)
	return err
}

// MarkFailed sets a job's status to failed with the given error text and
// a finished timestamp. Used when clearing stuck jobs.
func (d *DB) MarkFailed(j *model.Job) error {
	_, err := d.db.Exec(`
		UPDATE jobs
		SET status = ?, finished_at = ?, last_error = ?
		WHERE id = ?
	`, j.Status, j.FinishedAt, j.LastError, j.ID)
	return err
}
