// Package store keeps batch progress in SQLite so an interrupted run can
// resume without re-resolving finished records.
//
// Results are scoped by source: a digest of the input file contents. One
// database can hold several inputs; a run only sees and overwrites rows of
// its own source.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"shade-resolver/internal/resolve/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	source     TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	key        TEXT NOT NULL,
	status     TEXT NOT NULL,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (source, seq)
);
CREATE INDEX IF NOT EXISTS results_source_key ON results (source, key);
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	source     TEXT NOT NULL,
	path       TEXT NOT NULL
);`

// Checkpoint is safe for concurrent use.
type Checkpoint struct {
	db *sql.DB
}

// Run — прогон по одному источнику; все чтения и записи в его пределах.
type Run struct {
	c      *Checkpoint
	ID     string
	Source string
	// Previous: сколько прогонов по этому источнику уже было
	Previous int
}

// Row — сохранённый результат одной записи.
type Row struct {
	Key     string
	Seq     int
	Status  string
	Payload map[string]any
}

// Open creates the schema if needed. path may be ":memory:".
func Open(ctx context.Context, path string) (*Checkpoint, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint %s: %w", path, err)
	}
	// один писатель: sqlite всё равно сериализует запись
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init checkpoint schema: %w", err)
	}
	return &Checkpoint{db: db}, nil
}

func (c *Checkpoint) Close() error { return c.db.Close() }

// Digest identifies an input file by its contents.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BeginRun records a run over source (see Digest); path is informational.
func (c *Checkpoint) BeginRun(ctx context.Context, id, source, path string) (*Run, error) {
	if source == "" {
		return nil, fmt.Errorf("begin run: empty source")
	}
	r := &Run{c: c, ID: id, Source: source}
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE source = ?`, source).Scan(&r.Previous); err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source, path) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), source, path)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return r, nil
}

// Save upserts the outcome of the record at input position it.Index.
func (r *Run) Save(ctx context.Context, it model.BatchItem) error {
	status := "malformed"
	if it.Resolved != nil {
		status = string(it.Resolved.MatchStatus)
	}
	payload, err := json.Marshal(it.Output())
	if err != nil {
		return fmt.Errorf("encode %q: %w", it.Key, err)
	}
	_, err = r.c.db.ExecContext(ctx, `
		INSERT INTO results (source, seq, key, status, payload, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, seq) DO UPDATE SET key = excluded.key, status = excluded.status,
			payload = excluded.payload, updated_at = excluded.updated_at`,
		r.Source, it.Index, it.Key, status, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save %q: %w", it.Key, err)
	}
	return nil
}

// Keys returns the keys of processed, well-formed records of this source.
func (r *Run) Keys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.c.db.QueryContext(ctx,
		`SELECT DISTINCT key FROM results WHERE source = ? AND status != 'malformed'`, r.Source)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out[k] = struct{}{}
	}
	return out, rows.Err()
}

// All returns this source's rows ordered by input position.
func (r *Run) All(ctx context.Context) ([]Row, error) {
	rows, err := r.c.db.QueryContext(ctx,
		`SELECT key, seq, status, payload FROM results WHERE source = ? ORDER BY seq`, r.Source)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row Row
			raw string
		)
		if err := rows.Scan(&row.Key, &row.Seq, &row.Status, &raw); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&row.Payload); err != nil {
			return nil, fmt.Errorf("decode %q: %w", row.Key, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Item rebuilds a batch item from a stored row, enough for summaries and
// the non-match report of a resumed run.
func (r Row) Item() model.BatchItem {
	rec, err := model.ParseRecord(r.Seq, r.Payload)
	it := model.BatchItem{Index: r.Seq, Key: r.Key, Record: rec}
	if err != nil || r.Status == "malformed" {
		it.Err = err
		if it.Err == nil {
			it.Err = &model.MalformedRecordError{Index: r.Seq, Field: model.FieldBrand, Cause: "stored as malformed"}
		}
		return it
	}
	it.Resolved = &model.ResolvedRecord{MatchStatus: model.MatchStatus(r.Status)}
	return it
}
