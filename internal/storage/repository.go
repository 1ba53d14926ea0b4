// Package storage is the local SQLite store. Records keep a version and a
// sync status so the worker can mirror them into Google Sheets later.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mapfin/internal/log"
	ports "mapfin/internal/sheets"

	_ "modernc.org/sqlite"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// Record is a stored row with its bookkeeping.
type Record struct {
	Collection ports.Collection
	ID         string
	Row        ports.Row
	Version    int64
	SyncStatus SyncStatus
	Deleted    bool
	UpdatedAt  time.Time
}

// PendingRecord is the minimum needed to enqueue a sync.
type PendingRecord struct {
	Collection ports.Collection
	ID         string
	Version    int64
	Deleted    bool
	UpdatedAt  time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
	logger  *log.Logger
}

var _ ports.RowStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite away from SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
		logger:  log.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func known(c ports.Collection) error {
	_, err := ports.ParseCollection(string(c))
	return err
}

func decodeRecord(rec record) (Record, error) {
	var row ports.Row
	if err := json.Unmarshal([]byte(rec.Data), &row); err != nil {
		return Record{}, fmt.Errorf("decode record %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return Record{
		Collection: ports.Collection(rec.Collection),
		ID:         rec.ID,
		Row:        row,
		Version:    rec.Version,
		SyncStatus: SyncStatus(rec.SyncStatus),
		Deleted:    rec.DeletedAt.Valid,
		UpdatedAt:  time.UnixMilli(rec.UpdatedAt).UTC(),
	}, nil
}

func (r *SQLiteRepository) FetchAll(ctx context.Context, c ports.Collection) ([]ports.Row, error) {
	if err := known(c); err != nil {
		return nil, err
	}
	recs, err := r.queries.ListLive(ctx, string(c))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	out := make([]ports.Row, 0, len(recs))
	for _, rec := range recs {
		d, err := decodeRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d.Row)
	}
	return out, nil
}

// Get returns the record including tombstones.
func (r *SQLiteRepository) Get(ctx context.Context, c ports.Collection, id string) (Record, error) {
	rec, err := r.queries.GetRecord(ctx, string(c), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ports.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	return decodeRecord(rec)
}

// Create stores a new record and returns it with its version.
func (r *SQLiteRepository) Create(ctx context.Context, c ports.Collection, row ports.Row) (Record, error) {
	if err := known(c); err != nil {
		return Record{}, err
	}
	row = ports.PrepareInsert(c, row)
	data, err := json.Marshal(row)
	if err != nil {
		return Record{}, err
	}
	ok, err := r.queries.InsertRecord(ctx, InsertRecordParams{
		Collection: string(c),
		ID:         row.ID(),
		Data:       string(data),
		Now:        r.now().UnixMilli(),
	})
	if err != nil {
		return Record{}, fmt.Errorf("insert %s: %w", c, err)
	}
	if !ok {
		return Record{}, fmt.Errorf("insert %s: duplicate id %q", c, row.ID())
	}
	return r.Get(ctx, c, row.ID())
}

// Replace overwrites a live record and bumps its version.
func (r *SQLiteRepository) Replace(ctx context.Context, c ports.Collection, id string, row ports.Row) (Record, error) {
	if err := known(c); err != nil {
		return Record{}, err
	}
	data, err := json.Marshal(ports.PrepareUpdate(id, row))
	if err != nil {
		return Record{}, err
	}
	n, err := r.queries.UpdateRecord(ctx, UpdateRecordParams{
		Collection: string(c),
		ID:         id,
		Data:       string(data),
		Now:        r.now().UnixMilli(),
	})
	if err != nil {
		return Record{}, fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	if n == 0 {
		return Record{}, ports.ErrNotFound
	}
	return r.Get(ctx, c, id)
}

// Remove soft deletes a record; the tombstone is synced like any write.
func (r *SQLiteRepository) Remove(ctx context.Context, c ports.Collection, id string) (Record, error) {
	if err := known(c); err != nil {
		return Record{}, err
	}
	n, err := r.queries.SoftDeleteRecord(ctx, string(c), id, r.now().UnixMilli())
	if err != nil {
		return Record{}, fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	if n == 0 {
		return Record{}, ports.ErrNotFound
	}
	return r.Get(ctx, c, id)
}

func (r *SQLiteRepository) Insert(ctx context.Context, c ports.Collection, row ports.Row) (ports.Row, error) {
	rec, err := r.Create(ctx, c, row)
	return rec.Row, err
}

func (r *SQLiteRepository) Update(ctx context.Context, c ports.Collection, id string, row ports.Row) (ports.Row, error) {
	rec, err := r.Replace(ctx, c, id, row)
	return rec.Row, err
}

func (r *SQLiteRepository) Delete(ctx context.Context, c ports.Collection, id string) error {
	_, err := r.Remove(ctx, c, id)
	return err
}

// PendingSync lists records still waiting to reach Google Sheets, oldest
// first. Records that failed before are retried.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingRecord, error) {
	recs, err := r.queries.ListPending(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	out := make([]PendingRecord, len(recs))
	for i, rec := range recs {
		out[i] = PendingRecord{
			Collection: ports.Collection(rec.Collection),
			ID:         rec.ID,
			Version:    rec.Version,
			Deleted:    rec.DeletedAt.Valid,
			UpdatedAt:  time.UnixMilli(rec.UpdatedAt).UTC(),
		}
	}
	return out, nil
}

// MarkSynced flags version of the record as mirrored. It reports false when
// the record moved on to a newer version meanwhile.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, c ports.Collection, id string, version int64) (bool, error) {
	n, err := r.queries.MarkSynced(ctx, string(c), id, version)
	if err != nil {
		return false, fmt.Errorf("mark synced: %w", err)
	}
	r.logger.DebugContext(ctx, "Record marked as synced",
		log.FieldCollection, string(c), log.FieldRecordID, id, log.FieldVersion, version, "applied", n > 0)
	return n > 0, nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, c ports.Collection, id string, version int64) error {
	if err := r.queries.MarkSyncError(ctx, string(c), id, version); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	r.logger.WarnContext(ctx, "Record marked with sync error",
		log.FieldCollection, string(c), log.FieldRecordID, id, log.FieldVersion, version)
	return nil
}

// SyncStats counts records per sync status.
func (r *SQLiteRepository) SyncStats(ctx context.Context) (map[SyncStatus]int64, error) {
	raw, err := r.queries.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	out := make(map[SyncStatus]int64, len(raw))
	for k, v := range raw {
		out[SyncStatus(k)] = v
	}
	return out, nil
}
