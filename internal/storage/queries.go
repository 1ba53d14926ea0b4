package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// record is one stored row as it sits in the table.
type record struct {
	Collection string
	ID         string
	Data       string
	Version    int64
	SyncStatus string
	CreatedAt  int64
	UpdatedAt  int64
	DeletedAt  sql.NullInt64
}

const recordColumns = `collection, id, data, version, sync_status, created_at, updated_at, deleted_at`

func scanRecord(row interface{ Scan(...any) error }) (record, error) {
	var r record
	err := row.Scan(&r.Collection, &r.ID, &r.Data, &r.Version, &r.SyncStatus, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt)
	return r, err
}

const listLive = `SELECT ` + recordColumns + ` FROM records
WHERE collection = ? AND deleted_at IS NULL
ORDER BY position`

func (q *Queries) ListLive(ctx context.Context, collection string) ([]record, error) {
	rows, err := q.db.QueryContext(ctx, listLive, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getRecord = `SELECT ` + recordColumns + ` FROM records WHERE collection = ? AND id = ?`

func (q *Queries) GetRecord(ctx context.Context, collection, id string) (record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, getRecord, collection, id))
}

// insertRecord revives a tombstone with the same key instead of failing.
const insertRecord = `INSERT INTO records (collection, id, position, data, version, sync_status, created_at, updated_at)
VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM records WHERE collection = ?), ?, 1, 'pending', ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET
    data = excluded.data,
    version = records.version + 1,
    sync_status = 'pending',
    updated_at = excluded.updated_at,
    deleted_at = NULL
WHERE records.deleted_at IS NOT NULL`

type InsertRecordParams struct {
	Collection string
	ID         string
	Data       string
	Now        int64
}

// InsertRecord reports false when a live record with the key exists.
func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertRecord, arg.Collection, arg.ID, arg.Collection, arg.Data, arg.Now, arg.Now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const updateRecord = `UPDATE records
SET data = ?, version = version + 1, sync_status = 'pending', updated_at = ?
WHERE collection = ? AND id = ? AND deleted_at IS NULL`

type UpdateRecordParams struct {
	Collection string
	ID         string
	Data       string
	Now        int64
}

func (q *Queries) UpdateRecord(ctx context.Context, arg UpdateRecordParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecord, arg.Data, arg.Now, arg.Collection, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const softDeleteRecord = `UPDATE records
SET deleted_at = ?, version = version + 1, sync_status = 'pending', updated_at = ?
WHERE collection = ? AND id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteRecord(ctx context.Context, collection, id string, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteRecord, now, now, collection, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPending = `SELECT ` + recordColumns + ` FROM records
WHERE sync_status IN ('pending', 'error')
ORDER BY updated_at, collection, id
LIMIT ?`

func (q *Queries) ListPending(ctx context.Context, limit int64) ([]record, error) {
	rows, err := q.db.QueryContext(ctx, listPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Only the version that was pushed may be marked; a newer write stays pending.
const markSynced = `UPDATE records SET sync_status = 'synced'
WHERE collection = ? AND id = ? AND version = ?`

func (q *Queries) MarkSynced(ctx context.Context, collection, id string, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSynced, collection, id, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markSyncError = `UPDATE records SET sync_status = 'error'
WHERE collection = ? AND id = ? AND version = ?`

func (q *Queries) MarkSyncError(ctx context.Context, collection, id string, version int64) error {
	_, err := q.db.ExecContext(ctx, markSyncError, collection, id, version)
	return err
}

const countByStatus = `SELECT sync_status, COUNT(*) FROM records GROUP BY sync_status`

func (q *Queries) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var s string
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
