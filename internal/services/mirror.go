package services

import (
	"context"
	"errors"
	"fmt"

	"mapfin/internal/log"
	"mapfin/internal/sheets"
	"mapfin/internal/storage"
)

// RecordSource is the local side of a mirror.
type RecordSource interface {
	Get(ctx context.Context, c sheets.Collection, id string) (storage.Record, error)
	MarkSynced(ctx context.Context, c sheets.Collection, id string, version int64) (bool, error)
	MarkSyncError(ctx context.Context, c sheets.Collection, id string, version int64) error
}

// Mirror copies local records into a remote RowStore, usually Google Sheets.
type Mirror struct {
	source RecordSource
	target sheets.RowStore
	logger *log.Logger
}

func NewMirror(source RecordSource, target sheets.RowStore) *Mirror {
	return &Mirror{source: source, target: target, logger: log.WithComponent(log.ComponentWorker)}
}

// Apply pushes the current state of a record. A message older than the
// stored version still pushes the newest state, which is idempotent.
func (m *Mirror) Apply(ctx context.Context, c sheets.Collection, id string) error {
	rec, err := m.source.Get(ctx, c, id)
	if errors.Is(err, sheets.ErrNotFound) {
		m.logger.WarnContext(ctx, "Record vanished before sync", log.FieldCollection, string(c), log.FieldRecordID, id)
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.push(ctx, rec); err != nil {
		if markErr := m.source.MarkSyncError(ctx, c, id, rec.Version); markErr != nil {
			err = errors.Join(err, markErr)
		}
		return err
	}

	applied, err := m.source.MarkSynced(ctx, c, id, rec.Version)
	if err != nil {
		return err
	}
	op := log.OpUpdate
	if rec.Deleted {
		op = log.OpDelete
	}
	m.logger.InfoContext(ctx, "Record mirrored",
		log.FieldOperation, op,
		log.FieldCollection, string(c),
		log.FieldRecordID, id,
		log.FieldVersion, rec.Version,
		"current", applied)
	return nil
}

func (m *Mirror) push(ctx context.Context, rec storage.Record) error {
	if rec.Deleted {
		err := m.target.Delete(ctx, rec.Collection, rec.ID)
		if err != nil && !errors.Is(err, sheets.ErrNotFound) {
			return fmt.Errorf("delete %s/%s: %w", rec.Collection, rec.ID, err)
		}
		return nil
	}
	_, err := m.target.Update(ctx, rec.Collection, rec.ID, rec.Row)
	if errors.Is(err, sheets.ErrNotFound) {
		_, err = m.target.Insert(ctx, rec.Collection, rec.Row)
	}
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return nil
}
