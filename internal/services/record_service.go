package services

import (
	"context"
	"errors"
	"fmt"

	"mapfin/internal/amqp"
	"mapfin/internal/log"
	"mapfin/internal/sheets"
	"mapfin/internal/storage"
)

// VersionedStore is the local store the service writes to first.
type VersionedStore interface {
	sheets.RowReader
	Create(ctx context.Context, c sheets.Collection, row sheets.Row) (storage.Record, error)
	Replace(ctx context.Context, c sheets.Collection, id string, row sheets.Row) (storage.Record, error)
	Remove(ctx context.Context, c sheets.Collection, id string) (storage.Record, error)
}

type Publisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error
}

// RecordService orchestrates writes across SQLite and AMQP. It satisfies
// sheets.RowStore so the proxy can serve it like any other backend.
type RecordService struct {
	store     VersionedStore
	publisher Publisher
	logger    *log.Logger
}

var _ sheets.RowStore = (*RecordService)(nil)

// NewRecordService accepts a nil publisher; records then wait for the
// polling sync.
func NewRecordService(store VersionedStore, publisher Publisher) *RecordService {
	return &RecordService{store: store, publisher: publisher, logger: log.WithComponent(log.ComponentRecords)}
}

func (s *RecordService) FetchAll(ctx context.Context, c sheets.Collection) ([]sheets.Row, error) {
	return s.store.FetchAll(ctx, c)
}

func (s *RecordService) Insert(ctx context.Context, c sheets.Collection, row sheets.Row) (sheets.Row, error) {
	rec, err := s.store.Create(ctx, c, row)
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	s.announce(ctx, rec, amqp.OpUpsert)
	return rec.Row, nil
}

func (s *RecordService) Update(ctx context.Context, c sheets.Collection, id string, row sheets.Row) (sheets.Row, error) {
	rec, err := s.store.Replace(ctx, c, id, row)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	s.announce(ctx, rec, amqp.OpUpsert)
	return rec.Row, nil
}

func (s *RecordService) Delete(ctx context.Context, c sheets.Collection, id string) error {
	rec, err := s.store.Remove(ctx, c, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.announce(ctx, rec, amqp.OpDelete)
	return nil
}

// announce publishes the change. Failures are logged only: the record is
// already saved and stays pending for the polling sync.
func (s *RecordService) announce(ctx context.Context, rec storage.Record, op amqp.Op) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangeMessage(string(rec.Collection), rec.ID, op, rec.Version)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		level := s.logger.ErrorContext
		if errors.Is(err, amqp.ErrCircuitOpen) {
			level = s.logger.WarnContext
		}
		level(ctx, "Failed to publish record change",
			log.FieldCollection, string(rec.Collection),
			log.FieldRecordID, rec.ID,
			log.FieldVersion, rec.Version,
			log.FieldError, err)
	}
}
