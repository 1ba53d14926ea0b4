// Package worker mirrors locally stored records into Google Sheets as
// change messages arrive.
package worker

import (
	"context"
	"fmt"

	"mapfin/internal/amqp"
	"mapfin/internal/log"
	"mapfin/internal/services"
	"mapfin/internal/sheets"
)

// Consumer delivers record change messages until ctx ends.
type Consumer interface {
	ConsumeRecordChanges(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker handles synchronization of records from SQLite to Google Sheets
type SyncWorker struct {
	mirror    *services.Mirror
	pending   services.PendingSource
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(mirror *services.Mirror, pending services.PendingSource, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &SyncWorker{
		mirror:    mirror,
		pending:   pending,
		batchSize: batchSize,
		logger:    log.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordChange processes a single message. Returning an error makes
// the consumer requeue it.
func (w *SyncWorker) HandleRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	c, err := sheets.ParseCollection(msg.Collection)
	if err != nil {
		// Unknown collections can never succeed; drop instead of requeueing.
		w.logger.ErrorContext(ctx, "Dropping message for unknown collection",
			log.FieldCollection, msg.Collection, log.FieldRecordID, msg.ID)
		return nil
	}
	w.logger.DebugContext(ctx, "Processing record change",
		log.FieldCollection, msg.Collection,
		log.FieldRecordID, msg.ID,
		log.FieldVersion, msg.Version,
		log.FieldOperation, string(msg.Op))
	if err := w.mirror.Apply(ctx, c, msg.ID); err != nil {
		return fmt.Errorf("mirror %s/%s: %w", c, msg.ID, err)
	}
	return nil
}

// StartupSyncCheck pushes records left pending while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	items, err := w.pending.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(items) == 0 {
		w.logger.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	synced, failed := 0, 0
	for _, item := range items {
		if err := w.mirror.Apply(ctx, item.Collection, item.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync record during startup",
				log.FieldCollection, string(item.Collection),
				log.FieldRecordID, item.ID,
				log.FieldError, err)
			failed++
			continue
		}
		synced++
	}
	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(items),
		"synced", synced,
		"errors", failed)
	return nil
}

// Run performs the startup check and then consumes until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.StartupSyncCheck(ctx); err != nil {
		w.logger.WarnContext(ctx, "Startup sync check failed", log.FieldError, err)
	}
	return consumer.ConsumeRecordChanges(ctx, w.HandleRecordChange)
}
