package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mapfin/internal/log"
	"mapfin/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending records (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of records pushed per poll (default: 20)
	BatchSize int

	// MinAge leaves fresh records to the AMQP path (default: 10s)
	MinAge time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    20,
		MinAge:       10 * time.Second,
	}
}

type PendingSource interface {
	PendingSync(ctx context.Context, limit int) ([]storage.PendingRecord, error)
}

// SyncProcessor is the polling fallback that pushes records still pending
// after AMQP delivery failed or was never attempted.
type SyncProcessor struct {
	pending PendingSource
	mirror  *Mirror
	config  SyncProcessorConfig
	now     func() time.Time
	logger  *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(pending PendingSource, mirror *Mirror, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSyncProcessorConfig().BatchSize
	}
	return &SyncProcessor{
		pending: pending,
		mirror:  mirror,
		config:  config,
		now:     time.Now,
		logger:  log.WithComponent(log.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval.String(),
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it or for ctx.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ProcessBatch(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch pushes one batch and returns how many records were mirrored.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	items, err := p.pending.PendingSync(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to list pending records", log.FieldError, err)
		return 0
	}
	cutoff := p.now().Add(-p.config.MinAge)
	done := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return done
		}
		if item.UpdatedAt.After(cutoff) {
			continue
		}
		if err := p.mirror.Apply(ctx, item.Collection, item.ID); err != nil {
			p.logger.WarnContext(ctx, "Fallback sync failed",
				log.FieldCollection, string(item.Collection),
				log.FieldRecordID, item.ID,
				log.FieldError, err)
			continue
		}
		done++
	}
	if done > 0 {
		p.logger.InfoContext(ctx, "Fallback sync pushed records", log.FieldOperation, log.OpSync, log.FieldCount, done)
	}
	return done
}
