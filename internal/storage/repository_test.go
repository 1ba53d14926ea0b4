package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	ports "mapfin/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "mapfin.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Create(ctx, ports.Expenses, ports.Row{"date": "2024-12-01", "inr_amount": "500"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Version != 1 || first.SyncStatus != SyncPending {
		t.Fatalf("unexpected new record: %+v", first)
	}
	if _, err := repo.Insert(ctx, ports.Expenses, ports.Row{"id": "manual", "inr_amount": "10"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows, err := repo.FetchAll(ctx, ports.Expenses)
	if err != nil || len(rows) != 2 || rows[0].ID() != first.ID || rows[1].ID() != "manual" {
		t.Fatalf("FetchAll order: %v %v", rows, err)
	}

	updated, err := repo.Replace(ctx, ports.Expenses, first.ID, ports.Row{"inr_amount": "750"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if updated.Version != 2 || updated.Row["inr_amount"] != "750" || updated.Row.ID() != first.ID {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if err := repo.Delete(ctx, ports.Expenses, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, _ = repo.FetchAll(ctx, ports.Expenses)
	if len(rows) != 1 {
		t.Fatalf("deleted row still listed: %v", rows)
	}
	tomb, err := repo.Get(ctx, ports.Expenses, first.ID)
	if err != nil || !tomb.Deleted || tomb.Version != 3 {
		t.Fatalf("unexpected tombstone: %+v %v", tomb, err)
	}

	if err := repo.Delete(ctx, ports.Expenses, first.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, ports.Expenses, "nope", ports.Row{}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.FetchAll(ctx, "Nope"); !errors.Is(err, ports.ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestRepositoryDuplicateAndRevive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Create(ctx, ports.Tags, ports.Row{"id": "t1", "name": "Trip"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, ports.Tags, ports.Row{"id": "t1", "name": "Again"}); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if err := repo.Delete(ctx, ports.Tags, "t1"); err != nil {
		t.Fatal(err)
	}
	revived, err := repo.Create(ctx, ports.Tags, ports.Row{"id": "t1", "name": "Back"})
	if err != nil {
		t.Fatalf("revive: %v", err)
	}
	if revived.Deleted || revived.Version != 3 || revived.Row["name"] != "Back" {
		t.Fatalf("unexpected revived record: %+v", revived)
	}
}

func TestRepositorySyncBookkeeping(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	a, _ := repo.Create(ctx, ports.Goals, ports.Row{"name": "House"})
	b, _ := repo.Create(ctx, ports.Budgets, ports.Row{"category": "groceries"})

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil || len(pending) != 2 || pending[0].ID != a.ID {
		t.Fatalf("PendingSync: %+v %v", pending, err)
	}

	// A write after the push keeps the record pending.
	if _, err := repo.Replace(ctx, ports.Goals, a.ID, ports.Row{"name": "Bigger house"}); err != nil {
		t.Fatal(err)
	}
	applied, err := repo.MarkSynced(ctx, ports.Goals, a.ID, 1)
	if err != nil || applied {
		t.Fatalf("stale MarkSynced applied=%v err=%v", applied, err)
	}
	if applied, _ := repo.MarkSynced(ctx, ports.Goals, a.ID, 2); !applied {
		t.Fatal("current version should be marked")
	}
	if err := repo.MarkSyncError(ctx, ports.Budgets, b.ID, 1); err != nil {
		t.Fatal(err)
	}

	stats, err := repo.SyncStats(ctx)
	if err != nil || stats[SyncSynced] != 1 || stats[SyncError] != 1 {
		t.Fatalf("SyncStats: %v %v", stats, err)
	}
	pending, _ = repo.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Fatalf("errored records should be retried: %+v", pending)
	}

	v, dirty, err := SchemaVersion(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil || dirty || v != 0 {
		t.Fatalf("fresh schema version: %d %v %v", v, dirty, err)
	}
}
