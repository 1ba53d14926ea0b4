package sheets

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mapfin/internal/core"
	"mapfin/internal/log"
)

// Dataset is every collection decoded at one point in time.
type Dataset struct {
	People      []core.Person
	Expenses    []core.Expense
	NetWorth    []core.NetWorthEntry
	Liabilities []core.Liability
	Budgets     []core.Budget
	Goals       []core.Goal
	Income      []core.Income
	Cards       []core.Card
	Tags        []core.Tag
	// Skipped counts malformed rows per collection.
	Skipped map[Collection]int
}

// Loader pulls raw rows from a RowReader and decodes them. Each call is an
// explicit fetch; nothing is cached here.
type Loader struct {
	store  RowReader
	logger *log.Logger
}

func NewLoader(store RowReader) *Loader {
	return &Loader{store: store, logger: log.WithComponent(log.ComponentLoader)}
}

func load[T any](ctx context.Context, l *Loader, c Collection, decode func(Row) (T, error)) ([]T, int, error) {
	rows, err := l.store.FetchAll(ctx, c)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", c, err)
	}
	out := make([]T, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		v, err := decode(row)
		if err != nil {
			skipped++
			l.logger.WarnContext(ctx, "Skipping malformed row",
				log.FieldCollection, string(c),
				log.FieldRecordID, row.ID(),
				"row", i+2, // header is row 1
				log.FieldError, err)
			continue
		}
		out = append(out, v)
	}
	return out, skipped, nil
}

func (l *Loader) Expenses(ctx context.Context) ([]core.Expense, error) {
	v, _, err := load(ctx, l, Expenses, DecodeExpense)
	return v, err
}

func (l *Loader) NetWorth(ctx context.Context) ([]core.NetWorthEntry, error) {
	v, _, err := load(ctx, l, NetWorthEntries, DecodeNetWorthEntry)
	return v, err
}

func (l *Loader) Liabilities(ctx context.Context) ([]core.Liability, error) {
	v, _, err := load(ctx, l, Liabilities, DecodeLiability)
	return v, err
}

func (l *Loader) Budgets(ctx context.Context) ([]core.Budget, error) {
	v, _, err := load(ctx, l, Budgets, DecodeBudget)
	return v, err
}

func (l *Loader) Goals(ctx context.Context) ([]core.Goal, error) {
	v, _, err := load(ctx, l, Goals, DecodeGoal)
	return v, err
}

func (l *Loader) Income(ctx context.Context) ([]core.Income, error) {
	v, _, err := load(ctx, l, Income, DecodeIncome)
	return v, err
}

func (l *Loader) People(ctx context.Context) ([]core.Person, error) {
	v, _, err := load(ctx, l, People, DecodePerson)
	return v, err
}

func (l *Loader) Cards(ctx context.Context) ([]core.Card, error) {
	v, _, err := load(ctx, l, Cards, DecodeCard)
	return v, err
}

func (l *Loader) Tags(ctx context.Context) ([]core.Tag, error) {
	v, _, err := load(ctx, l, Tags, DecodeTag)
	return v, err
}

// LoadAll fetches every collection concurrently. Any fetch error cancels
// the rest and is returned; malformed rows only bump Skipped.
func (l *Loader) LoadAll(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	skipped := make([]int, len(Collections))
	g, gctx := errgroup.WithContext(ctx)

	// Each goroutine writes to its own field and its own skipped slot.
	g.Go(func() (err error) {
		ds.People, skipped[0], err = load(gctx, l, People, DecodePerson)
		return err
	})
	g.Go(func() (err error) {
		ds.NetWorth, skipped[1], err = load(gctx, l, NetWorthEntries, DecodeNetWorthEntry)
		return err
	})
	g.Go(func() (err error) {
		ds.Liabilities, skipped[2], err = load(gctx, l, Liabilities, DecodeLiability)
		return err
	})
	g.Go(func() (err error) {
		ds.Expenses, skipped[3], err = load(gctx, l, Expenses, DecodeExpense)
		return err
	})
	g.Go(func() (err error) {
		ds.Income, skipped[4], err = load(gctx, l, Income, DecodeIncome)
		return err
	})
	g.Go(func() (err error) {
		ds.Budgets, skipped[5], err = load(gctx, l, Budgets, DecodeBudget)
		return err
	})
	g.Go(func() (err error) {
		ds.Goals, skipped[6], err = load(gctx, l, Goals, DecodeGoal)
		return err
	})
	g.Go(func() (err error) {
		ds.Cards, skipped[7], err = load(gctx, l, Cards, DecodeCard)
		return err
	})
	g.Go(func() (err error) {
		ds.Tags, skipped[8], err = load(gctx, l, Tags, DecodeTag)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	ds.Skipped = make(map[Collection]int)
	for i, n := range skipped {
		if n > 0 {
			ds.Skipped[Collections[i]] = n
		}
	}
	l.logger.DebugContext(ctx, "Dataset loaded",
		log.FieldOperation, log.OpLoad,
		"expenses", len(ds.Expenses),
		"net_worth_entries", len(ds.NetWorth))
	return ds, nil
}
