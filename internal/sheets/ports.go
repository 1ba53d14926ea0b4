// Package sheets defines the row level persistence port shared by every
// backend, plus the loader that decodes raw rows into core records.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Collection names one sheet (or table) of the workbook.
type Collection string

const (
	People          Collection = "People"
	NetWorthEntries Collection = "NetWorthEntries"
	Liabilities     Collection = "Liabilities"
	Expenses        Collection = "Expenses"
	Income          Collection = "Income"
	Budgets         Collection = "Budgets"
	Goals           Collection = "Goals"
	Cards           Collection = "Cards"
	Tags            Collection = "Tags"
)

// Collections lists every known collection in a stable order.
var Collections = []Collection{People, NetWorthEntries, Liabilities, Expenses, Income, Budgets, Goals, Cards, Tags}

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// ParseCollection matches s against the known collections ignoring case,
// so both "Expenses" and "expenses" resolve.
func ParseCollection(s string) (Collection, error) {
	s = strings.TrimSpace(s)
	for _, c := range Collections {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
}

// NewID returns a fresh record id prefixed with the lower cased collection.
func NewID(c Collection) string {
	return strings.ToLower(string(c)) + "_" + uuid.NewString()
}

// Row is one record keyed by its header names. Every cell is kept as the
// string the sheet holds; decoding into typed records happens in Loader.
type Row map[string]string

const IDColumn = "id"

func (r Row) ID() string { return r[IDColumn] }

// Clone returns a shallow copy safe to mutate.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Ports for outbound adapters.
type (
	RowReader interface {
		// FetchAll returns every row of c in sheet order.
		FetchAll(ctx context.Context, c Collection) ([]Row, error)
	}

	RowWriter interface {
		// Insert stores row, generating an id when it has none, and returns
		// the stored row.
		Insert(ctx context.Context, c Collection, row Row) (Row, error)
		// Update replaces the row identified by id. The id column is kept.
		Update(ctx context.Context, c Collection, id string, row Row) (Row, error)
		Delete(ctx context.Context, c Collection, id string) error
	}

	RowStore interface {
		RowReader
		RowWriter
	}
)

// PrepareInsert copies row and fills in a generated id when missing.
func PrepareInsert(c Collection, row Row) Row {
	out := row.Clone()
	if strings.TrimSpace(out.ID()) == "" {
		out[IDColumn] = NewID(c)
	}
	return out
}

// PrepareUpdate copies row and pins its id to id.
func PrepareUpdate(id string, row Row) Row {
	out := row.Clone()
	out[IDColumn] = id
	return out
}
