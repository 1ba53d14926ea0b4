package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carlmjohnson/be"

	"mapfin/internal/analytics"
	api "mapfin/internal/http"
	"mapfin/internal/log"
	"mapfin/internal/sheets"
	"mapfin/internal/sheets/memory"
)

func newProxy(t *testing.T) string {
	t.Helper()
	store := memory.New(map[sheets.Collection][]sheets.Row{
		sheets.Expenses: {
			{"id": "e1", "person_id": "p1", "date": "2024-12-05", "category": "groceries", "inr_amount": "1000", "description": "Market"},
			{"id": "e2", "person_id": "p2", "date": "2024-12-10", "category": "food_dining", "inr_amount": "500"},
			{"id": "e3", "person_id": "p1", "date": "2024-11-20", "category": "groceries", "inr_amount": "2000"},
		},
		sheets.NetWorthEntries: {
			{"id": "n1", "person_id": "p1", "report_date": "2024-12-01", "category": "liquid_cash", "amount_inr": "100000"},
		},
		sheets.Budgets: {
			{"id": "b1", "category": "groceries", "monthly_limit": "5000"},
		},
		sheets.Goals: {
			{"id": "g1", "name": "Emergency fund", "type": "savings", "target_amount": "100000", "current_amount": "50000"},
		},
	})
	srv := api.NewServer(":0", store, api.Options{Logger: log.Discard()})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExpensesJSON(t *testing.T) {
	base := newProxy(t)
	out, err := run(t, "--base-url", base, "--as-of", "2024-12-15", "--preset", "3m", "-o", "json",
		"expenses", "--category", "groceries")
	be.NilErr(t, err)

	var v struct {
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}
	be.NilErr(t, json.Unmarshal([]byte(out), &v))
	be.Equal(t, 2, v.Count)
	be.Equal(t, 3000.0, v.Total)
}

func TestHomeTable(t *testing.T) {
	base := newProxy(t)
	out, err := run(t, "--base-url", base, "--as-of", "2024-12-15", "--person", "p1", "home")
	be.NilErr(t, err)
	be.True(t, strings.Contains(out, "Net worth"))
	be.True(t, strings.Contains(out, "₹1,00,000"))
	be.True(t, strings.Contains(out, "Groceries"))
}

func TestGoalsWesternUSD(t *testing.T) {
	base := newProxy(t)
	out, err := run(t, "--base-url", base, "--currency", "USD", "--number-format", "western", "--rate", "100", "goals")
	be.NilErr(t, err)
	be.True(t, strings.Contains(out, "Emergency fund"))
	be.True(t, strings.Contains(out, "$1,000.00"))
}

func TestInvalidFlags(t *testing.T) {
	base := newProxy(t)

	_, err := run(t, "--base-url", base, "--preset", "7W", "expenses")
	be.True(t, errors.Is(err, analytics.ErrInvalidPreset))

	_, err = run(t, "--base-url", base, "-o", "yaml", "goals")
	be.Nonzero(t, err)

	_, err = run(t, "--base-url", base, "--source", "ftp", "goals")
	be.Nonzero(t, err)
}
