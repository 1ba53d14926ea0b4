package sheets

import (
	"errors"
	"testing"

	"mapfin/internal/core"
)

func TestDecodeExpense(t *testing.T) {
	row := Row{
		"id":                   "expenses_1",
		"date":                 "2024-12-05",
		"description":          "Groceries",
		"category":             "groceries",
		"currency_amount":      "$50",
		"inr_amount":           "4,175",
		"payment_method":       "credit_card",
		"person_id":            "p1",
		"reimbursement_status": "",
		"tags":                 `[{"id":"t1","name":"Trip","color":"#3b82f6"}]`,
		"unknown_column":       "ignored",
	}
	e, err := DecodeExpense(row)
	if err != nil {
		t.Fatalf("DecodeExpense: %v", err)
	}
	if e.Amount != 4175 || e.Date != core.NewDate(2024, 12, 5) || e.Category != "groceries" {
		t.Fatalf("unexpected expense: %+v", e)
	}
	if e.ReimbursementStatus != core.ReimbursementNone {
		t.Fatalf("empty status should default to none, got %q", e.ReimbursementStatus)
	}
	if !e.HasTag("t1") || e.CurrencyAmount != "$50" {
		t.Fatalf("unexpected tags or currency amount: %+v", e)
	}
}

func TestDecodeExpenseMalformed(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"missing date", Row{"inr_amount": "10", "category": "groceries"}},
		{"bad date", Row{"date": "yesterday", "inr_amount": "10"}},
		{"bad amount", Row{"date": "2024-12-01", "inr_amount": "ten"}},
		{"negative amount", Row{"date": "2024-12-01", "inr_amount": "-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeExpense(tt.row)
			if !errors.Is(err, core.ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestDecodeExpenseUnknownStatus(t *testing.T) {
	for _, status := range []string{"maybe", "Refunded", "n/a"} {
		t.Run(status, func(t *testing.T) {
			e, err := DecodeExpense(Row{"id": "e1", "date": "2024-12-01", "inr_amount": "10", "reimbursement_status": status})
			if err != nil {
				t.Fatalf("row with status %q should decode, got %v", status, err)
			}
			if e.ReimbursementStatus != core.ReimbursementNone {
				t.Fatalf("status = %q, want none", e.ReimbursementStatus)
			}
			if e.Amount != 10 {
				t.Fatalf("amount = %v, want 10", e.Amount)
			}
		})
	}

	e, err := DecodeExpense(Row{"date": "2024-12-01", "inr_amount": "10", "reimbursement_status": "PENDING"})
	if err != nil || e.ReimbursementStatus != core.ReimbursementPending {
		t.Fatalf("known status should be kept, got %q, %v", e.ReimbursementStatus, err)
	}
}

func TestDecodeExpenseLenientCells(t *testing.T) {
	e, err := DecodeExpense(Row{"date": "2024-12-01", "tags": "not json"})
	if err != nil {
		t.Fatalf("DecodeExpense: %v", err)
	}
	if e.Amount != 0 || e.Tags != nil || e.Category != core.OtherExpense {
		t.Fatalf("unexpected lenient decode: %+v", e)
	}
}

func TestDecodeNetWorthEntry(t *testing.T) {
	n, err := DecodeNetWorthEntry(Row{
		"id": "nw_1", "report_date": "2024-12-31", "person_id": "p1",
		"category": "mutual_funds", "amount_inr": "1855000", "amount_original": "",
	})
	if err != nil {
		t.Fatalf("DecodeNetWorthEntry: %v", err)
	}
	if n.Amount != 1855000 || n.Category != "mutual_funds" || n.AmountOriginal != 0 {
		t.Fatalf("unexpected entry: %+v", n)
	}
	if _, err := DecodeNetWorthEntry(Row{"report_date": "2024-12-31", "amount_inr": "1"}); !errors.Is(err, core.ErrEmptyPerson) {
		t.Fatalf("expected ErrEmptyPerson, got %v", err)
	}
}

func TestDecodeBudget(t *testing.T) {
	tests := []struct {
		cell     string
		critical bool
		wantErr  bool
	}{
		{"", true, false},
		{"FALSE", false, false},
		{"yes", true, false},
		{"perhaps", false, true},
	}
	for _, tt := range tests {
		b, err := DecodeBudget(Row{"category": "groceries", "monthly_limit": "15000", "is_critical": tt.cell})
		if tt.wantErr {
			if !errors.Is(err, core.ErrMalformedRecord) {
				t.Fatalf("%q: expected ErrMalformedRecord, got %v", tt.cell, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.cell, err)
		}
		if b.Critical() != tt.critical || b.MonthlyLimit != 15000 {
			t.Fatalf("%q: unexpected budget %+v", tt.cell, b)
		}
	}
}

func TestDecodeLiabilityAndGoal(t *testing.T) {
	l, err := DecodeLiability(Row{
		"id": "l1", "category": "home_loan", "principal": "5000000",
		"outstanding": "4200000", "interest_rate": "8.5%", "emi": "45000",
		"last_updated": "2024-11-30",
	})
	if err != nil {
		t.Fatalf("DecodeLiability: %v", err)
	}
	if l.InterestRate != 8.5 || l.Outstanding != 4200000 || l.LastUpdated != core.NewDate(2024, 11, 30) {
		t.Fatalf("unexpected liability: %+v", l)
	}

	g, err := DecodeGoal(Row{"id": "g1", "name": "House", "type": "purchase", "target_amount": "1000000"})
	if err != nil {
		t.Fatalf("DecodeGoal: %v", err)
	}
	if g.CurrentAmount != 0 || !g.TargetDate.IsEmpty() {
		t.Fatalf("unexpected goal: %+v", g)
	}
}

func TestDecodeIncomeDefaultsSource(t *testing.T) {
	i, err := DecodeIncome(Row{"date": "2024-12-01", "amount": "200000"})
	if err != nil || i.Source != core.OtherIncome {
		t.Fatalf("unexpected income: %+v %v", i, err)
	}
}

func TestEncodeExpenseRoundTripsThroughDecode(t *testing.T) {
	in := core.Expense{
		ID: "e1", PersonID: "p1", Date: core.NewDate(2024, 12, 1), Category: "groceries",
		Amount: 1234.5, ReimbursementStatus: core.ReimbursementPending,
		Tags: []core.Tag{{ID: "t1", Name: "Trip", Color: "#fff"}},
	}
	out, err := DecodeExpense(EncodeExpense(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Amount != in.Amount || out.Date != in.Date || !out.HasTag("t1") || out.ReimbursementStatus != in.ReimbursementStatus {
		t.Fatalf("unexpected round trip: %+v", out)
	}
	if _, ok := EncodeExpense(core.Expense{})["tags"]; ok {
		t.Fatalf("empty tags should be omitted")
	}
}
