package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar day. It carries no time-of-day semantics and is
	// always anchored at midnight UTC so that range comparisons are stable.
	Date struct {
		time.Time
	}

	Tag struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	Person struct {
		ID           string
		Name         string
		Relationship Relationship
	}

	Expense struct {
		ID                  string
		PersonID            string
		Date                Date
		Description         string
		Category            ExpenseCategory
		CurrencyAmount      string  // as entered, e.g. "$50"
		Amount              float64 // reporting currency (INR)
		PaymentMethod       PaymentMethod
		PaymentSpecifics    string
		TransactionDetails  string
		Remarks             string
		ReimbursementStatus ReimbursementStatus
		Tags                []Tag
	}

	// NetWorthEntry is one asset line of a snapshot. Entries sharing a
	// report date for a person form that person's snapshot.
	NetWorthEntry struct {
		ID               string
		PersonID         string
		ReportDate       Date
		Category         AssetCategory
		Amount           float64
		CurrencyOriginal string
		AmountOriginal   float64
		Description      string
		Notes            string
	}

	Liability struct {
		ID           string
		PersonID     string
		Category     LiabilityCategory
		Name         string
		Principal    float64
		Outstanding  float64
		InterestRate float64
		EMI          float64
		Currency     string
		LastUpdated  Date
		Notes        string
	}

	Budget struct {
		ID           string
		Category     ExpenseCategory
		MonthlyLimit float64
		// IsCritical overrides DefaultCritical when set.
		IsCritical *bool
	}

	Goal struct {
		ID            string
		Name          string
		Type          GoalType
		TargetAmount  float64
		CurrentAmount float64
		TargetDate    Date
		Notes         string
	}

	Income struct {
		ID       string
		PersonID string
		Date     Date
		Amount   float64
		Source   IncomeSource
		Notes    string
	}

	Card struct {
		ID       string
		PersonID string
		BankName string
		CardName string
		CardType string // credit | debit
		Network  string
		Status   string // active | inactive
		Notes    string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMissingDate       = errors.New("missing date")
	ErrMissingAmount     = errors.New("missing amount")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrEmptyPerson       = errors.New("empty person id")
	ErrEmptyCategory     = errors.New("empty category")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrInvalidReimbursed = errors.New("invalid reimbursement status")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts ISO dates ("2024-11-05"), RFC 3339 timestamps (the
// date part is kept) and slash separated ISO dates ("2024/11/05").
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse("2006/01/02", s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String renders the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Within reports whether the day falls in [start, end], both inclusive.
func (d Date) Within(start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(string(e.Category)) == "" {
		return ErrEmptyCategory
	}
	if !e.ReimbursementStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidReimbursed, e.ReimbursementStatus)
	}
	return nil
}

func (n NetWorthEntry) Validate() error {
	if err := n.ReportDate.Validate(); err != nil {
		return err
	}
	if n.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(n.PersonID) == "" {
		return ErrEmptyPerson
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(string(b.Category)) == "" {
		return ErrEmptyCategory
	}
	if b.MonthlyLimit < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Critical reports whether the budget counts towards the emergency runway.
func (b Budget) Critical() bool {
	if b.IsCritical != nil {
		return *b.IsCritical
	}
	return b.Category.DefaultCritical()
}

// HasTag reports whether the expense carries a tag with the given id.
func (e Expense) HasTag(id string) bool {
	for _, t := range e.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Reimbursed is true for expenses excluded from every monetary total.
func (e Expense) Reimbursed() bool {
	return e.ReimbursementStatus == ReimbursementReimbursed
}

// Owned is implemented by every record that belongs to a person.
type Owned interface {
	Owner() string
}

func (e Expense) Owner() string { return e.PersonID }
func (n NetWorthEntry) Owner() string { return n.PersonID }
func (l Liability) Owner() string { return l.PersonID }
func (i Income) Owner() string { return i.PersonID }
func (c Card) Owner() string { return c.PersonID }

// Record accessors used by the period and category aggregators.
func (e Expense) RecordDate() Date { return e.Date }
func (e Expense) RecordAmount() float64 { return e.Amount }
func (e Expense) RecordKey() string { return string(e.Category) }

func (n NetWorthEntry) RecordDate() Date { return n.ReportDate }
func (n NetWorthEntry) RecordAmount() float64 { return n.Amount }
func (n NetWorthEntry) RecordKey() string { return string(n.Category) }

func (i Income) RecordDate() Date { return i.Date }
func (i Income) RecordAmount() float64 { return i.Amount }
func (i Income) RecordKey() string { return string(i.Source) }
