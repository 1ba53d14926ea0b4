package sheets

import (
	"encoding/json"
	"fmt"
	"strings"

	"mapfin/internal/core"
	"mapfin/internal/log"
)

var decodeLogger = log.WithComponent(log.ComponentLoader)

// Column names as they appear in the workbook header rows.
const (
	colPersonID            = "person_id"
	colDate                = "date"
	colDescription         = "description"
	colCategory            = "category"
	colCurrencyAmount      = "currency_amount"
	colINRAmount           = "inr_amount"
	colPaymentMethod       = "payment_method"
	colPaymentSpecifics    = "payment_specifics"
	colTransactionDetails  = "transaction_details"
	colRemarks             = "remarks"
	colReimbursementStatus = "reimbursement_status"
	colTags                = "tags"
	colReportDate          = "report_date"
	colAmountINR           = "amount_inr"
	colCurrencyOriginal    = "currency_original"
	colAmountOriginal      = "amount_original"
	colNotes               = "notes"
	colName                = "name"
	colPrincipal           = "principal"
	colOutstanding         = "outstanding"
	colInterestRate        = "interest_rate"
	colEMI                 = "emi"
	colCurrency            = "currency"
	colLastUpdated         = "last_updated"
	colMonthlyLimit        = "monthly_limit"
	colIsCritical          = "is_critical"
	colType                = "type"
	colTargetAmount        = "target_amount"
	colCurrentAmount       = "current_amount"
	colTargetDate          = "target_date"
	colAmount              = "amount"
	colSource              = "source"
	colRelationship        = "relationship"
	colBankName            = "bank_name"
	colCardName            = "card_name"
	colCardType            = "card_type"
	colNetwork             = "network"
	colStatus              = "status"
	colColor               = "color"
)

func (r Row) get(col string) string { return strings.TrimSpace(r[col]) }

func malformed(col string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrMalformedRecord, col, err)
}

func (r Row) date(col string) (core.Date, error) {
	d, err := core.ParseDate(r.get(col))
	if err != nil {
		return core.Date{}, malformed(col, err)
	}
	return d, nil
}

// optionalDate tolerates empty cells but still rejects garbage.
func (r Row) optionalDate(col string) (core.Date, error) {
	if r.get(col) == "" {
		return core.Date{}, nil
	}
	return r.date(col)
}

func (r Row) amount(col string) (float64, error) {
	v, err := core.ParseOptionalAmount(strings.TrimSuffix(r.get(col), "%"))
	if err != nil {
		return 0, malformed(col, err)
	}
	return v, nil
}

// optionalBool returns nil for an empty cell.
func (r Row) optionalBool(col string) (*bool, error) {
	var v bool
	switch strings.ToLower(r.get(col)) {
	case "":
		return nil, nil
	case "true", "yes", "y", "1":
		v = true
	case "false", "no", "n", "0":
		v = false
	default:
		return nil, malformed(col, fmt.Errorf("not a boolean: %q", r.get(col)))
	}
	return &v, nil
}

// parseTags reads the JSON encoded tag list; unreadable cells carry no tags.
func parseTags(s string) []core.Tag {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []core.Tag
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	return tags
}

func DecodeExpense(r Row) (core.Expense, error) {
	d, err := r.date(colDate)
	if err != nil {
		return core.Expense{}, err
	}
	amt, err := r.amount(colINRAmount)
	if err != nil {
		return core.Expense{}, err
	}
	status := core.ReimbursementStatus(strings.ToLower(r.get(colReimbursementStatus)))
	if !status.Valid() {
		// Hand-edited cells hold all sorts of values; the row still counts.
		if status != "" {
			decodeLogger.Warn("Unknown reimbursement status, treating as none",
				log.FieldRecordID, r.ID(), "status", string(status))
		}
		status = core.ReimbursementNone
	}
	e := core.Expense{
		ID:                  r.ID(),
		PersonID:            r.get(colPersonID),
		Date:                d,
		Description:         r.get(colDescription),
		Category:            core.ExpenseCategory(r.get(colCategory)),
		CurrencyAmount:      r.get(colCurrencyAmount),
		Amount:              amt,
		PaymentMethod:       core.PaymentMethod(r.get(colPaymentMethod)),
		PaymentSpecifics:    r.get(colPaymentSpecifics),
		TransactionDetails:  r.get(colTransactionDetails),
		Remarks:             r.get(colRemarks),
		ReimbursementStatus: status,
		Tags:                parseTags(r[colTags]),
	}
	if e.Category == "" {
		e.Category = core.OtherExpense
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %w", core.ErrMalformedRecord, err)
	}
	return e, nil
}

func DecodeNetWorthEntry(r Row) (core.NetWorthEntry, error) {
	d, err := r.date(colReportDate)
	if err != nil {
		return core.NetWorthEntry{}, err
	}
	amt, err := r.amount(colAmountINR)
	if err != nil {
		return core.NetWorthEntry{}, err
	}
	orig, err := r.amount(colAmountOriginal)
	if err != nil {
		return core.NetWorthEntry{}, err
	}
	n := core.NetWorthEntry{
		ID:               r.ID(),
		PersonID:         r.get(colPersonID),
		ReportDate:       d,
		Category:         core.AssetCategory(r.get(colCategory)),
		Amount:           amt,
		CurrencyOriginal: r.get(colCurrencyOriginal),
		AmountOriginal:   orig,
		Description:      r.get(colDescription),
		Notes:            r.get(colNotes),
	}
	if err := n.Validate(); err != nil {
		return core.NetWorthEntry{}, fmt.Errorf("%w: %w", core.ErrMalformedRecord, err)
	}
	return n, nil
}

func DecodeLiability(r Row) (core.Liability, error) {
	l := core.Liability{
		ID:       r.ID(),
		PersonID: r.get(colPersonID),
		Category: core.LiabilityCategory(r.get(colCategory)),
		Name:     r.get(colName),
		Currency: r.get(colCurrency),
		Notes:    r.get(colNotes),
	}
	var err error
	for col, dst := range map[string]*float64{
		colPrincipal:    &l.Principal,
		colOutstanding:  &l.Outstanding,
		colInterestRate: &l.InterestRate,
		colEMI:          &l.EMI,
	} {
		if *dst, err = r.amount(col); err != nil {
			return core.Liability{}, err
		}
	}
	if l.LastUpdated, err = r.optionalDate(colLastUpdated); err != nil {
		return core.Liability{}, err
	}
	return l, nil
}

func DecodeBudget(r Row) (core.Budget, error) {
	limit, err := r.amount(colMonthlyLimit)
	if err != nil {
		return core.Budget{}, err
	}
	critical, err := r.optionalBool(colIsCritical)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		ID:           r.ID(),
		Category:     core.ExpenseCategory(r.get(colCategory)),
		MonthlyLimit: limit,
		IsCritical:   critical,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("%w: %w", core.ErrMalformedRecord, err)
	}
	return b, nil
}

func DecodeGoal(r Row) (core.Goal, error) {
	target, err := r.amount(colTargetAmount)
	if err != nil {
		return core.Goal{}, err
	}
	current, err := r.amount(colCurrentAmount)
	if err != nil {
		return core.Goal{}, err
	}
	td, err := r.optionalDate(colTargetDate)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		ID:            r.ID(),
		Name:          r.get(colName),
		Type:          core.GoalType(r.get(colType)),
		TargetAmount:  target,
		CurrentAmount: current,
		TargetDate:    td,
		Notes:         r.get(colNotes),
	}, nil
}

func DecodeIncome(r Row) (core.Income, error) {
	d, err := r.date(colDate)
	if err != nil {
		return core.Income{}, err
	}
	amt, err := r.amount(colAmount)
	if err != nil {
		return core.Income{}, err
	}
	src := core.IncomeSource(r.get(colSource))
	if src == "" {
		src = core.OtherIncome
	}
	return core.Income{
		ID:       r.ID(),
		PersonID: r.get(colPersonID),
		Date:     d,
		Amount:   amt,
		Source:   src,
		Notes:    r.get(colNotes),
	}, nil
}

func DecodePerson(r Row) (core.Person, error) {
	if r.ID() == "" {
		return core.Person{}, malformed(IDColumn, core.ErrEmptyPerson)
	}
	return core.Person{
		ID:           r.ID(),
		Name:         r.get(colName),
		Relationship: core.Relationship(r.get(colRelationship)),
	}, nil
}

func DecodeCard(r Row) (core.Card, error) {
	return core.Card{
		ID:       r.ID(),
		PersonID: r.get(colPersonID),
		BankName: r.get(colBankName),
		CardName: r.get(colCardName),
		CardType: r.get(colCardType),
		Network:  r.get(colNetwork),
		Status:   r.get(colStatus),
		Notes:    r.get(colNotes),
	}, nil
}

func DecodeTag(r Row) (core.Tag, error) {
	if r.ID() == "" || r.get(colName) == "" {
		return core.Tag{}, malformed(colName, fmt.Errorf("tag without id or name"))
	}
	return core.Tag{ID: r.ID(), Name: r.get(colName), Color: r.get(colColor)}, nil
}

// EncodeExpense is the inverse of DecodeExpense. Tags are written as JSON
// and omitted when empty.
func EncodeExpense(e core.Expense) Row {
	row := Row{
		IDColumn:               e.ID,
		colPersonID:            e.PersonID,
		colDate:                e.Date.String(),
		colDescription:         e.Description,
		colCategory:            string(e.Category),
		colCurrencyAmount:      e.CurrencyAmount,
		colINRAmount:           formatAmount(e.Amount),
		colPaymentMethod:       string(e.PaymentMethod),
		colPaymentSpecifics:    e.PaymentSpecifics,
		colTransactionDetails:  e.TransactionDetails,
		colRemarks:             e.Remarks,
		colReimbursementStatus: string(e.ReimbursementStatus),
	}
	if len(e.Tags) > 0 {
		b, _ := json.Marshal(e.Tags)
		row[colTags] = string(b)
	}
	return row
}

// EncodeNetWorthEntry is the inverse of DecodeNetWorthEntry.
func EncodeNetWorthEntry(n core.NetWorthEntry) Row {
	row := Row{
		IDColumn:            n.ID,
		colPersonID:         n.PersonID,
		colReportDate:       n.ReportDate.String(),
		colCategory:         string(n.Category),
		colAmountINR:        formatAmount(n.Amount),
		colCurrencyOriginal: n.CurrencyOriginal,
		colDescription:      n.Description,
		colNotes:            n.Notes,
	}
	if n.AmountOriginal != 0 {
		row[colAmountOriginal] = formatAmount(n.AmountOriginal)
	}
	return row
}
