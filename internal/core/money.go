package core

import (
	"math"
	"strconv"
	"strings"
)

var currencyMarks = []string{"₹", "$", "€", "£", "Rs.", "Rs", "INR", "USD", "EUR"}

// ParseAmount converts a spreadsheet amount cell to a float in the reporting
// currency. It strips currency symbols, thousands separators and spaces.
//
// Examples:
//
//	ParseAmount("1,855,000") -> 1855000, nil
//	ParseAmount("₹ 450.50")  -> 450.5, nil
//	ParseAmount("$50")       -> 50, nil
//
// Empty cells return ErrMissingAmount, non-numeric values ErrInvalidAmount
// and negative values ErrNegativeAmount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingAmount
	}
	for _, m := range currencyMarks {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v < 0 {
		return 0, ErrNegativeAmount
	}
	return v, nil
}

// ParseOptionalAmount is ParseAmount for optional columns: an empty cell
// yields zero.
func ParseOptionalAmount(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseAmount(s)
}
