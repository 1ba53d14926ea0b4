// Package format renders analytics output for people: currency amounts,
// percentages and dates. Display options are passed explicitly as Settings;
// nothing here reads ambient state.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
)

type NumberFormat string

const (
	Indian  NumberFormat = "indian"
	Western NumberFormat = "western"
)

// DefaultExchangeRate is INR per USD used until a live rate is fetched.
const DefaultExchangeRate = 83.5

var (
	ErrUnknownCurrency     = errors.New("unknown currency")
	ErrUnknownNumberFormat = errors.New("unknown number format")
	ErrInvalidRate         = errors.New("exchange rate must be positive")
)

// Settings is the display configuration threaded through every call.
type Settings struct {
	Currency     Currency     `json:"currency"`
	NumberFormat NumberFormat `json:"number_format"`
	ExchangeRate float64      `json:"exchange_rate"`
}

func DefaultSettings() Settings {
	return Settings{Currency: INR, NumberFormat: Indian, ExchangeRate: DefaultExchangeRate}
}

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case INR, USD:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

func ParseNumberFormat(s string) (NumberFormat, error) {
	switch f := NumberFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case Indian, Western:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNumberFormat, s)
}

func (s Settings) Validate() error {
	var errs []error
	if _, err := ParseCurrency(string(s.Currency)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseNumberFormat(string(s.NumberFormat)); err != nil {
		errs = append(errs, err)
	}
	if s.ExchangeRate <= 0 || math.IsNaN(s.ExchangeRate) {
		errs = append(errs, ErrInvalidRate)
	}
	return errors.Join(errs...)
}

// Convert turns an amount in the reporting currency (INR) into the display
// currency.
func (s Settings) Convert(inr float64) float64 {
	if s.Currency == USD && s.ExchangeRate > 0 {
		return inr / s.ExchangeRate
	}
	return inr
}

func (s Settings) Symbol() string {
	if s.Currency == USD {
		return "$"
	}
	return "₹"
}

type unit struct {
	size   float64
	suffix string
}

var (
	westernUnits = []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	indianUnits  = []unit{{1e7, "Cr"}, {1e5, "L"}, {1e3, "K"}}
)

// Compact abbreviates an amount: ₹500, ₹1.5K, ₹2.3M, ₹1.2B in western
// notation, or ₹1.5K, ₹18.6L, ₹2.1Cr in indian notation.
func (s Settings) Compact(inr float64) string {
	v := s.Convert(inr)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	units := westernUnits
	if s.NumberFormat == Indian && s.Currency != USD {
		units = indianUnits
	}
	for _, u := range units {
		if v >= u.size {
			return fmt.Sprintf("%s%s%.1f%s", sign, s.Symbol(), v/u.size, u.suffix)
		}
	}
	return fmt.Sprintf("%s%s%.0f", sign, s.Symbol(), v)
}

// Full renders the whole amount. Western notation goes through go-money so
// the currency's own grapheme, separators and fraction apply; indian
// notation groups by lakh and crore and drops the fraction.
func (s Settings) Full(inr float64) string {
	v := s.Convert(inr)
	if s.NumberFormat == Indian {
		return indianAmount(s.Symbol(), v)
	}
	code := money.INR
	if s.Currency == USD {
		code = money.USD
	}
	return money.NewFromFloat(v, code).Display()
}

// Number groups a plain number by thousands, without currency.
func Number(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%d", int64(math.Round(v)))
}

func indianAmount(symbol string, v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return sign + symbol + digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return sign + symbol + strings.Join(groups, ",") + "," + tail
}

// Percent renders a signed percentage: +12.5%, -3.0%, 0.0%.
func Percent(v float64) string {
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, v)
}

// Change describes a delta in words, e.g. "₹50.0K up from last month".
func (s Settings) Change(current, previous float64, period string) string {
	if period == "" {
		period = "last month"
	}
	change := current - previous
	direction := "up"
	if change < 0 {
		direction = "down"
	}
	return fmt.Sprintf("%s %s from %s", s.Compact(change), direction, period)
}

// Date renders "25 Dec 2024"; the zero time renders as "".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}

func MonthYear(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2006")
}

func DateShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
