package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Period selects either an owner's full history or a single calendar month.
// The zero value is all-time.
type Period struct {
	year  int
	month int
}

// AllTime returns the unbounded period.
func AllTime() Period {
	return Period{}
}

// YearMonth returns the period covering one calendar month.
func YearMonth(year, month int) Period {
	return Period{year: year, month: month}
}

// ParsePeriod builds a Period from user-supplied year/month strings.
// "all" or an empty year selects all-time. A future month is a valid
// selector; it simply matches no transactions.
func ParsePeriod(yearStr, monthStr string) (Period, error) {
	yearStr = strings.TrimSpace(strings.ToLower(yearStr))
	if yearStr == "" || yearStr == "all" {
		return AllTime(), nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	p := YearMonth(year, month)
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// IsAllTime reports whether the period is unbounded.
func (p Period) IsAllTime() bool {
	return p.year == 0 && p.month == 0
}

func (p Period) Validate() error {
	if p.IsAllTime() {
		return nil
	}
	if p.year < 1 || p.year > 9999 {
		return ErrInvalidPeriod
	}
	if p.month < 1 || p.month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// Matches reports whether a transaction date falls within the period.
// Only year and month are compared; the day is ignored.
func (p Period) Matches(d Date) bool {
	if p.IsAllTime() {
		return true
	}
	return d.Year() == p.year && d.Month() == p.month
}

// Key renders the period as "all" or "YYYY-MM". The year-month form matches
// the date-column prefix, so it doubles as the SQL filter value and as a
// cache key component.
func (p Period) Key() string {
	if p.IsAllTime() {
		return "all"
	}
	return fmt.Sprintf("%04d-%02d", p.year, p.month)
}

func (p Period) String() string {
	return p.Key()
}
