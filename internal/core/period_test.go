package core

import (
	"errors"
	"testing"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		name      string
		year      string
		month     string
		wantKey   string
		wantError bool
	}{
		{"explicit month", "2025", "11", "2025-11", false},
		{"all keyword", "all", "", "all", false},
		{"empty year means all time", "", "7", "all", false},
		{"future month is valid", "2099", "1", "2099-01", false},
		{"month zero", "2025", "0", "", true},
		{"month thirteen", "2025", "13", "", true},
		{"negative year", "-3", "5", "", true},
		{"five digit year", "10000", "5", "", true},
		{"garbage year", "20x5", "5", "", true},
		{"garbage month", "2025", "nov", "", true},
		{"missing month", "2025", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePeriod(tc.year, tc.month)
			if tc.wantError {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Key() != tc.wantKey {
				t.Fatalf("key = %q, want %q", p.Key(), tc.wantKey)
			}
		})
	}
}

func TestPeriodMatches(t *testing.T) {
	nov := YearMonth(2025, 11)

	if !nov.Matches(NewDate(2025, 11, 1)) {
		t.Fatal("first of month should match")
	}
	if !nov.Matches(NewDate(2025, 11, 30)) {
		t.Fatal("last of month should match")
	}
	if nov.Matches(NewDate(2025, 10, 31)) {
		t.Fatal("previous month must not match")
	}
	if nov.Matches(NewDate(2024, 11, 15)) {
		t.Fatal("same month of another year must not match")
	}

	all := AllTime()
	for _, d := range []Date{NewDate(1970, 1, 1), NewDate(2025, 11, 6), NewDate(2099, 12, 31)} {
		if !all.Matches(d) {
			t.Fatalf("all-time should match %s", d)
		}
	}
}

func TestPeriodZeroValueIsAllTime(t *testing.T) {
	var p Period
	if !p.IsAllTime() {
		t.Fatal("zero Period should be all-time")
	}
	if p.Key() != "all" {
		t.Fatalf("zero Period key = %q", p.Key())
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("zero Period should validate: %v", err)
	}
}
