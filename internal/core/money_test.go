package core

import "testing"

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"45.50", 4550, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountRejectsZero(t *testing.T) {
	if _, err := ParseAmount("0"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	m, err := ParseAmount("45.5")
	if err != nil || m.Cents != 4550 {
		t.Fatalf("expected 4550, got %d (err=%v)", m.Cents, err)
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	var total Money
	for i := 0; i < 10; i++ {
		total = total.Add(Money{Cents: 10}) // 0.10 ten times
	}
	if total.String() != "1.00" {
		t.Fatalf("expected 1.00, got %s", total.String())
	}
	balance := Money{Cents: 200000}.Sub(Money{Cents: 4550})
	if balance.String() != "1954.50" {
		t.Fatalf("expected 1954.50, got %s", balance.String())
	}
	if !(Money{Cents: 1}).Sub(Money{Cents: 2}).IsNegative() {
		t.Fatalf("expected negative")
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := (Money{Cents: 195450}).Format("USD"); got != "$1,954.50" {
		t.Fatalf("unexpected format: %q", got)
	}
}
