package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDefaultFormatter(t *testing.T) {
	f := DefaultFormatter()
	cases := map[string]string{
		"0":        "$0.00",
		"4900":     "$4,900.00",
		"1234.5":   "$1,234.50",
		"0.015":    "$0.02",
		"-100":     "-$100.00",
		"15.99":    "$15.99",
		"12345678": "$12,345,678.00",
	}
	for in, want := range cases {
		if got := f.Format(decimal.RequireFromString(in)); got != want {
			t.Errorf("Format(%s) = %q, want %q", in, got, want)
		}
	}
	if f.Symbol() != "$" {
		t.Errorf("unexpected symbol %q", f.Symbol())
	}
}

func TestNewFormatterRejectsUnknownCodes(t *testing.T) {
	if _, err := NewFormatter("en-US", "XYZW"); err == nil {
		t.Fatalf("expected error for bad currency")
	}
	if _, err := NewFormatter("not a locale!", "USD"); err == nil {
		t.Fatalf("expected error for bad locale")
	}
}
