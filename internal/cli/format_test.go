package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"150", "$150.00"},
		{"1234567.5", "$1,234,567.50"},
		{"-42.1", "-$42.10"},
		{"0.005", "$0.01"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := FormatMoney("$", d); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.000", "3"},
		{"12.500", "12.5"},
		{"0.125", "0.125"},
		{"0", "0"},
	}
	for _, tt := range tests {
		d, _ := decimal.NewFromString(tt.in)
		if got := FormatQty(d); got != tt.want {
			t.Errorf("FormatQty(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatWeekday(t *testing.T) {
	if got := FormatWeekday(time.Monday); got != "Mon" {
		t.Errorf("FormatWeekday(Monday) = %q", got)
	}
	if got := FormatWeekday(time.Sunday); got != "Sun" {
		t.Errorf("FormatWeekday(Sunday) = %q", got)
	}
}

func TestFormatPeriod(t *testing.T) {
	if got := FormatPeriod(3, 2026); got != "03/2026" {
		t.Errorf("FormatPeriod = %q", got)
	}
}
