package parser

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"25.99", "25.99", false},
		{"1,234.56", "1234.56", false},
		{"R25.99", "25.99", false},
		{"R 1,234.56", "1234.56", false},
		{"-25.99", "-25.99", false},
		{"-R1,234,567.89", "-1234567.89", false},
		{"$4320.55", "4320.55", false},
		{"0.00", "0", false},
		{"", "0", false},
		{"-", "0", false},
		{" 25.99 ", "25.99", false},
		{"12.3.4", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.expected {
				t.Errorf("got %s, want %s", got.String(), tt.expected)
			}
		})
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		text    string
		needles []string
		want    bool
	}{
		{"payment received: invoice", []string{"deposit", "payment received"}, true},
		{"prepaid purchase", []string{"refund"}, false},
		{"anything", []string{""}, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := containsAny(tt.text, tt.needles); got != tt.want {
				t.Errorf("containsAny(%q): got %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestJoinNonEmpty(t *testing.T) {
	got := joinNonEmpty([]string{" Transfer ", "", "to Savings", "  "})
	if got != "Transfer to Savings" {
		t.Errorf("got %q", got)
	}
}
