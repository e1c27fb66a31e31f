package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"reliance", "RELIANCE"},
		{" INFY ", "INFY"},
		{"INFOSYS", "INFY"},
		{"$TCS", "TCS"},
		{"HDFC BANK", "HDFCBANK"},
		{"UNKNOWN", "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.in); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToYFinanceTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RELIANCE", "RELIANCE.NS"},
		{"TCS.NS", "TCS.NS"},
		{"NIFTY 50", "^NSEI"},
		{"^NSEI", "^NSEI"},
		{"SUZLON.BO", "SUZLON.BO"},
	}

	for _, tt := range tests {
		if got := ToYFinanceTicker(tt.in); got != tt.want {
			t.Errorf("ToYFinanceTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromYFinanceTicker(t *testing.T) {
	if got := FromYFinanceTicker("RELIANCE.NS"); got != "RELIANCE" {
		t.Errorf("FromYFinanceTicker = %q, want RELIANCE", got)
	}
}

func TestIsIndex(t *testing.T) {
	if !IsIndex("NIFTY 50") || !IsIndex("^NSEI") {
		t.Error("expected index tickers to be recognized")
	}
	if IsIndex("RELIANCE") {
		t.Error("RELIANCE should not be an index")
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567, "₹12,34,567.00"},
		{999, "₹999.00"},
		{-1500.5, "-₹1,500.50"},
	}

	for _, tt := range tests {
		if got := FormatINR(tt.in); got != tt.want {
			t.Errorf("FormatINR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(0.1234); got != "+12.34%" {
		t.Errorf("FormatPct = %q, want +12.34%%", got)
	}
	if got := FormatPct(-0.05); got != "-5.00%" {
		t.Errorf("FormatPct = %q, want -5.00%%", got)
	}
}
