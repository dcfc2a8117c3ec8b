package internal

import (
	"testing"
	"time"
)

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		date     string
		payee    string
		amount   float64
		currency string
	}{
		{"pipe separated", "2025-01-15 | Netflix | -99.00", true, "2025-01-15", "Netflix", -99, ""},
		{"with balance", "2025-01-15 | 2025-01-14 | Netflix | -99,00 | 12 345,67", true, "2025-01-15", "Netflix", -99, ""},
		{"semicolons", "2025-02-01;Spotify AB;-119,00;SEK", true, "2025-02-01", "Spotify AB", -119, "SEK"},
		{"whitespace", "2025-03-04 Adobe Creative Cloud -54.99", true, "2025-03-04", "Adobe Creative Cloud", -54.99, ""},
		{"dollar sign", "2025/03/04  iCloud+  $2.99", true, "2025-03-04", "iCloud+", 2.99, "USD"},
		{"euro suffix", "04.03.2025 | Deezer | 11,99 €", true, "2025-03-04", "Deezer", 11.99, "EUR"},
		{"kr suffix", "2025-03-04 | Viaplay | 449 kr", true, "2025-03-04", "Viaplay", 449, ""},
		{"pending prefix", "2025-03-04 | Prel Netflix | -99", true, "2025-03-04", "Netflix", -99, ""},
		{"reference number in payee", "2025-03-04 Gym 24 Seven -29.00", true, "2025-03-04", "Gym 24 Seven", -29, ""},
		{"no date", "Netflix | -99.00", false, "", "", 0, ""},
		{"no amount", "2025-03-04 | Netflix | monthly", false, "", "", 0, ""},
		{"no payee", "2025-03-04 | -99.00", false, "", "", 0, ""},
		{"blank", "   ", false, "", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStatement(tt.line)
			if !tt.wantOK {
				if len(got) != 0 {
					t.Errorf("ParseStatement(%q) = %+v, want nothing", tt.line, got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("ParseStatement(%q) returned %d payments, want 1", tt.line, len(got))
			}
			p := got[0]
			if p.Date.Format(time.DateOnly) != tt.date {
				t.Errorf("date = %s, want %s", p.Date.Format(time.DateOnly), tt.date)
			}
			if p.Payee != tt.payee {
				t.Errorf("payee = %q, want %q", p.Payee, tt.payee)
			}
			if p.Amount != tt.amount {
				t.Errorf("amount = %v, want %v", p.Amount, tt.amount)
			}
			if p.Currency != tt.currency {
				t.Errorf("currency = %q, want %q", p.Currency, tt.currency)
			}
		})
	}
}

func TestParseStatement_MultipleLines(t *testing.T) {
	text := "Date | Text | Amount\n" +
		"2025-01-15 | Netflix | -99.00\n" +
		"\n" +
		"Some footer text\n" +
		"2025-02-15 | Netflix | -99.00\n"

	got := ParseStatement(text)
	if len(got) != 2 {
		t.Fatalf("got %d payments, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Errorf("payments out of input order: %+v", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		tabular bool
		want    float64
		wantOK  bool
	}{
		{"-12.99", false, -12.99, true},
		{"12,99", false, 12.99, true},
		{"1.234,50", false, 1234.5, true},
		{"1,234.50", false, 1234.5, true},
		{"US$5", false, 5, true},
		{"R$29,90", false, 29.9, true},
		{"$1,234", false, 1234, true},
		{"-US$1,234", false, -1234, true},
		{"$12,99", false, 12.99, true},
		{"1,234", true, 1.234, true},
		{"42", false, 0, false},
		{"42", true, 42, true},
		{"abc", true, 0, false},
		{"12a", true, 0, false},
		{"", true, 0, false},
	}

	for _, tt := range tests {
		got, _, ok := parseAmount(tt.input, tt.tabular)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseAmount(%q, %v) = (%v, %v), want (%v, %v)", tt.input, tt.tabular, got, ok, tt.want, tt.wantOK)
		}
	}
}
