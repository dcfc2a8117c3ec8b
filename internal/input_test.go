package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestIsKnownInputFormat(t *testing.T) {
	RegisterInputReader("test-format", InputReaderFunc(func(path string) (string, error) {
		return "", nil
	}))

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"registered", "test-format", true},
		{"built-in text", "text", true},
		{"built-in xlsx", "xlsx", true},
		{"bank export", "handelsbanken-xlsx", true},
		{"unknown", "pdf", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKnownInputFormat(tt.input); got != tt.expected {
				t.Errorf("IsKnownInputFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSourceArg(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedFormat string
		expectedPath   string
	}{
		{"with format prefix", "xlsx:export.bin", "xlsx", "export.bin"},
		{"bank format prefix", "handelsbanken-xlsx:bank.xlsx", "handelsbanken-xlsx", "bank.xlsx"},
		{"no prefix", "notes.txt", "", "notes.txt"},
		{"unknown prefix kept in path", "unknown:file.txt", "", "unknown:file.txt"},
		{"windows path", `C:\path\file.xlsx`, "", `C:\path\file.xlsx`},
		{"stdin", "-", "", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, path := ParseSourceArg(tt.input)
			if format != tt.expectedFormat || path != tt.expectedPath {
				t.Errorf("ParseSourceArg(%q) = (%q, %q), want (%q, %q)",
					tt.input, format, path, tt.expectedFormat, tt.expectedPath)
			}
		})
	}
}

func TestAvailableInputFormats_Sorted(t *testing.T) {
	formats := AvailableInputFormats()
	for i := 1; i < len(formats); i++ {
		if formats[i-1] > formats[i] {
			t.Fatalf("formats not sorted: %v", formats)
		}
	}
}

func TestReadInput_Stdin(t *testing.T) {
	got, err := ReadInput("-", strings.NewReader("Netflix 15.49 monthly"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	if got != "Netflix 15.49 monthly" {
		t.Errorf("ReadInput() = %q", got)
	}
}

func TestReadInput_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	if err := os.WriteFile(path, []byte("2025-01-15 Netflix -15.49\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadInput(path, nil)
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	if got != "2025-01-15 Netflix -15.49\n" {
		t.Errorf("ReadInput() = %q", got)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	if _, err := ReadInput(filepath.Join(t.TempDir(), "nope.txt"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func writeWorkbook(t *testing.T, path string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadInput_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		"Transactions": {
			{"Date", "Text", "Amount"},
			{"2025-01-15", "Netflix", "-15.49"},
			{"", "", ""},
			{"2025-02-15", " Netflix ", "-15.49"},
		},
	})

	got, err := ReadInput(path, nil)
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	want := "Date | Text | Amount\n2025-01-15 | Netflix | -15.49\n2025-02-15 | Netflix | -15.49\n"
	if got != want {
		t.Errorf("ReadInput() =\n%q\nwant\n%q", got, want)
	}
}

func TestReadInput_XLSXPrefixOverridesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.bin")
	writeWorkbook(t, path, map[string][][]any{"S": {{"a", "b"}}})

	got, err := ReadInput("xlsx:"+path, nil)
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	if got != "a | b\n" {
		t.Errorf("ReadInput() = %q", got)
	}
}

func TestReadTransactionsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.json")
	data := `{"transactions": [
		{"date": "2025-01-15", "text": "Netflix", "amount": -99.00},
		{"date": "2025-02-15", "text": "Netflix", "amount": -99.5}
	]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadInput("transactions-json:"+path, nil)
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	want := "2025-01-15 | Netflix | -99.00\n2025-02-15 | Netflix | -99.50\n"
	if got != want {
		t.Errorf("ReadInput() =\n%q\nwant\n%q", got, want)
	}

	// The lines read back as payments.
	if payments := ParseStatement(got); len(payments) != 2 || payments[1].Amount != -99.5 {
		t.Errorf("ParseStatement() = %+v", payments)
	}
}

func TestReadTransactionsJSON_BadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.json")
	if err := os.WriteFile(path, []byte(`{"transactions": [{"date": "15/01/2025", "text": "x", "amount": -1}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTransactionsJSON(path); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestReadHandelsbankenXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		"Sheet1": {
			{"Kontoutdrag"},
			{"Reskontradatum", "Transaktionsdatum", "Text", "Belopp", "Saldo"},
			{"2025-01-27", "2025-01-25", "Netflix", "-99,00", "1000,00"},
			{"2025-02-27", "2025-02-25", "Prel Netflix", "-99,00", "901,00"},
			{"not a date", "", "Junk", "1", ""},
			{"2025-02-28", "2025-02-28", "Lön", "25000", "25901,00"},
		},
	})

	got, err := ReadHandelsbankenXLSX(path)
	if err != nil {
		t.Fatalf("ReadHandelsbankenXLSX() error = %v", err)
	}
	want := "2025-01-27 | Netflix | -99.00\n2025-02-27 | Netflix | -99.00\n2025-02-28 | Lön | 25000.00\n"
	if got != want {
		t.Errorf("ReadHandelsbankenXLSX() =\n%q\nwant\n%q", got, want)
	}
}

func TestReadHandelsbankenXLSX_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	writeWorkbook(t, path, map[string][][]any{"Sheet1": {{"Date", "Text", "Amount"}}})

	if _, err := ReadHandelsbankenXLSX(path); err == nil {
		t.Error("expected error for missing columns")
	}
}
