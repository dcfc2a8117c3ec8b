package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Bank exports are turned into statement lines ("date | payee | amount")
// so both extractors read them the same way as pasted text.

// TransactionsJSON is a minimal bank-agnostic export format:
//
//	{
//	  "transactions": [
//	    {"date": "2025-01-15", "text": "Netflix", "amount": -99.00},
//	    {"date": "2025-02-15", "text": "Netflix", "amount": -99.00}
//	  ]
//	}
type TransactionsJSON struct {
	Transactions []TransactionJSON `json:"transactions"`
}

type TransactionJSON struct {
	Date   string  `json:"date"`   // YYYY-MM-DD format
	Text   string  `json:"text"`   // Payee/description
	Amount float64 `json:"amount"` // Negative for expenses
}

// StatementLine renders one payment the way ParseStatement reads it back.
func StatementLine(date time.Time, payee string, amount float64) string {
	return fmt.Sprintf("%s | %s | %s", date.Format(dateLayout), payee, strconv.FormatFloat(amount, 'f', 2, 64))
}

// ReadTransactionsJSON converts a TransactionsJSON file to statement lines.
func ReadTransactionsJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	var export TransactionsJSON
	if err := json.Unmarshal(data, &export); err != nil {
		return "", fmt.Errorf("parsing JSON: %w", err)
	}

	var b strings.Builder
	for _, tx := range export.Transactions {
		date, err := time.Parse(dateLayout, tx.Date)
		if err != nil {
			return "", fmt.Errorf("parsing date %q: %w", tx.Date, err)
		}
		b.WriteString(StatementLine(date, tx.Text, tx.Amount))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// ReadHandelsbankenXLSX reads a Handelsbanken Excel export. Both the
// account layout (Reskontradatum, Transaktionsdatum, Text, Belopp, Saldo)
// and the card layout (no Saldo, sometimes an empty first column) are
// located by their header cells.
func ReadHandelsbankenXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("no sheets found in file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("reading sheet: %w", err)
	}

	dateCol, textCol, amountCol, dataStart := -1, -1, -1, -1
	for i, row := range rows {
		for j, cell := range row {
			switch strings.TrimSpace(cell) {
			case "Reskontradatum":
				dateCol, dataStart = j, i+1
			case "Text":
				textCol = j
			case "Belopp":
				amountCol = j
			}
		}
		if dateCol >= 0 && textCol >= 0 && amountCol >= 0 {
			break
		}
	}
	if dateCol < 0 || textCol < 0 || amountCol < 0 {
		return "", fmt.Errorf("could not find required columns (Reskontradatum, Text, Belopp)")
	}

	var b strings.Builder
	for _, row := range rows[dataStart:] {
		if len(row) <= max(dateCol, textCol, amountCol) {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[dateCol]))
		if err != nil {
			continue
		}
		text := strings.TrimPrefix(strings.TrimSpace(row[textCol]), "Prel ")
		amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[amountCol]), ",", "."), 64)
		if text == "" || err != nil {
			continue
		}
		b.WriteString(StatementLine(date, text, amount))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func init() {
	RegisterInputReader("transactions-json", InputReaderFunc(ReadTransactionsJSON))
	RegisterInputReader("handelsbanken-xlsx", InputReaderFunc(ReadHandelsbankenXLSX))
}
