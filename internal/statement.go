package internal

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Payment is one dated charge found in a statement line.
type Payment struct {
	Date     time.Time
	Payee    string
	Amount   float64 // negative for money going out
	Currency string  // ISO code when the line names one, else ""
}

// amountSymbols are the symbolAliases keys, longest first so "US$" is not
// read as "$".
var amountSymbols = []string{"US$", "R$", "$", "€", "£", "¥", "₹"}

var statementDateLayouts = []string{"2006-01-02", "2006/01/02", "02.01.2006", time.RFC3339}

// ParseStatement pulls dated payments out of pasted text. A line counts
// when it has a date and an amount; the remaining words become the payee.
// Cells may be separated by "|", ";", tabs or whitespace.
func ParseStatement(text string) []Payment {
	var payments []Payment
	for _, line := range strings.Split(text, "\n") {
		if p, ok := parseStatementLine(line); ok {
			payments = append(payments, p)
		}
	}
	return payments
}

func parseStatementLine(line string) (Payment, bool) {
	cells, tabular := splitCells(line)
	if len(cells) < 3 {
		return Payment{}, false
	}

	var p Payment
	dateIdx := -1
	for i, c := range cells {
		if d, ok := parseStatementDate(c); ok {
			dateIdx, p.Date = i, d
			break
		}
	}
	if dateIdx < 0 {
		return Payment{}, false
	}

	// The first amount after at least one payee word wins; exports put the
	// balance after it.
	amountIdx := -1
	hasPayee := false
	for i := dateIdx + 1; i < len(cells); i++ {
		if _, ok := parseStatementDate(cells[i]); ok {
			continue
		}
		if hasPayee {
			if amt, cur, ok := parseAmount(cells[i], tabular); ok {
				amountIdx, p.Amount, p.Currency = i, amt, cur
				break
			}
		}
		hasPayee = true
	}
	if amountIdx < 0 {
		return Payment{}, false
	}

	var words []string
	for i := dateIdx + 1; i < amountIdx; i++ {
		if _, ok := parseStatementDate(cells[i]); ok {
			continue
		}
		words = append(words, cells[i])
	}
	for _, c := range cells[amountIdx+1:] {
		if iso, ok := currencyToken(c); ok && p.Currency == "" {
			p.Currency = iso
		}
	}
	p.Payee = strings.TrimPrefix(strings.Join(words, " "), "Prel ")
	if p.Payee == "" {
		return Payment{}, false
	}
	return p, true
}

// splitCells splits on "|", ";" and tabs when the line has any of them and
// reports the line as tabular. Other lines are split on whitespace.
func splitCells(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	if !strings.ContainsAny(line, "|;\t") {
		return strings.Fields(line), false
	}
	var cells []string
	for _, c := range strings.FieldsFunc(line, func(r rune) bool { return r == '|' || r == ';' || r == '\t' }) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells, true
}

func parseStatementDate(s string) (time.Time, bool) {
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return NewDate(t).Time, true
		}
	}
	return time.Time{}, false
}

// parseAmount reads "-12.99", "12,99", "$12.99" and "-1 234,50 kr" style
// amounts, returning the ISO code of an attached symbol. Outside tabular
// lines a bare integer is taken for a reference number, not money.
func parseAmount(s string, tabular bool) (float64, string, bool) {
	s = strings.TrimSpace(s)
	var cur, sym string
	for _, candidate := range amountSymbols {
		if strings.Contains(s, candidate) {
			sym, cur = candidate, symbolAliases[candidate]
			s = strings.ReplaceAll(s, candidate, "")
			break
		}
	}
	s = strings.TrimSuffix(s, "kr")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return 0, "", false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && !strings.ContainsRune("-+.,", r) {
			return 0, "", false
		}
	}
	if !tabular && cur == "" && !strings.ContainsAny(s, ".,-+") {
		return 0, "", false
	}

	// Dollar amounts group thousands with commas: "$1,234" is 1234.
	dollarGrouped := (sym == "$" || sym == "US$") && !strings.Contains(s, ".") &&
		strings.Count(s, ",") == 1 && len(s)-strings.LastIndex(s, ",")-1 == 3

	// Otherwise the last separator is the decimal one.
	if i, j := strings.LastIndex(s, ","), strings.LastIndex(s, "."); i > j && !dollarGrouped {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "", false
	}
	return v, cur, true
}

// currencyToken reports whether s is a standalone currency code or symbol.
func currencyToken(s string) (string, bool) {
	if iso, ok := symbolAliases[s]; ok {
		return iso, true
	}
	if _, ok := defaultLocaleForCurrency[s]; ok {
		return s, true
	}
	return "", false
}
