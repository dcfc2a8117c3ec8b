package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Subscriptions"

var exportHeader = []any{"ID", "Name", "Category", "Status", "Billing Cycle", "Next Renewal", "Trial", "Currency", "Cost"}

// ExportFormat picks the export format from an explicit name or the path's extension
func ExportFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "json", "xlsx":
		return format, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or xlsx)", format)
}

// ExportJSON writes the records and their totals as indented JSON
func ExportJSON(path string, subs []Subscription, cur Currency) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := PrintJSON(f, NewListJSON(subs, cur)); err != nil {
		f.Close()
		return fmt.Errorf("writing JSON: %w", err)
	}
	return f.Close()
}

// ExportXLSX writes one row per record followed by a total of live costs
func ExportXLSX(path string, subs []Subscription) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, sub := range subs {
		row := []any{
			sub.ID, sub.Name, sub.Category.String(), string(sub.Status), string(sub.BillingCycle),
			sub.NextRenewalDate.String(), sub.IsTrial, sub.Currency, sub.Cost,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	totalRow := len(subs) + 2
	labelCell, _ := excelize.CoordinatesToCellName(len(exportHeader)-1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(exportHeader), totalRow)
	if err := f.SetCellValue(exportSheet, labelCell, "Total (live)"); err != nil {
		return fmt.Errorf("writing total: %w", err)
	}
	if err := f.SetCellValue(exportSheet, valueCell, RoundCents(TotalMonthlySpend(subs))); err != nil {
		return fmt.Errorf("writing total: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, labelCell, valueCell, bold); err != nil {
		return fmt.Errorf("styling total: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
