package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"medslot/internal/domain"
)

const (
	SummarySheet    = "Summary"
	DoctorSheet     = "By doctor"
	DepartmentSheet = "By department"
)

// HospitalRevenueWorkbook writes a hospital dashboard to an xlsx workbook with a
// summary sheet and one sheet per breakdown.
func HospitalRevenueWorkbook(dashboard domain.HospitalDashboard, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("ошибка создания листа: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}

	moneyFormat := "0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}

	total, err := money(dashboard.TotalRevenue)
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Hospital", dashboard.HospitalName},
		{"Hospital ID", dashboard.HospitalID},
		{"Completed consultations", dashboard.TotalConsultations},
		{"Hospital revenue", total},
		{"Generated at", generatedAt.Format(time.RFC3339)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle); err != nil {
		return nil, fmt.Errorf("ошибка установки стиля: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "B4", "B4", moneyStyle); err != nil {
		return nil, fmt.Errorf("ошибка установки стиля: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 26); err != nil {
		return nil, fmt.Errorf("ошибка установки ширины колонки: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 40); err != nil {
		return nil, fmt.Errorf("ошибка установки ширины колонки: %w", err)
	}

	if err := writeBreakdown(f, DoctorSheet, "Doctor revenue", dashboard.ByDoctor, headerStyle, moneyStyle); err != nil {
		return nil, err
	}
	if err := writeBreakdown(f, DepartmentSheet, "Hospital revenue", dashboard.ByDepartment, headerStyle, moneyStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи книги: %w", err)
	}

	return buf.Bytes(), nil
}

func writeBreakdown(f *excelize.File, sheet, revenueTitle string, lines []domain.RevenueLine, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("ошибка создания листа %s: %w", sheet, err)
	}

	header := []any{"ID", "Name", revenueTitle}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("ошибка установки стиля: %w", err)
	}

	for i, line := range lines {
		amount, err := money(line.Revenue)
		if err != nil {
			return err
		}
		row := []any{line.Key, line.Name, amount}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", i+2, err)
		}
	}

	if len(lines) > 0 {
		if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", len(lines)+1), moneyStyle); err != nil {
			return fmt.Errorf("ошибка установки стиля: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return fmt.Errorf("ошибка установки ширины колонки: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 30); err != nil {
		return fmt.Errorf("ошибка установки ширины колонки: %w", err)
	}
	if err := f.SetColWidth(sheet, "C", "C", 18); err != nil {
		return fmt.Errorf("ошибка установки ширины колонки: %w", err)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func money(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("некорректная сумма %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}
