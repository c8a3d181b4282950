// Package exporter writes composed reports into xlsx workbooks: one
// sheet per table, formatted numeric and URL columns, and a live
// cross-sheet highlight keyed to the review list.
package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dartwatch/pkg/contracts/domain"
)

const (
	numericColumnWidth = 14
	urlColumnWidth     = 53
	highlightColor     = "F8D7DA"
)

// WorkbookWriter renders reports to workbook bytes. Output buffers are
// owned by the caller; nothing is cached across writes.
type WorkbookWriter struct {
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewWorkbookWriter creates a writer stamping filenames in the given
// time zone (the target market's local time).
func NewWorkbookWriter(timezone string, logger *slog.Logger) (*WorkbookWriter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &WorkbookWriter{
		loc:    loc,
		logger: logger.With(slog.String("component", "workbook_writer")),
		now:    time.Now,
	}, nil
}

// Write renders the report and returns the workbook bytes together
// with the generated filename.
func (w *WorkbookWriter) Write(report *domain.Report) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, "", fmt.Errorf("create number style: %w", err)
	}

	for i, table := range report.Tables {
		if err := w.writeSheet(f, table, i == 0, numStyle); err != nil {
			return nil, "", err
		}
	}

	if err := w.applyHighlights(f, report); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("DART_%s_F%s_T%s_추출시간_%s.xlsx",
		report.Category, report.Window.Begin, report.Window.End,
		w.now().In(w.loc).Format("060102_1504"))

	w.logger.Info("workbook written",
		slog.String("filename", filename),
		slog.Int("sheets", len(report.Tables)))
	return buf.Bytes(), filename, nil
}

// writeSheet writes one table to its own sheet: header row, data rows,
// numeric coercion and formatting, and the wide URL column.
func (w *WorkbookWriter) writeSheet(f *excelize.File, table domain.ReportTable, first bool, numStyle int) error {
	if first {
		if err := f.SetSheetName("Sheet1", table.Name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", table.Name, err)
		}
	} else if _, err := f.NewSheet(table.Name); err != nil {
		return fmt.Errorf("create sheet %s: %w", table.Name, err)
	}

	numeric := make(map[string]bool, len(table.NumericColumns))
	for _, col := range table.NumericColumns {
		numeric[col] = true
	}

	for colIdx, col := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(table.Name, cell, col); err != nil {
			return err
		}
	}

	for rowIdx, row := range table.Rows {
		for colIdx, col := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			val := row[col]
			if numeric[col] {
				num, ok := coerceNumeric(val)
				if !ok {
					continue
				}
				if err := f.SetCellValue(table.Name, cell, num); err != nil {
					return err
				}
				continue
			}
			if val == "" {
				continue
			}
			if err := f.SetCellValue(table.Name, cell, val); err != nil {
				return err
			}
		}
	}

	for colIdx, col := range table.Columns {
		name, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return err
		}
		switch {
		case numeric[col]:
			if err := f.SetColWidth(table.Name, name, name, numericColumnWidth); err != nil {
				return err
			}
			if err := f.SetColStyle(table.Name, name, numStyle); err != nil {
				return err
			}
		case col == "URL":
			if err := f.SetColWidth(table.Name, name, name, urlColumnWidth); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyHighlights attaches the review-list highlight to every sheet
// with a company column. The rule is a conditional-format formula that
// looks the row's company up in the review sheet's own company range,
// so the shading stays live if the review list is edited afterwards.
func (w *WorkbookWriter) applyHighlights(f *excelize.File, report *domain.Report) error {
	reviewRange, companyCol := reviewCompanyRange(report)
	if reviewRange == "" {
		return nil
	}

	style, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highlightColor}},
	})
	if err != nil {
		return fmt.Errorf("create highlight style: %w", err)
	}

	for _, table := range report.Tables {
		if len(table.Rows) == 0 || !table.HasColumn(companyCol) {
			continue
		}

		nameIdx := 0
		for i, col := range table.Columns {
			if col == companyCol {
				nameIdx = i
				break
			}
		}
		nameCol, err := excelize.ColumnNumberToName(nameIdx + 1)
		if err != nil {
			return err
		}
		lastCol, err := excelize.ColumnNumberToName(len(table.Columns))
		if err != nil {
			return err
		}

		area := fmt.Sprintf("A2:%s%d", lastCol, len(table.Rows)+1)
		formula := fmt.Sprintf("ISNUMBER(MATCH($%s2,%s,0))", nameCol, reviewRange)
		err = f.SetConditionalFormat(table.Name, area, []excelize.ConditionalFormatOptions{
			{Type: "formula", Criteria: formula, Format: &style},
		})
		if err != nil {
			return fmt.Errorf("set highlight on %s: %w", table.Name, err)
		}
	}
	return nil
}

// reviewCompanyRange returns the absolute cross-sheet reference of the
// review sheet's company column, or "" when no review data exists.
func reviewCompanyRange(report *domain.Report) (string, string) {
	const companyCol = "회사명"
	for _, table := range report.Tables {
		if table.Name != report.ReviewSheet || len(table.Rows) == 0 {
			continue
		}
		idx := -1
		for i, col := range table.Columns {
			if col == companyCol {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", companyCol
		}
		name, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return "", companyCol
		}
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d",
			table.Name, name, name, len(table.Rows)+1), companyCol
	}
	return "", companyCol
}

// coerceNumeric converts a display value to a number for the styled
// numeric columns: separators stripped, a dash treated as missing, and
// unparseable values left empty.
func coerceNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
