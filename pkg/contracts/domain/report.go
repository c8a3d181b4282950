package domain

// DateWindow is an inclusive filing date range in YYYYMMDD form. The
// 8-digit strings compare lexically in chronological order, so window
// checks are plain string comparisons.
type DateWindow struct {
	Begin string `json:"bgn_de" validate:"required,len=8,numeric"`
	End   string `json:"end_de" validate:"required,len=8,numeric,gtefield=Begin"`
}

// Contains reports whether the 8-digit date falls inside the window.
func (w DateWindow) Contains(ymd string) bool {
	return len(ymd) == 8 && ymd >= w.Begin && ymd <= w.End
}

// ReportTable is one ordered sheet of report output. Rows are keyed by
// column name; a missing key renders as an empty cell, which is how the
// composer inserts placeholders for columns absent upstream.
type ReportTable struct {
	Name           string
	Columns        []string
	Rows           []map[string]string
	NumericColumns []string
}

// HasColumn reports whether the table carries the named display column.
func (t ReportTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnValues returns the cell values of one column in row order.
func (t ReportTable) ColumnValues(name string) []string {
	vals := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		vals = append(vals, row[name])
	}
	return vals
}

// Report is the composed, ordered result of one pipeline run, ready for
// export. Tables appear in sheet order; ReviewSheet names the table the
// cross-sheet highlight rule references.
type Report struct {
	Category    string
	Window      DateWindow
	Tables      []ReportTable
	ReviewSheet string
}
