package report

import (
	"sort"
	"strings"

	"dartwatch/pkg/contracts/domain"
)

// Shared display column and sheet names.
const (
	CompanyColumn   = "회사명"
	URLColumn       = "URL"
	ReviewSheetName = "검토목록"
)

var reviewColumns = []string{CompanyColumn, "보고서명", URLColumn}

// composeReviewTable shapes the review list for export. The receipt
// date and number drive the tie-break but are not displayed.
func composeReviewTable(entries []domain.ReviewEntry) domain.ReportTable {
	table := domain.ReportTable{
		Name:    ReviewSheetName,
		Columns: reviewColumns,
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, map[string]string{
			CompanyColumn: e.CorpName,
			"보고서명":        e.ReportName,
			URLColumn:     e.ViewerURL,
		})
	}
	return table
}

// companyOrder returns the distinct company names of a table in row
// order. That ordering, derived from the primary table's own sort, is
// what every other table follows.
func companyOrder(t domain.ReportTable) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, row := range t.Rows {
		name := row[CompanyColumn]
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}
	return order
}

// sortByCompanyOrder stably reorders a table's rows to follow the given
// company ordering. Companies absent from the ordering sink to the end,
// keeping their relative order.
func sortByCompanyOrder(t *domain.ReportTable, order []string) {
	if len(t.Rows) == 0 || len(order) == 0 || !t.HasColumn(CompanyColumn) {
		return
	}
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}
	pos := func(row map[string]string) int {
		if r, ok := rank[row[CompanyColumn]]; ok {
			return r
		}
		return len(order)
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return pos(t.Rows[i]) < pos(t.Rows[j])
	})
}

// dedupRows drops rows whose display-column values are all identical,
// keeping the first occurrence.
func dedupRows(t *domain.ReportTable) {
	seen := make(map[string]struct{}, len(t.Rows))
	var out []map[string]string
	for _, row := range t.Rows {
		var b strings.Builder
		for _, col := range t.Columns {
			b.WriteString(row[col])
			b.WriteByte('\x1f')
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	t.Rows = out
}

// sortPrimaryTable applies the primary table's own ordering: payment
// date descending when the table has any payment date, otherwise
// company name ascending.
func sortPrimaryTable(t *domain.ReportTable, paymentColumn string) {
	hasPayment := false
	for _, row := range t.Rows {
		if row[paymentColumn] != "" {
			hasPayment = true
			break
		}
	}
	if hasPayment {
		sort.SliceStable(t.Rows, func(i, j int) bool {
			return t.Rows[i][paymentColumn] > t.Rows[j][paymentColumn]
		})
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i][CompanyColumn] < t.Rows[j][CompanyColumn]
	})
}
