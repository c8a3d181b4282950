package report

import (
	"sort"
	"strings"

	"dartwatch/pkg/contracts/domain"
)

// BuildReviewList selects the filings that need manual verification:
// titles carrying a correction or finalized-condition marker. Rows are
// grouped per company; the representative is the most recent
// finalized-condition filing when the group has one, otherwise the most
// recent filing overall. Recency orders by receipt date, then receipt
// number, ties broken by original relative order.
func BuildReviewList(records []domain.FilingRecord) []domain.ReviewEntry {
	var candidates []domain.FilingRecord
	for _, rec := range records {
		if strings.Contains(rec.ReportName, markerCorrection) ||
			strings.Contains(rec.ReportName, markerFinalized) {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CorpName != b.CorpName {
			return a.CorpName < b.CorpName
		}
		if a.ReceiptDate != b.ReceiptDate {
			return a.ReceiptDate > b.ReceiptDate
		}
		return a.ReceiptNo > b.ReceiptNo
	})

	var entries []domain.ReviewEntry
	for start := 0; start < len(candidates); {
		end := start
		for end < len(candidates) && candidates[end].CorpName == candidates[start].CorpName {
			end++
		}

		pick := candidates[start]
		for _, rec := range candidates[start:end] {
			if strings.Contains(rec.ReportName, markerFinalized) {
				pick = rec
				break
			}
		}

		entries = append(entries, domain.ReviewEntry{
			CorpName:    pick.CorpName,
			ReportName:  pick.ReportName,
			ReceiptDate: pick.ReceiptDate,
			ReceiptNo:   pick.ReceiptNo,
			ViewerURL:   pick.ViewerURL,
		})
		start = end
	}
	return entries
}
