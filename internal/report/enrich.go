package report

import (
	"context"
	"log/slog"
	"regexp"

	"dartwatch/pkg/contracts/domain"
)

var eightDigits = regexp.MustCompile(`^\d{8}$`)

// listMeta is the slice of list metadata merged onto detail rows.
type listMeta struct {
	ReceiptNo  string
	CorpName   string
	ReportName string
	ViewerURL  string
}

// enrichCapitalIncrease fetches capital increase decision details for
// every distinct company in the filtered list and merges them back onto
// the list metadata.
//
// The upstream query widens the window start by the configured lookback
// and the merged rows are re-filtered against the exact requested
// window using the date embedded in the receipt number. A failed or
// empty response for one company skips that company only; the run
// continues. Output is deduplicated on (company code, receipt number).
func (s *Service) enrichCapitalIncrease(ctx context.Context, filtered []domain.FilingRecord, window domain.DateWindow) ([]domain.DecisionDetail, error) {
	var corpOrder []string
	metaByCorp := make(map[string][]listMeta)
	for _, rec := range filtered {
		if NormalizeTitle(rec.ReportName) != TitlePaidInCapitalIncrease || rec.CorpCode == "" {
			continue
		}
		if _, seen := metaByCorp[rec.CorpCode]; !seen {
			corpOrder = append(corpOrder, rec.CorpCode)
		}
		metaByCorp[rec.CorpCode] = append(metaByCorp[rec.CorpCode], listMeta{
			ReceiptNo:  rec.ReceiptNo,
			CorpName:   rec.CorpName,
			ReportName: rec.ReportName,
			ViewerURL:  rec.ViewerURL,
		})
	}
	if len(corpOrder) == 0 {
		return nil, nil
	}

	widened := widenBegin(window.Begin, s.capitalLookbackMonths)

	var merged []domain.DecisionDetail
	for _, corp := range corpOrder {
		rows, err := s.api.CapitalIncreaseDecisions(ctx, corp, widened, window.End)
		if err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			s.logger.WarnContext(ctx, "skipping company: detail fetch failed",
				slog.String("corp_code", corp),
				slog.String("error", err.Error()))
			continue
		}
		if len(rows) == 0 {
			s.logger.DebugContext(ctx, "skipping company: no decision rows",
				slog.String("corp_code", corp))
			continue
		}
		merged = append(merged, mergeDetailRows(corp, rows, metaByCorp[corp])...)
	}

	merged = filterByEmbeddedDate(merged, window)
	return dedupDetails(merged), nil
}

// mergeDetailRows joins detail rows with list metadata. When a detail
// row carries its own receipt number the join key is (company, receipt
// number); rows without one fan out over the company's list entries,
// adopting their receipt numbers. Either way this is a left join: a
// detail row without a metadata match survives with empty name fields.
func mergeDetailRows(corpCode string, rows []map[string]string, metas []listMeta) []domain.DecisionDetail {
	var out []domain.DecisionDetail
	for _, row := range rows {
		code := row["corp_code"]
		if code == "" {
			code = corpCode
		}

		if rcept := row["rcept_no"]; rcept != "" {
			detail := domain.DecisionDetail{CorpCode: code, ReceiptNo: rcept, Fields: row}
			for _, meta := range metas {
				if meta.ReceiptNo == rcept {
					detail.CorpName = meta.CorpName
					detail.ReportName = meta.ReportName
					detail.ViewerURL = meta.ViewerURL
					break
				}
			}
			// The detail endpoint's own company name wins when present.
			if name := row["corp_name"]; name != "" {
				detail.CorpName = name
			}
			out = append(out, detail)
			continue
		}

		for _, meta := range metas {
			out = append(out, domain.DecisionDetail{
				CorpCode:   code,
				CorpName:   meta.CorpName,
				ReceiptNo:  meta.ReceiptNo,
				ReportName: meta.ReportName,
				ViewerURL:  meta.ViewerURL,
				Fields:     row,
			})
		}
	}
	return out
}

// filterByEmbeddedDate keeps rows whose receipt number starts with an
// 8-digit date inside the exact requested window, discarding anything
// the widened upstream query admitted outside it.
func filterByEmbeddedDate(details []domain.DecisionDetail, window domain.DateWindow) []domain.DecisionDetail {
	var out []domain.DecisionDetail
	for _, d := range details {
		if len(d.ReceiptNo) < 8 {
			continue
		}
		ymd := d.ReceiptNo[:8]
		if !eightDigits.MatchString(ymd) || !window.Contains(ymd) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dedupDetails drops rows sharing a (company code, receipt number)
// pair, keeping the first occurrence.
func dedupDetails(details []domain.DecisionDetail) []domain.DecisionDetail {
	seen := make(map[[2]string]struct{}, len(details))
	var out []domain.DecisionDetail
	for _, d := range details {
		key := [2]string{d.CorpCode, d.ReceiptNo}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
