package report

import (
	"context"
	"log/slog"
	"strconv"

	apierrors "dartwatch/internal/errors"
	"dartwatch/pkg/contracts/domain"
)

// CategoryMajorIssuance names the major issuance report in output
// filenames.
const CategoryMajorIssuance = "주요사항보고서_유상증자결정"

const majorSheetName = "주요사항보고서_유상증자결정"

// Display columns of the major issuance sheet, in order.
var majorColumns = []string{
	CompanyColumn,
	"증자방식",
	"발행주식수",
	"발행가액",
	"발행금액",
	"납입일",
	"신주상장예정일",
	"대표이사",
	"주소",
	"작성책임자_직책",
	"작성책임자_성명",
	"작성책임자_전화번호",
	URLColumn,
}

var majorNumericColumns = []string{"발행주식수", "발행가액", "발행금액"}

// Person-name columns are exported with all whitespace removed.
var majorNameColumns = []string{"대표이사", "작성책임자_직책", "작성책임자_성명"}

// MajorIssuanceReport runs the material-fact pipeline for paid-in
// capital increase decisions: list fetch, category filter, per-company
// detail enrichment, derived financial fields, document field
// extraction, review-list selection, and table composition.
//
// It returns ErrNoData when no filing matches the category filter or no
// detail row survives enrichment; that outcome is distinct from a
// failed run.
func (s *Service) MajorIssuanceReport(ctx context.Context, window domain.DateWindow) (*domain.Report, error) {
	filings, err := s.api.ListFilings(ctx, window, CategoryMajorReports)
	if err != nil {
		return nil, err
	}

	filtered := FilterByCategory(filings, MajorReportTitles, s.api.ViewerURL)
	if len(filtered) == 0 {
		return nil, apierrors.ErrNoData
	}

	details, err := s.enrichCapitalIncrease(ctx, filtered, window)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apierrors.ErrNoData
	}
	AddFinanceColumns(details)

	parsed := s.extractDocumentFields(ctx, details)

	table := composeMajorTable(details, parsed)
	sortPrimaryTable(&table, "납입일")

	reviewTable := composeReviewTable(BuildReviewList(filtered))
	sortByCompanyOrder(&reviewTable, companyOrder(table))

	s.logger.InfoContext(ctx, "major issuance report composed",
		slog.Int("filings", len(filtered)),
		slog.Int("details", len(details)),
		slog.Int("review_entries", len(reviewTable.Rows)))

	return &domain.Report{
		Category:    CategoryMajorIssuance,
		Window:      window,
		Tables:      []domain.ReportTable{reviewTable, table},
		ReviewSheet: ReviewSheetName,
	}, nil
}

// extractDocumentFields downloads and parses the full document of every
// distinct filing in the detail set. A failed download or extraction
// for one filing records the error on that filing's row and continues;
// document problems never abort the run.
func (s *Service) extractDocumentFields(ctx context.Context, details []domain.DecisionDetail) map[string]domain.ParsedDocumentFields {
	parsed := make(map[string]domain.ParsedDocumentFields)
	for _, d := range details {
		if d.ReceiptNo == "" {
			continue
		}
		if _, done := parsed[d.ReceiptNo]; done {
			continue
		}

		text, err := s.api.FilingDocument(ctx, d.ReceiptNo)
		if err != nil {
			s.logger.WarnContext(ctx, "document fetch failed",
				slog.String("rcept_no", d.ReceiptNo),
				slog.String("error", err.Error()))
			parsed[d.ReceiptNo] = domain.ParsedDocumentFields{
				ReceiptNo:  d.ReceiptNo,
				FetchError: err.Error(),
			}
			continue
		}

		fields := s.extractor.Extract(text)
		fields.ReceiptNo = d.ReceiptNo
		parsed[d.ReceiptNo] = fields
	}
	return parsed
}

// composeMajorTable left-joins the detail rows with the parsed document
// fields and projects them onto the display columns. Every detail row
// is kept even when extraction failed or produced no fields.
func composeMajorTable(details []domain.DecisionDetail, parsed map[string]domain.ParsedDocumentFields) domain.ReportTable {
	table := domain.ReportTable{
		Name:           majorSheetName,
		Columns:        majorColumns,
		NumericColumns: majorNumericColumns,
	}

	for _, d := range details {
		fields := parsed[d.ReceiptNo]
		row := map[string]string{
			CompanyColumn: d.CorpName,
			"증자방식":        d.Fields["ic_mthn"],
			"발행주식수":       strconv.FormatFloat(d.ShareTotal, 'f', -1, 64),
			"발행가액":        strconv.FormatFloat(d.UnitPrice, 'f', -1, 64),
			"발행금액":        strconv.FormatFloat(d.FundsTotal, 'f', -1, 64),
			"납입일":         deref(fields.PaymentDate),
			"신주상장예정일":     deref(fields.ListingDate),
			"대표이사":        deref(fields.Representative),
			"주소":          deref(fields.HeadOffice),
			"작성책임자_직책":    deref(fields.WriterTitle),
			"작성책임자_성명":    deref(fields.WriterName),
			"작성책임자_전화번호":  deref(fields.WriterPhone),
			URLColumn:     d.ViewerURL,
		}
		for _, col := range majorNameColumns {
			row[col] = whitespaceRe.ReplaceAllString(row[col], "")
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
