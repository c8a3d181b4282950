package report

import (
	"context"
	"log/slog"

	apierrors "dartwatch/internal/errors"
	"dartwatch/pkg/contracts/domain"
)

// CategoryRightsIssue names the rights issue report in output filenames.
const CategoryRightsIssue = "증권신고서_지분증권"

// Titles of the grouped blocks on the equity registration endpoint.
const (
	groupGeneral      = "일반사항"
	groupSecurityKind = "증권의종류"
	groupFundsUse     = "자금의사용목적"
	groupSellers      = "매출인에관한사항"
	groupPutBack      = "일반청약자환매청구권"
	groupUnderwriters = "인수인정보"
)

// Sheet names. The put-back sheet's historical name differs by one
// character from the upstream group title; both spellings are kept.
const (
	sheetGeneral      = "일반사항"
	sheetUnderwriters = "인수인정보"
	sheetFundsUse     = "자금의사용목적"
	sheetSellers      = "매출인에관한사항"
	sheetPutBack      = "일반청약차환매청구권"
)

// fieldLabels maps upstream field names to display labels.
var fieldLabels = map[string]string{
	"corp_cls":   "상장구분",
	"corp_code":  "고유번호",
	"corp_name":  "회사명",
	"stock_code": "주식코드",
	"stock_name": "주식명",
	"rcept_no":   "접수번호",
	"report_nm":  "보고서명",
	"sbd":        "청약기일",
	"pymd":       "납입기일",
	"sband":      "청약공고일",
	"asand":      "배정공고일",
	"asstd":      "배정기준일",
	"exstk":      "행사대상증권",
	"exprc":      "행사가격",
	"expd":       "행사기간",
	"stksen":     "증권의종류",
	"stkcnt":     "증권수량",
	"fv":         "액면가액",
	"slprc":      "모집(매출)가액",
	"slta":       "모집(매출)총액",
	"slmthn":     "모집(매출)방법",
	"actsen":     "인수인구분",
	"actnmn":     "인수인명",
	"udtcnt":     "인수수량",
	"udtamt":     "인수금액",
	"udtprc":     "인수대가",
	"udtmth":     "인수방법",
	"se":         "구분",
	"amt":        "금액",
	"hdr":        "보유자",
	"rl_cmp":     "회사와의관계",
	"bfsl_hdstk": "매출전보유증권수",
	"slstk":      "매출증권수",
	"atsl_hdstk": "매출후보유증권수",
	"grtrs":      "부여사유",
	"exavivr":    "행사가능투자자",
	"grtcnt":     "부여수량",
}

// corpClassNames relabels the listing venue code for display.
var corpClassNames = map[string]string{
	"Y": "코스피",
	"K": "코스닥",
	"N": "코넥스",
	"E": "기타",
}

// Display columns per sheet, in order.
var (
	rightsBaseColumns = []string{
		CompanyColumn, "상장구분", "증권의종류", "증권수량", "액면가액",
		"모집(매출)가액", "모집(매출)총액", "청약기일", "납입기일", "청약공고일",
		"배정공고일", "배정기준일", "대표자명", "주소", "전화번호", "팩스번호", URLColumn,
	}
	fundsUseColumns = []string{CompanyColumn, "구분", "금액"}
	sellersColumns  = []string{
		CompanyColumn, "보유자", "회사와의관계", "매출전보유증권수", "매출증권수", "매출후보유증권수",
	}
	putBackColumns = []string{
		CompanyColumn, "부여사유", "행사가능투자자", "부여수량", "행사대상증권", "행사가격", "행사기간",
	}
	underwriterColumns = []string{
		CompanyColumn, "인수인구분", "인수인명", "증권의종류", "인수수량", "인수금액", "인수대가", "인수방법",
	}
)

// RightsIssueReport runs the equity registration statement pipeline:
// substring title filter over the full list, per-company grouped detail
// fetch with company overview merge, review-list selection, and a
// single company ordering propagated across every sheet.
func (s *Service) RightsIssueReport(ctx context.Context, window domain.DateWindow) (*domain.Report, error) {
	filings, err := s.api.ListFilings(ctx, window, "")
	if err != nil {
		return nil, err
	}

	filtered := FilterByTitleContains(filings, TitleEquityRegistration, s.api.ViewerURL)
	if len(filtered) == 0 {
		return nil, apierrors.ErrNoData
	}

	base := domain.ReportTable{Name: sheetGeneral, Columns: rightsBaseColumns}
	fundsUse := domain.ReportTable{Name: sheetFundsUse, Columns: fundsUseColumns}
	sellers := domain.ReportTable{Name: sheetSellers, Columns: sellersColumns}
	putBack := domain.ReportTable{Name: sheetPutBack, Columns: putBackColumns}
	underwriters := domain.ReportTable{Name: sheetUnderwriters, Columns: underwriterColumns}

	widened := widenBegin(window.Begin, s.registrationLookbackMonths)

	for _, corp := range distinctCorpCodes(filtered) {
		groups, err := s.api.EquityRegistrations(ctx, corp, widened, window.End)
		if err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			s.logger.WarnContext(ctx, "skipping company: registration fetch failed",
				slog.String("corp_code", corp),
				slog.String("error", err.Error()))
			continue
		}

		byTitle := make(map[string][]map[string]string, len(groups))
		for _, g := range groups {
			byTitle[g.Title] = g.List
		}

		general := byTitle[groupGeneral]
		if len(general) == 0 {
			s.logger.DebugContext(ctx, "skipping company: no general block",
				slog.String("corp_code", corp))
			continue
		}

		overview, err := s.api.CompanyOverview(ctx, corp)
		if err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			s.logger.WarnContext(ctx, "skipping company: overview fetch failed",
				slog.String("corp_code", corp),
				slog.String("error", err.Error()))
			continue
		}

		for _, row := range composeBaseRows(general, byTitle[groupSecurityKind], overview, s.api.ViewerURL) {
			base.Rows = append(base.Rows, row)
		}
		appendGroupRows(&fundsUse, byTitle[groupFundsUse])
		appendGroupRows(&sellers, byTitle[groupSellers])
		appendGroupRows(&putBack, byTitle[groupPutBack])
		appendGroupRows(&underwriters, byTitle[groupUnderwriters])
	}

	for _, t := range []*domain.ReportTable{&base, &fundsUse, &sellers, &putBack, &underwriters} {
		dedupRows(t)
	}
	if len(base.Rows) == 0 {
		return nil, apierrors.ErrNoData
	}

	sortPrimaryTable(&base, "납입기일")
	order := companyOrder(base)

	reviewTable := composeReviewTable(BuildReviewList(filtered))
	for _, t := range []*domain.ReportTable{&reviewTable, &fundsUse, &sellers, &putBack, &underwriters} {
		sortByCompanyOrder(t, order)
	}

	s.logger.InfoContext(ctx, "rights issue report composed",
		slog.Int("filings", len(filtered)),
		slog.Int("base_rows", len(base.Rows)),
		slog.Int("review_entries", len(reviewTable.Rows)))

	return &domain.Report{
		Category: CategoryRightsIssue,
		Window:   window,
		Tables: []domain.ReportTable{
			reviewTable, base, underwriters, fundsUse, sellers, putBack,
		},
		ReviewSheet: ReviewSheetName,
	}, nil
}

// distinctCorpCodes returns the company codes of the filtered list in
// first-appearance order.
func distinctCorpCodes(records []domain.FilingRecord) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, rec := range records {
		if rec.CorpCode == "" {
			continue
		}
		if _, dup := seen[rec.CorpCode]; dup {
			continue
		}
		seen[rec.CorpCode] = struct{}{}
		order = append(order, rec.CorpCode)
	}
	return order
}

// composeBaseRows natural-joins the general block with the security
// kind block (every kind row whose shared fields agree), merges in the
// company overview, relabels fields for display, and attaches the
// viewer URL.
func composeBaseRows(general, kinds []map[string]string, overview *domain.CompanyOverview, viewerURL func(string) string) []map[string]string {
	joined := naturalJoin(general, kinds)

	rows := make([]map[string]string, 0, len(joined))
	for _, src := range joined {
		row := make(map[string]string, len(src)+5)
		for key, val := range src {
			label, ok := fieldLabels[key]
			if !ok {
				label = key
			}
			row[label] = val
		}
		if cls, ok := corpClassNames[row["상장구분"]]; ok {
			row["상장구분"] = cls
		}
		row["대표자명"] = overview.CEOName
		row["주소"] = overview.Address
		row["전화번호"] = overview.Phone
		row["팩스번호"] = overview.Fax
		if rcept := src["rcept_no"]; rcept != "" {
			row[URLColumn] = viewerURL(rcept)
		}
		rows = append(rows, row)
	}
	return rows
}

// naturalJoin inner-joins two row sets on every field name they share,
// keeping left rows unmatched-free like the upstream merge. An empty
// right side passes the left side through unchanged.
func naturalJoin(left, right []map[string]string) []map[string]string {
	if len(right) == 0 {
		return left
	}

	var shared []string
	if len(left) > 0 {
		for key := range left[0] {
			if _, ok := right[0][key]; ok {
				shared = append(shared, key)
			}
		}
	}

	var out []map[string]string
	for _, l := range left {
		for _, r := range right {
			match := true
			for _, key := range shared {
				if l[key] != r[key] {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			merged := make(map[string]string, len(l)+len(r))
			for k, v := range r {
				merged[k] = v
			}
			for k, v := range l {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out
}

// appendGroupRows relabels a grouped block's rows and appends them to
// the table's accumulator.
func appendGroupRows(t *domain.ReportTable, rows []map[string]string) {
	for _, src := range rows {
		row := make(map[string]string, len(src))
		for key, val := range src {
			label, ok := fieldLabels[key]
			if !ok {
				label = key
			}
			row[label] = val
		}
		t.Rows = append(t.Rows, row)
	}
}
