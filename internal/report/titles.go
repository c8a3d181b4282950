// Package report implements the disclosure aggregation pipeline: list
// filtering, per-company detail enrichment, derived financial fields,
// review-list selection, and composition of the export tables.
package report

import (
	"regexp"
	"strings"

	"dartwatch/pkg/contracts/domain"
)

// Filing categories consumed from the list endpoint.
const (
	// CategoryMajorReports is the publication type code for material
	// fact reports on the list endpoint.
	CategoryMajorReports = "B"

	// TitlePaidInCapitalIncrease is the major report sub-category that
	// drives the capital increase detail lookup.
	TitlePaidInCapitalIncrease = "주요사항보고서(유상증자결정)"

	// TitleEquityRegistration is the registration statement title the
	// rights issue report matches by substring.
	TitleEquityRegistration = "증권신고서(지분증권)"
)

// MajorReportTitles is the allow-list of normalized titles the major
// issuance report retains. Matching is exact, not substring.
var MajorReportTitles = map[string]struct{}{
	"주요사항보고서(유상증자결정)":       {},
	"주요사항보고서(전환사채권발행결정)":    {},
	"주요사항보고서(신주인수권부사채발행결정)": {},
}

// Review markers embedded in filing titles.
const (
	markerCorrection = "[기재정정]"
	markerFinalized  = "[발행조건확정]"
)

var (
	leadingBrackets = regexp.MustCompile(`^\s*(\[[^\]]+\]\s*)+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// NormalizeTitle strips every leading bracketed marker (revision,
// correction, finalized-condition) from a filing title and trims the
// result. It is idempotent. The normalized form is used only for
// category matching; the original title is what reports display.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(leadingBrackets.ReplaceAllString(title, ""))
}

// FilterByCategory retains records whose normalized title is in the
// allow-list and attaches each survivor's viewer URL.
func FilterByCategory(records []domain.FilingRecord, allow map[string]struct{}, viewerURL func(receiptNo string) string) []domain.FilingRecord {
	var out []domain.FilingRecord
	for _, rec := range records {
		if _, ok := allow[NormalizeTitle(rec.ReportName)]; !ok {
			continue
		}
		rec.ViewerURL = viewerURL(rec.ReceiptNo)
		out = append(out, rec)
	}
	return out
}

// FilterByTitleContains retains records whose raw title contains the
// given fragment, attaching viewer URLs. The registration statement
// list keeps its bracketed revision markers, so this match is a
// substring test on the unnormalized title.
func FilterByTitleContains(records []domain.FilingRecord, fragment string, viewerURL func(receiptNo string) string) []domain.FilingRecord {
	var out []domain.FilingRecord
	for _, rec := range records {
		if !strings.Contains(rec.ReportName, fragment) {
			continue
		}
		rec.ViewerURL = viewerURL(rec.ReceiptNo)
		out = append(out, rec)
	}
	return out
}
