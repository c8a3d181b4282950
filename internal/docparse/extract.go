// Package docparse recovers semi-structured fields from DART filing
// documents. The documents have no fixed schema; fields are located by
// a chain of heuristics with fixed precedence — an attribute-keyed scan
// over the raw markup, a label/adjacent-cell scan over the table cells,
// and a direct label-pattern fallback. Every field is independently
// nullable and absence is a normal outcome.
package docparse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dartwatch/pkg/contracts/domain"
)

// DefaultScanWindow bounds the forward scan for signatory sub-fields
// after the signatory label cell. The bound is a heuristic: documents
// laid out differently may attribute a value to the wrong field, which
// is accepted as a limitation of positional matching.
const DefaultScanWindow = 12

// Cell labels and their sub-labels, matched against the normalized
// (whitespace/punctuation-stripped) cell text.
const (
	labelRepresentative = "대표이사"
	labelHeadOffice     = "본점소재지"
	labelWriter         = "작성책임자"
	subLabelTitle       = "직책"
	subLabelName        = "성명"
	subLabelPhone       = "전화"
)

var (
	paymentAttrRe = regexp.MustCompile(`(?i)AUNIT\s*=\s*"PYM_DT"[^>]*AUNITVALUE\s*=\s*"([^"]+)"`)
	listingAttrRe = regexp.MustCompile(`(?i)AUNIT\s*=\s*"LST_PLN_DT"[^>]*AUNITVALUE\s*=\s*"([^"]+)"`)

	paymentLabelRe = regexp.MustCompile(`(?is)납입일</TD>\s*<T[UE][^>]*>(.*?)</T[UE]>`)
	listingLabelRe = regexp.MustCompile(`(?is)신주의\s*상장\s*예정일</TD>\s*<T[UE][^>]*>(.*?)</T[UE]>`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	normStripRe  = regexp.MustCompile(`[\s:()]`)

	titleEchoRe = regexp.MustCompile(`^\(?\s*직\s*책\s*\)?\s*`)
	nameEchoRe  = regexp.MustCompile(`^\(?\s*성\s*명\s*\)?\s*`)
	phoneEchoRe = regexp.MustCompile(`^\(?\s*전\s*화\s*\)?\s*`)
)

// Extractor recovers document fields. The zero value is not usable;
// construct with NewExtractor.
type Extractor struct {
	// ScanWindow overrides DefaultScanWindow for the signatory block.
	ScanWindow int
}

// NewExtractor creates an extractor with the default scan window.
func NewExtractor() *Extractor {
	return &Extractor{ScanWindow: DefaultScanWindow}
}

// Extract recovers every field it can from one document's markup. The
// caller fills in the receipt number.
func (e *Extractor) Extract(markup string) domain.ParsedDocumentFields {
	var f domain.ParsedDocumentFields
	if markup == "" {
		return f
	}

	e.scanCells(markup, &f)
	scanScheduleAttributes(markup, &f)
	scanScheduleLabels(markup, &f)

	f.Representative = normalizeValue(f.Representative)
	f.HeadOffice = normalizeValue(f.HeadOffice)
	f.WriterTitle = normalizeValue(f.WriterTitle)
	f.WriterName = normalizeValue(f.WriterName)
	f.WriterPhone = normalizeValue(f.WriterPhone)
	f.PaymentDate = normalizeValue(f.PaymentDate)
	f.ListingDate = normalizeValue(f.ListingDate)
	return f
}

// scanCells walks the document's table cells in order, filling the
// contact block fields. The representative and head-office values sit
// in the next non-empty cell after their label; the signatory
// sub-fields share a cell with their label and are recovered by
// stripping the leading label echo, within a bounded window after the
// signatory section label.
func (e *Extractor) scanCells(markup string, f *domain.ParsedDocumentFields) {
	cells := tableCells(markup)
	if len(cells) == 0 {
		return
	}

	norms := make([]string, len(cells))
	for i, c := range cells {
		norms[i] = normStripRe.ReplaceAllString(c, "")
	}

	nextNonEmpty := func(idx int) *string {
		for j := idx + 1; j < len(cells); j++ {
			if cells[j] != "" {
				v := cells[j]
				return &v
			}
		}
		return nil
	}

	writerStart := -1
	for i, norm := range norms {
		switch {
		case strings.Contains(norm, labelRepresentative) && f.Representative == nil:
			f.Representative = nextNonEmpty(i)
		case strings.Contains(norm, labelHeadOffice) && f.HeadOffice == nil:
			f.HeadOffice = nextNonEmpty(i)
		case strings.Contains(norm, labelWriter) && writerStart < 0:
			writerStart = i
		}
	}
	if writerStart < 0 {
		return
	}

	window := e.ScanWindow
	if window <= 0 {
		window = DefaultScanWindow
	}
	for j := writerStart + 1; j < writerStart+window && j < len(cells); j++ {
		text, norm := cells[j], norms[j]
		switch {
		case strings.Contains(norm, subLabelTitle) && f.WriterTitle == nil:
			v := strings.TrimSpace(titleEchoRe.ReplaceAllString(text, ""))
			f.WriterTitle = &v
		case strings.Contains(norm, subLabelName) && f.WriterName == nil:
			v := strings.TrimSpace(nameEchoRe.ReplaceAllString(text, ""))
			f.WriterName = &v
		case strings.Contains(norm, subLabelPhone) && f.WriterPhone == nil:
			v := strings.TrimSpace(phoneEchoRe.ReplaceAllString(text, ""))
			f.WriterPhone = &v
		}
	}
}

// tableCells returns the cleaned text of every table cell in document
// order: markup stripped, entities unescaped, non-breaking spaces and
// runs of whitespace collapsed.
func tableCells(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var cells []string
	doc.Find("td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, cleanCellText(s.Text()))
	})
	return cells
}

func cleanCellText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// scanScheduleAttributes reads the payment and listing dates from the
// fixed AUNIT attributes when the document carries them.
func scanScheduleAttributes(markup string, f *domain.ParsedDocumentFields) {
	if m := paymentAttrRe.FindStringSubmatch(markup); m != nil && f.PaymentDate == nil {
		v := strings.TrimSpace(m[1])
		f.PaymentDate = &v
	}
	if m := listingAttrRe.FindStringSubmatch(markup); m != nil && f.ListingDate == nil {
		v := strings.TrimSpace(m[1])
		f.ListingDate = &v
	}
}

// scanScheduleLabels is the fallback for documents without the AUNIT
// attributes: the date is the cell immediately following the label cell
// in the raw markup.
func scanScheduleLabels(markup string, f *domain.ParsedDocumentFields) {
	if f.PaymentDate == nil || *f.PaymentDate == "" || *f.PaymentDate == "-" {
		if m := paymentLabelRe.FindStringSubmatch(markup); m != nil {
			v := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
			f.PaymentDate = &v
		}
	}
	if f.ListingDate == nil || *f.ListingDate == "" || *f.ListingDate == "-" {
		if m := listingLabelRe.FindStringSubmatch(markup); m != nil {
			v := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
			f.ListingDate = &v
		}
	}
}

// normalizeValue maps empty-string and dash placeholders to null; a
// recovered field is either absent or meaningful, never blank.
func normalizeValue(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" || t == "-" {
		return nil
	}
	return &t
}
