package domain

// FilingRecord is one disclosure entry from the DART list endpoint.
// ReceiptNo is globally unique; its leading 8 digits encode the
// submission date (YYYYMMDD) and sort both lexically and chronologically.
type FilingRecord struct {
	CorpClass   string `json:"corp_cls"`
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	StockCode   string `json:"stock_code"`
	ReportName  string `json:"report_nm"`
	ReceiptNo   string `json:"rcept_no"`
	FilerName   string `json:"flr_nm"`
	ReceiptDate string `json:"rcept_dt"`
	Remark      string `json:"rm"`

	// ViewerURL is derived from ReceiptNo when the record passes the
	// category filter; it is not part of the upstream payload.
	ViewerURL string `json:"-"`
}

// ReceiptYMD returns the 8-digit date embedded in the receipt number,
// or "" when the receipt number is too short.
func (f FilingRecord) ReceiptYMD() string {
	if len(f.ReceiptNo) < 8 {
		return ""
	}
	return f.ReceiptNo[:8]
}

// DecisionDetail is one row from a per-company decision endpoint merged
// with list metadata. Fields holds the raw upstream key/value pairs; the
// endpoints return every value as a string and the field set varies by
// filing, so no fixed struct can cover it.
type DecisionDetail struct {
	CorpCode   string
	CorpName   string
	ReceiptNo  string
	ReportName string
	ViewerURL  string
	Fields     map[string]string

	// Derived by the finance stage.
	FundsTotal float64
	ShareTotal float64
	UnitPrice  float64
}

// DetailGroup is one titled block of rows from a grouped detail
// endpoint (e.g. the equity registration statement groups).
type DetailGroup struct {
	Title string              `json:"title"`
	List  []map[string]string `json:"list"`
}

// CompanyOverview is the company profile record from the DART company
// endpoint. Only the fields the reports consume are modelled.
type CompanyOverview struct {
	CorpCode  string `json:"corp_code"`
	CorpName  string `json:"corp_name"`
	CorpClass string `json:"corp_cls"`
	StockCode string `json:"stock_code"`
	CEOName   string `json:"ceo_nm"`
	Address   string `json:"adres"`
	Phone     string `json:"phn_no"`
	Fax       string `json:"fax_no"`
}

// ParsedDocumentFields carries the text attributes recovered from a
// filing's full document. Every field is independently nullable;
// absence is a valid outcome, not an error. FetchError records why the
// document body could not be retrieved, for diagnostics only.
type ParsedDocumentFields struct {
	ReceiptNo      string
	Representative *string
	HeadOffice     *string
	WriterTitle    *string
	WriterName     *string
	WriterPhone    *string
	PaymentDate    *string
	ListingDate    *string
	FetchError     string
}

// ReviewEntry is a filing flagged for manual verification because its
// title carries a correction or finalized-condition marker. Exactly one
// entry survives per company after tie-break.
type ReviewEntry struct {
	CorpName    string
	ReportName  string
	ReceiptDate string
	ReceiptNo   string
	ViewerURL   string
}
