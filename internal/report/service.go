package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dartwatch/internal/docparse"
	"dartwatch/pkg/contracts/domain"
)

// API is the slice of the DART client the pipeline consumes.
type API interface {
	ListFilings(ctx context.Context, window domain.DateWindow, category string) ([]domain.FilingRecord, error)
	CapitalIncreaseDecisions(ctx context.Context, corpCode, begin, end string) ([]map[string]string, error)
	EquityRegistrations(ctx context.Context, corpCode, begin, end string) ([]domain.DetailGroup, error)
	CompanyOverview(ctx context.Context, corpCode string) (*domain.CompanyOverview, error)
	FilingDocument(ctx context.Context, receiptNo string) (string, error)
	ViewerURL(receiptNo string) string
}

// Service runs the report pipelines. A run is strictly sequential; each
// call owns its accumulators and no state survives between runs.
type Service struct {
	api       API
	extractor *docparse.Extractor
	logger    *slog.Logger

	capitalLookbackMonths      int
	registrationLookbackMonths int
}

// NewService creates a report pipeline service.
func NewService(api API, extractor *docparse.Extractor, capitalLookbackMonths, registrationLookbackMonths int, logger *slog.Logger) *Service {
	return &Service{
		api:                        api,
		extractor:                  extractor,
		logger:                     logger.With(slog.String("component", "report_service")),
		capitalLookbackMonths:      capitalLookbackMonths,
		registrationLookbackMonths: registrationLookbackMonths,
	}
}

// widenBegin moves the window start back by the given number of months.
// The detail endpoints date rows internally behind the announcement
// date, so queries cover a wider range and are re-filtered afterwards.
func widenBegin(begin string, months int) string {
	t, err := time.Parse("20060102", begin)
	if err != nil {
		return begin
	}
	return t.AddDate(0, -months, 0).Format("20060102")
}

// fatal reports whether a per-company error must abort the run instead
// of skipping the company.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
