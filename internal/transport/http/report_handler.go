// Package http exposes the report generation API over chi.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "dartwatch/internal/errors"
	"dartwatch/internal/metrics"
	"dartwatch/pkg/contracts/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService runs a pipeline for the requested window.
type ReportService interface {
	MajorIssuanceReport(ctx context.Context, window domain.DateWindow) (*domain.Report, error)
	RightsIssueReport(ctx context.Context, window domain.DateWindow) (*domain.Report, error)
}

// Exporter renders a composed report to workbook bytes and a filename.
type Exporter interface {
	Write(report *domain.Report) ([]byte, string, error)
}

// ReportHandler handles report generation requests.
type ReportHandler struct {
	service      ReportService
	exporter     Exporter
	metrics      *metrics.Metrics
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportService, exporter Exporter, m *metrics.Metrics, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		exporter:     exporter,
		metrics:      m,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: apierrors.NewErrorHandler(logger),
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/major-issuance", h.GenerateMajorIssuance)
	r.Post("/rights-issue", h.GenerateRightsIssue)
	return r
}

// GenerateMajorIssuance handles POST /api/reports/major-issuance.
func (h *ReportHandler) GenerateMajorIssuance(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, "major_issuance", h.service.MajorIssuanceReport)
}

// GenerateRightsIssue handles POST /api/reports/rights-issue.
func (h *ReportHandler) GenerateRightsIssue(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, "rights_issue", h.service.RightsIssueReport)
}

func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request, kind string, run func(context.Context, domain.DateWindow) (*domain.Report, error)) {
	var window domain.DateWindow
	if err := render.DecodeJSON(r.Body, &window); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "invalid JSON request body"))
		return
	}
	if err := h.validate.Struct(window); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return
	}

	start := time.Now()
	report, err := run(r.Context(), window)
	elapsed := time.Since(start)
	h.metrics.ReportDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

	if err != nil {
		h.metrics.ReportRuns.WithLabelValues(kind, outcome(err)).Inc()
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.metrics.ReportRuns.WithLabelValues(kind, "success").Inc()

	data, filename, err := h.exporter.Write(report)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report generated",
		slog.String("kind", kind),
		slog.String("bgn_de", window.Begin),
		slog.String("end_de", window.End),
		slog.Duration("duration", elapsed),
		slog.Int("bytes", len(data)))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="report.xlsx"; filename*=UTF-8''%s`, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func outcome(err error) string {
	if errors.Is(err, apierrors.ErrNoData) {
		return "no_data"
	}
	return "error"
}

// validationError maps the first validator failure to a field error.
func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		switch fe.Tag() {
		case "gtefield":
			return apierrors.ErrValidation(fe.Field(), "end date must not precede begin date")
		case "len", "numeric":
			return apierrors.ErrValidation(fe.Field(), "dates must be 8-digit YYYYMMDD strings")
		default:
			return apierrors.ErrValidation(fe.Field(), "is required")
		}
	}
	return apierrors.ErrValidation("body", err.Error())
}
