package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Error types following RFC 7807
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeNoData     = "/errors/report/no-data"
	TypeUpstream   = "/errors/upstream"
	TypeInternal   = "/errors/internal"
	TypeTimeout    = "/errors/timeout"
)

// ProblemDetails is an RFC 7807 problem response.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON includes extension members alongside the standard fields.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{
		"type":   pd.Type,
		"title":  pd.Title,
		"status": pd.Status,
	}
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}

// WithExtension adds an extension member to the problem response.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// NewProblemDetails creates a ProblemDetails response.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// ErrorHandler provides centralized error handling for the HTTP surface.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to RFC 7807 format and responds.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "the report run did not complete in time", instance)
	case errors.Is(err, ErrNoData):
		return NewProblemDetails(http.StatusNotFound, TypeNoData,
			"No Data", err.Error(), instance)
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", ve.Error(), instance)
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		return NewProblemDetails(http.StatusBadGateway, TypeUpstream,
			"Upstream Error", ue.Error(), instance)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "an unexpected error occurred", instance)
}
