// Package dart is a client for the DART open disclosure API. It covers
// the paginated filing list, the per-company decision detail endpoints,
// the company profile endpoint, and the full-text document archive.
package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"dartwatch/internal/config"
	apierrors "dartwatch/internal/errors"
	"dartwatch/pkg/contracts/domain"
)

// CallObserver is notified of every upstream call outcome. Status is
// the DART application status code, or "transport" when the HTTP
// exchange itself failed.
type CallObserver interface {
	UpstreamCall(endpoint, status string)
}

// Client talks to the DART open API. All calls are blocking and
// sequential; per-company endpoints are paced by a politeness limiter
// configured through DartConfig.DetailDelay (zero disables pacing).
type Client struct {
	cfg        config.DartConfig
	httpClient *http.Client
	pacer      *rate.Limiter
	observer   CallObserver
	logger     *slog.Logger
}

// NewClient creates a DART API client.
func NewClient(cfg config.DartConfig, logger *slog.Logger) *Client {
	var pacer *rate.Limiter
	if cfg.DetailDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(cfg.DetailDelay), 1)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		pacer:      pacer,
		logger:     logger.With(slog.String("component", "dart_client")),
	}
}

// SetObserver installs a call observer (e.g. the metrics registry).
func (c *Client) SetObserver(o CallObserver) {
	c.observer = o
}

// ViewerURL returns the public filing viewer address for a receipt number.
func (c *Client) ViewerURL(receiptNo string) string {
	return fmt.Sprintf("%s?rcpNo=%s", c.cfg.ViewerBaseURL, receiptNo)
}

type listResponse struct {
	Status    string                `json:"status"`
	Message   string                `json:"message"`
	PageNo    int                   `json:"page_no"`
	TotalPage int                   `json:"total_page"`
	List      []domain.FilingRecord `json:"list"`
}

// ListFilings returns every filing in the window for the given
// publication category, following the API-declared page count. Any
// non-success status aborts the whole sequence; a partially fetched
// list is never returned.
func (c *Client) ListFilings(ctx context.Context, window domain.DateWindow, category string) ([]domain.FilingRecord, error) {
	var filings []domain.FilingRecord

	for pageNo := 1; ; pageNo++ {
		params := url.Values{
			"bgn_de":     {window.Begin},
			"end_de":     {window.End},
			"page_no":    {fmt.Sprint(pageNo)},
			"page_count": {fmt.Sprint(c.cfg.PageSize)},
		}
		if category != "" {
			params.Set("pblntf_ty", category)
		}

		var resp listResponse
		if err := c.get(ctx, "list.json", params, c.cfg.ListTimeout, &resp); err != nil {
			return nil, err
		}
		if resp.Status != apierrors.StatusOK {
			return nil, apierrors.NewUpstreamError("list.json", resp.Status, resp.Message)
		}

		filings = append(filings, resp.List...)

		if resp.TotalPage == 0 || pageNo >= resp.TotalPage {
			break
		}
	}

	c.logger.InfoContext(ctx, "filing list fetched",
		slog.String("bgn_de", window.Begin),
		slog.String("end_de", window.End),
		slog.Int("count", len(filings)))
	return filings, nil
}

type detailResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	List    []map[string]string `json:"list"`
}

// CapitalIncreaseDecisions fetches the paid-in capital increase
// decision rows for one company over [begin, end]. The caller is
// expected to tolerate an UpstreamError here by skipping the company.
func (c *Client) CapitalIncreaseDecisions(ctx context.Context, corpCode, begin, end string) ([]map[string]string, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"corp_code": {corpCode},
		"bgn_de":    {begin},
		"end_de":    {end},
	}
	var resp detailResponse
	if err := c.get(ctx, "piicDecsn.json", params, c.cfg.RequestTimeout, &resp); err != nil {
		return nil, err
	}
	if resp.Status != apierrors.StatusOK {
		return nil, apierrors.NewUpstreamError("piicDecsn.json", resp.Status, resp.Message)
	}
	return resp.List, nil
}

type groupedResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Group   []domain.DetailGroup `json:"group"`
}

// EquityRegistrations fetches the equity securities registration
// statement groups for one company over [begin, end].
func (c *Client) EquityRegistrations(ctx context.Context, corpCode, begin, end string) ([]domain.DetailGroup, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"corp_code": {corpCode},
		"bgn_de":    {begin},
		"end_de":    {end},
	}
	var resp groupedResponse
	if err := c.get(ctx, "estkRs.json", params, c.cfg.RequestTimeout, &resp); err != nil {
		return nil, err
	}
	if resp.Status != apierrors.StatusOK {
		return nil, apierrors.NewUpstreamError("estkRs.json", resp.Status, resp.Message)
	}
	return resp.Group, nil
}

type overviewResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	domain.CompanyOverview
}

// CompanyOverview fetches the company profile record.
func (c *Client) CompanyOverview(ctx context.Context, corpCode string) (*domain.CompanyOverview, error) {
	params := url.Values{"corp_code": {corpCode}}

	var resp overviewResponse
	if err := c.get(ctx, "company.json", params, c.cfg.RequestTimeout, &resp); err != nil {
		return nil, err
	}
	if resp.Status != apierrors.StatusOK {
		return nil, apierrors.NewUpstreamError("company.json", resp.Status, resp.Message)
	}
	overview := resp.CompanyOverview
	return &overview, nil
}

// pace waits for the politeness limiter, if one is configured.
func (c *Client) pace(ctx context.Context) error {
	if c.pacer == nil {
		return nil
	}
	return c.pacer.Wait(ctx)
}

// get performs one API request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) error {
	body, err := c.fetch(ctx, endpoint, params, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("dart %s: decode response: %w", endpoint, err)
	}
	return nil
}

// fetch performs one API request and returns the raw response body.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqURL := fmt.Sprintf("%s/%s", c.cfg.BaseURL, endpoint)

	q := url.Values{"crtfc_key": {c.cfg.APIKey}}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("dart %s: build request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, "transport")
		return nil, fmt.Errorf("dart %s: request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe(endpoint, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil, fmt.Errorf("dart %s: unexpected HTTP status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(endpoint, "transport")
		return nil, fmt.Errorf("dart %s: read response: %w", endpoint, err)
	}
	c.observe(endpoint, "ok")
	return body, nil
}

func (c *Client) observe(endpoint, status string) {
	if c.observer != nil {
		c.observer.UpstreamCall(endpoint, status)
	}
}
