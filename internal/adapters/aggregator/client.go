// Package aggregator implements the VAT totals port against the
// tax-authority aggregate feed's HTTP API. The feed is treated as a black
// box: given a client and a date range it returns two decimal amounts or
// fails. Transport errors, timeouts and 5xx responses surface as
// apperrors.ErrAggregatorUnavailable so callers can distinguish a retryable
// outage from a rejected request.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
)

const defaultTimeout = 10 * time.Second

// Client wraps interactions with the VAT aggregate feed.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new feed client with a bounded request timeout.
func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ portssvc.VATAggregatorSvcFacade = (*Client)(nil)

type totalsResponse struct {
	OutputVAT decimal.Decimal `json:"outputVat"`
	InputVAT  decimal.Decimal `json:"inputVat"`
}

// GetTotals fetches the aggregated output/input VAT amounts for a client
// within the given date range.
func (c *Client) GetTotals(ctx context.Context, clientID string, from, to time.Time) (*domain.VATTotals, error) {
	endpoint := fmt.Sprintf("%s/v1/clients/%s/vat-totals", c.baseURL, url.PathEscape(clientID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregator request: %w", err)
	}
	q := req.URL.Query()
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return nil, fmt.Errorf("%w: request timed out", apperrors.ErrAggregatorUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAggregatorUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: feed returned status %d", apperrors.ErrAggregatorUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: no totals for client %s", apperrors.ErrNotFound, clientID)
	default:
		return nil, fmt.Errorf("aggregator rejected request with status %d", resp.StatusCode)
	}

	var body totalsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed totals payload: %v", apperrors.ErrAggregatorUnavailable, err)
	}

	return &domain.VATTotals{
		OutputVAT: body.OutputVAT,
		InputVAT:  body.InputVAT,
	}, nil
}
