package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartstock/smartstock/config"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
)

// Provider is the trained demand model boundary. Predict takes a batch
// of feature rows and returns one prediction per row, same order.
// Post-training the provider is effectively read-only and safe to call
// concurrently.
type Provider interface {
	Ready(ctx context.Context) error
	Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error)
}

// HTTPProvider talks to the model service over HTTP:
//
//	GET  {base}/health  -> 200 once the model is trained
//	POST {base}/predict -> {"predictions": [...]} for {"rows": [...]}
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider for the configured model service
func NewHTTPProvider(cfg config.ForecastConfig) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.URL,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Ready reports whether the model has completed training. A missing or
// unhealthy model service is ErrModelUnavailable, a retryable
// precondition rather than a hard failure.
func (p *HTTPProvider) Ready(ctx context.Context) error {
	if p.baseURL == "" {
		return apperrors.ErrModelUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: model service returned %d", apperrors.ErrModelUnavailable, resp.StatusCode)
	}

	return nil
}

type predictRequest struct {
	Rows []models.FeatureRow `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Predict issues one batch call for all rows. Upstream failures wrap
// into ForecastError with the upstream message preserved.
func (p *HTTPProvider) Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error) {
	if p.baseURL == "" {
		return nil, apperrors.ErrModelUnavailable
	}
	if len(rows) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(predictRequest{Rows: rows})
	if err != nil {
		return nil, apperrors.ForecastError{Stage: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ForecastError{Stage: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.ForecastError{Stage: "call", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, apperrors.ErrModelUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.ForecastError{
			Stage: "call",
			Err:   fmt.Errorf("model service returned %d: %s", resp.StatusCode, string(detail)),
		}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.ForecastError{Stage: "decode", Err: err}
	}

	if len(out.Predictions) != len(rows) {
		return nil, apperrors.ForecastError{
			Stage: "decode",
			Err:   fmt.Errorf("expected %d predictions, got %d", len(rows), len(out.Predictions)),
		}
	}

	return out.Predictions, nil
}
