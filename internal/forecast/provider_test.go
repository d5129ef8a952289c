package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartstock/smartstock/config"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/models"
)

func newModelServer(t *testing.T, healthy bool, predict func(rows []models.FeatureRow) []float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req struct {
			Rows []models.FeatureRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": predict(req.Rows),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func providerFor(url string) *HTTPProvider {
	return NewHTTPProvider(config.ForecastConfig{URL: url, Timeout: 5 * time.Second})
}

func TestHTTPProvider_Ready(t *testing.T) {
	srv := newModelServer(t, true, nil)
	p := providerFor(srv.URL)

	if err := p.Ready(context.Background()); err != nil {
		t.Errorf("Expected ready, got %v", err)
	}
}

func TestHTTPProvider_ReadyUnhealthy(t *testing.T) {
	srv := newModelServer(t, false, nil)
	p := providerFor(srv.URL)

	err := p.Ready(context.Background())
	if !errors.Is(err, apperrors.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestHTTPProvider_ReadyUnconfigured(t *testing.T) {
	p := providerFor("")

	err := p.Ready(context.Background())
	if !errors.Is(err, apperrors.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestHTTPProvider_Predict(t *testing.T) {
	srv := newModelServer(t, true, func(rows []models.FeatureRow) []float64 {
		preds := make([]float64, len(rows))
		for i := range rows {
			preds[i] = float64(rows[i].StoreNbr) * 10
		}
		return preds
	})
	p := providerFor(srv.URL)

	rows := []models.FeatureRow{
		{Date: "2017-08-15", StoreNbr: 1, Family: "GROCERY I"},
		{Date: "2017-08-15", StoreNbr: 2, Family: "DAIRY"},
	}
	preds, err := p.Predict(context.Background(), rows)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(preds) != 2 || preds[0] != 10 || preds[1] != 20 {
		t.Errorf("Unexpected predictions: %v", preds)
	}
}

func TestHTTPProvider_PredictModelUnavailable(t *testing.T) {
	srv := newModelServer(t, false, nil)
	p := providerFor(srv.URL)

	_, err := p.Predict(context.Background(), []models.FeatureRow{{StoreNbr: 1}})
	if !errors.Is(err, apperrors.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestHTTPProvider_PredictUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "feature pipeline exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()
	p := providerFor(srv.URL)

	_, err := p.Predict(context.Background(), []models.FeatureRow{{StoreNbr: 1}})

	var fcErr apperrors.ForecastError
	if !errors.As(err, &fcErr) {
		t.Fatalf("Expected ForecastError, got %v", err)
	}
	// Upstream message must be carried through, not swallowed
	if !strings.Contains(fcErr.Error(), "feature pipeline exploded") {
		t.Errorf("Expected upstream detail in error, got %q", fcErr.Error())
	}
}

func TestHTTPProvider_PredictLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"predictions": []float64{1, 2, 3}})
	}))
	defer srv.Close()
	p := providerFor(srv.URL)

	_, err := p.Predict(context.Background(), []models.FeatureRow{{StoreNbr: 1}})

	var fcErr apperrors.ForecastError
	if !errors.As(err, &fcErr) {
		t.Fatalf("Expected ForecastError on length mismatch, got %v", err)
	}
}
