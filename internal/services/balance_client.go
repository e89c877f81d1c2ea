package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

// HTTPBalanceService fetches account balances from the brokerage-balance
// gateway. Requests carry the password explicitly; there is no ambient
// token state, and the service never retries on its own.
type HTTPBalanceService struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPBalanceService creates a balance service against the gateway base
// URL with a bounded per-request timeout.
func NewHTTPBalanceService(baseURL string, timeout time.Duration, logger *zap.Logger) BalanceService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPBalanceService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch posts the balance request and normalizes the response. A deadline
// overrun maps to ErrTimeout; a non-success result code surfaces as
// RemoteRejectedError through normalization.
func (s *HTTPBalanceService) Fetch(ctx context.Context, req *models.BalanceRequest) (*models.BalanceSnapshot, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode balance request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/stock/balance", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create balance request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.ErrTimeout
		}
		return nil, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("balance service returned status %d", resp.StatusCode)
	}

	var envelope models.BalanceEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode balance response: %w", err)
	}

	snapshot, err := NormalizeBalance(&envelope, req.AccountNumber)
	if err != nil {
		return snapshot, err
	}

	s.logger.Debug("balance fetched",
		zap.String("account", snapshot.AccountNumber),
		zap.Int("holdings", len(snapshot.Holdings)),
		zap.String("total", snapshot.TotalAmount.String()))
	return snapshot, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
