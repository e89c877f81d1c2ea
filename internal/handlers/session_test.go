package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/services"
)

// fakeCredStore is an in-memory CredentialStore.
type fakeCredStore struct {
	creds map[string]*models.Credential
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{creds: map[string]*models.Credential{}}
}

func (s *fakeCredStore) key(account, org string) string { return account + "|" + org }

func (s *fakeCredStore) Get(_ context.Context, account, org string) (*models.Credential, error) {
	cred, ok := s.creds[s.key(account, org)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cred, nil
}

func (s *fakeCredStore) Put(_ context.Context, cred *models.Credential) error {
	s.creds[s.key(cred.AccountNumber, cred.InstitutionCode)] = cred
	return nil
}

func (s *fakeCredStore) Exists(ctx context.Context, account, org string) (bool, error) {
	_, err := s.Get(ctx, account, org)
	return err == nil, nil
}

func (s *fakeCredStore) Remove(_ context.Context, account, org string) error {
	delete(s.creds, s.key(account, org))
	return nil
}

func (s *fakeCredStore) ClearAll(_ context.Context) error {
	s.creds = map[string]*models.Credential{}
	return nil
}

// fakeBalance always returns the same snapshot.
type fakeBalance struct {
	snapshot *models.BalanceSnapshot
}

func (f *fakeBalance) Fetch(_ context.Context, _ *models.BalanceRequest) (*models.BalanceSnapshot, error) {
	return f.snapshot, nil
}

// fakeFX returns a fixed rate.
type fakeFX struct {
	rate decimal.Decimal
}

func (f *fakeFX) GetRate(_ context.Context, _, _ string) (decimal.Decimal, error) {
	return f.rate, nil
}

func newTestSessionHandler() *SessionHandler {
	logger := zap.NewNop()
	snapshot := &models.BalanceSnapshot{
		AccountNumber: "123-45-678901",
		CashByCurrency: map[string]decimal.Decimal{
			models.CurrencyKRW: decimal.NewFromInt(1000000),
		},
		Holdings: []models.HoldingLine{
			{
				Name:     "삼성전자",
				Region:   models.RegionDomestic,
				Quantity: decimal.NewFromInt(7),
				Price:    decimal.NewFromInt(71400),
				Value:    decimal.NewFromInt(500000),
				Currency: models.CurrencyKRW,
			},
		},
		TotalAmount: decimal.NewFromInt(1500000),
	}
	session := services.NewAccountSession(
		services.NewAccountLinker(logger),
		newFakeCredStore(),
		&fakeBalance{snapshot: snapshot},
		logger,
	)
	return NewSessionHandler(session, &fakeFX{rate: decimal.NewFromInt(1350)})
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSessionHandlerFlow(t *testing.T) {
	h := newTestSessionHandler()

	rec := postJSON(t, h.HandleSelect, "/api/session/select", selectRequest{
		Account:    models.BrokerageAccount{InstitutionName: "삼성증권", AccountNumber: "123-45-678901"},
		Position:   0,
		Candidates: []models.LinkHandle{{ConnectedID: "conn-a"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("select returned %d: %s", rec.Code, rec.Body.String())
	}
	var status services.SessionStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.State != services.StateAwaitingPassword {
		t.Fatalf("expected awaiting_password, got %s", status.State)
	}

	rec = postJSON(t, h.HandlePassword, "/api/session/password", passwordRequest{Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("password returned %d: %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.State != services.StateReady {
		t.Fatalf("expected ready, got %s", status.State)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session/result", nil)
	getRec := httptest.NewRecorder()
	h.HandleResult(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("result returned %d: %s", getRec.Code, getRec.Body.String())
	}
	var snapshot struct {
		AccountNumber string `json:"account_number"`
		TotalDisplay  string `json:"total_display"`
	}
	json.Unmarshal(getRec.Body.Bytes(), &snapshot)
	if snapshot.AccountNumber != "123-45-678901" {
		t.Errorf("unexpected account number %q", snapshot.AccountNumber)
	}
	if snapshot.TotalDisplay != "₩1,500,000" {
		t.Errorf("unexpected display total %q", snapshot.TotalDisplay)
	}
}

func TestSessionHandlerRebalance(t *testing.T) {
	h := newTestSessionHandler()

	postJSON(t, h.HandleSelect, "/api/session/select", selectRequest{
		Account:    models.BrokerageAccount{InstitutionName: "삼성증권", AccountNumber: "123-45-678901"},
		Candidates: []models.LinkHandle{{ConnectedID: "conn-a"}},
	})
	postJSON(t, h.HandlePassword, "/api/session/password", passwordRequest{Password: "pw"})

	rec := postJSON(t, h.HandleResult, "/api/session/result", rebalanceRequest{
		Targets: []models.RebalanceTarget{
			{Name: services.CashLineKRW, TargetPercent: decimal.NewFromInt(50)},
			{Name: "삼성전자", TargetPercent: decimal.NewFromInt(50)},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rebalance returned %d: %s", rec.Code, rec.Body.String())
	}

	var result models.RebalanceResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.ReferenceCurrency != models.CurrencyUSD {
		t.Errorf("expected USD reference by default, got %s", result.ReferenceCurrency)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if !result.ExchangeRate.Equal(decimal.NewFromInt(1350)) {
		t.Errorf("expected the FX provider's rate, got %s", result.ExchangeRate)
	}
}

func TestSessionHandlerResultBeforeReady(t *testing.T) {
	h := newTestSessionHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/session/result", nil)
	rec := httptest.NewRecorder()
	h.HandleResult(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before ready, got %d", rec.Code)
	}
}

func TestSessionHandlerCancel(t *testing.T) {
	h := newTestSessionHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/session/cancel", nil)
	rec := httptest.NewRecorder()
	h.HandleCancel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel returned %d", rec.Code)
	}
	var status services.SessionStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.State != services.StateIdle {
		t.Errorf("expected idle after cancel, got %s", status.State)
	}
}

func TestSessionHandlerMethodChecks(t *testing.T) {
	h := newTestSessionHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/session/select", nil)
	rec := httptest.NewRecorder()
	h.HandleSelect(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
