package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

type failingFX struct{}

func (failingFX) GetRate(_ context.Context, _, _ string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("upstream down")
}

func TestFXHandlerDefaultsToUSDKRW(t *testing.T) {
	h := NewFXHandler(&fakeFX{rate: decimal.NewFromFloat(1350.5)})

	req := httptest.NewRequest(http.MethodGet, "/api/fx/rate", nil)
	rec := httptest.NewRecorder()
	h.HandleRate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rate returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp fxRateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.From != "USD" || resp.To != "KRW" {
		t.Errorf("expected USD/KRW defaults, got %s/%s", resp.From, resp.To)
	}
	if !resp.Rate.Equal(decimal.NewFromFloat(1350.5)) {
		t.Errorf("unexpected rate %s", resp.Rate)
	}
}

func TestFXHandlerUpstreamFailure(t *testing.T) {
	h := NewFXHandler(failingFX{})

	req := httptest.NewRequest(http.MethodGet, "/api/fx/rate", nil)
	rec := httptest.NewRecorder()
	h.HandleRate(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestCredentialHandlerClearAll(t *testing.T) {
	store := newFakeCredStore()
	store.creds["123-45|0240"] = nil
	h := NewCredentialHandler(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/credentials", nil)
	rec := httptest.NewRecorder()
	h.HandleCredentials(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear returned %d", rec.Code)
	}
	if len(store.creds) != 0 {
		t.Error("expected every credential cleared")
	}
}

func TestCredentialHandlerRemoveOne(t *testing.T) {
	store := newFakeCredStore()
	store.creds["123-45|0240"] = nil
	store.creds["678-90|0264"] = nil
	h := NewCredentialHandler(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/credentials?account=123-45&organization=0240", nil)
	rec := httptest.NewRecorder()
	h.HandleCredentials(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove returned %d", rec.Code)
	}
	if _, ok := store.creds["123-45|0240"]; ok {
		t.Error("targeted credential not removed")
	}
	if _, ok := store.creds["678-90|0264"]; !ok {
		t.Error("unrelated credential must survive")
	}
}

func TestCredentialHandlerMethodCheck(t *testing.T) {
	h := NewCredentialHandler(newFakeCredStore())

	req := httptest.NewRequest(http.MethodGet, "/api/credentials", nil)
	rec := httptest.NewRecorder()
	h.HandleCredentials(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
