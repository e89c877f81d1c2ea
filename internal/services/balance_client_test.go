package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

func TestHTTPBalanceServiceFetch(t *testing.T) {
	var got models.BalanceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/balance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(models.BalanceEnvelope{
			Result: models.BalanceResult{Code: models.ResultCodeSuccess},
			Data: models.BalancePayload{
				Account:     "123-45-678901",
				TotalAmount: "1500000",
				DepositD2:   "1000000",
				ItemList: []models.BalanceItem{
					{Name: "삼성전자", Valuation: "500000", Quantity: "7", Price: "71400"},
				},
			},
		})
	}))
	defer server.Close()

	svc := NewHTTPBalanceService(server.URL, 5*time.Second, zap.NewNop())
	snapshot, err := svc.Fetch(context.Background(), &models.BalanceRequest{
		InstitutionCode: "0240",
		ConnectedID:     "conn-a",
		AccountNumber:   "123-45-678901",
		Password:        "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.InstitutionCode != "0240" || got.Password != "pw" {
		t.Errorf("request not forwarded verbatim: %+v", got)
	}
	if !snapshot.TotalAmount.Equal(dec("1500000")) {
		t.Errorf("expected total 1500000, got %s", snapshot.TotalAmount)
	}
	if len(snapshot.Holdings) != 1 {
		t.Errorf("expected 1 holding, got %d", len(snapshot.Holdings))
	}
}

func TestHTTPBalanceServiceTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewHTTPBalanceService(server.URL, 20*time.Millisecond, zap.NewNop())
	_, err := svc.Fetch(context.Background(), &models.BalanceRequest{AccountNumber: "123"})
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestHTTPBalanceServiceRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.BalanceEnvelope{
			Result: models.BalanceResult{Code: "CF-12100", Message: "비밀번호 오류"},
		})
	}))
	defer server.Close()

	svc := NewHTTPBalanceService(server.URL, 5*time.Second, zap.NewNop())
	_, err := svc.Fetch(context.Background(), &models.BalanceRequest{AccountNumber: "123"})

	var rejected *apperrors.RemoteRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RemoteRejectedError, got %v", err)
	}
	if rejected.Code != "CF-12100" {
		t.Errorf("expected code CF-12100, got %s", rejected.Code)
	}
}

func TestHTTPBalanceServiceBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewHTTPBalanceService(server.URL, 5*time.Second, zap.NewNop())
	_, err := svc.Fetch(context.Background(), &models.BalanceRequest{AccountNumber: "123"})
	if err == nil {
		t.Fatal("expected an error on a 500 response")
	}
	if errors.Is(err, apperrors.ErrTimeout) {
		t.Error("a server error is not a timeout")
	}
}
