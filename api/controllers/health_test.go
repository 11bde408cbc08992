package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(testConfig())(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-PackFinderz-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReadyReportsChecks(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{}, "redis": nil}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), logger.Nop(), deps)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var body struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Checks["db"] != "up" {
		t.Fatalf("expected db up, got %+v", body.Data.Checks)
	}
	if _, ok := body.Data.Checks["redis"]; ok {
		t.Fatalf("unconfigured redis should be skipped")
	}
}

func TestHealthReadyFailsOnDependency(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{err: errors.New("dial tcp: refused")}}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), logger.Nop(), deps)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
