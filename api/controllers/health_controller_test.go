package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataquality-service/service/monitoring"
	"dataquality-service/testutil"
)

// TestHealthController 测试存活与就绪检查
func TestHealthController(t *testing.T) {
	tests := []struct {
		name           string
		ready          func() bool
		expectedCode   int
		expectedStatus string
	}{
		{name: "未设置就绪检查", ready: nil, expectedCode: http.StatusOK, expectedStatus: "ready"},
		{name: "已就绪", ready: func() bool { return true }, expectedCode: http.StatusOK, expectedStatus: "ready"},
		{name: "未就绪", ready: func() bool { return false }, expectedCode: http.StatusServiceUnavailable, expectedStatus: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewHealthController(tt.ready, nil)
			w := httptest.NewRecorder()
			controller.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.expectedCode, w.Code)
			var resp HealthResponse
			testutil.NewHTTPTestHelper().DecodeJSON(t, w, &resp)
			assert.Equal(t, tt.expectedStatus, resp.Status)
			assert.Equal(t, ServiceName, resp.Service)
		})
	}

	w := httptest.NewRecorder()
	NewHealthController(nil, nil).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestHealthController_Dependencies 测试依赖健康检查
func TestHealthController_Dependencies(t *testing.T) {
	tests := []struct {
		name         string
		probe        monitoring.Probe
		expectedCode int
	}{
		{name: "依赖可用", probe: func(context.Context) error { return nil }, expectedCode: http.StatusOK},
		{name: "依赖不可用", probe: func(context.Context) error { return errors.New("down") }, expectedCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := monitoring.NewHealthChecker(time.Second)
			checker.AddCheck("redis", "cache", tt.probe)

			w := httptest.NewRecorder()
			NewHealthController(nil, checker).Dependencies(w, httptest.NewRequest(http.MethodGet, "/health/dependencies", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			var resp APIResponse
			testutil.NewHTTPTestHelper().DecodeJSON(t, w, &resp)
			assert.NotNil(t, resp.Data)
		})
	}
}
