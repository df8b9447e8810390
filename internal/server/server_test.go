package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/zone-analytics-proxy/internal/analytics"
	"github.com/nulzo/zone-analytics-proxy/internal/config"
	"github.com/nulzo/zone-analytics-proxy/internal/server"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockService is a mock implementation of analytics.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Fetch(ctx context.Context, req analytics.Request) (*api.AnalyticsResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.AnalyticsResult), args.Error(1)
}

var scenarioResult = &api.AnalyticsResult{
	TotalUniqueVisits: 5,
	DailyBreakdown: []api.DailyBreakdownEntry{
		{Date: "2024-03-01", Day: "Friday", UniqueVisits: 2},
		{Date: "2024-03-02", Day: "Saturday", UniqueVisits: 3},
	},
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", Env: "test"},
		Upstream: config.UpstreamConfig{Endpoint: config.DefaultEndpoint, Timeout: time.Second},
	}
}

func setupServer(svc analytics.Service) http.Handler {
	gin.SetMode(gin.TestMode)
	return server.New(testConfig(), zap.NewNop(), svc).Handler()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestPostAnalytics_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("Fetch", mock.Anything, analytics.Request{
		Email: "a@b.com", APIKey: "k", ZoneID: "z", Days: "3",
	}).Return(scenarioResult, nil)

	body := `{"email":"a@b.com","api_key":"k","zone_id":"z","days":3}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cloudflare-analytics", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_unique_visits": 5,
		"daily_breakdown": [
			{"date": "2024-03-01", "day": "Friday", "unique_visits": 2},
			{"date": "2024-03-02", "day": "Saturday", "unique_visits": 3}
		]
	}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGetAnalytics_QueryParameters(t *testing.T) {
	svc := new(MockService)
	svc.On("Fetch", mock.Anything, analytics.Request{
		Email: "a@b.com", APIKey: "k", ZoneID: "z", Days: "14",
	}).Return(scenarioResult, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cfa?email=a@b.com&api_key=k&zone_id=z&days=14", nil)

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var result api.AnalyticsResult
	decodeJSON(t, w, &result)
	assert.Equal(t, *scenarioResult, result)
	svc.AssertExpectations(t)
}

func TestPostAnalytics_ValidationError(t *testing.T) {
	svc := new(MockService)
	svc.On("Fetch", mock.Anything, analytics.Request{APIKey: "k", ZoneID: "z"}).
		Return(nil, &analytics.ValidationError{Fields: []string{"email"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cloudflare-analytics", bytes.NewBufferString(`{"api_key":"k","zone_id":"z"}`))
	req.Header.Set("Content-Type", "application/json")

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp api.ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "missing required fields: email", resp.Error)
}

func TestGetAnalytics_UpstreamError(t *testing.T) {
	svc := new(MockService)
	svc.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, &analytics.UpstreamError{StatusCode: http.StatusForbidden, Message: "API request failed with status 403"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cfa?email=a@b.com&api_key=k&zone_id=z", nil)

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"API request failed with status 403"}`, w.Body.String())
}

func TestPostAnalytics_InvalidBody(t *testing.T) {
	svc := new(MockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cloudflare-analytics", bytes.NewBufferString("{invalid-json"))
	req.Header.Set("Content-Type", "application/json")

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp api.ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp.Error, "invalid request body")
	svc.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestPostAnalytics_EmptyBodyReachesValidation(t *testing.T) {
	svc := new(MockService)
	svc.On("Fetch", mock.Anything, analytics.Request{}).
		Return(nil, &analytics.ValidationError{Fields: []string{"email", "api_key", "zone_id"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cloudflare-analytics", bytes.NewBufferString(""))

	setupServer(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"missing required fields: email, api_key, zone_id"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/cloudflare-analytics", nil)
	req.Header.Set("Origin", "https://example.com")

	setupServer(new(MockService)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	handler := setupServer(new(MockService))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	setupServer(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
	assert.NotEmpty(t, resp["version"])
}

// TestEndToEnd runs the real fetcher against a stub provider.
func TestEndToEnd(t *testing.T) {
	var calls atomic.Int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"viewer":{"zones":[{
			"totals":[{"uniq":{"uniques":5}}],
			"zones":[
				{"dimensions":{"timeslot":"2024-03-01"},"uniq":{"uniques":2}},
				{"dimensions":{"timeslot":"2024-03-02"},"uniq":{"uniques":3}}
			]}]}}}`))
	}))
	defer provider.Close()

	fetcher := analytics.NewFetcher(provider.URL, time.Second)
	handler := setupServer(fetcher)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cfa?api_key=k&zone_id=z", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int32(0), calls.Load(), "missing email must not reach the provider")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cfa?email=a@b.com&api_key=k&zone_id=z&days=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), calls.Load())

	var result api.AnalyticsResult
	decodeJSON(t, w, &result)
	assert.Equal(t, *scenarioResult, result)
}

type panickingService struct{}

func (panickingService) Fetch(context.Context, analytics.Request) (*api.AnalyticsResult, error) {
	panic("kaboom")
}

func TestServer_RecoversPanicWithoutLoggingCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	h := server.New(testConfig(), zap.New(core), panickingService{}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cfa?email=a%40b.com&api_key=SECRET123&zone_id=z", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	recovered := logs.FilterMessage("[Recovery from panic]").All()
	require.Len(t, recovered, 1)
	request, ok := recovered[0].ContextMap()["request"].(string)
	require.True(t, ok)
	assert.Contains(t, request, "GET /cfa?")
	assert.Contains(t, request, "zone_id=z")

	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(value), "SECRET123", "field %s of %q", key, entry.Message)
			assert.NotContains(t, fmt.Sprint(value), "a%40b.com", "field %s of %q", key, entry.Message)
		}
	}
}
