package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const testAddress = "0x1111111111111111111111111111111111111111"

type mockMonitor struct{ mock.Mock }

func (m *mockMonitor) HealthFactor(ctx context.Context, user common.Address) entity.Assessment {
	return m.Called(ctx, user).Get(0).(entity.Assessment)
}

func (m *mockMonitor) Inspect(ctx context.Context, user common.Address) (entity.AccountSnapshot, entity.Assessment, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(entity.AccountSnapshot), args.Get(1).(entity.Assessment), args.Error(2)
}

func (m *mockMonitor) Verify(ctx context.Context, user common.Address, settle time.Duration) (entity.Verification, error) {
	args := m.Called(ctx, user, settle)
	return args.Get(0).(entity.Verification), args.Error(1)
}

func (m *mockMonitor) Threshold() decimal.Decimal {
	return decimal.RequireFromString("1.2")
}

func assessment(value string, c entity.Classification) entity.Assessment {
	return entity.Assessment{
		Value:          decimal.RequireFromString(value),
		Classification: c,
		Threshold:      decimal.RequireFromString("1.2"),
	}
}

func snapshot(hf string) entity.AccountSnapshot {
	return entity.AccountSnapshot{
		TotalCollateral:  decimal.RequireFromString("2000"),
		TotalDebt:        decimal.RequireFromString("1000"),
		HealthFactor:     decimal.RequireFromString(hf),
		AvailableBorrows: decimal.RequireFromString("12.5"),
	}
}

func newTestRouter(m *mockMonitor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(m, 20*time.Millisecond, logger.NewNop())
	return SetupRouter(h, RouterOptions{EnableSwagger: true})
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthFactorPlainText(t *testing.T) {
	m := new(mockMonitor)
	m.On("HealthFactor", mock.Anything, common.HexToAddress(testAddress)).
		Return(assessment("1.3452", entity.ClassificationModerate))

	w := serve(newTestRouter(m), http.MethodGet, "/health-factor/"+testAddress)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "1.3452", w.Body.String())
}

func TestHealthFactorUpstreamFailureServesZero(t *testing.T) {
	m := new(mockMonitor)
	m.On("HealthFactor", mock.Anything, mock.Anything).
		Return(entity.Assessment{Value: decimal.Zero, Classification: entity.ClassificationUnknown})

	w := serve(newTestRouter(m), http.MethodGet, "/health-factor/"+testAddress)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())
}

func TestHealthFactorInvalidAddressServesZero(t *testing.T) {
	m := new(mockMonitor)

	w := serve(newTestRouter(m), http.MethodGet, "/health-factor/0x123")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())
	m.AssertNotCalled(t, "HealthFactor", mock.Anything, mock.Anything)
}

func TestDebugHealthBelowThresholdIsUnsafe(t *testing.T) {
	m := new(mockMonitor)
	m.On("Inspect", mock.Anything, common.HexToAddress(testAddress)).
		Return(snapshot("1.1"), assessment("1.1", entity.ClassificationHighRisk), nil)

	w := serve(newTestRouter(m), http.MethodGet, "/debug-health/"+testAddress)
	require.Equal(t, http.StatusOK, w.Code)

	var body DebugHealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, common.HexToAddress(testAddress).Hex(), body.Address)
	assert.Equal(t, "1.1", body.HealthFactor)
	assert.False(t, body.Safe)
	assert.Equal(t, "high_risk", body.Classification)
	assert.Equal(t, "1.2", body.Threshold)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
}

func TestDebugHealthUpstreamFailure(t *testing.T) {
	m := new(mockMonitor)
	m.On("Inspect", mock.Anything, mock.Anything).
		Return(entity.AccountSnapshot{}, entity.Assessment{}, entity.ErrUpstreamUnavailable)

	w := serve(newTestRouter(m), http.MethodGet, "/debug-health/"+testAddress)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "upstream unavailable")
}

func TestDebugHealthInvalidAddress(t *testing.T) {
	w := serve(newTestRouter(new(mockMonitor)), http.MethodGet, "/debug-health/not-an-address")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountDataDecimalStrings(t *testing.T) {
	m := new(mockMonitor)
	m.On("Inspect", mock.Anything, mock.Anything).
		Return(snapshot("1.5"), assessment("1.5", entity.ClassificationSafe), nil)

	w := serve(newTestRouter(m), http.MethodGet, "/account-data/"+testAddress)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"totalCollateral":  "2000",
		"totalDebt":        "1000",
		"healthFactor":     "1.5",
		"availableBorrows": "12.5",
	}, body)
}

func TestVerifyExecution(t *testing.T) {
	user := common.HexToAddress(testAddress)
	v := entity.Verification{
		Timestamp:  time.Now().UTC(),
		Address:    user.Hex(),
		Snapshot:   snapshot("1.6"),
		Assessment: assessment("1.6", entity.ClassificationSafe),
		Latency:    25 * time.Millisecond,
	}

	t.Run("GET does not wait", func(t *testing.T) {
		m := new(mockMonitor)
		m.On("Verify", mock.Anything, user, time.Duration(0)).Return(v, nil)

		w := serve(newTestRouter(m), http.MethodGet, "/verify-execution/"+testAddress)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["safe"])
		assert.NotContains(t, body, "latencyMs")
		m.AssertExpectations(t)
	})

	t.Run("POST waits and reports latency", func(t *testing.T) {
		m := new(mockMonitor)
		m.On("Verify", mock.Anything, user, 20*time.Millisecond).Return(v, nil)

		w := serve(newTestRouter(m), http.MethodPost, "/verify-execution/"+testAddress)
		require.Equal(t, http.StatusOK, w.Code)

		var body VerificationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.LatencyMs)
		assert.Equal(t, int64(25), *body.LatencyMs)
		assert.Equal(t, "1.6", body.HealthFactor)
		assert.Equal(t, "2000", body.AccountData.TotalCollateral.String())
		m.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		m := new(mockMonitor)
		m.On("Verify", mock.Anything, user, mock.Anything).Return(entity.Verification{}, entity.ErrUpstreamUnavailable)

		w := serve(newTestRouter(m), http.MethodPost, "/verify-execution/"+testAddress)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOperationalRoutes(t *testing.T) {
	r := newTestRouter(new(mockMonitor))

	w := serve(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, swaggerSpecPath)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/health-factor/{address}")

	w = serve(r, http.MethodGet, "/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(new(mockMonitor))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/healthz")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
