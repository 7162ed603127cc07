package restapi

import (
	"errors"
	"net/http"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// zeroHealthFactor is the plain-text body served whenever the value cannot be read.
const zeroHealthFactor = "0"

// DebugHealthResponse is the /debug-health body.
type DebugHealthResponse struct {
	Address        string `json:"address"`
	HealthFactor   string `json:"healthFactor"`
	Timestamp      string `json:"timestamp"`
	Safe           bool   `json:"safe"`
	Classification string `json:"classification"`
	Threshold      string `json:"threshold"`
}

// VerificationResponse is the /verify-execution body. LatencyMs is set for POST only.
type VerificationResponse struct {
	Timestamp      string                 `json:"timestamp"`
	Address        string                 `json:"address"`
	HealthFactor   string                 `json:"healthFactor"`
	AccountData    entity.AccountSnapshot `json:"accountData"`
	Safe           bool                   `json:"safe"`
	Classification string                 `json:"classification"`
	LatencyMs      *int64                 `json:"latencyMs,omitempty"`
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthHandler serves the value-source endpoints polled by the scheduler.
type HealthHandler struct {
	monitor port.HealthMonitor
	settle  time.Duration
	logger  port.Logger
}

// NewHealthHandler creates a HealthHandler. settle is the delay POST /verify-execution waits before reading.
func NewHealthHandler(monitor port.HealthMonitor, settle time.Duration, l port.Logger) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
		settle:  settle,
		logger:  l.With("component", "HealthHandler"),
	}
}

// GetHealthFactor returns the bare decimal health factor as text/plain.
// The response is always 200; any failure yields "0".
func (h *HealthHandler) GetHealthFactor(c *gin.Context) {
	user, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		h.logger.Warn("Health factor requested for invalid address", "address", c.Param("address"))
		c.String(http.StatusOK, zeroHealthFactor)
		return
	}

	assessment := h.monitor.HealthFactor(c.Request.Context(), user)
	h.logger.Debug("Served health factor",
		"user", user.Hex(),
		"healthFactor", assessment.Value.String(),
		"classification", string(assessment.Classification),
	)
	c.String(http.StatusOK, assessment.Value.String())
}

// GetDebugHealth returns the health factor with its classification and safety verdict.
func (h *HealthHandler) GetDebugHealth(c *gin.Context) {
	user, ok := h.parseAddress(c)
	if !ok {
		return
	}

	_, assessment, err := h.monitor.Inspect(c.Request.Context(), user)
	if err != nil {
		h.fail(c, "debug-health", user, err)
		return
	}

	c.JSON(http.StatusOK, DebugHealthResponse{
		Address:        user.Hex(),
		HealthFactor:   assessment.Value.String(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		Safe:           assessment.Safe(),
		Classification: string(assessment.Classification),
		Threshold:      assessment.Threshold.String(),
	})
}

// GetAccountData returns the scaled account snapshot.
func (h *HealthHandler) GetAccountData(c *gin.Context) {
	user, ok := h.parseAddress(c)
	if !ok {
		return
	}

	snapshot, _, err := h.monitor.Inspect(c.Request.Context(), user)
	if err != nil {
		h.fail(c, "account-data", user, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// VerifyExecution re-reads the position. POST waits for the settle delay first and reports latency.
func (h *HealthHandler) VerifyExecution(c *gin.Context) {
	user, ok := h.parseAddress(c)
	if !ok {
		return
	}

	var settle time.Duration
	if c.Request.Method == http.MethodPost {
		settle = h.settle
	}

	v, err := h.monitor.Verify(c.Request.Context(), user, settle)
	if err != nil {
		h.fail(c, "verify-execution", user, err)
		return
	}

	resp := VerificationResponse{
		Timestamp:      v.Timestamp.Format(time.RFC3339Nano),
		Address:        v.Address,
		HealthFactor:   v.Assessment.Value.String(),
		AccountData:    v.Snapshot,
		Safe:           v.Assessment.Safe(),
		Classification: string(v.Assessment.Classification),
	}
	if c.Request.Method == http.MethodPost {
		ms := v.Latency.Milliseconds()
		resp.LatencyMs = &ms
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) parseAddress(c *gin.Context) (common.Address, bool) {
	user, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return common.Address{}, false
	}
	return user, true
}

func (h *HealthHandler) fail(c *gin.Context, endpoint string, user common.Address, err error) {
	h.logger.Error("Request failed", "endpoint", endpoint, "user", user.Hex(), "error", err)
	msg := err.Error()
	if errors.Is(err, entity.ErrUpstreamUnavailable) {
		msg = "failed to read account data: " + msg
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}
