package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aave_topup/internal/app/port"
	domain "aave_topup/internal/domain/entity"
	"aave_topup/internal/entity"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	createJobPath  = "/api/jobs"
	userJobsPath   = "/api/jobs/user/"
	apiKeyHeader   = "X-Api-Key"
	jobTypeSDK     = "sdk"
	maxLoggedBytes = 512
)

// triggerXClient implements port.JobScheduler against the TriggerX REST API.
type triggerXClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewTriggerXClient creates a scheduler client for baseURL authenticated with apiKey.
func NewTriggerXClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.JobScheduler {
	return newTriggerXClient(&fasthttp.Client{Name: "aave-topup"}, baseURL, apiKey, timeout, logger)
}

func newTriggerXClient(httpClient *fasthttp.Client, baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *triggerXClient {
	return &triggerXClient{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("TriggerXClient"),
	}
}

// do executes req with the earlier of the context deadline and the client timeout.
func (c *triggerXClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.client.DoDeadline(req, resp, deadline)
}

func toCreateJobRequest(spec domain.JobSpecification) entity.CreateJobRequest {
	r := entity.CreateJobRequest{
		JobTitle:              spec.Title,
		TaskDefinitionID:      spec.TaskDefinitionID(),
		CreatedChainID:        spec.ChainID,
		UserAddress:           strings.ToLower(spec.OwnerAddress.Hex()),
		Timezone:              spec.Timezone,
		JobType:               jobTypeSDK,
		TimeFrame:             int64(spec.TimeFrame / time.Second),
		Recurring:             spec.Recurring,
		ConditionType:         spec.ConditionType,
		UpperLimit:            spec.UpperLimit.InexactFloat64(),
		LowerLimit:            spec.LowerLimit.InexactFloat64(),
		ValueSourceType:       spec.ValueSourceType,
		ValueSourceURL:        spec.ValueSourceURL,
		TargetChainID:         spec.TargetChainID,
		TargetContractAddress: spec.TargetContract.Hex(),
		TargetFunction:        spec.TargetFunction,
		ABI:                   spec.ABI,
		ArgType:               int(spec.ArgType),
		Arguments:             spec.Arguments,
		WalletMode:            spec.WalletMode,
		AutoTopUpTG:           spec.AutoTopUp,
	}
	if spec.WalletMode == domain.WalletModeSafe {
		r.SafeAddress = spec.SafeAddress.Hex()
	}
	return r
}

// CreateJob posts the job and collapses every outcome into a domain.JobResult.
func (c *triggerXClient) CreateJob(ctx context.Context, spec domain.JobSpecification) domain.JobResult {
	payload, err := json.Marshal([]entity.CreateJobRequest{toCreateJobRequest(spec)})
	if err != nil {
		return normalizeCreateJobResponse(0, nil, fmt.Errorf("failed to encode job payload: %w", err))
	}

	requestURL := c.baseURL + createJobPath
	c.logger.Debug("Submitting job to TriggerX", zap.String("url", requestURL), zap.String("title", spec.Title))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.SetBody(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	if err := c.do(ctx, req, resp); err != nil {
		c.logger.Error("Failed to execute request to TriggerX", zap.String("url", requestURL), zap.Duration("latency", time.Since(start)), zap.Error(err))
		return normalizeCreateJobResponse(0, nil, err)
	}

	result := normalizeCreateJobResponse(resp.StatusCode(), resp.Body(), nil)
	fields := []zap.Field{
		zap.String("url", requestURL),
		zap.Int("statusCode", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
		zap.String("outcome", string(result.Outcome)),
	}
	if result.Success {
		c.logger.Info("TriggerX accepted job", append(fields, zap.Strings("jobIds", result.JobIDs))...)
	} else {
		c.logger.Error("TriggerX rejected job", append(fields, zap.ByteString("responseBody", truncate(resp.Body())))...)
	}
	return result
}

// JobsByUser lists the jobs registered by user.
func (c *triggerXClient) JobsByUser(ctx context.Context, user common.Address) ([]domain.JobStatus, error) {
	requestURL := c.baseURL + userJobsPath + strings.ToLower(user.Hex())

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.do(ctx, req, resp); err != nil {
		c.logger.Error("Failed to execute request to TriggerX", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%w: request to %s: %v", domain.ErrUpstreamUnavailable, requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("TriggerX jobs request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", truncate(rawBody)),
		)
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrUpstreamUnavailable, requestURL, resp.StatusCode())
	}

	var body entity.JobsByUserResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode jobs response: %v", domain.ErrUpstreamUnavailable, err)
	}

	jobs := make([]domain.JobStatus, 0, len(body.Jobs))
	for _, rec := range body.Jobs {
		status := domain.JobStatus{
			JobID:            string(rec.JobData.JobID),
			Title:            rec.JobData.JobTitle,
			Status:           rec.JobData.Status,
			TaskDefinitionID: rec.JobData.TaskDefinitionID,
			CreatedChainID:   rec.JobData.CreatedChainID,
		}
		if ts, err := time.Parse(time.RFC3339, rec.JobData.LastExecutedAt); err == nil {
			status.LastExecutedAt = ts
		}
		if cond := rec.ConditionJobData; cond != nil {
			status.ConditionType = cond.ConditionType
			status.UpperLimit = cond.UpperLimit
			status.LowerLimit = cond.LowerLimit
			status.ValueSourceURL = cond.ValueSourceURL
			status.Active = cond.IsActive
			status.Completed = cond.IsCompleted
		}
		jobs = append(jobs, status)
	}
	c.logger.Debug("Fetched TriggerX jobs", zap.String("user", user.Hex()), zap.Int("count", len(jobs)))
	return jobs, nil
}

func truncate(b []byte) []byte {
	if len(b) <= maxLoggedBytes {
		return b
	}
	return b[:maxLoggedBytes]
}

func httpCode(status int) string {
	return "HTTP_" + strconv.Itoa(status)
}
