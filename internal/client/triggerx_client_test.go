package client

import (
	"context"
	"net"
	"testing"
	"time"

	domain "aave_topup/internal/domain/entity"
	"aave_topup/internal/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
)

func newInmemoryClient(t *testing.T, handler fasthttp.RequestHandler) *triggerXClient {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	httpClient := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return newTriggerXClient(httpClient, "http://triggerx.test/", "secret", 2*time.Second, zap.NewNop())
}

func testSpec() domain.JobSpecification {
	return domain.JobSpecification{
		Title:           "Auto Collateral Top-Up - 0x111111",
		OwnerAddress:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		ChainID:         "11155111",
		TimeFrame:       300 * time.Second,
		Timezone:        domain.DefaultJobTimezone,
		ConditionType:   domain.ConditionLessEqual,
		UpperLimit:      decimal.NewFromInt(10),
		LowerLimit:      decimal.NewFromFloat(1.2),
		ValueSourceType: domain.ValueSourceTypeAPI,
		ValueSourceURL:  "https://example.ngrok.app/health-factor/0x1111111111111111111111111111111111111111",
		TargetChainID:   "11155111",
		TargetContract:  common.HexToAddress("0x6Ae43d3271ff6888e7Fc43Fd7321a503ff738951"),
		TargetFunction:  domain.TopUpTargetFunction,
		ABI:             "[]",
		ArgType:         domain.ArgTypeStatic,
		Arguments:       []string{"0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14", "10000000000000000", "0x1111111111111111111111111111111111111111", "0"},
		WalletMode:      domain.WalletModeSafe,
		SafeAddress:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		AutoTopUp:       true,
	}
}

func TestCreateJobSendsPayload(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotKey    string
		gotBody   []entity.CreateJobRequest
	)
	c := newInmemoryClient(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		gotMethod = string(ctx.Method())
		gotKey = string(ctx.Request.Header.Peek(apiKeyHeader))
		_ = json.Unmarshal(ctx.PostBody(), &gotBody)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"job_ids":["77"],"task_definition_ids":[5],"time_frames":[300]}`)
	})

	result := c.CreateJob(context.Background(), testSpec())

	require.True(t, result.Success, "%+v", result.Error)
	assert.Equal(t, []string{"77"}, result.JobIDs)
	assert.Equal(t, "/api/jobs", gotPath)
	assert.Equal(t, fasthttp.MethodPost, gotMethod)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, gotBody, 1)
	job := gotBody[0]
	assert.Equal(t, domain.TaskDefinitionConditionStatic, job.TaskDefinitionID)
	assert.Equal(t, "less_equal", job.ConditionType)
	assert.Equal(t, 1.2, job.LowerLimit)
	assert.Equal(t, float64(10), job.UpperLimit)
	assert.Equal(t, int64(300), job.TimeFrame)
	assert.Equal(t, "api", job.ValueSourceType)
	assert.Equal(t, "supply", job.TargetFunction)
	assert.Equal(t, "safe", job.WalletMode)
	assert.Equal(t, common.HexToAddress("0x2222222222222222222222222222222222222222").Hex(), job.SafeAddress)
	assert.True(t, job.AutoTopUpTG)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", job.UserAddress)
	assert.Len(t, job.Arguments, 4)
}

func TestCreateJobNormalizesStructuredFailure(t *testing.T) {
	c := newInmemoryClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString(`{"success":false,"error":"invalid api key","errorCode":"UNAUTHORIZED"}`)
	})

	result := c.CreateJob(context.Background(), testSpec())

	assert.False(t, result.Success)
	assert.Equal(t, domain.JobOutcomeRejected, result.Outcome)
	require.NotNil(t, result.Error)
	assert.Equal(t, "UNAUTHORIZED", result.Error.Code)
	assert.Equal(t, fasthttp.StatusUnauthorized, result.Error.HTTPStatus)
}

func TestCreateJobTransportFailure(t *testing.T) {
	c := newInmemoryClient(t, func(ctx *fasthttp.RequestCtx) {
		time.Sleep(300 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := c.CreateJob(ctx, testSpec())

	assert.False(t, result.Success)
	assert.Equal(t, domain.JobOutcomeTransportFailure, result.Outcome)
}

func TestJobsByUser(t *testing.T) {
	var gotPath string
	c := newInmemoryClient(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		ctx.SetBodyString(`{"jobs":[{"job_data":{"job_id":"77","job_title":"Auto Collateral Top-Up","task_definition_id":5,"status":"running","created_chain_id":"11155111","last_executed_at":"2025-01-02T03:04:05Z"},"condition_job_data":{"condition_type":"less_equal","upper_limit":10,"lower_limit":1.2,"value_source_url":"https://x/health-factor/0x1","is_active":true}}]}`)
	})

	jobs, err := c.JobsByUser(context.Background(), common.HexToAddress("0xABCDEF0000000000000000000000000000000001"))
	require.NoError(t, err)

	assert.Equal(t, "/api/jobs/user/0xabcdef0000000000000000000000000000000001", gotPath)
	require.Len(t, jobs, 1)
	assert.Equal(t, "77", jobs[0].JobID)
	assert.Equal(t, "running", jobs[0].Status)
	assert.Equal(t, 1.2, jobs[0].LowerLimit)
	assert.True(t, jobs[0].Active)
	assert.Equal(t, 2025, jobs[0].LastExecutedAt.Year())
}

func TestJobsByUserUpstreamError(t *testing.T) {
	c := newInmemoryClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})

	_, err := c.JobsByUser(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
