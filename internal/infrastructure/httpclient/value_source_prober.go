package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

const maxProbeBody = 256

// valueSourceProber issues diagnostic GETs against the public value-source URL.
// The deadline is the earlier of the context deadline and the default timeout;
// an in-flight request is not interrupted by cancellation alone.
type valueSourceProber struct {
	client         *fasthttp.Client
	defaultTimeout time.Duration
	log            port.Logger
}

// NewValueSourceProber creates a prober bounded by defaultTimeout.
func NewValueSourceProber(defaultTimeout time.Duration, log port.Logger) port.ValueSourceProber {
	return newValueSourceProber(&fasthttp.Client{Name: "aave-topup-probe"}, defaultTimeout, log)
}

func newValueSourceProber(client *fasthttp.Client, defaultTimeout time.Duration, log port.Logger) *valueSourceProber {
	return &valueSourceProber{
		client:         client,
		defaultTimeout: defaultTimeout,
		log:            log.With("component", "ValueSourceProber"),
	}
}

func (p *valueSourceProber) Probe(ctx context.Context, url string) entity.ProbeResult {
	result := entity.ProbeResult{URL: url}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	deadline := time.Now().Add(p.defaultTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/plain")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	err := p.client.DoDeadline(req, resp, deadline)
	result.Latency = time.Since(start)
	metrics.ProbeDuration.Observe(result.Latency.Seconds())

	if err != nil {
		result.Err = fmt.Errorf("value source request failed: %w", err)
		p.log.Warn("Value source probe failed", "url", url, "latency", result.Latency, "error", err)
		return result
	}

	result.StatusCode = resp.StatusCode()
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > maxProbeBody {
		body = body[:maxProbeBody]
	}
	result.Body = body

	if v, err := decimal.NewFromString(body); err == nil {
		result.Value = &v
	}

	if !result.OK() {
		p.log.Warn("Value source returned an unusable response",
			"url", url,
			"statusCode", result.StatusCode,
			"body", body,
			"latency", result.Latency,
		)
		return result
	}
	p.log.Info("Value source probe succeeded",
		"url", url,
		"statusCode", result.StatusCode,
		"value", result.Value.String(),
		"latency", result.Latency,
	)
	return result
}
