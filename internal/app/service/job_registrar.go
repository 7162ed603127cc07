package service

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	jobTitlePrefix      = "Auto Collateral Top-Up - "
	jobTitleAddressLen  = 8
	valueSourcePath     = "/health-factor/"
	supplyReferralCode  = "0"
	defaultJobTimeFrame = 300 * time.Second
)

// JobSettings are the fixed parameters of the top-up job.
type JobSettings struct {
	ChainID     uint64
	PoolAddress common.Address
	WETHAddress common.Address
	TopUpAmount *big.Int
	Threshold   decimal.Decimal
	UpperLimit  decimal.Decimal
	Duration    time.Duration
	Recurring   bool
	// TargetABI is the JSON ABI of the pool contract carrying the supply function.
	TargetABI string
}

// JobRegistrarDeps groups the collaborators of a JobRegistrar. Chain and Prober are optional.
type JobRegistrarDeps struct {
	Wallet    *SafeWalletCoordinator
	Scheduler port.JobScheduler
	Prober    port.ValueSourceProber
	Chain     port.ChainInspector
	Logger    port.Logger
	Settings  JobSettings
}

// JobRegistrar builds and submits the conditional top-up job.
type JobRegistrar struct {
	wallet    *SafeWalletCoordinator
	scheduler port.JobScheduler
	prober    port.ValueSourceProber
	chain     port.ChainInspector
	logger    port.Logger
	settings  JobSettings
}

// NewJobRegistrar creates a registrar from deps.
func NewJobRegistrar(deps JobRegistrarDeps) *JobRegistrar {
	if deps.Settings.Duration <= 0 {
		deps.Settings.Duration = defaultJobTimeFrame
	}
	return &JobRegistrar{
		wallet:    deps.Wallet,
		scheduler: deps.Scheduler,
		prober:    deps.Prober,
		chain:     deps.Chain,
		logger:    deps.Logger.With("component", "JobRegistrar"),
		settings:  deps.Settings,
	}
}

// BuildValueSourceURL joins the public base URL with the plain-text health factor path for user.
func BuildValueSourceURL(publicURL string, user common.Address) (string, error) {
	base := strings.TrimSpace(publicURL)
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", entity.ErrInvalidValueSourceURL, publicURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q must be an absolute http(s) URL", entity.ErrInvalidValueSourceURL, publicURL)
	}
	return strings.TrimRight(base, "/") + valueSourcePath + user.Hex(), nil
}

// RegisterTopUpJob submits a job that supplies collateral on behalf of monitored once its
// health factor falls to the threshold. The Safe wallet must be resolved beforehand.
// Diagnostics are logged and never block submission.
func (r *JobRegistrar) RegisterTopUpJob(ctx context.Context, monitored common.Address, publicURL string) (entity.JobResult, error) {
	handle := r.wallet.Handle()
	if !handle.Resolved() {
		return entity.JobResult{}, entity.ErrWalletNotInitialized
	}

	valueSourceURL, err := BuildValueSourceURL(publicURL, monitored)
	if err != nil {
		return entity.JobResult{}, err
	}

	report := r.diagnose(ctx, valueSourceURL, handle.Address)
	r.logReport(report)

	spec := r.buildSpecification(monitored, handle.Address, valueSourceURL)
	r.logger.Info("Submitting top-up job",
		"title", spec.Title,
		"valueSourceURL", spec.ValueSourceURL,
		"safe", spec.SafeAddress.Hex(),
		"lowerLimit", spec.LowerLimit.String(),
		"upperLimit", spec.UpperLimit.String(),
	)

	result := r.scheduler.CreateJob(ctx, spec)
	metrics.JobRegistrations.WithLabelValues(string(result.Outcome)).Inc()
	if !result.Success {
		r.logger.Error("Job registration failed", "outcome", string(result.Outcome), "error", result.Error)
		return result, fmt.Errorf("%w: %v", entity.ErrJobSubmissionFailed, result.Error)
	}
	r.logger.Info("Job registered", "jobIds", result.JobIDs)
	return result, nil
}

// Preflight runs the registration diagnostics without submitting anything.
// The Safe code check is skipped while the wallet is unresolved.
func (r *JobRegistrar) Preflight(ctx context.Context, monitored common.Address, publicURL string) (entity.PreflightReport, error) {
	valueSourceURL, err := BuildValueSourceURL(publicURL, monitored)
	if err != nil {
		return entity.PreflightReport{}, err
	}
	var safe common.Address
	if h := r.wallet.Handle(); h.Resolved() {
		safe = h.Address
	}
	report := r.diagnose(ctx, valueSourceURL, safe)
	r.logReport(report)
	return report, nil
}

func (r *JobRegistrar) diagnose(ctx context.Context, valueSourceURL string, safe common.Address) entity.PreflightReport {
	report := entity.PreflightReport{ValueSourceURL: valueSourceURL, SafeAddress: safe}

	var g errgroup.Group
	if r.chain != nil {
		g.Go(func() error {
			report.ChainID, report.ChainErr = r.chain.ChainID(ctx)
			return nil
		})
		if safe != (common.Address{}) {
			g.Go(func() error {
				report.SafeHasCode, report.SafeCodeErr = r.chain.HasCode(ctx, safe)
				return nil
			})
		}
	}
	if r.prober != nil {
		g.Go(func() error {
			report.Probe = r.prober.Probe(ctx, valueSourceURL)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (r *JobRegistrar) logReport(report entity.PreflightReport) {
	if r.chain != nil {
		switch {
		case report.ChainErr != nil || report.ChainID == nil:
			r.logger.Warn("RPC network unreachable", "error", report.ChainErr)
		case report.ChainID.Uint64() != r.settings.ChainID:
			r.logger.Warn("RPC chain id differs from configuration",
				"rpcChainID", report.ChainID.String(),
				"configuredChainID", r.settings.ChainID,
			)
		default:
			r.logger.Info("RPC network reachable", "chainID", report.ChainID.String())
		}

		if report.SafeAddress != (common.Address{}) {
			switch {
			case report.SafeCodeErr != nil:
				r.logger.Warn("Could not check Safe wallet code", "safe", report.SafeAddress.Hex(), "error", report.SafeCodeErr)
			case !report.SafeHasCode:
				r.logger.Warn("Safe wallet has no contract code on this network", "safe", report.SafeAddress.Hex())
			}
		}
	}

	if r.prober == nil {
		return
	}
	if report.Probe.OK() {
		r.logger.Info("Value source reachable",
			"url", report.ValueSourceURL,
			"value", report.Probe.Value.String(),
			"latency", report.Probe.Latency,
		)
		return
	}
	r.logger.Warn("Value source probe failed, the scheduler will keep polling",
		"url", report.ValueSourceURL,
		"statusCode", report.Probe.StatusCode,
		"body", report.Probe.Body,
		"error", report.Probe.Err,
	)
}

func (r *JobRegistrar) buildSpecification(monitored, safe common.Address, valueSourceURL string) entity.JobSpecification {
	chainID := strconv.FormatUint(r.settings.ChainID, 10)
	amount := "0"
	if r.settings.TopUpAmount != nil {
		amount = r.settings.TopUpAmount.String()
	}
	return entity.JobSpecification{
		Title:           jobTitlePrefix + monitored.Hex()[:jobTitleAddressLen],
		OwnerAddress:    monitored,
		ChainID:         chainID,
		TimeFrame:       r.settings.Duration,
		Recurring:       r.settings.Recurring,
		Timezone:        entity.DefaultJobTimezone,
		ConditionType:   entity.ConditionLessEqual,
		UpperLimit:      r.settings.UpperLimit,
		LowerLimit:      r.settings.Threshold,
		ValueSourceType: entity.ValueSourceTypeAPI,
		ValueSourceURL:  valueSourceURL,
		TargetChainID:   chainID,
		TargetContract:  r.settings.PoolAddress,
		TargetFunction:  entity.TopUpTargetFunction,
		ABI:             r.settings.TargetABI,
		ArgType:         entity.ArgTypeStatic,
		Arguments: []string{
			r.settings.WETHAddress.Hex(),
			amount,
			monitored.Hex(),
			supplyReferralCode,
		},
		WalletMode:  entity.WalletModeSafe,
		SafeAddress: safe,
		AutoTopUp:   true,
	}
}
