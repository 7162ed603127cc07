package entity

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Scheduler task definitions for condition jobs.
const (
	TaskDefinitionConditionStatic  = 5
	TaskDefinitionConditionDynamic = 6
)

// ArgType selects static or dynamically computed call arguments.
type ArgType int

const (
	ArgTypeStatic  ArgType = 1
	ArgTypeDynamic ArgType = 2
)

const (
	ConditionLessEqual  = "less_equal"
	ValueSourceTypeAPI  = "api"
	WalletModeSafe      = "safe"
	DefaultJobTimezone  = "UTC"
	TopUpTargetFunction = "supply"
)

// JobSpecification describes a conditional top-up job. It is built per registration and not persisted.
type JobSpecification struct {
	Title           string
	OwnerAddress    common.Address
	ChainID         string
	TimeFrame       time.Duration
	Recurring       bool
	Timezone        string
	ConditionType   string
	UpperLimit      decimal.Decimal
	LowerLimit      decimal.Decimal
	ValueSourceType string
	ValueSourceURL  string
	TargetChainID   string
	TargetContract  common.Address
	TargetFunction  string
	ABI             string
	ArgType         ArgType
	Arguments       []string
	WalletMode      string
	SafeAddress     common.Address
	AutoTopUp       bool
}

// TaskDefinitionID maps the argument type onto the scheduler's condition task definition.
func (s JobSpecification) TaskDefinitionID() int {
	if s.ArgType == ArgTypeDynamic {
		return TaskDefinitionConditionDynamic
	}
	return TaskDefinitionConditionStatic
}

// JobOutcome tags how a submission ended.
type JobOutcome string

const (
	JobOutcomeCreated          JobOutcome = "created"
	JobOutcomeRejected         JobOutcome = "rejected"
	JobOutcomeTransportFailure JobOutcome = "transport_failure"
)

// JobError carries the scheduler's failure detail.
type JobError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"httpStatus"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *JobError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (http %d): %s", e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// JobResult is the normalized scheduler response.
type JobResult struct {
	Outcome JobOutcome `json:"outcome"`
	Success bool       `json:"success"`
	JobIDs  []string   `json:"jobIds,omitempty"`
	Error   *JobError  `json:"error,omitempty"`
}

// JobStatus is a registered job as reported by the scheduler.
type JobStatus struct {
	JobID            string
	Title            string
	Status           string
	TaskDefinitionID int
	CreatedChainID   string
	ConditionType    string
	UpperLimit       float64
	LowerLimit       float64
	ValueSourceURL   string
	Active           bool
	Completed        bool
	LastExecutedAt   time.Time
}

// ProbeResult is the outcome of a value-source GET.
type ProbeResult struct {
	URL        string
	StatusCode int
	Body       string
	Value      *decimal.Decimal
	Latency    time.Duration
	Err        error
}

// OK reports whether the probe returned a 2xx numeric body.
func (p ProbeResult) OK() bool {
	return p.Err == nil && p.StatusCode >= 200 && p.StatusCode < 300 && p.Value != nil
}

// PreflightReport collects the diagnostics gathered before job submission.
type PreflightReport struct {
	ValueSourceURL string
	ChainID        *big.Int
	ChainErr       error
	SafeAddress    common.Address
	SafeHasCode    bool
	SafeCodeErr    error
	Probe          ProbeResult
}
