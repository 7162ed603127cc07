package entity

import (
	"bytes"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// CreateJobRequest is one element of the POST /api/jobs body.
type CreateJobRequest struct {
	JobTitle         string `json:"job_title"`
	TaskDefinitionID int    `json:"task_definition_id"`
	CreatedChainID   string `json:"created_chain_id"`
	UserAddress      string `json:"user_address"`
	Timezone         string `json:"timezone"`
	IsImua           bool   `json:"is_imua"`
	JobType          string `json:"job_type"`
	TimeFrame        int64  `json:"time_frame"`
	Recurring        bool   `json:"recurring"`

	ConditionType   string  `json:"condition_type"`
	UpperLimit      float64 `json:"upper_limit"`
	LowerLimit      float64 `json:"lower_limit"`
	ValueSourceType string  `json:"value_source_type"`
	ValueSourceURL  string  `json:"value_source_url"`

	TargetChainID             string   `json:"target_chain_id"`
	TargetContractAddress     string   `json:"target_contract_address"`
	TargetFunction            string   `json:"target_function"`
	ABI                       string   `json:"abi"`
	ArgType                   int      `json:"arg_type"`
	Arguments                 []string `json:"arguments"`
	DynamicArgumentsScriptURL string   `json:"dynamic_arguments_script_url"`

	WalletMode  string `json:"wallet_mode,omitempty"`
	SafeAddress string `json:"safe_address,omitempty"`
	AutoTopUpTG bool   `json:"autotopup_tg,omitempty"`
}

// FlexibleID accepts a job id encoded as either a JSON string or a JSON number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("invalid job id %s: %w", b, err)
		}
		*f = FlexibleID(s)
		return nil
	}
	for _, c := range b {
		if (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("invalid job id %s", b)
		}
	}
	*f = FlexibleID(b)
	return nil
}

// CreateJobEnvelope holds the members of a create-job response that decide its outcome.
// Job ids are kept raw: the scheduler returns them as job_ids at the top level, under data,
// as an array of job objects, or as a single id.
type CreateJobEnvelope struct {
	Success        any                 `json:"success"`
	Error          any                 `json:"error"`
	ErrorCode      any                 `json:"errorCode"`
	HTTPStatusCode any                 `json:"httpStatusCode"`
	ErrorType      any                 `json:"errorType"`
	Details        any                 `json:"details"`
	Message        any                 `json:"message"`
	JobIDs         jsoniter.RawMessage `json:"job_ids"`
	Data           jsoniter.RawMessage `json:"data"`
}

// JobsByUserResponse is the GET /api/jobs/user/:user_address body.
type JobsByUserResponse struct {
	Message string          `json:"message"`
	Jobs    []JobReadRecord `json:"jobs"`
}

// JobReadRecord is one job in JobsByUserResponse.
type JobReadRecord struct {
	JobData          JobReadData        `json:"job_data"`
	ConditionJobData *ConditionReadData `json:"condition_job_data,omitempty"`
}

type JobReadData struct {
	JobID            FlexibleID `json:"job_id"`
	JobTitle         string     `json:"job_title"`
	TaskDefinitionID int        `json:"task_definition_id"`
	Status           string     `json:"status"`
	CreatedChainID   string     `json:"created_chain_id"`
	LastExecutedAt   string     `json:"last_executed_at"`
}

type ConditionReadData struct {
	ConditionType  string  `json:"condition_type"`
	UpperLimit     float64 `json:"upper_limit"`
	LowerLimit     float64 `json:"lower_limit"`
	ValueSourceURL string  `json:"value_source_url"`
	IsCompleted    bool    `json:"is_completed"`
	IsActive       bool    `json:"is_active"`
}
