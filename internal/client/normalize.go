package client

import (
	"bytes"
	"fmt"
	"strconv"

	domain "aave_topup/internal/domain/entity"
	"aave_topup/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

const (
	codeTransport    = "TRANSPORT_ERROR"
	codeInvalidBody  = "INVALID_RESPONSE"
	codeUnrecognized = "UNRECOGNIZED_RESPONSE"
	codeRejected     = "JOB_REJECTED"
)

// normalizeCreateJobResponse maps every known create-job response onto one result:
//   - transport failure (no response)
//   - non-JSON body
//   - explicit failure: {success:false,...}, an "error" member, or a 4xx/5xx status
//   - nested success: {success:true, data:{job_ids}}, data:[{id}] or data:{id|job_id|jobId}
//   - bare success: {job_ids:[...]}
//
// Only the outcome members are decoded strictly. Job ids are read leniently afterwards,
// so an unexpected type elsewhere in the body cannot turn a created job into a failure.
func normalizeCreateJobResponse(status int, body []byte, transportErr error) domain.JobResult {
	if transportErr != nil {
		return domain.JobResult{
			Outcome: domain.JobOutcomeTransportFailure,
			Error:   &domain.JobError{Code: codeTransport, Message: transportErr.Error()},
		}
	}

	var env entity.CreateJobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return rejected(status, codeInvalidBody, fmt.Sprintf("scheduler returned a non-JSON body: %v", err),
			map[string]any{"body": string(truncate(body))})
	}

	success, hasSuccess := asBool(env.Success)
	if (hasSuccess && !success) || env.Error != nil || status >= 400 {
		return rejectedFromEnvelope(status, env)
	}

	ids := jobIDsFromEnvelope(env)
	if !hasSuccess && isNullOrEmpty(env.Data) && len(ids) == 0 {
		return rejected(status, codeUnrecognized, "scheduler response carried neither job ids nor a success flag",
			map[string]any{"body": string(truncate(body))})
	}
	return domain.JobResult{Outcome: domain.JobOutcomeCreated, Success: true, JobIDs: ids}
}

// jobIDsFromEnvelope prefers ids under data and falls back to the top-level job_ids.
func jobIDsFromEnvelope(env entity.CreateJobEnvelope) []string {
	if ids := idsFromData(env.Data); len(ids) > 0 {
		return ids
	}
	if ids := idsFromArray(env.JobIDs); len(ids) > 0 {
		return ids
	}
	return []string{}
}

func idsFromData(raw jsoniter.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		return idsFromArray(raw)
	case '{':
		var obj map[string]jsoniter.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		if ids := idsFromArray(obj["job_ids"]); len(ids) > 0 {
			return ids
		}
		if id := idFromObject(obj); id != "" {
			return []string{id}
		}
	}
	return nil
}

// idsFromArray reads an array whose items are bare ids or job objects.
func idsFromArray(raw jsoniter.RawMessage) []string {
	var items []jsoniter.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		var obj map[string]jsoniter.RawMessage
		var id string
		if err := json.Unmarshal(item, &obj); err == nil {
			id = idFromObject(obj)
		} else {
			id = scalarID(item)
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func idFromObject(obj map[string]jsoniter.RawMessage) string {
	for _, key := range []string{"id", "job_id", "jobId"} {
		if id := scalarID(obj[key]); id != "" {
			return id
		}
	}
	return ""
}

func scalarID(raw jsoniter.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id entity.FlexibleID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return string(id)
}

func isNullOrEmpty(raw jsoniter.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func asBool(v any) (value, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func rejectedFromEnvelope(status int, env entity.CreateJobEnvelope) domain.JobResult {
	errorType := asString(env.ErrorType)
	code := asString(env.ErrorCode)
	if code == "" {
		code = errorType
	}
	message := asString(env.Message)
	details := map[string]any{}

	switch e := env.Error.(type) {
	case string:
		if e != "" {
			message = e
		}
	case map[string]any:
		if m, ok := e["message"].(string); ok && m != "" {
			message = m
		}
		if c, ok := e["code"].(string); ok && code == "" {
			code = c
		}
		details["error"] = e
	case nil:
	default:
		details["error"] = e
	}

	if errorType != "" {
		details["errorType"] = errorType
	}
	switch d := env.Details.(type) {
	case map[string]any:
		for k, v := range d {
			details[k] = v
		}
	case nil:
	default:
		details["details"] = d
	}

	httpStatus := asInt(env.HTTPStatusCode)
	if httpStatus == 0 {
		httpStatus = status
	}
	if code == "" {
		if httpStatus >= 400 {
			code = httpCode(httpStatus)
		} else {
			code = codeRejected
		}
	}
	if message == "" {
		message = "scheduler rejected the job"
	}
	return rejected(httpStatus, code, message, details)
}

func rejected(httpStatus int, code, message string, details map[string]any) domain.JobResult {
	if len(details) == 0 {
		details = nil
	}
	return domain.JobResult{
		Outcome: domain.JobOutcomeRejected,
		Error: &domain.JobError{
			Code:       code,
			Message:    message,
			HTTPStatus: httpStatus,
			Details:    details,
		},
	}
}
