package entity

import "errors"

var (
	// ErrUpstreamUnavailable marks RPC or scheduler read failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrWalletCreationFailed is returned when the Safe wallet could not be provisioned.
	ErrWalletCreationFailed = errors.New("safe wallet creation failed")
	// ErrWalletNotInitialized is returned when a job is registered before the Safe wallet is resolved.
	ErrWalletNotInitialized = errors.New("safe wallet not initialized")
	// ErrInvalidValueSourceURL is returned for a malformed public value-source URL.
	ErrInvalidValueSourceURL = errors.New("invalid value source url")
	// ErrJobSubmissionFailed is returned when the scheduler did not accept the job.
	ErrJobSubmissionFailed = errors.New("job submission failed")
	// ErrConfiguration marks missing or invalid settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidAddress marks a malformed hex address.
	ErrInvalidAddress = errors.New("invalid address")
)
