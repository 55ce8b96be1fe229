package estimator

import "errors"

// Estimation failures are reported as wrapped sentinel errors so callers can
// classify them while still receiving a human-readable message.
var (
	// ErrInvalidModelID indicates a malformed or unsafe model identifier.
	ErrInvalidModelID = errors.New("invalid model ID, expected format: owner/model-name")
	// ErrModelNotFound indicates the upstream listing failed.
	ErrModelNotFound = errors.New("model not found or inaccessible")
	// ErrNoWeightFiles indicates the repository holds no safetensors files.
	ErrNoWeightFiles = errors.New("no safetensors files found in model")
	// ErrUnparseableMetadata indicates no tensor metadata could be read from
	// any weight file.
	ErrUnparseableMetadata = errors.New("could not parse model metadata")
	// ErrUpstreamTimeout indicates the registry did not answer in time.
	ErrUpstreamTimeout = errors.New("request to model registry timed out")
	// ErrUpstreamUnavailable covers unexpected transport faults.
	ErrUpstreamUnavailable = errors.New("failed to reach model registry")
)
