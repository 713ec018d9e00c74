package riskmodel

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors of the evaluation path
var (
	// ErrModelUnavailable means the classifier artifact could not be located or loaded.
	ErrModelUnavailable = goerr.New("model unavailable")

	// ErrInference means the classifier failed while computing a probability.
	ErrInference = goerr.New("inference error")

	ErrUnknownCategory  = goerr.New("unknown category")
	ErrInvalidManifest  = goerr.New("invalid encoding manifest")
	ErrArtifactMismatch = goerr.New("model artifact checksum mismatch")
)

// Context keys for error values
const (
	FieldKey       = "field"
	LabelKey       = "label"
	ModelPathKey   = "model_path"
	ManifestKey    = "manifest"
	ExpectedSumKey = "expected_sha256"
	ActualSumKey   = "actual_sha256"
)
