package riskmodel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Evaluator turns an encoded feature vector into a risk assessment using the
// classifier behind a ModelHandle and the threshold of the manifest.
type Evaluator struct {
	model    *ModelHandle
	manifest *Manifest
	logger   *slog.Logger
}

// NewEvaluator wires an evaluator. A nil logger falls back to slog.Default.
func NewEvaluator(model *ModelHandle, manifest *Manifest, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{model: model, manifest: manifest, logger: logger}
}

// Threshold returns the decision threshold in use.
func (e *Evaluator) Threshold() float64 {
	return e.manifest.Threshold
}

// Evaluate runs one prediction. It fails with ErrModelUnavailable without
// touching the classifier when no model is loaded, and with ErrInference
// when the classifier errors, panics or returns a non-probability.
func (e *Evaluator) Evaluate(ctx context.Context, v FeatureVector) (RiskAssessment, error) {
	clf, err := e.model.Classifier()
	if err != nil {
		e.logger.Warn("evaluation refused", slog.Any("error", err))
		return RiskAssessment{}, err
	}

	id := uuid.NewString()
	start := time.Now()
	prob, err := predict(ctx, clf, v)
	if err != nil {
		e.logger.Error("inference failed",
			slog.String("evaluation_id", id),
			slog.String("model_id", clf.ModelID()),
			slog.Any("error", err))
		return RiskAssessment{}, fmt.Errorf("%w: %w", ErrInference, err)
	}

	a := RiskAssessment{
		ID:              id,
		Probability:     prob,
		Class:           Classify(prob, e.manifest.Threshold),
		Threshold:       e.manifest.Threshold,
		ModelID:         clf.ModelID(),
		ManifestVersion: e.manifest.Version,
		Features:        v,
	}
	e.logger.Info("evaluation completed",
		slog.String("evaluation_id", a.ID),
		slog.Float64("probability", a.Probability),
		slog.Int("class", a.Class),
		slog.Float64("threshold", a.Threshold),
		slog.String("model_id", a.ModelID),
		slog.String("manifest_version", a.ManifestVersion),
		slog.Duration("elapsed", time.Since(start)))
	return a, nil
}

// Classify applies the decision rule: high risk iff prob >= threshold.
func Classify(prob, threshold float64) int {
	if prob >= threshold {
		return ClassHigh
	}
	return ClassLow
}

func predict(ctx context.Context, clf Classifier, v FeatureVector) (prob float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			prob = 0
			err = goerr.New(fmt.Sprintf("classifier panicked: %v", r))
		}
	}()
	prob, err = clf.PredictProba(ctx, v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return 0, goerr.New("classifier returned a value outside [0, 1]", goerr.V("probability", prob))
	}
	return prob, nil
}
