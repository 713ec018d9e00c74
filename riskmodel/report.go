package riskmodel

import (
	"errors"
	"fmt"
)

// Operator-facing strings of the result panel.
const (
	LabelHighRisk = "High Risk"
	LabelLowRisk  = "Low Risk"

	AdvisoryHighRisk = "The model predicts a high risk of recurrence/thrombosis. Close monitoring or adjustment of the treatment strategy is recommended."

	MessageModelUnavailable = "Model not loaded. Cannot predict."
	HintInferenceError      = "Please check if the input data format matches the training data."
)

// Report is the rendered form of a RiskAssessment.
type Report struct {
	Probability   string
	RiskLabel     string
	ThresholdHint string
	// Indicator is the fill of the risk bar, in [0, 1].
	Indicator float64
	// Advisory is empty unless the assessment is high risk.
	Advisory string
}

// NewReport renders an assessment.
func NewReport(a RiskAssessment) Report {
	r := Report{
		Probability: FormatProbability(a.Probability),
		Indicator:   clamp01(a.Probability),
	}
	if a.HighRisk() {
		r.RiskLabel = LabelHighRisk
		r.ThresholdHint = fmt.Sprintf(">= %.2f", a.Threshold)
		r.Advisory = AdvisoryHighRisk
	} else {
		r.RiskLabel = LabelLowRisk
		r.ThresholdHint = fmt.Sprintf("< %.2f", a.Threshold)
	}
	return r
}

// FormatProbability renders p as a percentage with two decimals.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// ErrorReport is the operator-facing rendering of an evaluation failure.
type ErrorReport struct {
	Message string
	Hint    string
}

// NewErrorReport renders an error returned by Evaluate.
func NewErrorReport(err error) ErrorReport {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return ErrorReport{Message: MessageModelUnavailable}
	case errors.Is(err, ErrInference):
		return ErrorReport{
			Message: fmt.Sprintf("Error during prediction: %v", err),
			Hint:    HintInferenceError,
		}
	}
	return ErrorReport{Message: err.Error()}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
