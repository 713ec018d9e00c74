package riskmodel

import (
	"fmt"
	"strconv"
)

// Field identifies one input column of the classifier.
type Field string

const (
	ThrombolysisAfterTirofiban Field = "ThrombolysisAfterTirofiban"
	StentType                  Field = "StentType"
	Morphology                 Field = "Morphology"
	Rupture                    Field = "Rupture"
	EmbolizationTechnique      Field = "EmbolizationTechnique"
	Width                      Field = "Width"
	Neck                       Field = "Neck"
	AngioAndTreatment          Field = "AngioAndTreatment"
	HeparinTiming              Field = "HeparinTiming"
)

// FeatureOrder is the training-time column order of the classifier.
var FeatureOrder = []Field{
	ThrombolysisAfterTirofiban,
	StentType,
	Morphology,
	Rupture,
	EmbolizationTechnique,
	Width,
	Neck,
	AngioAndTreatment,
	HeparinTiming,
}

// CategoricalFields lists the closed-choice fields in form order.
var CategoricalFields = []Field{
	ThrombolysisAfterTirofiban,
	StentType,
	Morphology,
	Rupture,
	EmbolizationTechnique,
	AngioAndTreatment,
	HeparinTiming,
}

// NumericFields lists the bounded continuous fields.
var NumericFields = []Field{Width, Neck}

// Title returns the operator-facing caption of the field.
func (f Field) Title() string {
	switch f {
	case ThrombolysisAfterTirofiban:
		return "Thrombolysis After Tirofiban"
	case StentType:
		return "Stent Type"
	case Morphology:
		return "Aneurysm Morphology"
	case Rupture:
		return "Rupture Status"
	case EmbolizationTechnique:
		return "Embolization Technique"
	case Width:
		return "Aneurysm Width (mm)"
	case Neck:
		return "Aneurysm Neck (mm)"
	case AngioAndTreatment:
		return "Angiography & Treatment"
	case HeparinTiming:
		return "Heparin Timing"
	}
	return string(f)
}

// IsNumeric reports whether the field carries a measurement instead of a code.
func (f Field) IsNumeric() bool {
	return f == Width || f == Neck
}

// FeatureVector is the encoded input submitted to the classifier.
type FeatureVector struct {
	ThrombolysisAfterTirofiban int     `json:"ThrombolysisAfterTirofiban"`
	StentType                  int     `json:"StentType"`
	Morphology                 int     `json:"Morphology"`
	Rupture                    int     `json:"Rupture"`
	EmbolizationTechnique      int     `json:"EmbolizationTechnique"`
	Width                      float64 `json:"Width"`
	Neck                       float64 `json:"Neck"`
	AngioAndTreatment          int     `json:"AngioAndTreatment"`
	HeparinTiming              int     `json:"HeparinTiming"`
}

// Values returns the vector as model input, ordered as FeatureOrder.
func (v FeatureVector) Values() []float32 {
	return []float32{
		float32(v.ThrombolysisAfterTirofiban),
		float32(v.StentType),
		float32(v.Morphology),
		float32(v.Rupture),
		float32(v.EmbolizationTechnique),
		float32(v.Width),
		float32(v.Neck),
		float32(v.AngioAndTreatment),
		float32(v.HeparinTiming),
	}
}

// FeatureValue is one named column of an encoded vector.
type FeatureValue struct {
	Field Field
	Value string
}

// Columns lists the vector as display pairs in FeatureOrder.
func (v FeatureVector) Columns() []FeatureValue {
	return []FeatureValue{
		{Field: ThrombolysisAfterTirofiban, Value: strconv.Itoa(v.ThrombolysisAfterTirofiban)},
		{Field: StentType, Value: strconv.Itoa(v.StentType)},
		{Field: Morphology, Value: strconv.Itoa(v.Morphology)},
		{Field: Rupture, Value: strconv.Itoa(v.Rupture)},
		{Field: EmbolizationTechnique, Value: strconv.Itoa(v.EmbolizationTechnique)},
		{Field: Width, Value: fmt.Sprintf("%.1f", v.Width)},
		{Field: Neck, Value: fmt.Sprintf("%.1f", v.Neck)},
		{Field: AngioAndTreatment, Value: strconv.Itoa(v.AngioAndTreatment)},
		{Field: HeparinTiming, Value: strconv.Itoa(v.HeparinTiming)},
	}
}

// Risk classes produced by the threshold comparison.
const (
	ClassLow  = 0
	ClassHigh = 1
)

// RiskAssessment is the outcome of one evaluation. It is never persisted.
type RiskAssessment struct {
	ID              string        `json:"id"`
	Probability     float64       `json:"probability"`
	Class           int           `json:"class"`
	Threshold       float64       `json:"threshold"`
	ModelID         string        `json:"modelId"`
	ManifestVersion string        `json:"manifestVersion"`
	Features        FeatureVector `json:"features"`
}

// HighRisk reports whether the assessment crossed the decision threshold.
func (a RiskAssessment) HighRisk() bool {
	return a.Class == ClassHigh
}

// ClassifierConfig wraps the ONNX Runtime settings of the model artifact.
type ClassifierConfig struct {
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	InputName     string `json:"inputName"`
	OutputName    string `json:"outputName"`
	PositiveClass int    `json:"positiveClass"`
	NumClasses    int    `json:"numClasses"`
}

// Config aggregates the deploy-time settings read from config.json.
type Config struct {
	LogLevel     string           `json:"logLevel"`
	ManifestPath string           `json:"manifestPath"`
	Classifier   ClassifierConfig `json:"classifier"`
}

// ApplyDefaults populates zero values with sensible defaults. PositiveClass is
// left alone since 0 is a valid column; LoadConfig defaults it only when the
// key is absent, and ortmodel.Open rejects out-of-range values.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Classifier.ModelPath == "" {
		c.Classifier.ModelPath = "./models/XGB.onnx"
	}
	if c.Classifier.InputName == "" {
		c.Classifier.InputName = "input"
	}
	if c.Classifier.OutputName == "" {
		c.Classifier.OutputName = "probabilities"
	}
	if c.Classifier.NumClasses <= 0 {
		c.Classifier.NumClasses = 2
	}
}

const defaultPositiveClass = 1

// DefaultConfig returns the settings used when no config.json exists.
func DefaultConfig() Config {
	cfg := Config{Classifier: ClassifierConfig{PositiveClass: defaultPositiveClass}}
	cfg.ApplyDefaults()
	return cfg
}
