package riskmodel_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/evtrisk/riskmodel"
)

func fixedClassifier(p float64, calls *int) riskmodel.ClassifierFunc {
	return func(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
		if calls != nil {
			*calls++
		}
		return p, nil
	}
}

func newTestEvaluator(t *testing.T, model *riskmodel.ModelHandle) (*riskmodel.Evaluator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return riskmodel.NewEvaluator(model, riskmodel.DefaultManifest(), logger), &buf
}

func defaultVector(t *testing.T) riskmodel.FeatureVector {
	t.Helper()
	v, err := riskmodel.NewForm(riskmodel.DefaultManifest()).FeatureVector()
	require.NoError(t, err)
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		prob float64
		want int
	}{
		{0.5, riskmodel.ClassHigh},
		{0.49999, riskmodel.ClassLow},
		{0, riskmodel.ClassLow},
		{1, riskmodel.ClassHigh},
		{0.73, riskmodel.ClassHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskmodel.Classify(tt.prob, 0.5), "prob=%v", tt.prob)
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	var calls int
	e, logs := newTestEvaluator(t, riskmodel.StaticModel(fixedClassifier(0.73, &calls)))

	a, err := e.Evaluate(context.Background(), defaultVector(t))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 0.73, a.Probability)
	assert.Equal(t, riskmodel.ClassHigh, a.Class)
	assert.True(t, a.HighRisk())
	assert.Equal(t, 0.5, a.Threshold)
	assert.Equal(t, "func", a.ModelID)
	assert.Equal(t, "evt-recurrence-v1", a.ManifestVersion)
	assert.Contains(t, logs.String(), "evaluation completed")
	assert.Contains(t, logs.String(), a.ID)
}

func TestEvaluator_DistinctIDs(t *testing.T) {
	e, _ := newTestEvaluator(t, riskmodel.StaticModel(fixedClassifier(0.2, nil)))
	a1, err := e.Evaluate(context.Background(), defaultVector(t))
	require.NoError(t, err)
	a2, err := e.Evaluate(context.Background(), defaultVector(t))
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, a2.ID)
	assert.False(t, a1.HighRisk())
}

func TestEvaluator_ModelUnavailable(t *testing.T) {
	loaderCalls := 0
	model := riskmodel.NewModelHandle(func() (riskmodel.Classifier, error) {
		loaderCalls++
		return nil, errors.New("model file not found")
	})
	e, logs := newTestEvaluator(t, model)

	for i := 0; i < 2; i++ {
		_, err := e.Evaluate(context.Background(), defaultVector(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, riskmodel.ErrModelUnavailable)
		assert.NotErrorIs(t, err, riskmodel.ErrInference)
	}
	assert.Equal(t, 1, loaderCalls, "a failed load is cached")
	assert.Contains(t, logs.String(), "evaluation refused")
	assert.NotContains(t, logs.String(), "evaluation completed")

	_, err := riskmodel.NewEvaluator(riskmodel.NewModelHandle(nil), riskmodel.DefaultManifest(), nil).
		Evaluate(context.Background(), defaultVector(t))
	assert.ErrorIs(t, err, riskmodel.ErrModelUnavailable)
}

func TestEvaluator_InferenceError(t *testing.T) {
	tests := []struct {
		name   string
		clf    riskmodel.ClassifierFunc
		detail string
	}{
		{
			name: "classifier error",
			clf: func(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
				return 0, errors.New("tensor shape mismatch")
			},
			detail: "tensor shape mismatch",
		},
		{
			name: "classifier panic",
			clf: func(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
				panic("boom")
			},
			detail: "boom",
		},
		{
			name:   "probability above one",
			clf:    fixedClassifier(1.2, nil),
			detail: "outside [0, 1]",
		},
		{
			name:   "negative probability",
			clf:    fixedClassifier(-0.1, nil),
			detail: "outside [0, 1]",
		},
		{
			name:   "NaN probability",
			clf:    fixedClassifier(math.NaN(), nil),
			detail: "outside [0, 1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEvaluator(t, riskmodel.StaticModel(tt.clf))
			_, err := e.Evaluate(context.Background(), defaultVector(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, riskmodel.ErrInference)
			assert.Contains(t, err.Error(), tt.detail)

			// the evaluator stays usable
			_, err = e.Evaluate(context.Background(), defaultVector(t))
			assert.ErrorIs(t, err, riskmodel.ErrInference)
		})
	}
}

func TestEvaluator_Threshold(t *testing.T) {
	m, err := riskmodel.ParseManifest([]byte(validManifest))
	require.NoError(t, err)
	e := riskmodel.NewEvaluator(riskmodel.StaticModel(fixedClassifier(0.45, nil)), m, nil)
	assert.Equal(t, 0.4, e.Threshold())

	v, err := riskmodel.NewForm(m).FeatureVector()
	require.NoError(t, err)
	a, err := e.Evaluate(context.Background(), v)
	require.NoError(t, err)
	assert.True(t, a.HighRisk())
	assert.Equal(t, "test-v2", a.ManifestVersion)
}
