package app

import (
	"context"
	"errors"
	"testing"

	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/evtrisk/riskmodel"
)

func newTestUI(t *testing.T, model *riskmodel.ModelHandle) *uiState {
	t.Helper()
	a := test.NewTempApp(t)
	u := buildUI(a, newTestService(t, model), binding.NewString())
	t.Cleanup(u.w.Close)
	return u
}

func TestUI_DefaultInputs(t *testing.T) {
	u := newTestUI(t, stubModel(0.73, nil))

	assert.Equal(t, windowTitle, u.w.Title())
	assert.Equal(t, "LVIS", u.selects[riskmodel.StentType].Selected)
	assert.Equal(t, 5.0, u.sliders[riskmodel.Width].Value)
	assert.Equal(t, "5.0 mm", u.sliderLabels[riskmodel.Width].Text)
	assert.Equal(t, "3.0 mm", u.sliderLabels[riskmodel.Neck].Text)
	require.Len(t, u.encoded, len(riskmodel.FeatureOrder))
	assert.Equal(t, "5.0", u.encoded[5].Value)
	assert.Equal(t, "Model: func / Manifest: evt-recurrence-v1 / Threshold: 0.50", u.modelStatus.Text)
	assert.False(t, u.indicator.Visible())
	assert.Equal(t, StateIdle, u.session.State())
}

func TestUI_PredictHighRisk(t *testing.T) {
	u := newTestUI(t, stubModel(0.73, nil))

	test.Tap(u.predictBtn)

	assert.Equal(t, StateEvaluated, u.session.State())
	assert.Equal(t, "73.00%", u.probability.Text)
	assert.Equal(t, "High Risk", u.riskLabel.Text)
	assert.Equal(t, "(>= 0.50)", u.thresholdHint.Text)
	assert.True(t, u.indicator.Visible())
	assert.InDelta(t, 0.73, u.indicator.Value, 1e-9)
	assert.True(t, u.advisory.Visible())
	assert.Contains(t, u.advisory.Text, riskmodel.AdvisoryHighRisk)
	assert.False(t, u.errorMsg.Visible())
	assert.False(t, u.predictBtn.Disabled())
	assert.Equal(t, "Done", u.status.Text)
}

func TestUI_InputChangesReachClassifier(t *testing.T) {
	var got riskmodel.FeatureVector
	model := riskmodel.StaticModel(riskmodel.ClassifierFunc(func(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
		got = v
		return 0.1, nil
	}))
	u := newTestUI(t, model)

	u.selects[riskmodel.StentType].SetSelected("Flow Diverter")
	u.selects[riskmodel.HeparinTiming].SetSelected("Post-operative")
	u.sliders[riskmodel.Width].SetValue(80)
	assert.Equal(t, "50.0 mm", u.sliderLabels[riskmodel.Width].Text)
	assert.Equal(t, "3", u.encoded[1].Value)

	test.Tap(u.predictBtn)
	assert.Equal(t, []float32{0, 3, 0, 0, 0, 50, 3, 0, 2}, got.Values())
	assert.Equal(t, "Low Risk", u.riskLabel.Text)
	assert.False(t, u.advisory.Visible())
}

func TestUI_ModelUnavailable(t *testing.T) {
	u := newTestUI(t, riskmodel.NewModelHandle(nil))
	assert.Contains(t, u.modelStatus.Text, riskmodel.MessageModelUnavailable)

	test.Tap(u.predictBtn)

	assert.Equal(t, StateEvaluated, u.session.State())
	assert.True(t, u.errorMsg.Visible())
	assert.Equal(t, "Model not loaded. Cannot predict.", u.errorMsg.Text)
	assert.False(t, u.errorHint.Visible())
	assert.False(t, u.indicator.Visible())
	assert.Empty(t, u.probability.Text)
}

func TestUI_InferenceErrorThenRetry(t *testing.T) {
	fail := true
	model := riskmodel.StaticModel(riskmodel.ClassifierFunc(func(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
		if fail {
			return 0, errors.New("unexpected input width")
		}
		return 0.5, nil
	}))
	u := newTestUI(t, model)

	test.Tap(u.predictBtn)
	assert.True(t, u.errorMsg.Visible())
	assert.Contains(t, u.errorMsg.Text, "Error during prediction: ")
	assert.Contains(t, u.errorMsg.Text, "unexpected input width")
	assert.Equal(t, riskmodel.HintInferenceError, u.errorHint.Text)
	assert.Equal(t, "Error", u.status.Text)
	assert.False(t, u.predictBtn.Disabled())

	fail = false
	test.Tap(u.predictBtn)
	assert.False(t, u.errorMsg.Visible())
	assert.Equal(t, "50.00%", u.probability.Text)
	assert.Equal(t, "High Risk", u.riskLabel.Text)
}
