package riskmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/evtrisk/riskmodel"
)

func TestEncodingTable_Encode(t *testing.T) {
	table := riskmodel.DefaultManifest().Table()

	tests := []struct {
		field riskmodel.Field
		label string
		code  int
	}{
		{riskmodel.ThrombolysisAfterTirofiban, "No", 0},
		{riskmodel.ThrombolysisAfterTirofiban, "Yes", 1},
		{riskmodel.StentType, "LVIS", 0},
		{riskmodel.StentType, "Enterprise", 1},
		{riskmodel.StentType, "Solitaire", 2},
		{riskmodel.StentType, "Flow Diverter", 3},
		{riskmodel.StentType, "Other", 4},
		{riskmodel.Morphology, "Saccular", 0},
		{riskmodel.Morphology, "Irregular", 1},
		{riskmodel.Morphology, "Fusiform", 2},
		{riskmodel.Rupture, "Unruptured", 0},
		{riskmodel.Rupture, "Ruptured", 1},
		{riskmodel.EmbolizationTechnique, "Simple Coiling", 0},
		{riskmodel.EmbolizationTechnique, "Balloon-Assisted", 1},
		{riskmodel.EmbolizationTechnique, "Stent-Assisted", 2},
		{riskmodel.AngioAndTreatment, "Type A", 0},
		{riskmodel.AngioAndTreatment, "Type B", 1},
		{riskmodel.AngioAndTreatment, "Type C", 2},
		{riskmodel.HeparinTiming, "Pre-operative", 0},
		{riskmodel.HeparinTiming, "Intra-operative", 1},
		{riskmodel.HeparinTiming, "Post-operative", 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.label, func(t *testing.T) {
			code, err := table.Encode(tt.field, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestEncodingTable_EncodeNormalizesLabel(t *testing.T) {
	table := riskmodel.DefaultManifest().Table()

	code, err := table.Encode(riskmodel.StentType, "  flow   diverter ")
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	// full-width letters fold under NFKC
	code, err = table.Encode(riskmodel.StentType, "ＬＶＩＳ")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestEncodingTable_EncodeUnknown(t *testing.T) {
	table := riskmodel.DefaultManifest().Table()

	_, err := table.Encode(riskmodel.StentType, "Pipeline")
	require.Error(t, err)
	assert.ErrorIs(t, err, riskmodel.ErrUnknownCategory)

	_, err = table.Encode(riskmodel.Width, "5.0")
	assert.ErrorIs(t, err, riskmodel.ErrUnknownCategory)

	_, err = table.Encode(riskmodel.Rupture, "Maybe")
	assert.ErrorIs(t, err, riskmodel.ErrUnknownCategory)
	code, err := table.Encode(riskmodel.Rupture, "ruptured")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestEncodingTable_Labels(t *testing.T) {
	table := riskmodel.DefaultManifest().Table()

	assert.Equal(t, []string{"Saccular", "Irregular", "Fusiform"}, table.Labels(riskmodel.Morphology))
	assert.Equal(t, "No", table.DefaultLabel(riskmodel.ThrombolysisAfterTirofiban))
	assert.Equal(t, "", table.DefaultLabel(riskmodel.Width))
	assert.Equal(t, "evt-recurrence-v1", table.Version())

	cats := table.Categories(riskmodel.Rupture)
	cats[0].Code = 99
	code, err := table.Encode(riskmodel.Rupture, "Unruptured")
	require.NoError(t, err)
	assert.Equal(t, 0, code, "Categories must return a copy")
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "Flow Diverter", riskmodel.NormalizeLabel(" Flow\t Diverter\n"))
	assert.Equal(t, "Type A", riskmodel.NormalizeLabel("Ｔｙｐｅ　Ａ"))
}
