package riskmodel

import "github.com/m-mizutani/goerr/v2"

// Form collects one operator's inputs. Categorical fields only accept labels
// from the encoding table and numeric fields are clamped to their bounds, so
// any FeatureVector it produces is in range.
type Form struct {
	manifest *Manifest
	labels   map[Field]string
	width    float64
	neck     float64
}

// NewForm returns a form preset to the first choice of every categorical
// field and the documented numeric defaults.
func NewForm(m *Manifest) *Form {
	f := &Form{
		manifest: m,
		labels:   make(map[Field]string, len(CategoricalFields)),
	}
	f.Reset()
	return f
}

// Reset restores all defaults.
func (f *Form) Reset() {
	table := f.manifest.Table()
	for _, field := range CategoricalFields {
		f.labels[field] = table.DefaultLabel(field)
	}
	f.width = f.manifest.Bounds(Width).Default
	f.neck = f.manifest.Bounds(Neck).Default
}

// Manifest returns the manifest the form encodes with.
func (f *Form) Manifest() *Manifest {
	return f.manifest
}

// Select sets the label of a categorical field.
func (f *Form) Select(field Field, label string) error {
	canonical, ok := f.manifest.Table().canonicalLabel(field, label)
	if !ok {
		return goerr.Wrap(ErrUnknownCategory, "cannot select label",
			goerr.V(FieldKey, field),
			goerr.V(LabelKey, label))
	}
	f.labels[field] = canonical
	return nil
}

// Selected returns the current label of a categorical field.
func (f *Form) Selected(field Field) string {
	return f.labels[field]
}

// SetWidth stores the clamped width and returns the stored value.
func (f *Form) SetWidth(v float64) float64 {
	f.width = f.manifest.Bounds(Width).Clamp(v)
	return f.width
}

// SetNeck stores the clamped neck size and returns the stored value.
func (f *Form) SetNeck(v float64) float64 {
	f.neck = f.manifest.Bounds(Neck).Clamp(v)
	return f.neck
}

// SetNumeric dispatches to SetWidth or SetNeck.
func (f *Form) SetNumeric(field Field, v float64) (float64, error) {
	switch field {
	case Width:
		return f.SetWidth(v), nil
	case Neck:
		return f.SetNeck(v), nil
	}
	return 0, goerr.New("not a numeric field", goerr.V(FieldKey, field))
}

// Width returns the current aneurysm width in mm.
func (f *Form) Width() float64 { return f.width }

// Neck returns the current aneurysm neck size in mm.
func (f *Form) Neck() float64 { return f.neck }

// FeatureVector encodes the current inputs.
func (f *Form) FeatureVector() (FeatureVector, error) {
	table := f.manifest.Table()
	codes := make(map[Field]int, len(CategoricalFields))
	for _, field := range CategoricalFields {
		code, err := table.Encode(field, f.labels[field])
		if err != nil {
			return FeatureVector{}, err
		}
		codes[field] = code
	}
	return FeatureVector{
		ThrombolysisAfterTirofiban: codes[ThrombolysisAfterTirofiban],
		StentType:                  codes[StentType],
		Morphology:                 codes[Morphology],
		Rupture:                    codes[Rupture],
		EmbolizationTechnique:      codes[EmbolizationTechnique],
		Width:                      f.manifest.Bounds(Width).Clamp(f.width),
		Neck:                       f.manifest.Bounds(Neck).Clamp(f.neck),
		AngioAndTreatment:          codes[AngioAndTreatment],
		HeparinTiming:              codes[HeparinTiming],
	}, nil
}
