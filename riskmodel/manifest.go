package riskmodel

import (
	"bytes"
	_ "embed"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default_manifest.toml
var defaultManifestTOML []byte

// NumericBounds is the documented clinical range of a measurement field.
type NumericBounds struct {
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
	Default float64 `toml:"default"`
	Step    float64 `toml:"step"`
}

// Clamp pulls v into [Min, Max]. Non-finite values fall back to Default.
func (b NumericBounds) Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return b.Default
	}
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Contains reports whether v lies inside the bounds.
func (b NumericBounds) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= b.Min && v <= b.Max
}

func (b NumericBounds) validate(field string) error {
	if !(b.Min < b.Max) {
		return goerr.Wrap(ErrInvalidManifest, "numeric min must be below max",
			goerr.V(FieldKey, field), goerr.V("min", b.Min), goerr.V("max", b.Max))
	}
	if b.Default < b.Min || b.Default > b.Max {
		return goerr.Wrap(ErrInvalidManifest, "numeric default out of range",
			goerr.V(FieldKey, field), goerr.V("default", b.Default))
	}
	if b.Step <= 0 {
		return goerr.Wrap(ErrInvalidManifest, "numeric step must be positive",
			goerr.V(FieldKey, field), goerr.V("step", b.Step))
	}
	return nil
}

// Manifest is the versioned encoding configuration shipped alongside a model
// artifact: category codes, numeric bounds, feature order and threshold.
type Manifest struct {
	Version      string                   `toml:"version"`
	Threshold    float64                  `toml:"threshold"`
	ModelSHA256  string                   `toml:"model_sha256"`
	FeatureOrder []string                 `toml:"feature_order"`
	Categories   map[string][]Category    `toml:"categories"`
	Numeric      map[string]NumericBounds `toml:"numeric"`

	table *EncodingTable
}

// Validate checks the manifest against the fields the classifier consumes.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Version) == "" {
		return goerr.Wrap(ErrInvalidManifest, "version is required")
	}
	if !(m.Threshold > 0 && m.Threshold < 1) {
		return goerr.Wrap(ErrInvalidManifest, "threshold must be in (0, 1)", goerr.V("threshold", m.Threshold))
	}
	if len(m.FeatureOrder) != len(FeatureOrder) {
		return goerr.Wrap(ErrInvalidManifest, "feature order length mismatch",
			goerr.V("expected", len(FeatureOrder)), goerr.V("actual", len(m.FeatureOrder)))
	}
	for i, name := range m.FeatureOrder {
		if Field(name) != FeatureOrder[i] {
			return goerr.Wrap(ErrInvalidManifest, "feature order mismatch",
				goerr.V("position", i), goerr.V("expected", FeatureOrder[i]), goerr.V("actual", name))
		}
	}

	for _, field := range CategoricalFields {
		cats, ok := m.Categories[string(field)]
		if !ok || len(cats) == 0 {
			return goerr.Wrap(ErrInvalidManifest, "categorical field has no choices", goerr.V(FieldKey, field))
		}
		labels := make(map[string]bool, len(cats))
		codes := make(map[int]bool, len(cats))
		for _, c := range cats {
			key := normalizeKey(c.Label)
			if key == "" {
				return goerr.Wrap(ErrInvalidManifest, "empty category label", goerr.V(FieldKey, field))
			}
			if labels[key] {
				return goerr.Wrap(ErrInvalidManifest, "duplicate category label",
					goerr.V(FieldKey, field), goerr.V(LabelKey, c.Label))
			}
			if c.Code < 0 {
				return goerr.Wrap(ErrInvalidManifest, "negative category code",
					goerr.V(FieldKey, field), goerr.V(LabelKey, c.Label), goerr.V("code", c.Code))
			}
			if codes[c.Code] {
				return goerr.Wrap(ErrInvalidManifest, "duplicate category code",
					goerr.V(FieldKey, field), goerr.V("code", c.Code))
			}
			labels[key] = true
			codes[c.Code] = true
		}
	}
	for name := range m.Categories {
		if f := Field(name); f.IsNumeric() || !isKnownField(f) {
			return goerr.Wrap(ErrInvalidManifest, "categories for unknown field", goerr.V(FieldKey, name))
		}
	}

	for _, field := range NumericFields {
		b, ok := m.Numeric[string(field)]
		if !ok {
			return goerr.Wrap(ErrInvalidManifest, "numeric field has no bounds", goerr.V(FieldKey, field))
		}
		if err := b.validate(string(field)); err != nil {
			return err
		}
	}
	for name := range m.Numeric {
		if !Field(name).IsNumeric() {
			return goerr.Wrap(ErrInvalidManifest, "numeric bounds for unknown field", goerr.V(FieldKey, name))
		}
	}
	return nil
}

// Table returns the encoding table described by the manifest.
func (m *Manifest) Table() *EncodingTable {
	if m.table == nil {
		fields := make(map[Field][]Category, len(m.Categories))
		for name, cats := range m.Categories {
			fields[Field(name)] = cats
		}
		m.table = newEncodingTable(m.Version, fields)
	}
	return m.table
}

// Bounds returns the numeric range of field.
func (m *Manifest) Bounds(field Field) NumericBounds {
	return m.Numeric[string(field)]
}

// ParseManifest decodes and validates a TOML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, goerr.Wrap(err, "decode manifest")
	}
	m.ModelSHA256 = strings.ToLower(strings.TrimSpace(m.ModelSHA256))
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Table()
	return &m, nil
}

// LoadManifest reads the manifest at path, or the built-in one when path is empty.
func LoadManifest(path string) (*Manifest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "read manifest", goerr.V(ManifestKey, path))
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, goerr.Wrap(err, "load manifest", goerr.V(ManifestKey, path))
	}
	return m, nil
}

var defaultManifest = sync.OnceValue(func() *Manifest {
	m, err := ParseManifest(defaultManifestTOML)
	if err != nil {
		panic("built-in encoding manifest is invalid: " + err.Error())
	}
	return m
})

// DefaultManifest returns the built-in manifest. The returned value is shared
// and must not be modified.
func DefaultManifest() *Manifest {
	return defaultManifest()
}

func isKnownField(f Field) bool {
	for _, known := range FeatureOrder {
		if f == known {
			return true
		}
	}
	return false
}
