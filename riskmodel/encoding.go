package riskmodel

import "github.com/m-mizutani/goerr/v2"

// Category is one closed-choice option and the integer code the classifier
// was trained with.
type Category struct {
	Label string `toml:"label"`
	Code  int    `toml:"code"`
}

// EncodingTable maps operator-facing labels to classifier codes, one closed
// choice set per categorical field. It is immutable once built.
type EncodingTable struct {
	version string
	fields  map[Field][]Category
	index   map[Field]map[string]int
}

func newEncodingTable(version string, fields map[Field][]Category) *EncodingTable {
	t := &EncodingTable{
		version: version,
		fields:  make(map[Field][]Category, len(fields)),
		index:   make(map[Field]map[string]int, len(fields)),
	}
	for field, cats := range fields {
		t.fields[field] = append([]Category(nil), cats...)
		idx := make(map[string]int, len(cats))
		for _, c := range cats {
			idx[normalizeKey(c.Label)] = c.Code
		}
		t.index[field] = idx
	}
	return t
}

// Version returns the manifest version the table was loaded from.
func (t *EncodingTable) Version() string {
	return t.version
}

// Encode returns the training-time code of label for field.
func (t *EncodingTable) Encode(field Field, label string) (int, error) {
	idx, ok := t.index[field]
	if !ok {
		return 0, goerr.Wrap(ErrUnknownCategory, "field has no encoding table", goerr.V(FieldKey, field))
	}
	code, ok := idx[normalizeKey(label)]
	if !ok {
		return 0, goerr.Wrap(ErrUnknownCategory, "label is not a choice of field",
			goerr.V(FieldKey, field),
			goerr.V(LabelKey, label))
	}
	return code, nil
}

// Labels returns the choices of field in manifest order.
func (t *EncodingTable) Labels(field Field) []string {
	cats := t.fields[field]
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Label
	}
	return out
}

// Categories returns a copy of the choices of field with their codes.
func (t *EncodingTable) Categories(field Field) []Category {
	return append([]Category(nil), t.fields[field]...)
}

// DefaultLabel is the first choice of field, preselected by the form.
func (t *EncodingTable) DefaultLabel(field Field) string {
	cats := t.fields[field]
	if len(cats) == 0 {
		return ""
	}
	return cats[0].Label
}

// canonicalLabel maps an equivalent spelling back to the label stored in the table.
func (t *EncodingTable) canonicalLabel(field Field, label string) (string, bool) {
	key := normalizeKey(label)
	for _, c := range t.fields[field] {
		if normalizeKey(c.Label) == key {
			return c.Label, true
		}
	}
	return "", false
}
