package riskmodel

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel folds width variants and collapses whitespace so that a
// label typed in a manifest matches the one offered by the form.
func NormalizeLabel(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

func normalizeKey(s string) string {
	return strings.ToLower(NormalizeLabel(s))
}
