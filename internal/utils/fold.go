package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

var caseFolder = cases.Fold()

// dotless folds the Turkish dotted/dotless i pairs onto plain "i" after case
// folding, so "TRAFİK", "TRAFIK" and "trafik" compare equal.
var dotless = strings.NewReplacer("\u0131", "i", "\u0307", "")

// FoldTR returns a case-insensitive comparison key for s that treats the
// Turkish i variants as one letter. Leading and trailing space is trimmed.
func FoldTR(s string) string {
	return dotless.Replace(caseFolder.String(strings.TrimSpace(s)))
}
