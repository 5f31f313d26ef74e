// Package schedule is the reconciliation core: opponent normalization,
// cross-league dedup, practice generation, and run-over-run change
// detection. It performs no I/O and is deterministic over its inputs.
package schedule

import (
	"regexp"
	"strings"
)

var (
	// Trailing grade+gender token, e.g. "Stoughton 5B" or "Needham 6G".
	gradeGenderSuffix = regexp.MustCompile(`\s+\d+[bg]$`)
	// Trailing division token, e.g. "Stoughton D1".
	divisionSuffix = regexp.MustCompile(`(?i)\s+d\d+$`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes an opponent name so the same real opponent
// matches across leagues that suffix division/grade info differently:
// "Stoughton 5B D1" and "Stoughton D1" both normalize to "stoughton".
// Any input, including the empty string, yields a (possibly empty)
// normalized string.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = divisionSuffix.ReplaceAllString(s, "")
	s = gradeGenderSuffix.ReplaceAllString(s, "")
	// A name like "Stoughton 5B D1" carries both suffixes; strip the
	// division again now that it is trailing.
	s = divisionSuffix.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
