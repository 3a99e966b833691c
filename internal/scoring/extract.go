// Package scoring extracts bounded numeric scores from free-text model
// evaluations. The evaluator is asked for a specific output format but its
// adherence is not guaranteed, so extraction is a best-effort pattern match
// and an absent score is a valid result, not an error.
package scoring

import "regexp"

// TechnicalPattern matches the overall score phrasing requested by the
// technical interview rubric.
var TechnicalPattern = regexp.MustCompile(`(?i)overall assessment score.*?([1-5])`)

// VideoPattern matches the overall score phrasing requested by the video
// interview rubric. The wording intentionally differs from TechnicalPattern;
// the two rubrics ask for different phrasings and each pattern tracks its own.
var VideoPattern = regexp.MustCompile(`(?i)overall score.*?([1-5])`)

// Extract returns the first digit 1-5 following the pattern's score phrase,
// or the empty string when no match is found. A nil pattern means the stage
// does not extract a numeric score at all.
func Extract(evaluation string, pattern *regexp.Regexp) string {
	if pattern == nil {
		return ""
	}
	m := pattern.FindStringSubmatch(evaluation)
	if m == nil {
		return ""
	}
	return m[1]
}
