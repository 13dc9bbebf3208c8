// Package citation implements the Citation Verifier (spec §4.7, C7):
// deterministic regex extraction of legal citations from generated text,
// followed by a local-index-then-grounded-search verification pass.
// Grounded on the teacher's internal/evaluation.Evaluator LLM-scoring-call
// pattern, combined with a deterministic extraction stage the teacher has
// no equivalent of.
package citation

import "regexp"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`§\s*\d+-\d+-\d+`),          // state code, e.g. "§ 16-13-30"
	regexp.MustCompile(`\d+\s+U\.S\.\s+\d+`),       // federal reporter, e.g. "384 U.S. 436"
	regexp.MustCompile(`\d+\s+[A-Z][A-Za-z.]+\s+\d+`), // common reporter, e.g. "86 S.Ct. 1602"; reporter names containing digits ("F.2d") are not matched
}

// Extract returns the unique candidate citations in text (spec §4.7 step 1),
// grouped by pattern in the order above (state code, U.S. reporter, other
// reporters), each group in order of appearance.
func Extract(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllString(text, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
