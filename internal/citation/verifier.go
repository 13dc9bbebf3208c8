package citation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/caselaw"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/metrics"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

type Verdict string

const (
	Verified  Verdict = "verified"
	NotFound  Verdict = "not_found"
	Ambiguous Verdict = "ambiguous"
)

// Entry is one citation's verification outcome.
type Entry struct {
	Citation   string  `json:"citation"`
	Normalized string  `json:"normalized"`
	CaseName   string  `json:"case_name,omitempty"`
	URL        string  `json:"url,omitempty"`
	Verdict    Verdict `json:"verdict"`
}

// Result is the happy-path output of a verification pass (spec §4.7 step 3).
type Result struct {
	Verified  []Entry `json:"verified"`
	NotFound  []Entry `json:"not_found"`
	Ambiguous []Entry `json:"ambiguous"`
}

// Degraded is surfaced on citation_verification_results when the external
// provider is unreachable (spec §4.7 step 4 / testable scenario S5): the
// extracted set is still delivered, unverified.
type Degraded struct {
	Error          string   `json:"error"`
	LocalCitations []string `json:"local_citations"`
}

// Verifier consults a local exact-match LegalFact index first, then runs
// one grounded caselaw search per unmatched citation; the lookups are not
// combined into a single call.
type Verifier struct {
	store   *corpus.Store
	search  *caselaw.Client // nil means no external provider is configured
}

func NewVerifier(store *corpus.Store, search *caselaw.Client) *Verifier {
	return &Verifier{store: store, search: search}
}

func normalize(c string) string {
	return strings.Join(strings.Fields(c), " ")
}

func (v *Verifier) localMatch(citation string) (Entry, bool) {
	fact, err := v.store.GetLegalFact(normalize(citation))
	if err != nil {
		return Entry{}, false
	}
	return Entry{Citation: citation, Normalized: normalize(citation), CaseName: fact.Title, Verdict: Verified}, true
}

// Verify checks each of citations against the local index, then the
// grounded caselaw provider for anything unmatched. On external failure
// it returns the happy-path entries resolved so far plus a Degraded
// describing the full original citation set, per spec's "UI can still
// display the extracted set as unverified."
func (v *Verifier) Verify(ctx context.Context, citations []string) (*Result, *Degraded) {
	res := &Result{}
	var unmatched []string

	for _, c := range citations {
		if entry, ok := v.localMatch(c); ok {
			res.Verified = append(res.Verified, entry)
			metrics.CitationVerificationTotal.WithLabelValues(string(Verified)).Inc()
			continue
		}
		unmatched = append(unmatched, c)
	}

	if len(unmatched) == 0 {
		return res, nil
	}

	if v.search == nil {
		return res, &Degraded{Error: "external case-law provider unavailable", LocalCitations: citations}
	}

	for _, c := range unmatched {
		hits, err := v.search.Search(ctx, c, "")
		if err != nil {
			logger.Warn("citation verification: external search failed", zap.String("citation", c), zap.Error(err))
			return res, &Degraded{Error: err.Error(), LocalCitations: citations}
		}

		entry := Entry{Citation: c, Normalized: normalize(c)}
		switch len(hits) {
		case 0:
			entry.Verdict = NotFound
			res.NotFound = append(res.NotFound, entry)
		case 1:
			entry.Verdict = Verified
			entry.CaseName = hits[0].CaseName
			entry.URL = hits[0].URL
			res.Verified = append(res.Verified, entry)
		default:
			entry.Verdict = Ambiguous
			entry.URL = hits[0].URL
			res.Ambiguous = append(res.Ambiguous, entry)
		}
		metrics.CitationVerificationTotal.WithLabelValues(string(entry.Verdict)).Inc()
	}

	return res, nil
}
