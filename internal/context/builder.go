// Package context builds the text blobs every workflow hands the
// Streaming Runner as its prompt context (spec §4.2, Context Builder /
// C2). Concatenation is strings.Builder-driven so building the 275K-token
// full-caseload context never materializes more than one render at a
// time, mirroring the digest-building helpers in the teacher's
// internal/query/engine.go (formatKGContext / formatVectorContext).
package context

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/legalvec"
)

// charsPerToken is the compile-time heuristic token estimate used to
// enforce LEGAL_CONTEXT_TOKEN_CAP without a real tokenizer dependency.
const charsPerToken = 4

// Embedder is the subset of internal/llm.Provider the Context Builder
// needs to turn a topic string into a legalvec query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Builder struct {
	store    *corpus.Store
	insights *insight.Log
	legal    *legalvec.Client // nil when the vector store is unavailable
	embedder Embedder
}

func NewBuilder(store *corpus.Store, insights *insight.Log, legal *legalvec.Client, embedder Embedder) *Builder {
	return &Builder{store: store, insights: insights, legal: legal, embedder: embedder}
}

// BuildFullCaseloadContext renders every case's markdown summary, in
// case_number order, for the caseload-wide workflows (health check,
// cascade, chat).
func (b *Builder) BuildFullCaseloadContext() (string, error) {
	numbers, err := b.store.AllCaseNumbers()
	if err != nil {
		return "", fmt.Errorf("build full caseload context: %w", err)
	}

	var out strings.Builder
	out.WriteString("# Full Caseload\n\n")
	for _, cn := range numbers {
		md, err := b.store.GetCaseMarkdown(cn)
		if err != nil {
			return "", fmt.Errorf("render case %s for caseload context: %w", cn, err)
		}
		out.WriteString(md)
		out.WriteString("\n")
	}
	return out.String(), nil
}

// BuildCaseContext renders the focal case plus any prior insights scoped
// to it (newest first) plus any caseload-wide alerts/connections that
// mention it (spec §4.2).
func (b *Builder) BuildCaseContext(caseNumber string) (string, error) {
	md, err := b.store.GetCaseMarkdown(caseNumber)
	if err != nil {
		return "", fmt.Errorf("build case context %s: %w", caseNumber, err)
	}

	var out strings.Builder
	out.WriteString(md)

	if mem, err := b.BuildMemoryContext(caseNumber, 0); err == nil && mem != "" {
		out.WriteString("\n")
		out.WriteString(mem)
	}

	alerts, err := b.store.ListAlerts()
	if err != nil {
		return "", fmt.Errorf("build case context %s: list alerts: %w", caseNumber, err)
	}
	var relevantAlerts []domain.Alert
	for _, a := range alerts {
		if a.CaseNumber == caseNumber {
			relevantAlerts = append(relevantAlerts, a)
		}
	}
	if len(relevantAlerts) > 0 {
		out.WriteString("\n## Related Alerts\n\n")
		for _, a := range relevantAlerts {
			fmt.Fprintf(&out, "- [%s] %s: %s\n", a.Severity, a.Title, a.Message)
		}
	}

	conns, err := b.store.ListConnections()
	if err != nil {
		return "", fmt.Errorf("build case context %s: list connections: %w", caseNumber, err)
	}
	var relevantConns []domain.Connection
	for _, c := range conns {
		for _, cn := range c.CaseNumbers {
			if cn == caseNumber {
				relevantConns = append(relevantConns, c)
				break
			}
		}
	}
	if len(relevantConns) > 0 {
		out.WriteString("\n## Related Connections\n\n")
		for _, c := range relevantConns {
			fmt.Fprintf(&out, "- [%s] %s (cases: %s): %s\n", c.Type, c.Title, strings.Join(c.CaseNumbers, ", "), c.Description)
		}
	}

	return out.String(), nil
}

// BuildLegalContext renders a digest of legal facts relevant to topics,
// capped at tokenCapKB*1024/charsPerToken estimated tokens. It tries
// legalvec semantic search first (embedding the joined topic keywords);
// on any vector-store failure or absence it falls back to corpus
// substring search, mirroring the teacher's SerpAPI-then-Google fallback
// shape in internal/search/web.
func (b *Builder) BuildLegalContext(ctx context.Context, topics []string, tokenCapKB int) (string, error) {
	keywords := extractKeywords(topics)
	budget := tokenCapKB * 1024 / charsPerToken * charsPerToken // char budget, token-cap-derived

	var facts []domain.LegalFact
	if b.legal != nil && b.embedder != nil {
		query := strings.Join(keywords, " ")
		if vec, err := b.embedder.Embed(ctx, query); err == nil {
			results, err := b.legal.Search(ctx, vec, 12, "")
			if err == nil {
				for _, r := range results {
					facts = append(facts, domain.LegalFact{
						CitationToken: r.CitationToken,
						Category:      r.Category,
						Jurisdiction:  r.Jurisdiction,
						Title:         r.Title,
						Text:          r.Text,
					})
				}
			}
		}
	}

	if len(facts) == 0 {
		seen := make(map[string]bool)
		for _, kw := range keywords {
			tokens, err := b.store.SearchLegal(kw, "")
			if err != nil {
				return "", fmt.Errorf("build legal context fallback search: %w", err)
			}
			for _, token := range tokens {
				if seen[token] {
					continue
				}
				seen[token] = true
				f, err := b.store.GetLegalFact(token)
				if err != nil {
					continue
				}
				facts = append(facts, *f)
			}
		}
	}

	var out strings.Builder
	out.WriteString("# Relevant Legal Context\n\n")
	for _, f := range facts {
		entry := fmt.Sprintf("## %s (%s)\n%s\n\n", f.Title, f.CitationToken, f.Text)
		if out.Len()+len(entry) > budget {
			break
		}
		out.WriteString(entry)
	}
	return out.String(), nil
}

// extractKeywords pulls noun-ish tokens out of free-text topics (charges,
// chat turns) using prose's POS tagger, falling back to the raw topic list
// verbatim if tagging turns up nothing usable.
func extractKeywords(topics []string) []string {
	var keywords []string
	for _, t := range topics {
		doc, err := prose.NewDocument(t)
		if err != nil {
			keywords = append(keywords, t)
			continue
		}
		found := false
		for _, tok := range doc.Tokens() {
			if strings.HasPrefix(tok.Tag, "NN") {
				keywords = append(keywords, tok.Text)
				found = true
			}
		}
		if !found {
			keywords = append(keywords, t)
		}
	}
	return keywords
}

// BuildMemoryContext renders the most recent Insights for scope as a
// markdown digest so workflows stay aware of prior analysis, bounded by
// limit entries (spec's MEMORY_LIMIT).
func (b *Builder) BuildMemoryContext(scope string, limit int) (string, error) {
	insights, err := b.insights.List(insight.Filter{Scope: scope, Limit: limit})
	if err != nil {
		return "", fmt.Errorf("build memory context for %s: %w", scope, err)
	}

	if len(insights) == 0 {
		return "", nil
	}

	var out strings.Builder
	out.WriteString("# Prior Analysis Memory\n\n")
	for _, in := range insights {
		fmt.Fprintf(&out, "## %s — %s\n%s\n\n", in.AnalysisType, in.CreatedAt.Format("2006-01-02 15:04"), in.Payload)
	}
	return out.String(), nil
}
