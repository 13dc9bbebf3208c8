// Package tools implements the Tool Registry (spec §4.3, C3): nine named
// tools the Cascade Intelligence agentic loop (and the direct
// search_case_law control command) can dispatch. Grounded on the
// teacher's internal/aws/actions.Executor plan→validate→execute shape,
// generalized from one domain (AWS actions) to nine named tools behind a
// single schema type and dispatch table.
package tools

import (
	"context"

	"github.com/eliBenven/case-nexus/internal/caselaw"
	"github.com/eliBenven/case-nexus/internal/citation"
	ctxbuilder "github.com/eliBenven/case-nexus/internal/context"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
)

// Tool names, spec §4.3's table.
const (
	GetCase                    = "get_case"
	GetCaseContext             = "get_case_context"
	GetLegalContext            = "get_legal_context"
	GetAlerts                  = "get_alerts"
	GetConnections             = "get_connections"
	GetPriorAnalyses           = "get_prior_analyses"
	SearchCaseLaw              = "search_case_law"
	VerifyCitations            = "verify_citations"
	SearchPrecedentsForCharges = "search_precedents_for_charges"
)

type toolFunc func(ctx context.Context, r *Registry, input map[string]any) any

type field struct {
	name     string
	jsonType string // "string" | "array_string" | "integer"
	required bool
}

type toolDef struct {
	name        string
	description string
	fields      []field
	fn          toolFunc
}

// defs is built up by each tool's source file via registerTool at package
// init time; registry.go never lists the nine tools' bodies itself.
var defs []toolDef

func registerTool(d toolDef) {
	defs = append(defs, d)
}

// Registry holds every collaborator the nine tools need: the Corpus Store
// and Context Builder for the first six, plus the caselaw search client
// and Citation Verifier for the last three.
type Registry struct {
	store    *corpus.Store
	builder  *ctxbuilder.Builder
	insights *insight.Log
	search   *caselaw.Client
	verifier *citation.Verifier

	byName map[string]toolDef
}

func NewRegistry(store *corpus.Store, builder *ctxbuilder.Builder, insights *insight.Log, search *caselaw.Client, verifier *citation.Verifier) *Registry {
	byName := make(map[string]toolDef, len(defs))
	for _, d := range defs {
		byName[d.name] = d
	}
	return &Registry{store: store, builder: builder, insights: insights, search: search, verifier: verifier, byName: byName}
}

// AllNames is every tool advertised to Cascade Intelligence by default.
func (r *Registry) AllNames() []string {
	names := make([]string, 0, len(r.byName))
	for _, d := range defs {
		names = append(names, d.name)
	}
	return names
}

// Specs returns the ToolSpec JSON schema for names (empty = every tool),
// the shape the Streaming Runner hands the provider (spec §4.4 Tools
// field).
func (r *Registry) Specs(names []string) []llm.ToolSpec {
	if len(names) == 0 {
		names = r.AllNames()
	}
	specs := make([]llm.ToolSpec, 0, len(names))
	for _, n := range names {
		d, ok := r.byName[n]
		if !ok {
			continue
		}
		specs = append(specs, toolSpec(d))
	}
	return specs
}

func toolSpec(d toolDef) llm.ToolSpec {
	properties := map[string]any{}
	var required []string
	for _, f := range d.fields {
		switch f.jsonType {
		case "array_string":
			properties[f.name] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		case "integer":
			properties[f.name] = map[string]any{"type": "integer"}
		default:
			properties[f.name] = map[string]any{"type": "string"}
		}
		if f.required {
			required = append(required, f.name)
		}
	}
	return llm.ToolSpec{
		Name:        d.name,
		Description: d.description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// Dispatch validates input against name's schema and runs the tool.
// Tools never fail the loop (spec §4.3): an unknown tool, a schema
// violation, or a runtime failure all come back as a structured
// {error, ...} value rather than a Go error (spec §4.5 edge cases).
func (r *Registry) Dispatch(ctx context.Context, name string, input map[string]any) any {
	d, ok := r.byName[name]
	if !ok {
		metrics.ToolCallTotal.WithLabelValues(name, "unknown").Inc()
		return map[string]any{"error": "unknown_tool"}
	}

	if details, ok := validate(d, input); !ok {
		metrics.ToolCallTotal.WithLabelValues(name, "bad_input").Inc()
		return map[string]any{"error": "bad_input", "details": details}
	}

	result := d.fn(ctx, r, input)
	metrics.ToolCallTotal.WithLabelValues(name, "ok").Inc()
	return result
}

func validate(d toolDef, input map[string]any) (string, bool) {
	for _, f := range d.fields {
		if !f.required {
			continue
		}
		v, present := input[f.name]
		if !present {
			return "missing required field: " + f.name, false
		}
		switch f.jsonType {
		case "array_string":
			if _, ok := v.([]interface{}); !ok {
				return f.name + " must be an array of strings", false
			}
		case "string":
			if s, ok := v.(string); !ok || s == "" {
				return f.name + " must be a non-empty string", false
			}
		}
	}
	return "", true
}

func stringField(input map[string]any, name string) (string, bool) {
	v, ok := input[name].(string)
	return v, ok
}

func intField(input map[string]any, name string, def int) int {
	switch v := input[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringSliceField(input map[string]any, name string) []string {
	raw, ok := input[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
