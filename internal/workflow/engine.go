// Package workflow implements the Workflow Engine (spec §4.6, C6): nine
// named compositions over the Context Builder, Streaming Runner, Tool
// Loop, Tool Registry, and Insight Log. Grounded on the teacher's
// internal/query/engine.go Engine.ProcessQuery orchestration shape
// (build context -> call LLM -> persist a record -> return a typed
// response), generalized from one query type to nine workflow kinds.
package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/agent"
	"github.com/eliBenven/case-nexus/internal/apperr"
	ctxbuilder "github.com/eliBenven/case-nexus/internal/context"
	"github.com/eliBenven/case-nexus/internal/citation"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/gate"
	"github.com/eliBenven/case-nexus/internal/graph"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
	"github.com/eliBenven/case-nexus/internal/tools"
	"github.com/eliBenven/case-nexus/pkg/config"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// Engine composes every collaborator a workflow needs. One Engine is
// shared across every connected client; per-client state (the Request
// Gate's held-slot map, chat history) is keyed by client_id inside its
// collaborators.
type Engine struct {
	store    *corpus.Store
	builder  *ctxbuilder.Builder
	runner   *llm.Runner
	loop     *agent.Loop
	registry *tools.Registry
	insights *insight.Log
	bus      *eventbus.Bus
	gate     *gate.Gate
	verifier *citation.Verifier
	graph    *graph.Client // nil when Neo4j is unavailable; health check degrades to LLM-only connections
	cfg      config.WorkflowConfig
}

func NewEngine(
	store *corpus.Store,
	builder *ctxbuilder.Builder,
	runner *llm.Runner,
	loop *agent.Loop,
	registry *tools.Registry,
	insights *insight.Log,
	bus *eventbus.Bus,
	gt *gate.Gate,
	verifier *citation.Verifier,
	graphClient *graph.Client,
	cfg config.WorkflowConfig,
) *Engine {
	return &Engine{
		store: store, builder: builder, runner: runner, loop: loop, registry: registry,
		insights: insights, bus: bus, gate: gt, verifier: verifier, graph: graphClient, cfg: cfg,
	}
}

// acquire claims clientID's Request Gate slot or emits the busy
// analysis_error and returns apperr.Busy (spec §4.11 / testable property 1).
func (e *Engine) acquire(clientID string) error {
	if !e.gate.TryAcquire(clientID) {
		metrics.GateBusyTotal.WithLabelValues(clientID).Inc()
		e.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": "busy"})
		return apperr.Busy("a workflow is already running for this client")
	}
	return nil
}

// notFound emits analysis_error for a client_id-supplied reference that
// doesn't resolve, without ever opening an LLM call (spec §7 NotFound).
func (e *Engine) notFound(clientID string, err error) error {
	e.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": err.Error()})
	return err
}

// transportError emits <ns>_error; the Request Gate release still happens
// via the caller's defer and no Insight is written (spec §7 TransportError).
func (e *Engine) transportError(ns eventbus.Kind, clientID string, err error) error {
	logger.Error("workflow transport error", zap.String("namespace", string(ns)), zap.Error(err))
	e.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixError), map[string]string{"message": err.Error()})
	return err
}

// complete emits <ns>_results with the authoritative payload and appends
// exactly one Insight (spec §4.6 workflow-wide contract / testable
// property 5), regardless of whether payload is a happy-path structured
// value or a parseFailure fallback.
func (e *Engine) complete(ns eventbus.Kind, clientID string, analysisType domain.AnalysisType, scope string, payload any) error {
	e.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixResults), payload)
	if _, err := insight.Append(e.insights, analysisType, scope, payload); err != nil {
		logger.Error("failed to append insight", zap.String("analysis_type", string(analysisType)), zap.Error(err))
		return fmt.Errorf("append insight: %w", err)
	}
	return nil
}

// observe records workflow duration/outcome metrics; call via defer with
// time.Now() captured at workflow entry.
func observe(name string, start time.Time, err *error) {
	metrics.WorkflowDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	status := "ok"
	if *err != nil {
		status = "error"
	}
	metrics.WorkflowTotal.WithLabelValues(name, status).Inc()
}

// parseFailure is the <workflow>_results / Insight payload shape used
// whenever a workflow expected to emit structured JSON gets something
// else back from the model (spec §7 ParseError, testable scenario S6):
// the raw text is still delivered and still logged as an Insight, with
// the structured sub-fields simply absent.
type parseFailure struct {
	ResponseText string `json:"response_text"`
}

// parseJSONObject unmarshals raw into v, first trying the whole string and
// then, if that fails, the substring between the first '{' and the last
// '}' — models occasionally wrap JSON in prose or a fenced code block.
func parseJSONObject(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(trimmed[start:end+1]), v)
}

// emitStatus publishes a heuristic progress milestone (spec §4.6 (1): "the
// server emits labelled progress milestones derived from heuristic chunk
// counts ... these are hints, not contracts" — open question 3).
func (e *Engine) emitStatus(clientID string, phase int, label string) {
	e.bus.Publish(clientID, eventbus.EventStatus, map[string]any{"phase": phase, "label": label})
}
