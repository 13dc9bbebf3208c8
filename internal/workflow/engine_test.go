package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxbuilder "github.com/eliBenven/case-nexus/internal/context"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/gate"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/tokens"
	"github.com/eliBenven/case-nexus/pkg/config"
)

// scriptedProvider replays one canned response per Stream call, in order,
// with no tool calls — enough to drive every non-agentic workflow
// deterministically.
type scriptedProvider struct {
	responses []string
	idx       int
}

func (p *scriptedProvider) Stream(ctx context.Context, req llm.StreamRequest) (<-chan llm.StreamChunk, error) {
	text := p.responses[p.idx]
	p.idx++

	ch := make(chan llm.StreamChunk, 2)
	ch <- llm.StreamChunk{ResponseDelta: text}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (p *scriptedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func newTestEngine(t *testing.T, responses ...string) (*Engine, *corpus.Store, *eventbus.Bus) {
	t.Helper()
	store, err := corpus.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	builder := ctxbuilder.NewBuilder(store, insight.New(store.DB()), nil, nil)
	bus := eventbus.NewBus()
	acct := tokens.NewAccountant(bus)
	provider := &scriptedProvider{responses: responses}
	runner := llm.NewRunner(provider, bus, acct)
	insights := insight.New(store.DB())
	g := gate.NewGate()

	cfg := config.WorkflowConfig{
		MaxToolRounds:            8,
		MemoryLimit:              5,
		LegalContextTokenCapKB:   120,
		HealthCheckThinkingKTok:  60,
		DeepAnalysisThinkingKTok: 40,
	}

	e := NewEngine(store, builder, runner, nil, nil, insights, bus, g, nil, nil, cfg)
	return e, store, bus
}

func TestDeepAnalysisParseDegradationStillWritesInsight(t *testing.T) {
	e, store, _ := newTestEngine(t, "hello")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	err := e.RunDeepAnalysis(context.Background(), "client-1", "A1")
	require.NoError(t, err)

	got, err := e.insights.List(insight.Filter{Scope: "A1", AnalysisType: domain.AnalysisDeepAnalysis})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Payload, `"response_text":"hello"`)
}

func TestDeepAnalysisNotFoundNeverCallsLLM(t *testing.T) {
	e, _, bus := newTestEngine(t, "unused")
	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.RunDeepAnalysis(context.Background(), "client-1", "GHOST")
	require.Error(t, err)

	ev := <-ch
	assert.Equal(t, eventbus.EventAnalysisError, ev.Type)
}

func TestGateCollisionRejectsSecondWorkflow(t *testing.T) {
	// Testable scenario S2: with the client's gate slot already held by
	// another workflow, a deep analysis request gets analysis_error{busy}
	// and writes no Insight.
	e, store, bus := newTestEngine(t, "{}", "{}")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	require.True(t, e.gate.TryAcquire("client-1"))

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.RunDeepAnalysis(context.Background(), "client-1", "A1")
	require.Error(t, err)

	ev := <-ch
	assert.Equal(t, eventbus.EventAnalysisError, ev.Type)
	payload, ok := ev.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "busy", payload["message"])

	got, err := e.insights.List(insight.Filter{Scope: "A1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdversarialChainsPhaseOutputsForward(t *testing.T) {
	// Testable scenario S4.
	e, store, bus := newTestEngine(t, "PROSECUTION TEXT", "DEFENSE TEXT", "JUDGE TEXT")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "C1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.RunAdversarial(context.Background(), "client-1", "C1")
	require.NoError(t, err)

	var phaseNumbers []int
	for i := 0; i < 20; i++ {
		ev := <-ch
		if ev.Type == eventbus.EventAdversarialPhase {
			payload := ev.Payload.(map[string]any)
			phaseNumbers = append(phaseNumbers, payload["phase_number"].(int))
		}
		if ev.Type == eventbus.Name(eventbus.KindJudge, eventbus.SuffixResults) {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3}, phaseNumbers)

	got, err := e.insights.List(insight.Filter{Scope: "C1", AnalysisType: domain.AnalysisAdversarial})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Payload, "PROSECUTION TEXT")
	assert.Contains(t, got[0].Payload, "DEFENSE TEXT")
	assert.Contains(t, got[0].Payload, "JUDGE TEXT")
}

func TestParseJSONObjectToleratesProseWrappedJSON(t *testing.T) {
	var out struct {
		Foo string `json:"foo"`
	}
	err := parseJSONObject(`Sure, here you go: {"foo": "bar"} -- hope that helps`, &out)
	require.NoError(t, err)
	assert.Equal(t, "bar", out.Foo)
}

func TestParseJSONObjectFailsOnNonJSON(t *testing.T) {
	var out struct{ Foo string }
	err := parseJSONObject("hello", &out)
	require.Error(t, err)
}
