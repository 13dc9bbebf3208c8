package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const (
	prosecutionSystemPrompt = `You are the prosecutor in a criminal case. Given the case file below, present the state's strongest argument for conviction. Be rigorous and specific.`
	defenseSystemPrompt     = `You are defense counsel. Given the case file and the prosecution's argument below (quoted verbatim), dismantle it point by point.`
	judgeSystemPrompt       = `You are an impartial judge. Given the case file, the prosecution's argument, and the defense's rebuttal below (both quoted verbatim), produce an objective synthesis of the case's strengths and weaknesses.`
)

// AdversarialOutput is the persisted record of one adversarial simulation.
type AdversarialOutput struct {
	Prosecution string `json:"prosecution"`
	Defense     string `json:"defense"`
	Judge       string `json:"judge"`
}

// adversarialPhase describes one chained call in the simulation; Prompt
// builds the phase's user segment from the case context and whatever
// prior-phase text has accumulated so far.
type adversarialPhase struct {
	number       int
	ns           eventbus.Kind
	systemPrompt string
	userPrompt   func(caseCtx string, prior AdversarialOutput) string
}

var adversarialPhases = []adversarialPhase{
	{
		number: 1, ns: eventbus.KindProsecution, systemPrompt: prosecutionSystemPrompt,
		userPrompt: func(caseCtx string, prior AdversarialOutput) string {
			return caseCtx
		},
	},
	{
		number: 2, ns: eventbus.KindDefense, systemPrompt: defenseSystemPrompt,
		userPrompt: func(caseCtx string, prior AdversarialOutput) string {
			return fmt.Sprintf("%s\n\n## Prosecution's Argument\n\n%s", caseCtx, prior.Prosecution)
		},
	},
	{
		number: 3, ns: eventbus.KindJudge, systemPrompt: judgeSystemPrompt,
		userPrompt: func(caseCtx string, prior AdversarialOutput) string {
			return fmt.Sprintf("%s\n\n## Prosecution's Argument\n\n%s\n\n## Defense's Rebuttal\n\n%s",
				caseCtx, prior.Prosecution, prior.Defense)
		},
	},
}

// RunAdversarial is workflow §4.6 (3): a 3-phase chained simulation
// (prosecution -> defense -> judge) where a phase's failure aborts every
// phase after it but still delivers the phases that completed (spec's
// "Partial-failure phases" design note, testable scenario S4).
func (e *Engine) RunAdversarial(ctx context.Context, clientID, caseNumber string) (err error) {
	defer observe("adversarial", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	if _, getErr := e.store.GetCase(caseNumber); getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindJudge, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindJudge, clientID, buildErr)
	}

	var out AdversarialOutput
	for _, phase := range adversarialPhases {
		e.bus.Publish(clientID, eventbus.EventAdversarialPhase, map[string]any{
			"phase": phase.ns, "phase_number": phase.number,
		})

		req := llm.StreamRequest{
			SystemPrompt:    phase.systemPrompt,
			Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: phase.userPrompt(caseCtx, out)}},
			ThinkingBudget:  20000,
			MaxOutputTokens: 8000,
		}
		result, runErr := e.runner.Run(ctx, clientID, phase.ns, req)
		if runErr != nil {
			return e.transportError(phase.ns, clientID, runErr)
		}

		switch phase.number {
		case 1:
			out.Prosecution = result.ResponseText
		case 2:
			out.Defense = result.ResponseText
		case 3:
			out.Judge = result.ResponseText
		}
	}

	return e.complete(eventbus.KindJudge, clientID, domain.AnalysisAdversarial, caseNumber, out)
}
