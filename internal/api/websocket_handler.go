// Package api is the external control-channel boundary (spec §6): a
// per-connection WebSocket carrying one JSON command per message in
// and namespaced streaming events out, plus the read-only HTTP surface
// documented for completeness. Grounded on the teacher's
// internal/api/handlers/websocket_handler.go per-connection read loop,
// generalized from one query type to the full control-command table.
package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/tools"
	"github.com/eliBenven/case-nexus/internal/workflow"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// WebSocketHandler drives one client's control channel: reading inbound
// commands (spec §6's table), dispatching each to the Workflow Engine or
// directly to the Tool Registry, and pumping the Event Bus's outbound
// frames back over the same connection.
type WebSocketHandler struct {
	store    *corpus.Store
	bus      *eventbus.Bus
	engine   *workflow.Engine
	registry *tools.Registry
	demoPath string
}

func NewWebSocketHandler(store *corpus.Store, bus *eventbus.Bus, engine *workflow.Engine, registry *tools.Registry, demoPath string) *WebSocketHandler {
	return &WebSocketHandler{store: store, bus: bus, engine: engine, registry: registry, demoPath: demoPath}
}

// command is one inbound control-channel frame (spec §6).
type command struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	clientID := uuid.NewString()
	ch, unregister := h.bus.Register(clientID)
	defer unregister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("control channel connected", zap.String("client_id", clientID))
	defer logger.Info("control channel disconnected", zap.String("client_id", clientID))

	done := make(chan struct{})
	go h.pump(c, ch, done)

	defer func() {
		c.Close()
		<-done
	}()

	for {
		var cmd command
		if err := c.ReadJSON(&cmd); err != nil {
			return
		}
		// spec §5: a slow workflow for this client serializes through the
		// Request Gate inside the Workflow Engine, not here; the read loop
		// itself never blocks on a dispatched command's completion.
		go h.dispatch(ctx, clientID, cmd)
	}
}

// pump forwards every Event queued for clientID to the live WebSocket
// connection, in the order the Bus delivered them (spec §4.8 ordering
// guarantee), until ch is closed by unregister or a write fails.
func (h *WebSocketHandler) pump(c *websocket.Conn, ch <-chan eventbus.Event, done chan struct{}) {
	defer close(done)
	for ev := range ch {
		if err := c.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, clientID string, cmd command) {
	switch cmd.Command {
	case "load_demo_caseload":
		h.loadDemoCaseload(clientID)

	case "run_health_check":
		_ = h.engine.RunHealthCheck(ctx, clientID)

	case "run_deep_analysis":
		var p struct{ CaseNumber string `json:"case_number"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.RunDeepAnalysis(ctx, clientID, p.CaseNumber)

	case "run_adversarial":
		var p struct{ CaseNumber string `json:"case_number"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.RunAdversarial(ctx, clientID, p.CaseNumber)

	case "generate_motion":
		var p struct {
			CaseNumber string `json:"case_number"`
			MotionType string `json:"motion_type"`
		}
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.GenerateMotion(ctx, clientID, p.CaseNumber, p.MotionType)

	case "analyze_evidence":
		var p struct {
			CaseNumber  string `json:"case_number"`
			EvidenceID  string `json:"evidence_id"`
		}
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.AnalyzeEvidence(ctx, clientID, p.CaseNumber, p.EvidenceID)

	case "chat_message":
		var p struct{ Message string `json:"message"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.ChatMessage(ctx, clientID, p.Message)

	case "clear_chat":
		if err := h.engine.ClearChat(clientID); err != nil {
			h.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": err.Error()})
		}

	case "run_hearing_prep":
		var p struct{ CaseNumber string `json:"case_number"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.RunHearingPrep(ctx, clientID, p.CaseNumber)

	case "run_client_letter":
		var p struct{ CaseNumber string `json:"case_number"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.RunClientLetter(ctx, clientID, p.CaseNumber)

	case "run_cascade":
		_ = h.engine.RunCascade(ctx, clientID)

	case "search_case_law":
		var p struct {
			Query string `json:"query"`
			Court string `json:"court"`
		}
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		result := h.registry.Dispatch(ctx, tools.SearchCaseLaw, map[string]any{"query": p.Query, "court": p.Court})
		h.bus.Publish(clientID, eventbus.Name(eventbus.KindWidget, "search_case_law_results"), result)

	case "create_widget":
		var p struct{ Request string `json:"request"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		_ = h.engine.CreateWidget(ctx, clientID, p.Request)

	case "dismiss_alert":
		var p struct{ AlertID string `json:"alert_id"` }
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		if p.AlertID == "" {
			return
		}
		if err := h.store.DismissAlert(p.AlertID); err != nil {
			h.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": err.Error()})
			return
		}
		h.bus.Publish(clientID, eventbus.EventAlertDismissed, map[string]string{"alert_id": p.AlertID})

	case "verify_citations":
		var p struct {
			Text       string `json:"text"`
			CaseNumber string `json:"case_number"`
		}
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		if p.Text == "" {
			h.bus.Publish(clientID, eventbus.EventCitationVerificationDone, map[string]any{"error": "no text provided"})
			return
		}
		_ = h.engine.VerifyCitations(ctx, clientID, p.Text, p.CaseNumber)

	case "request_smart_actions":
		var p struct {
			Context      string `json:"context"`
			AnalysisType string `json:"analysis_type"`
		}
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			h.badPayload(clientID, err)
			return
		}
		if p.AnalysisType == "" {
			p.AnalysisType = "analysis"
		}
		_ = h.engine.RunSmartActions(ctx, clientID, p.Context, p.AnalysisType)

	default:
		h.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": "unknown command: " + cmd.Command})
	}
}

func (h *WebSocketHandler) badPayload(clientID string, err error) {
	h.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": "malformed payload: " + err.Error()})
}

func (h *WebSocketHandler) loadDemoCaseload(clientID string) {
	cl, err := h.store.LoadDemoCaseload(h.demoPath)
	if err != nil {
		h.bus.Publish(clientID, eventbus.EventAnalysisError, map[string]string{"message": err.Error()})
		return
	}
	h.bus.Publish(clientID, eventbus.EventCaseloadLoaded, map[string]int{"cases": len(cl.Cases), "evidence": len(cl.Evidence)})
	h.bus.Publish(clientID, eventbus.EventLegalCorpusLoaded, map[string]int{"legal_facts": len(cl.LegalFacts)})
	h.bus.Publish(clientID, eventbus.EventMemoryLoaded, nil)
}
