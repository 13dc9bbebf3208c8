package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/tokens"
)

// HTTPHandler serves the read-only surface documented in spec §6: plain
// request/response lookups over the Corpus Store, Insight Log, and Token
// Accountant. None of it drives an LLM call; it exists so a UI (or a
// test) can read back what the control channel has already produced.
type HTTPHandler struct {
	store    *corpus.Store
	insights *insight.Log
	acct     *tokens.Accountant
}

func NewHTTPHandler(store *corpus.Store, insights *insight.Log, acct *tokens.Accountant) *HTTPHandler {
	return &HTTPHandler{store: store, insights: insights, acct: acct}
}

func (h *HTTPHandler) ListCases(c *fiber.Ctx) error {
	numbers, err := h.store.AllCaseNumbers()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	cases := make([]*domain.Case, 0, len(numbers))
	for _, cn := range numbers {
		cs, err := h.store.GetCase(cn)
		if err != nil {
			continue
		}
		cases = append(cases, cs)
	}
	return c.JSON(cases)
}

func (h *HTTPHandler) GetCase(c *fiber.Ctx) error {
	cs, err := h.store.GetCase(c.Params("cn"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(cs)
}

func (h *HTTPHandler) GetEvidence(c *fiber.Ctx) error {
	items, err := h.store.GetEvidence(c.Params("cn"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(items)
}

func (h *HTTPHandler) ListAlerts(c *fiber.Ctx) error {
	alerts, err := h.store.ListAlerts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(alerts)
}

func (h *HTTPHandler) ListConnections(c *fiber.Ctx) error {
	conns, err := h.store.ListConnections()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(conns)
}

func (h *HTTPHandler) Stats(c *fiber.Ctx) error {
	numbers, err := h.store.AllCaseNumbers()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	alerts, _ := h.store.ListAlerts()
	conns, _ := h.store.ListConnections()
	actions, _ := h.store.ListPriorityActions()

	return c.JSON(fiber.Map{
		"case_count":       len(numbers),
		"alert_count":      len(alerts),
		"connection_count": len(conns),
		"action_count":     len(actions),
		"tokens":           h.acct.Snapshot(),
	})
}

func (h *HTTPHandler) AnalysisLog(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	insights, err := h.insights.List(insight.Filter{
		Scope:        c.Query("scope"),
		AnalysisType: domain.AnalysisType(c.Query("type")),
		Limit:        limit,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(insights)
}
