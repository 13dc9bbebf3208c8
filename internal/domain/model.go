// Package domain holds the semantic data-model types shared across the
// corpus store, context builder, tool registry, and workflow engine
// (spec §3). These are plain value types; persistence lives in
// internal/corpus and internal/insight. JSON tags are snake_case because
// these types round-trip through both the LLM's structured output (health
// check, deep analysis, cascade actions) and the tool-call results the
// model reads back.
package domain

import "time"

// Severity classifies a Case's gravity.
type Severity string

const (
	SeverityFelony      Severity = "felony"
	SeverityMisdemeanor Severity = "misdemeanor"
)

// Case is the central entity; CaseNumber is the foreign key used
// everywhere else in the system (spec invariant 1).
type Case struct {
	CaseNumber  string    `json:"case_number"`
	Defendant   string    `json:"defendant"`
	Severity    Severity  `json:"severity"`
	Status      string    `json:"status"`
	Charges     []string  `json:"charges"`
	FilingDate  time.Time `json:"filing_date,omitempty"`
	ArrestDate  time.Time `json:"arrest_date,omitempty"`
	HearingDate time.Time `json:"hearing_date,omitempty"`
	Officer     string    `json:"officer"`
	Judge       string    `json:"judge"`
	Prosecutor  string    `json:"prosecutor"`
	Witnesses   []string  `json:"witnesses"`
	Bond        string    `json:"bond"`
	PleaOffer   string    `json:"plea_offer"`
	PriorRecord string    `json:"prior_record"`
	Notes       string    `json:"notes"`
}

// EvidenceType enumerates the kinds of evidence a case can carry.
type EvidenceType string

const (
	EvidenceDashcam      EvidenceType = "dashcam"
	EvidenceSurveillance EvidenceType = "surveillance"
	EvidenceBodyCam      EvidenceType = "body_cam"
	EvidencePhotograph   EvidenceType = "photograph"
	EvidenceDocument     EvidenceType = "document"
	EvidenceCrimeScene   EvidenceType = "crime_scene"
	EvidenceMedical      EvidenceType = "medical"
	EvidencePhysical     EvidenceType = "physical"
)

// EvidenceItem is bound to exactly one Case.
type EvidenceItem struct {
	ID          string       `json:"id"`
	CaseNumber  string       `json:"case_number"`
	Type        EvidenceType `json:"type"`
	MediaPath   string       `json:"media_path,omitempty"`
	PosterPath  string       `json:"poster_path,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
}

// LegalFact is a read-only statute/amendment/landmark-case entry keyed by
// citation token (e.g. "§ 16-13-30", "4th Amendment", "Miranda v. Arizona").
type LegalFact struct {
	CitationToken string `json:"citation_token"`
	Category      string `json:"category"` // state_code | federal_code | constitutional | landmark_case
	Jurisdiction  string `json:"jurisdiction,omitempty"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	Holding       string `json:"holding,omitempty"`
}

// AlertSeverity classifies health-check alerts.
type AlertSeverity string

const (
	AlertCritical AlertSeverity = "critical"
	AlertWarning  AlertSeverity = "warning"
	AlertInfo     AlertSeverity = "info"
)

// Alert is produced by the health-check workflow. CaseNumber is empty for
// caseload-wide alerts.
type Alert struct {
	ID         string        `json:"id,omitempty"`
	Severity   AlertSeverity `json:"severity"`
	Type       string        `json:"type"`
	CaseNumber string        `json:"case_number,omitempty"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	Details    string        `json:"details,omitempty"`
}

// Connection is a cross-case finding referencing 2+ cases.
type Connection struct {
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type"`
	Confidence  float64  `json:"confidence"`
	CaseNumbers []string `json:"case_numbers"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Urgency classifies a PriorityAction's timeframe.
type Urgency string

const (
	UrgencyThisWeek  Urgency = "this_week"
	UrgencyThisMonth Urgency = "this_month"
	UrgencyRoutine   Urgency = "routine"
)

// PriorityAction is a ranked, caseload-wide suggestion.
type PriorityAction struct {
	ID         string  `json:"id,omitempty"`
	CaseNumber string  `json:"case_number,omitempty"`
	Action     string  `json:"action"`
	Urgency    Urgency `json:"urgency"`
	Reason     string  `json:"reason"`
}

// AnalysisType is the closed enum of the nine workflows (spec §4.6). It
// doubles as the Insight's discriminator; streaming-event namespaces come
// from eventbus.Kind via eventbus.Name, not from this type.
type AnalysisType string

const (
	AnalysisHealthCheck  AnalysisType = "health_check"
	AnalysisDeepAnalysis AnalysisType = "deep_analysis"
	AnalysisAdversarial  AnalysisType = "adversarial"
	AnalysisMotion       AnalysisType = "motion"
	AnalysisEvidence     AnalysisType = "evidence"
	AnalysisChat         AnalysisType = "chat"
	AnalysisHearingPrep  AnalysisType = "hearing_prep"
	AnalysisClientLetter AnalysisType = "client_letter"
	AnalysisCascade      AnalysisType = "cascade"
)

// ScopeFullCaseload is the sentinel scope for caseload-wide analyses.
const ScopeFullCaseload = "full_caseload"

// Insight is one completed, immutable analysis run.
type Insight struct {
	ID           int64        `json:"id"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Scope        string       `json:"scope"`
	Payload      string       `json:"payload"` // JSON-encoded, workflow-specific
	CreatedAt    time.Time    `json:"created_at"`
}

// ToolInvocationStatus is the lifecycle of one tool call observed by the
// Event Bus.
type ToolInvocationStatus string

const (
	ToolCalling   ToolInvocationStatus = "calling"
	ToolExecuting ToolInvocationStatus = "executing"
	ToolDone      ToolInvocationStatus = "done"
	ToolError     ToolInvocationStatus = "error"
)

// ToolInvocation records one (tool_name, tool_input, tool_id) round-trip.
type ToolInvocation struct {
	ToolID        string               `json:"tool_id"`
	ToolName      string               `json:"tool_name"`
	ToolInput     map[string]any       `json:"tool_input"`
	Status        ToolInvocationStatus `json:"status"`
	ResultPreview string               `json:"result_preview,omitempty"`
	ResultLength  int                  `json:"result_length,omitempty"`
}

// TokenTally is the process-wide cumulative count (spec §4.10); it is
// never decremented.
type TokenTally struct {
	Input     int64 `json:"input"`
	Output    int64 `json:"output"`
	Thinking  int64 `json:"thinking"`
	CallCount int64 `json:"call_count"`
}

// ChatTurn is one turn of the caseload chat's per-client history.
type ChatTurn struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}
