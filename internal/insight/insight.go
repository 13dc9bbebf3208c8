// Package insight is the append-only Insight Log (spec §4.9): every
// completed workflow run appends one record; nothing is ever deleted.
// Grounded on the teacher's query_history / evaluation_results table shape
// (internal/storage/sqlite/client.go) — a row per completed LLM-backed
// operation, queried back by scope/type/recency.
package insight

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// Log shares its *sql.DB handle with internal/corpus.Store rather than
// opening a second connection onto the same database file.
type Log struct {
	db *sql.DB
}

func New(db *sql.DB) *Log {
	return &Log{db: db}
}

// Append writes one Insight. payload must already be a JSON-marshalable
// value; the workflow engine builds it from the workflow's own result
// struct (or, on ParseError, the raw text under a "response_text" key).
func Append(l *Log, analysisType domain.AnalysisType, scope string, payload any) (*domain.Insight, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal insight payload: %w", err)
	}

	now := time.Now()
	res, err := l.db.Exec(
		`INSERT INTO insights (analysis_type, scope, payload, created_at) VALUES (?, ?, ?, ?)`,
		string(analysisType), scope, string(raw), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("append insight: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read insight id: %w", err)
	}

	logger.Info("insight appended",
		zap.Int64("id", id),
		zap.String("analysis_type", string(analysisType)),
		zap.String("scope", scope),
	)

	return &domain.Insight{
		ID:           id,
		AnalysisType: analysisType,
		Scope:        scope,
		Payload:      string(raw),
		CreatedAt:    now,
	}, nil
}

// Filter narrows a List query. Zero values mean "no filter on this field".
type Filter struct {
	Scope        string
	AnalysisType domain.AnalysisType
	Limit        int
}

// List returns Insights newest-first, matching the Filter. Backs both
// get_prior_analyses and build_memory_context.
func (l *Log) List(f Filter) ([]domain.Insight, error) {
	query := `SELECT id, analysis_type, scope, payload, created_at FROM insights WHERE 1=1`
	var args []any

	if f.Scope != "" {
		query += ` AND scope = ?`
		args = append(args, f.Scope)
	}
	if f.AnalysisType != "" {
		query += ` AND analysis_type = ?`
		args = append(args, string(f.AnalysisType))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []domain.Insight
	for rows.Next() {
		var in domain.Insight
		var analysisType string
		var createdAt int64
		if err := rows.Scan(&in.ID, &analysisType, &in.Scope, &in.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in.AnalysisType = domain.AnalysisType(analysisType)
		in.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, in)
	}
	return out, rows.Err()
}
