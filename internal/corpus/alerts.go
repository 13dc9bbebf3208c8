package corpus

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/domain"
)

// ReplaceAlerts atomically replaces the current alert list. Previous
// alerts are dropped; the Insight recording the health-check run that
// produced them remains in the log (spec invariant: Insights accumulate,
// Alerts/Connections/PriorityActions are replaced wholesale).
func (s *Store) ReplaceAlerts(alerts []domain.Alert) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace alerts: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM alerts"); err != nil {
		return fmt.Errorf("clear alerts: %w", err)
	}

	now := time.Now().Unix()
	for _, a := range alerts {
		_, err := tx.Exec(`
			INSERT INTO alerts (id, severity, type, case_number, title, message, details, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, string(a.Severity), a.Type, a.CaseNumber, a.Title, a.Message, a.Details, now,
		)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// ListAlerts returns the most recent health-check output, dropping any
// alert whose case_number no longer resolves to an existing Case (spec
// invariant 2 / testable property 7) and any alert the client has
// dismissed.
func (s *Store) ListAlerts() ([]domain.Alert, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.severity, a.type, a.case_number, a.title, a.message, a.details
		FROM alerts a
		LEFT JOIN cases c ON c.case_number = a.case_number
		WHERE a.dismissed = 0
		  AND (a.case_number = '' OR a.case_number IS NULL OR c.case_number IS NOT NULL)
		ORDER BY a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var severity string
		var caseNumber sql.NullString
		if err := rows.Scan(&a.ID, &severity, &a.Type, &caseNumber, &a.Title, &a.Message, &a.Details); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Severity = domain.AlertSeverity(severity)
		a.CaseNumber = caseNumber.String
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// DismissAlert marks alertID dismissed so future ListAlerts calls omit it,
// without disturbing the wholesale-replace semantics the next health check
// run applies (dismissal is a server-side dismissed flag that ListAlerts
// filters on; ReplaceAlerts drops dismissed rows along with the rest).
func (s *Store) DismissAlert(alertID string) error {
	_, err := s.db.Exec(`UPDATE alerts SET dismissed = 1 WHERE id = ?`, alertID)
	if err != nil {
		return fmt.Errorf("dismiss alert %s: %w", alertID, err)
	}
	return nil
}
