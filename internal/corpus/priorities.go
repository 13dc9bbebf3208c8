package corpus

import (
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) ReplacePriorityActions(actions []domain.PriorityAction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace priority actions: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM priority_actions"); err != nil {
		return fmt.Errorf("clear priority actions: %w", err)
	}

	now := time.Now().Unix()
	for _, a := range actions {
		_, err := tx.Exec(`
			INSERT INTO priority_actions (id, case_number, action, urgency, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.CaseNumber, a.Action, string(a.Urgency), a.Reason, now,
		)
		if err != nil {
			return fmt.Errorf("insert priority action %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ListPriorityActions() ([]domain.PriorityAction, error) {
	existing, err := s.caseNumberSet()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, case_number, action, urgency, reason FROM priority_actions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list priority actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.PriorityAction
	for rows.Next() {
		var a domain.PriorityAction
		var urgency string
		if err := rows.Scan(&a.ID, &a.CaseNumber, &a.Action, &urgency, &a.Reason); err != nil {
			return nil, fmt.Errorf("scan priority action: %w", err)
		}
		if a.CaseNumber != "" && !existing[a.CaseNumber] {
			continue
		}
		a.Urgency = domain.Urgency(urgency)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
