package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) ReplaceConnections(conns []domain.Connection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace connections: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM connections"); err != nil {
		return fmt.Errorf("clear connections: %w", err)
	}

	now := time.Now().Unix()
	for _, c := range conns {
		caseNumbers, _ := json.Marshal(c.CaseNumbers)
		_, err := tx.Exec(`
			INSERT INTO connections (id, type, confidence, case_numbers, title, description, suggestion, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Type, c.Confidence, string(caseNumbers), c.Title, c.Description, c.Suggestion, now,
		)
		if err != nil {
			return fmt.Errorf("insert connection %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// ListConnections drops any connection where none of its referenced case
// numbers still resolve to an existing Case.
func (s *Store) ListConnections() ([]domain.Connection, error) {
	existing, err := s.caseNumberSet()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, type, confidence, case_numbers, title, description, suggestion FROM connections ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var c domain.Connection
		var caseNumbersJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.Type, &c.Confidence, &caseNumbersJSON, &c.Title, &c.Description, &c.Suggestion); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		if caseNumbersJSON.Valid {
			json.Unmarshal([]byte(caseNumbersJSON.String), &c.CaseNumbers)
		}

		live := c.CaseNumbers[:0:0]
		for _, cn := range c.CaseNumbers {
			if existing[cn] {
				live = append(live, cn)
			}
		}
		if len(live) == 0 {
			continue
		}
		c.CaseNumbers = live
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (s *Store) caseNumberSet() (map[string]bool, error) {
	numbers, err := s.AllCaseNumbers()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		set[n] = true
	}
	return set, nil
}
