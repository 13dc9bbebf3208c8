package corpus

import (
	"database/sql"
	"fmt"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) InsertLegalFact(f *domain.LegalFact) error {
	_, err := s.db.Exec(`
		INSERT INTO legal_facts (citation_token, category, jurisdiction, title, text, holding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(citation_token) DO UPDATE SET
			category = excluded.category, jurisdiction = excluded.jurisdiction,
			title = excluded.title, text = excluded.text, holding = excluded.holding`,
		f.CitationToken, f.Category, f.Jurisdiction, f.Title, f.Text, f.Holding,
	)
	if err != nil {
		return fmt.Errorf("insert legal fact %s: %w", f.CitationToken, err)
	}
	return nil
}

func (s *Store) GetLegalFact(citationToken string) (*domain.LegalFact, error) {
	row := s.db.QueryRow(`
		SELECT citation_token, category, jurisdiction, title, text, holding
		FROM legal_facts WHERE citation_token = ?`, citationToken)

	var f domain.LegalFact
	err := row.Scan(&f.CitationToken, &f.Category, &f.Jurisdiction, &f.Title, &f.Text, &f.Holding)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(fmt.Sprintf("legal fact not found: %s", citationToken))
	}
	if err != nil {
		return nil, fmt.Errorf("get legal fact %s: %w", citationToken, err)
	}
	return &f, nil
}

// SearchLegal returns citation tokens matching a free-text term (and
// optional jurisdiction), ordered ascending for determinism.
func (s *Store) SearchLegal(term, jurisdiction string) ([]string, error) {
	query := `SELECT citation_token FROM legal_facts WHERE (title LIKE ? OR text LIKE ? OR holding LIKE ?)`
	args := []interface{}{"%" + term + "%", "%" + term + "%", "%" + term + "%"}

	if jurisdiction != "" {
		query += " AND jurisdiction = ?"
		args = append(args, jurisdiction)
	}
	query += " ORDER BY citation_token ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search legal facts: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan citation token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// AllLegalFacts backs the local exact-match citation index and the legal
// corpus embedding seed.
func (s *Store) AllLegalFacts() ([]domain.LegalFact, error) {
	rows, err := s.db.Query(`SELECT citation_token, category, jurisdiction, title, text, holding FROM legal_facts ORDER BY citation_token ASC`)
	if err != nil {
		return nil, fmt.Errorf("list legal facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.LegalFact
	for rows.Next() {
		var f domain.LegalFact
		if err := rows.Scan(&f.CitationToken, &f.Category, &f.Jurisdiction, &f.Title, &f.Text, &f.Holding); err != nil {
			return nil, fmt.Errorf("scan legal fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
