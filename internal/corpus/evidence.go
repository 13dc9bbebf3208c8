package corpus

import (
	"fmt"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) InsertEvidence(e *domain.EvidenceItem) error {
	_, err := s.db.Exec(`
		INSERT INTO evidence (id, case_number, type, media_path, poster_path, title, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, media_path = excluded.media_path, poster_path = excluded.poster_path,
			title = excluded.title, description = excluded.description`,
		e.ID, e.CaseNumber, string(e.Type), e.MediaPath, e.PosterPath, e.Title, e.Description,
	)
	if err != nil {
		return fmt.Errorf("insert evidence %s: %w", e.ID, err)
	}
	return nil
}

// GetEvidence returns every evidence item bound to a case, ordered by id.
func (s *Store) GetEvidence(caseNumber string) ([]domain.EvidenceItem, error) {
	rows, err := s.db.Query(`
		SELECT id, case_number, type, media_path, poster_path, title, description
		FROM evidence WHERE case_number = ? ORDER BY id ASC`, caseNumber)
	if err != nil {
		return nil, fmt.Errorf("get evidence for %s: %w", caseNumber, err)
	}
	defer rows.Close()

	var items []domain.EvidenceItem
	for rows.Next() {
		var e domain.EvidenceItem
		var typ string
		if err := rows.Scan(&e.ID, &e.CaseNumber, &typ, &e.MediaPath, &e.PosterPath, &e.Title, &e.Description); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		e.Type = domain.EvidenceType(typ)
		items = append(items, e)
	}
	return items, rows.Err()
}

func (s *Store) GetEvidenceItem(caseNumber, evidenceID string) (*domain.EvidenceItem, error) {
	items, err := s.GetEvidence(caseNumber)
	if err != nil {
		return nil, err
	}
	for _, e := range items {
		if e.ID == evidenceID {
			return &e, nil
		}
	}
	return nil, apperr.NotFound(fmt.Sprintf("evidence not found: %s/%s", caseNumber, evidenceID))
}
