package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// DemoCaseload is the read-only input shape the external data-generation
// project hands the core on load_demo_caseload. Generating this content
// is out of scope; the core only knows how to ingest it.
type DemoCaseload struct {
	Cases      []domain.Case         `json:"cases"`
	Evidence   []domain.EvidenceItem `json:"evidence"`
	LegalFacts []domain.LegalFact    `json:"legal_facts"`
}

// LoadDemoCaseload reads the fixture at path and inserts its contents.
// Cases/Evidence/LegalFacts are treated as immutable for the session once
// loaded.
func (s *Store) LoadDemoCaseload(path string) (*DemoCaseload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read demo caseload %s: %w", path, err)
	}

	var cl DemoCaseload
	if err := json.Unmarshal(raw, &cl); err != nil {
		return nil, fmt.Errorf("parse demo caseload %s: %w", path, err)
	}

	for i := range cl.Cases {
		if err := s.InsertCase(&cl.Cases[i]); err != nil {
			return nil, err
		}
	}
	for i := range cl.Evidence {
		if err := s.InsertEvidence(&cl.Evidence[i]); err != nil {
			return nil, err
		}
	}
	for i := range cl.LegalFacts {
		if err := s.InsertLegalFact(&cl.LegalFacts[i]); err != nil {
			return nil, err
		}
	}

	logger.Info("demo caseload loaded",
		zap.Int("cases", len(cl.Cases)),
		zap.Int("evidence", len(cl.Evidence)),
		zap.Int("legal_facts", len(cl.LegalFacts)),
	)

	return &cl, nil
}
