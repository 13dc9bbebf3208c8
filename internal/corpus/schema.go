package corpus

import "fmt"

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	case_number TEXT PRIMARY KEY,
	defendant TEXT NOT NULL,
	severity TEXT NOT NULL,
	status TEXT NOT NULL,
	charges TEXT,
	filing_date INTEGER,
	arrest_date INTEGER,
	hearing_date INTEGER,
	officer TEXT,
	judge TEXT,
	prosecutor TEXT,
	witnesses TEXT,
	bond TEXT,
	plea_offer TEXT,
	prior_record TEXT,
	notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_cases_officer ON cases(officer);
CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);

CREATE TABLE IF NOT EXISTS evidence (
	id TEXT PRIMARY KEY,
	case_number TEXT NOT NULL,
	type TEXT NOT NULL,
	media_path TEXT,
	poster_path TEXT,
	title TEXT,
	description TEXT,
	FOREIGN KEY (case_number) REFERENCES cases(case_number)
);
CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence(case_number);

CREATE TABLE IF NOT EXISTS legal_facts (
	citation_token TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	jurisdiction TEXT,
	title TEXT,
	text TEXT,
	holding TEXT
);
CREATE INDEX IF NOT EXISTS idx_legal_category ON legal_facts(category);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	severity TEXT NOT NULL,
	type TEXT NOT NULL,
	case_number TEXT,
	title TEXT,
	message TEXT,
	details TEXT,
	dismissed INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_case ON alerts(case_number);

CREATE TABLE IF NOT EXISTS connections (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	confidence REAL,
	case_numbers TEXT,
	title TEXT,
	description TEXT,
	suggestion TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS priority_actions (
	id TEXT PRIMARY KEY,
	case_number TEXT,
	action TEXT,
	urgency TEXT,
	reason TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_priority_case ON priority_actions(case_number);

CREATE TABLE IF NOT EXISTS insights (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_type TEXT NOT NULL,
	scope TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insights_scope ON insights(scope, analysis_type);
CREATE INDEX IF NOT EXISTS idx_insights_created ON insights(created_at);

CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id TEXT NOT NULL,
	role TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_client ON chat_history(client_id, created_at);
`

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init corpus schema: %w", err)
	}
	return nil
}
