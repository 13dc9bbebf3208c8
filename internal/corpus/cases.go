package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) InsertCase(c *domain.Case) error {
	charges, _ := json.Marshal(c.Charges)
	witnesses, _ := json.Marshal(c.Witnesses)

	_, err := s.db.Exec(`
		INSERT INTO cases (case_number, defendant, severity, status, charges, filing_date,
			arrest_date, hearing_date, officer, judge, prosecutor, witnesses, bond, plea_offer,
			prior_record, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_number) DO UPDATE SET
			defendant = excluded.defendant, severity = excluded.severity, status = excluded.status,
			charges = excluded.charges, filing_date = excluded.filing_date,
			arrest_date = excluded.arrest_date, hearing_date = excluded.hearing_date,
			officer = excluded.officer, judge = excluded.judge, prosecutor = excluded.prosecutor,
			witnesses = excluded.witnesses, bond = excluded.bond, plea_offer = excluded.plea_offer,
			prior_record = excluded.prior_record, notes = excluded.notes`,
		c.CaseNumber, c.Defendant, string(c.Severity), c.Status, string(charges),
		unixOrZero(c.FilingDate), unixOrZero(c.ArrestDate), unixOrZero(c.HearingDate),
		c.Officer, c.Judge, c.Prosecutor, string(witnesses), c.Bond, c.PleaOffer,
		c.PriorRecord, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert case %s: %w", c.CaseNumber, err)
	}
	return nil
}

func (s *Store) GetCase(caseNumber string) (*domain.Case, error) {
	row := s.db.QueryRow(`
		SELECT case_number, defendant, severity, status, charges, filing_date, arrest_date,
			hearing_date, officer, judge, prosecutor, witnesses, bond, plea_offer, prior_record, notes
		FROM cases WHERE case_number = ?`, caseNumber)

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(fmt.Sprintf("case not found: %s", caseNumber))
	}
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", caseNumber, err)
	}
	return c, nil
}

func scanCase(row *sql.Row) (*domain.Case, error) {
	var c domain.Case
	var severity string
	var chargesJSON, witnessesJSON sql.NullString
	var filingDate, arrestDate, hearingDate sql.NullInt64

	err := row.Scan(&c.CaseNumber, &c.Defendant, &severity, &c.Status, &chargesJSON,
		&filingDate, &arrestDate, &hearingDate, &c.Officer, &c.Judge, &c.Prosecutor,
		&witnessesJSON, &c.Bond, &c.PleaOffer, &c.PriorRecord, &c.Notes)
	if err != nil {
		return nil, err
	}

	c.Severity = domain.Severity(severity)
	if chargesJSON.Valid {
		json.Unmarshal([]byte(chargesJSON.String), &c.Charges)
	}
	if witnessesJSON.Valid {
		json.Unmarshal([]byte(witnessesJSON.String), &c.Witnesses)
	}
	c.FilingDate = timeOrZero(filingDate)
	c.ArrestDate = timeOrZero(arrestDate)
	c.HearingDate = timeOrZero(hearingDate)

	return &c, nil
}

// GetCaseMarkdown renders a stable human-readable summary used as the
// per-case block in every context the LLM sees.
func (s *Store) GetCaseMarkdown(caseNumber string) (string, error) {
	c, err := s.GetCase(caseNumber)
	if err != nil {
		return "", err
	}

	evidence, err := s.GetEvidence(caseNumber)
	if err != nil {
		return "", fmt.Errorf("get evidence for markdown %s: %w", caseNumber, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Case %s — %s\n", c.CaseNumber, c.Defendant)
	fmt.Fprintf(&b, "- Severity: %s\n", c.Severity)
	fmt.Fprintf(&b, "- Status: %s\n", c.Status)
	fmt.Fprintf(&b, "- Charges: %s\n", strings.Join(c.Charges, "; "))
	fmt.Fprintf(&b, "- Filed: %s | Arrested: %s | Hearing: %s\n",
		dateOrDash(c.FilingDate), dateOrDash(c.ArrestDate), dateOrDash(c.HearingDate))
	fmt.Fprintf(&b, "- Officer: %s | Judge: %s | Prosecutor: %s\n", c.Officer, c.Judge, c.Prosecutor)
	fmt.Fprintf(&b, "- Witnesses: %s\n", strings.Join(c.Witnesses, "; "))
	fmt.Fprintf(&b, "- Bond: %s | Plea offer: %s | Prior record: %s\n", c.Bond, c.PleaOffer, c.PriorRecord)
	if len(evidence) > 0 {
		b.WriteString("- Evidence:\n")
		for _, e := range evidence {
			fmt.Fprintf(&b, "  - [%s] %s: %s\n", e.Type, e.Title, e.Description)
		}
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", c.Notes)
	}

	return b.String(), nil
}

type CaseFilter struct {
	Officer   string
	Charge    string
	Status    string
	DateFrom  time.Time
	DateTo    time.Time
}

// SearchCases returns matching case_numbers in deterministic ascending order.
func (s *Store) SearchCases(f CaseFilter) ([]string, error) {
	query := "SELECT case_number FROM cases WHERE 1=1"
	var args []interface{}

	if f.Officer != "" {
		query += " AND officer = ?"
		args = append(args, f.Officer)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Charge != "" {
		query += " AND charges LIKE ?"
		args = append(args, "%"+f.Charge+"%")
	}
	if !f.DateFrom.IsZero() {
		query += " AND filing_date >= ?"
		args = append(args, f.DateFrom.Unix())
	}
	if !f.DateTo.IsZero() {
		query += " AND filing_date <= ?"
		args = append(args, f.DateTo.Unix())
	}
	query += " ORDER BY case_number ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search cases: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan case number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// AllCaseNumbers returns every case_number, ascending, for full-caseload
// context construction.
func (s *Store) AllCaseNumbers() ([]string, error) {
	rows, err := s.db.Query("SELECT case_number FROM cases ORDER BY case_number ASC")
	if err != nil {
		return nil, fmt.Errorf("list all case numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan case number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(n sql.NullInt64) time.Time {
	if !n.Valid || n.Int64 == 0 {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0).UTC()
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}
