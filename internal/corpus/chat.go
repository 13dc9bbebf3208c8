package corpus

import (
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/domain"
)

func (s *Store) AppendChatTurn(clientID string, turn domain.ChatTurn) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_history (client_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		clientID, turn.Role, turn.Text, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append chat turn for %s: %w", clientID, err)
	}
	return nil
}

func (s *Store) GetChatHistory(clientID string) ([]domain.ChatTurn, error) {
	rows, err := s.db.Query(`
		SELECT role, text FROM chat_history WHERE client_id = ? ORDER BY id ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("get chat history for %s: %w", clientID, err)
	}
	defer rows.Close()

	var turns []domain.ChatTurn
	for rows.Next() {
		var t domain.ChatTurn
		if err := rows.Scan(&t.Role, &t.Text); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Store) ClearChatHistory(clientID string) error {
	_, err := s.db.Exec("DELETE FROM chat_history WHERE client_id = ?", clientID)
	if err != nil {
		return fmt.Errorf("clear chat history for %s: %w", clientID, err)
	}
	return nil
}
