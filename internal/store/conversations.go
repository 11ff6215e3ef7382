package store

import (
	"database/sql"
	"fmt"
	"time"
)

// historyLimit bounds how many trailing messages a conversation keeps in play
// for prompting.
const historyLimit = 10

// HistoryEnabled reports whether the conversation tables were present at
// startup. When false, History and Append degrade to no-ops: chat continuity
// is an enhancement, not a dependency of the chat flow.
func (s *SQLiteStore) HistoryEnabled() bool {
	return s.historyEnabled
}

// History returns up to the 10 most recent messages of a conversation,
// oldest first. Unknown conversation ids and disabled history both yield an
// empty slice.
func (s *SQLiteStore) History(conversationID string) ([]ConversationMessage, error) {
	if !s.historyEnabled {
		return nil, nil
	}

	var convID int64
	err := s.db.QueryRow("SELECT id FROM conversations WHERE conversation_id = ?", conversationID).Scan(&convID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	// Last N by insertion order, then flipped so the caller sees oldest first.
	rows, err := s.db.Query(`
        SELECT id, role, content, created_at FROM conversation_messages
        WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, convID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation messages: %w", err)
	}
	defer rows.Close()

	var messages []ConversationMessage
	for rows.Next() {
		var msg ConversationMessage
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Append stores one turn, creating the conversation record on first use.
func (s *SQLiteStore) Append(conversationID string, siteID int64, userID, role, content string) error {
	if !s.historyEnabled {
		return nil
	}

	convID, err := s.getOrCreateConversation(conversationID, siteID, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := s.db.Exec(
		"INSERT INTO conversation_messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		convID, role, content, now,
	); err != nil {
		return fmt.Errorf("failed to insert conversation message: %w", err)
	}
	if _, err := s.db.Exec("UPDATE conversations SET updated_at = ? WHERE id = ?", now, convID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) getOrCreateConversation(conversationID string, siteID int64, userID string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM conversations WHERE conversation_id = ?", conversationID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query conversation: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		"INSERT INTO conversations (conversation_id, site_id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		conversationID, siteID, nullableString(userID), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert conversation: %w", err)
	}
	return res.LastInsertId()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
