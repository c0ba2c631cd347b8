package database

import (
	"database/sql"
	"fmt"
	"time"
)

// GetChatContext returns the stored A2A contextId for an operator/agent
// pair, or "" when no conversation has been started.
func GetChatContext(operatorID int, agentID string) (string, error) {
	db := GetDB()
	if db == nil {
		return "", fmt.Errorf("database not initialized")
	}

	var contextID string
	err := db.QueryRow(
		`SELECT context_id FROM agent_chat_contexts WHERE operator_id = ? AND agent_id = ?`,
		operatorID, agentID,
	).Scan(&contextID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to query chat context: %w", err)
	}

	return contextID, nil
}

// SaveChatContext upserts the contextId returned by the backend so the
// next console message continues the same conversation.
func SaveChatContext(operatorID int, agentID, contextID string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO agent_chat_contexts (operator_id, agent_id, context_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(operator_id, agent_id)
		DO UPDATE SET context_id = excluded.context_id, updated_at = excluded.updated_at
	`

	_, err := db.Exec(query, operatorID, agentID, contextID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save chat context: %w", err)
	}

	return nil
}

// ClearChatContext drops the stored conversation so the next console
// message starts fresh.
func ClearChatContext(operatorID int, agentID string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := db.Exec(
		`DELETE FROM agent_chat_contexts WHERE operator_id = ? AND agent_id = ?`,
		operatorID, agentID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear chat context: %w", err)
	}

	return nil
}
