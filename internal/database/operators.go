package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CreateOperator creates a new dashboard operator account. The password
// must already be hashed by the caller.
func CreateOperator(username, hashedPassword, email string, isAdmin bool) (*Operator, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	query := `
		INSERT INTO operators (username, password, email, is_admin, is_active)
		VALUES (?, ?, ?, ?, 1)
	`

	var emailValue interface{}
	if email != "" {
		emailValue = email
	}

	result, err := db.Exec(query, username, hashedPassword, emailValue, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get operator id: %w", err)
	}

	return GetOperatorByID(int(id))
}

// GetOperatorByID retrieves an operator by id.
func GetOperatorByID(id int) (*Operator, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, username, password, email, is_admin, is_active, created_at, last_login
		FROM operators
		WHERE id = ?
	`

	var op Operator
	err := db.QueryRow(query, id).Scan(
		&op.ID, &op.Username, &op.Password, &op.Email,
		&op.IsAdmin, &op.IsActive, &op.CreatedAt, &op.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query operator: %w", err)
	}

	return &op, nil
}

// GetOperatorByUsername retrieves an operator by username. Returns nil
// without error when no such operator exists.
func GetOperatorByUsername(username string) (*Operator, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, username, password, email, is_admin, is_active, created_at, last_login
		FROM operators
		WHERE username = ?
	`

	var op Operator
	err := db.QueryRow(query, username).Scan(
		&op.ID, &op.Username, &op.Password, &op.Email,
		&op.IsAdmin, &op.IsActive, &op.CreatedAt, &op.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query operator: %w", err)
	}

	return &op, nil
}

// CountOperators returns the number of operator accounts. Zero means
// first-run setup has not completed yet.
func CountOperators() (int, error) {
	db := GetDB()
	if db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM operators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}

	return count, nil
}

// UpdateLastLogin stamps the operator's last successful login time.
func UpdateLastLogin(id int) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := db.Exec(`UPDATE operators SET last_login = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
