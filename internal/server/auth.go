package server

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"luciadash/internal/database"
	"luciadash/internal/logging"
)

// hashPassword hashes a plain text password
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPassword checks if password matches hash
func checkPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// authenticateOperator verifies username and password. The error is the
// same for unknown accounts and wrong passwords.
func (s *Server) authenticateOperator(username, password string) (*database.Operator, error) {
	op, err := database.GetOperatorByUsername(username)
	if err != nil {
		return nil, err
	}
	if op == nil || !op.IsActive {
		return nil, fmt.Errorf("invalid username or password")
	}

	if err := checkPassword(password, op.Password); err != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	if err := database.UpdateLastLogin(op.ID); err != nil {
		// Log only; authentication already succeeded.
		logging.Errorf("Failed to update last login for %s: %v", op.Username, err)
	}

	return op, nil
}

// createOperator hashes the password and stores a new operator account.
func (s *Server) createOperator(username, password, email string, isAdmin bool) (*database.Operator, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return database.CreateOperator(username, hashed, email, isAdmin)
}
