package database

import (
	"database/sql"
	"time"
)

type Operator struct {
	ID        int
	Username  string
	Password  string
	Email     sql.NullString
	IsAdmin   bool
	IsActive  bool
	CreatedAt time.Time
	LastLogin sql.NullTime
}

type SystemVitalLog struct {
	ID               int
	Timestamp        time.Time
	CPUPercent       float64
	MemoryPercent    float64
	DiskUsagePercent float64
}

// ChatContext pins an A2A conversation to an operator and agent so a
// console session survives dashboard restarts.
type ChatContext struct {
	OperatorID int
	AgentID    string
	ContextID  string
	UpdatedAt  time.Time
}
