package database

import (
	"database/sql"
	"fmt"
	"time"

	"luciadash/internal/logging"
)

// StoreSystemVital saves a new system vital log entry to the database.
func StoreSystemVital(cpuPercent, memoryPercent, diskUsagePercent float64) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO system_vital_logs (cpu_percent, memory_percent, disk_usage_percent)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, cpuPercent, memoryPercent, diskUsagePercent)
	if err != nil {
		return fmt.Errorf("failed to store system vital: %w", err)
	}

	return nil
}

// GetLatestVital retrieves the most recent system vital log entry.
// Returns nil if no vitals have been recorded yet.
func GetLatestVital() (*SystemVitalLog, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, timestamp, cpu_percent, memory_percent, disk_usage_percent
		FROM system_vital_logs
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var m SystemVitalLog
	err := db.QueryRow(query).Scan(&m.ID, &m.Timestamp, &m.CPUPercent, &m.MemoryPercent, &m.DiskUsagePercent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest vital: %w", err)
	}

	return &m, nil
}

// GetVitalsSince retrieves system vital logs recorded at or after the
// given time, oldest first.
func GetVitalsSince(since time.Time) ([]SystemVitalLog, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, timestamp, cpu_percent, memory_percent, disk_usage_percent
		FROM system_vital_logs
		WHERE timestamp >= ?
		ORDER BY timestamp ASC
	`

	rows, err := db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals: %w", err)
	}
	defer rows.Close()

	var vitals []SystemVitalLog
	for rows.Next() {
		var m SystemVitalLog
		err := rows.Scan(&m.ID, &m.Timestamp, &m.CPUPercent, &m.MemoryPercent, &m.DiskUsagePercent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vital: %w", err)
		}
		vitals = append(vitals, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(vitals) == 0 {
		return []SystemVitalLog{}, nil
	}

	return vitals, nil
}

// CleanupOldVitals removes system vital logs older than the specified duration.
func CleanupOldVitals(olderThan time.Duration) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	cutoff := time.Now().Add(-olderThan)

	result, err := db.Exec(`DELETE FROM system_vital_logs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old vitals: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		logging.Debug("Cleaned up %d old system vital entries", rowsAffected)
	}

	return nil
}

// ExtractVitalSeries pulls one metric out of a vitals slice for charting.
// metric is "cpu", "memory" or "disk".
func ExtractVitalSeries(vitals []SystemVitalLog, metric string) []float64 {
	var data []float64
	for _, m := range vitals {
		switch metric {
		case "cpu":
			data = append(data, m.CPUPercent)
		case "memory":
			data = append(data, m.MemoryPercent)
		case "disk":
			data = append(data, m.DiskUsagePercent)
		}
	}
	return data
}
