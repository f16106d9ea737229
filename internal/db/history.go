package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sensor-dashboard/internal/models"
)

// AppendSnapshot archives one history channel snapshot.
func (d *DB) AppendSnapshot(ctx context.Context, s models.Snapshot) error {
	payload, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	recordedAt := s.ReceivedAt
	if s.Timestamp != 0 {
		recordedAt = time.UnixMilli(s.Timestamp)
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	query := `INSERT INTO sensor_history (msg_key, payload, recorded_at) VALUES ($1, $2, $3)`
	if _, err := d.Pool.Exec(ctx, query, s.Key, payload, recordedAt); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns the newest limit archived snapshots, oldest first.
func (d *DB) RecentSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := d.Pool.Query(ctx, `
        SELECT msg_key, payload, recorded_at FROM (
            SELECT id, msg_key, payload, recorded_at
            FROM sensor_history
            ORDER BY recorded_at DESC, id DESC
            LIMIT $1
        ) recent
        ORDER BY recorded_at ASC, id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var (
			key        string
			payload    []byte
			recordedAt time.Time
		)
		if err := rows.Scan(&key, &payload, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s, err := models.ParseSnapshot(payload, recordedAt)
		if err != nil {
			return nil, err
		}
		s.Key = key
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	return snaps, nil
}
