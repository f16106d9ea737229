package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sensor-dashboard/internal/models"
)

// CreateAlert records a queued evacuation alert with status pending.
func (d *DB) CreateAlert(ctx context.Context, a models.Alert) error {
	reqID, err := uuid.Parse(a.RequestID)
	if err != nil {
		return fmt.Errorf("invalid request_id %s: %w", a.RequestID, err)
	}
	query := `
        INSERT INTO sensor_alerts (
            request_id, created_at, variant, metric, severity, subject, body, value, status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')`
	_, err = d.Pool.Exec(ctx, query,
		reqID, a.Timestamp, a.Variant, string(a.Metric), string(a.Severity),
		a.Subject, a.Body, a.Value)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// UpdateAlertStatus sets the delivery outcome of an alert.
func (d *DB) UpdateAlertStatus(ctx context.Context, requestID, status, lastError string) error {
	query := `
        UPDATE sensor_alerts
        SET status = $1, last_error = $2,
            sent_at = CASE WHEN $1 = 'sent' THEN $3 ELSE sent_at END
        WHERE request_id::text = $4`
	result, err := d.Pool.Exec(ctx, query, status, lastError, time.Now(), requestID)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no alert updated for request_id %s", requestID)
	}
	return nil
}
