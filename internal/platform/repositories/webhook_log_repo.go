package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

// maxResponseBody bounds the stored response body of a delivery attempt.
const maxResponseBody = 1000

type WebhookLogRepository struct {
	db *sql.DB
}

func NewWebhookLogRepository(db *sql.DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

func (r *WebhookLogRepository) Create(log *models.WebhookLog) error {
	log.ID = "whl_" + uuid.New().String()
	if log.Timestamp == 0 {
		log.Timestamp = time.Now().Unix()
	}
	log.Succeeded = false

	payloadJSON, err := json.Marshal(log.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhook_logs (id, webhook_id, subscription_id, payload, succeeded, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		log.ID, log.WebhookID, nullString(log.SubscriptionID),
		string(payloadJSON), log.Succeeded, log.Timestamp)
	return err
}

func (r *WebhookLogRepository) GetByID(id string) (*models.WebhookLog, error) {
	query := `SELECT id, webhook_id, subscription_id, payload, http_status, response_body, succeeded, timestamp FROM webhook_logs WHERE id = ?`
	log, err := scanLog(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLogNotFound
	}
	return log, err
}

// FindPending returns logs that have never been attempted. Already-attempted
// logs (http_status set) are excluded so reprocessing a batch cannot re-send
// them.
func (r *WebhookLogRepository) FindPending(limit int) ([]*models.WebhookLog, error) {
	query := `SELECT id, webhook_id, subscription_id, payload, http_status, response_body, succeeded, timestamp FROM webhook_logs WHERE succeeded = 0 AND http_status IS NULL LIMIT ?`
	return r.queryLogs(query, limit)
}

// FindFailed returns logs that were attempted and did not succeed.
func (r *WebhookLogRepository) FindFailed(limit int) ([]*models.WebhookLog, error) {
	query := `SELECT id, webhook_id, subscription_id, payload, http_status, response_body, succeeded, timestamp FROM webhook_logs WHERE succeeded = 0 AND http_status IS NOT NULL LIMIT ?`
	return r.queryLogs(query, limit)
}

// List returns logs newest first. succeeded filters by outcome when non-nil,
// webhookID filters by webhook when non-empty, and days bounds the age of the
// returned logs when positive.
func (r *WebhookLogRepository) List(limit int, succeeded *bool, webhookID string, days int) ([]*models.WebhookLog, error) {
	query := `SELECT id, webhook_id, subscription_id, payload, http_status, response_body, succeeded, timestamp FROM webhook_logs WHERE 1=1`
	var args []any

	if succeeded != nil {
		query += ` AND succeeded = ?`
		args = append(args, *succeeded)
	}
	if webhookID != "" {
		query += ` AND webhook_id = ?`
		args = append(args, webhookID)
	}
	if days > 0 {
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
		query += ` AND timestamp >= ?`
		args = append(args, cutoff)
	}

	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	return r.queryLogs(query, args...)
}

// UpdateResponse records the outcome of one delivery attempt. The response
// body is truncated to a bounded size before it is stored.
func (r *WebhookLogRepository) UpdateResponse(id string, statusCode int, responseBody string, succeeded bool) error {
	if len(responseBody) > maxResponseBody {
		responseBody = responseBody[:maxResponseBody]
	}
	_, err := r.db.Exec(`UPDATE webhook_logs SET http_status = ?, response_body = ?, succeeded = ? WHERE id = ?`,
		statusCode, responseBody, succeeded, id)
	return err
}

// UpdateError records a transport-level failure: status 0 with the error text
// as the response body.
func (r *WebhookLogRepository) UpdateError(id string, sendErr error) error {
	return r.UpdateResponse(id, 0, sendErr.Error(), false)
}

func (r *WebhookLogRepository) queryLogs(query string, args ...any) ([]*models.WebhookLog, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.WebhookLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanLog(row rowScanner) (*models.WebhookLog, error) {
	var l models.WebhookLog
	var subscriptionID, responseBody sql.NullString
	var httpStatus sql.NullInt64
	var payloadStr string

	err := row.Scan(&l.ID, &l.WebhookID, &subscriptionID, &payloadStr, &httpStatus, &responseBody, &l.Succeeded, &l.Timestamp)
	if err != nil {
		return nil, err
	}

	if subscriptionID.Valid {
		l.SubscriptionID = subscriptionID.String
	}
	if httpStatus.Valid {
		status := int(httpStatus.Int64)
		l.HTTPStatus = &status
	}
	if responseBody.Valid {
		l.ResponseBody = responseBody.String
	}
	json.Unmarshal([]byte(payloadStr), &l.Payload)

	return &l, nil
}
