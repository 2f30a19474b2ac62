package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	webhook.ID = "wh_" + uuid.New().String()
	webhook.CreatedAt = time.Now().Unix()
	webhook.Enabled = true

	configJSON, err := marshalConfig(webhook.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhooks (id, name, target_url, platform, secret, config, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		webhook.ID, webhook.Name, webhook.TargetURL, string(webhook.Platform),
		nullString(webhook.Secret), configJSON, webhook.Enabled, webhook.CreatedAt)
	return err
}

func (r *WebhookRepository) GetByID(id string) (*models.Webhook, error) {
	query := `SELECT id, name, target_url, platform, secret, config, enabled, created_at, updated_at FROM webhooks WHERE id = ?`
	webhook, err := scanWebhook(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrWebhookNotFound
	}
	return webhook, err
}

func (r *WebhookRepository) List() ([]*models.Webhook, error) {
	query := `SELECT id, name, target_url, platform, secret, config, enabled, created_at, updated_at FROM webhooks ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, webhook)
	}
	return webhooks, rows.Err()
}

func (r *WebhookRepository) Update(webhook *models.Webhook) error {
	configJSON, err := marshalConfig(webhook.Config)
	if err != nil {
		return err
	}
	webhook.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE webhooks
		SET name = ?, target_url = ?, platform = ?, secret = ?, config = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		webhook.Name, webhook.TargetURL, string(webhook.Platform),
		nullString(webhook.Secret), configJSON, webhook.Enabled, webhook.UpdatedAt, webhook.ID)
	return err
}

// Delete removes the webhook. Subscriptions and logs cascade via foreign keys.
func (r *WebhookRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM webhooks WHERE id = ?`, id)
	return err
}

func (r *WebhookRepository) SetEnabled(id string, enabled bool) error {
	result, err := r.db.Exec(`UPDATE webhooks SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrWebhookNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhook(row rowScanner) (*models.Webhook, error) {
	var w models.Webhook
	var platform string
	var secret, configStr sql.NullString
	var updatedAt sql.NullInt64

	err := row.Scan(&w.ID, &w.Name, &w.TargetURL, &platform, &secret, &configStr, &w.Enabled, &w.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	w.Platform = models.Platform(platform)
	if secret.Valid {
		w.Secret = secret.String
	}
	if updatedAt.Valid {
		w.UpdatedAt = updatedAt.Int64
	}
	if configStr.Valid && configStr.String != "" {
		json.Unmarshal([]byte(configStr.String), &w.Config)
	}
	return &w, nil
}

func marshalConfig(config map[string]any) (sql.NullString, error) {
	if config == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
