package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

type WebhookSubscriptionRepository struct {
	db *sql.DB
}

func NewWebhookSubscriptionRepository(db *sql.DB) *WebhookSubscriptionRepository {
	return &WebhookSubscriptionRepository{db: db}
}

func (r *WebhookSubscriptionRepository) Create(sub *models.WebhookSubscription) error {
	sub.ID = "sub_" + uuid.New().String()
	sub.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO webhook_subscriptions (id, webhook_id, event_type, resource_type, resource_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		sub.ID, sub.WebhookID, string(sub.EventType),
		nullString(sub.ResourceType), nullString(sub.ResourceID), sub.CreatedAt)
	return err
}

func (r *WebhookSubscriptionRepository) GetByID(id string) (*models.WebhookSubscription, error) {
	query := `SELECT id, webhook_id, event_type, resource_type, resource_id, created_at, updated_at FROM webhook_subscriptions WHERE id = ?`
	sub, err := scanSubscription(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSubscriptionNotFound
	}
	return sub, err
}

func (r *WebhookSubscriptionRepository) ListByWebhook(webhookID string) ([]*models.WebhookSubscription, error) {
	query := `SELECT id, webhook_id, event_type, resource_type, resource_id, created_at, updated_at FROM webhook_subscriptions WHERE webhook_id = ? ORDER BY created_at DESC`
	return r.querySubscriptions(query, webhookID)
}

// FindByEventType returns the subscriptions applicable to an event, evaluating
// three specificity tiers in a single query:
//
//  1. exact resource match (event_type + resource_type + resource_id)
//  2. resource type match (event_type + resource_type, no resource_id)
//  3. general match (event_type only, no resource fields)
//
// The tiers are joined by OR, so the result can hold subscriptions from more
// than one tier at once. Multiple subscriptions fanning out on the same event
// is intended; this is not most-specific-wins.
func (r *WebhookSubscriptionRepository) FindByEventType(eventType models.EventType, resourceType, resourceID string) ([]*models.WebhookSubscription, error) {
	var conditions []string
	var args []any

	if resourceType != "" && resourceID != "" {
		conditions = append(conditions, `(event_type = ? AND resource_type = ? AND resource_id = ?)`)
		args = append(args, string(eventType), resourceType, resourceID)
	}
	if resourceType != "" {
		conditions = append(conditions, `(event_type = ? AND resource_type = ? AND resource_id IS NULL)`)
		args = append(args, string(eventType), resourceType)
	}
	conditions = append(conditions, `(event_type = ? AND resource_type IS NULL AND resource_id IS NULL)`)
	args = append(args, string(eventType))

	query := `SELECT id, webhook_id, event_type, resource_type, resource_id, created_at, updated_at FROM webhook_subscriptions WHERE ` +
		strings.Join(conditions, " OR ")
	return r.querySubscriptions(query, args...)
}

// FindDefaultSubscriptions returns subscriptions with no resource scoping,
// regardless of event type. Used as a fallback when FindByEventType matches
// nothing.
func (r *WebhookSubscriptionRepository) FindDefaultSubscriptions() ([]*models.WebhookSubscription, error) {
	query := `SELECT id, webhook_id, event_type, resource_type, resource_id, created_at, updated_at FROM webhook_subscriptions WHERE resource_type IS NULL AND resource_id IS NULL`
	return r.querySubscriptions(query)
}

func (r *WebhookSubscriptionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM webhook_subscriptions WHERE id = ?`, id)
	return err
}

func (r *WebhookSubscriptionRepository) querySubscriptions(query string, args ...any) ([]*models.WebhookSubscription, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.WebhookSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubscription(row rowScanner) (*models.WebhookSubscription, error) {
	var s models.WebhookSubscription
	var eventType string
	var resourceType, resourceID sql.NullString
	var updatedAt sql.NullInt64

	err := row.Scan(&s.ID, &s.WebhookID, &eventType, &resourceType, &resourceID, &s.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.EventType = models.EventType(eventType)
	if resourceType.Valid {
		s.ResourceType = resourceType.String
	}
	if resourceID.Valid {
		s.ResourceID = resourceID.String
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Int64
	}
	return &s, nil
}
