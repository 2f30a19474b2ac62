package notifications

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	query := `
	CREATE TABLE webhooks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		target_url TEXT NOT NULL,
		platform TEXT NOT NULL,
		secret TEXT,
		config TEXT,
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER
	);
	CREATE TABLE webhook_subscriptions (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL,
		resource_type TEXT,
		resource_id TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER
	);
	CREATE TABLE webhook_logs (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
		subscription_id TEXT REFERENCES webhook_subscriptions(id) ON DELETE SET NULL,
		payload TEXT NOT NULL,
		http_status INTEGER,
		response_body TEXT,
		succeeded INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

type testPipeline struct {
	webhooks      *repositories.WebhookRepository
	subscriptions *repositories.WebhookSubscriptionRepository
	logs          *repositories.WebhookLogRepository
	dispatcher    *Dispatcher
}

func newTestPipeline(db *sql.DB) *testPipeline {
	webhooks := repositories.NewWebhookRepository(db)
	subscriptions := repositories.NewWebhookSubscriptionRepository(db)
	logs := repositories.NewWebhookLogRepository(db)
	return &testPipeline{
		webhooks:      webhooks,
		subscriptions: subscriptions,
		logs:          logs,
		dispatcher:    NewDispatcher(webhooks, subscriptions, logs, NewRegistry()),
	}
}

func (p *testPipeline) addWebhook(t *testing.T, platform models.Platform) *models.Webhook {
	t.Helper()
	webhook := &models.Webhook{
		TargetURL: "https://example.com/" + string(platform),
		Platform:  platform,
	}
	if err := p.webhooks.Create(webhook); err != nil {
		t.Fatalf("Failed to create webhook: %v", err)
	}
	return webhook
}

func (p *testPipeline) subscribe(t *testing.T, webhookID string, eventType models.EventType, resourceType, resourceID string) *models.WebhookSubscription {
	t.Helper()
	sub := &models.WebhookSubscription{
		WebhookID:    webhookID,
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if err := p.subscriptions.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	return sub
}

func TestDispatcher_OneLogPerMatchingSubscription(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	discord := p.addWebhook(t, models.PlatformDiscord)
	generic := p.addWebhook(t, models.PlatformGenericHTTP)

	p.subscribe(t, discord.ID, models.EventTypeSeriesCreated, "Series", "series-1")
	p.subscribe(t, generic.ID, models.EventTypeSeriesCreated, "", "")
	p.subscribe(t, discord.ID, models.EventTypeEventClosed, "", "")

	if err := p.dispatcher.Dispatch(models.SeriesCreated{SeriesID: "series-1", Name: "GT3 Cup"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, err := p.logs.FindPending(10)
	if err != nil {
		t.Fatalf("Failed to load pending logs: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending logs, got %d", len(pending))
	}
	for _, entry := range pending {
		if !entry.Pending() {
			t.Errorf("Expected log %s to be pending", entry.ID)
		}
		if entry.SubscriptionID == "" {
			t.Errorf("Expected log to reference its subscription")
		}
	}
}

func TestDispatcher_DisabledWebhookSkipped(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformSlack)
	p.subscribe(t, webhook.ID, models.EventTypeSeriesDeleted, "", "")

	if err := p.webhooks.SetEnabled(webhook.ID, false); err != nil {
		t.Fatalf("Failed to disable webhook: %v", err)
	}

	if err := p.dispatcher.Dispatch(models.SeriesDeleted{SeriesID: "series-1"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, _ := p.logs.FindPending(10)
	if len(pending) != 0 {
		t.Errorf("Expected no logs for disabled webhook, got %d", len(pending))
	}
}

func TestDispatcher_DefaultFallback(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformDiscord)

	// Subscribed to a different event type, unscoped.
	p.subscribe(t, webhook.ID, models.EventTypeSeriesCreated, "", "")

	if err := p.dispatcher.Dispatch(models.EventDeleted{EventID: "evt-1"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, _ := p.logs.FindPending(10)
	if len(pending) != 1 {
		t.Fatalf("Expected default subscription to catch the event, got %d logs", len(pending))
	}
}

func TestDispatcher_NoDefaultFallbackWhenTierMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformDiscord)

	matching := p.subscribe(t, webhook.ID, models.EventTypeSeriesCreated, "Series", "series-1")
	p.subscribe(t, webhook.ID, models.EventTypeEventClosed, "", "")

	if err := p.dispatcher.Dispatch(models.SeriesCreated{SeriesID: "series-1"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, _ := p.logs.FindPending(10)
	if len(pending) != 1 {
		t.Fatalf("Expected only the tiered match, got %d logs", len(pending))
	}
	if pending[0].SubscriptionID != matching.ID {
		t.Errorf("Expected log for subscription %s, got %s", matching.ID, pending[0].SubscriptionID)
	}
}

func TestDispatcher_GenericPayloadCarriesEventType(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformGenericHTTP)
	p.subscribe(t, webhook.ID, models.EventTypeSeriesCreated, "", "")

	if err := p.dispatcher.Dispatch(models.SeriesCreated{SeriesID: "series-1", Name: "GT3 Cup"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, _ := p.logs.FindPending(10)
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending log, got %d", len(pending))
	}

	payload := pending[0].Payload
	if payload["event_type"] != "SeriesCreated" {
		t.Errorf("Expected event_type in generic payload, got %v", payload["event_type"])
	}
	if payload["series_id"] != "series-1" {
		t.Errorf("Expected series_id in generic payload, got %v", payload["series_id"])
	}
}

func TestDispatcher_LifecycleTagsReachSubscribers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformGenericHTTP)

	started := p.subscribe(t, webhook.ID, models.EventTypeEventStarted, "", "")
	closed := p.subscribe(t, webhook.ID, models.EventTypeEventClosed, "", "")

	for _, evt := range []models.DomainEvent{
		models.SeriesStarted{SeriesID: "series-1"},
		models.SeriesClosed{SeriesID: "series-1"},
		models.EventDeleted{EventID: "evt-1"},
	} {
		if err := p.dispatcher.Dispatch(evt); err != nil {
			t.Fatalf("Dispatch %s failed: %v", evt.Kind(), err)
		}
	}

	pending, err := p.logs.FindPending(10)
	if err != nil {
		t.Fatalf("Failed to load pending logs: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("Expected 3 pending logs, got %d", len(pending))
	}

	perSub := map[string]int{}
	for _, entry := range pending {
		perSub[entry.SubscriptionID]++
	}
	if perSub[started.ID] != 1 {
		t.Errorf("Expected event.started subscription to receive SeriesStarted, got %d logs", perSub[started.ID])
	}
	if perSub[closed.ID] != 2 {
		t.Errorf("Expected event.closed subscription to receive SeriesClosed and EventDeleted, got %d logs", perSub[closed.ID])
	}
}

func TestDispatcher_DanglingSubscriptionIgnored(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := newTestPipeline(db)
	webhook := p.addWebhook(t, models.PlatformDiscord)
	p.subscribe(t, webhook.ID, models.EventTypeSeriesCreated, "", "")

	// Drop the webhook row directly so the subscription survives.
	if _, err := db.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("Failed to toggle foreign keys: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM webhooks WHERE id = ?`, webhook.ID); err != nil {
		t.Fatalf("Failed to delete webhook row: %v", err)
	}

	if err := p.dispatcher.Dispatch(models.SeriesCreated{SeriesID: "series-1"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pending, _ := p.logs.FindPending(10)
	if len(pending) != 0 {
		t.Errorf("Expected no logs for a subscription without a webhook, got %d", len(pending))
	}
}
