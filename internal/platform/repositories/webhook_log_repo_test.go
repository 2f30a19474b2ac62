package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

func createTestLog(t *testing.T, db *sql.DB, webhookID string) *models.WebhookLog {
	t.Helper()
	repo := NewWebhookLogRepository(db)
	entry := &models.WebhookLog{
		WebhookID: webhookID,
		Payload:   map[string]any{"event_type": "SeriesCreated", "series_id": "series-1"},
	}
	if err := repo.Create(entry); err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}
	return entry
}

func TestLogRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhook := createTestWebhook(t, db)
	repo := NewWebhookLogRepository(db)

	entry := createTestLog(t, db, webhook.ID)
	if !strings.HasPrefix(entry.ID, "whl_") {
		t.Errorf("Expected generated id with whl_ prefix, got %s", entry.ID)
	}

	fetched, err := repo.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get log: %v", err)
	}
	if !fetched.Pending() {
		t.Errorf("Expected fresh log to be pending")
	}
	if fetched.HTTPStatus != nil {
		t.Errorf("Expected nil http status, got %d", *fetched.HTTPStatus)
	}
	if fetched.Payload["series_id"] != "series-1" {
		t.Errorf("Expected payload to round-trip, got %v", fetched.Payload)
	}

	if _, err := repo.GetByID("whl_missing"); !errors.Is(err, models.ErrLogNotFound) {
		t.Errorf("Expected ErrLogNotFound, got %v", err)
	}
}

func TestLogRepository_PendingAndFailedSelection(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhook := createTestWebhook(t, db)
	repo := NewWebhookLogRepository(db)

	pending := createTestLog(t, db, webhook.ID)
	failed := createTestLog(t, db, webhook.ID)
	succeeded := createTestLog(t, db, webhook.ID)

	if err := repo.UpdateResponse(failed.ID, 500, "server error", false); err != nil {
		t.Fatalf("Failed to update log: %v", err)
	}
	if err := repo.UpdateResponse(succeeded.ID, 200, "ok", true); err != nil {
		t.Fatalf("Failed to update log: %v", err)
	}

	pendingLogs, err := repo.FindPending(10)
	if err != nil {
		t.Fatalf("Failed to find pending logs: %v", err)
	}
	if len(pendingLogs) != 1 || pendingLogs[0].ID != pending.ID {
		t.Errorf("Expected only the never-attempted log to be pending, got %d", len(pendingLogs))
	}

	failedLogs, err := repo.FindFailed(10)
	if err != nil {
		t.Fatalf("Failed to find failed logs: %v", err)
	}
	if len(failedLogs) != 1 || failedLogs[0].ID != failed.ID {
		t.Errorf("Expected only the attempted unsuccessful log to be failed, got %d", len(failedLogs))
	}
	if !failedLogs[0].Failed() {
		t.Errorf("Expected Failed() to report true for attempted unsuccessful log")
	}
}

func TestLogRepository_UpdateError(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhook := createTestWebhook(t, db)
	repo := NewWebhookLogRepository(db)

	entry := createTestLog(t, db, webhook.ID)
	if err := repo.UpdateError(entry.ID, errors.New("connection refused")); err != nil {
		t.Fatalf("Failed to record error: %v", err)
	}

	fetched, err := repo.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get log: %v", err)
	}
	if fetched.HTTPStatus == nil || *fetched.HTTPStatus != 0 {
		t.Errorf("Expected http status 0 for transport error, got %v", fetched.HTTPStatus)
	}
	if fetched.ResponseBody != "connection refused" {
		t.Errorf("Expected error text as response body, got %q", fetched.ResponseBody)
	}
	if !fetched.Failed() {
		t.Errorf("Expected log with transport error to count as failed")
	}
}

func TestLogRepository_ResponseBodyTruncation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhook := createTestWebhook(t, db)
	repo := NewWebhookLogRepository(db)

	entry := createTestLog(t, db, webhook.ID)
	long := strings.Repeat("x", 5000)
	if err := repo.UpdateResponse(entry.ID, 400, long, false); err != nil {
		t.Fatalf("Failed to update log: %v", err)
	}

	fetched, err := repo.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get log: %v", err)
	}
	if len(fetched.ResponseBody) != maxResponseBody {
		t.Errorf("Expected response body truncated to %d chars, got %d", maxResponseBody, len(fetched.ResponseBody))
	}
}

func TestLogRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhookA := createTestWebhook(t, db)
	webhookB := createTestWebhook(t, db)
	repo := NewWebhookLogRepository(db)

	okLog := createTestLog(t, db, webhookA.ID)
	badLog := createTestLog(t, db, webhookA.ID)
	createTestLog(t, db, webhookB.ID)

	repo.UpdateResponse(okLog.ID, 200, "ok", true)
	repo.UpdateResponse(badLog.ID, 500, "err", false)

	succeededOnly := true
	listed, err := repo.List(20, &succeededOnly, "", 0)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != okLog.ID {
		t.Errorf("Expected succeeded filter to return only the 200 log, got %d", len(listed))
	}

	listed, err = repo.List(20, nil, webhookA.ID, 0)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("Expected 2 logs for webhook filter, got %d", len(listed))
	}

	old := createTestLog(t, db, webhookA.ID)
	weekAgo := time.Now().Add(-7 * 24 * time.Hour).Unix()
	if _, err := db.Exec(`UPDATE webhook_logs SET timestamp = ? WHERE id = ?`, weekAgo, old.ID); err != nil {
		t.Fatalf("Failed to backdate log: %v", err)
	}

	listed, err = repo.List(20, nil, webhookA.ID, 1)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	for _, l := range listed {
		if l.ID == old.ID {
			t.Errorf("Expected week-old log to be excluded by days filter")
		}
	}

	listed, err = repo.List(1, nil, "", 0)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("Expected limit 1 to cap the result, got %d", len(listed))
	}
}
