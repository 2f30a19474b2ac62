package repositories

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

func TestWebhookRepository_ListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM webhooks").
		WillReturnError(errors.New("disk I/O error"))

	repo := NewWebhookRepository(db)
	if _, err := repo.List(); err == nil {
		t.Errorf("Expected query error to propagate")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestWebhookRepository_GetByID_ScanNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "target_url", "platform", "secret", "config", "enabled", "created_at", "updated_at"})

	mock.ExpectQuery("SELECT (.+) FROM webhooks WHERE id = ?").
		WithArgs("wh_gone").
		WillReturnRows(rows)

	repo := NewWebhookRepository(db)
	if _, err := repo.GetByID("wh_gone"); !errors.Is(err, models.ErrWebhookNotFound) {
		t.Errorf("Expected ErrWebhookNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
