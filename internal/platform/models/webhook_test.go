package models

import (
	"errors"
	"testing"
)

func TestWebhookSubscription_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     WebhookSubscription
		wantErr bool
	}{
		{
			name:    "Scoped",
			sub:     WebhookSubscription{EventType: EventTypeSeriesCreated, ResourceType: "Series", ResourceID: "series-1"},
			wantErr: false,
		},
		{
			name:    "General",
			sub:     WebhookSubscription{EventType: EventTypeEventClosed},
			wantErr: false,
		},
		{
			name:    "Unknown Event Type",
			sub:     WebhookSubscription{EventType: EventType("series.exploded")},
			wantErr: true,
		},
		{
			name:    "Resource Type Without Id",
			sub:     WebhookSubscription{EventType: EventTypeSeriesCreated, ResourceType: "Series"},
			wantErr: true,
		},
		{
			name:    "Resource Id Without Type",
			sub:     WebhookSubscription{EventType: EventTypeSeriesCreated, ResourceID: "series-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected valid subscription, got %v", err)
			}
		})
	}
}
