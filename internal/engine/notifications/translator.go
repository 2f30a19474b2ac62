package notifications

import (
	"encoding/json"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

// EventPayload flattens a domain event into a generic key/value payload and
// injects the event's type name under "event_type". It is total: an event
// whose fields cannot be serialized still yields a payload carrying the
// event_type tag.
func EventPayload(evt models.DomainEvent) map[string]any {
	payload := map[string]any{}

	if raw, err := json.Marshal(evt); err == nil {
		json.Unmarshal(raw, &payload)
	}

	payload["event_type"] = evt.Kind()
	return payload
}

// eventRoute maps a domain event to its subscription event type and the
// resource it concerns. The closed type switch is the single place where
// routing for a new event variant is added.
func eventRoute(evt models.DomainEvent) (eventType models.EventType, resourceType, resourceID string, ok bool) {
	switch e := evt.(type) {
	case models.SeriesCreated:
		return models.EventTypeSeriesCreated, "Series", e.SeriesID, true
	case models.SeriesUpdated:
		return models.EventTypeSeriesUpdated, "Series", e.SeriesID, true
	case models.SeriesDeleted:
		return models.EventTypeSeriesDeleted, "Series", e.SeriesID, true
	case models.SeriesStarted:
		// Series start/close publish under the event.* lifecycle tags.
		return models.EventTypeEventStarted, "Series", e.SeriesID, true
	case models.SeriesClosed:
		return models.EventTypeEventClosed, "Series", e.SeriesID, true
	case models.DriverJoinedEvent:
		return models.EventTypeDriverJoined, "Event", e.EventID, true
	case models.DriverLeftEvent:
		return models.EventTypeDriverLeft, "Event", e.EventID, true
	case models.EventScheduleAdded:
		return models.EventTypeEventOpen, "Event", e.EventID, true
	case models.RaceResultUploaded:
		return models.EventTypeRaceResultUploaded, "Event", e.EventID, true
	case models.EventDeleted:
		// A deleted event notifies its subscribers as a close.
		return models.EventTypeEventClosed, "Event", e.EventID, true
	}
	return "", "", "", false
}
