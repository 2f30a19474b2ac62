package models

// DomainEvent is the closed set of application events that can trigger webhook
// notifications. Kind returns the event's type name as it appears in outbound
// payloads (e.g. "SeriesCreated").
type DomainEvent interface {
	Kind() string
}

type SeriesCreated struct {
	SeriesID string `json:"series_id"`
	Name     string `json:"name,omitempty"`
}

type SeriesUpdated struct {
	SeriesID string `json:"series_id"`
}

type SeriesDeleted struct {
	SeriesID string `json:"series_id"`
}

type SeriesStarted struct {
	SeriesID string `json:"series_id"`
}

type SeriesClosed struct {
	SeriesID string `json:"series_id"`
}

type DriverJoinedEvent struct {
	EventID  string `json:"event_id"`
	DriverID string `json:"driver_id"`
}

type DriverLeftEvent struct {
	EventID  string `json:"event_id"`
	DriverID string `json:"driver_id"`
}

type EventScheduleAdded struct {
	EventID string `json:"event_id"`
}

type RaceResultUploaded struct {
	EventID    string `json:"event_id"`
	ScheduleID int    `json:"schedule_id"`
}

type EventDeleted struct {
	EventID string `json:"event_id"`
}

func (SeriesCreated) Kind() string      { return "SeriesCreated" }
func (SeriesUpdated) Kind() string      { return "SeriesUpdated" }
func (SeriesDeleted) Kind() string      { return "SeriesDeleted" }
func (SeriesStarted) Kind() string      { return "SeriesStarted" }
func (SeriesClosed) Kind() string       { return "SeriesClosed" }
func (DriverJoinedEvent) Kind() string  { return "DriverJoinedEvent" }
func (DriverLeftEvent) Kind() string    { return "DriverLeftEvent" }
func (EventScheduleAdded) Kind() string { return "EventScheduleAdded" }
func (RaceResultUploaded) Kind() string { return "RaceResultUploaded" }
func (EventDeleted) Kind() string       { return "EventDeleted" }
