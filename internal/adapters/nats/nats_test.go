package natsadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

func TestEncodeRouteEvent_AssignsIDAndTime(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &domain.RouteEvent{
		TripID: "A",
		Path:   []domain.GeoPoint{{Lat: 20.701, Lon: -103.401}, {Lat: 20.649, Lon: -103.409}},
	}

	data, err := encodeRouteEvent(event, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected an event id")
	}

	var decoded domain.RouteEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != event.ID || decoded.TripID != "A" || !decoded.Time.Equal(fixed) {
		t.Errorf("unexpected event: %+v", decoded)
	}
	if len(decoded.Path) != 2 {
		t.Errorf("expected 2 points, got %d", len(decoded.Path))
	}
}

func TestEncodeRouteEvent_KeepsExistingID(t *testing.T) {
	event := &domain.RouteEvent{ID: "evt-1", Time: time.Now()}
	if _, err := encodeRouteEvent(event, time.Now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != "evt-1" {
		t.Errorf("id overwritten: %s", event.ID)
	}
}

func TestDecodeRawPath(t *testing.T) {
	msg, err := decodeRawPath("routing.path.driver-42", []byte(`{"selected_trip_id": "A", "path": [[20.7, -103.4], {"lat": 20.65, "lon": -103.41}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.DriverID != "driver-42" {
		t.Errorf("expected driver from subject, got %q", msg.DriverID)
	}
	if msg.SelectedID != "A" || len(msg.Path) != 2 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestDecodeRawPath_BareArray(t *testing.T) {
	msg, err := decodeRawPath("routing.path.d1", []byte(`[[20.7, -103.4], [20.65, -103.41]]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.Path) != 2 || msg.DriverID != "d1" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestDecodeRawPath_Garbage(t *testing.T) {
	if _, err := decodeRawPath("routing.path.d1", []byte(`not json`)); err == nil {
		t.Error("expected error")
	}
}
