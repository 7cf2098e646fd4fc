package backend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// ListTrips implements ports.TripSource via GET /api/demo/trips.
func (c *Client) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	body, err := c.getJSON(ctx, "list_trips", "/api/demo/trips", nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(body, "trips", "points", "results")
	if err != nil {
		return nil, fmt.Errorf("list_trips: %w", err)
	}

	trips := make([]domain.Trip, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			c.log.WarnContext(ctx, "skipping malformed trip", "index", i)
			continue
		}
		trips = append(trips, decodeTrip(m, i))
	}
	return trips, nil
}

// decodeTrip maps one backend trip object. The id falls back to the "index"
// field and then to the list position.
func decodeTrip(m map[string]any, pos int) domain.Trip {
	id := str(m, "id", "trip_id", "index")
	if id == "" {
		id = strconv.Itoa(pos)
	}

	t := domain.Trip{
		ID:           id,
		ClientName:   str(m, "clientName", "client_name", "client"),
		PickupLabel:  str(m, "pickupLabel", "pickup_label", "originLabel"),
		DropoffLabel: str(m, "dropoffLabel", "dropoff_label", "destinationLabel"),
		Status:       str(m, "status"),
		Pickup:       firstPoint(m, []string{"pickup", "origin"}, "client", "pickup", "origin"),
		Destination:  firstPoint(m, []string{"destination", "dropoff"}, "destination", "dropoff"),
		Driver:       firstPoint(m, []string{"driver"}, "driver"),
	}
	t.EstimatedDistanceKm, _ = num(m, "estimatedDistanceKm", "estimated_distance_km", "distanceKm")
	t.EstimatedDurationMin, _ = num(m, "estimatedDurationMin", "estimated_duration_min", "estimatedTimeMin")
	t.LengthCategory = str(m, "lengthCategory", "length_category")
	return t
}
