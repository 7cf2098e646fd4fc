package backend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// ListServices implements ports.ServiceSource via GET /services. Services
// without a usable location are skipped.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	body, err := c.getJSON(ctx, "list_services", "/services", nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(body, "services", "results")
	if err != nil {
		return nil, fmt.Errorf("list_services: %w", err)
	}

	services := make([]domain.Service, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		loc := point(m, []string{"location", "position"}, "lat", "lon")
		if loc == nil {
			loc = point(m, nil, "latitude", "longitude")
		}
		if loc == nil {
			c.log.WarnContext(ctx, "skipping service without location", "index", i)
			continue
		}

		id := str(m, "id")
		if id == "" {
			id = strconv.Itoa(i)
		}
		svc := domain.Service{
			ID:        id,
			Type:      str(m, "type"),
			TypeLabel: str(m, "typeLabel", "type_label"),
			Name:      str(m, "name"),
			AreaLabel: str(m, "areaLabel", "area_label", "area"),
			Location:  *loc,
			Is24h:     boolean(m, "is24h", "is_24h", "open24h"),
			HasTowing: boolean(m, "hasTowing", "has_towing"),
		}
		svc.EstimatedTimeMin, _ = num(m, "estimatedTimeMin", "estimated_time_min")
		services = append(services, svc)
	}
	return services, nil
}
