package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
	"github.com/samirrijal/driverdash/internal/core/usecases"
)

// routeQuery is shared by the endpoints that return a route.
type routeQuery struct {
	Algorithm string `query:"algorithm" validate:"omitempty,oneof=astar ucs bfs dfs"`
	Selected  string `query:"selected" validate:"max=128"`
	Format    string `query:"format" validate:"omitempty,oneof=json geojson"`
}

// ReconcileRequest is the body of POST /v1/routes/reconcile.
type ReconcileRequest struct {
	Path           []any  `json:"path" validate:"required,max=20000"`
	SelectedTripID string `json:"selected_trip_id" validate:"max=128"`
}

// OnRouteRequest is the body of POST /v1/services/on-route.
type OnRouteRequest struct {
	Path     []any    `json:"path" validate:"required,max=20000"`
	RadiusKm float64  `json:"radius_km" validate:"omitempty,gt=0,lte=25"`
	Types    []string `json:"types" validate:"max=16,dive,max=64"`
}

// OnRouteResponse lists services along a path.
type OnRouteResponse struct {
	Services []domain.Service `json:"services"`
	Counts   map[string]int   `json:"counts"`
}

func parseRouteQuery(c *fiber.Ctx) (routeQuery, error) {
	var q routeQuery
	if err := c.QueryParser(&q); err != nil {
		return q, err
	}
	return q, validate.Struct(q)
}

func sendRoute(c *fiber.Ctx, format string, r RouteResponse) error {
	c.Set("Cache-Control", "no-store")
	if format == "geojson" {
		c.Set(fiber.HeaderContentType, "application/geo+json")
		data, err := routeFeature(r).MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Send(data)
	}
	return c.JSON(r)
}

// ListTripsHandler returns the trips, optionally filtered by status.
func ListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trips, err := deps.Trips.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filtered := make([]domain.Trip, 0, len(trips))
			for _, t := range trips {
				if strings.EqualFold(t.Status, status) {
					filtered = append(filtered, t)
				}
			}
			trips = filtered
		}

		page, pg := paginate(c, trips, 100, 500)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// TripSummaryHandler returns trip counts by status and length category.
func TripSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := deps.Trips.Summary(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summary)
	}
}

// GetTripHandler returns a single trip.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trip, err := deps.Trips.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// TripRouteHandler plans, reconciles and returns the route of a trip.
// ?format=geojson returns a GeoJSON Feature instead.
func TripRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseRouteQuery(c)
		if err != nil {
			return errBadRequest(c, validationMessage(err))
		}
		algorithm := q.Algorithm
		if algorithm == "" {
			algorithm = deps.Algorithm
		}

		planned, err := deps.Routes.PlanTripRoute(c.UserContext(), c.Params("id"), algorithm, q.Selected)
		if err != nil {
			return errFromDomain(c, err)
		}
		return sendRoute(c, q.Format, newPlannedRouteResponse(planned))
	}
}

// TripHistoryHandler returns stored reconciliations for a trip, newest first.
func TripHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := deps.Routes.History(c.UserContext(), c.Params("id"), c.QueryInt("limit", 20))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(records)
	}
}

// PlanTripHandler starts a durable planning run when a planner is
// configured, answering 202 with the run id. Otherwise the route is planned
// inline and returned.
func PlanTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseRouteQuery(c)
		if err != nil {
			return errBadRequest(c, validationMessage(err))
		}
		algorithm := q.Algorithm
		if algorithm == "" {
			algorithm = deps.Algorithm
		}
		tripID := c.Params("id")

		ok, err := deps.Trips.Exists(c.UserContext(), tripID)
		if err != nil {
			return errFromDomain(c, err)
		}
		if !ok {
			return errNotFound(c, "trip not found: "+tripID)
		}

		if deps.Planner == nil {
			planned, err := deps.Routes.PlanTripRoute(c.UserContext(), tripID, algorithm, q.Selected)
			if err != nil {
				return errFromDomain(c, err)
			}
			return sendRoute(c, q.Format, newPlannedRouteResponse(planned))
		}

		runID, err := deps.Planner.StartRoutePlan(c.UserContext(), tripID, algorithm)
		if err != nil {
			return errUnavailable(c, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"trip_id":   tripID,
			"algorithm": algorithm,
			"run_id":    runID,
		})
	}
}

// ReconcileHandler reconciles a raw path sent by the client against the
// current trips.
func ReconcileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseRouteQuery(c)
		if err != nil {
			return errBadRequest(c, validationMessage(err))
		}
		var req ReconcileRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		res, err := deps.Routes.Reconcile(c.UserContext(), req.Path, req.SelectedTripID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return sendRoute(c, q.Format, newRouteResponse(*res))
	}
}

// ListServicesHandler returns the known services, optionally of one type.
func ListServicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		services, err := deps.Services.List(c.UserContext(), c.Query("type"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(services)
	}
}

// OnRouteServicesHandler returns services near a path, closest first.
func OnRouteServicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req OnRouteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		path := reconcile.Normalize(req.Path)
		services, err := deps.Services.AlongPath(c.UserContext(), path, req.RadiusKm, req.Types)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(OnRouteResponse{Services: services, Counts: usecases.CountByType(services)})
	}
}
