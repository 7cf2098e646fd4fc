package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/driverdash/internal/adapters/http"
)

// openAPIFile walks up from the package directory to the repo's api/openapi.yaml.
func openAPIFile(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatalf("api/openapi.yaml not found above %s", dir)
	return ""
}

func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromFile(openAPIFile(t))
	if err != nil {
		t.Fatalf("parse openapi: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("openapi invalid: %v", err)
	}
	return doc
}

var fiberParam = regexp.MustCompile(`:(\w+)`)

// Every REST route the router registers must be documented with the same method.
func TestOpenAPI_DocumentsEveryRoute(t *testing.T) {
	doc := loadOpenAPI(t)

	app := fiber.New()
	handler.SetupRoutes(app, &handler.Dependencies{}, handler.RouterOptions{})

	checked := 0
	for _, r := range app.GetRoutes(true) {
		if r.Method != fiber.MethodGet && r.Method != fiber.MethodPost {
			continue
		}
		if !strings.HasPrefix(r.Path, "/v1/") && r.Path != "/graphql" {
			continue
		}
		path := fiberParam.ReplaceAllString(r.Path, "{$1}")
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("%s %s is not documented", r.Method, path)
			continue
		}
		if item.GetOperation(r.Method) == nil {
			t.Errorf("%s %s: path documented without this method", r.Method, path)
		}
		checked++
	}
	if checked < 12 {
		t.Errorf("expected at least 12 documented routes, checked %d", checked)
	}
}

func TestOpenAPI_RouteResponseSchema(t *testing.T) {
	doc := loadOpenAPI(t)

	ref := doc.Components.Schemas["RouteResponse"]
	if ref == nil || ref.Value == nil {
		t.Fatal("RouteResponse schema missing")
	}
	for _, field := range []string{"trip_id", "path", "polyline", "inverted", "fallback", "planned_at"} {
		if _, ok := ref.Value.Properties[field]; !ok {
			t.Errorf("RouteResponse lacks %q", field)
		}
	}

	for _, name := range []string{"GeoPoint", "Trip", "Service", "ReconcileRequest", "OnRouteRequest", "APIError"} {
		if doc.Components.Schemas[name] == nil {
			t.Errorf("schema %s missing", name)
		}
	}
}

func TestOpenAPI_Info(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "Driver Dashboard API" {
		t.Errorf("title = %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0 to match X-API-Version", doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

func TestDocs_ServesJSON(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = openAPIFile(t)
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := fiber.New()
	handler.SetupDocs(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		OpenAPI string `json:"openapi"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(body.OpenAPI, "3.") {
		t.Errorf("openapi = %q", body.OpenAPI)
	}
}

func TestDocs_MissingDocument(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := fiber.New()
	handler.SetupDocs(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
