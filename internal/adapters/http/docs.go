package http

import (
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the OpenAPI document is read from, relative to the
// working directory of the binary.
var OpenAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Driver Dashboard API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true });
  </script>
</body>
</html>`

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml and /docs/openapi.json.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})
	app.Get("/docs/openapi.yaml", openAPIYAMLHandler)
	app.Get("/docs/openapi.json", openAPIJSONHandler)
}

func openAPIYAMLHandler(c *fiber.Ctx) error {
	data, err := os.ReadFile(OpenAPIPath)
	if err != nil {
		return errNotFound(c, "openapi document not found")
	}
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(data)
}

// openAPIJSONHandler parses the YAML document so clients that only speak
// JSON get the same contract.
func openAPIJSONHandler(c *fiber.Ctx) error {
	loader := &openapi3.Loader{Context: c.UserContext()}
	doc, err := loader.LoadFromFile(OpenAPIPath)
	if err != nil {
		return errNotFound(c, "openapi document not found")
	}
	return c.JSON(doc)
}
