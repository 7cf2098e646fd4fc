package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	prefix string
	value  string
}

// cacheRules are matched in order against the request path; first hit wins.
var cacheRules = []cacheRule{
	{"/metrics", "no-cache"},
	{"/v1/services", "public, max-age=300"}, // services rarely move
	{"/v1/trips", "private, max-age=15"},    // trip statuses change during a shift
	{"/docs", "public, max-age=3600"},
	{"/v1/", "private, max-age=0"},
}

// CachingMiddleware sets Cache-Control on GET responses by path. Handlers
// that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		if value := cacheControlFor(c.Path()); value != "" {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if strings.HasPrefix(path, r.prefix) {
			return r.value
		}
	}
	return ""
}
