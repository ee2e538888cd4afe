package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is the advertised API version.
const Version = "1.0.0"

// Spec builds the OpenAPI 3 document describing the public API surface.
func Spec() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "DropBuddy API",
			"description": "Web backend API: authentication, sessions, and service health.",
			"version":     Version,
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
			"schemas": map[string]any{
				"Envelope": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"success":   map[string]any{"type": "boolean"},
						"data":      map[string]any{},
						"error":     map[string]any{"$ref": "#/components/schemas/ErrorInfo"},
						"timestamp": map[string]any{"type": "string", "format": "date-time"},
					},
					"required": []string{"success", "timestamp"},
				},
				"ErrorInfo": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"code":    map[string]any{"type": "string"},
						"message": map[string]any{"type": "string"},
					},
				},
				"TokenPair": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"access_token":  map[string]any{"type": "string"},
						"refresh_token": map[string]any{"type": "string"},
					},
				},
			},
		},
		"paths": map[string]any{
			"/": map[string]any{
				"get": operation("Root greeting", false),
			},
			"/health": map[string]any{
				"get": operation("Service and database health", false),
			},
			"/api/v1/auth/register": map[string]any{
				"post": operation("Register a new account", false),
			},
			"/api/v1/auth/login": map[string]any{
				"post": operation("Authenticate and obtain a token pair", false),
			},
			"/api/v1/auth/refresh": map[string]any{
				"post": operation("Rotate a refresh token", false),
			},
			"/api/v1/auth/me": map[string]any{
				"get": operation("Current user profile", true),
			},
			"/api/v1/auth/logout": map[string]any{
				"post": operation("Revoke the current session", true),
			},
			"/api/v1/sessions": map[string]any{
				"get": operation("List active sessions", true),
			},
			"/api/v1/sessions/revoke/{id}": map[string]any{
				"post": operationWithParams("Revoke a session by id", true, []map[string]any{
					{
						"name":     "id",
						"in":       "path",
						"required": true,
						"schema":   map[string]any{"type": "string"},
					},
				}),
			},
			"/api/v1/sessions/revoke_all": map[string]any{
				"post": operation("Revoke every session of the current user", true),
			},
		},
	}
}

func operation(summary string, secured bool) map[string]any {
	return operationWithParams(summary, secured, nil)
}

func operationWithParams(summary string, secured bool, params []map[string]any) map[string]any {
	op := map[string]any{
		"summary": summary,
		"responses": map[string]any{
			"default": map[string]any{
				"description": "Enveloped response",
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/Envelope"},
					},
				},
			},
		},
	}
	if secured {
		op["security"] = []map[string]any{{"bearerAuth": []string{}}}
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

// SpecHandler serves the OpenAPI document as JSON.
func SpecHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Spec())
	}
}

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>DropBuddy API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/docs/openapi.json",
      dom_id: "#swagger-ui"
    });
  </script>
</body>
</html>`

// uiContentSecurityPolicy loosens the global same-origin policy for this one
// page: the swagger-ui assets come from unpkg and the bootstrap is inline.
const uiContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' https://unpkg.com; " +
	"img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'"

// UIHandler serves an interactive documentation page backed by the JSON spec.
func UIHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", uiContentSecurityPolicy)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiPage))
	}
}
