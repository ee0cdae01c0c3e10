package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs:
// - GET /swagger/index.html  -> Swagger UI page
// - GET /swagger/doc.json    -> OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>cms-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Routes are also served without the /api prefix.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "cms-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "cookieAuth": { "type": "apiKey", "in": "cookie", "name": "cms_session" },
      "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" }
    },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } }
    }
  },
  "paths": {
    "/api/content": {
      "get": {
        "summary": "Read the site content document",
        "responses": { "200": { "description": "content document" }, "404": { "description": "content not found" }, "500": { "description": "read error" } }
      },
      "post": {
        "summary": "Replace the whole content document",
        "security": [ { "cookieAuth": [] }, { "bearerAuth": [] } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "type": "object", "minProperties": 1 } } } },
        "responses": { "200": { "description": "saved" }, "400": { "description": "empty or missing body" }, "401": { "description": "missing, invalid or expired credential" }, "500": { "description": "write error" } }
      }
    },
    "/api/login": {
      "post": {
        "summary": "Log in with the operator password",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "password": { "type": "string" } } } } } },
        "responses": { "200": { "description": "session cookie set" }, "400": { "description": "password missing" }, "401": { "description": "invalid password" }, "429": { "description": "too many attempts" }, "500": { "description": "server not configured" } }
      }
    },
    "/api/logout": {
      "post": { "summary": "Clear the session cookie", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/verify-auth": {
      "get": { "summary": "Report whether the caller is authenticated", "responses": { "200": { "description": "{authenticated: boolean}" } } }
    },
    "/api/upload": {
      "post": {
        "summary": "Upload an image",
        "security": [ { "cookieAuth": [] }, { "bearerAuth": [] } ],
        "requestBody": { "content": { "multipart/form-data": { "schema": { "type": "object", "properties": { "file": { "type": "string", "format": "binary" } } } } } },
        "responses": { "200": { "description": "{filePath}" }, "400": { "description": "no file, not an image, or too large" }, "401": { "description": "not authenticated" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
