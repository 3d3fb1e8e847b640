package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs.
// - GET /swagger/index.html  -> Swagger UI page loading the document below
// - GET /swagger/doc.json    -> OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Founders Portal API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Directory kinds share one shape; only incubators are spelled out in full.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Founders Portal API", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" },
      "cookie": { "type": "apiKey", "in": "cookie", "name": "access_token" }
    },
    "schemas": {
      "Envelope": { "type": "object", "properties": { "success": {"type":"boolean"}, "data": {}, "message": {"type":"string"}, "errors": {"type":"array","items":{"type":"object","properties":{"field":{"type":"string"},"message":{"type":"string"}}}} } },
      "ImportResult": { "type": "object", "properties": { "imported": {"type":"integer"}, "failed": {"type":"integer"}, "errors": {"type":"array","items":{"type":"object","properties":{"row":{"type":"integer"},"error":{"type":"string"}}}} } }
    }
  },
  "paths": {
    "/api/auth/google": { "post": { "summary": "Sign in with a Google ID token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"credential":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens issued" }, "401": { "description": "invalid credential" }, "403": { "description": "not an admin" } } } },
    "/api/auth/login": { "post": { "summary": "Password sign-in", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens issued" }, "401": { "description": "invalid credentials" }, "429": { "description": "too many attempts" } } } },
    "/api/auth/refresh": { "post": { "summary": "Rotate the refresh session", "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } } },
    "/api/auth/logout": { "post": { "summary": "Revoke tokens and clear cookies", "responses": { "200": { "description": "logged out" } } } },
    "/api/auth/me": { "get": { "summary": "Current admin", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "admin" }, "401": { "description": "unauthenticated" } } } },
    "/api/auth/csrf-token": { "get": { "summary": "Issue a double-submit CSRF token", "responses": { "200": { "description": "token" } } } },
    "/api/incubator-companies": { "get": { "summary": "List incubators", "parameters": [{"name":"q","in":"query","schema":{"type":"string"}},{"name":"sector","in":"query","schema":{"type":"string"}},{"name":"location","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "incubators" } } } },
    "/api/incubator-companies/{id}": { "get": { "summary": "Get an incubator", "responses": { "200": { "description": "incubator" }, "404": { "description": "not found" } } } },
    "/api/seed-investors": { "get": { "summary": "List seed investors", "responses": { "200": { "description": "seed investors" } } } },
    "/api/angel-investors": { "get": { "summary": "List angel investors", "responses": { "200": { "description": "angel investors" } } } },
    "/api/admin/incubator-companies": { "post": { "summary": "Create an incubator", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } } } },
    "/api/admin/incubator-companies/import": { "post": { "summary": "Bulk import from CSV or XLSX", "security": [{"bearer":[]},{"cookie":[]}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"},"format":{"type":"string"}}}}}}, "responses": { "200": { "description": "import result", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/ImportResult"}}}} } } },
    "/api/admin/incubator-companies/export": { "get": { "summary": "Export as CSV or XLSX", "security": [{"bearer":[]},{"cookie":[]}], "parameters": [{"name":"format","in":"query","schema":{"type":"string","enum":["csv","xlsx"]}}], "responses": { "200": { "description": "file" } } } },
    "/api/resources/categories": { "get": { "summary": "List resource categories", "responses": { "200": { "description": "categories" } } } },
    "/api/resources/categories/{id}/items/{itemId}/download": { "get": { "summary": "Redirect to the item file", "responses": { "302": { "description": "redirect" }, "404": { "description": "not found" } } } },
    "/api/admin/resources/categories/{id}/items": { "post": { "summary": "Add an item (file upload or url)", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "201": { "description": "item" }, "413": { "description": "file too large" } } } },
    "/api/templates": { "get": { "summary": "List email templates", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "templates" } } }, "post": { "summary": "Create a template", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "201": { "description": "created" }, "409": { "description": "duplicate name" } } } },
    "/api/templates/{id}/preview": { "post": { "summary": "Render a template", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "subject and html" } } } },
    "/api/templates/{id}/send": { "post": { "summary": "Send to recipients or all active subscribers", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "notification record" } } } },
    "/api/user/subscribe": { "post": { "summary": "Subscribe to the newsletter", "responses": { "201": { "description": "subscribed" }, "200": { "description": "already subscribed" } } } },
    "/api/user/unsubscribe": { "post": { "summary": "Unsubscribe", "responses": { "200": { "description": "unsubscribed" }, "404": { "description": "unknown email" } } } },
    "/api/ai-chat/chat": { "post": { "summary": "Stream an assistant reply", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"message":{"type":"string"},"history":{"type":"array","items":{"type":"object","properties":{"role":{"type":"string"},"content":{"type":"string"}}}}}}}}}, "responses": { "200": { "description": "text/event-stream of data: chunks ending with [DONE]" }, "400": { "description": "empty message" }, "502": { "description": "provider unavailable" } } } },
    "/api/ai-chat/analyze-file": { "post": { "summary": "Stream an analysis of a text file", "responses": { "200": { "description": "event stream" }, "413": { "description": "file too large" }, "415": { "description": "unsupported file type" } } } },
    "/api/ai-chat/schedule-meeting": { "post": { "summary": "Request a meeting", "responses": { "201": { "description": "stored" } } } },
    "/api/admin/meetings": { "get": { "summary": "List meeting requests", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "meetings" } } } },
    "/api/admin/subscribers": { "get": { "summary": "List subscribers", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "subscribers" } } } },
    "/api/admin/notifications": { "get": { "summary": "Send history", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "notifications" } } } },
    "/api/admin/admins": { "get": { "summary": "List admins (superadmin)", "security": [{"bearer":[]},{"cookie":[]}], "responses": { "200": { "description": "admins" }, "403": { "description": "not a superadmin" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
