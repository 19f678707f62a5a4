// Package docs registers the Swagger specification served under /swagger/
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/auth/login": {"post": {"tags": ["Auth"], "summary": "User login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/register": {"post": {"tags": ["Auth"], "summary": "Register a new user", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/api/items": {
            "get": {"tags": ["Items"], "summary": "List the catalog", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "group", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Items"], "summary": "Add an item", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/items/{name}/usage": {"post": {"tags": ["Items"], "summary": "Log usage", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}, {"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Insufficient stock"}}}},
        "/api/items/{name}/restock": {"post": {"tags": ["Items"], "summary": "Restock an item", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}, {"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/ledger": {"get": {"tags": ["Reports"], "summary": "Full ledger", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/reports/most-used": {"get": {"tags": ["Reports"], "summary": "Most used items", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/employee-contributions": {"get": {"tags": ["Reports"], "summary": "Employee contributions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/usage-trends": {"get": {"tags": ["Reports"], "summary": "Usage trends", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "format", "in": "query"}, {"type": "string", "name": "tz", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/admin/reconcile": {"get": {"tags": ["Admin"], "summary": "Reconcile catalog with ledger", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/export/catalog.csv": {"get": {"tags": ["Admin"], "summary": "Catalog CSV", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "CSV file"}}}},
        "/api/export/ledger.csv": {"get": {"tags": ["Admin"], "summary": "Ledger CSV", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "CSV file"}}}},
        "/health": {"get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Stock Ledger API",
	Description:      "Inventory ledger and usage reporting with full observability (logging, tracing, metrics)",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
