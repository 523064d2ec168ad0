// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Create an agency account",
                "operationId": "signUp",
                "parameters": [
                    {"description": "Account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Returns a bearer token for the Authorization header.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign in",
                "operationId": "login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Session"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "operationId": "me",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/demo-requests": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Demo"],
                "summary": "Request a demo",
                "operationId": "createDemoRequest",
                "parameters": [
                    {"description": "Contact details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DemoRequestBody"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.DemoAccepted"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/policy-types": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Policies"],
                "summary": "Accepted policy types",
                "operationId": "policyTypes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.PolicyTypesResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Views"],
                "summary": "Policies expiring soon",
                "operationId": "dashboard",
                "parameters": [
                    {"type": "integer", "description": "Look-ahead in days (0 means due today)", "name": "days", "in": "query"},
                    {"type": "string", "description": "Evaluate as of this date (YYYY-MM-DD)", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.Dashboard"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Views"],
                "summary": "Policies grouped by end date",
                "operationId": "calendar",
                "parameters": [
                    {"type": "string", "description": "Evaluate as of this date (YYYY-MM-DD)", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.Calendar"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/reminders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Views"],
                "summary": "Renewal reminders",
                "operationId": "reminders",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.Reminders"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/policies": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "One page of the agent's policies, newest first. Supports a weak ETag through If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Policies"],
                "summary": "Policy table",
                "operationId": "listPolicies",
                "parameters": [
                    {"type": "string", "description": "Return 304 if the ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.PolicyTable"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag of this page"}}},
                    "304": {"description": "Not Modified"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Policies"],
                "summary": "Record a policy",
                "operationId": "createPolicy",
                "parameters": [
                    {"type": "string", "description": "Replays the first result for the same key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Policy", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreatePolicyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/views.PolicyCard"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/policies/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Policies"],
                "summary": "Search by customer, phone or company",
                "operationId": "searchPolicies",
                "parameters": [
                    {"type": "string", "description": "Query", "name": "q", "in": "query", "required": true},
                    {"maximum": 50, "minimum": 1, "type": "integer", "default": 10, "description": "Max results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/policies/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Policies"],
                "summary": "One policy",
                "operationId": "getPolicy",
                "parameters": [
                    {"type": "string", "description": "Policy ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.PolicyCard"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "validation_failed"},
                "message": {"type": "string"},
                "field": {"type": "string", "example": "customer_name"}
            }
        },
        "handlers.SignUpRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ajans@example.com"},
                "password": {"type": "string", "example": "gizli-parola"},
                "agency_name": {"type": "string", "example": "Yılmaz Sigorta Aracılık"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ajans@example.com"},
                "password": {"type": "string", "example": "gizli-parola"}
            }
        },
        "handlers.DemoRequestBody": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "agency_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "handlers.DemoAccepted": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message": {"type": "string", "example": "Talebiniz alındı"}
            }
        },
        "handlers.PolicyTypesResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.CreatePolicyRequest": {
            "type": "object",
            "properties": {
                "customer_name": {"type": "string", "example": "Ahmet Yılmaz"},
                "phone": {"type": "string", "example": "0532 111 22 33"},
                "company": {"type": "string", "example": "Anadolu Sigorta"},
                "policy_type": {"type": "string", "example": "Kasko"},
                "start_date": {"type": "string", "example": "2025-02-10"},
                "end_date": {"type": "string", "example": "2026-02-10"}
            }
        },
        "handlers.SearchResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/views.PolicyCard"}}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "agency_name": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "services.Session": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "views.PolicyCard": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "customer_name": {"type": "string"},
                "phone": {"type": "string"},
                "company": {"type": "string"},
                "policy_type": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "end_date_label": {"type": "string", "example": "10.02.2026"},
                "status": {"type": "string", "enum": ["active", "expiring_soon", "expired"]},
                "days_remaining": {"type": "integer"},
                "color": {"type": "string"}
            }
        },
        "views.Dashboard": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["ready", "empty"]},
                "message": {"type": "string"},
                "as_of": {"type": "string"},
                "window_days": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/views.PolicyCard"}}
            }
        },
        "views.CalendarDay": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string"},
                "policies": {"type": "array", "items": {"$ref": "#/definitions/views.PolicyCard"}}
            }
        },
        "views.Calendar": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["ready", "empty"]},
                "message": {"type": "string"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/views.CalendarDay"}}
            }
        },
        "views.PolicyTable": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["ready", "empty"]},
                "message": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/views.PolicyCard"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "create_path": {"type": "string"}
            }
        },
        "views.Reminder": {
            "type": "object",
            "properties": {
                "policy_id": {"type": "string"},
                "text": {"type": "string", "example": "Ahmet Yılmaz – Kasko bitiyor (3 gün kaldı)"},
                "days_remaining": {"type": "integer"},
                "phone": {"type": "string"}
            }
        },
        "views.Reminders": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["ready", "empty"]},
                "message": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/views.Reminder"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token from /auth/login, as \"Bearer <token>\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Policy Tracker API",
	Description:      "Insurance policy expiration tracking for agencies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
