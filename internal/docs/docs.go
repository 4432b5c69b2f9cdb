// Package docs registers the OpenAPI 2.0 document for the catalog API with
// swag so gin-swagger can serve it under /swagger/*any.
//
// The template is maintained by hand alongside the godoc annotations on
// internal/http/handlers; the router tests check that every API route is listed.
package docs

import "github.com/swaggo/swag"

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Error Catalog API",
	Description:      "Catalog of documented programming errors with community votes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

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
        "/errors": {
            "get": {
                "description": "Returns all entries ordered by id. Passing page or page_size switches to paged output with X-Total-Count. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Errors"],
                "summary": "List error entries",
                "operationId": "listErrors",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ErrorEntry"}},
                        "headers": {
                            "ETag": {"type": "string", "description": "Weak ETag for current catalog state"},
                            "X-Total-Count": {"type": "integer", "description": "Total entries (paged requests only)"}
                        }
                    },
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Adds a new entry. Detailed names are unique. Supports idempotency via the Idempotency-Key header.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Errors"],
                "summary": "Create an entry",
                "operationId": "createError",
                "parameters": [
                    {"type": "string", "description": "Idempotency key for safe retries (UUID recommended)", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Client identifier scoping idempotency keys", "name": "X-Client-ID", "in": "header"},
                    {"description": "Entry payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateErrorRequest"}}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/domain.ErrorEntry"},
                        "headers": {"Idempotency-Replayed": {"type": "string", "description": "true when served from a previous request"}}
                    },
                    "400": {"description": "Invalid body", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Duplicate detailed name", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/by-name": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Errors"],
                "summary": "Find an entry by name",
                "operationId": "errorByName",
                "parameters": [
                    {"type": "string", "description": "Exact detailed name", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ErrorEntry"}},
                    "400": {"description": "Name missing", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No such entry", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/export.csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["Errors"],
                "summary": "Export the catalog as CSV",
                "operationId": "exportErrorsCSV",
                "responses": {
                    "200": {"description": "CSV document", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/search": {
            "get": {
                "description": "Ranks entries by token overlap between the query and each entry's name and description.",
                "produces": ["application/json"],
                "tags": ["Errors"],
                "summary": "Search entries",
                "operationId": "searchErrors",
                "parameters": [
                    {"type": "string", "description": "Free-text query", "name": "q", "in": "query", "required": true},
                    {"minimum": 1, "type": "integer", "description": "Maximum results", "name": "k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ErrorEntry"}}},
                    "400": {"description": "Query missing", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/top": {
            "get": {
                "description": "Returns the entry with the highest vote count; ties go to the lowest id.",
                "produces": ["application/json"],
                "tags": ["Errors"],
                "summary": "Most voted entry",
                "operationId": "topError",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ErrorEntry"}},
                    "404": {"description": "Catalog is empty", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/{id}": {
            "delete": {
                "tags": ["Errors"],
                "summary": "Delete an entry",
                "operationId": "deleteError",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Entry ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "400": {"description": "Bad id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No such entry", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/{id}/votes": {
            "post": {
                "tags": ["Errors"],
                "summary": "Up-vote an entry",
                "operationId": "voteError",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Entry ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "400": {"description": "Bad id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No such entry", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ErrorEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "error_category_id": {"type": "integer"},
                "detailed_name": {"type": "string"},
                "description": {"type": "string"},
                "link": {"type": "string"},
                "code_example": {"type": "string"},
                "is_user_example": {"type": "boolean"},
                "votes": {"type": "integer"},
                "rating": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.CreateErrorRequest": {
            "type": "object",
            "required": ["detailed_name"],
            "properties": {
                "error_category_id": {"type": "integer", "minimum": 0, "example": 1},
                "detailed_name": {"type": "string", "maxLength": 255, "example": "NullReferenceException"},
                "description": {"type": "string", "maxLength": 10000},
                "link": {"type": "string", "maxLength": 2048},
                "code_example": {"type": "string", "maxLength": 10000},
                "is_user_example": {"type": "boolean"},
                "votes": {"type": "integer"},
                "rating": {"type": "number"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "error entry not found"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`
