// Package docs holds the OpenAPI description served at /swagger.
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
        "/cron/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Trigger endpoint health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}}
                }
            }
        },
        "/cron/{job}": {
            "post": {
                "description": "Runs one cycle synchronously and returns its report.",
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Run a pipeline cycle",
                "parameters": [
                    {
                        "enum": ["calendar-update", "calendar-high-impact", "news-update", "score-recompute"],
                        "type": "string",
                        "description": "Cycle name",
                        "name": "job",
                        "in": "path",
                        "required": true
                    },
                    {"type": "string", "description": "Trigger key", "name": "X-API-Key", "in": "header"},
                    {"type": "string", "description": "Trigger key", "name": "api_key", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}}
                }
            }
        },
        "/news": {
            "get": {
                "produces": ["application/json"],
                "tags": ["news"],
                "summary": "Latest market news",
                "parameters": [
                    {"type": "integer", "description": "Maximum articles (default 50)", "name": "limit", "in": "query"},
                    {"enum": ["low", "medium", "high"], "type": "string", "description": "Impact filter", "name": "impact", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.MarketNews"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Recent cycle runs",
                "parameters": [
                    {"type": "integer", "description": "Maximum runs (default 50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Cycle filter", "name": "cycle_type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.CycleRun"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/scores": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scores"],
                "summary": "List currency scores",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.CurrencyScore"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/scores/{currency}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scores"],
                "summary": "Get one currency score",
                "parameters": [
                    {"type": "string", "description": "Currency code, e.g. USD", "name": "currency", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.CurrencyScore"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "dto.TriggerResponse": {
            "type": "object",
            "properties": {
                "available_jobs": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "high_impact_detected": {"type": "boolean"},
                "job": {"type": "string"},
                "message": {"type": "string"},
                "result": {"type": "object"},
                "run_id": {"type": "string"},
                "success": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        },
        "entity.CurrencyScore": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "event_count": {"type": "integer"},
                "last_updated": {"type": "string"},
                "total_score": {"type": "number"}
            }
        },
        "entity.CycleRun": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string", "format": "date-time"},
                "currencies": {"type": "array", "items": {"type": "string"}},
                "cycle_type": {"type": "string"},
                "error_message": {"type": "string"},
                "id": {"type": "integer"},
                "run_id": {"type": "string"},
                "started_at": {"type": "string"},
                "status": {"type": "string"},
                "summary": {"type": "object"},
                "trigger": {"type": "string"}
            }
        },
        "entity.MarketNews": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "created_at": {"type": "string"},
                "datetime": {"type": "integer"},
                "headline": {"type": "string"},
                "id": {"type": "integer"},
                "image": {"type": "string"},
                "impact_level": {"type": "string"},
                "related": {"type": "string"},
                "source": {"type": "string"},
                "summary": {"type": "string"},
                "url": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Forex Pulse Pipeline API",
	Description:      "Economic calendar and market news ingestion pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
