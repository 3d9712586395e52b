// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package apidocs registers the Buzzstream OpenAPI document with swag so
// http-swagger can serve it at /swagger/doc.json. The paths mirror the
// @Router annotations in package api.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Service information",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ServiceInfo"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthStatus"}}}
            }
        },
        "/api/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Stream"],
                "summary": "Subscribe over SSE",
                "responses": {
                    "200": {"description": "event stream"},
                    "503": {"description": "Subscriber limit reached", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/stream/ws": {
            "get": {
                "tags": ["Stream"],
                "summary": "Subscribe over WebSocket",
                "responses": {
                    "101": {"description": "switching protocols"},
                    "503": {"description": "Subscriber limit reached", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/stream/start": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Stream"],
                "summary": "Start the producer",
                "parameters": [
                    {"name": "request", "in": "body", "required": false, "schema": {"$ref": "#/definitions/api.StartRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Invalid body or rate", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/stream/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Stream"],
                "summary": "Stop the producer",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/stream/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Stream"],
                "summary": "Stream status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/stream/subscribers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Stream"],
                "summary": "Connected subscribers",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/trending": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Trending topics",
                "parameters": [
                    {"type": "integer", "description": "Number of topics (1-50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/api.Response"}},
                    "503": {"description": "Trending disabled", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/hashtags": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Top hashtags",
                "parameters": [
                    {"type": "integer", "description": "Number of hashtags (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/api.Response"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/tweets/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Get a tweet",
                "parameters": [
                    {"type": "string", "description": "Tweet ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not found or expired", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/tweets/{id}/detect": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Detect buzzer activity",
                "parameters": [
                    {"type": "string", "description": "Tweet ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not found or expired", "schema": {"$ref": "#/definitions/api.Response"}},
                    "503": {"description": "AI service disabled", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/buzzers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Buzzer accounts",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        }
    },
    "definitions": {
        "api.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {},
                "request_id": {"type": "string"}
            }
        },
        "api.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "status": {"type": "object"},
                "error": {"$ref": "#/definitions/api.APIError"}
            }
        },
        "api.StartRequest": {
            "type": "object",
            "properties": {
                "events_per_second": {"type": "integer", "minimum": 1, "maximum": 1000}
            }
        },
        "api.ServiceInfo": {
            "type": "object",
            "properties": {
                "service": {"type": "string"},
                "version": {"type": "string"},
                "status": {"type": "string"},
                "endpoints": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.HealthStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Buzzstream API",
	Description:      "Real-time buzzer-detection event stream with backpressure over SSE and WebSocket.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
