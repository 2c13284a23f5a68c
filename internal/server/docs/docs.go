// Package docs swagger文档（与handlers.go中的注解保持一致，可用 swag init 重新生成）
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/v1/ids": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "Assign IDs from the default generator",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "number of IDs", "name": "count", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.idsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/v1/ids/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "Decode an ID into its fields",
                "parameters": [
                    {"type": "string", "description": "decimal, 0x hex or 0b binary", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.decodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/v1/generators": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["generators"],
                "summary": "List named generators",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.generatorsResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generators"],
                "summary": "Create a named generator",
                "parameters": [
                    {"description": "generator definition", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.createGeneratorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.generatorResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/v1/generators/{key}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["generators"],
                "summary": "Delete a named generator",
                "parameters": [
                    {"type": "string", "description": "generator key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/v1/generators/{key}/ids": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["generators"],
                "summary": "Assign IDs from a named generator",
                "parameters": [
                    {"type": "string", "description": "generator key", "name": "key", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "number of IDs", "name": "count", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.idsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/v1/generators/{key}/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["generators"],
                "summary": "Metrics of a named generator",
                "parameters": [
                    {"type": "string", "description": "generator key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "server.idsResponse": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "server.decodeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "timestamp": {"type": "integer"},
                "time": {"type": "string"},
                "identifier": {"type": "integer"},
                "sequence": {"type": "integer"},
                "hex": {"type": "string"},
                "binary": {"type": "string"},
                "valid": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "server.generatorsResponse": {
            "type": "object",
            "properties": {
                "generators": {"type": "array", "items": {"type": "string"}}
            }
        },
        "server.createGeneratorRequest": {
            "type": "object",
            "required": ["key"],
            "properties": {
                "key": {"type": "string", "maxLength": 256},
                "identifier": {"type": "integer"},
                "identifier_source": {"type": "string", "enum": ["static", "random", "hostname"]},
                "enable_metrics": {"type": "boolean"}
            }
        },
        "server.generatorResponse": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "identifier": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "idgen API",
	Description:      "Snowflake ID assignment service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
