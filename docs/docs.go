// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler
// annotations.
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
        "/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "List candidates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Create a candidate",
                "parameters": [
                    {"description": "Candidate", "name": "candidate", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CandidateInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/candidates/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Get candidate details",
                "parameters": [{"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Update a candidate",
                "parameters": [
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "candidate", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CandidatePatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Delete a candidate",
                "parameters": [{"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/exports/candidates": {
            "get": {
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["exports"],
                "summary": "Export candidates",
                "parameters": [{"type": "string", "description": "csv (default) or xlsx", "name": "format", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "apperror.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "domain.EducationInput": {
            "type": "object",
            "required": ["institution", "title", "startDate", "endDate"],
            "properties": {
                "institution": {"type": "string", "minLength": 2, "maxLength": 100},
                "title": {"type": "string", "minLength": 2, "maxLength": 100},
                "degree": {"type": "string"},
                "fieldOfStudy": {"type": "string"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "description": {"type": "string", "minLength": 5, "maxLength": 500}
            }
        },
        "domain.ExperienceInput": {
            "type": "object",
            "required": ["company", "position", "startDate", "endDate", "description"],
            "properties": {
                "company": {"type": "string", "minLength": 2, "maxLength": 100},
                "position": {"type": "string", "minLength": 2, "maxLength": 100},
                "location": {"type": "string"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "description": {"type": "string", "minLength": 10, "maxLength": 1000},
                "currentJob": {"type": "boolean"},
                "achievements": {"type": "array", "items": {"type": "string"}},
                "skills": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.CandidateInput": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "phone", "education", "experience"],
            "properties": {
                "firstName": {"type": "string", "minLength": 2, "maxLength": 50},
                "lastName": {"type": "string", "minLength": 2, "maxLength": 50},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string"},
                "street": {"type": "string", "minLength": 2, "maxLength": 150},
                "city": {"type": "string", "minLength": 2, "maxLength": 100},
                "state": {"type": "string", "minLength": 2, "maxLength": 100},
                "postalCode": {"type": "string", "minLength": 3, "maxLength": 20},
                "country": {"type": "string", "minLength": 2, "maxLength": 100},
                "status": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "education": {"type": "array", "items": {"$ref": "#/definitions/domain.EducationInput"}},
                "experience": {"type": "array", "items": {"$ref": "#/definitions/domain.ExperienceInput"}}
            }
        },
        "domain.CandidatePatch": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string", "minLength": 2, "maxLength": 50},
                "lastName": {"type": "string", "minLength": 2, "maxLength": 50},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string"},
                "street": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "postalCode": {"type": "string"},
                "country": {"type": "string"},
                "status": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/apperror.FieldError"}},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3010",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ATS Candidate API",
	Description:      "Candidate management backend for an applicant tracking system.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
