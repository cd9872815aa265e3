package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Engine API",
        "description": "Automatic school timetable generation engine",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Generation", "description": "Timetable generation runs"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/generate": {
            "post": {
                "tags": ["Generation"],
                "summary": "Queue a timetable generation run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/generate/{id}/status": {
            "get": {
                "tags": ["Generation"],
                "summary": "Poll the progress of a generation run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/generate/{id}/result": {
            "get": {
                "tags": ["Generation"],
                "summary": "Fetch the placements and failures of a finished run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/generate/{id}": {
            "delete": {
                "tags": ["Generation"],
                "summary": "Cancel a queued or running generation run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "windowStart": {"type": "string"},
                "windowEnd": {"type": "string"},
                "courseIds": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            },
            "required": ["windowStart", "windowEnd"]
        },
        "GenerationStatusResponse": {
            "type": "object",
            "properties": {
                "jobId": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "integer"},
                "scheduleLogId": {"type": "string"},
                "errorMessage": {"type": "string"},
                "createdAt": {"type": "string"},
                "finishedAt": {"type": "string"}
            }
        },
        "GenerationResultResponse": {
            "type": "object",
            "properties": {
                "jobId": {"type": "string"},
                "scheduleLogId": {"type": "string"},
                "placedCount": {"type": "integer"},
                "failedCount": {"type": "integer"},
                "sessions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PlacedSessionView"}
                },
                "unplaced": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/UnplacedRequestView"}
                }
            }
        },
        "PlacedSessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "courseId": {"type": "string"},
                "classGroupId": {"type": "string"},
                "subgroup": {"type": "string"},
                "teacherId": {"type": "string"},
                "secondaryTeacherId": {"type": "string"},
                "roomId": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "UnplacedRequestView": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "classGroupId": {"type": "string"},
                "subgroup": {"type": "string"},
                "reason": {"type": "string"},
                "attempts": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
