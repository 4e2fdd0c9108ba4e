package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FormaTrack Engagement API",
        "description": "Student engagement and dropout-risk scoring engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Progress", "description": "Trainee progress tracking"},
        {"name": "Attendance", "description": "Session attendance facts"},
        {"name": "Assessments", "description": "Engagement and dropout-risk scoring"},
        {"name": "Alternance", "description": "Work-study blended evaluation"},
        {"name": "Metrics", "description": "Engine observability"}
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
        "/trainees/{traineeId}/programs/{programId}/link": {
            "post": {
                "tags": ["Progress"],
                "summary": "Link a trainee to a program",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Trainee or program not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Get the progress record",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/modules/{moduleId}": {
            "put": {
                "tags": ["Progress"],
                "summary": "Update module completion",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"},
                    {"name": "moduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/chapters/{chapterId}": {
            "put": {
                "tags": ["Progress"],
                "summary": "Update chapter completion",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"},
                    {"name": "chapterId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/activity": {
            "post": {
                "tags": ["Progress"],
                "summary": "Record a learning activity event",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/present": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark present",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkPresentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/absent": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark absent",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAbsentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/late": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark late",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkLateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/partial": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark partial attendance",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkPartialRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/arrival": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record arrival time",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/sessions/{sessionId}/departure": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record departure time",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get attendance summary",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/assessment": {
            "get": {
                "tags": ["Assessments"],
                "summary": "Get the stored assessment",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/assessment/recompute": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Recompute the assessment",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{programId}/assessments/recompute": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Schedule a program-wide recompute",
                "parameters": [
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainees/{traineeId}/programs/{programId}/alternance": {
            "post": {
                "tags": ["Alternance"],
                "summary": "Evaluate work-study standing",
                "parameters": [
                    {"name": "traineeId", "in": "path", "required": true, "type": "string"},
                    {"name": "programId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active contract", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Get aggregated engine metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ContentProgressRequest": {
            "type": "object",
            "properties": {
                "completed": {"type": "boolean"},
                "percentage": {"type": "number"}
            }
        },
        "ActivityRequest": {
            "type": "object",
            "properties": {
                "session_minutes": {"type": "integer"},
                "login": {"type": "boolean"}
            }
        },
        "MarkPresentRequest": {
            "type": "object",
            "properties": {
                "participation_score": {"type": "integer"},
                "location": {"type": "string", "enum": ["center", "company"]},
                "supervised_by": {"type": "string"},
                "company_rating": {"type": "integer"}
            }
        },
        "MarkAbsentRequest": {
            "type": "object",
            "properties": {
                "excused": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "MarkLateRequest": {
            "type": "object",
            "properties": {
                "minutes_late": {"type": "integer"},
                "participation_score": {"type": "integer"}
            }
        },
        "MarkPartialRequest": {
            "type": "object",
            "properties": {
                "minutes_early_departure": {"type": "integer"},
                "participation_score": {"type": "integer"}
            }
        },
        "RecordTimeRequest": {
            "type": "object",
            "properties": {
                "at": {"type": "string", "format": "date-time"}
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
