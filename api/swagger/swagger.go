package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Batch API",
        "description": "Batch lifecycle and enrollment management core",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Batches", "description": "Batch dashboard and lifecycle"},
        {"name": "Enrollments", "description": "Enrollment commands"},
        {"name": "Analytics", "description": "Derived enrollment analytics"},
        {"name": "Exports", "description": "Roster downloads"},
        {"name": "Audits", "description": "Command audit trail"}
    ],
    "paths": {
        "/batches/{id}/dashboard": {
            "get": {
                "tags": ["Batches"],
                "summary": "Batch dashboard read model",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Dashboard snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found"}
                }
            },
            "delete": {
                "tags": ["Batches"],
                "summary": "Drop the cached batch snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Evicted"}
                }
            }
        },
        "/batches/{id}/refresh": {
            "post": {
                "tags": ["Batches"],
                "summary": "Reload the batch snapshot from the upstream",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Refreshed snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/transition": {
            "post": {
                "tags": ["Batches"],
                "summary": "Transition batch status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated batch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Transition not allowed or operation pending"}
                }
            }
        },
        "/batches/{id}/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a batch",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Confirmed enrollment record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student unavailable, capacity reached or operation pending"},
                    "502": {"description": "Upstream rejected the enrollment, local change rolled back"}
                }
            }
        },
        "/batches/{id}/enrollments/{studentId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove a student's enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "confirm", "in": "query", "type": "boolean", "required": true},
                    {"name": "reason", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Unenrolled"},
                    "412": {"description": "Confirmation declined"}
                }
            }
        },
        "/batches/{id}/enrollments/{studentId}/status": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Update an enrollment record's status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Aggregate snapshot for a batch",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Aggregate snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the batch roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster document"}
                }
            }
        },
        "/analytics/instructor-workload": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Instructor workload across loaded batches",
                "responses": {
                    "200": {"description": "Workload summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audits": {
            "get": {
                "tags": ["Audits"],
                "summary": "List audited commands",
                "parameters": [
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "outcome", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Audit rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TransitionRequest": {
            "type": "object",
            "required": ["target_status"],
            "properties": {
                "target_status": {"type": "string", "enum": ["UPCOMING", "ACTIVE", "COMPLETED", "CANCELLED"]}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"}
            }
        },
        "UpdateEnrollmentStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ACTIVE", "COMPLETED", "CANCELLED", "ON_HOLD", "EXPIRED"]}
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
