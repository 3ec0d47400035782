package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coaching Admin API",
        "description": "Reporting and bookkeeping backend for the coaching-center admin dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Reports", "description": "Attendance, finance and student reports"},
        {"name": "Exports", "description": "Asynchronous CSV and PDF report exports"},
        {"name": "Attendance", "description": "Student and staff attendance marking"},
        {"name": "Collections", "description": "Fee collections"},
        {"name": "System", "description": "Runtime metrics"}
    ],
    "paths": {
        "/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Attendance report",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"$ref": "#/parameters/classId"},
                    {"$ref": "#/parameters/batchId"},
                    {"$ref": "#/parameters/sectionId"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"},
                    {"$ref": "#/parameters/month"},
                    {"$ref": "#/parameters/year"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Report failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/finance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Finance report",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"$ref": "#/parameters/classId"},
                    {"$ref": "#/parameters/batchId"},
                    {"$ref": "#/parameters/sectionId"},
                    {"$ref": "#/parameters/studentId"},
                    {"name": "feeType", "in": "query", "type": "string", "enum": ["ADMISSION", "TUITION", "EXAM", "TRANSPORT", "OTHER", "ALL_FEE_TYPES"]},
                    {"name": "paymentStatus", "in": "query", "type": "string", "enum": ["APPROVED", "PENDING", "PARTIAL", "OVERDUE", "ALL_STATUSES"]},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"},
                    {"$ref": "#/parameters/month"},
                    {"$ref": "#/parameters/year"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/students": {
            "get": {
                "tags": ["Reports"],
                "summary": "Student report",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"$ref": "#/parameters/classId"},
                    {"$ref": "#/parameters/batchId"},
                    {"$ref": "#/parameters/sectionId"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["ACTIVE", "INACTIVE", "GRADUATED", "DROPPED", "DISABLED", "ALL_STATUSES"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a report export",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Exports disabled or queue full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/actor"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/students": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Bulk mark student attendance",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkStudentAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate student in payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/staff": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Bulk mark staff attendance",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkStaffAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections": {
            "post": {
                "tags": ["Collections"],
                "summary": "Record a fee collection",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCollectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections/{id}/approve": {
            "post": {
                "tags": ["Collections"],
                "summary": "Approve a pending collection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/actor"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "System metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "actor": {"name": "X-Actor-ID", "in": "header", "type": "string"},
        "sessionId": {"name": "sessionId", "in": "query", "type": "string", "description": "Session ID, NONE or ALL_SESSIONS"},
        "classId": {"name": "classId", "in": "query", "type": "string", "description": "Class ID, NONE or ALL_CLASSES"},
        "batchId": {"name": "batchId", "in": "query", "type": "string", "description": "Batch ID, NONE or ALL_BATCHES"},
        "sectionId": {"name": "sectionId", "in": "query", "type": "string", "description": "Section ID, NONE or ALL_SECTIONS"},
        "studentId": {"name": "studentId", "in": "query", "type": "string", "description": "Student ID, NONE or ALL_STUDENTS"},
        "dateFrom": {"name": "dateFrom", "in": "query", "type": "string", "format": "date"},
        "dateTo": {"name": "dateTo", "in": "query", "type": "string", "format": "date"},
        "month": {"name": "month", "in": "query", "type": "integer", "minimum": 1, "maximum": 12},
        "year": {"name": "year", "in": "query", "type": "integer"}
    },
    "definitions": {
        "ExportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["attendance", "finance", "students"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "filters": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "StudentAttendanceEntry": {
            "type": "object",
            "required": ["studentId", "status"],
            "properties": {
                "studentId": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE"]},
                "remarks": {"type": "string"}
            }
        },
        "MarkStudentAttendanceRequest": {
            "type": "object",
            "required": ["subjectId", "date", "entries"],
            "properties": {
                "subjectId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/StudentAttendanceEntry"}}
            }
        },
        "StaffAttendanceEntry": {
            "type": "object",
            "required": ["teacherId", "status"],
            "properties": {
                "teacherId": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LEAVE"]},
                "checkIn": {"type": "string", "example": "09:00"},
                "checkOut": {"type": "string", "example": "17:00"},
                "remarks": {"type": "string"}
            }
        },
        "MarkStaffAttendanceRequest": {
            "type": "object",
            "required": ["date", "entries"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/StaffAttendanceEntry"}}
            }
        },
        "CreateCollectionRequest": {
            "type": "object",
            "required": ["studentId", "feeMasterId", "amount"],
            "properties": {
                "studentId": {"type": "string"},
                "feeMasterId": {"type": "string"},
                "amount": {"type": "string", "example": "1500.00"},
                "status": {"type": "string", "enum": ["APPROVED", "PENDING", "PARTIAL", "OVERDUE"]},
                "method": {"type": "string", "enum": ["CASH", "BANK", "MOBILE", "CARD"]},
                "remarks": {"type": "string"},
                "collectedAt": {"type": "string", "format": "date"}
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
                "status": {"type": "integer"},
                "field": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
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
