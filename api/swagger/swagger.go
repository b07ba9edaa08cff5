package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BHRF Oversight API",
        "description": "Compliance evaluation and clinical record lifecycle for behavioral health residential facilities",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Compliance",
            "description": "Facility compliance evaluation and exports"
        },
        {
            "name": "Obligations",
            "description": "Drill and training records"
        },
        {
            "name": "Records",
            "description": "Clinical assessment lifecycle"
        }
    ],
    "paths": {
        "/facilities/{id}/compliance": {
            "get": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Evaluate facility compliance",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "at",
                        "in": "query",
                        "type": "string",
                        "format": "date-time",
                        "description": "Reference instant"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/facilities/{id}/compliance/export": {
            "get": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Download a facility compliance report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "pdf, csv or xlsx"
                    },
                    {
                        "name": "at",
                        "in": "query",
                        "type": "string",
                        "format": "date-time",
                        "description": "Reference instant"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/facilities/{id}/obligations/schedule": {
            "get": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Describe the current window of every obligation",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "at",
                        "in": "query",
                        "type": "string",
                        "format": "date-time",
                        "description": "Reference instant"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/facilities/{id}/documents/status": {
            "get": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Classify a facility's documents",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "ownerType",
                        "in": "query",
                        "type": "string",
                        "description": "FACILITY, EMPLOYEE or RESIDENT"
                    },
                    {
                        "name": "at",
                        "in": "query",
                        "type": "string",
                        "format": "date-time",
                        "description": "Reference instant"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/documents/classify": {
            "post": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Classify an artifact's expiration",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ClassifyArtifactRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/portfolio/compliance": {
            "get": {
                "tags": [
                    "Compliance"
                ],
                "summary": "Evaluate every facility managed by a BHP",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "bhpId",
                        "in": "query",
                        "type": "string",
                        "description": "BHP identifier (admins only)"
                    },
                    {
                        "name": "at",
                        "in": "query",
                        "type": "string",
                        "format": "date-time",
                        "description": "Reference instant"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/facilities/{id}/obligations": {
            "post": {
                "tags": [
                    "Obligations"
                ],
                "summary": "Record a drill or training",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ObligationRecordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "Obligations"
                ],
                "summary": "List obligation records of a facility",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "integer",
                        "description": ""
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "description": ""
                    },
                    {
                        "name": "offset",
                        "in": "query",
                        "type": "integer",
                        "description": ""
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/obligations/{id}": {
            "put": {
                "tags": [
                    "Obligations"
                ],
                "summary": "Correct an obligation record",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ObligationRecordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/facilities/{id}/records": {
            "post": {
                "tags": [
                    "Records"
                ],
                "summary": "Start a clinical record as draft or submission",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateRecordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "List clinical records of a facility",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Facility ID"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated statuses"
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "description": ""
                    },
                    {
                        "name": "offset",
                        "in": "query",
                        "type": "integer",
                        "description": ""
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/records/{id}": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "Get clinical record detail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Record ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/records/{id}/transitions": {
            "post": {
                "tags": [
                    "Records"
                ],
                "summary": "Apply a lifecycle action to a record",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Record ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TransitionRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/records/{id}/audit": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "List the audit trail of a record",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Record ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        },
        "ClassifyArtifactRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "REQUESTED",
                        "UPLOADED",
                        "EXPIRED"
                    ]
                },
                "expiresAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "fileKey": {
                    "type": "string"
                },
                "at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "ObligationRecordRequest": {
            "type": "object",
            "required": [
                "kind"
            ],
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "FIRE_DRILL",
                        "EVACUATION_DRILL",
                        "DISASTER_DRILL",
                        "OVERSIGHT_TRAINING"
                    ]
                },
                "shift": {
                    "type": "string",
                    "enum": [
                        "AM",
                        "PM"
                    ]
                },
                "month": {
                    "type": "integer"
                },
                "quarter": {
                    "type": "integer"
                },
                "biWeek": {
                    "type": "integer"
                },
                "year": {
                    "type": "integer"
                },
                "performedOn": {
                    "type": "string",
                    "format": "date"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "CreateRecordRequest": {
            "type": "object",
            "required": [
                "kind",
                "action"
            ],
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "INTAKE_ASSESSMENT",
                        "LEVEL_OF_CARE_ASSESSMENT"
                    ]
                },
                "action": {
                    "type": "string",
                    "enum": [
                        "SAVE_DRAFT",
                        "SUBMIT"
                    ]
                },
                "draftStep": {
                    "type": "integer"
                },
                "content": {
                    "type": "object"
                }
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": [
                "action"
            ],
            "properties": {
                "action": {
                    "type": "string",
                    "enum": [
                        "SAVE_DRAFT",
                        "SUBMIT",
                        "APPROVE",
                        "APPROVE_CONDITIONAL",
                        "DENY",
                        "EDIT"
                    ]
                },
                "expectedVersion": {
                    "type": "integer"
                },
                "draftStep": {
                    "type": "integer"
                },
                "content": {
                    "type": "object"
                },
                "reason": {
                    "type": "string"
                }
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
