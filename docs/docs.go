// Package docs registers the swagger document served at /swagger/*.
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
        "/bookings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Book a court",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateBookingInput"}}],
                "responses": {
                    "201": {"description": "Booking created"},
                    "400": {"description": "Invalid slot"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Court not found"},
                    "409": {"description": "Overlapping confirmed bookings"}
                }
            }
        },
        "/bookings/availability": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Check whether a court slot is free",
                "parameters": [
                    {"type": "string", "description": "Court ID", "name": "court_id", "in": "query", "required": true},
                    {"type": "string", "description": "Date (YYYY-MM-DD)", "name": "date", "in": "query", "required": true},
                    {"type": "string", "description": "Start (HH:MM)", "name": "start_time", "in": "query", "required": true},
                    {"type": "string", "description": "End (HH:MM)", "name": "end_time", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "{\"available\": true}"},
                    "400": {"description": "Invalid slot"},
                    "404": {"description": "Court not found"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/bookings/{bookingID}/cancel": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Cancel a booking",
                "parameters": [{"type": "string", "description": "Booking ID", "name": "bookingID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Cancelled booking"},
                    "403": {"description": "Not the owner"},
                    "404": {"description": "Booking not found"},
                    "409": {"description": "Already cancelled"}
                }
            }
        },
        "/courts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["courts"],
                "summary": "List courts",
                "parameters": [{"type": "string", "description": "Club ID", "name": "club_id", "in": "query"}],
                "responses": {"200": {"description": "Courts"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["courts"],
                "summary": "Create a court",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateCourtInput"}}],
                "responses": {
                    "201": {"description": "Court created"},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Admin only"},
                    "409": {"description": "Name already used in the club"}
                }
            }
        },
        "/courts/{courtID}/bookings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["courts"],
                "summary": "Bookings of a court on one day",
                "parameters": [
                    {"type": "string", "description": "Court ID", "name": "courtID", "in": "path", "required": true},
                    {"type": "string", "description": "Date (YYYY-MM-DD)", "name": "date", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Bookings"},
                    "400": {"description": "Invalid date"},
                    "404": {"description": "Court not found"}
                }
            }
        },
        "/schedules": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedules"],
                "summary": "Approve and store a schedule",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Stored schedule with report"},
                    "400": {"description": "Invalid draft"},
                    "409": {"description": "Court conflicts"}
                }
            }
        },
        "/schedules/evaluate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedules"],
                "summary": "Re-evaluate an edited draft",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "Review"},
                    "400": {"description": "Invalid draft"}
                }
            }
        },
        "/schedules/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedules"],
                "summary": "Generate a draft schedule",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "Review"},
                    "400": {"description": "Validation error"},
                    "401": {"description": "Unauthorized"},
                    "502": {"description": "Scheduling service rejected the request"},
                    "503": {"description": "Scheduling service unavailable"}
                }
            }
        },
        "/schedules/{scheduleID}/calendar.ics": {
            "get": {
                "produces": ["text/calendar"],
                "tags": ["schedules"],
                "summary": "Export a schedule as iCalendar",
                "parameters": [{"type": "string", "description": "Schedule ID", "name": "scheduleID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "VCALENDAR document", "schema": {"type": "string"}},
                    "404": {"description": "Schedule not found"}
                }
            }
        }
    },
    "definitions": {
        "services.CreateBookingInput": {
            "type": "object",
            "properties": {
                "court_id": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "services.CreateCourtInput": {
            "type": "object",
            "properties": {
                "club_id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["indoor", "outdoor"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "courtsched API",
	Description:      "Court bookings and tournament schedule review.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
