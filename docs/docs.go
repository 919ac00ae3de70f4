// Package docs registers the generated swagger spec. Regenerate with:
//
//	swag init
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
        "/players": {
            "get": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "List players",
                "responses": {"200": {"description": "Roster page"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Create a new player",
                "responses": {"201": {"description": "Player created successfully"}}
            }
        },
        "/players/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Get player by ID",
                "responses": {"200": {"description": "Player record"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Delete a player",
                "responses": {"200": {"description": "Player deleted"}}
            }
        },
        "/players/{id}/injuries": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Log or update an injury",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/medical/appointments": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Record a medical appointment",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/training/attendance": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Record training attendance",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/gps-data": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Ingest a GPS session",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/ai-analysis": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Refresh the AI rating",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/csv-import": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Import a CSV row",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/player-value": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Adjust player value components",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/sync": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Sync data from an external vendor",
                "responses": {"200": {"description": "Update applied"}}
            }
        },
        "/players/{id}/update-history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Get the update history for a player",
                "responses": {"200": {"description": "History entries"}}
            }
        },
        "/players/{id}/integrity-report": {
            "get": {
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Run the integrity report for a player",
                "responses": {"200": {"description": "Report"}}
            }
        },
        "/players/bulk-update": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Bulk-update players",
                "responses": {"200": {"description": "Per-player results"}}
            }
        },
        "/data/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["updates"],
                "summary": "Dry-run validation",
                "responses": {"200": {"description": "Validation outcome"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8090",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "SquadPulse REST API",
	Description:      "Roster, medical tracking and training-load service with a cascading data-integrity engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
