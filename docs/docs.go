// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/ratings/simulate": {
            "get": {"tags": ["ratings"], "summary": "Preview the rating swing of a match", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "my_rating", "in": "query", "required": true},
                    {"type": "integer", "name": "opponent_rating", "in": "query", "required": true},
                    {"type": "integer", "name": "match_count", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/ratings/tiers": {
            "get": {"tags": ["ratings"], "summary": "Tier table", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/ratings/progress": {
            "get": {"tags": ["ratings"], "summary": "Progress towards the next tier", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "rating", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/players/{playerID}/rating": {
            "get": {"tags": ["ratings"], "summary": "Stored rating of a player with tier and recent history", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "playerID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/tournaments": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Create a tournament with its participants",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Tournament with participants and bracket", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/tournaments/{tournamentID}/bracket": {
            "get": {"tags": ["brackets"], "summary": "Stored bracket with round names and standings", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["brackets"], "summary": "Generate and store the bracket of a draft tournament", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/result": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["brackets"], "summary": "Record a match result, advance the winner and update ratings",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "string", "name": "matchID", "in": "path", "required": true},
                    {"name": "input", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/ws/tournaments/{tournamentID}": {
            "get": {"tags": ["brackets"], "summary": "Live bracket updates over websocket",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}}}
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
	Title:            "clubscore API",
	Description:      "Club ELO ratings and tournament brackets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
