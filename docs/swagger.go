package docs

import "github.com/swaggo/swag"

// @title           Taskboard API
// @version         1.0
// @description     Portfolios, meeting records and nested tasks with deadline reminders.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Auth
// @tag.description Registration and login

// @tag.name Tasks
// @tag.description Tasks, task groups and reminders

// @tag.name Portfolios
// @tag.description Portfolio management

// @tag.name Meeting Records
// @tag.description Meetings and task extraction

// @tag.name Task Assignments
// @tag.description Who works on what

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation or conflict"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid email or password"}}}},
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Tasks"], "summary": "Create a task", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/{id}": {
            "get": {"tags": ["Tasks"], "summary": "Task with subtasks", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Task not found"}}},
            "put": {"tags": ["Tasks"], "summary": "Update a task", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Tasks"], "summary": "Delete a task", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/tree": {"get": {"tags": ["Tasks"], "summary": "Task with all descendants", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/tasks/group": {"post": {"tags": ["Tasks"], "summary": "Create nested tasks", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "No tasks were created"}}}},
        "/tasks/reminders/tomorrow": {"get": {"tags": ["Tasks"], "summary": "Open tasks due tomorrow, project time", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/portfolios": {"get": {"tags": ["Portfolios"], "summary": "List portfolios", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/portfolios/{id}/statistics": {"get": {"tags": ["Portfolios"], "summary": "Portfolio counters", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/meeting-records": {"get": {"tags": ["Meeting Records"], "summary": "Meetings visible to the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/meeting-records/{id}/generate-tasks": {"post": {"tags": ["Meeting Records"], "summary": "Extract tasks from the transcript", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/meeting-records/{id}/summarize": {"post": {"tags": ["Meeting Records"], "summary": "Summarize the transcript", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/task-assignments/task/{task_id}/users": {
            "get": {"tags": ["Task Assignments"], "summary": "Assignees of a task", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Task Assignments"], "summary": "Replace the assignees of a task", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Portfolios, meeting records and nested tasks with deadline reminders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
