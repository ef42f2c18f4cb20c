// Package blog holds the Swagger document served at /swagger/.
package blog

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/blog"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign up",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.SignupRequest"}}],
                "responses": {
                    "201": {"description": "Created account with qr_img", "schema": {"$ref": "#/definitions/blogsdk.UserResponse"}},
                    "400": {"description": "Invalid input or duplicate username", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.LoginResponse"}, "headers": {"X-CSRF-TOKEN": {"type": "string", "description": "CSRF token to send as bearer"}}},
                    "401": {"description": "Wrong password", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Unknown user", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/verify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Verify second factor",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.VerifyRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.DetailResponse"}},
                    "401": {"description": "Invalid refresh token or TOTP code", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "403": {"description": "Missing Refresh-Token cookie or bearer", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/2fa-img": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Enrollment QR code",
                "produces": ["image/png"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Refresh tokens",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.RefreshResponse"}, "headers": {"X-CSRF-TOKEN": {"type": "string", "description": "CSRF token to send as bearer"}}},
                    "401": {"description": "Invalid refresh token or not verified", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "403": {"description": "Missing Refresh-Token cookie or bearer", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Log out",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "403": {"description": "Missing Access-Token cookie or bearer", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Update profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.ProfileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/users/{username}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Get user",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "username", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.UserResponse"}},
                    "401": {"description": "Not allowed to read this user", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/drafts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Drafts"],
                "summary": "List drafts",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.ListDraftsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Drafts"],
                "summary": "Create draft",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.DraftRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/blogsdk.DraftResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/blogsdk.ValidationErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/drafts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Drafts"],
                "summary": "Get draft",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.DraftResponse"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Drafts"],
                "summary": "Update draft",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.DraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blogsdk.DraftResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/blogsdk.ValidationErrorResponse"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Drafts"],
                "summary": "Delete draft",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/api/v1/bootstrap": {
            "post": {
                "tags": ["Bootstrap"],
                "summary": "Bootstrap the blog",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "header", "name": "X-Bootstrap-Token", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/blogsdk.BootstrapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/blogsdk.BootstrapResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/blogsdk.ValidationErrorResponse"}},
                    "401": {"description": "Missing or invalid token, or already bootstrapped", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}},
                    "404": {"description": "Bootstrap not enabled", "schema": {"$ref": "#/definitions/blogsdk.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/blogsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/blogsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/blogsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "blogsdk.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "error_description": {"type": "string"}}
        },
        "blogsdk.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "blogsdk.SignupRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "mahdi"},
                "password": {"type": "string", "example": "12345678"},
                "name": {"type": "string"},
                "bio": {"type": "string"},
                "email": {"type": "string"},
                "telegram": {"type": "string"},
                "instagram": {"type": "string"},
                "twitter": {"type": "string"}
            }
        },
        "blogsdk.LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "blogsdk.VerifyRequest": {
            "type": "object",
            "properties": {"code": {"type": "string", "example": "123456"}}
        },
        "blogsdk.LoginResponse": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "detail": {"type": "string"}}
        },
        "blogsdk.DetailResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "blogsdk.RefreshResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "role": {"type": "string"},
                "verification_expires_in": {"type": "integer"}
            }
        },
        "blogsdk.UserResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "role": {"type": "string"},
                "name": {"type": "string"},
                "bio": {"type": "string"},
                "email": {"type": "string"},
                "telegram": {"type": "string"},
                "instagram": {"type": "string"},
                "twitter": {"type": "string"},
                "created_at": {"type": "string"},
                "qr_img": {"type": "string"},
                "provisioning_uri": {"type": "string"}
            }
        },
        "blogsdk.ProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "bio": {"type": "string"},
                "email": {"type": "string"},
                "telegram": {"type": "string"},
                "instagram": {"type": "string"},
                "twitter": {"type": "string"}
            }
        },
        "blogsdk.DraftRequest": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "body": {"type": "string"}}
        },
        "blogsdk.DraftResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "link": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "blogsdk.DraftSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "href": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "blogsdk.ListDraftsResponse": {
            "type": "object",
            "properties": {"drafts": {"type": "array", "items": {"$ref": "#/definitions/blogsdk.DraftSummary"}}}
        },
        "blogsdk.BootstrapRequest": {
            "type": "object",
            "properties": {
                "admin_username": {"type": "string"},
                "admin_password": {"type": "string"},
                "admin_name": {"type": "string"}
            }
        },
        "blogsdk.BootstrapResponse": {
            "type": "object",
            "properties": {
                "admin_username": {"type": "string"},
                "admin_password": {"type": "string"},
                "provisioning_uri": {"type": "string"},
                "qr_img": {"type": "string"}
            }
        },
        "blogsdk.HealthChecks": {
            "type": "object",
            "properties": {"database": {"type": "string"}, "cache": {"type": "string"}}
        },
        "blogsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/blogsdk.HealthChecks"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "CSRF token from the X-CSRF-TOKEN header. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Blog API",
	Description:      "Blog backend with cookie sessions and TOTP second factor.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
