// Package docs registers the generated swagger specification.
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
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign up a new user",
                "responses": {
                    "200": {"description": "token pair"},
                    "409": {"description": "duplicate username or email"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login with username and password",
                "responses": {
                    "200": {"description": "token pair"},
                    "401": {"description": "invalid credentials"}
                }
            }
        },
        "/auth/refresh-token": {
            "post": {
                "tags": ["auth"],
                "summary": "Rotate a refresh token for a new token pair",
                "responses": {
                    "200": {"description": "token pair"},
                    "401": {"description": "invalid, expired or blacklisted token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Revoke a refresh token",
                "responses": {
                    "200": {"description": "logged out"},
                    "401": {"description": "invalid token"}
                }
            }
        },
        "/auth/reset-password-request": {
            "post": {
                "tags": ["auth"],
                "summary": "Mail a password reset link",
                "responses": {
                    "200": {"description": "reset link"},
                    "404": {"description": "unknown email"}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Set a new password with a reset token",
                "responses": {
                    "200": {"description": "password reset"},
                    "401": {"description": "invalid or expired token"}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Get the authenticated user",
                "responses": {"200": {"description": "user record"}}
            },
            "patch": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Update the authenticated user",
                "responses": {
                    "200": {"description": "updated record"},
                    "409": {"description": "duplicate field"}
                }
            },
            "delete": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete the authenticated user",
                "responses": {"200": {"description": "deleted"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "List users with paging, filtering and sorting",
                "responses": {
                    "200": {"description": "user list"},
                    "400": {"description": "invalid sort field"},
                    "403": {"description": "insufficient privilege"}
                }
            }
        },
        "/users/batch": {
            "post": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Look up users by a list of UUIDs",
                "responses": {
                    "200": {"description": "user list"},
                    "403": {"description": "insufficient privilege"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Get a user by id",
                "responses": {
                    "200": {"description": "user record"},
                    "403": {"description": "insufficient privilege"},
                    "404": {"description": "user not found"}
                }
            },
            "patch": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Update a user, including role, group and block flag",
                "responses": {
                    "200": {"description": "updated record"},
                    "403": {"description": "insufficient privilege"},
                    "409": {"description": "duplicate field"}
                }
            },
            "delete": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete a user by id",
                "responses": {
                    "200": {"description": "deleted"},
                    "403": {"description": "insufficient privilege"}
                }
            }
        },
        "/groups": {
            "get": {
                "tags": ["groups"],
                "security": [{"BearerAuth": []}],
                "summary": "List groups with their members",
                "responses": {"200": {"description": "group list"}}
            },
            "post": {
                "tags": ["groups"],
                "security": [{"BearerAuth": []}],
                "summary": "Create a group",
                "responses": {"201": {"description": "created group"}}
            }
        },
        "/groups/{id}": {
            "get": {
                "tags": ["groups"],
                "security": [{"BearerAuth": []}],
                "summary": "Get a group by id",
                "responses": {
                    "200": {"description": "group"},
                    "404": {"description": "group not found"}
                }
            },
            "patch": {
                "tags": ["groups"],
                "security": [{"BearerAuth": []}],
                "summary": "Rename a group",
                "responses": {
                    "200": {"description": "renamed group"},
                    "404": {"description": "group not found"}
                }
            },
            "delete": {
                "tags": ["groups"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete an empty group",
                "responses": {
                    "200": {"description": "deleted"},
                    "409": {"description": "group still has members"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and JWT token."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "UserHub API",
	Description:      "User-account and authentication backend: JWT auth with refresh rotation, password reset, role and group scoped authorization, user and group management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
