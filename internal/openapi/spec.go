// Package openapi builds the machine-readable description of the logbook
// HTTP API.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// vehicleFields are the editable columns of a logbook record, in sheet
// order. RowIndex is separate: read-only in responses, addressed by URL in
// updates.
var vehicleFields = []string{
	"logbookNumber",
	"ownerName",
	"ownerPhone",
	"ownerMembershipNumber",
	"year",
	"makeModel",
	"regoNumber",
	"regoState",
	"vin",
	"engineNumber",
	"engineCylinders",
	"engineCapacity",
	"turbo",
	"class",
	"colour",
}

// Spec generates the OpenAPI 3.1 document for the logbook API. The API
// surface is fixed, so the document is built programmatically rather than
// maintained as a YAML artifact that can drift from the routes.
func Spec() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Logbook API",
			Description: "Search and edit the club vehicle logbook register.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: "/"},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["cookieAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: "logbook_session",
		},
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"cookieAuth": {}},
		{"bearerAuth": {}},
	}

	doc.Components.Schemas["ErrorResponse"] = errorResponseSchema()
	doc.Components.Schemas["VehicleRecord"] = vehicleRecordSchema()
	doc.Components.Schemas["UserSummary"] = userSummarySchema()

	doc.Paths = openapi3.NewPaths()
	addSessionPaths(doc)
	addVehiclePaths(doc)
	addUserPaths(doc)
	addSystemPaths(doc)

	// Populate the Value of each internal $ref so the document validates;
	// refs built by hand are otherwise left unresolved by kin-openapi.
	_ = openapi3.NewLoader().ResolveRefsIn(doc, nil)

	return doc
}

func errorResponseSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    schemaOf("integer"),
							"kind":    schemaOf("string"),
							"message": schemaOf("string"),
						},
					},
				},
			},
		},
	}
}

func vehicleRecordSchema() *openapi3.SchemaRef {
	props := openapi3.Schemas{
		"rowIndex": {
			Value: &openapi3.Schema{
				Type:        &openapi3.Types{"string"},
				Description: "Opaque row locator. Never edited directly.",
			},
		},
	}
	for _, f := range vehicleFields {
		props[f] = schemaOf("string")
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func userSummarySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"username":  schemaOf("string"),
				"createdAt": schemaOf("string"),
				"createdBy": schemaOf("string"),
			},
		},
	}
}

func addSessionPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/v1/session", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "login",
			Summary:     "Log in with username and password",
			Security:    &openapi3.SecurityRequirements{},
			RequestBody: jsonRequestBody(&openapi3.Schema{
				Type:     &openapi3.Types{"object"},
				Required: []string{"username", "password"},
				Properties: openapi3.Schemas{
					"username": schemaOf("string"),
					"password": schemaOf("string"),
				},
			}),
			Responses: standardResponses("Session created", &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"session_token": schemaOf("string"),
					"token_type":    schemaOf("string"),
					"expires_in":    schemaOf("integer"),
					"username":      schemaOf("string"),
					"role":          schemaOf("string"),
				},
			}),
		},
		Get: &openapi3.Operation{
			OperationID: "whoami",
			Summary:     "Describe the current session",
			Responses: standardResponses("Session details", &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"username": schemaOf("string"),
					"role":     schemaOf("string"),
				},
			}),
		},
		Delete: &openapi3.Operation{
			OperationID: "logout",
			Summary:     "Log out and destroy the session",
			Responses:   standardResponses("Logged out", successSchema()),
		},
	})

	doc.Paths.Set("/api/v1/session/password", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "changePassword",
			Summary:     "Change the caller's password",
			RequestBody: jsonRequestBody(&openapi3.Schema{
				Type:     &openapi3.Types{"object"},
				Required: []string{"current_password", "new_password", "confirm_password"},
				Properties: openapi3.Schemas{
					"current_password": schemaOf("string"),
					"new_password":     schemaOf("string"),
					"confirm_password": schemaOf("string"),
				},
			}),
			Responses: standardResponses("Password changed", successSchema()),
		},
	})
}

func addVehiclePaths(doc *openapi3.T) {
	doc.Paths.Set("/api/v1/vehicles", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "searchVehicles",
			Summary:     "Search the logbook register",
			Description: "Each non-blank criterion matches as a case-insensitive substring; criteria combine with AND. At least one criterion is required. No session is required for read-only search.",
			Security:    &openapi3.SecurityRequirements{},
			Parameters: openapi3.Parameters{
				queryParam("logbookNumber"),
				queryParam("ownerName"),
				queryParam("regoNumber"),
			},
			Responses: standardResponses("Matching records", &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"results": {
						Value: &openapi3.Schema{
							Type:  &openapi3.Types{"array"},
							Items: refSchema("VehicleRecord"),
						},
					},
					"meta": {
						Value: &openapi3.Schema{
							Type: &openapi3.Types{"object"},
							Properties: openapi3.Schemas{
								"count":   schemaOf("integer"),
								"took_ms": schemaOf("number"),
							},
						},
					},
				},
			}),
		},
	})

	doc.Paths.Set("/api/v1/vehicles/{rowIndex}", &openapi3.PathItem{
		Put: &openapi3.Operation{
			OperationID: "updateVehicle",
			Summary:     "Replace a logbook record",
			Description: "Every editable field is written. Last write wins; re-run the search afterwards for a fresh view.",
			Parameters: openapi3.Parameters{
				{
					Value: &openapi3.Parameter{
						Name:     "rowIndex",
						In:       "path",
						Required: true,
						Schema:   schemaOf("string"),
					},
				},
			},
			RequestBody: jsonRequestBody(vehicleRecordSchema().Value),
			Responses:   standardResponses("Record updated", successSchema()),
		},
	})
}

func addUserPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/v1/users", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listUsers",
			Summary:     "List user accounts (admin only)",
			Responses: standardResponses("User accounts", &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"users": {
						Value: &openapi3.Schema{
							Type:  &openapi3.Types{"array"},
							Items: refSchema("UserSummary"),
						},
					},
				},
			}),
		},
		Post: &openapi3.Operation{
			OperationID: "addUser",
			Summary:     "Create a user account (admin only)",
			RequestBody: jsonRequestBody(&openapi3.Schema{
				Type:     &openapi3.Types{"object"},
				Required: []string{"username"},
				Properties: openapi3.Schemas{
					"username": schemaOf("string"),
				},
			}),
			Responses: standardResponses("User created", &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"username":         schemaOf("string"),
					"default_password": schemaOf("string"),
				},
			}),
		},
	})

	doc.Paths.Set("/api/v1/users/{username}", &openapi3.PathItem{
		Delete: &openapi3.Operation{
			OperationID: "deleteUser",
			Summary:     "Delete a user account (admin only)",
			Parameters: openapi3.Parameters{
				{
					Value: &openapi3.Parameter{
						Name:     "username",
						In:       "path",
						Required: true,
						Schema:   schemaOf("string"),
					},
				},
			},
			Responses: standardResponses("User deleted", successSchema()),
		},
	})
}

func addSystemPaths(doc *openapi3.T) {
	doc.Paths.Set("/healthz", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "healthz",
			Summary:     "Liveness probe",
			Security:    &openapi3.SecurityRequirements{},
			Responses:   standardResponses("Process is up", statusSchema()),
		},
	})
	doc.Paths.Set("/readyz", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "readyz",
			Summary:     "Readiness probe, pings the upstream gateway",
			Security:    &openapi3.SecurityRequirements{},
			Responses:   standardResponses("Gateway reachable", statusSchema()),
		},
	})
}

// ---------------------------------------------------------------------------
// Schema helpers
// ---------------------------------------------------------------------------

func schemaOf(t string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{t}}}
}

func refSchema(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func successSchema() *openapi3.Schema {
	return &openapi3.Schema{
		Type: &openapi3.Types{"object"},
		Properties: openapi3.Schemas{
			"success": schemaOf("boolean"),
			"message": schemaOf("string"),
		},
	}
}

func statusSchema() *openapi3.Schema {
	return &openapi3.Schema{
		Type: &openapi3.Types{"object"},
		Properties: openapi3.Schemas{
			"status": schemaOf("string"),
		},
	}
}

func queryParam(name string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:   name,
			In:     "query",
			Schema: schemaOf("string"),
		},
	}
}

func jsonRequestBody(schema *openapi3.Schema) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Value: schema},
				},
			},
		},
	}
}

func standardResponses(okDescription string, okSchema *openapi3.Schema) *openapi3.Responses {
	responses := openapi3.NewResponses()
	responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &okDescription,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Value: okSchema},
				},
			},
		},
	})
	errDescription := "Error"
	responses.Set("default", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &errDescription,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: refSchema("ErrorResponse"),
				},
			},
		},
	})
	return responses
}
