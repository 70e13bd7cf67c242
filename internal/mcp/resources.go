package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// columnGuide describes one register column for MCP clients.
type columnGuide struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// registerColumns is the field guide served as the schema resource. Keeping
// it here, next to the tools that use the field names, stops the two from
// drifting apart.
var registerColumns = []columnGuide{
	{"rowIndex", "Opaque row locator. Read-only; required to address updates."},
	{"logbookNumber", "Club-issued logbook number."},
	{"ownerName", "Owner full name."},
	{"ownerPhone", "Owner phone number."},
	{"ownerMembershipNumber", "Owner club membership number."},
	{"year", "Vehicle year of manufacture."},
	{"makeModel", "Vehicle make and model."},
	{"regoNumber", "Registration plate number."},
	{"regoState", "State of registration."},
	{"vin", "Vehicle identification number."},
	{"engineNumber", "Engine number."},
	{"engineCylinders", "Engine cylinder count."},
	{"engineCapacity", "Engine capacity."},
	{"turbo", "Turbocharged: Y or N."},
	{"class", "Vehicle class."},
	{"colour", "Vehicle colour."},
}

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			"logbook://schema",
			"Logbook Register Columns",
			mcp.WithResourceDescription(
				"The columns of the vehicle logbook register, with the exact field "+
					"names used by the search and update tools.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleSchemaResource,
	)
}

// handleSchemaResource returns the register column guide as JSON.
func (s *MCPServer) handleSchemaResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	data, err := json.MarshalIndent(registerColumns, "", "  ")
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "logbook://schema",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
