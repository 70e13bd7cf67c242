package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/logbookhq/logbook/internal/model"
)

// registerTools registers the logbook MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("logbook_search",
			mcp.WithDescription(
				"Search the vehicle logbook register. Each provided criterion matches "+
					"as a case-insensitive substring; criteria combine with AND. At least "+
					"one criterion is required. Returns matching records as JSON, "+
					"including the rowIndex needed for updates.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("logbook_number",
				mcp.Description("Logbook number to match"),
			),
			mcp.WithString("owner_name",
				mcp.Description("Owner name to match"),
			),
			mcp.WithString("rego_number",
				mcp.Description("Registration number to match"),
			),
		),
		s.handleSearch,
	)

	srv.AddTool(
		mcp.NewTool("logbook_login",
			mcp.WithDescription(
				"Log in to the logbook register. A session is required for "+
					"logbook_update_record; searching works without one. The session "+
					"lasts for the life of this MCP process.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("username",
				mcp.Required(),
				mcp.Description("Account username"),
			),
			mcp.WithString("password",
				mcp.Required(),
				mcp.Description("Account password"),
			),
		),
		s.handleLogin,
	)

	srv.AddTool(
		mcp.NewTool("logbook_update_record",
			mcp.WithDescription(
				"Replace a logbook record. Requires a prior logbook_login. Every "+
					"editable field is written, so pass ALL fields with their intended "+
					"values — an omitted field is written as blank. Fetch the current "+
					"record with logbook_search first, then send it back with your "+
					"changes. Last write wins; there is no conflict detection.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("row_index",
				mcp.Required(),
				mcp.Description("The rowIndex of the record, from logbook_search"),
			),
			mcp.WithString("logbook_number", mcp.Description("Logbook number")),
			mcp.WithString("owner_name", mcp.Description("Owner full name")),
			mcp.WithString("owner_phone", mcp.Description("Owner phone number")),
			mcp.WithString("owner_membership_number", mcp.Description("Owner club membership number")),
			mcp.WithString("year", mcp.Description("Vehicle year")),
			mcp.WithString("make_model", mcp.Description("Vehicle make and model")),
			mcp.WithString("rego_number", mcp.Description("Registration number")),
			mcp.WithString("rego_state", mcp.Description("Registration state")),
			mcp.WithString("vin", mcp.Description("Vehicle identification number")),
			mcp.WithString("engine_number", mcp.Description("Engine number")),
			mcp.WithString("engine_cylinders", mcp.Description("Engine cylinder count")),
			mcp.WithString("engine_capacity", mcp.Description("Engine capacity")),
			mcp.WithString("turbo", mcp.Description("Turbocharged, Y or N")),
			mcp.WithString("class", mcp.Description("Vehicle class")),
			mcp.WithString("colour", mcp.Description("Vehicle colour")),
		),
		s.handleUpdateRecord,
	)
}

// handleSearch queries the register with the given criteria.
func (s *MCPServer) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria := model.Criteria{
		LogbookNumber: optionalString(request, "logbook_number"),
		OwnerName:     optionalString(request, "owner_name"),
		RegoNumber:    optionalString(request, "rego_number"),
	}

	results, err := s.vehicleSvc.Search(ctx, criteria)
	if err != nil {
		return toolError("search failed: %v", err)
	}

	return successJSON(map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// handleLogin establishes the process-lifetime session used by mutating
// tools. The password is consumed here and never echoed back.
func (s *MCPServer) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := requireString(request, "username")
	if err != nil {
		return toolError("%v", err)
	}
	password, err := requireString(request, "password")
	if err != nil {
		return toolError("%v", err)
	}

	sess, _, err := s.authSvc.Login(ctx, username, password)
	if err != nil {
		return toolError("login failed: %v", err)
	}
	s.setSession(sess)
	s.logger.Info("MCP session established", "username", sess.Username)

	return successJSON(map[string]interface{}{
		"username": sess.Username,
		"role":     string(sess.Role),
	})
}

// handleUpdateRecord submits a full record edit using the session from
// logbook_login.
func (s *MCPServer) handleUpdateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := s.currentSession()
	if sess == nil {
		return toolError("not logged in: call logbook_login first")
	}

	rowIndex, err := requireString(request, "row_index")
	if err != nil {
		return toolError("%v", err)
	}

	record := model.VehicleRecord{
		RowIndex:              rowIndex,
		LogbookNumber:         optionalString(request, "logbook_number"),
		OwnerName:             optionalString(request, "owner_name"),
		OwnerPhone:            optionalString(request, "owner_phone"),
		OwnerMembershipNumber: optionalString(request, "owner_membership_number"),
		Year:                  optionalString(request, "year"),
		MakeModel:             optionalString(request, "make_model"),
		RegoNumber:            optionalString(request, "rego_number"),
		RegoState:             optionalString(request, "rego_state"),
		VIN:                   optionalString(request, "vin"),
		EngineNumber:          optionalString(request, "engine_number"),
		EngineCylinders:       optionalString(request, "engine_cylinders"),
		EngineCapacity:        optionalString(request, "engine_capacity"),
		Turbo:                 optionalString(request, "turbo"),
		Class:                 optionalString(request, "class"),
		Colour:                optionalString(request, "colour"),
	}

	if err := s.vehicleSvc.UpdateRecord(ctx, sess, record); err != nil {
		return toolError("update failed: %v", err)
	}

	return successJSON(map[string]interface{}{
		"success":  true,
		"rowIndex": rowIndex,
	})
}
