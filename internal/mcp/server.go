// Package mcp exposes the Treinos workout account as MCP tools so
// assistants can browse and manage workouts through the local session.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/guissxs/treinocli/internal/session"
)

// New creates an MCP server with all tools and resources registered. When
// readOnly is set, the mutating tools are left out.
func New(ds DataSource, guard *session.Guard, version string, readOnly bool, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Treinos", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Treinos workout tracker. List, inspect, create, and delete the logged-in user's workouts. Dates use YYYY-MM-DD."),
	)

	h := &handlers{ds: ds, guard: guard, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
	)
	if !readOnly {
		s.AddTools(
			server.ServerTool{Tool: toolCreateWorkout, Handler: h.createWorkout},
			server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		)
	}

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds    DataSource
	guard *session.Guard
	log   *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"treinos://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The logged-in user's workouts, newest first"),
	mcp.WithMIMEType("application/json"),
)
