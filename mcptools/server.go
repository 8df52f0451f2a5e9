// Package mcptools exposes the quest economy as MCP tools over streamable
// HTTP, mirroring the surface of the HTTP API.
package mcptools

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"quest-rewards-system/services"
)

const serverVersion = "1.0.0"

// NewServer builds the MCP server with every quest economy tool registered.
func NewServer(economy *services.EconomyService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "quest-rewards-system",
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, ValidateTool(), ValidateHandler())
	mcp.AddTool(server, HealthCheckTool(), HealthCheckHandler(economy))
	mcp.AddTool(server, RegisterUserTool(), RegisterUserHandler(economy))
	mcp.AddTool(server, UserProfileTool(), UserProfileHandler(economy))
	mcp.AddTool(server, CreateQuestTool(), CreateQuestHandler(economy))
	mcp.AddTool(server, ListQuestsTool(), ListQuestsHandler(economy))
	mcp.AddTool(server, CompleteQuestTool(), CompleteQuestHandler(economy))
	mcp.AddTool(server, SubmitProofTool(), SubmitProofHandler(economy))
	mcp.AddTool(server, ReviewSubmissionTool(), ReviewSubmissionHandler(economy))
	mcp.AddTool(server, ListRewardsTool(), ListRewardsHandler(economy))
	mcp.AddTool(server, ClaimRewardTool(), ClaimRewardHandler(economy))

	return server
}

// HTTPHandler wraps the MCP server in a streamable HTTP handler, mountable
// under the fiber app via the net/http adaptor.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
