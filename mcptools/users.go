package mcptools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"quest-rewards-system/models"
	"quest-rewards-system/services"
)

// ValidateInput is empty; the tool proves the server is ours.
type ValidateInput struct{}

// ValidateResult carries the operator phone number expected by clients.
type ValidateResult struct {
	Number string `json:"number" jsonschema:"operator phone number in {country_code}{number} format"`
}

func ValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "validate",
		Description: "Returns the operator phone number for server validation",
	}
}

func ValidateHandler() mcp.ToolHandlerFor[ValidateInput, ValidateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ValidateInput) (*mcp.CallToolResult, ValidateResult, error) {
		return nil, ValidateResult{Number: os.Getenv("MY_NUMBER")}, nil
	}
}

type HealthCheckInput struct{}

type HealthCheckResult struct {
	Status  string `json:"status" jsonschema:"service health status"`
	Service string `json:"service" jsonschema:"service name"`
}

func HealthCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "health_check",
		Description: "Reports whether the quest rewards service is healthy",
	}
}

func HealthCheckHandler(economy *services.EconomyService) mcp.ToolHandlerFor[HealthCheckInput, HealthCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ HealthCheckInput) (*mcp.CallToolResult, HealthCheckResult, error) {
		return nil, HealthCheckResult{Status: "healthy", Service: "quest-rewards-system"}, nil
	}
}

// RegisterUserInput identifies or creates a player profile.
type RegisterUserInput struct {
	UserID string `json:"user_id" jsonschema:"unique user identifier"`
	Name   string `json:"name,omitempty" jsonschema:"optional display name"`
}

type RegisterUserResult struct {
	User    *models.User `json:"user" jsonschema:"the registered user"`
	Message string       `json:"message" jsonschema:"human-readable confirmation"`
}

func RegisterUserTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "register_user",
		Description: "Registers a user (or fetches an existing one), optionally setting the display name",
	}
}

func RegisterUserHandler(economy *services.EconomyService) mcp.ToolHandlerFor[RegisterUserInput, RegisterUserResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RegisterUserInput) (*mcp.CallToolResult, RegisterUserResult, error) {
		user, err := economy.GetOrCreateUser(input.UserID, input.Name)
		if err != nil {
			return nil, RegisterUserResult{}, err
		}
		return nil, RegisterUserResult{
			User:    user,
			Message: fmt.Sprintf("🎮 Welcome, %s! You have %d XP.", user.Name, user.TotalXP),
		}, nil
	}
}

// UserProfileInput selects the profile to report.
type UserProfileInput struct {
	UserID string `json:"user_id" jsonschema:"unique user identifier"`
}

type UserProfileResult struct {
	Profile *services.Profile `json:"profile" jsonschema:"derived user stats"`
	Message string            `json:"message" jsonschema:"human-readable summary"`
}

func UserProfileTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "user_profile",
		Description: "Returns a user's XP, level, streak and quest statistics",
	}
}

func UserProfileHandler(economy *services.EconomyService) mcp.ToolHandlerFor[UserProfileInput, UserProfileResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UserProfileInput) (*mcp.CallToolResult, UserProfileResult, error) {
		profile, err := economy.GetProfile(input.UserID)
		if err != nil {
			return nil, UserProfileResult{}, err
		}
		message := fmt.Sprintf("🏅 %s — Level %d (%d XP, %d to next level), 🔥 %d-day streak, %d quests completed",
			profile.User.Name, profile.Level, profile.User.TotalXP, profile.XPToNext,
			profile.User.StreakDays, profile.TotalQuests)
		return nil, UserProfileResult{Profile: profile, Message: message}, nil
	}
}
