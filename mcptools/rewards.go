package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"quest-rewards-system/models"
	"quest-rewards-system/services"
)

// ListRewardsInput selects the user whose claim state decorates the catalog.
type ListRewardsInput struct {
	UserID string `json:"user_id" jsonschema:"unique user identifier"`
}

type ListRewardsResult struct {
	Rewards []services.RewardView `json:"rewards" jsonschema:"reward catalog with claim state"`
	Count   int                   `json:"count" jsonschema:"number of rewards"`
	Message string                `json:"message" jsonschema:"human-readable listing"`
}

func ListRewardsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_rewards",
		Description: "Lists the reward catalog with claimed / ready / locked state per reward",
	}
}

func ListRewardsHandler(economy *services.EconomyService) mcp.ToolHandlerFor[ListRewardsInput, ListRewardsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListRewardsInput) (*mcp.CallToolResult, ListRewardsResult, error) {
		rewards, err := economy.ListRewards(input.UserID)
		if err != nil {
			return nil, ListRewardsResult{}, err
		}

		var lines []string
		for _, view := range rewards {
			var state string
			switch {
			case view.Claimed:
				state = "✅ claimed"
			case view.Unlocked:
				state = "🎉 ready to claim"
			default:
				state = fmt.Sprintf("🔒 %d XP to go", view.XPRemaining)
			}
			lines = append(lines, fmt.Sprintf("%s %s (%d XP) — %s",
				services.RewardTypeEmoji(view.RewardType), view.Title, view.XPRequired, state))
		}

		return nil, ListRewardsResult{
			Rewards: rewards,
			Count:   len(rewards),
			Message: strings.Join(lines, "\n"),
		}, nil
	}
}

// ClaimRewardInput claims an unlocked reward for a user.
type ClaimRewardInput struct {
	UserID   string `json:"user_id" jsonschema:"unique user identifier"`
	RewardID string `json:"reward_id" jsonschema:"reward to claim"`
}

type ClaimRewardResult struct {
	Reward  *models.Reward `json:"reward" jsonschema:"the claimed reward"`
	Message string         `json:"message" jsonschema:"human-readable confirmation"`
}

func ClaimRewardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "claim_reward",
		Description: "Claims an unlocked reward; each reward can be claimed once per user",
	}
}

func ClaimRewardHandler(economy *services.EconomyService) mcp.ToolHandlerFor[ClaimRewardInput, ClaimRewardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ClaimRewardInput) (*mcp.CallToolResult, ClaimRewardResult, error) {
		reward, err := economy.ClaimReward(input.UserID, input.RewardID)
		if err != nil {
			return nil, ClaimRewardResult{}, err
		}
		return nil, ClaimRewardResult{
			Reward: reward,
			Message: fmt.Sprintf("🎁 Claimed: %s %s! Check your inbox for details.",
				services.RewardTypeEmoji(reward.RewardType), reward.Title),
		}, nil
	}
}
