package mcptools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"quest-rewards-system/models"
	"quest-rewards-system/services"
)

// CreateQuestInput describes a new quest for the catalog.
type CreateQuestInput struct {
	CreatorID   string `json:"creator_id" jsonschema:"user creating the quest"`
	Title       string `json:"title" jsonschema:"quest title"`
	Description string `json:"description,omitempty" jsonschema:"what the quest asks for"`
	XPReward    int    `json:"xp_reward" jsonschema:"base XP reward, 1-20"`
	QuestType   string `json:"quest_type" jsonschema:"climate, social or personal"`
	IsGolden    bool   `json:"is_golden,omitempty" jsonschema:"golden quests are worth double XP"`
}

type CreateQuestResult struct {
	Quest   *models.Quest `json:"quest" jsonschema:"the created quest"`
	Message string        `json:"message" jsonschema:"human-readable confirmation"`
}

func CreateQuestTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_quest",
		Description: "Creates a new quest worth 1-20 XP (doubled when golden)",
	}
}

func CreateQuestHandler(economy *services.EconomyService) mcp.ToolHandlerFor[CreateQuestInput, CreateQuestResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateQuestInput) (*mcp.CallToolResult, CreateQuestResult, error) {
		quest, err := economy.CreateQuest(input.CreatorID, input.Title, input.Description,
			input.XPReward, models.QuestType(input.QuestType), input.IsGolden)
		if err != nil {
			return nil, CreateQuestResult{}, err
		}
		golden := ""
		if quest.IsGolden {
			golden = " ⭐ GOLDEN"
		}
		message := fmt.Sprintf("%s Quest created: %s (%d XP)%s",
			services.QuestTypeEmoji(quest.QuestType), quest.Title, quest.XPReward, golden)
		return nil, CreateQuestResult{Quest: quest, Message: message}, nil
	}
}

// ListQuestsInput filters the quest catalog for a user.
type ListQuestsInput struct {
	UserID           string `json:"user_id" jsonschema:"unique user identifier"`
	QuestType        string `json:"quest_type,omitempty" jsonschema:"optional filter: climate, social or personal"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"include quests the user already completed"`
}

type ListQuestsResult struct {
	Quests  []services.QuestView `json:"quests" jsonschema:"available quests"`
	Count   int                  `json:"count" jsonschema:"number of quests returned"`
	Message string               `json:"message" jsonschema:"human-readable listing"`
}

func ListQuestsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_quests",
		Description: "Lists available quests, optionally filtered by type",
	}
}

func ListQuestsHandler(economy *services.EconomyService) mcp.ToolHandlerFor[ListQuestsInput, ListQuestsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListQuestsInput) (*mcp.CallToolResult, ListQuestsResult, error) {
		quests, err := economy.ListQuests(input.UserID, models.QuestType(input.QuestType), input.IncludeCompleted)
		if err != nil {
			return nil, ListQuestsResult{}, err
		}

		var lines []string
		for _, view := range quests {
			status := ""
			if view.IsCompleted {
				status = " ✅"
			}
			golden := ""
			if view.IsGolden {
				golden = " ⭐"
			}
			lines = append(lines, fmt.Sprintf("%s %s (%d XP)%s%s",
				services.QuestTypeEmoji(view.QuestType), view.Title, view.XPReward, golden, status))
		}
		message := "No quests available."
		if len(lines) > 0 {
			message = strings.Join(lines, "\n")
		}

		return nil, ListQuestsResult{Quests: quests, Count: len(quests), Message: message}, nil
	}
}

// CompleteQuestInput marks a quest completion attempt.
type CompleteQuestInput struct {
	UserID  string `json:"user_id" jsonschema:"unique user identifier"`
	QuestID string `json:"quest_id" jsonschema:"quest to complete"`
}

type CompleteQuestResult struct {
	Result  *services.CompletionResult `json:"result" jsonschema:"completion outcome with XP breakdown"`
	Message string                     `json:"message" jsonschema:"human-readable outcome"`
}

func CompleteQuestTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "complete_quest",
		Description: "Completes a quest and awards XP, honoring the daily cap and streak bonus",
	}
}

func CompleteQuestHandler(economy *services.EconomyService) mcp.ToolHandlerFor[CompleteQuestInput, CompleteQuestResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CompleteQuestInput) (*mcp.CallToolResult, CompleteQuestResult, error) {
		result, err := economy.CompleteQuest(input.UserID, input.QuestID)
		if err != nil {
			return nil, CompleteQuestResult{}, err
		}

		var message string
		switch result.Status {
		case services.CompletionNeedsProof:
			message = fmt.Sprintf("📸 %s needs proof. Submit it with submit_proof first.", result.Quest.Title)
		case services.CompletionCapReached:
			message = fmt.Sprintf("⏳ Daily XP cap reached (%d/day). Come back tomorrow!", services.DailyXPCap)
		default:
			message = fmt.Sprintf("🎉 Quest complete: %s! +%d XP (base %d, streak bonus %d). Total: %d XP.",
				result.Quest.Title, result.XPGained, result.BaseXP, result.StreakBonus, result.User.TotalXP)
			for _, reward := range result.NewRewards {
				message += fmt.Sprintf("\n🎁 Reward unlocked: %s %s", services.RewardTypeEmoji(reward.RewardType), reward.Title)
			}
		}

		return nil, CompleteQuestResult{Result: result, Message: message}, nil
	}
}

// SubmitProofInput attaches proof to a manual-verification quest.
type SubmitProofInput struct {
	UserID    string `json:"user_id" jsonschema:"unique user identifier"`
	QuestID   string `json:"quest_id" jsonschema:"quest the proof is for"`
	ProofURL  string `json:"proof_url,omitempty" jsonschema:"URL of a photo or document"`
	ProofText string `json:"proof_text,omitempty" jsonschema:"text description of the proof"`
}

type SubmitProofResult struct {
	Submission *models.Submission `json:"submission" jsonschema:"the pending submission"`
	Message    string             `json:"message" jsonschema:"human-readable confirmation"`
}

func SubmitProofTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "submit_proof",
		Description: "Submits proof for a manual-verification quest; a reviewer approves or rejects it",
	}
}

func SubmitProofHandler(economy *services.EconomyService) mcp.ToolHandlerFor[SubmitProofInput, SubmitProofResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SubmitProofInput) (*mcp.CallToolResult, SubmitProofResult, error) {
		sub, err := economy.SubmitProof(input.UserID, input.QuestID, input.ProofURL, input.ProofText)
		if err != nil {
			return nil, SubmitProofResult{}, err
		}
		return nil, SubmitProofResult{
			Submission: sub,
			Message:    fmt.Sprintf("📨 Proof submitted (%s). A reviewer will check it soon.", sub.ID),
		}, nil
	}
}

// ReviewSubmissionInput resolves a pending submission. The review token must
// match REVIEW_TOKEN when one is configured.
type ReviewSubmissionInput struct {
	ReviewerID   string `json:"reviewer_id" jsonschema:"reviewer identifier"`
	SubmissionID string `json:"submission_id" jsonschema:"submission to resolve"`
	Approve      bool   `json:"approve" jsonschema:"true to approve, false to reject"`
	Notes        string `json:"notes,omitempty" jsonschema:"optional review notes"`
	ReviewToken  string `json:"review_token,omitempty" jsonschema:"reviewer bearer token"`
}

type ReviewSubmissionResult struct {
	Result  *services.ReviewResult `json:"result" jsonschema:"review outcome"`
	Message string                 `json:"message" jsonschema:"human-readable outcome"`
}

func ReviewSubmissionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "review_submission",
		Description: "Approves or rejects a pending proof submission (reviewer token required)",
	}
}

func ReviewSubmissionHandler(economy *services.EconomyService) mcp.ToolHandlerFor[ReviewSubmissionInput, ReviewSubmissionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReviewSubmissionInput) (*mcp.CallToolResult, ReviewSubmissionResult, error) {
		reviewToken := os.Getenv("REVIEW_TOKEN")
		if reviewToken == "" {
			reviewToken = os.Getenv("AUTH_TOKEN")
		}
		if reviewToken != "" && input.ReviewToken != reviewToken {
			return nil, ReviewSubmissionResult{}, fmt.Errorf("invalid review token")
		}

		result, err := economy.ReviewSubmission(input.ReviewerID, input.SubmissionID, input.Approve, input.Notes)
		if err != nil {
			return nil, ReviewSubmissionResult{}, err
		}

		var message string
		switch {
		case !input.Approve:
			message = "❌ Submission rejected."
		case result.AlreadyCompleted:
			message = "✅ Approved, but the quest was already completed; no XP awarded."
		case result.CapReached:
			message = "✅ Approved, but the user hit the daily XP cap; no XP awarded today."
		default:
			message = fmt.Sprintf("✅ Approved! %d XP awarded for %s.", result.XPGained, result.Quest.Title)
		}

		return nil, ReviewSubmissionResult{Result: result, Message: message}, nil
	}
}
