// handlers/quest_routes.go
package handlers

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"quest-rewards-system/middleware"
	"quest-rewards-system/models"
	"quest-rewards-system/services"
	"quest-rewards-system/utils"
)

func SetupQuestRoutes(app *fiber.App, economy *services.EconomyService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "quest-rewards-system"})
	})

	authToken := os.Getenv("AUTH_TOKEN")
	reviewToken := os.Getenv("REVIEW_TOKEN")
	if reviewToken == "" {
		reviewToken = authToken
	}

	// 🔐 User surface — static bearer token
	api := app.Group("/api/v1", middleware.BearerAuth(authToken))

	api.Get("/validate", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"number": os.Getenv("MY_NUMBER")})
	})

	api.Post("/users/register", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			Name   string `json:"name"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		user, err := economy.GetOrCreateUser(req.UserID, req.Name)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(user)
	})

	api.Get("/users/:id/profile", func(c *fiber.Ctx) error {
		profile, err := economy.GetProfile(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(profile)
	})

	api.Post("/quests", func(c *fiber.Ctx) error {
		type Req struct {
			CreatorID   string `json:"creator_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			XPReward    int    `json:"xp_reward"`
			QuestType   string `json:"quest_type"`
			IsGolden    bool   `json:"is_golden"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		quest, err := economy.CreateQuest(req.CreatorID, req.Title, req.Description,
			req.XPReward, models.QuestType(req.QuestType), req.IsGolden)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(quest)
	})

	api.Get("/quests", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		typeFilter := models.QuestType(c.Query("type"))
		includeCompleted := c.QueryBool("include_completed", false)

		quests, err := economy.ListQuests(userID, typeFilter, includeCompleted)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"quests": quests, "count": len(quests)})
	})

	api.Post("/quests/:id/complete", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := economy.CompleteQuest(req.UserID, c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(result)
	})

	api.Post("/submissions", func(c *fiber.Ctx) error {
		userID := c.FormValue("user_id")
		questID := c.FormValue("quest_id")
		proofURL := c.FormValue("proof_url")
		proofText := c.FormValue("proof_text")

		// JSON bodies are accepted too; multipart is only needed for uploads.
		if userID == "" && questID == "" {
			type Req struct {
				UserID    string `json:"user_id"`
				QuestID   string `json:"quest_id"`
				ProofURL  string `json:"proof_url"`
				ProofText string `json:"proof_text"`
			}
			var req Req
			if err := c.BodyParser(&req); err == nil {
				userID, questID = req.UserID, req.QuestID
				proofURL, proofText = req.ProofURL, req.ProofText
			}
		}

		if fileHeader, err := c.FormFile("proof_file"); err == nil {
			if !utils.ProofStoreEnabled() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "proof uploads are not configured, send proof_url instead",
				})
			}
			key := fmt.Sprintf("proofs/%s/%s", uuid.NewString(), fileHeader.Filename)
			url, uploadErr := utils.UploadProofFile(fileHeader, key)
			if uploadErr != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "proof upload failed",
					"cause": uploadErr.Error(),
				})
			}
			proofURL = url
		}

		sub, err := economy.SubmitProof(userID, questID, proofURL, proofText)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	api.Get("/rewards", func(c *fiber.Ctx) error {
		rewards, err := economy.ListRewards(c.Query("user_id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"rewards": rewards, "count": len(rewards)})
	})

	api.Post("/rewards/:id/claim", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		reward, err := economy.ClaimReward(req.UserID, c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "reward claimed",
			"reward":  reward,
		})
	})

	// 🔐 Reviewer surface — separate token
	review := app.Group("/api/v1/review", middleware.BearerAuth(reviewToken))

	review.Post("/submissions/:id", func(c *fiber.Ctx) error {
		type Req struct {
			ReviewerID string `json:"reviewer_id"`
			Approve    bool   `json:"approve"`
			Notes      string `json:"notes"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := economy.ReviewSubmission(req.ReviewerID, c.Params("id"), req.Approve, req.Notes)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(result)
	})
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientXP):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
