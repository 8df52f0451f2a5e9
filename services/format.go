package services

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quest-rewards-system/models"
)

// Presentation helpers over the closed enumerations. Pure functions, kept
// apart from all state mutation.

var titleCaser = cases.Title(language.English)

var questTypeEmoji = map[models.QuestType]string{
	models.QuestTypeClimate:  "🌱",
	models.QuestTypeSocial:   "🤝",
	models.QuestTypePersonal: "📚",
}

var rewardTypeEmoji = map[models.RewardType]string{
	models.RewardTypeVoucher: "🎫",
	models.RewardTypeTShirt:  "👕",
	models.RewardTypeSticker: "🏷️",
	models.RewardTypeBadge:   "🏆",
}

// QuestTypeLabel returns the display label for a quest type, e.g. "Climate".
func QuestTypeLabel(t models.QuestType) string {
	return titleCaser.String(string(t))
}

// RewardTypeLabel returns the display label for a reward type.
func RewardTypeLabel(t models.RewardType) string {
	return titleCaser.String(string(t))
}

// QuestTypeEmoji returns the icon for a quest type, or empty for unknown.
func QuestTypeEmoji(t models.QuestType) string {
	return questTypeEmoji[t]
}

// RewardTypeEmoji returns the icon for a reward type, or empty for unknown.
func RewardTypeEmoji(t models.RewardType) string {
	return rewardTypeEmoji[t]
}
