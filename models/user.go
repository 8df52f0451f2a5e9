package models

import "time"

// User is the authoritative ledger record for one adventurer.
// The in-memory copy owned by the services is the source of truth;
// postgres rows are a best-effort mirror written by the mirror worker.
type User struct {
	ID              string     `gorm:"primaryKey" json:"user_id"`
	Name            string     `gorm:"not null" json:"name"`
	TotalXP         int        `gorm:"default:0" json:"total_xp"`
	DailyXP         int        `gorm:"default:0" json:"daily_xp"`
	LastDailyReset  time.Time  `json:"last_daily_reset"`
	QuestsCompleted []string   `gorm:"serializer:json" json:"quests_completed"`
	StreakDays      int        `gorm:"default:0" json:"streak_days"`
	LastQuestDate   *time.Time `json:"last_quest_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasCompleted reports whether the quest is already in the completed set.
// Membership is the invariant; the slice keeps insertion order for display.
func (u *User) HasCompleted(questID string) bool {
	for _, id := range u.QuestsCompleted {
		if id == questID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out after the user lock is released.
func (u *User) Clone() *User {
	cp := *u
	cp.QuestsCompleted = append([]string(nil), u.QuestsCompleted...)
	if u.LastQuestDate != nil {
		t := *u.LastQuestDate
		cp.LastQuestDate = &t
	}
	return &cp
}
