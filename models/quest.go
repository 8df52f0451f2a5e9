package models

import "time"

// QuestType is the closed set of quest categories.
type QuestType string

const (
	QuestTypeClimate  QuestType = "climate"
	QuestTypeSocial   QuestType = "social"
	QuestTypePersonal QuestType = "personal"
)

// Valid reports whether t is one of the known quest types.
func (t QuestType) Valid() bool {
	switch t {
	case QuestTypeClimate, QuestTypeSocial, QuestTypePersonal:
		return true
	}
	return false
}

// VerificationMethod decides whether completion needs an approved proof review.
type VerificationMethod string

const (
	VerificationManual VerificationMethod = "manual"
	VerificationAuto   VerificationMethod = "auto"
)

// Quest is immutable after creation. XPReward already includes the golden
// doubling — it is baked in once at creation and never reapplied.
type Quest struct {
	ID                 string             `gorm:"primaryKey" json:"quest_id"`
	Title              string             `gorm:"not null" json:"title"`
	Description        string             `json:"description"`
	XPReward           int                `gorm:"not null" json:"xp_reward"`
	QuestType          QuestType          `gorm:"index;not null" json:"quest_type"`
	VerificationMethod VerificationMethod `gorm:"default:manual" json:"verification_method"`
	CreatedBy          string             `gorm:"not null" json:"created_by"` // "admin" or a user ID
	IsGolden           bool               `gorm:"default:false" json:"is_golden"`
	Program            string             `json:"program,omitempty"` // e.g. "eco_hero"
	CreatedAt          time.Time          `json:"created_at" gorm:"autoCreateTime"`
}
