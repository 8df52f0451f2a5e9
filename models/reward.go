package models

import "time"

// RewardType is the closed set of reward kinds.
type RewardType string

const (
	RewardTypeVoucher RewardType = "voucher"
	RewardTypeTShirt  RewardType = "tshirt"
	RewardTypeSticker RewardType = "sticker"
	RewardTypeBadge   RewardType = "badge"
)

// Reward is a fixed-catalog unlockable. GivenTo holds the user IDs that have
// claimed it; a user appears at most once.
type Reward struct {
	ID         string     `gorm:"primaryKey" json:"reward_id"`
	Title      string     `gorm:"not null" json:"title"`
	XPRequired int        `gorm:"not null" json:"xp_required"`
	RewardType RewardType `gorm:"not null" json:"reward_type"`
	GivenTo    []string   `gorm:"serializer:json" json:"given_to"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// ClaimedBy reports whether the user has already claimed this reward.
func (r *Reward) ClaimedBy(userID string) bool {
	for _, id := range r.GivenTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy safe to hand out after the catalog lock is released.
func (r *Reward) Clone() *Reward {
	cp := *r
	cp.GivenTo = append([]string(nil), r.GivenTo...)
	return &cp
}
