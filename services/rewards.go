package services

import (
	"sync"

	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"

	"quest-rewards-system/models"
)

// RewardService owns the reward catalog and the claimed-by sets. Claims are
// serialized per catalog so a user can never be appended to given_to twice.
type RewardService struct {
	clock  Clock
	mirror Mirror

	mu      sync.RWMutex
	rewards map[string]*models.Reward
	order   []string
}

func NewRewardService(clock Clock, mirror Mirror) *RewardService {
	return &RewardService{
		clock:   clock,
		mirror:  mirror,
		rewards: make(map[string]*models.Reward),
	}
}

// List returns copies of all rewards in catalog order.
func (s *RewardService) List() []*models.Reward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Reward, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rewards[id].Clone())
	}
	return out
}

// NewlyUnlocked returns rewards the user now qualifies for but has not
// claimed. Pure read; call sites decide whether to surface them as new.
func (s *RewardService) NewlyUnlocked(userID string, totalXP int) []*models.Reward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reward
	for _, id := range s.order {
		reward := s.rewards[id]
		if totalXP >= reward.XPRequired && !reward.ClaimedBy(userID) {
			out = append(out, reward.Clone())
		}
	}
	return out
}

// Claim appends the user to the reward's given_to set. totalXP must be the
// user's XP read fresh under the user lock so the threshold check cannot
// race an award.
func (s *RewardService) Claim(userID, rewardID string, totalXP int) (*models.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reward, ok := s.rewards[rewardID]
	if !ok {
		return nil, Errorf(ErrNotFound, "reward %s not found", rewardID)
	}
	if totalXP < reward.XPRequired {
		return nil, Errorf(ErrInsufficientXP, "need %d more XP to claim this reward", reward.XPRequired-totalXP)
	}
	if reward.ClaimedBy(userID) {
		return nil, Errorf(ErrInvalidState, "reward already claimed")
	}

	reward.GivenTo = append(reward.GivenTo, userID)
	snapshot := reward.Clone()
	s.mirror.UpsertReward(snapshot)
	log.WithFields(log.Fields{
		"reward_id": rewardID,
		"user_id":   userID,
	}).Info("reward claimed")
	return snapshot, nil
}

type seedReward struct {
	title      string
	xpRequired int
	rewardType models.RewardType
}

var defaultRewards = []seedReward{
	{title: "First Quest Badge", xpRequired: 0, rewardType: models.RewardTypeBadge},
	{title: "Eco Warrior Sticker", xpRequired: 25, rewardType: models.RewardTypeSticker},
	{title: "Streak Master T-Shirt", xpRequired: 100, rewardType: models.RewardTypeTShirt},
	{title: "XP Champion Voucher", xpRequired: 500, rewardType: models.RewardTypeVoucher},
}

// SeedDefaults populates the fixed reward catalog. Only runs when empty.
func (s *RewardService) SeedDefaults() {
	s.mu.Lock()
	if len(s.rewards) > 0 {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now().UTC()
	seeded := make([]*models.Reward, 0, len(defaultRewards))
	for _, d := range defaultRewards {
		reward := &models.Reward{
			ID:         slug.Make(d.title),
			Title:      d.title,
			XPRequired: d.xpRequired,
			RewardType: d.rewardType,
			CreatedAt:  now,
		}
		s.rewards[reward.ID] = reward
		s.order = append(s.order, reward.ID)
		seeded = append(seeded, reward.Clone())
	}
	s.mu.Unlock()

	for _, reward := range seeded {
		s.mirror.UpsertReward(reward)
	}
	log.WithField("count", len(seeded)).Info("default rewards seeded")
}
