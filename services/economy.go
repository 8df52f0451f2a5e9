package services

import (
	log "github.com/sirupsen/logrus"

	"quest-rewards-system/models"
)

// Level progression for profiles: every 50 XP is one level.
const xpPerLevel = 50

// CompletionStatus describes the outcome of a completion attempt. Needing
// proof or hitting the daily cap are guidance responses, not errors.
type CompletionStatus string

const (
	CompletionCompleted  CompletionStatus = "completed"
	CompletionNeedsProof CompletionStatus = "needs_proof"
	CompletionCapReached CompletionStatus = "daily_cap_reached"
)

// CompletionResult is the outcome of CompleteQuest or an approved review.
type CompletionResult struct {
	Status      CompletionStatus `json:"status"`
	Quest       *models.Quest    `json:"quest"`
	User        *models.User     `json:"user"`
	XPGained    int              `json:"xp_gained"`
	BaseXP      int              `json:"base_xp"`
	StreakBonus int              `json:"streak_bonus"`
	NewRewards  []*models.Reward `json:"new_rewards,omitempty"`
}

// ReviewResult is the outcome of ReviewSubmission.
type ReviewResult struct {
	Submission       *models.Submission `json:"submission"`
	Quest            *models.Quest      `json:"quest,omitempty"`
	XPGained         int                `json:"xp_gained"`
	QuestCompleted   bool               `json:"quest_completed"`
	AlreadyCompleted bool               `json:"already_completed"`
	CapReached       bool               `json:"cap_reached"`
}

// QuestView decorates a quest with the calling user's completion state.
type QuestView struct {
	*models.Quest
	IsCompleted bool `json:"is_completed"`
}

// RewardView decorates a reward with the calling user's eligibility.
type RewardView struct {
	*models.Reward
	Unlocked    bool `json:"unlocked"`
	Claimed     bool `json:"claimed"`
	XPRemaining int  `json:"xp_remaining"`
}

// Profile is the derived stats view for a user.
type Profile struct {
	User        *models.User      `json:"user"`
	Level       int               `json:"level"`
	XPToNext    int               `json:"xp_to_next_level"`
	TotalQuests int               `json:"total_quests"`
	QuestCounts map[string]int    `json:"quest_counts"`
	StreakBonus int               `json:"streak_bonus"`
}

// EconomyService composes the ledger, catalogs and review workflow into the
// quest-completion state machine. It is the only component that mutates
// users, submission statuses or reward claim sets.
type EconomyService struct {
	clock       Clock
	users       *UserService
	quests      *QuestService
	submissions *SubmissionService
	rewards     *RewardService
}

func NewEconomyService(clock Clock, users *UserService, quests *QuestService, submissions *SubmissionService, rewards *RewardService) *EconomyService {
	return &EconomyService{
		clock:       clock,
		users:       users,
		quests:      quests,
		submissions: submissions,
		rewards:     rewards,
	}
}

// GetOrCreateUser registers or fetches a user, optionally setting the
// display name, and returns a rolled-over snapshot.
func (e *EconomyService) GetOrCreateUser(userID, name string) (*models.User, error) {
	return e.users.Rename(userID, name)
}

// CreateQuest adds a user- or admin-created quest to the catalog.
func (e *EconomyService) CreateQuest(creatorID, title, description string, xpReward int, questType models.QuestType, isGolden bool) (*models.Quest, error) {
	if creatorID == "" {
		return nil, Errorf(ErrInvalidInput, "creator_id is required")
	}
	return e.quests.Create(creatorID, title, description, xpReward, questType, isGolden)
}

// ListQuests returns the catalog decorated with the user's completion state,
// optionally filtered by type and excluding completed quests.
func (e *EconomyService) ListQuests(userID string, typeFilter models.QuestType, includeCompleted bool) ([]QuestView, error) {
	user, err := e.users.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	quests := e.quests.List(typeFilter)
	out := make([]QuestView, 0, len(quests))
	for _, quest := range quests {
		completed := user.HasCompleted(quest.ID)
		if completed && !includeCompleted {
			continue
		}
		out = append(out, QuestView{Quest: quest, IsCompleted: completed})
	}
	return out, nil
}

// CompleteQuest runs the completion state machine for the auto-verified path
// and for manual quests that already have an approved submission:
// rollover, already-completed guard, manual-verification gate, cap check,
// award, newly-unlocked reward scan. The whole sequence holds the user's
// exclusive lock.
func (e *EconomyService) CompleteQuest(userID, questID string) (*CompletionResult, error) {
	quest, err := e.quests.Get(questID)
	if err != nil {
		return nil, err
	}

	var result *CompletionResult
	err = e.users.Do(userID, func(u *models.User) error {
		e.users.ApplyDailyRollover(u)

		if u.HasCompleted(questID) {
			return Errorf(ErrInvalidState, "quest already completed")
		}

		if quest.VerificationMethod == models.VerificationManual && !e.submissions.HasApproved(userID, questID) {
			result = &CompletionResult{Status: CompletionNeedsProof, Quest: quest, User: u.Clone()}
			return nil
		}

		gain := e.users.ComputeXPGain(u, quest.XPReward)
		if gain == 0 {
			result = &CompletionResult{Status: CompletionCapReached, Quest: quest, User: u.Clone()}
			return nil
		}

		bonus := e.users.StreakBonus(u)
		e.users.Award(u, gain, questID)
		result = &CompletionResult{
			Status:      CompletionCompleted,
			Quest:       quest,
			User:        u.Clone(),
			XPGained:    gain,
			BaseXP:      quest.XPReward,
			StreakBonus: bonus,
			NewRewards:  e.rewards.NewlyUnlocked(userID, u.TotalXP),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitProof records a pending proof submission for a quest.
func (e *EconomyService) SubmitProof(userID, questID, proofURL, proofText string) (*models.Submission, error) {
	if _, err := e.users.GetOrCreate(userID); err != nil {
		return nil, err
	}
	return e.submissions.Submit(userID, questID, proofURL, proofText)
}

// ReviewSubmission resolves a pending submission. Approval awards XP through
// the same rollover/gain/award sequence as CompleteQuest, with the same
// already-completed guard, so approving two submissions for one (user,
// quest) pair can never award twice. The terminal submission transition
// happens regardless, so duplicate approvals still resolve cleanly.
func (e *EconomyService) ReviewSubmission(reviewerID, submissionID string, approve bool, notes string) (*ReviewResult, error) {
	if reviewerID == "" {
		return nil, Errorf(ErrInvalidInput, "reviewer_id is required")
	}

	sub, err := e.submissions.Review(reviewerID, submissionID, approve, notes)
	if err != nil {
		return nil, err
	}

	result := &ReviewResult{Submission: sub}
	if !approve {
		return result, nil
	}

	quest, err := e.quests.Get(sub.QuestID)
	if err != nil {
		// Quests are never deleted, so a dangling quest ID is an
		// internal inconsistency; the review itself stands.
		log.WithFields(log.Fields{
			"submission_id": submissionID,
			"quest_id":      sub.QuestID,
		}).Warn("approved submission references unknown quest, no XP awarded")
		return result, nil
	}
	result.Quest = quest

	err = e.users.Do(sub.UserID, func(u *models.User) error {
		e.users.ApplyDailyRollover(u)

		if u.HasCompleted(quest.ID) {
			result.AlreadyCompleted = true
			return nil
		}

		gain := e.users.ComputeXPGain(u, quest.XPReward)
		if gain == 0 {
			result.CapReached = true
			return nil
		}

		e.users.Award(u, gain, quest.ID)
		result.XPGained = gain
		result.QuestCompleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProfile returns derived stats for a user after applying any due
// rollover.
func (e *EconomyService) GetProfile(userID string) (*Profile, error) {
	user, err := e.users.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, questID := range user.QuestsCompleted {
		if quest, err := e.quests.Get(questID); err == nil {
			counts[string(quest.QuestType)]++
		}
	}

	return &Profile{
		User:        user,
		Level:       user.TotalXP/xpPerLevel + 1,
		XPToNext:    xpPerLevel - user.TotalXP%xpPerLevel,
		TotalQuests: len(user.QuestsCompleted),
		QuestCounts: counts,
		StreakBonus: e.users.StreakBonus(user),
	}, nil
}

// ListRewards returns the catalog decorated with the user's claim state.
func (e *EconomyService) ListRewards(userID string) ([]RewardView, error) {
	user, err := e.users.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	rewards := e.rewards.List()
	out := make([]RewardView, 0, len(rewards))
	for _, reward := range rewards {
		view := RewardView{
			Reward:   reward,
			Unlocked: user.TotalXP >= reward.XPRequired,
			Claimed:  reward.ClaimedBy(userID),
		}
		if !view.Unlocked {
			view.XPRemaining = reward.XPRequired - user.TotalXP
		}
		out = append(out, view)
	}
	return out, nil
}

// ClaimReward claims a reward exactly once per user. The XP threshold is
// checked against the total read fresh under the user lock.
func (e *EconomyService) ClaimReward(userID, rewardID string) (*models.Reward, error) {
	var reward *models.Reward
	err := e.users.Do(userID, func(u *models.User) error {
		var claimErr error
		reward, claimErr = e.rewards.Claim(userID, rewardID, u.TotalXP)
		return claimErr
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// SweepRollovers applies the daily rollover to every known user. Rollover is
// lazy and idempotent on every operation; the sweep just keeps streak decay
// observable for idle users.
func (e *EconomyService) SweepRollovers() {
	swept := 0
	e.users.Each(func(userID string) {
		if err := e.users.Do(userID, func(u *models.User) error {
			e.users.ApplyDailyRollover(u)
			return nil
		}); err == nil {
			swept++
		}
	})
	log.WithField("users", swept).Debug("rollover sweep finished")
}
