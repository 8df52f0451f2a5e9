package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"quest-rewards-system/models"
)

type economyFixture struct {
	clock   *clockwork.FakeClock
	users   *UserService
	quests  *QuestService
	subs    *SubmissionService
	rewards *RewardService
	economy *EconomyService
}

func newEconomyFixture(t *testing.T) *economyFixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testStart)
	users := NewUserService(clock, NopMirror{})
	quests := NewQuestService(clock, NopMirror{})
	subs := NewSubmissionService(clock, NopMirror{}, quests)
	rewards := NewRewardService(clock, NopMirror{})
	rewards.SeedDefaults()
	return &economyFixture{
		clock:   clock,
		users:   users,
		quests:  quests,
		subs:    subs,
		rewards: rewards,
		economy: NewEconomyService(clock, users, quests, subs, rewards),
	}
}

func (f *economyFixture) addAutoQuest(id string, xp int) *models.Quest {
	quest := &models.Quest{
		ID:                 id,
		Title:              id,
		XPReward:           xp,
		QuestType:          models.QuestTypePersonal,
		VerificationMethod: models.VerificationAuto,
		CreatedBy:          "admin",
		CreatedAt:          f.clock.Now().UTC(),
	}
	f.quests.insert(quest)
	return quest
}

func (f *economyFixture) addManualQuest(id string, xp int) *models.Quest {
	quest := &models.Quest{
		ID:                 id,
		Title:              id,
		XPReward:           xp,
		QuestType:          models.QuestTypeClimate,
		VerificationMethod: models.VerificationManual,
		CreatedBy:          "admin",
		CreatedAt:          f.clock.Now().UTC(),
	}
	f.quests.insert(quest)
	return quest
}

func TestCompleteQuestAwardsXP(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("run-5k", 5)

	result, err := f.economy.CompleteQuest("u1", "run-5k")
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if result.Status != CompletionCompleted {
		t.Fatalf("Status = %s, want completed", result.Status)
	}
	if result.XPGained != 5 || result.BaseXP != 5 || result.StreakBonus != 0 {
		t.Errorf("gain breakdown = %d/%d/%d, want 5/5/0", result.XPGained, result.BaseXP, result.StreakBonus)
	}
	if result.User.TotalXP != 5 || result.User.DailyXP != 5 {
		t.Errorf("user counters = %d/%d, want 5/5", result.User.TotalXP, result.User.DailyXP)
	}
	// 0-XP badge unlocks immediately but is not auto-claimed.
	if len(result.NewRewards) == 0 {
		t.Error("expected newly unlocked rewards")
	}
	reward, err := f.rewards.Claim("u1", "first-quest-badge", result.User.TotalXP)
	if err != nil {
		t.Fatalf("badge claim after unlock: %v", err)
	}
	if !reward.ClaimedBy("u1") {
		t.Error("badge not recorded as claimed")
	}
}

func TestCompleteQuestIdempotence(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("run-5k", 5)

	if _, err := f.economy.CompleteQuest("u1", "run-5k"); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	_, err := f.economy.CompleteQuest("u1", "run-5k")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second completion error = %v, want ErrInvalidState", err)
	}

	user, err := f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.TotalXP != 5 {
		t.Errorf("TotalXP = %d after repeat completion, want 5", user.TotalXP)
	}
}

func TestCompleteQuestUnknown(t *testing.T) {
	f := newEconomyFixture(t)
	if _, err := f.economy.CompleteQuest("u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCompleteManualQuestNeedsProof(t *testing.T) {
	f := newEconomyFixture(t)
	f.addManualQuest("plant-a-tree", 5)

	result, err := f.economy.CompleteQuest("u1", "plant-a-tree")
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if result.Status != CompletionNeedsProof {
		t.Fatalf("Status = %s, want needs_proof", result.Status)
	}
	if result.User.TotalXP != 0 || result.User.DailyXP != 0 {
		t.Errorf("needs_proof mutated user: %+v", result.User)
	}
	if result.User.HasCompleted("plant-a-tree") {
		t.Error("needs_proof marked quest completed")
	}
}

func TestCompleteManualQuestAfterApproval(t *testing.T) {
	f := newEconomyFixture(t)
	f.addManualQuest("plant-a-tree", 5)

	sub, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://img", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	review, err := f.economy.ReviewSubmission("rev1", sub.ID, true, "nice tree")
	if err != nil {
		t.Fatalf("ReviewSubmission: %v", err)
	}
	if !review.QuestCompleted || review.XPGained != 5 {
		t.Fatalf("review award = completed=%v gain=%d, want true/5", review.QuestCompleted, review.XPGained)
	}

	// Completing afterwards is already-completed, not a second award.
	if _, err := f.economy.CompleteQuest("u1", "plant-a-tree"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("post-approval completion error = %v, want ErrInvalidState", err)
	}
}

func TestDailyCapPartialThenBlocked(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 7)
	f.addAutoQuest("q2", 7)
	f.addAutoQuest("q3", 5)
	f.addAutoQuest("q4", 5)

	for _, id := range []string{"q1", "q2"} {
		if _, err := f.economy.CompleteQuest("u1", id); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}

	// 14 XP so far: the next completion is clipped to 1.
	result, err := f.economy.CompleteQuest("u1", "q3")
	if err != nil {
		t.Fatalf("complete q3: %v", err)
	}
	if result.Status != CompletionCompleted || result.XPGained != 1 {
		t.Fatalf("clipped gain = %s/%d, want completed/1", result.Status, result.XPGained)
	}
	if result.User.DailyXP != DailyXPCap {
		t.Errorf("DailyXP = %d, want %d", result.User.DailyXP, DailyXPCap)
	}

	// Cap reached: no award, no mutation.
	result, err = f.economy.CompleteQuest("u1", "q4")
	if err != nil {
		t.Fatalf("complete q4: %v", err)
	}
	if result.Status != CompletionCapReached {
		t.Fatalf("Status = %s, want daily_cap_reached", result.Status)
	}
	if result.User.HasCompleted("q4") {
		t.Error("capped completion marked quest completed")
	}
	if result.User.TotalXP != DailyXPCap {
		t.Errorf("TotalXP = %d, want %d", result.User.TotalXP, DailyXPCap)
	}

	// Next day the quest can be completed for full value.
	f.clock.Advance(25 * time.Hour)
	result, err = f.economy.CompleteQuest("u1", "q4")
	if err != nil {
		t.Fatalf("complete q4 next day: %v", err)
	}
	if result.Status != CompletionCompleted || result.XPGained != 5 {
		t.Errorf("next-day completion = %s/%d, want completed/5", result.Status, result.XPGained)
	}
}

func TestStreakBonusAppliedOnCompletion(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("daily-walk", 5)

	err := f.users.Do("u1", func(u *models.User) error {
		u.StreakDays = 14
		return nil
	})
	if err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	result, err := f.economy.CompleteQuest("u1", "daily-walk")
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if result.XPGained != 7 || result.StreakBonus != 2 {
		t.Errorf("gain = %d bonus = %d, want 7/2", result.XPGained, result.StreakBonus)
	}
}

func TestStreakGrowsAcrossConsecutiveDays(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("day-0", 3)
	f.addAutoQuest("day-1", 3)
	f.addAutoQuest("day-2", 3)

	if _, err := f.economy.CompleteQuest("u1", "day-0"); err != nil {
		t.Fatalf("day 0: %v", err)
	}
	f.clock.Advance(25 * time.Hour)
	if _, err := f.economy.CompleteQuest("u1", "day-1"); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	f.clock.Advance(25 * time.Hour)
	if _, err := f.economy.CompleteQuest("u1", "day-2"); err != nil {
		t.Fatalf("day 2: %v", err)
	}

	user, err := f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.StreakDays != 2 {
		t.Errorf("StreakDays = %d after three consecutive days, want 2", user.StreakDays)
	}

	// Skipping two days breaks the streak.
	f.clock.Advance(49 * time.Hour)
	user, err = f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.StreakDays != 0 {
		t.Errorf("StreakDays = %d after gap, want 0", user.StreakDays)
	}
}

func TestReviewAwardsOnlyOnce(t *testing.T) {
	f := newEconomyFixture(t)
	f.addManualQuest("plant-a-tree", 5)

	first, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://a", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	second, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://b", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}

	if _, err := f.economy.ReviewSubmission("rev1", first.ID, true, ""); err != nil {
		t.Fatalf("first review: %v", err)
	}
	review, err := f.economy.ReviewSubmission("rev1", second.ID, true, "")
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if !review.AlreadyCompleted {
		t.Error("second approval did not report already completed")
	}
	if review.XPGained != 0 {
		t.Errorf("second approval awarded %d XP, want 0", review.XPGained)
	}

	user, err := f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.TotalXP != 5 {
		t.Errorf("TotalXP = %d, want 5", user.TotalXP)
	}
}

func TestReviewSameSubmissionTwice(t *testing.T) {
	f := newEconomyFixture(t)
	f.addManualQuest("plant-a-tree", 5)

	sub, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://a", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	if _, err := f.economy.ReviewSubmission("rev1", sub.ID, true, ""); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := f.economy.ReviewSubmission("rev2", sub.ID, true, ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("re-review error = %v, want ErrInvalidState", err)
	}
}

func TestRejectedThenResubmitted(t *testing.T) {
	f := newEconomyFixture(t)
	f.addManualQuest("plant-a-tree", 5)

	sub, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://a", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	review, err := f.economy.ReviewSubmission("rev1", sub.ID, false, "blurry")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if review.QuestCompleted || review.XPGained != 0 {
		t.Errorf("rejection awarded XP: %+v", review)
	}

	retry, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://b", "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	review, err = f.economy.ReviewSubmission("rev1", retry.ID, true, "")
	if err != nil {
		t.Fatalf("approve retry: %v", err)
	}
	if !review.QuestCompleted || review.XPGained != 5 {
		t.Errorf("retry approval = completed=%v gain=%d, want true/5", review.QuestCompleted, review.XPGained)
	}
}

func TestReviewApprovalAtDailyCap(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 8)
	f.addAutoQuest("q2", 7)
	f.addManualQuest("plant-a-tree", 5)

	for _, id := range []string{"q1", "q2"} {
		if _, err := f.economy.CompleteQuest("u1", id); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}

	sub, err := f.economy.SubmitProof("u1", "plant-a-tree", "http://a", "")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	review, err := f.economy.ReviewSubmission("rev1", sub.ID, true, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !review.CapReached || review.XPGained != 0 {
		t.Errorf("capped approval = cap=%v gain=%d, want true/0", review.CapReached, review.XPGained)
	}
	if review.Submission.Status != models.SubmissionApproved {
		t.Errorf("submission status = %s, want approved despite cap", review.Submission.Status)
	}
}

func TestReviewRequiresReviewer(t *testing.T) {
	f := newEconomyFixture(t)
	if _, err := f.economy.ReviewSubmission("", "s1", true, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestGetProfile(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 12)

	if _, err := f.economy.CompleteQuest("u1", "q1"); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	profile, err := f.economy.GetProfile("u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Level != 1 {
		t.Errorf("Level = %d at 12 XP, want 1", profile.Level)
	}
	if profile.XPToNext != 38 {
		t.Errorf("XPToNext = %d, want 38", profile.XPToNext)
	}
	if profile.TotalQuests != 1 || profile.QuestCounts["personal"] != 1 {
		t.Errorf("quest counts = %d/%v", profile.TotalQuests, profile.QuestCounts)
	}
}

func TestListQuestsHidesCompleted(t *testing.T) {
	f := newEconomyFixture(t)
	f.quests.SeedDefaults()
	f.addAutoQuest("q-auto", 5)

	if _, err := f.economy.CompleteQuest("u1", "q-auto"); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	visible, err := f.economy.ListQuests("u1", "", false)
	if err != nil {
		t.Fatalf("ListQuests: %v", err)
	}
	for _, view := range visible {
		if view.ID == "q-auto" {
			t.Error("completed quest still listed")
		}
	}

	all, err := f.economy.ListQuests("u1", "", true)
	if err != nil {
		t.Fatalf("ListQuests include: %v", err)
	}
	found := false
	for _, view := range all {
		if view.ID == "q-auto" {
			found = true
			if !view.IsCompleted {
				t.Error("completed quest not flagged")
			}
		}
	}
	if !found {
		t.Error("include_completed did not list the completed quest")
	}
}

func TestListRewardsDecoration(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 15)
	if _, err := f.economy.CompleteQuest("u1", "q1"); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if _, err := f.economy.ClaimReward("u1", "first-quest-badge"); err != nil {
		t.Fatalf("ClaimReward: %v", err)
	}

	views, err := f.economy.ListRewards("u1")
	if err != nil {
		t.Fatalf("ListRewards: %v", err)
	}
	byID := map[string]RewardView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	if !byID["first-quest-badge"].Claimed {
		t.Error("badge not marked claimed")
	}
	if byID["eco-warrior-sticker"].Unlocked {
		t.Error("sticker unlocked at 15 XP, want locked at 25")
	}
	if got := byID["eco-warrior-sticker"].XPRemaining; got != 10 {
		t.Errorf("sticker XPRemaining = %d, want 10", got)
	}
}

func TestClaimRewardInsufficientXP(t *testing.T) {
	f := newEconomyFixture(t)
	if _, err := f.economy.ClaimReward("u1", "xp-champion-voucher"); !errors.Is(err, ErrInsufficientXP) {
		t.Errorf("error = %v, want ErrInsufficientXP", err)
	}
}

func TestConcurrentCompletionsRespectCap(t *testing.T) {
	f := newEconomyFixture(t)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"} {
		f.addAutoQuest(id, 5)
	}

	var wg sync.WaitGroup
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"} {
		wg.Add(1)
		go func(questID string) {
			defer wg.Done()
			_, _ = f.economy.CompleteQuest("u1", questID)
		}(id)
	}
	wg.Wait()

	user, err := f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.DailyXP > DailyXPCap {
		t.Errorf("DailyXP = %d, exceeded cap %d", user.DailyXP, DailyXPCap)
	}
	if user.TotalXP != user.DailyXP {
		t.Errorf("TotalXP %d != DailyXP %d on first day", user.TotalXP, user.DailyXP)
	}
}

func TestConcurrentClaimsOnlyOneWins(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 15)
	if _, err := f.economy.CompleteQuest("u1", "q1"); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	var wg sync.WaitGroup
	successes := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.economy.ClaimReward("u1", "first-quest-badge"); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	if got := len(successes); got != 1 {
		t.Errorf("%d concurrent claims succeeded, want exactly 1", got)
	}
}

func TestSweepRollovers(t *testing.T) {
	f := newEconomyFixture(t)
	f.addAutoQuest("q1", 5)
	if _, err := f.economy.CompleteQuest("u1", "q1"); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	f.clock.Advance(49 * time.Hour)
	f.economy.SweepRollovers()

	user, err := f.users.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if user.DailyXP != 0 {
		t.Errorf("DailyXP = %d after sweep, want 0", user.DailyXP)
	}
	if user.StreakDays != 0 {
		t.Errorf("StreakDays = %d after missed days, want 0", user.StreakDays)
	}
}
