package services

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"quest-rewards-system/models"
)

// DailyXPCap is the maximum XP a user may earn within one rolling day.
const DailyXPCap = 15

// Streak bonus: +1 XP per full week of streak, capped at 3.
const (
	streakBonusWeek = 7
	streakBonusMax  = 3
)

// UserService owns the user ledger: XP totals, daily counters and streaks.
// Every read-modify-write sequence on a single user runs under that user's
// exclusive lock via Do, so concurrent completions can never both observe
// stale daily XP and jointly exceed the cap.
type UserService struct {
	clock  Clock
	mirror Mirror

	mu    sync.Mutex
	users map[string]*models.User
	locks map[string]*sync.Mutex
}

func NewUserService(clock Clock, mirror Mirror) *UserService {
	return &UserService{
		clock:  clock,
		mirror: mirror,
		users:  make(map[string]*models.User),
		locks:  make(map[string]*sync.Mutex),
	}
}

// GetOrCreate returns the existing user or lazily creates one with zeroed
// counters. The default name is derived from the ID, as onboarding can
// rename later.
func (s *UserService) GetOrCreate(userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, Errorf(ErrInvalidInput, "user_id is required")
	}

	s.mu.Lock()
	user, ok := s.users[userID]
	if !ok {
		now := s.clock.Now().UTC()
		short := userID
		if len(short) > 8 {
			short = short[:8]
		}
		user = &models.User{
			ID:             userID,
			Name:           "Adventurer_" + short,
			LastDailyReset: now,
			CreatedAt:      now,
		}
		s.users[userID] = user
	}
	s.mu.Unlock()

	if !ok {
		log.WithField("user_id", userID).Info("user created")
		s.mirror.UpsertUser(user.Clone())
	}
	return user, nil
}

// Do runs fn while holding the user's exclusive lock, creating the user
// first if needed. The user passed to fn may be mutated freely; a snapshot
// is mirrored afterwards when fn succeeds. Rollover + gain + award sequences
// must all go through here.
func (s *UserService) Do(userID string, fn func(u *models.User) error) error {
	user, err := s.GetOrCreate(userID)
	if err != nil {
		return err
	}

	lock := s.userLock(userID)
	lock.Lock()
	err = fn(user)
	var snapshot *models.User
	if err == nil {
		snapshot = user.Clone()
	}
	lock.Unlock()

	if snapshot != nil {
		s.mirror.UpsertUser(snapshot)
	}
	return err
}

// Snapshot returns a consistent copy of the user after applying any due
// daily rollover.
func (s *UserService) Snapshot(userID string) (*models.User, error) {
	var snapshot *models.User
	err := s.Do(userID, func(u *models.User) error {
		s.ApplyDailyRollover(u)
		snapshot = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Each calls fn with every known user ID. Used by the rollover sweep.
func (s *UserService) Each(fn func(userID string)) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		fn(id)
	}
}

// ApplyDailyRollover resets the daily counter and updates the streak once a
// full day has elapsed since the last reset. Idempotent within the same day.
// Must run, under the user lock, before any XP-gain computation.
func (s *UserService) ApplyDailyRollover(u *models.User) {
	now := s.clock.Now().UTC()
	if wholeDaysBetween(u.LastDailyReset, now) < 1 {
		return
	}

	u.DailyXP = 0
	u.LastDailyReset = now

	if u.LastQuestDate == nil {
		return
	}
	switch days := wholeDaysBetween(*u.LastQuestDate, now); {
	case days == 1:
		u.StreakDays++
	case days > 1:
		u.StreakDays = 0
	}
}

// ComputeXPGain returns the XP actually awardable for a quest worth baseXP,
// applying the streak bonus and the daily cap. Evaluated fresh on every
// award, never stored.
func (s *UserService) ComputeXPGain(u *models.User, baseXP int) int {
	remaining := DailyXPCap - u.DailyXP
	if remaining <= 0 {
		return 0
	}

	bonus := u.StreakDays / streakBonusWeek
	if bonus > streakBonusMax {
		bonus = streakBonusMax
	}

	gain := baseXP + bonus
	if gain > remaining {
		gain = remaining
	}
	return gain
}

// StreakBonus returns the current bonus XP per completion for the user.
func (s *UserService) StreakBonus(u *models.User) int {
	bonus := u.StreakDays / streakBonusWeek
	if bonus > streakBonusMax {
		bonus = streakBonusMax
	}
	return bonus
}

// Award adds amount to both counters, records the quest as completed and
// stamps the completion time. The insert into the completed set is
// idempotent; callers on the completion path must check HasCompleted first.
func (s *UserService) Award(u *models.User, amount int, questID string) {
	u.DailyXP += amount
	u.TotalXP += amount
	if !u.HasCompleted(questID) {
		u.QuestsCompleted = append(u.QuestsCompleted, questID)
	}
	now := s.clock.Now().UTC()
	u.LastQuestDate = &now

	log.WithFields(log.Fields{
		"user_id":  u.ID,
		"quest_id": questID,
		"gain":     amount,
		"daily_xp": u.DailyXP,
		"total_xp": u.TotalXP,
	}).Debug("xp awarded")
}

// Rename sets the display name, creating the user if needed.
func (s *UserService) Rename(userID, name string) (*models.User, error) {
	var snapshot *models.User
	err := s.Do(userID, func(u *models.User) error {
		if strings.TrimSpace(name) != "" {
			u.Name = strings.TrimSpace(name)
		}
		s.ApplyDailyRollover(u)
		snapshot = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *UserService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
