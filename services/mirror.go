package services

import "quest-rewards-system/models"

// Mirror receives upsert notifications for mutated records. The in-memory
// state transition has already committed by the time a method is called, so
// implementations must not block and must swallow their own failures.
type Mirror interface {
	UpsertUser(u *models.User)
	UpsertQuest(q *models.Quest)
	UpsertSubmission(s *models.Submission)
	UpsertReward(r *models.Reward)
}

// NopMirror discards all notifications. Used when no DATABASE_URL is
// configured and in tests.
type NopMirror struct{}

func (NopMirror) UpsertUser(*models.User)             {}
func (NopMirror) UpsertQuest(*models.Quest)           {}
func (NopMirror) UpsertSubmission(*models.Submission) {}
func (NopMirror) UpsertReward(*models.Reward)         {}
