package services

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"quest-rewards-system/models"
)

// SubmissionService owns the proof-review workflow. A submission moves from
// pending to exactly one terminal state; the transition happens under the
// workflow lock so two concurrent reviews of the same submission resolve to
// one winner.
type SubmissionService struct {
	clock  Clock
	mirror Mirror
	quests *QuestService

	mu          sync.RWMutex
	submissions map[string]*models.Submission
	order       []string
}

func NewSubmissionService(clock Clock, mirror Mirror, quests *QuestService) *SubmissionService {
	return &SubmissionService{
		clock:       clock,
		mirror:      mirror,
		quests:      quests,
		submissions: make(map[string]*models.Submission),
	}
}

// Submit records a pending proof submission. At least one of proofURL or
// proofText must be present.
func (s *SubmissionService) Submit(userID, questID, proofURL, proofText string) (*models.Submission, error) {
	if _, err := s.quests.Get(questID); err != nil {
		return nil, err
	}
	if proofURL == "" && proofText == "" {
		return nil, Errorf(ErrInvalidInput, "provide proof_url or proof_text")
	}

	sub := &models.Submission{
		ID:        uuid.NewString(),
		QuestID:   questID,
		UserID:    userID,
		ProofURL:  proofURL,
		ProofText: proofText,
		Status:    models.SubmissionPending,
		CreatedAt: s.clock.Now().UTC(),
	}

	s.mu.Lock()
	s.submissions[sub.ID] = sub
	s.order = append(s.order, sub.ID)
	s.mu.Unlock()

	s.mirror.UpsertSubmission(sub.Clone())
	log.WithFields(log.Fields{
		"submission_id": sub.ID,
		"user_id":       userID,
		"quest_id":      questID,
	}).Info("proof submitted")
	return sub.Clone(), nil
}

// Review transitions a pending submission to approved or rejected. The
// transition is one-shot: a second review of the same submission observes
// ErrInvalidState. XP award for approvals is the orchestrator's job.
func (s *SubmissionService) Review(reviewerID, submissionID string, approve bool, notes string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return nil, Errorf(ErrNotFound, "submission %s not found", submissionID)
	}
	if sub.Status != models.SubmissionPending {
		return nil, Errorf(ErrInvalidState, "submission already reviewed (%s)", sub.Status)
	}

	if approve {
		sub.Status = models.SubmissionApproved
	} else {
		sub.Status = models.SubmissionRejected
	}
	sub.ReviewerID = reviewerID
	sub.Notes = notes
	now := s.clock.Now().UTC()
	sub.ReviewedAt = &now

	snapshot := sub.Clone()
	s.mirror.UpsertSubmission(snapshot)
	log.WithFields(log.Fields{
		"submission_id": submissionID,
		"reviewer":      reviewerID,
		"status":        sub.Status,
	}).Info("submission reviewed")
	return snapshot, nil
}

// HasApproved reports whether any submission for the (user, quest) pair has
// been approved. This gates completion of manual-verification quests.
func (s *SubmissionService) HasApproved(userID, questID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.QuestID == questID && sub.Status == models.SubmissionApproved {
			return true
		}
	}
	return false
}

// PendingCount returns the number of submissions still awaiting review.
func (s *SubmissionService) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.Status == models.SubmissionPending {
			n++
		}
	}
	return n
}
