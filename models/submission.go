package models

import "time"

// SubmissionStatus transitions exactly once, from pending to a terminal state.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a proof record for a (user, quest) pair awaiting review.
type Submission struct {
	ID         string           `gorm:"primaryKey" json:"submission_id"`
	QuestID    string           `gorm:"index;not null" json:"quest_id"`
	UserID     string           `gorm:"index;not null" json:"user_id"`
	ProofURL   string           `json:"proof_url,omitempty"`
	ProofText  string           `json:"proof_text,omitempty"`
	Status     SubmissionStatus `gorm:"default:pending" json:"status"`
	ReviewerID string           `json:"reviewer_id,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`
}

// Clone returns a copy safe to hand out after the workflow lock is released.
func (s *Submission) Clone() *Submission {
	cp := *s
	if s.ReviewedAt != nil {
		t := *s.ReviewedAt
		cp.ReviewedAt = &t
	}
	return &cp
}
