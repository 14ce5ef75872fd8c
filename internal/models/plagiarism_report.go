package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/gema-plagiarism-api/internal/similarity"
)

// PlagiarismReport records the matches found between a checked submission and
// one peer during a single check run. Rows are append-only.
type PlagiarismReport struct {
	ID                   uint                                           `gorm:"primaryKey" json:"id"`
	SubmissionID         uint                                           `gorm:"not null;index" json:"submission_id"`
	ComparedSubmissionID uint                                           `gorm:"not null;index" json:"compared_submission_id"`
	SimilarityScore      float64                                        `gorm:"type:numeric(5,2);not null" json:"similarity_score"`
	MatchedContent       datatypes.JSONSlice[similarity.MatchedSegment] `json:"matched_content"`
	CreatedAt            time.Time                                      `gorm:"index" json:"created_at"`
	Submission           Submission                                     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ComparedSubmission   Submission                                     `gorm:"foreignKey:ComparedSubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"compared_submission"`
}
