package dto

import (
	"time"

	"github.com/noah-isme/gema-plagiarism-api/internal/models"
	"github.com/noah-isme/gema-plagiarism-api/internal/similarity"
)

// PlagiarismCheckRequest optionally overrides the assignment whose peers are compared.
type PlagiarismCheckRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"omitempty,gt=0"`
}

// PlagiarismReportResponse is a single checked-vs-compared report.
type PlagiarismReportResponse struct {
	ID                   uint                        `json:"id"`
	SubmissionID         uint                        `json:"submission_id"`
	ComparedSubmissionID uint                        `json:"compared_submission_id"`
	SimilarityScore      float64                     `json:"similarity_score"`
	Severity             string                      `json:"severity"`
	MatchedContent       []similarity.MatchedSegment `json:"matched_content"`
	ComparedStudent      *StudentLite                `json:"compared_student,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// PlagiarismCheckResponse aggregates the result of one check run.
type PlagiarismCheckResponse struct {
	SubmissionID      uint                        `json:"submission_id"`
	AssignmentID      uint                        `json:"assignment_id"`
	OverallSimilarity float64                     `json:"overall_similarity"`
	Severity          string                      `json:"severity"`
	Reports           []PlagiarismReportResponse  `json:"reports"`
	MatchedSegments   []similarity.MatchedSegment `json:"matched_segments"`
	ComparedCount     int                         `json:"compared_count"`
	Message           string                      `json:"message,omitempty"`
	CheckedAt         time.Time                   `json:"checked_at"`
}

// NewPlagiarismReportResponse converts a persisted report into its DTO.
func NewPlagiarismReportResponse(model models.PlagiarismReport) PlagiarismReportResponse {
	segments := make([]similarity.MatchedSegment, 0, len(model.MatchedContent))
	segments = append(segments, model.MatchedContent...)

	response := PlagiarismReportResponse{
		ID:                   model.ID,
		SubmissionID:         model.SubmissionID,
		ComparedSubmissionID: model.ComparedSubmissionID,
		SimilarityScore:      model.SimilarityScore,
		Severity:             similarity.Severity(model.SimilarityScore),
		MatchedContent:       segments,
		CreatedAt:            model.CreatedAt,
	}

	if model.ComparedSubmission.Student.ID != 0 {
		student := NewStudentLite(model.ComparedSubmission.Student)
		response.ComparedStudent = &student
	}

	return response
}

// NewPlagiarismReportResponseSlice converts report models into DTOs.
func NewPlagiarismReportResponseSlice(reports []models.PlagiarismReport) []PlagiarismReportResponse {
	responses := make([]PlagiarismReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, NewPlagiarismReportResponse(report))
	}

	return responses
}
