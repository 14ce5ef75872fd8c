package dto

import (
	"time"

	"github.com/noah-isme/gema-plagiarism-api/internal/models"
)

// SubmissionCreateRequest describes the JSON payload for a text submission.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	StudentID    uint   `json:"student_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"required,max=100000"`
	Status       string `json:"status" validate:"omitempty,oneof=draft submitted"`
}

// SubmissionUpdateRequest is used to grade or update a submission.
type SubmissionUpdateRequest struct {
	Status   *string  `json:"status" validate:"omitempty,oneof=submitted graded"`
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback" validate:"omitempty,min=3"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=draft submitted graded"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	StudentID    uint           `json:"student_id"`
	Content      string         `json:"content"`
	Status       string         `json:"status"`
	Grade        *float64       `json:"grade"`
	Feedback     string         `json:"feedback"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   AssignmentLite `json:"assignment"`
	Student      StudentLite    `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewStudentLite trims a student down to what listings display.
func NewStudentLite(model models.Student) StudentLite {
	return StudentLite{
		ID:    model.ID,
		Name:  model.DisplayName(),
		Email: model.Email,
	}
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		Status:       model.Status,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
		}
	}

	if model.Student.ID != 0 {
		response.Student = NewStudentLite(model.Student)
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
