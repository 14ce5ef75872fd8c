package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-plagiarism-api/internal/dto"
	"github.com/noah-isme/gema-plagiarism-api/internal/models"
	"github.com/noah-isme/gema-plagiarism-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found or has no text to analyse.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAssignmentNotFound is returned when the referenced assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrStudentNotFound is returned when the submitting student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrAssignmentPastDue rejects hand-ins after the deadline.
	ErrAssignmentPastDue = errors.New("assignment is past due")
	// ErrEmptySubmission rejects content that is blank once markup is stripped.
	ErrEmptySubmission = errors.New("submission content is empty")
)

// ActivitySubmissionGraded is the audit action written when a grade is recorded.
const ActivitySubmissionGraded = "submission.graded"

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Update(ctx context.Context, id uint, payload dto.SubmissionUpdateRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	activity    ActivityRecorder
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, studentRepo repository.StudentRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		students:    studentRepo,
		activity:    activity,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.SubmissionStatusSubmitted
	}

	if status == models.SubmissionStatusSubmitted && assignment.IsPastDue(s.now()) {
		return dto.SubmissionResponse{}, ErrAssignmentPastDue
	}

	content := s.cleanContent(payload.Content)
	if content == "" {
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    payload.StudentID,
		Content:      content,
		Status:       status,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Str("status", created.Status).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Update(ctx context.Context, id uint, payload dto.SubmissionUpdateRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if payload.Status != nil {
		status := strings.ToLower(*payload.Status)
		if status == models.SubmissionStatusGraded && payload.Grade == nil && submission.Grade == nil {
			return dto.SubmissionResponse{}, fmt.Errorf("grade is required when marking as graded")
		}
		submission.Status = status
	}

	if payload.Grade != nil {
		submission.Grade = payload.Grade
		submission.Status = models.SubmissionStatusGraded
	}

	if payload.Feedback != nil {
		submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Feedback))
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if payload.Grade != nil && s.activity != nil {
		submissionID := updated.ID
		if _, err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     ActivitySubmissionGraded,
			EntityType: "submission",
			EntityID:   &submissionID,
			Metadata:   map[string]interface{}{"grade": *payload.Grade},
		}); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("failed to record grading activity")
		}
	}

	s.logger.Info().Uint("submission_id", submission.ID).Str("status", updated.Status).Msg("submission updated")

	return dto.NewSubmissionResponse(updated), nil
}

// cleanContent strips markup so that offsets computed later refer to the text a reader sees.
func (s *submissionService) cleanContent(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(raw)))
}
