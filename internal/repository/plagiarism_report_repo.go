package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-plagiarism-api/internal/models"
)

// PlagiarismReportRepository persists and retrieves similarity reports.
type PlagiarismReportRepository interface {
	Create(ctx context.Context, report *models.PlagiarismReport) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.PlagiarismReport, error)
}

type plagiarismReportRepository struct {
	db *gorm.DB
}

// NewPlagiarismReportRepository constructs a GORM-backed report store.
func NewPlagiarismReportRepository(db *gorm.DB) PlagiarismReportRepository {
	return &plagiarismReportRepository{db: db}
}

func (r *plagiarismReportRepository) Create(ctx context.Context, report *models.PlagiarismReport) error {
	return r.db.WithContext(ctx).Omit("Submission", "ComparedSubmission").Create(report).Error
}

// ListBySubmission returns every report stored for the checked submission with
// the compared submission's student attached, highest score first.
func (r *plagiarismReportRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.PlagiarismReport, error) {
	var reports []models.PlagiarismReport
	err := r.db.WithContext(ctx).
		Preload("ComparedSubmission", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "assignment_id", "student_id", "status")
		}).
		Preload("ComparedSubmission.Student").
		Where("submission_id = ?", submissionID).
		Order("similarity_score DESC").
		Order("id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return reports, nil
}
