package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-plagiarism-api/internal/models"
)

// AssignmentRepository resolves the assignment a submission answers.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
}

// StudentRepository resolves the owner of a submission.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
}

type assignmentLookup struct {
	db *gorm.DB
}

type studentLookup struct {
	db *gorm.DB
}

// NewAssignmentRepository returns a read-only assignment lookup.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentLookup{db: db}
}

// NewStudentRepository returns a read-only student lookup.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentLookup{db: db}
}

// GetByID skips the description body; only the deadline and title are needed
// when accepting a submission.
func (r *assignmentLookup) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Select("id", "title", "due_date", "created_at", "updated_at").
		Take(&assignment, "id = ?", id).Error
	return assignment, err
}

func (r *studentLookup) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Take(&student, "id = ?", id).Error
	return student, err
}
