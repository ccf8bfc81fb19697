package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidField   = errors.New("invalid field update")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// Repository is the remote tabular store: one row per student per subject
// plus one metadata entry per subject.
type Repository interface {
	Gradebook() GradebookRepository
	Metadata() MetadataRepository
	Close() error
}

// GradebookRepository reads and writes score rows.
type GradebookRepository interface {
	// Query operations
	ListStudents(ctx context.Context) ([]*models.Student, error)
	GetStudent(ctx context.Context, studentID string) (*models.Student, error)
	GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error)

	// Command operations
	UpdateField(ctx context.Context, update models.FieldUpdate) error

	// Redeem atomically decrements the reward balance and increments the
	// redeemed counter when, and only when, the stored balance is positive.
	// It reports false with a nil error when the balance was zero.
	Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error)
}

// MetadataRepository reads and replaces per-subject assignment metadata.
type MetadataRepository interface {
	GetMetadata(ctx context.Context, subject models.SubjectCode) (*models.SubjectMetadata, error)
	UpdateMetadata(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) error
}

// Seeder is implemented by stores that can be populated with initial rows.
// Existing (student, subject) pairs are left untouched.
type Seeder interface {
	Seed(ctx context.Context, rows []Row) error
}
