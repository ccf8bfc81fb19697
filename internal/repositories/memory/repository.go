// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
)

type rowKey struct {
	studentID string
	subject   models.SubjectCode
}

// DB holds the score and metadata tables behind one mutex, so Redeem's
// check-then-decrement is atomic with respect to every other operation.
type DB struct {
	mutex    sync.RWMutex
	rows     map[rowKey]*repositories.Row
	metadata map[models.SubjectCode]models.SubjectMetadata
}

func NewDB(rows ...repositories.Row) *DB {
	db := &DB{
		rows:     make(map[rowKey]*repositories.Row),
		metadata: make(map[models.SubjectCode]models.SubjectMetadata),
	}
	for _, row := range rows {
		db.Put(row)
	}
	return db
}

// Put inserts or replaces a row.
func (db *DB) Put(row repositories.Row) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	r := row
	db.rows[rowKey{row.StudentID, row.Subject}] = &r
}

type repository struct {
	db *DB
}

func NewRepository(db *DB) repositories.Repository {
	return &repository{db: db}
}

func (r *repository) Gradebook() repositories.GradebookRepository { return &gradebookRepository{db: r.db} }
func (r *repository) Metadata() repositories.MetadataRepository   { return &metadataRepository{db: r.db} }
func (r *repository) Close() error                                { return nil }

type gradebookRepository struct {
	db *DB
}

func (repo *gradebookRepository) query() []repositories.Row {
	rows := make([]repositories.Row, 0, len(repo.db.rows))
	for _, row := range repo.db.rows {
		rows = append(rows, *row)
	}
	return rows
}

func (repo *gradebookRepository) ListStudents(ctx context.Context) ([]*models.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repositories.AssembleStudents(repo.query()), nil
}

func (repo *gradebookRepository) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	students, err := repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.FindStudent(students, studentID)
}

func (repo *gradebookRepository) GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if row, ok := repo.db.rows[rowKey{studentID, subject}]; ok {
		return row.Record, nil
	}
	return models.SubjectRecord{}, repositories.ErrRecordNotFound
}

func (repo *gradebookRepository) UpdateField(ctx context.Context, update models.FieldUpdate) error {
	if err := update.Validate(); err != nil {
		return repositories.ErrInvalidField
	}

	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.rows[rowKey{update.StudentID, update.Subject}]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	row.Record = update.Apply(row.Record)
	return nil
}

// Seed inserts rows whose (student, subject) pair is not stored yet.
func (repo *gradebookRepository) Seed(ctx context.Context, rows []repositories.Row) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range rows {
		key := rowKey{row.StudentID, row.Subject}
		if _, exists := repo.db.rows[key]; exists {
			continue
		}
		r := row
		repo.db.rows[key] = &r
	}
	return nil
}

func (repo *gradebookRepository) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.rows[rowKey{studentID, subject}]
	if !ok || row.Record.RewardRights <= 0 {
		return false, nil
	}
	row.Record.RewardRights--
	row.Record.RedeemedCount++
	return true, nil
}

type metadataRepository struct {
	db *DB
}

func (repo *metadataRepository) GetMetadata(ctx context.Context, subject models.SubjectCode) (*models.SubjectMetadata, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	meta, ok := repo.db.metadata[subject]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	out := meta.Normalize()
	return &out, nil
}

func (repo *metadataRepository) UpdateMetadata(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.metadata[subject] = meta.Normalize()
	return nil
}
