package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{db: db}
}

func (r *repository) Gradebook() repositories.GradebookRepository {
	return &GradebookPostgreSQL{db: r.db}
}

func (r *repository) Metadata() repositories.MetadataRepository {
	return &MetadataPostgreSQL{db: r.db}
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type GradebookPostgreSQL struct {
	db *gorm.DB
}

func (g GradebookPostgreSQL) ListStudents(ctx context.Context) ([]*models.Student, error) {
	var rows []ScoreRow
	if err := g.db.WithContext(ctx).Order("row_index ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list score rows: %w", err)
	}

	flat := make([]repositories.Row, len(rows))
	for i, row := range rows {
		flat[i] = row.toRow()
	}
	return repositories.AssembleStudents(flat), nil
}

func (g GradebookPostgreSQL) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	var rows []ScoreRow
	if err := g.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("row_index ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get student rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, repositories.ErrRecordNotFound
	}

	flat := make([]repositories.Row, len(rows))
	for i, row := range rows {
		flat[i] = row.toRow()
	}
	return repositories.FindStudent(repositories.AssembleStudents(flat), studentID)
}

func (g GradebookPostgreSQL) GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	var row ScoreRow
	if err := g.db.WithContext(ctx).
		Where("student_id = ? AND subject = ?", studentID, subject).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SubjectRecord{}, repositories.ErrRecordNotFound
		}
		return models.SubjectRecord{}, fmt.Errorf("failed to get score row: %w", err)
	}
	return row.toRow().Record, nil
}

func (g GradebookPostgreSQL) UpdateField(ctx context.Context, update models.FieldUpdate) error {
	column, value, err := columnFor(update)
	if err != nil {
		return err
	}

	result := g.db.WithContext(ctx).
		Model(&ScoreRow{}).
		Where("student_id = ? AND subject = ?", update.StudentID, update.Subject).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// Redeem runs a single conditional UPDATE; the reward_rights > 0 predicate
// and both column changes are applied by the database in one statement.
func (g GradebookPostgreSQL) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error) {
	result := g.db.WithContext(ctx).
		Model(&ScoreRow{}).
		Where("student_id = ? AND subject = ? AND reward_rights > 0", studentID, subject).
		Updates(map[string]interface{}{
			"reward_rights":  gorm.Expr("reward_rights - 1"),
			"redeemed_count": gorm.Expr("redeemed_count + 1"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to redeem reward: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Seed inserts rows, leaving existing (student, subject) pairs untouched.
func (g GradebookPostgreSQL) Seed(ctx context.Context, rows []repositories.Row) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]ScoreRow, len(rows))
	for i, row := range rows {
		records[i] = NewScoreRow(row)
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records).Error
}

type MetadataPostgreSQL struct {
	db *gorm.DB
}

func (m MetadataPostgreSQL) GetMetadata(ctx context.Context, subject models.SubjectCode) (*models.SubjectMetadata, error) {
	var row MetadataRow
	if err := m.db.WithContext(ctx).First(&row, "subject = ?", subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get subject metadata: %w", err)
	}

	var meta models.SubjectMetadata
	if err := json.Unmarshal(row.Data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode subject metadata: %w", err)
	}
	meta = meta.Normalize()
	return &meta, nil
}

func (m MetadataPostgreSQL) UpdateMetadata(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) error {
	data, err := json.Marshal(meta.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode subject metadata: %w", err)
	}

	row := MetadataRow{Subject: subject, Data: datatypes.JSON(data)}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}
