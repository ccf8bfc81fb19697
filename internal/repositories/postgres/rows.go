package postgres

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"gorm.io/datatypes"
)

// ScoreRow mirrors the spreadsheet layout: ID, Name, A1..A6, Mid, Fin,
// Status, Rights, Redeemed, one row per student per subject.
type ScoreRow struct {
	ID            uint               `gorm:"primaryKey"`
	StudentID     string             `gorm:"not null;size:64;uniqueIndex:idx_score_rows_student_subject"`
	StudentName   string             `gorm:"size:200"`
	Subject       models.SubjectCode `gorm:"not null;size:32;uniqueIndex:idx_score_rows_student_subject;index"`
	A1            int                `gorm:"column:a1;not null;default:0"`
	A2            int                `gorm:"column:a2;not null;default:0"`
	A3            int                `gorm:"column:a3;not null;default:0"`
	A4            int                `gorm:"column:a4;not null;default:0"`
	A5            int                `gorm:"column:a5;not null;default:0"`
	A6            int                `gorm:"column:a6;not null;default:0"`
	Midterm       int                `gorm:"not null;default:0"`
	Final         int                `gorm:"not null;default:0"`
	Status        string             `gorm:"size:16;not null;default:Normal"`
	RewardRights  int                `gorm:"not null;default:0;check:reward_rights >= 0"`
	RedeemedCount int                `gorm:"not null;default:0;check:redeemed_count >= 0"`
	RowIndex      int                `gorm:"not null;default:0;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ScoreRow) TableName() string { return "score_rows" }

func (r ScoreRow) toRow() repositories.Row {
	status, ok := models.ParseOverrideStatus(r.Status)
	if !ok {
		status = models.StatusNormal
	}
	return repositories.Row{
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		Subject:     r.Subject,
		Record: models.SubjectRecord{
			Scores: models.ScoreData{
				Assignments: [models.AssignmentCount]int{r.A1, r.A2, r.A3, r.A4, r.A5, r.A6},
				Midterm:     r.Midterm,
				Final:       r.Final,
			},
			Status:        status,
			RewardRights:  r.RewardRights,
			RedeemedCount: r.RedeemedCount,
			RowIndex:      r.RowIndex,
		},
	}
}

// NewScoreRow builds a row for provisioning and seeding.
func NewScoreRow(row repositories.Row) ScoreRow {
	a := row.Record.Scores.Assignments
	status := row.Record.Status
	if status == "" {
		status = models.StatusNormal
	}
	return ScoreRow{
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		Subject:       row.Subject,
		A1:            a[0],
		A2:            a[1],
		A3:            a[2],
		A4:            a[3],
		A5:            a[4],
		A6:            a[5],
		Midterm:       row.Record.Scores.Midterm,
		Final:         row.Record.Scores.Final,
		Status:        string(status),
		RewardRights:  row.Record.RewardRights,
		RedeemedCount: row.Record.RedeemedCount,
		RowIndex:      row.Record.RowIndex,
	}
}

// columnFor maps a field update to its column and value.
func columnFor(update models.FieldUpdate) (string, interface{}, error) {
	switch update.Field {
	case models.FieldAssignments:
		if update.Index < 0 || update.Index >= models.AssignmentCount {
			return "", nil, repositories.ErrInvalidField
		}
		return fmt.Sprintf("a%d", update.Index+1), update.Value, nil
	case models.FieldMidterm:
		return "midterm", update.Value, nil
	case models.FieldFinal:
		return "final", update.Value, nil
	case models.FieldStatus:
		return "status", string(update.Status), nil
	case models.FieldRewardRights:
		return "reward_rights", update.Value, nil
	case models.FieldRedeemedCount:
		return "redeemed_count", update.Value, nil
	}
	return "", nil, repositories.ErrInvalidField
}

// MetadataRow stores the assignment list of one subject as JSONB.
type MetadataRow struct {
	Subject   models.SubjectCode `gorm:"primaryKey;size:32"`
	Data      datatypes.JSON     `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (MetadataRow) TableName() string { return "subject_metadata" }

// Models lists the tables owned by this package, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&ScoreRow{}, &MetadataRow{}}
}
