package mongo

import (
	"fmt"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
)

const (
	ScoreCollection    = "score_rows"
	MetadataCollection = "subject_metadata"
)

// scoreDocument is one student in one subject.
type scoreDocument struct {
	StudentID     string `bson:"studentId"`
	StudentName   string `bson:"studentName"`
	Subject       string `bson:"subject"`
	Assignments   []int  `bson:"assignments"`
	Midterm       int    `bson:"midterm"`
	Final         int    `bson:"final"`
	Status        string `bson:"status"`
	RewardRights  int    `bson:"rewardRights"`
	RedeemedCount int    `bson:"redeemedCount"`
	RowIndex      int    `bson:"rowIndex"`
}

func (d scoreDocument) toRow() repositories.Row {
	var assignments [models.AssignmentCount]int
	copy(assignments[:], d.Assignments)

	status, ok := models.ParseOverrideStatus(d.Status)
	if !ok {
		status = models.StatusNormal
	}
	return repositories.Row{
		StudentID:   d.StudentID,
		StudentName: d.StudentName,
		Subject:     models.SubjectCode(d.Subject),
		Record: models.SubjectRecord{
			Scores: models.ScoreData{
				Assignments: assignments,
				Midterm:     d.Midterm,
				Final:       d.Final,
			},
			Status:        status,
			RewardRights:  d.RewardRights,
			RedeemedCount: d.RedeemedCount,
			RowIndex:      d.RowIndex,
		},
	}
}

func newScoreDocument(row repositories.Row) scoreDocument {
	status := row.Record.Status
	if status == "" {
		status = models.StatusNormal
	}
	return scoreDocument{
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		Subject:       string(row.Subject),
		Assignments:   append([]int(nil), row.Record.Scores.Assignments[:]...),
		Midterm:       row.Record.Scores.Midterm,
		Final:         row.Record.Scores.Final,
		Status:        string(status),
		RewardRights:  row.Record.RewardRights,
		RedeemedCount: row.Record.RedeemedCount,
		RowIndex:      row.Record.RowIndex,
	}
}

// fieldPath maps a field update to its document path and value.
func fieldPath(update models.FieldUpdate) (string, interface{}, error) {
	switch update.Field {
	case models.FieldAssignments:
		if update.Index < 0 || update.Index >= models.AssignmentCount {
			return "", nil, repositories.ErrInvalidField
		}
		return fmt.Sprintf("assignments.%d", update.Index), update.Value, nil
	case models.FieldMidterm:
		return "midterm", update.Value, nil
	case models.FieldFinal:
		return "final", update.Value, nil
	case models.FieldStatus:
		return "status", string(update.Status), nil
	case models.FieldRewardRights:
		return "rewardRights", update.Value, nil
	case models.FieldRedeemedCount:
		return "redeemedCount", update.Value, nil
	}
	return "", nil, repositories.ErrInvalidField
}

type metadataDocument struct {
	Subject string                  `bson:"_id"`
	Data    models.SubjectMetadata `bson:"data"`
}
