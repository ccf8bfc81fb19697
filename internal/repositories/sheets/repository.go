package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
)

type GradebookSheets struct {
	client *Client
}

// The web app only exposes a bulk read, so every query fetches all rows.
func (g *GradebookSheets) ListStudents(ctx context.Context) ([]*models.Student, error) {
	rows, err := g.client.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.AssembleStudents(rows), nil
}

func (g *GradebookSheets) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	students, err := g.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.FindStudent(students, studentID)
}

func (g *GradebookSheets) GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	students, err := g.ListStudents(ctx)
	if err != nil {
		return models.SubjectRecord{}, err
	}
	return repositories.FindRecord(students, studentID, subject)
}

type updateScoreRequest struct {
	Action  string      `json:"action"`
	ID      string      `json:"id"`
	Subject string      `json:"subject"`
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Index   *int        `json:"index,omitempty"`
}

func newUpdateScoreRequest(update models.FieldUpdate) updateScoreRequest {
	req := updateScoreRequest{
		Action:  "updateScore",
		ID:      update.StudentID,
		Subject: string(update.Subject),
		Field:   string(update.Field),
		Value:   update.Value,
	}
	switch update.Field {
	case models.FieldAssignments:
		index := update.Index
		req.Index = &index
	case models.FieldStatus:
		req.Value = update.Status.SheetLabel()
	}
	return req
}

func (g *GradebookSheets) UpdateField(ctx context.Context, update models.FieldUpdate) error {
	if !update.Field.IsValid() {
		return repositories.ErrInvalidField
	}
	if update.Field == models.FieldAssignments && (update.Index < 0 || update.Index >= models.AssignmentCount) {
		return repositories.ErrInvalidField
	}

	body, err := g.client.post(ctx, newUpdateScoreRequest(update))
	if err != nil {
		return err
	}
	result, err := decodeWriteResult(body)
	if err != nil {
		return err
	}
	if !result.Success {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// Redeem relies on the web app performing the check and both writes inside
// one script execution; success:false means the balance was zero.
func (g *GradebookSheets) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error) {
	body, err := g.client.post(ctx, map[string]string{
		"action":  "redeemReward",
		"id":      studentID,
		"subject": string(subject),
	})
	if err != nil {
		return false, err
	}
	result, err := decodeWriteResult(body)
	if err != nil {
		return false, err
	}
	return result.Success, nil
}

type MetadataSheets struct {
	client *Client
}

func (m *MetadataSheets) GetMetadata(ctx context.Context, subject models.SubjectCode) (*models.SubjectMetadata, error) {
	body, err := m.client.get(ctx, url.Values{
		"action":  {"getMetadata"},
		"subject": {string(subject)},
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || string(body) == "null" {
		return nil, repositories.ErrRecordNotFound
	}

	var meta models.SubjectMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("sheets: parse metadata: %w", err)
	}
	if meta.IsEmpty() {
		return nil, repositories.ErrRecordNotFound
	}
	meta = meta.Normalize()
	return &meta, nil
}

func (m *MetadataSheets) UpdateMetadata(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) error {
	body, err := m.client.post(ctx, map[string]interface{}{
		"action":  "updateMetadata",
		"subject": string(subject),
		"meta":    meta.Normalize(),
	})
	if err != nil {
		return err
	}
	result, err := decodeWriteResult(body)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("sheets: metadata update rejected: %s", result.Msg)
	}
	return nil
}
