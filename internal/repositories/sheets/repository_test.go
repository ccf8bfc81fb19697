package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) repositories.Repository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRepository(server.URL, server.Client())
}

func TestListStudents(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "getAllStudents", r.URL.Query().Get("action"))
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		_, _ = io.WriteString(w, `[{"id":"65001","name":"Malee","subjects":{"M5_History":{"scores":{"assignments":[10,10,10,9,0,0],"midterm":10,"final":10},"status":"Normal","rewardRights":2,"redeemedCount":1,"rowIndex":3},"M1_Social":{"scores":{"assignments":[1,2],"midterm":5.4,"final":0},"status":"ร","rewardRights":0,"redeemedCount":0,"rowIndex":1}}},{"id":"65002","name":"Somchai","subjects":{"M5_History":{"scores":{"assignments":[0,0,0,0,0,0],"midterm":0,"final":0},"status":"มส.","rewardRights":0,"redeemedCount":0,"rowIndex":1}}}]`)
	})

	students, err := repo.Gradebook().ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)

	// M1_Social precedes M5_History in the catalogue, so 65001 is seen first.
	assert.Equal(t, "65001", students[0].ID)
	social := students[0].Subjects[models.SubjectM1Social]
	assert.Equal(t, models.StatusRetake, social.Status)
	assert.Equal(t, [6]int{1, 2, 0, 0, 0, 0}, social.Scores.Assignments)
	assert.Equal(t, 5, social.Scores.Midterm)

	history := students[0].Subjects[models.SubjectM5History]
	assert.Equal(t, 2, history.RewardRights)
	assert.Equal(t, 1, history.RedeemedCount)

	assert.Equal(t, models.StatusNoAssessment, students[1].Subjects[models.SubjectM5History].Status)
}

func TestListStudents_ClampsHandTypedCells(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"65001","name":"Malee","subjects":{"M5_History":{"scores":{"assignments":[15,10,10,10,10,-3],"midterm":25,"final":20},"status":"Normal","rewardRights":-2,"redeemedCount":-1,"rowIndex":0}}}]`)
	})

	rec, err := repo.Gradebook().GetRecord(context.Background(), "65001", models.SubjectM5History)
	require.NoError(t, err)

	assert.Equal(t, [6]int{10, 10, 10, 10, 10, 0}, rec.Scores.Assignments)
	assert.Equal(t, 20, rec.Scores.Midterm)
	assert.Equal(t, 0, rec.RewardRights)
	assert.Equal(t, 0, rec.RedeemedCount)

	total := rec.Scores.Midterm + rec.Scores.Final
	for _, a := range rec.Scores.Assignments {
		total += a
	}
	assert.LessOrEqual(t, total, models.MaxTotalScore)
}

func TestGetRecord_NotFound(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := repo.Gradebook().GetRecord(context.Background(), "missing", models.SubjectM1History)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestUpdateField_SendsSheetPayload(t *testing.T) {
	var got map[string]interface{}
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/plain;charset=utf-8", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	err := repo.Gradebook().UpdateField(context.Background(), models.FieldUpdate{
		StudentID: "65001",
		Subject:   models.SubjectM5History,
		Field:     models.FieldAssignments,
		Index:     4,
		Value:     8,
	})
	require.NoError(t, err)
	assert.Equal(t, "updateScore", got["action"])
	assert.Equal(t, "assignments", got["field"])
	assert.Equal(t, float64(4), got["index"])
	assert.Equal(t, float64(8), got["value"])

	err = repo.Gradebook().UpdateField(context.Background(), models.FieldUpdate{
		StudentID: "65001",
		Subject:   models.SubjectM5History,
		Field:     models.FieldStatus,
		Status:    models.StatusNoAssessment,
	})
	require.NoError(t, err)
	assert.Equal(t, "มส.", got["value"])
	assert.NotContains(t, got, "index")
}

func TestUpdateField_UnknownRow(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := repo.Gradebook().UpdateField(context.Background(), models.FieldUpdate{
		StudentID: "nobody",
		Subject:   models.SubjectM5History,
		Field:     models.FieldMidterm,
		Value:     3,
	})
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestRedeem(t *testing.T) {
	balance := 1
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "redeemReward", body["action"])
		if balance > 0 {
			balance--
			_, _ = io.WriteString(w, `{"success":true}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":false}`)
	})

	ok, err := repo.Gradebook().Redeem(context.Background(), "65001", models.SubjectM5History)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Gradebook().Redeem(context.Background(), "65001", models.SubjectM5History)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedeem_TransportError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	})

	_, err := repo.Gradebook().Redeem(context.Background(), "65001", models.SubjectM5History)
	assert.ErrorContains(t, err, "API returned 500")
}

func TestGetMetadata(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("subject") {
		case "M5_History":
			_, _ = io.WriteString(w, `{"assignments":[{"name":"Map","link":"https://example.com/map"}]}`)
		default:
			_, _ = io.WriteString(w, `null`)
		}
	})

	meta, err := repo.Metadata().GetMetadata(context.Background(), models.SubjectM5History)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/map"}, meta.Assignments[0].Links)
	assert.Empty(t, meta.Assignments[0].Link)

	_, err = repo.Metadata().GetMetadata(context.Background(), models.SubjectM6Social)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestUpdateMetadata(t *testing.T) {
	var got struct {
		Action  string                 `json:"action"`
		Subject string                 `json:"subject"`
		Meta    models.SubjectMetadata `json:"meta"`
	}
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	meta := models.DefaultSubjectMetadata()
	require.NoError(t, repo.Metadata().UpdateMetadata(context.Background(), models.SubjectM1History, meta))
	assert.Equal(t, "updateMetadata", got.Action)
	assert.Equal(t, "M1_History", got.Subject)
	assert.Len(t, got.Meta.Assignments, models.AssignmentCount)
}
