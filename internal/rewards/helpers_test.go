package rewards

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testStudent = "65001"
	testSubject = models.SubjectM5History
)

func newTestPolicy(t *testing.T, ladder string) *Policy {
	t.Helper()
	p, err := scoring.LoadPreset(ladder)
	require.NoError(t, err)
	engine, err := scoring.NewEngine(p)
	require.NoError(t, err)
	return NewPolicy(engine)
}

// record60 totals 60: Platinum on the current ladder, three credits.
func record60(balance, redeemed int) models.SubjectRecord {
	return models.SubjectRecord{
		Scores:        models.ScoreData{Assignments: [6]int{10, 10, 10, 10, 10, 10}},
		Status:        models.StatusNormal,
		RewardRights:  balance,
		RedeemedCount: redeemed,
	}
}

func newMemoryStore(rec models.SubjectRecord) repositories.GradebookRepository {
	db := memory.NewDB(repositories.Row{
		StudentID:   testStudent,
		StudentName: "Malee",
		Subject:     testSubject,
		Record:      rec,
	})
	return memory.NewRepository(db).Gradebook()
}

type mockGradebook struct {
	mock.Mock
}

func (m *mockGradebook) ListStudents(ctx context.Context) ([]*models.Student, error) {
	args := m.Called(ctx)
	students, _ := args.Get(0).([]*models.Student)
	return students, args.Error(1)
}

func (m *mockGradebook) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	args := m.Called(ctx, studentID)
	student, _ := args.Get(0).(*models.Student)
	return student, args.Error(1)
}

func (m *mockGradebook) GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	args := m.Called(ctx, studentID, subject)
	return args.Get(0).(models.SubjectRecord), args.Error(1)
}

func (m *mockGradebook) UpdateField(ctx context.Context, update models.FieldUpdate) error {
	return m.Called(ctx, update).Error(0)
}

func (m *mockGradebook) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error) {
	args := m.Called(ctx, studentID, subject)
	return args.Bool(0), args.Error(1)
}
