package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/events"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/SAP-F-2025/gradequest-service/internal/validator"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db        *memory.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	gradebook GradebookService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, rows ...repositories.Row) *testEnv {
	t.Helper()

	policy, err := scoring.LoadPreset("current")
	require.NoError(t, err)
	engine, err := scoring.NewEngine(policy)
	require.NoError(t, err)

	db := memory.NewDB(rows...)
	repo := memory.NewRepository(db)
	publisher := events.NewMockEventPublisher(quietLogger())
	v := validator.New()
	logger := NewServiceLogger(quietLogger(), LogConfig{Service: "gradequest-test"})
	reconciler := rewards.NewReconciler(rewards.NewPolicy(engine), repo.Gradebook(), quietLogger())

	return &testEnv{
		db:        db,
		repo:      repo,
		publisher: publisher,
		validator: v,
		logger:    logger,
		gradebook: NewGradebookService(repo.Gradebook(), reconciler, publisher, v, logger),
	}
}

// row60 totals 60 on the current ladder: Platinum, three lifetime credits.
func row60(studentID, name string, subject models.SubjectCode, rowIndex, balance, redeemed int) repositories.Row {
	return repositories.Row{
		StudentID:   studentID,
		StudentName: name,
		Subject:     subject,
		Record: models.SubjectRecord{
			Scores:        models.ScoreData{Assignments: [6]int{10, 10, 10, 10, 10, 10}},
			Status:        models.StatusNormal,
			RewardRights:  balance,
			RedeemedCount: redeemed,
			RowIndex:      rowIndex,
		},
	}
}

func intPtr(v int) *int { return &v }
