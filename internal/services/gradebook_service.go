package services

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/events"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/SAP-F-2025/gradequest-service/internal/validator"
)

const (
	msgRedeemed = "Reward redeemed"
	msgDenied   = "No reward rights left for this subject"
)

type gradebookService struct {
	repo       repositories.GradebookRepository
	reconciler *rewards.Reconciler
	publisher  events.EventPublisher
	validator  *validator.Validator
	logger     *ServiceLogger
}

func NewGradebookService(
	repo repositories.GradebookRepository,
	reconciler *rewards.Reconciler,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *ServiceLogger,
) GradebookService {
	return &gradebookService{
		repo:       repo,
		reconciler: reconciler,
		publisher:  publisher,
		validator:  validator,
		logger:     logger,
	}
}

func (s *gradebookService) Policy() scoring.Policy {
	return s.reconciler.Policy().Engine().Policy()
}

// ===== VIEWS =====

func (s *gradebookService) recordView(subject models.SubjectCode, rec models.SubjectRecord) RecordView {
	policy := s.reconciler.Policy()
	summary := policy.Engine().Evaluate(rec)
	status := rec.Status
	if status == "" {
		status = models.StatusNormal
	}
	return RecordView{
		Subject:     subject,
		SubjectName: subject.DisplayName(),
		Scores:      rec.Scores,
		Status:      status,
		RowIndex:    rec.RowIndex,
		Total:       summary.Total,
		Grade:       summary.Grade,
		Rank:        summary.Rank,
		MaxRewards:  summary.MaxRewards,
		Next:        summary.Next,
		Rewards:     policy.Assess(rec),
	}
}

func (s *gradebookService) studentView(student *models.Student) StudentView {
	view := StudentView{ID: student.ID, Name: student.Name, Subjects: []RecordView{}}
	for _, code := range student.EnrolledSubjects() {
		view.Subjects = append(view.Subjects, s.recordView(code, student.Subjects[code]))
	}
	return view
}

// ===== QUERIES =====

func (s *gradebookService) ListStudents(ctx context.Context) ([]StudentView, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}

	views := make([]StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, s.studentView(student))
	}
	return views, nil
}

func (s *gradebookService) GetStudent(ctx context.Context, studentID string) (*StudentView, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, NewValidationError("student_id", "is required", studentID)
	}

	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, ErrStudentNotFound)
	}
	view := s.studentView(student)
	return &view, nil
}

// SubjectBoard lists the students enrolled in a subject in sheet row order,
// optionally filtered by a case-insensitive name or id substring.
func (s *gradebookService) SubjectBoard(ctx context.Context, subject models.SubjectCode, query string) ([]BoardRow, error) {
	if !subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	rows := []BoardRow{}
	for _, student := range students {
		rec, ok := student.Record(subject)
		if !ok {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(student.Name), query) &&
			!strings.Contains(strings.ToLower(student.ID), query) {
			continue
		}
		rows = append(rows, BoardRow{
			StudentID: student.ID,
			Name:      student.Name,
			Record:    s.recordView(subject, rec),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Record.RowIndex < rows[j].Record.RowIndex
	})
	return rows, nil
}

// ===== COMMANDS =====

func (s *gradebookService) UpdateScore(ctx context.Context, req *ScoreUpdateRequest, actor string) (view *RecordView, err error) {
	log := s.logger.WithOperation(ctx, "update_score", actor)
	defer func() { log.LogResult(req.StudentID, string(req.Subject), err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.Subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	switch req.Field {
	case models.FieldAssignments, models.FieldMidterm, models.FieldFinal:
	case models.FieldStatus:
		return nil, NewValidationError("field", "use the status endpoint to change the override status", req.Field)
	case models.FieldRewardRights:
		return nil, NewValidationError("field", "use the rewards endpoint to set the balance", req.Field)
	case models.FieldRedeemedCount:
		return nil, NewValidationError("field", "is advanced only by redemptions", req.Field)
	}

	update := models.FieldUpdate{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Field:     req.Field,
		Value:     req.Value,
	}
	if req.Field == models.FieldAssignments {
		if req.Index == nil {
			return nil, NewValidationError("index", "is required for assignments", nil)
		}
		update.Index = *req.Index
	}
	if errs := s.validator.Business().ValidateFieldUpdate(update); len(errs) > 0 {
		return nil, errs
	}

	return s.applyEdit(ctx, update)
}

func (s *gradebookService) UpdateStatus(ctx context.Context, req *StatusUpdateRequest, actor string) (view *RecordView, err error) {
	log := s.logger.WithOperation(ctx, "update_status", actor)
	defer func() { log.LogResult(req.StudentID, string(req.Subject), err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.Subject.IsValid() {
		return nil, ErrInvalidSubject
	}
	status, ok := models.ParseOverrideStatus(req.Status)
	if !ok {
		return nil, NewValidationError("status", "must be Normal, Retake or NoAssessment", req.Status)
	}

	return s.applyEdit(ctx, models.FieldUpdate{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Field:     models.FieldStatus,
		Status:    status,
	})
}

func (s *gradebookService) applyEdit(ctx context.Context, update models.FieldUpdate) (*RecordView, error) {
	result, err := s.reconciler.ApplyEdit(ctx, update)
	if err != nil {
		return nil, storeError(err, ErrSubjectNotEnrolled)
	}

	view := s.recordView(update.Subject, result.Record)
	if result.SyncErr != nil {
		view.SyncWarning = "reward balance could not be saved; refresh to see the stored value"
	}

	var index *int
	if update.Field == models.FieldAssignments {
		i := update.Index
		index = &i
	}
	value := update.Clamped().Value
	valueText := ""
	if update.Field == models.FieldStatus {
		valueText = string(update.Status)
	} else {
		valueText = strconv.Itoa(value)
	}
	s.publish(ctx, events.NewScoreUpdatedEvent(events.ScoreUpdatedEvent{
		StudentID: update.StudentID,
		Subject:   string(update.Subject),
		Field:     string(update.Field),
		Index:     index,
		Value:     valueText,
		Total:     view.Total,
		Grade:     view.Grade,
		Rank:      string(view.Rank),
	}))
	if result.BalanceWritten {
		s.publish(ctx, events.NewBalanceResyncedEvent(events.RewardBalanceEvent{
			StudentID:     update.StudentID,
			Subject:       string(update.Subject),
			Previous:      result.Before.RewardRights,
			Balance:       result.Record.RewardRights,
			RedeemedCount: result.Record.RedeemedCount,
			Entitlement:   result.Entitlement,
			Reason:        "score_edit",
		}))
	}
	return &view, nil
}

func (s *gradebookService) OverrideBalance(ctx context.Context, req *BalanceOverrideRequest, actor string) (view *RecordView, err error) {
	log := s.logger.WithOperation(ctx, "override_balance", actor)
	defer func() { log.LogResult(req.StudentID, string(req.Subject), err) }()

	if !req.Subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	adj := rewards.Adjustment{Balance: req.Balance, Delta: req.Delta}
	result, err := s.reconciler.Override(ctx, req.StudentID, req.Subject, adj)
	if err != nil {
		return nil, storeError(err, ErrSubjectNotEnrolled)
	}

	v := s.recordView(req.Subject, result.Record)
	s.publish(ctx, events.NewBalanceOverriddenEvent(events.RewardBalanceEvent{
		StudentID:     req.StudentID,
		Subject:       string(req.Subject),
		Previous:      result.Before.RewardRights,
		Balance:       result.Record.RewardRights,
		RedeemedCount: result.Record.RedeemedCount,
		Entitlement:   v.Rewards.Entitlement,
		Reason:        "manual",
	}))
	return &v, nil
}

// Redeem never reports a denial as an error; only transport failures and
// unknown records are errors.
func (s *gradebookService) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (view *RedemptionView, err error) {
	log := s.logger.WithOperation(ctx, "redeem_reward", studentID)
	defer func() { log.LogResult(studentID, string(subject), err) }()

	if !subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	result, err := s.reconciler.Redeem(ctx, studentID, subject)
	if err != nil {
		return nil, storeError(err, ErrSubjectNotEnrolled)
	}

	view = &RedemptionView{
		Redeemed:    result.Outcome == rewards.OutcomeRedeemed,
		Outcome:     result.Outcome,
		Corrected:   result.Corrected,
		CorrectedTo: result.CorrectedTo,
		Record:      s.recordView(subject, result.Record),
		Trace:       result.Trace,
	}

	if result.Corrected {
		s.publish(ctx, events.NewBalanceResyncedEvent(events.RewardBalanceEvent{
			StudentID:     studentID,
			Subject:       string(subject),
			Previous:      result.CorrectedFrom,
			Balance:       result.CorrectedTo,
			RedeemedCount: result.Record.RedeemedCount,
			Entitlement:   result.CorrectedTo,
			Reason:        "pre_spend",
		}))
	}

	payload := events.RewardRedemptionEvent{
		StudentID:     studentID,
		Subject:       string(subject),
		Balance:       result.Record.RewardRights,
		RedeemedCount: result.Record.RedeemedCount,
		Corrected:     result.Corrected,
	}
	if view.Redeemed {
		view.Message = msgRedeemed
		s.publish(ctx, events.NewRewardRedeemedEvent(payload))
	} else {
		view.Message = msgDenied
		s.publish(ctx, events.NewRedemptionDeniedEvent(payload))
	}
	return view, nil
}

// publish is best-effort: a failed publish is logged and never fails the
// operation that triggered it.
func (s *gradebookService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
