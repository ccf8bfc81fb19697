package services

import (
	"context"
	"sort"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
)

// passingTotal is the lowest total with a non-zero letter grade.
const passingTotal = 50

// AnalyticsService summarizes subject boards for the teacher.
type AnalyticsService interface {
	SubjectAnalytics(ctx context.Context, subject models.SubjectCode, actor string) (*SubjectAnalytics, error)
	Dashboard(ctx context.Context, actor string) (*TeacherDashboard, error)
}

type SubjectAnalytics struct {
	Subject      models.SubjectCode `json:"subject"`
	SubjectName  string             `json:"subject_name"`
	Students     int                `json:"students"`
	AverageTotal float64            `json:"average_total"`
	MedianTotal  float64            `json:"median_total"`
	HighestTotal int                `json:"highest_total"`
	LowestTotal  int                `json:"lowest_total"`
	PassingRate  float64            `json:"passing_rate"`

	GradeDistribution  map[string]int                `json:"grade_distribution"`
	RankDistribution   map[scoring.Rank]int          `json:"rank_distribution"`
	StatusDistribution map[models.OverrideStatus]int `json:"status_distribution"`

	// Rewards across the class.
	RewardsOutstanding int `json:"rewards_outstanding"`
	RewardsRedeemed    int `json:"rewards_redeemed"`
	// PendingResync counts records whose stored balance differs from the
	// recomputed entitlement.
	PendingResync int `json:"pending_resync"`

	// NearNextTier lists students within reach of the next rank, closest first.
	NearNextTier []TierCandidate `json:"near_next_tier"`

	GeneratedAt time.Time `json:"generated_at"`
}

type TierCandidate struct {
	StudentID    string       `json:"student_id"`
	Name         string       `json:"name"`
	Rank         scoring.Rank `json:"rank"`
	NextTier     scoring.Rank `json:"next_tier"`
	PointsNeeded int          `json:"points_needed"`
}

type TeacherDashboard struct {
	Ladder      string              `json:"ladder"`
	Subjects    []*SubjectAnalytics `json:"subjects"`
	Students    int                 `json:"students"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// nearTierWindow bounds how far below a breakpoint a student is still listed.
const nearTierWindow = 5

type analyticsService struct {
	gradebook GradebookService
	logger    *ServiceLogger
	now       func() time.Time
}

func NewAnalyticsService(gradebook GradebookService, logger *ServiceLogger) AnalyticsService {
	return &analyticsService{
		gradebook: gradebook,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *analyticsService) SubjectAnalytics(ctx context.Context, subject models.SubjectCode, actor string) (result *SubjectAnalytics, err error) {
	log := s.logger.WithOperation(ctx, "subject_analytics", actor)
	defer func() { log.LogResult(string(subject), "subject", err) }()

	rows, err := s.gradebook.SubjectBoard(ctx, subject, "")
	if err != nil {
		return nil, err
	}
	return s.summarize(subject, rows), nil
}

func (s *analyticsService) Dashboard(ctx context.Context, actor string) (result *TeacherDashboard, err error) {
	log := s.logger.WithOperation(ctx, "teacher_dashboard", actor)
	defer func() { log.LogResult("", "dashboard", err) }()

	dashboard := &TeacherDashboard{
		Ladder:      s.gradebook.Policy().Name,
		Subjects:    make([]*SubjectAnalytics, 0, len(models.SubjectCodes)),
		GeneratedAt: s.now(),
	}

	students, err := s.gradebook.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.Students = len(students)

	for _, subject := range models.SubjectCodes {
		rows, err := s.gradebook.SubjectBoard(ctx, subject, "")
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		dashboard.Subjects = append(dashboard.Subjects, s.summarize(subject, rows))
	}
	return dashboard, nil
}

func (s *analyticsService) summarize(subject models.SubjectCode, rows []BoardRow) *SubjectAnalytics {
	a := &SubjectAnalytics{
		Subject:            subject,
		SubjectName:        subject.DisplayName(),
		Students:           len(rows),
		GradeDistribution:  make(map[string]int),
		RankDistribution:   make(map[scoring.Rank]int),
		StatusDistribution: make(map[models.OverrideStatus]int),
		NearNextTier:       []TierCandidate{},
		GeneratedAt:        s.now(),
	}
	if len(rows) == 0 {
		return a
	}

	totals := make([]int, 0, len(rows))
	passing := 0
	sum := 0
	for _, row := range rows {
		rec := row.Record
		totals = append(totals, rec.Total)
		sum += rec.Total

		a.GradeDistribution[rec.Grade]++
		a.RankDistribution[rec.Rank]++
		a.StatusDistribution[rec.Status]++

		if rec.Status.IsNormal() && rec.Total >= passingTotal {
			passing++
		}

		a.RewardsOutstanding += rec.Rewards.Stored
		a.RewardsRedeemed += rec.Rewards.Redeemed
		if rec.Rewards.State != rewards.StateSynced {
			a.PendingResync++
		}

		if rec.Status.IsNormal() && rec.Next.NextTier != nil && rec.Next.PointsNeeded <= nearTierWindow {
			a.NearNextTier = append(a.NearNextTier, TierCandidate{
				StudentID:    row.StudentID,
				Name:         row.Name,
				Rank:         rec.Rank,
				NextTier:     *rec.Next.NextTier,
				PointsNeeded: rec.Next.PointsNeeded,
			})
		}
	}

	sort.Ints(totals)
	a.LowestTotal = totals[0]
	a.HighestTotal = totals[len(totals)-1]
	a.AverageTotal = roundTo2(float64(sum) / float64(len(totals)))
	a.MedianTotal = median(totals)
	a.PassingRate = roundTo2(float64(passing) / float64(len(rows)) * 100)

	sort.SliceStable(a.NearNextTier, func(i, j int) bool {
		return a.NearNextTier[i].PointsNeeded < a.NearNextTier[j].PointsNeeded
	})
	return a
}

// median expects sorted input.
func median(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
