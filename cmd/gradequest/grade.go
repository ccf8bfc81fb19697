package main

import (
	"fmt"
	"io"

	"github.com/SAP-F-2025/gradequest-service/internal/config"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/spf13/cobra"
)

type gradeFlags struct {
	scoring     config.ScoringConfig
	assignments []int
	midterm     int
	final       int
	status      string
	redeemed    int
}

func newGradeCmd() *cobra.Command {
	var f gradeFlags

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Score a record offline",
		Example: `  gradequest grade --a 10,9,8,10,7,10 --midterm 15 --final 17
  gradequest grade --a 10,10,10,10,10,10 --midterm 20 --final 20 --status Retake`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := f.record()
			if err != nil {
				return exitError(2, "%v", err)
			}
			engine, err := f.scoring.NewEngine()
			if err != nil {
				return exitError(2, "%v", err)
			}
			printGrade(cmd.OutOrStdout(), rewards.NewPolicy(engine), rec)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&f.assignments, "a", nil, "assignment scores, up to six, clamped to 0-10")
	cmd.Flags().IntVar(&f.midterm, "midterm", 0, "midterm score, clamped to 0-20")
	cmd.Flags().IntVar(&f.final, "final", 0, "final score, clamped to 0-20")
	cmd.Flags().StringVar(&f.status, "status", string(models.StatusNormal), "Normal, Retake or NoAssessment")
	cmd.Flags().IntVar(&f.redeemed, "redeemed", 0, "rewards already redeemed")
	cmd.Flags().StringVar(&f.scoring.Ladder, "ladder", "", "preset name")
	cmd.Flags().StringVar(&f.scoring.LadderFile, "ladder-file", "", "ladder YAML file")

	return cmd
}

func (f gradeFlags) record() (models.SubjectRecord, error) {
	var rec models.SubjectRecord
	if len(f.assignments) > models.AssignmentCount {
		return rec, fmt.Errorf("at most %d assignments, got %d", models.AssignmentCount, len(f.assignments))
	}
	copy(rec.Scores.Assignments[:], f.assignments)
	rec.Scores.Midterm = f.midterm
	rec.Scores.Final = f.final
	rec.Scores = rec.Scores.Clamped()

	if f.redeemed < 0 {
		return rec, fmt.Errorf("redeemed must not be negative")
	}
	status, ok := models.ParseOverrideStatus(f.status)
	if !ok {
		return rec, fmt.Errorf("unknown status %q", f.status)
	}
	rec.Status = status
	rec.RedeemedCount = f.redeemed
	return rec, nil
}

func printGrade(w io.Writer, policy *rewards.Policy, rec models.SubjectRecord) {
	summary := policy.Engine().Evaluate(rec)
	table := newTable(w, []string{"Total", "Grade", "Rank", "Lifetime", "Entitlement", "Next"})
	next := "max"
	if summary.Next.NextTier != nil {
		next = fmt.Sprintf("+%d to %s", summary.Next.PointsNeeded, *summary.Next.NextTier)
	}
	table.Append([]string{
		fmt.Sprint(summary.Total),
		summary.Grade,
		colorRank(summary.Rank),
		fmt.Sprint(summary.MaxRewards),
		fmt.Sprint(policy.Entitlement(rec)),
		next,
	})
	table.Render()
}
