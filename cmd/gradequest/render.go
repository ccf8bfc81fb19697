package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var rankColors = map[scoring.Rank]*color.Color{
	scoring.RankBronze:    color.New(color.FgYellow),
	scoring.RankSilver:    color.New(color.FgWhite),
	scoring.RankGold:      color.New(color.FgHiYellow, color.Bold),
	scoring.RankPlatinum:  color.New(color.FgCyan),
	scoring.RankDiamond:   color.New(color.FgHiBlue, color.Bold),
	scoring.RankCommander: color.New(color.FgMagenta, color.Bold),
	scoring.RankConqueror: color.New(color.FgHiRed, color.Bold),
}

func colorRank(rank scoring.Rank) string {
	if c, ok := rankColors[rank]; ok {
		return c.Sprint(string(rank))
	}
	return string(rank)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// renderBoard prints the teacher board. Rows whose stored balance lags the
// entitlement are flagged so the teacher can see pending corrections.
func renderBoard(w io.Writer, rows []services.BoardRow) {
	table := newTable(w, []string{"ID", "Name", "A1-A6", "Mid", "Fin", "Total", "Grade", "Rank", "Rights", "Used", "Next"})
	for _, row := range rows {
		rec := row.Record

		assignments := make([]string, len(rec.Scores.Assignments))
		for i, a := range rec.Scores.Assignments {
			assignments[i] = strconv.Itoa(a)
		}

		rights := strconv.Itoa(rec.Rewards.Stored)
		if rec.Rewards.Entitlement > rec.Rewards.Stored {
			rights = color.YellowString("%d→%d", rec.Rewards.Stored, rec.Rewards.Entitlement)
		}

		next := "max"
		if rec.Next.NextTier != nil {
			next = fmt.Sprintf("+%d to %s", rec.Next.PointsNeeded, *rec.Next.NextTier)
		}

		table.Append([]string{
			row.StudentID,
			row.Name,
			strings.Join(assignments, " "),
			strconv.Itoa(rec.Scores.Midterm),
			strconv.Itoa(rec.Scores.Final),
			strconv.Itoa(rec.Total),
			rec.Grade,
			colorRank(rec.Rank),
			rights,
			strconv.Itoa(rec.Rewards.Redeemed),
			next,
		})
	}
	table.Render()
}

func renderLadder(w io.Writer, policy scoring.Policy) {
	table := newTable(w, []string{"Rank", "From", "Lifetime rewards"})
	for i, rank := range scoring.Ranks {
		from := 0
		if i > 0 {
			from = policy.Breakpoints[i-1]
		}
		table.Append([]string{colorRank(rank), strconv.Itoa(from), strconv.Itoa(policy.Allotments[i])})
	}
	table.Render()
}
