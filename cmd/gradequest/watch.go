package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/client"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/poller"
	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type watchFlags struct {
	server   string
	secret   string
	subject  string
	query    string
	interval time.Duration
	once     bool
}

func newWatchCmd() *cobra.Command {
	var f watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live teacher board for one subject",
		Long: `Logs in as the teacher and redraws the subject board every interval.
A failed refresh keeps the last board on screen and prints the error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&f.server, "server", envOr("GRADEQUEST_URL", "http://localhost:8080"), "API base URL")
	cmd.Flags().StringVar(&f.secret, "secret", os.Getenv("TEACHER_SECRET"), "teacher secret (default $TEACHER_SECRET)")
	cmd.Flags().StringVar(&f.subject, "subject", string(models.SubjectCodes[0]), "subject code")
	cmd.Flags().StringVar(&f.query, "q", "", "filter by name or student id")
	cmd.Flags().DurationVar(&f.interval, "interval", poller.DefaultInterval, "refresh interval")
	cmd.Flags().BoolVar(&f.once, "once", false, "print the board once and exit")

	return cmd
}

func runWatch(ctx context.Context, f watchFlags, out io.Writer) error {
	subject, ok := models.ParseSubjectCode(f.subject)
	if !ok {
		return exitError(2, "unknown subject %q", f.subject)
	}
	if f.secret == "" {
		return exitError(2, "--secret or TEACHER_SECRET is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(f.server, nil)
	if err := api.LoginTeacher(ctx, f.secret); err != nil {
		return exitError(1, "login: %v", err)
	}
	policy, err := api.Policy(ctx)
	if err != nil {
		return exitError(1, "policy: %v", err)
	}

	fetch := func(ctx context.Context) ([]services.BoardRow, error) {
		return api.Board(ctx, subject, f.query)
	}

	if f.once {
		rows, err := fetch(ctx)
		if err != nil {
			return exitError(1, "board: %v", err)
		}
		renderBoard(out, rows)
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	p := poller.New(poller.FetchFunc[[]services.BoardRow](fetch), f.interval, logger)
	p.Start(ctx)
	defer p.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.Updates():
			snap, ok := p.Snapshot()
			fmt.Fprint(out, "\033[H\033[2J")
			color.New(color.FgCyan, color.Bold).Fprintf(out, "%s  ladder=%s  q=%q\n", subject, policy.Name, f.query)
			if ok {
				fmt.Fprintf(out, "updated %s, %d students\n", snap.FetchedAt.Format("15:04:05"), len(snap.Value))
				renderBoard(out, snap.Value)
			}
			if snap.Err != nil {
				color.New(color.FgRed).Fprintf(out, "refresh failed: %v\n", snap.Err)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
