package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const dateFlagLayout = "20060102"

func newRunCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build one briefing",
		Long: `Build the briefing for one ranking day. Without --date the current day
in ranking.timezone is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseRunDate(date, a.cfg.Location(), time.Now())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, cleanup, err := a.newPipeline(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := p.Run(ctx, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n%s\n", res.ScriptPath, res.SubtitlePath, res.VideoPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "ranking day as YYYYMMDD (default today)")
	return cmd
}

// parseRunDate resolves --date in loc; an empty value means now.
func parseRunDate(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		return now.In(loc), nil
	}
	day, err := time.ParseInLocation(dateFlagLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYYMMDD): %w", value, err)
	}
	return day, nil
}
