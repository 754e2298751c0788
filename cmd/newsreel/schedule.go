package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/newsreel/internal/scheduler"
)

func newScheduleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Build a briefing every day at schedule.time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, cleanup, err := a.newPipeline(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sched, err := scheduler.New(a.cfg.Ranking.Timezone)
			if err != nil {
				return err
			}

			job := func() {
				day := time.Now().In(sched.Location())
				if _, err := p.Run(ctx, day); err != nil {
					a.log.ErrorObj("scheduled run failed", "error", err.Error())
				}
			}
			if err := sched.Schedule(a.cfg.Schedule.Time, job); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			a.log.InfoObj("scheduler started", "schedule", map[string]any{
				"time":     a.cfg.Schedule.Time,
				"timezone": a.cfg.Ranking.Timezone,
				"next_run": sched.Next(),
			})

			if a.cfg.Schedule.RunOnStart {
				go func() {
					if !sched.RunNow() {
						a.log.Warn("start-up run skipped: a run is already in progress")
					}
				}()
			}

			<-ctx.Done()
			a.log.Info("scheduler stopping")
			return nil
		},
	}
}
