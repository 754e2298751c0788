package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/newsreel/internal/config"
	"github.com/Adda-Baaj/newsreel/internal/history"
	"github.com/Adda-Baaj/newsreel/internal/logger"
	"github.com/Adda-Baaj/newsreel/internal/pipeline"
	"github.com/Adda-Baaj/newsreel/pkg/publishers"
)

// app carries what the persistent pre-run resolved for the subcommands.
type app struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "newsreel",
		Short: "Daily news briefing generator",
		Long: `newsreel reads a news ranking, enriches the top stories and renders a
Markdown script, SRT subtitles and a slideshow video for the day.

Example usage:
  newsreel run                 # Build today's briefing
  newsreel run --date 20240517 # Build the briefing for a given day
  newsreel schedule            # Build a briefing every day at schedule.time
  newsreel history --limit 5   # Show the latest runs`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./newsreel.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newRunCmd(a), newScheduleCmd(a), newHistoryCmd(a))
	return root
}

// init loads configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.log.DebugObj("configuration loaded", "config", map[string]any{
		"provider":   cfg.Ranking.Provider,
		"take":       cfg.Ranking.Take,
		"output_dir": cfg.Output.Dir,
		"timezone":   cfg.Ranking.Timezone,
	})
	return nil
}

// newPipeline wires the pipeline with its history recorder and publishers.
// The returned cleanup closes the publishers.
func (a *app) newPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	deps := pipeline.Deps{Log: a.log}

	if a.cfg.History.Enabled {
		deps.History = history.NewRecorder(a.cfg.History.Path)
	}

	pubCfgs, err := a.cfg.PublisherConfigs()
	if err != nil {
		return nil, nil, fmt.Errorf("loading publishers: %w", err)
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("building publishers: %w", err)
	}
	deps.Publishers = pubs
	cleanup := func() {
		if err := publishers.CloseAll(pubs); err != nil {
			a.log.WarnObj("closing publishers failed", "error", err.Error())
		}
	}

	p, err := pipeline.New(a.cfg, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}
