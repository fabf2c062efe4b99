package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/logging"
	"github.com/arnavshah/stable-scheduler-go/pkg/models"
	"github.com/arnavshah/stable-scheduler-go/pkg/scheduler"
)

type rootOptions struct {
	cfgPath string
	dataDir string
	days    []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "stablectl",
		Short:         "Weekly stable planning from the stable's CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (YAML)")
	cmd.PersistentFlags().StringVarP(&opts.dataDir, "data", "d", ".", "directory holding the BD_*.csv files")
	cmd.PersistentFlags().StringSliceVar(&opts.days, "days", nil, "days to plan, e.g. Lundi,Mardi")

	cmd.AddCommand(newGenerateCmd(opts), newValidateCmd(opts))
	return cmd
}

// setup loads configuration and returns a stderr logger plus the planning
// options with any --days override applied
func (o *rootOptions) setup(cmd *cobra.Command) (zerolog.Logger, models.PlanningOptions, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return zerolog.Nop(), models.PlanningOptions{}, fmt.Errorf("load config: %w", err)
	}
	logger := logging.SetupWithWriter(cfg.Environment, cmd.ErrOrStderr())

	planning := scheduler.MergeOptions(scheduler.DefaultOptions(), &cfg.Planning)
	if len(o.days) > 0 {
		planning = scheduler.MergeOptions(planning, &models.PlanningOptions{ActiveDays: o.days})
	}
	return logger, planning, nil
}
