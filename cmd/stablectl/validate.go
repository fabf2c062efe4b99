package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/stable-scheduler-go/pkg/ingest"
	"github.com/arnavshah/stable-scheduler-go/pkg/scheduler"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the data directory without planning",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, planning, err := root.setup(cmd)
			if err != nil {
				return err
			}
			input, err := ingest.NewParser(logger).LoadDir(cmd.Context(), root.dataDir)
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			s := scheduler.NewScheduler(input, planning, logger)
			if err := s.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d horses, %d active courses, %d passive courses, days %v\n",
				len(input.Horses), len(input.ActiveCourses), len(input.PassiveCourses), s.Options.ActiveDays)
			return nil
		},
	}
}
