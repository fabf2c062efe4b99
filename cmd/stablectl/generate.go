package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/stable-scheduler-go/pkg/export"
	"github.com/arnavshah/stable-scheduler-go/pkg/ingest"
	"github.com/arnavshah/stable-scheduler-go/pkg/scheduler"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var txtPath, xlsxPath string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Plan the week and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, planning, err := root.setup(cmd)
			if err != nil {
				return err
			}

			input, err := ingest.NewParser(logger).LoadDir(cmd.Context(), root.dataDir)
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			resp, err := scheduler.NewScheduler(input, planning, logger).Generate()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), export.Summary(resp))

			now := time.Now()
			if txtPath != "" {
				if err := writeFile(txtPath, func(f *os.File) error { return export.WriteText(f, resp, now) }); err != nil {
					return err
				}
				logger.Info().Str("path", txtPath).Msg("text report written")
			}
			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(f *os.File) error { return export.WriteXLSX(f, resp) }); err != nil {
					return err
				}
				logger.Info().Str("path", xlsxPath).Msg("workbook written")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&txtPath, "txt", "", "write the text report to this file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the workbook to this file")
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
