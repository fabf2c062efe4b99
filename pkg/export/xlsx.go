package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// Sheet names of the workbook
const (
	SheetSchedule  = "Schedule"
	SheetWorkload  = "Workload"
	SheetConflicts = "Conflicts"
)

type sheet struct {
	name string
	rows [][]interface{}
}

// WriteXLSX writes the workbook. Schedule and Conflicts sheets are only
// present when they have rows.
func WriteXLSX(w io.Writer, resp *models.ScheduleResponse) error {
	var sheets []sheet

	var schedule [][]interface{}
	for _, horse := range HorseNames(resp.Schedule) {
		for _, day := range resp.Days {
			for _, e := range resp.Schedule[horse][day] {
				schedule = append(schedule, []interface{}{horse, day, e.Start.String(), e.End.String(), e.Type.Title(), e.Label})
			}
		}
	}
	if len(schedule) > 0 {
		header := []interface{}{"Horse", "Day", "Start", "End", "Type", "Activity"}
		sheets = append(sheets, sheet{name: SheetSchedule, rows: append([][]interface{}{header}, schedule...)})
	}

	workload := [][]interface{}{toRow(WorkloadHeaders)}
	for _, rec := range resp.Workload {
		workload = append(workload, []interface{}{rec.Horse, rec.ActiveHours, rec.PassiveHours, rec.MaxHours, OvertimeLabel(rec)})
	}
	sheets = append(sheets, sheet{name: SheetWorkload, rows: workload})

	if len(resp.Conflicts) > 0 {
		conflicts := [][]interface{}{{"Conflicts"}}
		for _, c := range resp.Conflicts {
			conflicts = append(conflicts, []interface{}{c.Message})
		}
		sheets = append(sheets, sheet{name: SheetConflicts, rows: conflicts})
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", s.name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toRow(cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}
