package export

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// WorkloadHeaders are the column titles of the workload report
var WorkloadHeaders = []string{"Horse", "Active hours", "Passive hours", "Max hours", "Overtime"}

// WorkloadRow formats one record the way every export shows it
func WorkloadRow(rec models.WorkloadRecord) []string {
	return []string{
		rec.Horse,
		fmt.Sprintf("%.2f", rec.ActiveHours),
		fmt.Sprintf("%.2f", rec.PassiveHours),
		strconv.FormatFloat(rec.MaxHours, 'f', -1, 64),
		OvertimeLabel(rec),
	}
}

// OvertimeLabel reads "Yes (0.17h)" or "No"
func OvertimeLabel(rec models.WorkloadRecord) string {
	if !rec.Overtime {
		return "No"
	}
	return fmt.Sprintf("Yes (%sh)", strconv.FormatFloat(rec.OvertimeHours, 'f', -1, 64))
}

// WorkloadTable builds an unstyled workload table with an ASCII border,
// suitable for plain-text files
func WorkloadTable(records []models.WorkloadRecord) *table.Table {
	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(WorkloadHeaders...)
	for _, rec := range records {
		t.Row(WorkloadRow(rec)...)
	}
	return t
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	overtimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimmedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Summary renders a coloured terminal overview: stats line, workload table
// with overtime rows highlighted, and the conflict list
func Summary(resp *models.ScheduleResponse) string {
	records := resp.Workload
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimmedStyle).
		Headers(WorkloadHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(records) && records[row].Overtime:
				return overtimeStyle
			default:
				return cellStyle
			}
		})
	for _, rec := range records {
		t.Row(WorkloadRow(rec)...)
	}

	out := titleStyle.Render(fmt.Sprintf(
		"%d horses, %d active, %d passive, %d turnouts, fairness %.1f",
		resp.Stats.Horses, resp.Stats.ActiveCourses, resp.Stats.PassiveCourses,
		resp.Stats.Turnouts, resp.Stats.FairnessScore,
	))
	out += "\n" + t.String()
	for _, c := range resp.Conflicts {
		out += "\n" + warningStyle.Render("! "+c.Message)
	}
	return out
}
