// Package export serialises a generated week to a plain-text report, an
// xlsx workbook and a terminal summary.
package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

var rule = strings.Repeat("=", 70)

// HorseNames returns the schedule's horses sorted by name
func HorseNames(schedule models.Schedule) []string {
	names := make([]string, 0, len(schedule))
	for name := range schedule {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteText writes the two-part text report followed by unresolved
// conflicts, if any
func WriteText(w io.Writer, resp *models.ScheduleResponse, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)
	section := func(title string) {
		fmt.Fprintln(bw, rule)
		fmt.Fprintln(bw, title)
		fmt.Fprintln(bw, rule)
	}

	section("STABLE SCHEDULE - Generated on " + generatedAt.Format("2006-01-02 at 15:04:05"))
	fmt.Fprintln(bw)

	section("REPORT 1: DETAILED SCHEDULE PER HORSE")
	for _, horse := range HorseNames(resp.Schedule) {
		fmt.Fprintf(bw, "\nSchedule for %s:\n", horse)
		for _, day := range resp.Days {
			entries := resp.Schedule[horse][day]
			if len(entries) == 0 {
				fmt.Fprintf(bw, "  **%s**: No activity planned.\n", day)
				continue
			}
			fmt.Fprintf(bw, "  **%s**\n", day)
			for _, e := range entries {
				fmt.Fprintf(bw, "    - %s-%s -> %s: %s\n", e.Start, e.End, e.Type.Title(), e.Label)
			}
		}
	}

	fmt.Fprintln(bw)
	section("REPORT 2: WORKLOAD")
	fmt.Fprintln(bw, WorkloadTable(resp.Workload).String())

	if len(resp.Conflicts) > 0 {
		fmt.Fprintln(bw)
		section("UNRESOLVED CONFLICTS")
		for _, c := range resp.Conflicts {
			fmt.Fprintf(bw, "- %s\n", c.Message)
		}
	}
	return bw.Flush()
}
