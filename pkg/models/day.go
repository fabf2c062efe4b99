package models

import "strings"

// Week lists the planning days in calendar order, using the names found in
// the course tables.
var Week = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// DefaultActiveDays are the days planned when nothing else is configured
var DefaultActiveDays = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"}

// DayIndex returns the position of day in the week, or -1 if unknown
func DayIndex(day string) int {
	day = strings.TrimSpace(day)
	for i, d := range Week {
		if strings.EqualFold(d, day) {
			return i
		}
	}
	return -1
}

// CanonicalDay returns the week spelling of day, or "" if unknown
func CanonicalDay(day string) string {
	if i := DayIndex(day); i >= 0 {
		return Week[i]
	}
	return ""
}
