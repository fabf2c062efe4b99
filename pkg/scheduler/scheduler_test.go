package scheduler

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

func clock(s string) models.Clock {
	c, err := models.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func course(day, start, end, skill string, required int, name string) models.CourseSlot {
	return models.CourseSlot{Day: day, Start: clock(start), End: clock(end), Skill: skill, Required: required, Name: name}
}

func mondayOptions() models.PlanningOptions {
	return models.PlanningOptions{ActiveDays: []string{"Lundi"}, StandardPaddocks: 9, SpecialPaddocks: 2}
}

func newTestRun(t *testing.T, horses []*models.Horse, opts models.PlanningOptions) *Run {
	t.Helper()
	r, err := NewRun(horses, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return r
}

func qualified(name string, maxHours float64, skill string, q models.Qualification) *models.Horse {
	return &models.Horse{Name: name, MaxHours: maxHours, Qualifications: map[string]models.Qualification{skill: q}}
}

func TestAssignActiveCourses(t *testing.T) {
	horses := []*models.Horse{
		qualified("Alto", 10, "jump", models.QualificationYes),
		qualified("Bella", 10, "jump", models.QualificationYes),
	}

	r := newTestRun(t, horses, mondayOptions())
	r.AssignActiveCourses([]models.CourseSlot{course("Lundi", "09:00", "11:00", "jump", 1, "Jumping")})

	assigned := 0
	for _, h := range horses {
		assigned += len(r.Schedule()[h.Name]["Lundi"])
	}
	if assigned != 1 {
		t.Errorf("Expected 1 horse assigned to Jumping, got %d", assigned)
	}

	if r.ActiveHours("Alto") != 2.0 {
		t.Errorf("Expected first horse in roster to have 2.0 hours, got %f", r.ActiveHours("Alto"))
	}
}

func TestAssignActiveCourses_Overlap(t *testing.T) {
	horses := []*models.Horse{qualified("Alto", 10, "jump", models.QualificationYes)}

	r := newTestRun(t, horses, mondayOptions())
	r.AssignActiveCourses([]models.CourseSlot{
		course("Lundi", "09:00", "11:00", "jump", 1, "Jumping A"),
		course("Lundi", "10:00", "12:00", "jump", 1, "Jumping B"),
	})

	if n := len(r.Schedule()["Alto"]["Lundi"]); n != 1 {
		t.Errorf("Expected only 1 course to be assigned due to overlap, got %d", n)
	}
}

func TestAssignActiveCourses_Touching(t *testing.T) {
	horses := []*models.Horse{qualified("Alto", 10, "jump", models.QualificationYes)}

	r := newTestRun(t, horses, mondayOptions())
	r.AssignActiveCourses([]models.CourseSlot{
		course("Lundi", "09:00", "10:00", "jump", 1, "Jumping A"),
		course("Lundi", "10:00", "11:00", "jump", 1, "Jumping B"),
	})

	if n := len(r.Schedule()["Alto"]["Lundi"]); n != 2 {
		t.Errorf("Expected back-to-back courses to both be assigned, got %d", n)
	}
}
