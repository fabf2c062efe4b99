package models

import "strings"

// Qualification is a horse's level for a named skill
type Qualification string

const (
	QualificationYes    Qualification = "yes"
	QualificationBackup Qualification = "backup"
	QualificationNone   Qualification = "none"
)

// ParseQualification maps table values (Oui, Dépannage) and their english
// equivalents to a Qualification. Anything else is None.
func ParseQualification(s string) Qualification {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oui", "yes":
		return QualificationYes
	case "dépannage", "depannage", "backup":
		return QualificationBackup
	default:
		return QualificationNone
	}
}

// Rank orders qualifications for candidate selection: Yes before Backup
func (q Qualification) Rank() int {
	switch q {
	case QualificationYes:
		return 0
	case QualificationBackup:
		return 1
	default:
		return 2
	}
}

// Eligible reports whether the level allows assignment to a course
func (q Qualification) Eligible() bool {
	return q == QualificationYes || q == QualificationBackup
}

// UnmarshalText implements encoding.TextUnmarshaler
func (q *Qualification) UnmarshalText(b []byte) error {
	*q = ParseQualification(string(b))
	return nil
}

// Horse is a member of the roster. It is built once per run and never
// mutated afterwards.
type Horse struct {
	Name           string                   `json:"name"`
	MaxHours       float64                  `json:"max_hours"`
	Qualifications map[string]Qualification `json:"qualifications,omitempty"`
	Friends        []string                 `json:"friends,omitempty"`
	Solo           bool                     `json:"solo"`
	SpecialPaddock bool                     `json:"special_paddock"`
	MustPair       bool                     `json:"must_pair"`
}

// Qualification returns the horse's level for skill
func (h *Horse) Qualification(skill string) Qualification {
	if q, ok := h.Qualifications[skill]; ok {
		return q
	}
	return QualificationNone
}

// CourseSlot is a recurring weekly session that needs horses
type CourseSlot struct {
	Day      string `json:"day"`
	Start    Clock  `json:"start"`
	End      Clock  `json:"end"`
	Skill    string `json:"skill"`
	Required int    `json:"required" binding:"gte=0"`
	Name     string `json:"name"`
}

// Hours returns the slot duration
func (c CourseSlot) Hours() float64 {
	return DurationHours(c.Start, c.End)
}

// Key groups identical lessons across horses
func (c CourseSlot) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// ActivityType classifies a schedule entry
type ActivityType string

const (
	ActivityActiveCourse  ActivityType = "active_course"
	ActivityPassiveCourse ActivityType = "passive_course"
	ActivityTurnout       ActivityType = "turnout"
)

// Title is the human readable activity name
func (t ActivityType) Title() string {
	switch t {
	case ActivityActiveCourse:
		return "Active course"
	case ActivityPassiveCourse:
		return "Passive course"
	case ActivityTurnout:
		return "Turnout"
	default:
		return string(t)
	}
}

// ScheduleEntry is one block in a horse's day
type ScheduleEntry struct {
	Type    ActivityType `json:"type"`
	Day     string       `json:"day"`
	Start   Clock        `json:"start"`
	End     Clock        `json:"end"`
	Label   string       `json:"label"`
	Key     string       `json:"key,omitempty"`
	Paddock string       `json:"paddock,omitempty"`
	Partner string       `json:"partner,omitempty"`
}

// Overlaps reports whether the entry intersects [start, end)
func (e ScheduleEntry) Overlaps(start, end Clock) bool {
	return Overlap(e.Start, e.End, start, end)
}

// Schedule maps horse -> day -> entries ordered by start time
type Schedule map[string]map[string][]ScheduleEntry

// Conflict records a turnout that could not be placed
type Conflict struct {
	Horse   string `json:"horse"`
	Day     string `json:"day"`
	Solo    bool   `json:"solo"`
	Message string `json:"message"`
}

// WorkloadRecord is the weekly total for one horse
type WorkloadRecord struct {
	Horse         string  `json:"horse"`
	ActiveHours   float64 `json:"active_hours"`
	PassiveHours  float64 `json:"passive_hours"`
	MaxHours      float64 `json:"max_hours"`
	Overtime      bool    `json:"overtime"`
	OvertimeHours float64 `json:"overtime_hours"`
}

// WeeklyStats summarises a generated week
type WeeklyStats struct {
	Horses         int     `json:"horses"`
	ActiveCourses  int     `json:"active_courses"`
	PassiveCourses int     `json:"passive_courses"`
	Turnouts       int     `json:"turnouts"`
	FairnessScore  float64 `json:"fairness_score"`
}

// HorseRecord is one row of the horse table
type HorseRecord struct {
	Name     string  `json:"name" binding:"required"`
	MaxHours float64 `json:"max_hours" binding:"gte=0"`
}

// SkillRecord is one row of the skill matrix
type SkillRecord struct {
	Horse         string        `json:"horse" binding:"required"`
	Skill         string        `json:"skill" binding:"required"`
	Qualification Qualification `json:"qualification"`
}

// FriendshipRecord is one directional friendship edge
type FriendshipRecord struct {
	Horse  string `json:"horse" binding:"required"`
	Friend string `json:"friend"`
}

// PlanningOptions carries the run configuration: which days to plan and
// which horses get the solo, special paddock and must-pair treatment
type PlanningOptions struct {
	ActiveDays           []string `json:"active_days,omitempty"`
	SoloHorses           []string `json:"solo_horses,omitempty"`
	SpecialPaddockHorses []string `json:"special_paddock_horses,omitempty"`
	MustPairHorses       []string `json:"must_pair_horses,omitempty"`
	StandardPaddocks     int      `json:"standard_paddocks,omitempty" binding:"gte=0"`
	SpecialPaddocks      int      `json:"special_paddocks,omitempty" binding:"gte=0"`
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	Horses         []HorseRecord      `json:"horses" binding:"required,dive"`
	Skills         []SkillRecord      `json:"skills" binding:"dive"`
	Friendships    []FriendshipRecord `json:"friendships" binding:"dive"`
	ActiveCourses  []CourseSlot       `json:"active_courses" binding:"dive"`
	PassiveCourses []CourseSlot       `json:"passive_courses" binding:"dive"`
	Options        *PlanningOptions   `json:"options,omitempty"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	RunID     string           `json:"run_id,omitempty"`
	Days      []string         `json:"days"`
	Schedule  Schedule         `json:"schedule"`
	Conflicts []Conflict       `json:"conflicts"`
	Workload  []WorkloadRecord `json:"workload"`
	Stats     WeeklyStats      `json:"stats"`
}
