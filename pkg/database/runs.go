package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// Run is a stored generation result
type Run struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	KeyID          *uint     `gorm:"index" json:"key_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Horses         int       `json:"horses"`
	ActiveCourses  int       `json:"active_courses"`
	PassiveCourses int       `json:"passive_courses"`
	Turnouts       int       `json:"turnouts"`
	Conflicts      int       `json:"conflicts"`
	FairnessScore  float64   `json:"fairness_score"`
	Payload        string    `gorm:"type:text;not null" json:"-"`
}

// BeforeCreate assigns a random id
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewRun wraps a response for storage
func NewRun(resp *models.ScheduleResponse, keyID *uint) (*Run, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode run: %w", err)
	}
	return &Run{
		KeyID:          keyID,
		Horses:         resp.Stats.Horses,
		ActiveCourses:  resp.Stats.ActiveCourses,
		PassiveCourses: resp.Stats.PassiveCourses,
		Turnouts:       resp.Stats.Turnouts,
		Conflicts:      len(resp.Conflicts),
		FairnessScore:  resp.Stats.FairnessScore,
		Payload:        string(payload),
	}, nil
}

// Response decodes the stored result and stamps it with the run id
func (r *Run) Response() (*models.ScheduleResponse, error) {
	var resp models.ScheduleResponse
	if err := json.Unmarshal([]byte(r.Payload), &resp); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", r.ID, err)
	}
	resp.RunID = r.ID
	return &resp, nil
}

// SaveRun stores a run; the id is filled in on return
func SaveRun(db *gorm.DB, run *Run) error {
	if err := db.Create(run).Error; err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun loads one run. keyID, when set, restricts the lookup to runs
// created with that key.
func GetRun(db *gorm.DB, id string, keyID *uint) (*Run, error) {
	q := db.Where("id = ?", id)
	if keyID != nil {
		q = q.Where("key_id = ?", *keyID)
	}
	var run Run
	if err := q.First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the newest runs first, without payloads
func ListRuns(db *gorm.DB, limit int) ([]Run, error) {
	var runs []Run
	err := db.Omit("payload").Order("created_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}
