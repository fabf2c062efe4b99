package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := InitDB(config.DatabaseConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)})
	require.NoError(t, err)
	return db
}

func TestRecordUsage_Upserts(t *testing.T) {
	db := testDB(t)
	key := APIKey{Key: "stable.abc", Name: "stable"}
	require.NoError(t, db.Create(&key).Error)

	day := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, RecordUsage(db, key.ID, 5, 12, day))
	require.NoError(t, RecordUsage(db, key.ID, 3, 4, day.Add(2*time.Hour)))
	require.NoError(t, RecordUsage(db, key.ID, 1, 1, day.AddDate(0, 0, 1)))

	usage, err := UsageHistory(db, key.ID)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "2024-03-05", usage[0].Date)
	assert.Equal(t, 2, usage[1].RequestCount)
	assert.Equal(t, 8, usage[1].TotalHorses)
	assert.Equal(t, 16, usage[1].TotalCourses)
}

func TestRuns_SaveGetList(t *testing.T) {
	db := testDB(t)
	resp := &models.ScheduleResponse{
		Days: []string{"Lundi"},
		Schedule: models.Schedule{"Alto": {"Lundi": {
			{Type: models.ActivityTurnout, Day: "Lundi", Start: models.NewClock(13, 0), End: models.NewClock(14, 0), Label: "Alone, Paddock 1", Paddock: "Paddock 1"},
		}}},
		Conflicts: []models.Conflict{},
		Workload:  []models.WorkloadRecord{{Horse: "Alto", MaxHours: 4}},
		Stats:     models.WeeklyStats{Horses: 1, Turnouts: 1, FairnessScore: 100},
	}
	keyID := uint(7)
	run, err := NewRun(resp, &keyID)
	require.NoError(t, err)
	require.NoError(t, SaveRun(db, run))
	require.Len(t, run.ID, 36)

	got, err := GetRun(db, run.ID, &keyID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Turnouts)

	decoded, err := got.Response()
	require.NoError(t, err)
	assert.Equal(t, run.ID, decoded.RunID)
	assert.Equal(t, resp.Schedule, decoded.Schedule)

	other := uint(8)
	_, err = GetRun(db, run.ID, &other)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = GetRun(db, "missing", nil)
	assert.ErrorIs(t, err, ErrRunNotFound)

	second, err := NewRun(resp, nil)
	require.NoError(t, err)
	require.NoError(t, SaveRun(db, second))

	runs, err := ListRuns(db, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, r := range runs {
		assert.Empty(t, r.Payload)
	}
}
