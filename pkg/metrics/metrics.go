package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// Recorder records schedule generations in Prometheus metrics.
type Recorder struct {
	runs       *prometheus.CounterVec
	placements *prometheus.CounterVec
	conflicts  prometheus.Counter
	duration   prometheus.Histogram
}

// NewRecorder registers generation metrics on reg. If reg is nil, the
// default registerer is used. Collectors already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stable_schedule_runs_total",
			Help: "Total number of schedule generations",
		}, []string{"status"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stable_schedule_placements_total",
			Help: "Schedule entries placed, by activity type",
		}, []string{"type"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stable_schedule_conflicts_total",
			Help: "Turnouts that could not be placed",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stable_schedule_generation_seconds",
			Help:    "Time spent generating a week",
			Buckets: prometheus.DefBuckets,
		}),
	}

	var err error
	if r.runs, err = register(reg, r.runs); err != nil {
		return nil, err
	}
	if r.placements, err = register(reg, r.placements); err != nil {
		return nil, err
	}
	if r.conflicts, err = register(reg, r.conflicts); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun counts a successful generation and its placements
func (r *Recorder) RecordRun(resp *models.ScheduleResponse, elapsed time.Duration) {
	r.runs.WithLabelValues("ok").Inc()
	r.duration.Observe(elapsed.Seconds())
	r.placements.WithLabelValues(string(models.ActivityActiveCourse)).Add(float64(resp.Stats.ActiveCourses))
	r.placements.WithLabelValues(string(models.ActivityPassiveCourse)).Add(float64(resp.Stats.PassiveCourses))
	r.placements.WithLabelValues(string(models.ActivityTurnout)).Add(float64(resp.Stats.Turnouts))
	r.conflicts.Add(float64(len(resp.Conflicts)))
}

// RecordFailure counts a generation that returned an error
func (r *Recorder) RecordFailure(elapsed time.Duration) {
	r.runs.WithLabelValues("error").Inc()
	r.duration.Observe(elapsed.Seconds())
}
