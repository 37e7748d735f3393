package workouts

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/records"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsStore interface {
	Create(ctx context.Context, w Workout) (*Workout, error)
	Update(ctx context.Context, w Workout) (*Workout, error)
	Delete(ctx context.Context, id, userID int) error
}

type recordsDetector interface {
	Detect(ctx context.Context, userID, workoutID int, achievedAt time.Time, entries []records.Entry) ([]records.Record, error)
}

type cacheInvalidator interface {
	Invalidate(userID int)
}

type CreateWorkoutResponse struct {
	Workout    *Workout         `json:"workout"`
	NewRecords []records.Record `json:"newRecords"`
}

// Service wraps workout writes with the side effects every write has.
type Service struct {
	store          workoutsStore
	detector       recordsDetector
	cache          cacheInvalidator
	metricsManager *metrics.Manager
}

func NewService(
	store workoutsStore,
	detector recordsDetector,
	cache cacheInvalidator,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		detector:       detector,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

// Create stores w and then looks for new personal records. A failed detection is only logged.
func (s *Service) Create(ctx context.Context, w Workout) (_ *CreateWorkoutResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	created, err := s.store.Create(ctx, w)
	if err != nil {
		return nil, err
	}
	s.metricsManager.CounterWorkoutsLogged.Inc()
	s.cache.Invalidate(created.UserID)

	entries := make([]records.Entry, 0, len(created.Exercises))
	for _, e := range created.Exercises {
		entries = append(entries, records.Entry{ExerciseID: e.ExerciseID, WeightKg: e.WeightKg, Reps: e.Reps})
	}

	newRecords, err := s.detector.Detect(ctx, created.UserID, created.ID, created.PerformedAt, entries)
	if err != nil {
		// records stored before the failure are still reported
		log.Errorf("detect records for workout %d: %s", created.ID, err)
	}
	if newRecords == nil {
		newRecords = []records.Record{}
	}
	if len(newRecords) > 0 {
		s.metricsManager.CounterRecordsSet.Add(float64(len(newRecords)))
	}

	return &CreateWorkoutResponse{
		Workout:    created,
		NewRecords: newRecords,
	}, nil
}

func (s *Service) Update(ctx context.Context, w Workout) (*Workout, error) {
	updated, err := s.store.Update(ctx, w)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(w.UserID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, userID int) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}
