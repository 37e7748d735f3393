package goals

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=goals_test

type goalsStore interface {
	Add(ctx context.Context, goal Goal) (*Goal, error)
	Update(ctx context.Context, goal Goal) (*Goal, error)
	SetStatus(ctx context.Context, id, userID int, status string) error
	Delete(ctx context.Context, id, userID int) error
	Get(ctx context.Context, id, userID int) (*Goal, error)
	List(ctx context.Context, userID int) ([]Goal, error)
}

type latestWeightSource interface {
	Latest(ctx context.Context, userID int) (*weights.Entry, error)
}

type bestWeightSource interface {
	BestWeights(ctx context.Context, userID int, exerciseIDs []int) (map[int]float64, error)
}

type workoutCounter interface {
	Count(ctx context.Context, params workouts.ListParams) (int, error)
}

const frequencyWindow = 7 * 24 * time.Hour

// Service keeps stored goals and fills in the values derived from other data on every read.
type Service struct {
	store    goalsStore
	weights  latestWeightSource
	records  bestWeightSource
	workouts workoutCounter
	now      func() time.Time
}

func NewService(
	store goalsStore,
	weights latestWeightSource,
	records bestWeightSource,
	workouts workoutCounter,
) *Service {
	return &Service{
		store:    store,
		weights:  weights,
		records:  records,
		workouts: workouts,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goals, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.resolve(ctx, userID, goals)
	return goals, nil
}

func (s *Service) Get(ctx context.Context, id, userID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal, err := s.store.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, userID, goal), nil
}

func (s *Service) Create(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if goal.Status == "" {
		goal.Status = StatusActive
	}
	added, err := s.store.Add(ctx, goal)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, goal.UserID, added), nil
}

func (s *Service) Update(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// an empty status keeps the stored one
	updated, err := s.store.Update(ctx, goal)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, goal.UserID, updated), nil
}

func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.store.Delete(ctx, id, userID)
}

func (s *Service) resolveOne(ctx context.Context, userID int, goal *Goal) *Goal {
	goals := []Goal{*goal}
	s.resolve(ctx, userID, goals)
	return &goals[0]
}

// resolve replaces the current value of derived goal types, computes progress,
// and persists the achieved status of active goals that reached their target.
// Failing lookups keep the stored current value.
func (s *Service) resolve(ctx context.Context, userID int, goals []Goal) {
	var (
		needWeight    bool
		needFrequency bool
		exerciseIDs   []int
	)
	for _, g := range goals {
		switch g.Type {
		case TypeWeight:
			needWeight = true
		case TypeFrequency:
			needFrequency = true
		case TypeStrength:
			if g.ExerciseID != nil {
				exerciseIDs = append(exerciseIDs, *g.ExerciseID)
			}
		}
	}

	var latestWeight *float64
	if needWeight {
		entry, err := s.weights.Latest(ctx, userID)
		if err == nil {
			latestWeight = &entry.WeightKg
		} else if !errors.Is(err, weights.ErrEntryNotFound) {
			log.Errorf("goals: latest weight for user %d: %s", userID, err)
		}
	}

	var bestWeights map[int]float64
	if len(exerciseIDs) > 0 {
		best, err := s.records.BestWeights(ctx, userID, exerciseIDs)
		if err != nil {
			log.Errorf("goals: best weights for user %d: %s", userID, err)
		}
		bestWeights = best
	}

	var workoutsThisWeek *int
	if needFrequency {
		from := s.now().Add(-frequencyWindow)
		count, err := s.workouts.Count(ctx, workouts.ListParams{UserID: userID, From: &from})
		if err != nil {
			log.Errorf("goals: workouts count for user %d: %s", userID, err)
		} else {
			workoutsThisWeek = &count
		}
	}

	for i := range goals {
		g := &goals[i]
		switch g.Type {
		case TypeWeight:
			if latestWeight != nil {
				g.CurrentValue = *latestWeight
			}
		case TypeStrength:
			if g.ExerciseID != nil {
				if best, ok := bestWeights[*g.ExerciseID]; ok {
					g.CurrentValue = best
				}
			}
		case TypeFrequency:
			if workoutsThisWeek != nil {
				g.CurrentValue = float64(*workoutsThisWeek)
			}
		}

		g.Progress = Progress(g.StartValue, g.TargetValue, g.CurrentValue)
		if g.Status == StatusActive && Reached(g.StartValue, g.TargetValue, g.CurrentValue) {
			if err := s.store.SetStatus(ctx, g.ID, userID, StatusAchieved); err != nil {
				log.Errorf("goals: mark goal %d achieved: %s", g.ID, err)
				continue
			}
			log.Debugf("goal %d of user %d achieved", g.ID, userID)
			g.Status = StatusAchieved
		}
	}
}
