package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=analytics

type analyticsRepo interface {
	Timezone(ctx context.Context, userID int) (string, error)
	WorkoutStats(ctx context.Context, userID int, from *time.Time) ([]WorkoutStat, error)
	SetCounts(ctx context.Context, userID int, groupBy string, from time.Time) (map[string]int, error)
	ExerciseSets(ctx context.Context, userID, exerciseID int, from time.Time) ([]SetStat, error)
}

type weightsLister interface {
	List(ctx context.Context, userID int, from, to *time.Time) ([]weights.Entry, error)
}

const (
	defaultDays   = 30
	maxDays       = 365
	defaultWeeks  = 12
	maxWeeks      = 104
	defaultWindow = 7
	maxWindow     = 90
)

var errBadParam = errors.New("bad parameter")

type Handler struct {
	repo    analyticsRepo
	weights weightsLister
	cache   *Cache
	now     func() time.Time
}

func NewHandler(repo analyticsRepo, weights weightsLister, cache *Cache) *Handler {
	return &Handler{
		repo:    repo,
		weights: weights,
		cache:   cache,
		now:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/analytics/summary", handler.HandleSummary).Methods("GET", "OPTIONS").Name("analytics-summary")
	router.HandleFunc("/analytics/muscle-groups", handler.HandleMuscleGroups).Methods("GET", "OPTIONS").Name("analytics-muscle-groups")
	router.HandleFunc("/analytics/categories", handler.HandleCategories).Methods("GET", "OPTIONS").Name("analytics-categories")
	router.HandleFunc("/analytics/weight-trend", handler.HandleWeightTrend).Methods("GET", "OPTIONS").Name("analytics-weight-trend")
	router.HandleFunc("/analytics/volume", handler.HandleVolume).Methods("GET", "OPTIONS").Name("analytics-volume")
	router.HandleFunc("/analytics/exercise/{id}/progress", handler.HandleExerciseProgress).Methods("GET", "OPTIONS").Name("analytics-exercise-progress")
}

func boundedParam(r *http.Request, name string, def, maxValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > maxValue {
		return 0, fmt.Errorf("%w: %s must be between 1 and %d", errBadParam, name, maxValue)
	}
	return v, nil
}

// location resolves the user's timezone, falling back to UTC.
func (handler *Handler) location(ctx context.Context, userID int) *time.Location {
	tz, err := handler.repo.Timezone(ctx, userID)
	if err != nil {
		log.Errorf("analytics: timezone of user %d: %s", userID, err)
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warnf("analytics: user %d has invalid timezone [%s]: %s", userID, tz, err)
		return time.UTC
	}
	return loc
}

type computeFunc func(ctx context.Context, userID int, loc *time.Location) (interface{}, error)

// respond serves query from the cache, or computes, caches and writes it.
func (handler *Handler) respond(w http.ResponseWriter, r *http.Request, query string, compute computeFunc) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	w.Header().Set("Cache-Control", "private, max-age=60")

	gen := handler.cache.Generation(userID)
	if cached, ok := handler.cache.GetAt(userID, gen, query); ok {
		log.Tracef("analytics %s for user %d served from cache", query, userID)
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cached, http.StatusOK)
		return
	}

	result, err := compute(ctx, userID, handler.location(ctx, userID))
	if errors.Is(err, ErrExerciseNotFound) {
		w.Header().Del("Cache-Control")
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	} else if err != nil {
		w.Header().Del("Cache-Control")
		log.Errorf("analytics %s for user %d: %s", query, userID, err)
		http.Error(w, "failed to compute analytics", http.StatusInternalServerError)
		return
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		w.Header().Del("Cache-Control")
		log.Errorf("marshal analytics %s: %s", query, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	handler.cache.SetAt(userID, gen, query, resultBytes)

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultBytes, http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.summary")
	defer span.End()

	days, err := boundedParam(r, "days", defaultDays, maxDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.respond(w, r.WithContext(ctx), fmt.Sprintf("summary?days=%d", days),
		func(ctx context.Context, userID int, loc *time.Location) (interface{}, error) {
			all, err := handler.repo.WorkoutStats(ctx, userID, nil)
			if err != nil {
				return nil, err
			}
			return Summarize(handler.now(), loc, days, all), nil
		})
}

func (handler *Handler) HandleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.muscle-groups")
	defer span.End()
	handler.handleDistribution(w, r.WithContext(ctx), GroupByMuscleGroup, exercises.MuscleGroups)
}

func (handler *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.categories")
	defer span.End()
	handler.handleDistribution(w, r.WithContext(ctx), GroupByCategory, exercises.Categories)
}

func (handler *Handler) handleDistribution(w http.ResponseWriter, r *http.Request, groupBy string, groups []string) {
	days, err := boundedParam(r, "days", defaultDays, maxDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.respond(w, r, fmt.Sprintf("%s?days=%d", groupBy, days),
		func(ctx context.Context, userID int, loc *time.Location) (interface{}, error) {
			sets, err := handler.repo.SetCounts(ctx, userID, groupBy, WindowStart(handler.now(), loc, days))
			if err != nil {
				return nil, err
			}
			return Distribution(groups, sets), nil
		})
}

func (handler *Handler) HandleWeightTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.weight-trend")
	defer span.End()

	days, err := boundedParam(r, "days", defaultDays, maxDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	window, err := boundedParam(r, "window", defaultWindow, maxWindow)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.respond(w, r.WithContext(ctx), fmt.Sprintf("weight-trend?days=%d&window=%d", days, window),
		func(ctx context.Context, userID int, loc *time.Location) (interface{}, error) {
			from := WindowStart(handler.now(), loc, days)
			entries, err := handler.weights.List(ctx, userID, &from, nil)
			if err != nil {
				return nil, err
			}
			// listed newest first
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
			return Trend(entries, window), nil
		})
}

func (handler *Handler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.volume")
	defer span.End()

	weeks, err := boundedParam(r, "weeks", defaultWeeks, maxWeeks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.respond(w, r.WithContext(ctx), fmt.Sprintf("volume?weeks=%d", weeks),
		func(ctx context.Context, userID int, loc *time.Location) (interface{}, error) {
			now := handler.now()
			from := WeeksStart(now, loc, weeks)
			stats, err := handler.repo.WorkoutStats(ctx, userID, &from)
			if err != nil {
				return nil, err
			}
			return WeeklyVolume(now, loc, weeks, stats), nil
		})
}

func (handler *Handler) HandleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.exercise-progress")
	defer span.End()

	exerciseID, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := boundedParam(r, "days", defaultDays, maxDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.respond(w, r.WithContext(ctx), fmt.Sprintf("exercise/%d/progress?days=%d", exerciseID, days),
		func(ctx context.Context, userID int, loc *time.Location) (interface{}, error) {
			sets, err := handler.repo.ExerciseSets(ctx, userID, exerciseID, WindowStart(handler.now(), loc, days))
			if err != nil {
				return nil, err
			}
			return ExerciseProgress(loc, sets), nil
		})
}
