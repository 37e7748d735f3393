package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsReader interface {
	Get(ctx context.Context, id, userID int) (*Workout, error)
	List(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
}

type workoutsWriter interface {
	Create(ctx context.Context, w Workout) (*CreateWorkoutResponse, error)
	Update(ctx context.Context, w Workout) (*Workout, error)
	Delete(ctx context.Context, id, userID int) error
}

type WorkoutExerciseRequest struct {
	ExerciseID int     `json:"exerciseId" validate:"required,gt=0"`
	Sets       int     `json:"sets" validate:"gte=1,lte=100"`
	Reps       int     `json:"reps" validate:"gte=0,lte=1000"`
	WeightKg   float64 `json:"weightKg" validate:"gte=0,lte=1000"`
	Notes      string  `json:"notes" validate:"max=500"`
}

type WorkoutRequest struct {
	Name            string                   `json:"name" validate:"required,max=100"`
	Notes           string                   `json:"notes" validate:"max=2000"`
	PerformedAt     *time.Time               `json:"performedAt"`
	DurationMinutes int                      `json:"durationMinutes" validate:"gte=0,lte=1440"`
	TemplateID      *int                     `json:"templateId"`
	Exercises       []WorkoutExerciseRequest `json:"exercises" validate:"required,min=1,max=100,dive"`
}

func (req WorkoutRequest) toWorkout(userID int) Workout {
	w := Workout{
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		TemplateID:      req.TemplateID,
		PerformedAt:     time.Now(),
		Exercises:       make([]WorkoutExercise, 0, len(req.Exercises)),
	}
	if req.PerformedAt != nil {
		w.PerformedAt = *req.PerformedAt
	}
	for i, e := range req.Exercises {
		w.Exercises = append(w.Exercises, WorkoutExercise{
			ExerciseID: e.ExerciseID,
			Position:   i,
			Sets:       e.Sets,
			Reps:       e.Reps,
			WeightKg:   e.WeightKg,
			Notes:      e.Notes,
		})
	}
	return w
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	reader workoutsReader
	writer workoutsWriter
}

func NewHandler(reader workoutsReader, writer workoutsWriter) *Handler {
	return &Handler{
		reader: reader,
		writer: writer,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	router.HandleFunc("/workouts/page/{page}/size/{size}", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	router.HandleFunc("/workouts/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	router.HandleFunc("/workouts/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	router.HandleFunc("/workouts/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
}

func decodeWorkoutRequest(w http.ResponseWriter, r *http.Request) (*WorkoutRequest, bool) {
	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}

	var req WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("workout, unmarshal json params: %s", err)
		http.Error(w, "invalid workout", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// writeStoreError maps store errors to responses and reports whether the error was a client one.
func writeStoreError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrWorkoutNotFound):
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrUnknownExercise):
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
	case errors.Is(err, ErrUnknownTemplate):
		http.Error(w, "error, unknown template", http.StatusBadRequest)
	case errors.Is(err, ErrNoExercises):
		http.Error(w, "error, no exercises", http.StatusBadRequest)
	default:
		return false
	}
	return true
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	req, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	resp, err := handler.writer.Create(ctx, req.toWorkout(userID))
	if err != nil {
		if !writeStoreError(w, err) {
			log.Errorf("failed to create workout for user %d: %s", userID, err)
			http.Error(w, "error, failed to create workout", http.StatusInternalServerError)
		}
		return
	}
	span.SetAttributes(attribute.Int("workout.id", resp.Workout.ID))

	log.Debugf("workout %d logged by user %d, %d new records", resp.Workout.ID, userID, len(resp.NewRecords))
	pkg.WriteJSONResponse(w, resp, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Tracef("handle get workouts page, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Tracef("handle get workouts page, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}
	if page < 1 {
		http.Error(w, "invalid page size (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 || size > pkg.MaxPageSize {
		http.Error(w, fmt.Sprintf("invalid size (has to be between 1 and %d)", pkg.MaxPageSize), http.StatusBadRequest)
		return
	}

	from, err := pkg.QueryTime(r, "from")
	if err != nil {
		http.Error(w, "error, invalid from", http.StatusBadRequest)
		return
	}
	to, err := pkg.QueryTime(r, "to")
	if err != nil {
		http.Error(w, "error, invalid to", http.StatusBadRequest)
		return
	}
	if from != nil && to != nil && from.After(*to) {
		http.Error(w, "error, from after to", http.StatusBadRequest)
		return
	}

	workouts, total, err := handler.reader.List(ctx, ListParams{
		UserID: auth.UserIDFromContext(ctx),
		From:   from,
		To:     to,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		log.Errorf("list workouts error: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, ListResponse{
		Workouts: workouts,
		Total:    total,
	}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workout, err := handler.reader.Get(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		if !writeStoreError(w, err) {
			log.Errorf("failed to get workout %d: %s", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponse(w, workout, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}

	workout := req.toWorkout(auth.UserIDFromContext(ctx))
	workout.ID = id
	updated, err := handler.writer.Update(ctx, workout)
	if err != nil {
		if !writeStoreError(w, err) {
			log.Errorf("failed to update workout %d: %s", id, err)
			http.Error(w, "error, failed to update workout", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponse(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.writer.Delete(ctx, id, auth.UserIDFromContext(ctx)); err != nil {
		if !writeStoreError(w, err) {
			log.Errorf("failed to delete workout %d: %s", id, err)
			http.Error(w, "workout not deleted", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponse(w, DeleteWorkoutResponse{DeletedID: id}, http.StatusOK)
}
