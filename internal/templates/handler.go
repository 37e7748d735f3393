package templates

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=templates_mocks_test.go -package=templates_test

type templatesRepo interface {
	List(ctx context.Context, userID int) ([]Template, error)
	Get(ctx context.Context, id, userID int) (*Template, error)
	Create(ctx context.Context, t Template) (*Template, error)
	Update(ctx context.Context, t Template) (*Template, error)
	Delete(ctx context.Context, id, userID int) error
}

type workoutCreator interface {
	Create(ctx context.Context, w workouts.Workout) (*workouts.CreateWorkoutResponse, error)
}

type TemplateExerciseRequest struct {
	ExerciseID int     `json:"exerciseId" validate:"required,gt=0"`
	Sets       int     `json:"sets" validate:"gte=1,lte=100"`
	Reps       int     `json:"reps" validate:"gte=0,lte=1000"`
	WeightKg   float64 `json:"weightKg" validate:"gte=0,lte=1000"`
}

type TemplateRequest struct {
	Name        string                    `json:"name" validate:"required,max=100"`
	Description string                    `json:"description" validate:"max=2000"`
	Exercises   []TemplateExerciseRequest `json:"exercises" validate:"required,min=1,max=100,dive"`
}

type UseTemplateRequest struct {
	Name        string     `json:"name" validate:"max=100"`
	PerformedAt *time.Time `json:"performedAt"`
}

type DeleteTemplateResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo     templatesRepo
	workouts workoutCreator
}

func NewHandler(repo templatesRepo, workouts workoutCreator) *Handler {
	return &Handler{
		repo:     repo,
		workouts: workouts,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/templates", handler.HandleList).Methods("GET", "OPTIONS").Name("list-templates")
	router.HandleFunc("/templates", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-template")
	router.HandleFunc("/templates/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-template")
	router.HandleFunc("/templates/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-template")
	router.HandleFunc("/templates/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-template")
	router.HandleFunc("/templates/{id}/use", handler.HandleUse).Methods("POST", "OPTIONS").Name("use-template")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	templates, err := handler.repo.List(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		log.Errorf("list templates error: %s", err)
		http.Error(w, "failed to get templates", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, templates, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.get")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := handler.repo.Get(ctx, id, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to get template %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, t, http.StatusOK)
}

func decodeTemplateRequest(w http.ResponseWriter, r *http.Request) (*TemplateRequest, bool) {
	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("template, unmarshal json params: %s", err)
		http.Error(w, "invalid template", http.StatusBadRequest)
		return nil, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (req TemplateRequest) toTemplate(userID int) Template {
	t := Template{
		UserID:      &userID,
		Name:        req.Name,
		Description: req.Description,
		Exercises:   make([]TemplateExercise, 0, len(req.Exercises)),
	}
	for i, e := range req.Exercises {
		t.Exercises = append(t.Exercises, TemplateExercise{
			ExerciseID: e.ExerciseID,
			Position:   i,
			Sets:       e.Sets,
			Reps:       e.Reps,
			WeightKg:   e.WeightKg,
		})
	}
	return t
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.create")
	defer span.End()

	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	created, err := handler.repo.Create(ctx, req.toTemplate(userID))
	if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to create template for user %d: %s", userID, err)
		http.Error(w, "error, failed to create template", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, created, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.update")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}

	t := req.toTemplate(auth.UserIDFromContext(ctx))
	t.ID = id
	updated, err := handler.repo.Update(ctx, t)
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		http.Error(w, "template not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrUnknownExercise):
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("failed to update template %d: %s", id, err)
		http.Error(w, "error, failed to update template", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, auth.UserIDFromContext(ctx)); errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to delete template %d: %s", id, err)
		http.Error(w, "template not deleted", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, DeleteTemplateResponse{DeletedID: id}, http.StatusOK)
}

// HandleUse starts a new workout from a copy of the template's exercises.
func (handler *Handler) HandleUse(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.use")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// the body is optional
	var req UseTemplateRequest
	if pkg.IsJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	userID := auth.UserIDFromContext(ctx)
	t, err := handler.repo.Get(ctx, id, userID)
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to get template %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp, err := handler.workouts.Create(ctx, NewWorkout(*t, userID, req))
	if errors.Is(err, workouts.ErrUnknownExercise) || errors.Is(err, workouts.ErrNoExercises) {
		http.Error(w, "error, template has no usable exercises", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to create workout from template %d: %s", id, err)
		http.Error(w, "error, failed to create workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d started workout %d from template %d", userID, resp.Workout.ID, id)
	pkg.WriteJSONResponse(w, resp, http.StatusCreated)
}

// NewWorkout builds a workout instance from t with the template's default sets, reps and weights.
func NewWorkout(t Template, userID int, req UseTemplateRequest) workouts.Workout {
	templateID := t.ID
	w := workouts.Workout{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		PerformedAt: time.Now(),
		TemplateID:  &templateID,
		Exercises:   make([]workouts.WorkoutExercise, 0, len(t.Exercises)),
	}
	if w.Name == "" {
		w.Name = t.Name
	}
	if req.PerformedAt != nil {
		w.PerformedAt = *req.PerformedAt
	}
	for i, e := range t.Exercises {
		w.Exercises = append(w.Exercises, workouts.WorkoutExercise{
			ExerciseID: e.ExerciseID,
			Position:   i,
			Sets:       e.Sets,
			Reps:       e.Reps,
			WeightKg:   e.WeightKg,
		})
	}
	return w
}
