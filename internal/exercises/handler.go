package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id, userID int) (*Exercise, error)
	List(ctx context.Context, params ListParams) ([]Exercise, error)
	Delete(ctx context.Context, id, userID int) error
	MuscleGroupCounts(ctx context.Context, userID int) ([]MuscleGroupCount, error)
}

type AddExerciseRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	MuscleGroup string `json:"muscleGroup" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Equipment   string `json:"equipment" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

// deleting a custom exercise also deletes its personal records
type cacheInvalidator interface {
	Invalidate(userID int)
}

type Handler struct {
	repo  exercisesRepo
	cache cacheInvalidator
}

func NewHandler(repo exercisesRepo, cache cacheInvalidator) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/exercises", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	router.HandleFunc("/exercises", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	router.HandleFunc("/exercises/muscle-groups", handler.HandleMuscleGroups).Methods("GET", "OPTIONS").Name("exercise-muscle-groups")
	router.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	router.HandleFunc("/exercises/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	q := r.URL.Query()
	params := ListParams{
		UserID:      auth.UserIDFromContext(ctx),
		MuscleGroup: q.Get("muscle_group"),
		Category:    q.Get("category"),
		Equipment:   q.Get("equipment"),
		Query:       strings.TrimSpace(q.Get("q")),
	}
	if params.MuscleGroup != "" && !IsMuscleGroup(params.MuscleGroup) {
		http.Error(w, "error, unknown muscle group", http.StatusBadRequest)
		return
	}
	if params.Category != "" && !IsCategory(params.Category) {
		http.Error(w, "error, unknown category", http.StatusBadRequest)
		return
	}
	if params.Equipment != "" && !IsEquipment(params.Equipment) {
		http.Error(w, "error, unknown equipment", http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list exercises error: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.Int("exercises.count", len(exercises)))

	pkg.WriteJSONResponse(w, ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := handler.repo.Get(ctx, id, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to get exercise %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, e, http.StatusOK)
}

func (handler *Handler) HandleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.muscle-groups")
	defer span.End()

	counts, err := handler.repo.MuscleGroupCounts(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		log.Errorf("failed to count exercises per muscle group: %s", err)
		http.Error(w, "failed to get muscle groups", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, counts, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == 0 {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !IsMuscleGroup(req.MuscleGroup) {
		http.Error(w, "error, unknown muscle group", http.StatusBadRequest)
		return
	}
	if !IsCategory(req.Category) {
		http.Error(w, "error, unknown category", http.StatusBadRequest)
		return
	}
	if !IsEquipment(req.Equipment) {
		http.Error(w, "error, unknown equipment", http.StatusBadRequest)
		return
	}

	slug := pkg.Slugify(req.Name)
	if slug == "" {
		http.Error(w, "error, name must contain letters or digits", http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, Exercise{
		Slug:        slug,
		Name:        req.Name,
		MuscleGroup: req.MuscleGroup,
		Category:    req.Category,
		Equipment:   req.Equipment,
		Description: req.Description,
		OwnerID:     &userID,
	})
	if errors.Is(err, ErrExerciseExists) {
		http.Error(w, "exercise already exists", http.StatusConflict)
		return
	} else if err != nil {
		log.Errorf("failed to add exercise [%s] for user %d: %s", slug, userID, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new custom exercise %d [%s] for user %d", added.ID, added.Slug, userID)
	pkg.WriteJSONResponse(w, added, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == 0 {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.repo.Delete(ctx, id, userID)
	switch {
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrExerciseInUse):
		http.Error(w, "exercise is used by workouts", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to delete exercise %d: %s", id, err)
		http.Error(w, "exercise not deleted", http.StatusInternalServerError)
		return
	}
	handler.cache.Invalidate(userID)

	pkg.WriteJSONResponse(w, DeleteExerciseResponse{DeletedID: id}, http.StatusOK)
}
