package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=records_mocks_test.go -package=records_test

type recordsRepo interface {
	Add(ctx context.Context, record Record) (*Record, error)
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, userID, exerciseID int) ([]Record, error)
	Best(ctx context.Context, userID int) ([]Record, error)
}

type cacheInvalidator interface {
	Invalidate(userID int)
}

type AddRecordRequest struct {
	ExerciseID int        `json:"exerciseId" validate:"required,gt=0"`
	WeightKg   float64    `json:"weightKg" validate:"gt=0,lte=1000"`
	Reps       int        `json:"reps" validate:"gte=1,lte=1000"`
	AchievedAt *time.Time `json:"achievedAt"`
}

type DeleteRecordResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo  recordsRepo
	cache cacheInvalidator
}

func NewHandler(repo recordsRepo, cache cacheInvalidator) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/records", handler.HandleList).Methods("GET", "OPTIONS").Name("list-records")
	router.HandleFunc("/records/best", handler.HandleBest).Methods("GET", "OPTIONS").Name("best-records")
	router.HandleFunc("/records", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-record")
	router.HandleFunc("/records/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-record")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list")
	defer span.End()

	exerciseID, err := pkg.QueryInt(r, "exercise_id", 0)
	if err != nil || exerciseID < 0 {
		http.Error(w, "error, exercise_id NaN", http.StatusBadRequest)
		return
	}

	records, err := handler.repo.List(ctx, auth.UserIDFromContext(ctx), exerciseID)
	if err != nil {
		log.Errorf("list records error: %s", err)
		http.Error(w, "failed to get records", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, records, http.StatusOK)
}

func (handler *Handler) HandleBest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.best")
	defer span.End()

	records, err := handler.repo.Best(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		log.Errorf("best records error: %s", err)
		http.Error(w, "failed to get records", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, records, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.add")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new record, unmarshal json params: %s", err)
		http.Error(w, "add record failed", http.StatusBadRequest)
		return
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	achievedAt := time.Now()
	if req.AchievedAt != nil {
		achievedAt = *req.AchievedAt
	}

	userID := auth.UserIDFromContext(ctx)
	added, err := handler.repo.Add(ctx, Record{
		UserID:     userID,
		ExerciseID: req.ExerciseID,
		WeightKg:   req.WeightKg,
		Reps:       req.Reps,
		AchievedAt: achievedAt,
	})
	if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to add record for user %d: %s", userID, err)
		http.Error(w, "error, failed to add record", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, added, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.repo.Delete(ctx, id, userID); errors.Is(err, ErrRecordNotFound) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to delete record %d: %s", id, err)
		http.Error(w, "record not deleted", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, DeleteRecordResponse{DeletedID: id}, http.StatusOK)
}
