package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=goals_test

type goalsService interface {
	List(ctx context.Context, userID int) ([]Goal, error)
	Get(ctx context.Context, id, userID int) (*Goal, error)
	Create(ctx context.Context, goal Goal) (*Goal, error)
	Update(ctx context.Context, goal Goal) (*Goal, error)
	Delete(ctx context.Context, id, userID int) error
}

type GoalRequest struct {
	Type         string  `json:"type" validate:"required,oneof=weight strength frequency custom"`
	Title        string  `json:"title" validate:"required,max=200"`
	Unit         string  `json:"unit" validate:"max=16"`
	StartValue   float64 `json:"startValue" validate:"gte=0"`
	TargetValue  float64 `json:"targetValue" validate:"gte=0"`
	CurrentValue float64 `json:"currentValue" validate:"gte=0"`
	ExerciseID   *int    `json:"exerciseId" validate:"required_if=Type strength,omitempty,gt=0"`
	Deadline     *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Status       string  `json:"status" validate:"omitempty,oneof=active achieved abandoned"`
}

func (req GoalRequest) toGoal(userID int) Goal {
	g := Goal{
		UserID:       userID,
		Type:         req.Type,
		Title:        req.Title,
		Unit:         req.Unit,
		StartValue:   req.StartValue,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		ExerciseID:   req.ExerciseID,
		Deadline:     req.Deadline,
		Status:       req.Status,
	}
	if g.Deadline != nil && *g.Deadline == "" {
		g.Deadline = nil
	}
	if g.Type != TypeStrength {
		g.ExerciseID = nil
	}
	return g
}

type DeleteGoalResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service goalsService
}

func NewHandler(service goalsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/goals", handler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	router.HandleFunc("/goals", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-goal")
	router.HandleFunc("/goals/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-goal")
	router.HandleFunc("/goals/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-goal")
	router.HandleFunc("/goals/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-goal")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	goals, err := handler.service.List(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		log.Errorf("list goals error: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, goals, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.get")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goal, err := handler.service.Get(ctx, id, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("get goal %d error: %s", id, err)
		http.Error(w, "failed to get goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, goal, http.StatusOK)
}

func decodeGoal(w http.ResponseWriter, r *http.Request) (*GoalRequest, bool) {
	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("goal, unmarshal json params: %s", err)
		http.Error(w, "invalid goal", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
	defer span.End()

	req, ok := decodeGoal(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	added, err := handler.service.Create(ctx, req.toGoal(userID))
	if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to add goal for user %d: %s", userID, err)
		http.Error(w, "error, failed to add goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, added, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, ok := decodeGoal(w, r)
	if !ok {
		return
	}

	goal := req.toGoal(auth.UserIDFromContext(ctx))
	goal.ID = id
	updated, err := handler.service.Update(ctx, goal)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	} else if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to update goal %d: %s", id, err)
		http.Error(w, "error, failed to update goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, id, auth.UserIDFromContext(ctx)); errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to delete goal %d: %s", id, err)
		http.Error(w, "goal not deleted", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, DeleteGoalResponse{DeletedID: id}, http.StatusOK)
}
