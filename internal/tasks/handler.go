package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

type tasksRepo interface {
	Add(ctx context.Context, task Task) (*Task, error)
	Update(ctx context.Context, task Task) (*Task, error)
	Toggle(ctx context.Context, id, userID int) (*Task, error)
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, userID int, completed *bool) ([]Task, error)
}

type TaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (req TaskRequest) toTask(userID int) Task {
	t := Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	}
	if t.DueDate != nil && *t.DueDate == "" {
		t.DueDate = nil
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return t
}

type DeleteTaskResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo tasksRepo
}

func NewHandler(repo tasksRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/tasks", handler.HandleList).Methods("GET", "OPTIONS").Name("list-tasks")
	router.HandleFunc("/tasks", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-task")
	router.HandleFunc("/tasks/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-task")
	router.HandleFunc("/tasks/{id}/toggle", handler.HandleToggle).Methods("PATCH", "OPTIONS").Name("toggle-task")
	router.HandleFunc("/tasks/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-task")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tasks.list")
	defer span.End()

	var completed *bool
	if raw := r.URL.Query().Get("completed"); raw != "" {
		c, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "error, invalid completed", http.StatusBadRequest)
			return
		}
		completed = &c
	}

	tasks, err := handler.repo.List(ctx, auth.UserIDFromContext(ctx), completed)
	if err != nil {
		log.Errorf("list tasks error: %s", err)
		http.Error(w, "failed to get tasks", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, tasks, http.StatusOK)
}

func decodeTask(w http.ResponseWriter, r *http.Request) (*TaskRequest, bool) {
	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("task, unmarshal json params: %s", err)
		http.Error(w, "invalid task", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tasks.add")
	defer span.End()

	req, ok := decodeTask(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	added, err := handler.repo.Add(ctx, req.toTask(userID))
	if err != nil {
		log.Errorf("failed to add task for user %d: %s", userID, err)
		http.Error(w, "error, failed to add task", http.StatusInternalServerError)
		return
	}

	log.Tracef("new task added: %d", added.ID)
	pkg.WriteJSONResponse(w, added, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tasks.update")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, ok := decodeTask(w, r)
	if !ok {
		return
	}

	task := req.toTask(auth.UserIDFromContext(ctx))
	task.ID = id
	updated, err := handler.repo.Update(ctx, task)
	if errors.Is(err, ErrTaskNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to update task %d: %s", id, err)
		http.Error(w, "error, failed to update task", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, updated, http.StatusOK)
}

func (handler *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tasks.toggle")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	toggled, err := handler.repo.Toggle(ctx, id, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrTaskNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to toggle task %d: %s", id, err)
		http.Error(w, "error, failed to toggle task", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, toggled, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tasks.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, auth.UserIDFromContext(ctx)); errors.Is(err, ErrTaskNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to delete task %d: %s", id, err)
		http.Error(w, "task not deleted", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, DeleteTaskResponse{DeletedID: id}, http.StatusOK)
}
