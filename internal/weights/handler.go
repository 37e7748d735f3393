package weights

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

//go:generate mockgen -source=$GOFILE -destination=weights_mocks_test.go -package=weights_test

type weightsRepo interface {
	Add(ctx context.Context, entry Entry) (*Entry, error)
	Update(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, userID int, from, to *time.Time) ([]Entry, error)
}

type cacheInvalidator interface {
	Invalidate(userID int)
}

type EntryRequest struct {
	WeightKg   float64    `json:"weightKg" validate:"gt=0,lte=500"`
	MeasuredAt *time.Time `json:"measuredAt"`
	Note       string     `json:"note" validate:"max=500"`
}

type DeleteEntryResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo  weightsRepo
	cache cacheInvalidator
}

func NewHandler(repo weightsRepo, cache cacheInvalidator) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/weights", handler.HandleList).Methods("GET", "OPTIONS").Name("list-weights")
	router.HandleFunc("/weights", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-weight")
	router.HandleFunc("/weights/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-weight")
	router.HandleFunc("/weights/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-weight")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.list")
	defer span.End()

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

	entries, err := handler.repo.List(ctx, auth.UserIDFromContext(ctx), from, to)
	if err != nil {
		log.Errorf("list weights error: %s", err)
		http.Error(w, "failed to get weights", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, entries, http.StatusOK)
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (*EntryRequest, bool) {
	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("weight entry, unmarshal json params: %s", err)
		http.Error(w, "invalid weight entry", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (req EntryRequest) toEntry(userID int) Entry {
	e := Entry{
		UserID:     userID,
		WeightKg:   req.WeightKg,
		MeasuredAt: time.Now(),
		Note:       req.Note,
	}
	if req.MeasuredAt != nil {
		e.MeasuredAt = *req.MeasuredAt
	}
	return e
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.add")
	defer span.End()

	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	added, err := handler.repo.Add(ctx, req.toEntry(userID))
	if err != nil {
		log.Errorf("failed to add weight for user %d: %s", userID, err)
		http.Error(w, "error, failed to add weight", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, added, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.update")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(ctx)
	entry := req.toEntry(userID)
	entry.ID = id
	if err := handler.repo.Update(ctx, entry); errors.Is(err, ErrEntryNotFound) {
		http.Error(w, "weight entry not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to update weight %d: %s", id, err)
		http.Error(w, "error, failed to update weight", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, entry, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.delete")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.repo.Delete(ctx, id, userID); errors.Is(err, ErrEntryNotFound) {
		http.Error(w, "weight entry not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to delete weight %d: %s", id, err)
		http.Error(w, "weight not deleted", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, DeleteEntryResponse{DeletedID: id}, http.StatusOK)
}
