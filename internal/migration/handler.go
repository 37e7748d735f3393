package migration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=migration_mocks_test.go -package=migration_test

type migrationRepo interface {
	Status(ctx context.Context, userID int) (*Status, error)
	Import(ctx context.Context, userID int, req ImportRequest) (*ImportResult, error)
	Dismiss(ctx context.Context, userID int) (*Status, error)
}

type cacheInvalidator interface {
	Invalidate(userID int)
}

// maxImportBytes caps the local data a client may push in one import.
const maxImportBytes = 10 << 20

type Handler struct {
	repo  migrationRepo
	cache cacheInvalidator
}

func NewHandler(repo migrationRepo, cache cacheInvalidator) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/migration/status", handler.HandleStatus).Methods("GET", "OPTIONS").Name("migration-status")
	router.HandleFunc("/migration/import", handler.HandleImport).Methods("POST", "OPTIONS").Name("migration-import")
	router.HandleFunc("/migration/dismiss", handler.HandleDismiss).Methods("POST", "OPTIONS").Name("migration-dismiss")
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.migration.status")
	defer span.End()

	status, err := handler.repo.Status(ctx, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("migration status error: %s", err)
		http.Error(w, "failed to get migration status", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, status, http.StatusOK)
}

func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.migration.import")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}
	var req ImportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		log.Tracef("migration import, unmarshal json params: %s", err)
		http.Error(w, "invalid import data", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	result, err := handler.repo.Import(ctx, userID, req)
	if errors.Is(err, ErrAlreadyMigrated) {
		http.Error(w, "already migrated", http.StatusConflict)
		return
	} else if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("migration import for user %d: %s", userID, err)
		http.Error(w, "error, import failed", http.StatusInternalServerError)
		return
	}

	handler.cache.Invalidate(userID)
	pkg.WriteJSONResponse(w, result, http.StatusOK)
}

func (handler *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.migration.dismiss")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	status, err := handler.repo.Dismiss(ctx, userID)
	if errors.Is(err, ErrAlreadyMigrated) {
		http.Error(w, "already migrated", http.StatusConflict)
		return
	} else if err != nil {
		log.Errorf("migration dismiss for user %d: %s", userID, err)
		http.Error(w, "error, dismiss failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, status, http.StatusOK)
}
