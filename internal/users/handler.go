package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

const (
	DefaultTimezone = "UTC"

	loginResultSuccess = "success"
	loginResultFailure = "failure"
)

type usersRepo interface {
	Create(ctx context.Context, user User, passwordHash string) (*User, error)
	GetByLogin(ctx context.Context, login string) (*Credentials, error)
	Get(ctx context.Context, id int) (*User, error)
	UpdateProfile(ctx context.Context, id int, displayName, timezone string) (*User, error)
}

type tokenService interface {
	IssueToken(ctx context.Context, userID int, username string) (string, *auth.Claims, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type timezoneResolver interface {
	TimezoneForRequest(ctx context.Context, r *http.Request) (string, error)
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Username    string `json:"username" validate:"required,min=3,max=32,username"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
	Timezone    string `json:"timezone" validate:"max=64"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"max=100"`
	Timezone    string `json:"timezone" validate:"required,max=64"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// analytics day boundaries follow the user's timezone
type cacheInvalidator interface {
	Invalidate(userID int)
}

type Handler struct {
	repo           usersRepo
	tokens         tokenService
	timezones      timezoneResolver
	cache          cacheInvalidator
	metricsManager *metrics.Manager

	// compared against when the login is unknown, so both failures cost a bcrypt check
	dummyHashOnce sync.Once
	dummyHash     string
}

func NewHandler(
	repo usersRepo,
	tokens tokenService,
	timezones timezoneResolver,
	cache cacheInvalidator,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		tokens:         tokens,
		timezones:      timezones,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	mainRouter.HandleFunc("/auth/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	mainRouter.HandleFunc("/auth/me", handler.HandleGetMe).Methods("GET", "OPTIONS").Name("get-me")
	mainRouter.HandleFunc("/auth/me", handler.HandleUpdateMe).Methods("PUT", "OPTIONS").Name("update-me")

	loginSubrouter := mainRouter.PathPrefix("/auth").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/register", handler.HandleRegister).
		Methods("POST", "OPTIONS").Name("register")

	// rate limit the /login and /register endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", allowedPerMin, handler.metricsManager))
}

// ValidTimezone reports whether tz is a loadable IANA zone name.
func ValidTimezone(tz string) bool {
	if tz == "" || tz == "Local" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "error, content type not json", http.StatusBadRequest)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Timezone == "" {
		req.Timezone = handler.timezoneFor(ctx, r)
	} else if !ValidTimezone(req.Timezone) {
		http.Error(w, "error, unknown timezone", http.StatusBadRequest)
		return
	}

	hash, err := pkg.HashPassword(req.Password)
	if errors.Is(err, pkg.ErrPasswordTooLong) {
		http.Error(w, "error, password too long", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, User{
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	}, hash)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "error, email or username already taken", http.StatusConflict)
			return
		}
		log.Errorf("register user %s: %s", req.Username, err)
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))
	handler.metricsManager.CounterRegistrations.Inc()

	handler.respondWithToken(ctx, w, user, http.StatusCreated)
}

func (handler *Handler) timezoneFor(ctx context.Context, r *http.Request) string {
	tz, err := handler.timezones.TimezoneForRequest(ctx, r)
	if err != nil || !ValidTimezone(tz) {
		log.Debugf("register, timezone lookup failed, using %s: %v", DefaultTimezone, err)
		return DefaultTimezone
	}
	return tz
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "error, content type not json", http.StatusBadRequest)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	creds, err := handler.repo.GetByLogin(ctx, req.Login)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Errorf("login, get user [%s]: %s", req.Login, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if creds == nil {
		pkg.CheckPasswordHash(req.Password, handler.getDummyHash())
		handler.loginFailed(w)
		return
	}
	if !pkg.CheckPasswordHash(req.Password, creds.PasswordHash) {
		handler.loginFailed(w)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues(loginResultSuccess).Inc()
	handler.respondWithToken(ctx, w, &creds.User, http.StatusOK)
}

func (handler *Handler) loginFailed(w http.ResponseWriter) {
	handler.metricsManager.CounterLogins.WithLabelValues(loginResultFailure).Inc()
	http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
}

func (handler *Handler) getDummyHash() string {
	handler.dummyHashOnce.Do(func() {
		password, err := pkg.GenerateRandomString(24)
		if err != nil {
			log.Errorf("generate dummy password: %s", err)
			return
		}
		hash, err := pkg.HashPassword(password)
		if err != nil {
			log.Errorf("generate dummy password hash: %s", err)
		}
		handler.dummyHash = hash
	})
	return handler.dummyHash
}

func (handler *Handler) respondWithToken(ctx context.Context, w http.ResponseWriter, user *User, statusCode int) {
	token, claims, err := handler.tokens.IssueToken(ctx, user.ID, user.Username)
	if err != nil {
		log.Errorf("issue token for user %d: %s", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := AuthResponse{
		Token: token,
		User:  user,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	pkg.WriteJSONResponse(w, resp, statusCode)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.tokens.Revoke(ctx, claims); err != nil {
		log.Errorf("logout, revoke token of user %d: %s", claims.UserID, err)
		http.Error(w, "failed to logout", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d logged out", claims.UserID)
	pkg.WriteTextResponseOK(w, "logged out")
}

func (handler *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	user, err := handler.repo.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "error, user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get me: %s", err)
		http.Error(w, "failed to get user", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponse(w, user, http.StatusOK)
}

func (handler *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateMe")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "error, content type not json", http.StatusBadRequest)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return
	}
	req.Timezone = strings.TrimSpace(req.Timezone)
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ValidTimezone(req.Timezone) {
		http.Error(w, "error, unknown timezone", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	user, err := handler.repo.UpdateProfile(ctx, userID, req.DisplayName, req.Timezone)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "error, user not found", http.StatusNotFound)
			return
		}
		log.Errorf("update me: %s", err)
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	handler.cache.Invalidate(userID)

	pkg.WriteJSONResponse(w, user, http.StatusOK)
}
