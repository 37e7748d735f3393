package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/fittrack/internal/analytics"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/backup"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/geoip"
	"github.com/2beens/fittrack/internal/goals"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/migration"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/records"
	"github.com/2beens/fittrack/internal/tasks"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	metricsmiddleware "github.com/2beens/fittrack/internal/telemetry/metrics/middleware"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/templates"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/internal/workouts"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	authService *auth.Service
	timezones   *geoip.TimezoneResolver
	cache       *analytics.Cache

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	IpInfoAPIKey            string
	JWTSecret               string
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	tokenManager, err := auth.NewTokenManager(params.JWTSecret, params.Config.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("new token manager: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.ApplySchema(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := seed(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(params.VersionInfo, pgxpoolCollector)
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(tokenManager, rdb)
	go func() {
		ticker := time.NewTicker(params.Config.RevokedTokensScanPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(ctx)
			}
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		redisClient: rdb,
		authService: authService,
		timezones:   geoip.NewTimezoneResolver(params.IpInfoAPIKey, tracedHttpClient, rdb),
		cache:       analytics.NewCache(params.Config.AnalyticsCacheSizeMB, params.Config.AnalyticsCacheTTL),
		versionInfo: params.VersionInfo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

// seed makes sure the built-in exercise library and templates exist.
func seed(ctx context.Context, dbPool *pgxpool.Pool) error {
	added, err := exercises.NewRepo(dbPool).SeedBuiltin(ctx, exercises.BuiltinCatalog())
	if err != nil {
		return fmt.Errorf("seed exercises: %w", err)
	}
	log.Debugf("built-in exercises seeded: %d new", added)

	added, err = templates.NewRepo(dbPool).SeedBuiltin(ctx, templates.BuiltinTemplates)
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	log.Debugf("built-in templates seeded: %d new", added)

	return nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	exercisesRepo := exercises.NewRepo(s.dbPool)
	workoutsRepo := workouts.NewRepo(s.dbPool)
	weightsRepo := weights.NewRepo(s.dbPool)
	recordsRepo := records.NewRepo(s.dbPool)

	misc.NewHandler(s.versionInfo).SetupRoutes(r)

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	users.NewHandler(
		users.NewRepo(s.dbPool),
		s.authService,
		s.timezones,
		s.cache,
		s.metricsManager,
	).SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	exercises.NewHandler(exercisesRepo, s.cache).SetupRoutes(r)

	workoutsService := workouts.NewService(
		workoutsRepo,
		records.NewDetector(recordsRepo),
		s.cache,
		s.metricsManager,
	)
	workouts.NewHandler(workoutsRepo, workoutsService).SetupRoutes(r)
	templates.NewHandler(templates.NewRepo(s.dbPool), workoutsService).SetupRoutes(r)

	weights.NewHandler(weightsRepo, s.cache).SetupRoutes(r)
	tasks.NewHandler(tasks.NewRepo(s.dbPool)).SetupRoutes(r)
	records.NewHandler(recordsRepo, s.cache).SetupRoutes(r)

	goals.NewHandler(
		goals.NewService(goals.NewRepo(s.dbPool), weightsRepo, recordsRepo, workoutsRepo),
	).SetupRoutes(r)

	analytics.NewHandler(analytics.NewRepo(s.dbPool), weightsRepo, s.cache).SetupRoutes(r)
	migration.NewHandler(migration.NewRepo(s.dbPool), s.cache).SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", metricsmiddleware.
		New(s.promRegistry, nil).
		WrapHandler("/metrics", promhttp.HandlerFor(
			s.promRegistry,
			promhttp.HandlerOpts{}),
		))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)

	s.setBackupUnixSocket(ctx)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, the stores below are still needed by in-flight ones
	var errs error
	if s.httpServer != nil {
		errs = multierr.Append(errs, wrapErr("shutdown http server", s.httpServer.Shutdown(ctx)))
	}
	if s.metricsHttpServer != nil {
		errs = multierr.Append(errs, wrapErr("shutdown metrics server", s.metricsHttpServer.Shutdown(ctx)))
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		errs = multierr.Append(errs, wrapErr("close redis client", s.redisClient.Close()))
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.config.BackupSocketDir != "" {
		socket := filepath.Join(s.config.BackupSocketDir, backup.SocketFileName)
		if err := os.Remove(socket); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = multierr.Append(errs, wrapErr("remove backup socket", err))
		}
	}

	for _, err := range multierr.Errors(errs) {
		log.Errorf(" >>> graceful shutdown: %s", err)
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	log.Warnln("server shut down")
}

func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

func (s *Server) setBackupUnixSocket(ctx context.Context) {
	if s.config.BackupSocketDir == "" {
		log.Debugln("backup unix socket disabled")
		return
	}

	if err := os.MkdirAll(s.config.BackupSocketDir, 0o755); err != nil {
		log.Errorf("failed to create backup unix socket dir: %s", err)
		return
	}

	if addr, err := backup.MetricsListenerSetup(
		ctx,
		s.config.BackupSocketDir,
		backup.SocketFileName,
		s.metricsManager,
	); err != nil {
		log.Errorf("failed to create backup unix socket: %s", err)
	} else {
		log.Debugf("backup unix socket: %s", addr)
	}
}
