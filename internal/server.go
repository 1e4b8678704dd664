package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
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

	"github.com/kgriffin/trainloop/internal/backfill"
	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/db"
	"github.com/kgriffin/trainloop/internal/goals"
	"github.com/kgriffin/trainloop/internal/ladder"
	"github.com/kgriffin/trainloop/internal/middleware"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/predictor"
	"github.com/kgriffin/trainloop/internal/recommend"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	// backfill keeps debounce state, so it lives for the whole server
	backfillService *backfill.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("trainloop", "api", promRegistry)
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

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "trainloop-backend", rdb)
	if err != nil {
		return nil, err
	}

	backfillService, err := backfill.NewService(
		plans.NewRepo(dbPool),
		trainlog.NewRepo(dbPool, metricsManager),
		params.Config.Training,
		metricsManager,
	)
	if err != nil {
		return nil, fmt.Errorf("new backfill service: %w", err)
	}

	return &Server{
		config:          params.Config,
		dbPool:          dbPool,
		versionInfo:     params.VersionInfo,
		redisClient:     rdb,
		backfillService: backfillService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("trainloop-router"))

	plansRepo := plans.NewRepo(s.dbPool)
	strengthPlansRepo := plans.NewStrengthRepo(s.dbPool)
	supplementalPlansRepo := plans.NewSupplementalRepo(s.dbPool)
	logsRepo := trainlog.NewRepo(s.dbPool, s.metricsManager)
	strengthLogsRepo := trainlog.NewStrengthRepo(s.dbPool)
	supplementalLogsRepo := trainlog.NewSupplementalRepo(s.dbPool)

	predictorService, err := predictor.NewService(plansRepo, logsRepo, s.config.Training)
	if err != nil {
		return nil, fmt.Errorf("new predictor service: %w", err)
	}

	recommender := recommend.NewRecommender(recommend.Deps{
		Predictor:      predictorService,
		Ladder:         ladder.NewService(plansRepo, logsRepo, s.config.Training),
		StrengthLadder: ladder.NewStrengthService(strengthPlansRepo, strengthLogsRepo),
		Goals:          goals.NewEngine(logsRepo, plansRepo, s.config.Training),
		StrengthGoals:  goals.NewStrengthEngine(strengthLogsRepo, strengthPlansRepo, s.config.Training),
		Plans:          plansRepo,
		StrengthPlans:  strengthPlansRepo,
		SuppPlans:      supplementalPlansRepo,
		Backfill:       s.backfillService,
	})

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	limitWrites := middleware.RateLimit(
		reqRateLimiter,
		"trainloop-log-writes",
		s.config.LogRateLimitAllowedPerMin,
		s.metricsManager,
	)

	logsHandler := trainlog.NewHandler(logsRepo, s.metricsManager)
	r.Handle("/trainlog", limitWrites(http.HandlerFunc(logsHandler.HandleNewLog))).Methods("POST", "OPTIONS").Name("new-log")
	r.HandleFunc("/trainlog/recent", logsHandler.HandleRecentLogs).Methods("GET", "OPTIONS").Name("recent-logs")
	r.HandleFunc("/trainlog/{id}", logsHandler.HandleGetLog).Methods("GET", "OPTIONS").Name("get-log")
	r.HandleFunc("/trainlog/{id}", logsHandler.HandleUpdateLog).Methods("PUT", "OPTIONS").Name("update-log")
	r.HandleFunc("/trainlog/{id}", logsHandler.HandleDeleteLog).Methods("DELETE", "OPTIONS").Name("remove-log")
	r.Handle("/trainlog/{id}/intervals", limitWrites(http.HandlerFunc(logsHandler.HandleAddIntervals))).Methods("POST", "OPTIONS").Name("add-intervals")
	r.HandleFunc("/trainlog/{id}/intervals/last", logsHandler.HandleLastInterval).Methods("GET", "OPTIONS").Name("last-interval")
	r.HandleFunc("/trainlog/{id}/intervals/{intervalId}", logsHandler.HandleUpdateInterval).Methods("PUT", "OPTIONS").Name("update-interval")
	r.HandleFunc("/trainlog/{id}/intervals/{intervalId}", logsHandler.HandleDeleteInterval).Methods("DELETE", "OPTIONS").Name("remove-interval")

	strengthLogsHandler := trainlog.NewStrengthHandler(strengthLogsRepo, s.metricsManager)
	r.Handle("/strengthlog", limitWrites(http.HandlerFunc(strengthLogsHandler.HandleNewLog))).Methods("POST", "OPTIONS").Name("new-strength-log")
	r.HandleFunc("/strengthlog/recent", strengthLogsHandler.HandleRecentLogs).Methods("GET", "OPTIONS").Name("recent-strength-logs")
	r.HandleFunc("/strengthlog/{id}", strengthLogsHandler.HandleGetLog).Methods("GET", "OPTIONS").Name("get-strength-log")
	r.HandleFunc("/strengthlog/{id}", strengthLogsHandler.HandleUpdateLog).Methods("PUT", "OPTIONS").Name("update-strength-log")
	r.HandleFunc("/strengthlog/{id}", strengthLogsHandler.HandleDeleteLog).Methods("DELETE", "OPTIONS").Name("remove-strength-log")
	r.Handle("/strengthlog/{id}/sets", limitWrites(http.HandlerFunc(strengthLogsHandler.HandleAddSets))).Methods("POST", "OPTIONS").Name("add-sets")
	r.HandleFunc("/strengthlog/{id}/sets/last", strengthLogsHandler.HandleLastSet).Methods("GET", "OPTIONS").Name("last-set")
	r.HandleFunc("/strengthlog/{id}/sets/{setId}", strengthLogsHandler.HandleUpdateSet).Methods("PUT", "OPTIONS").Name("update-set")
	r.HandleFunc("/strengthlog/{id}/sets/{setId}", strengthLogsHandler.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("remove-set")

	supplementalLogsHandler := trainlog.NewSupplementalHandler(supplementalLogsRepo, s.metricsManager)
	r.Handle("/supplementallog", limitWrites(http.HandlerFunc(supplementalLogsHandler.HandleNewLog))).Methods("POST", "OPTIONS").Name("new-supplemental-log")
	r.HandleFunc("/supplementallog/{id}", supplementalLogsHandler.HandleGetLog).Methods("GET", "OPTIONS").Name("get-supplemental-log")
	r.HandleFunc("/supplementallog/{id}", supplementalLogsHandler.HandleDeleteLog).Methods("DELETE", "OPTIONS").Name("remove-supplemental-log")

	catalogHandler := plans.NewHandler(plansRepo)
	r.HandleFunc("/plans/programs/{id}", catalogHandler.HandleGetProgram).Methods("GET", "OPTIONS").Name("get-program")
	r.HandleFunc("/plans/workouts/{id}", catalogHandler.HandleGetWorkout).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/plans/units", catalogHandler.HandleListUnits).Methods("GET", "OPTIONS").Name("list-units")
	r.HandleFunc("/plans/exercises", catalogHandler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")

	recommendHandler := recommend.NewHandler(recommender, s.backfillService, s.metricsManager)
	r.HandleFunc("/recommend/today", recommendHandler.HandleToday).Methods("GET", "OPTIONS").Name("recommend-today")
	r.HandleFunc("/recommend/backfill", recommendHandler.HandleBackfillSweep).Methods("POST", "OPTIONS").Name("backfill-sweep")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
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
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
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
			log.Fatalf("trainloop service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	// warm the history before the first recommendation request lands
	go func() {
		if _, err := s.backfillService.EnsureBackfilled(ctx); err != nil {
			log.Errorf("initial rest day backfill: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
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
