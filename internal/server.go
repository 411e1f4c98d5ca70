package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/drive/v3"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/config"
	"github.com/2beens/gymcoach/internal/db"
	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/gym/report"
	"github.com/2beens/gymcoach/internal/gym/users"
	"github.com/2beens/gymcoach/internal/gym/workout"
	"github.com/2beens/gymcoach/internal/middleware"
	"github.com/2beens/gymcoach/internal/misc"
	"github.com/2beens/gymcoach/internal/music"
	"github.com/2beens/gymcoach/internal/narration"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/storage/backup"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
)

const loginSessionsCleanSchedule = "0 0 */8 * * *"

type sessionManager interface {
	Login(ctx context.Context, username string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
	ScanAndClean(ctx context.Context)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	gateway         *storage.Gateway
	workoutSessions workout.SessionStore
	loginChecker    auth.Checker
	authService     sessionManager
	rateLimiter     middleware.RequestRateLimiter

	synthesizer   *narration.Synthesizer
	music         *music.Service
	quotesManager *misc.QuotesManager
	backupService *backup.DriveBackupService
	cron          *cron.Cron

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresUser            string
	PostgresPassword        string
	GoogleCredentialsJSON   []byte
	SpotifyClientID         string
	SpotifyClientSecret     string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.NewRegistry(params.VersionInfo)
	metricsManager := metrics.NewManager("gymcoach", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
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
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymcoach-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	s := &Server{
		config:         cfg,
		versionInfo:    params.VersionInfo,
		redisClient:    rdb,
		authService:    auth.NewAuthService(auth.DefaultTTL, rdb),
		loginChecker:   auth.NewLoginChecker(auth.DefaultTTL, rdb),
		rateLimiter:    redis_rate.NewLimiter(rdb),
		synthesizer:    narration.NewSynthesizer(cfg.NarrationBaseURL, cfg.NarrationLang, tracedHttpClient),
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
		music: music.NewService(ctx, music.ServiceParams{
			ClientID:     params.SpotifyClientID,
			ClientSecret: params.SpotifyClientSecret,
			PlaylistID:   cfg.SpotifyPlaylistID,
			HTTPClient:   tracedHttpClient,
		}),
	}

	s.quotesManager, err = misc.NewDefaultQuotesManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create quote manager: %w", err)
	}

	var driveService *drive.Service
	var backend storage.Backend
	switch cfg.StoreBackend {
	case config.StoreBackendSheets:
		if len(params.GoogleCredentialsJSON) == 0 {
			return nil, errors.New("google credentials required for the sheets backend")
		}
		sheetsService, ds, err := storage.NewGoogleServices(ctx, params.GoogleCredentialsJSON, tracedHttpClient)
		if err != nil {
			return nil, fmt.Errorf("google services: %w", err)
		}
		driveService = ds
		backend = storage.NewSheetsBackend(sheetsService, driveService, storage.SheetsParams{
			SpreadsheetID:   cfg.SpreadsheetID,
			SpreadsheetName: cfg.SpreadsheetName,
			Cell:            cfg.SpreadsheetCell,
		})
	case config.StoreBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         params.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		promRegistry.MustRegister(db.PoolCollector(dbPool, cfg.PostgresDBName))

		pgBackend := storage.NewPostgresBackend(dbPool)
		if err := pgBackend.EnsureSchema(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("ensure db schema: %w", err)
		}
		s.dbPool = dbPool
		backend = pgBackend
	case config.StoreBackendRedis:
		backend = storage.NewRedisBackend(rdb, cfg.RedisDocumentKey)
	case config.StoreBackendMemory:
		log.Warnln("using the in-memory user db, nothing survives a restart")
		backend = storage.NewMemoryBackend(nil)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
	s.gateway = storage.NewGateway(backend, metricsManager)
	log.Infof("user db backend: %s", s.gateway.BackendName())

	switch cfg.WorkoutSessionsBackend {
	case config.StoreBackendMemory:
		s.workoutSessions = workout.NewMemorySessionStore()
	default:
		s.workoutSessions = workout.NewRedisSessionStore(rdb, cfg.WorkoutSessionTTL.Duration)
	}

	if cfg.BackupEnabled {
		if driveService == nil && len(params.GoogleCredentialsJSON) > 0 {
			_, driveService, err = storage.NewGoogleServices(ctx, params.GoogleCredentialsJSON, tracedHttpClient)
			if err != nil {
				return nil, fmt.Errorf("google services for backups: %w", err)
			}
		}
		if driveService == nil {
			log.Errorln("db backups enabled, but google credentials are missing, backups disabled")
		} else {
			s.backupService, err = backup.NewDriveBackupService(ctx, backup.DriveBackupParams{
				Source:         s.gateway,
				Drive:          driveService,
				FolderName:     cfg.BackupFolderName,
				ShareWithEmail: cfg.BackupShareWithEmail,
				Metrics:        metricsManager,
			})
			if err != nil {
				log.Errorf("create drive backup service: %s", err)
			}
		}
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.quotesManager, s.versionInfo)
	miscHandler.SetupRoutes(r)

	usersService := users.NewService(s.gateway, s.metricsManager)
	usersHandler := users.NewHandler(usersService, s.authService)
	usersHandler.SetupRoutes(r, s.rateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)

	library.NewHandler().SetupRoutes(r)
	narration.NewHandler(s.synthesizer).SetupRoutes(r)
	music.NewHandler(s.music).SetupRoutes(r)

	workoutService := workout.NewService(s.gateway, s.workoutSessions, s.metricsManager)
	workout.NewHandler(workoutService).SetupRoutes(r)

	report.NewHandler(usersService).SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitAndDrainBody(middleware.MaxRequestBodyBytes))

	return r, nil
}

// startJobs schedules the periodic login sessions cleanup and the db backups.
func (s *Server) startJobs(ctx context.Context) error {
	s.cron = cron.New()

	if err := s.cron.AddFunc(loginSessionsCleanSchedule, func() {
		s.authService.ScanAndClean(ctx)
	}); err != nil {
		return fmt.Errorf("schedule login sessions cleanup: %w", err)
	}

	if s.backupService != nil {
		if err := s.cron.AddFunc(s.config.BackupSchedule, func() {
			fileName, err := s.backupService.DoBackup(ctx, time.Now())
			if errors.Is(err, backup.ErrNothingToBackup) {
				log.Debugln("db backup skipped, user db is empty")
				return
			}
			if err != nil {
				log.Errorf("db backup: %s", err)
				return
			}
			log.Infof("db backup done: %s", fileName)
		}); err != nil {
			return fmt.Errorf("schedule db backups [%s]: %w", s.config.BackupSchedule, err)
		}
		log.Debugf("db backups scheduled: %s", s.config.BackupSchedule)
	}

	s.cron.Start()
	return nil
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

	if err := s.startJobs(ctx); err != nil {
		log.Errorf("start periodic jobs: %s", err)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.cron != nil {
		s.cron.Stop()
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

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
