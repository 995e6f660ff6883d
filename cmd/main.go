package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/create_booking"
	createProgramHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/create_program"
	deleteProgramHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/delete_program"
	getAvailableDatesHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_available_dates"
	getAvailableSlotsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_booking"
	getCompanyBookingsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_company_bookings"
	getCompanyStatsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_company_stats"
	getProgramHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_program"
	getUserBookingsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_user_bookings"
	listProgramsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/list_programs"
	updateProgramHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/update_program"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/config"
	"github.com/m04kA/SMC-WellnessBooking/internal/infra/idempotency"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/profileservice"
	bookingsService "github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
	programsService "github.com/m04kA/SMC-WellnessBooking/internal/service/programs"
	createBookingUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	getAvailableDatesUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_dates"
	getAvailableSlotsUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/metrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WellnessBooking...")
	log.Info("Configuration loaded from config.toml (timezone=%s)", cfg.Booking.Location())

	// Инициализируем метрики (если включены)
	// Интерфейсные переменные остаются nil, когда метрики выключены
	var (
		metricsCollector *metrics.Metrics
		admissionMetrics createBookingUC.Metrics
		cancelMetrics    bookingsService.Metrics
		httpMetrics      middleware.HTTPMetrics
	)
	stopMetricsCh := make(chan struct{})
	txOptions := []txmanager.Option{txmanager.WithMaxAttempts(cfg.Booking.MaxTxRetries)}

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		admissionMetrics = metricsCollector
		cancelMetrics = metricsCollector
		httpMetrics = metricsCollector
		txOptions = append(txOptions, txmanager.WithRetryObserver(metricsCollector))
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Репозитории и менеджер транзакций работают через одну обёртку
	programRepository := programRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	txManager := txmanager.NewTransactionManager(wrappedDB, txOptions...)

	// Хранилище ключей идемпотентности (если Redis включен)
	var idempotencyStore createBookingUC.IdempotencyStore
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Без Redis бронирование работает, но повтор запроса создаст дубль-попытку
			log.Warn("Redis is unavailable, idempotency keys may be lost: %v", err)
		}
		cancelPing()

		idempotencyStore = idempotency.NewStore(redisClient, cfg.Booking.IdempotencyTTL())
		log.Info("Idempotency store initialized (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Booking.IdempotencyTTL())
	}

	// Клиент сервиса профилей
	var profileClient createBookingHandler.ProfileClient
	if cfg.ProfileService.URL != "" {
		profileClient = profileservice.NewClient(
			cfg.ProfileService.URL,
			cfg.ProfileService.APIKey,
			time.Duration(cfg.ProfileService.Timeout)*time.Second,
			log,
		)
		log.Info("Profile service client initialized (url=%s timeout=%ds)",
			cfg.ProfileService.URL, cfg.ProfileService.Timeout)
	}

	location := cfg.Booking.Location()

	// Инициализируем сервисы
	programSvc := programsService.NewService(
		programRepository,
		txManager,
		programsService.NewValidator(),
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		txManager,
		cancelMetrics,
		location,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		programRepository,
		bookingRepository,
		txManager,
		idempotencyStore,
		admissionMetrics,
		location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		programRepository,
		bookingRepository,
		log,
	)
	getAvailableDatesUseCase := getAvailableDatesUC.NewUseCase(
		programRepository,
		bookingRepository,
		location,
		log,
	)

	// Инициализируем handlers
	listPrograms := listProgramsHandler.NewHandler(programSvc, log)
	getProgram := getProgramHandler.NewHandler(programSvc, log)
	createProgram := createProgramHandler.NewHandler(programSvc, log)
	updateProgram := updateProgramHandler.NewHandler(programSvc, log)
	deleteProgram := deleteProgramHandler.NewHandler(programSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAvailableDates := getAvailableDatesHandler.NewHandler(getAvailableDatesUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, profileClient, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getCompanyBookings := getCompanyBookingsHandler.NewHandler(bookingSvc, log)
	getCompanyStats := getCompanyStatsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	// Metrics middleware и endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(httpMetrics))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix: все маршруты требуют access token с company_id
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Timeout(cfg.Booking.RequestTimeout()))
	api.Use(middleware.Auth(middleware.NewTokenParser(cfg.Auth.JWTSecret, cfg.Auth.Issuer), log))

	// ============================================================
	// USER ROUTES (любая роль внутри компании)
	// ============================================================

	// --- Каталог ---
	api.HandleFunc("/programs", listPrograms.Handle).Methods(http.MethodGet)
	api.HandleFunc("/programs/{programId}", getProgram.Handle).Methods(http.MethodGet)
	api.HandleFunc("/programs/{programId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/programs/{programId}/available-dates", getAvailableDates.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (admin / super_admin компании)
	// ============================================================

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/programs", createProgram.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/programs/{programId}", updateProgram.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/programs/{programId}", deleteProgram.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/company/bookings", getCompanyBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/company/stats", getCompanyStats.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
