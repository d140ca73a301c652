package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addCommentHandler "github.com/mark-szabo/carwash/internal/api/handlers/add_comment"
	confirmDropoffHandler "github.com/mark-szabo/carwash/internal/api/handlers/confirm_dropoff"
	createReservationHandler "github.com/mark-szabo/carwash/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/mark-szabo/carwash/internal/api/handlers/delete_reservation"
	getCapacityHandler "github.com/mark-szabo/carwash/internal/api/handlers/get_capacity"
	getMpvHandler "github.com/mark-szabo/carwash/internal/api/handlers/get_mpv"
	getReservationHandler "github.com/mark-szabo/carwash/internal/api/handlers/get_reservation"
	getUserReservationsHandler "github.com/mark-szabo/carwash/internal/api/handlers/get_user_reservations"
	setStateHandler "github.com/mark-szabo/carwash/internal/api/handlers/set_state"
	updateReservationHandler "github.com/mark-szabo/carwash/internal/api/handlers/update_reservation"
	washTransitionHandler "github.com/mark-szabo/carwash/internal/api/handlers/wash_transition"
	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/config"
	"github.com/mark-szabo/carwash/internal/domain"
	blockerRepo "github.com/mark-szabo/carwash/internal/infra/storage/blocker"
	companyRepo "github.com/mark-szabo/carwash/internal/infra/storage/company"
	reservationRepo "github.com/mark-szabo/carwash/internal/infra/storage/reservation"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
	"github.com/mark-szabo/carwash/internal/integrations/bot"
	"github.com/mark-szabo/carwash/internal/integrations/calendar"
	"github.com/mark-szabo/carwash/internal/integrations/email"
	"github.com/mark-szabo/carwash/internal/integrations/push"
	"github.com/mark-szabo/carwash/internal/service/capacity"
	"github.com/mark-szabo/carwash/internal/service/notifications"
	"github.com/mark-szabo/carwash/internal/service/reservations"
	"github.com/mark-szabo/carwash/internal/service/validation"
	"github.com/mark-szabo/carwash/internal/slotcalendar"
	createReservationUC "github.com/mark-szabo/carwash/internal/usecase/create_reservation"
	updateReservationUC "github.com/mark-szabo/carwash/internal/usecase/update_reservation"
	"github.com/mark-szabo/carwash/pkg/clock"
	"github.com/mark-szabo/carwash/pkg/dbmetrics"
	"github.com/mark-szabo/carwash/pkg/logger"
	"github.com/mark-szabo/carwash/pkg/metrics"
	"github.com/mark-szabo/carwash/pkg/txmanager"
)

// calendarService события в календаре владельца; nil - интеграция выключена
type calendarService interface {
	CreateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error)
	UpdateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error)
	DeleteEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) error
}

// staffBot чат сотрудников; nil - бот выключен
type staffBot interface {
	DropoffConfirmed(ctx context.Context, r *domain.Reservation) error
	UserCommented(ctx context.Context, r *domain.Reservation, comment domain.Comment) error
}

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Failed to load .env: %v\n", err)
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting carwash reservation service...")
	log.Info("Configuration loaded from %s", configPath)

	// Календарь слотов
	slotCalendar, err := slotcalendar.Load(cfg.Reservation.SlotsFile, cfg.Reservation.TimeZone)
	if err != nil {
		log.Fatal("Failed to load slot calendar: %v", err)
	}
	log.Info("Slot calendar loaded: %d slots, total capacity %d, time zone %s",
		len(slotCalendar.Slots), slotCalendar.TotalCapacity(), slotCalendar.Location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
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

	// Без метрик обёртка только пробрасывает вызовы
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	userRepository := userRepo.NewRepository(wrappedDB)
	companyRepository := companyRepo.NewRepository(wrappedDB)
	blockerRepository := blockerRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB, metricsCollector)
	timeProvider := clock.Real{}
	reservationCfg := cfg.ReservationConfig()

	// Интеграции
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Email.RedisAddr,
		Password: cfg.Email.RedisPassword,
		DB:       cfg.Email.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// письма best-effort: сервис работает, ошибки отправки попадут в лог
		log.Error("Redis is not reachable at %s: %v", cfg.Email.RedisAddr, err)
	}
	pingCancel()

	emailQueue := email.NewQueue(redisClient, cfg.Email.QueueKey, cfg.Email.From, timeProvider, log)
	pushClient := push.NewClient(cfg.Push.URL, time.Duration(cfg.Push.Timeout)*time.Second, cfg.Push.Rate, log)
	log.Info("Integration clients initialized (email queue=%s, push=%s)", cfg.Email.QueueKey, cfg.Push.URL)

	var calendarSvc calendarService
	if cfg.Calendar.Enabled {
		svc, err := calendar.NewFromCredentialsFile(cfg.Calendar.CredentialsFile, slotCalendar.Location, log)
		if err != nil {
			log.Fatal("Failed to initialize calendar integration: %v", err)
		}
		calendarSvc = svc
		log.Info("Calendar integration enabled")
	}

	var staffBotSvc staffBot
	if cfg.Bot.Enabled {
		b, err := bot.NewFromToken(cfg.Bot.Token, cfg.Bot.StaffChatID, cfg.Bot.Rate, log)
		if err != nil {
			log.Fatal("Failed to initialize staff bot: %v", err)
		}
		staffBotSvc = b
		log.Info("Staff bot enabled for chat %d", cfg.Bot.StaffChatID)
	}

	// Сервисы
	accountant := capacity.NewAccountant(reservationRepository, slotCalendar, reservationCfg, timeProvider)

	pipeline := validation.NewPipeline(
		accountant,
		reservationRepository,
		blockerRepository,
		companyRepository,
		userRepository,
		slotCalendar,
		reservationCfg,
		timeProvider,
		metricsCollector,
		log,
	)

	dispatcher := notifications.NewDispatcher(
		emailQueue,
		pushClient,
		userRepository,
		metricsCollector,
		cfg.CompletionEmailDelay(),
		log,
	)

	reservationSvc := reservations.NewService(
		reservationRepository,
		userRepository,
		calendarSvc,
		dispatcher,
		staffBotSvc,
		accountant,
		txMgr,
		timeProvider,
		slotCalendar.Location,
		log,
	)

	// Use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		userRepository,
		pipeline,
		reservationSvc,
		calendarSvc,
		txMgr,
		timeProvider,
		metricsCollector,
		reservationCfg,
		log,
	)

	updateReservationUseCase := updateReservationUC.NewUseCase(
		reservationRepository,
		userRepository,
		pipeline,
		reservationSvc,
		calendarSvc,
		txMgr,
		metricsCollector,
		reservationCfg,
		log,
	)

	// Handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	updateReservation := updateReservationHandler.NewHandler(updateReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	deleteReservation := deleteReservationHandler.NewHandler(reservationSvc, log)
	confirmDropoff := confirmDropoffHandler.NewHandler(reservationSvc, log)
	startWash := washTransitionHandler.NewHandler("POST /reservations/{id}/start", reservationSvc.StartWash, log)
	completeWash := washTransitionHandler.NewHandler("POST /reservations/{id}/complete", reservationSvc.CompleteWash, log)
	confirmPayment := washTransitionHandler.NewHandler("POST /reservations/{id}/payment", reservationSvc.ConfirmPayment, log)
	setState := setStateHandler.NewHandler(reservationSvc, log)
	addComment := addCommentHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getCapacity := getCapacityHandler.NewHandler(reservationSvc, timeProvider, slotCalendar.Location, log)
	getMpv := getMpvHandler.NewHandler(reservationSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Все маршруты API требуют X-User-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Бронирования ---
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}", getReservation.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id:[0-9]+}", updateReservation.Handle).Methods(http.MethodPut)
	api.HandleFunc("/reservations/{id:[0-9]+}", deleteReservation.Handle).Methods(http.MethodDelete)

	// --- Жизненный цикл ---
	api.HandleFunc("/reservations/{id:[0-9]+}/dropoff", confirmDropoff.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/start", startWash.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/complete", completeWash.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/payment", confirmPayment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/state", setState.Handle).Methods(http.MethodPut)
	api.HandleFunc("/reservations/{id:[0-9]+}/comments", addComment.Handle).Methods(http.MethodPost)

	// --- Чтение ---
	api.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/capacity", getCapacity.Handle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{plate}/mpv", getMpv.Handle).Methods(http.MethodGet)

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
