package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busreserve/config"
	"busreserve/cron"
	"busreserve/database"
	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/handlers"
	"busreserve/middleware"
	"busreserve/routes"
	"busreserve/services/booking"
	"busreserve/services/notification"
	"busreserve/services/realtime"
	"busreserve/services/trip"
	"busreserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := realtime.NewHub(logger)
	go hub.Run(rootCtx)

	// Store and event transport.
	var (
		repo        reservationRepo.ReservationRepository
		redisClient *redis.Client
		mongoClient *mongo.Client
		dispatchers = notification.Fanout{notification.NewLogDispatcher(logger)}
	)
	switch config.AppConfig.StoreDriver {
	case "memory":
		logger.Sugar().Warn("main: using the in-memory reservation store; data is lost on restart")
		repo = reservationRepo.NewMemoryReservationRepo()
		dispatchers = append(dispatchers, hub)
		go cron.RunHoldSweeper(rootCtx, repo, config.AppConfig.HoldSweepInterval, logger)
	default:
		if err := database.InitDB(rootCtx); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		mongoClient = database.MongoClient
		var err error
		repo, err = reservationRepo.NewMongoReservationRepo()
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize reservation repository: %v", err)
		}

		if err := utils.InitCache(rootCtx); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		redisClient = utils.CacheClient
		dispatchers = append(dispatchers, notification.NewRedisPublisher(redisClient, utils.EventChannel))
		go hub.Subscribe(rootCtx, redisClient, utils.EventChannel)
	}

	if config.AppConfig.FirebaseCredentialsFile != "" {
		client, err := utils.FirebaseMessaging(rootCtx)
		if err != nil {
			logger.Sugar().Errorf("main: push notifications disabled: %v", err)
		} else {
			dispatchers = append(dispatchers, notification.NewPushDispatcher(client))
		}
	}
	if config.AppConfig.SMTPHost != "" {
		dispatchers = append(dispatchers, notification.NewMailDispatcher(
			config.AppConfig.SMTPHost,
			config.AppConfig.SMTPPort,
			config.AppConfig.SMTPUser,
			config.AppConfig.SMTPPassword,
			config.AppConfig.MailFrom,
		))
	}

	// Queue worker: hold sweeps always, event delivery when NOTIFY_ASYNC is set.
	var dispatcher notification.Dispatcher = dispatchers
	var worker *cron.Worker
	if redisClient != nil {
		var err error
		worker, err = cron.InitEventWorker(dispatchers, repo, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		if config.AppConfig.NotifyAsync {
			queueClient := cron.NewQueueClient()
			defer queueClient.Close()
			dispatcher = notification.NewQueueDispatcher(queueClient)
		}
	}

	utils.StartHealthMonitor(rootCtx, redisClient, mongoClient)

	// services.
	bookingService := booking.NewDefaultBookingService(
		repo,
		dispatcher,
		config.ServiceLocation(),
		config.AppConfig.HoldTTL,
		logger,
	)
	tripService := trip.NewDefaultTripService(repo, logger)

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService, logger),
		handlers.NewAdminHandler(tripService, logger),
		handlers.NewRealtimeHandler(hub, tripService, logger),
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.NewRateLimiter(config.AppConfig.MaxRequestsPerMin).Middleware())

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	if worker != nil {
		worker.Shutdown()
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Warn("main: mongo disconnect failed", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
