package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trimly/config"
	"trimly/cron"
	"trimly/database"
	barberRepo "trimly/database/repository/barber"
	bookingRepo "trimly/database/repository/booking"
	messageRepo "trimly/database/repository/message"
	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/handlers"
	"trimly/middleware"
	"trimly/routes"
	"trimly/services/acceptance"
	bookingSvc "trimly/services/booking"
	"trimly/services/collector"
	"trimly/services/expiry"
	"trimly/services/matching"
	"trimly/services/negotiation"
	"trimly/services/notification"
	"trimly/services/request"
	"trimly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	requests := requestRepo.NewMongoRequestRepo()
	responses := responseRepo.NewMongoResponseRepo()
	messages := messageRepo.NewMongoMessageRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	barbers := barberRepo.NewMongoBarberRepo()

	// Pushes go through asynq so the HTTP path never blocks on FCM; the
	// worker drains them through the direct dispatcher.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewQueueDispatcher(asynqClient)

	// services.
	sweeper := &expiry.DefaultSweeper{
		Requests:  requests,
		Responses: responses,
		Messages:  messages,
		BidTTL:    config.BidTTL(),
	}

	matchingSvc := &matching.DefaultMatchingService{
		BarberRepo:  barbers,
		CacheClient: utils.GetCacheClient(),
	}

	requestSvc := &request.DefaultRequestService{
		Requests:    requests,
		Responses:   responses,
		Messages:    messages,
		Bookings:    bookings,
		MatchingSvc: matchingSvc,
		Notifier:    notifier,
		Sweeper:     sweeper,
		MatchWindow: config.MatchWindow(),
		RadiusKm:    config.AppConfig.MatchRadiusKm,
	}

	collectorSvc := &collector.DefaultResponseCollector{
		Requests:  requests,
		Responses: responses,
		Notifier:  notifier,
		Sweeper:   sweeper,
	}

	resolver := &acceptance.DefaultResolver{
		Requests:  requests,
		Responses: responses,
		Bookings:  bookings,
		Notifier:  notifier,
		Sweeper:   sweeper,
	}

	negotiationSvc := &negotiation.DefaultNegotiationService{
		Requests:  requests,
		Responses: responses,
		Messages:  messages,
		Resolver:  resolver,
		Notifier:  notifier,
		Sweeper:   sweeper,
		OfferTTL:  config.OfferTTL(),
	}

	lifecycleSvc := &bookingSvc.DefaultLifecycleService{
		Bookings: bookings,
		Notifier: notifier,
	}

	// Background worker: queued pushes and the periodic expiry sweep.
	cron.InitWorker(notification.NewFCMDispatcher(), sweeper)
	cron.InitScheduler()

	handlerBundle := &handlers.HandlerBundle{
		Request:     handlers.NewRequestHandler(requestSvc, resolver),
		Response:    handlers.NewResponseHandler(collectorSvc),
		Negotiation: handlers.NewNegotiationHandler(negotiationSvc),
		Booking:     handlers.NewBookingHandler(lifecycleSvc),
	}

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
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
