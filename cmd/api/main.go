package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commexhq/comms-api/internal/config"
	"github.com/commexhq/comms-api/internal/handler"
	communicationHandler "github.com/commexhq/comms-api/internal/handler/communication"
	typeHandler "github.com/commexhq/comms-api/internal/handler/communicationtype"
	eventHandler "github.com/commexhq/comms-api/internal/handler/event"
	memberHandler "github.com/commexhq/comms-api/internal/handler/member"
	statusHandler "github.com/commexhq/comms-api/internal/handler/status"
	"github.com/commexhq/comms-api/internal/middleware"
	"github.com/commexhq/comms-api/internal/notifier"
	"github.com/commexhq/comms-api/internal/repository/postgres"
	"github.com/commexhq/comms-api/internal/router"
	commtypeService "github.com/commexhq/comms-api/internal/service/commtype"
	communicationService "github.com/commexhq/comms-api/internal/service/communication"
	eventService "github.com/commexhq/comms-api/internal/service/event"
	memberService "github.com/commexhq/comms-api/internal/service/member"
	statusService "github.com/commexhq/comms-api/internal/service/status"
	"github.com/commexhq/comms-api/internal/worker"
	"github.com/commexhq/comms-api/pkg/logger"
	redisbroker "github.com/commexhq/comms-api/pkg/messaging/redis"
	"github.com/commexhq/comms-api/pkg/metrics"
)

const metricsNamespace = "comms_api"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.New(metricsNamespace)

	base := postgres.NewBaseRepository(db).WithMetrics(m)
	statusRepo := postgres.NewStatusRepository(base)
	typeRepo := postgres.NewCommunicationTypeRepository(base)
	typeStatusRepo := postgres.NewTypeStatusRepository(base)
	commRepo := postgres.NewCommunicationRepository(base)
	memberRepo := postgres.NewMemberRepository(base)

	var terminalNotifier communicationService.Notifier = notifier.Noop{}
	if cfg.SMTP.Enabled {
		terminalNotifier = notifier.NewEmailNotifier(cfg.SMTP, log)
	}

	statusSvc := statusService.NewService(statusRepo, log)
	typeSvc := commtypeService.NewService(typeRepo, typeStatusRepo, statusRepo, log)
	commSvc := communicationService.NewService(commRepo, typeRepo, memberRepo, statusSvc, typeSvc, terminalNotifier, m, log)
	memberSvc := memberService.NewService(memberRepo, log)

	publisher := eventService.NewPublisher(broker, m, log)
	ingestor := eventService.NewIngestor(commSvc, m, log)

	handler.RegisterValidations()

	ops := handler.NewHandler(db)
	statusH := statusHandler.NewHandler(statusSvc)
	typeH := typeHandler.NewHandler(typeSvc)
	commH := communicationHandler.NewHandler(commSvc, typeSvc, publisher, log)
	memberH := memberHandler.NewHandler(memberSvc)
	eventH := eventHandler.NewHandler(publisher)

	r := router.NewRouter(ops, statusH, typeH, commH, memberH, eventH, log, router.Config{
		JWTSecret:  cfg.JWT.Secret,
		Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		RateLimit:  middleware.DefaultRateLimitConfig(),
		CORSConfig: middleware.DefaultCORSConfig(),
		Namespace:  metricsNamespace,
	})
	r.Setup()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumer := worker.NewConsumer(broker, ingestor, publisher, cfg.Consumer, m, log)
	go consumer.Run(consumerCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
