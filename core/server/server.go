package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-departure-scheduler/core/cache"
	"go-departure-scheduler/core/config"
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/database"
	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/core/middleware"

	eventController "go-departure-scheduler/modules/event/controller"
	eventRepository "go-departure-scheduler/modules/event/repository"
	eventRouter "go-departure-scheduler/modules/event/router"
	eventService "go-departure-scheduler/modules/event/service"
	locationController "go-departure-scheduler/modules/location/controller"
	locationRouter "go-departure-scheduler/modules/location/router"
	locationService "go-departure-scheduler/modules/location/service"
	notificationController "go-departure-scheduler/modules/notification/controller"
	notificationRepository "go-departure-scheduler/modules/notification/repository"
	notificationRouter "go-departure-scheduler/modules/notification/router"
	notificationService "go-departure-scheduler/modules/notification/service"
	notificationWorker "go-departure-scheduler/modules/notification/worker"
	schedulerController "go-departure-scheduler/modules/scheduler/controller"
	schedulerRouter "go-departure-scheduler/modules/scheduler/router"
	schedulerService "go-departure-scheduler/modules/scheduler/service"
	travelService "go-departure-scheduler/modules/travel/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
)

// Run wires the application together and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}

	// Location cache and task queue both ride on redis; without it the
	// location cache is in-process and notifications are log-only.
	var (
		redisCache  *cache.Cache
		locCache    locationService.Cache
		tasksClient *asynq.Client
		asynqServer *asynq.Server
	)
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewCache(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locCache = locationService.NewRedisCache(redisCache)

		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		tasksClient = asynq.NewClient(redisOpt)
		asynqServer = asynq.NewServer(redisOpt, asynq.Config{Concurrency: 5})
	} else {
		logger.Warn("Redis disabled: using in-process location cache, log-only notification delivery")
		locCache = locationService.NewMemoryCache()
	}

	var router travelService.Router
	if cfg.Maps.APIKey != "" {
		router, err = travelService.NewGoogleRouter(cfg.Maps.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create routing client: %w", err)
		}
	} else {
		logger.Warn("No maps API key configured: travel info disabled")
	}

	stores := eventService.NewStoreSet()
	eventRepo := eventRepository.NewEventRepository(db)
	notifRepo := notificationRepository.NewNotificationRepository(db)

	notifSvc := notificationService.NewNotificationService(notifRepo, tasksClient)
	travelSvc := travelService.NewService(router, locCache)
	eventSvc := eventService.NewEventService(eventRepo, stores)
	manager := schedulerService.NewManager(eventRepo, stores, travelSvc, notifSvc)

	// Event edits and location fixes re-enter the scheduling loop, same as
	// the explicit /scheduler/run trigger.
	reschedule := func(userID uuid.UUID) {
		if err := manager.Trigger(context.Background(), userID); err != nil {
			logger.Error("Server:Reschedule:Error:", err, "user_id", userID)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware(cfg.Auth)
	api := e.Group("/api/v1")

	eventRouter.NewEventRouter(
		eventController.NewEventController(eventSvc, reschedule),
	).Register(api, mw)
	locationRouter.NewLocationRouter(
		locationController.NewLocationController(locCache, reschedule),
	).Register(api, mw)
	notificationRouter.NewNotificationRouter(
		notificationController.NewNotificationController(notifSvc),
	).Register(api, mw)
	schedulerRouter.NewSchedulerRouter(
		schedulerController.NewSchedulerController(manager),
	).Register(api, mw)

	var cronRunner *cron.Cron
	if cfg.Scheduler.BatchRefresh {
		refresher := schedulerService.NewBatchRefresher(eventRepo, travelSvc)
		cronRunner = cron.New()
		if _, err := cronRunner.AddFunc(cfg.Scheduler.BatchRefreshCron, func() {
			refresher.Run(context.Background())
		}); err != nil {
			return fmt.Errorf("failed to schedule batch refresh: %w", err)
		}
		cronRunner.Start()
		logger.Info("Batch travel refresh enabled", "cron", cfg.Scheduler.BatchRefreshCron)
	}

	if asynqServer != nil {
		mux := asynq.NewServeMux()
		mux.HandleFunc(constants.TaskNotificationDeliver, notificationWorker.HandleDeliverTask)
		go func() {
			if err := asynqServer.Run(mux); err != nil {
				logger.Error("notification worker error", err)
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("Server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	// No timer may fire for a server that is going away.
	manager.StopAll()

	if cronRunner != nil {
		<-cronRunner.Stop().Done()
	}
	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if tasksClient != nil {
		if err := tasksClient.Close(); err != nil {
			logger.Error("failed to close task client", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down http server", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", err)
	}
	return nil
}
