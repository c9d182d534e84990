package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/sift/api/audit"
	"github.com/dev-mohitbeniwal/sift/api/config"
	"github.com/dev-mohitbeniwal/sift/api/controller"
	"github.com/dev-mohitbeniwal/sift/api/dao"
	"github.com/dev-mohitbeniwal/sift/api/db"
	"github.com/dev-mohitbeniwal/sift/api/engine"
	"github.com/dev-mohitbeniwal/sift/api/evaluator"
	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/provider"
	"github.com/dev-mohitbeniwal/sift/api/router"
	"github.com/dev-mohitbeniwal/sift/api/search"
	"github.com/dev-mohitbeniwal/sift/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger("logging")
	defer logger.Sync()

	cfg := config.GetConfig()

	// Validate the policy snapshot before anything consumes it
	validationUtil := util.NewValidationUtil()
	if err := validationUtil.ValidateTimePolicy(cfg.Policies.Time); err != nil {
		logger.Fatal("Invalid time restriction policy", zap.Error(err))
	}
	if err := validationUtil.ValidateGeoPolicy(cfg.Policies.Geo); err != nil {
		logger.Fatal("Invalid geo restriction policy", zap.Error(err))
	}
	if err := validationUtil.ValidatePermissionPolicy(cfg.Policies.Permissions); err != nil {
		logger.Fatal("Invalid dynamic permission policy", zap.Error(err))
	}

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and utilities
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService()
	auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, config.GetString("elasticsearch.auditIndex"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Initialize directory access and providers
	directoryDAO := dao.NewDirectoryDAO(db.Neo4jDriver)
	roleResolver := util.NewCachingRoleResolver(directoryDAO, cacheService)
	geoLocator := provider.NewHTTPGeoLocator(cfg.Geo.URL, viper.GetDuration("geo.timeout"))
	vpnDetector, err := provider.NewHeuristicVPNDetector(viper.GetStringSlice("geo.vpnIntelRanges"))
	if err != nil {
		logger.Fatal("Failed to initialize VPN detector", zap.Error(err))
	}

	// Initialize evaluators
	timeEvaluator := evaluator.NewTimeEvaluator(cfg.Policies.Time, roleResolver)
	geoEvaluator, err := evaluator.NewGeoEvaluator(cfg.Policies.Geo, geoLocator, vpnDetector, cacheService)
	if err != nil {
		logger.Fatal("Failed to initialize geo evaluator", zap.Error(err))
	}
	aggregator := evaluator.NewPermissionAggregator(
		cfg.Policies.Permissions,
		directoryDAO,
		directoryDAO,
		directoryDAO,
		cacheService,
		eventBus,
	)

	// Background permission refresh
	scheduler := cron.New()
	if err := aggregator.StartRefresher(scheduler, cacheService.ActiveUsers); err != nil {
		logger.Fatal("Failed to schedule permission refresher", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Search executor
	searchExecutor, err := search.NewESExecutor(
		cfg.Elasticsearch.URL,
		config.GetString("elasticsearch.searchIndex"),
		config.GetInt("elasticsearch.maxSearchHits"),
	)
	if err != nil {
		logger.Fatal("Failed to initialize search executor", zap.Error(err))
	}

	// Orchestrator and controllers
	orchestrator := engine.NewOrchestrator(
		timeEvaluator,
		geoEvaluator,
		aggregator,
		searchExecutor,
		auditService,
		cacheService,
		eventBus,
		notificationService,
	)
	searchController := controller.NewSearchController(orchestrator)
	auditController := controller.NewAuditController(auditService)

	// Set up the router and server
	engineRouter := router.SetupRouter(searchController, auditController, 100, time.Minute)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engineRouter,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
